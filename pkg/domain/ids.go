package domain

import "github.com/google/uuid"

// The typed IDs wrap uuid.UUID, which loses its text marshaling. These
// methods restore the canonical string form for JSON and logging.

func (id ProjectID) String() string { return uuid.UUID(id).String() }

func (id ProjectID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *ProjectID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = ProjectID(u)

	return nil
}

func (id UserID) String() string { return uuid.UUID(id).String() }

func (id UserID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *UserID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(u)

	return nil
}

func (id DomainID) String() string { return uuid.UUID(id).String() }

func (id DomainID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *DomainID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = DomainID(u)

	return nil
}

func (id MetricsID) String() string { return uuid.UUID(id).String() }

func (id MetricsID) MarshalText() ([]byte, error) {
	return []byte(uuid.UUID(id).String()), nil
}

func (id *MetricsID) UnmarshalText(text []byte) error {
	u, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = MetricsID(u)

	return nil
}
