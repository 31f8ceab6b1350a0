package memory

import (
	"context"
	"sort"

	"domaincheck/pkg/domain"
)

func (m *Memory) TLDs(_ context.Context) ([]domain.TLD, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.TLD, len(m.tlds))
	copy(out, m.tlds)

	// recognized suffixes first, longer before shorter within each group
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].IsRecognized != out[j].IsRecognized {
			return out[i].IsRecognized
		}
		if len(out[i].Suffix) != len(out[j].Suffix) {
			return len(out[i].Suffix) > len(out[j].Suffix)
		}

		return out[i].Suffix < out[j].Suffix
	})

	return out, nil
}

func (m *Memory) TLDBySuffix(_ context.Context, suffix string) (*domain.TLD, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tlds {
		if m.tlds[i].Suffix == suffix {
			tld := m.tlds[i]

			return &tld, nil
		}
	}

	return nil, nil
}

func (m *Memory) UpsertTLD(_ context.Context, tld domain.TLD) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.tlds {
		if m.tlds[i].Suffix == tld.Suffix {
			m.tlds[i] = tld

			return nil
		}
	}
	m.tlds = append(m.tlds, tld)

	return nil
}

func (m *Memory) Exclusions(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.exclusions...), nil
}

func (m *Memory) Preservations(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.preservations...), nil
}

func (m *Memory) ExtensionPrefixes(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.prefixes...), nil
}

func (m *Memory) ReplaceExclusions(_ context.Context, domains []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exclusions = append([]string(nil), domains...)

	return nil
}

func (m *Memory) ReplacePreservations(_ context.Context, domains []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.preservations = append([]string(nil), domains...)

	return nil
}

func (m *Memory) ReplaceExtensionPrefixes(_ context.Context, prefixes []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.prefixes = append([]string(nil), prefixes...)

	return nil
}
