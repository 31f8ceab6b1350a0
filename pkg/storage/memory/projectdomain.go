package memory

import (
	"context"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/google/uuid"
)

func (m *Memory) StoreDomains(_ context.Context, domains ...domain.ProjectDomain) ([]domain.ProjectDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.ProjectDomain, 0, len(domains))
	for _, d := range domains {
		if d.ID == (domain.DomainID{}) {
			d.ID = domain.DomainID(uuid.New())
		}
		m.domains = append(m.domains, d)
		out = append(out, d)
	}

	return out, nil
}

func (m *Memory) ProjectDomains(_ context.Context, id domain.ProjectID) ([]domain.ProjectDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ProjectDomain
	for i := range m.domains {
		if m.domains[i].ProjectID == id {
			out = append(out, m.domains[i])
		}
	}

	return out, nil
}

func (m *Memory) UncheckedDomains(_ context.Context,
	id domain.ProjectID,
	limit uint) ([]domain.ProjectDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ProjectDomain
	for i := range m.domains {
		if uint(len(out)) >= limit {
			break
		}
		if m.domains[i].ProjectID == id && !m.domains[i].IsChecked {
			out = append(out, m.domains[i])
		}
	}

	return out, nil
}

func (m *Memory) DomainsByState(_ context.Context,
	id domain.ProjectID,
	state domain.DomainState) ([]domain.ProjectDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ProjectDomain
	for i := range m.domains {
		if m.domains[i].ProjectID == id && m.domains[i].State == state {
			out = append(out, m.domains[i])
		}
	}

	return out, nil
}

func (m *Memory) DomainSummary(_ context.Context, id domain.ProjectID) (storage.DomainSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var summary storage.DomainSummary
	for i := range m.domains {
		if m.domains[i].ProjectID != id {
			continue
		}

		summary.Total++
		if !m.domains[i].IsChecked {
			summary.Unchecked++
		}
	}

	return summary, nil
}

func (m *Memory) UpdateDomain(_ context.Context,
	id domain.DomainID,
	updates storage.DomainUpdates) (*domain.ProjectDomain, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.domains {
		if m.domains[i].ID != id {
			continue
		}

		d := &m.domains[i]
		if updates.State != "" {
			d.State = updates.State
		}
		if updates.Error != nil {
			d.Error = *updates.Error
		}
		if updates.IsChecked != nil {
			d.IsChecked = *updates.IsChecked
		}
		if updates.LastChecked != nil {
			d.LastChecked = *updates.LastChecked
		}

		row := *d

		return &row, nil
	}

	return nil, nil
}
