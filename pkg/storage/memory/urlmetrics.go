package memory

import (
	"context"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/google/uuid"
)

func (m *Memory) MetricsByQueryURL(_ context.Context, queryURL string) (*domain.URLMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.metrics {
		if m.metrics[i].QueryURL == queryURL {
			row := m.metrics[i]

			return &row, nil
		}
	}

	return nil, nil
}

func (m *Memory) MetricsByID(_ context.Context, id domain.MetricsID) (*domain.URLMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.metrics {
		if m.metrics[i].ID == id {
			row := m.metrics[i]

			return &row, nil
		}
	}

	return nil, nil
}

func (m *Memory) StoreMetrics(_ context.Context, um domain.URLMetrics) (*domain.URLMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if um.ID == (domain.MetricsID{}) {
		um.ID = domain.MetricsID(uuid.New())
	}
	m.metrics = append(m.metrics, um)

	return &um, nil
}

func (m *Memory) UpdateMetrics(_ context.Context, um *domain.URLMetrics) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.metrics {
		if m.metrics[i].ID == um.ID {
			m.metrics[i] = *um

			return nil
		}
	}

	return nil
}

func (m *Memory) LinkByProjectAndMetrics(_ context.Context,
	projectID domain.ProjectID,
	metricsID domain.MetricsID) (*domain.ProjectMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.links {
		if m.links[i].ProjectID == projectID && m.links[i].MetricsID == metricsID {
			row := m.links[i]

			return &row, nil
		}
	}

	return nil, nil
}

func (m *Memory) StoreLink(_ context.Context, link domain.ProjectMetrics) (*domain.ProjectMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if link.ID == uuid.Nil {
		link.ID = uuid.New()
	}
	m.links = append(m.links, link)

	return &link, nil
}

func (m *Memory) UpdateLinkChecked(_ context.Context, linkID uuid.UUID, checked bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.links {
		if m.links[i].ID == linkID {
			m.links[i].IsChecked = checked

			return nil
		}
	}

	return nil
}

func (m *Memory) ProjectLinks(_ context.Context, projectID domain.ProjectID) ([]domain.ProjectMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ProjectMetrics
	for i := range m.links {
		if m.links[i].ProjectID == projectID {
			out = append(out, m.links[i])
		}
	}

	return out, nil
}

func (m *Memory) UncheckedLinks(_ context.Context, projectID domain.ProjectID) ([]domain.ProjectMetrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []domain.ProjectMetrics
	for i := range m.links {
		if m.links[i].ProjectID == projectID && !m.links[i].IsChecked {
			out = append(out, m.links[i])
		}
	}

	return out, nil
}

func (m *Memory) MetricsSummary(_ context.Context, projectID domain.ProjectID) (storage.MetricsSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var summary storage.MetricsSummary
	for i := range m.links {
		if m.links[i].ProjectID != projectID {
			continue
		}

		summary.Total++
		if !m.links[i].IsChecked {
			summary.Unchecked++
		}
	}

	return summary, nil
}

func (m *Memory) ProjectsWithUncheckedLinks(_ context.Context) ([]domain.ProjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[domain.ProjectID]struct{})

	var out []domain.ProjectID
	for i := range m.links {
		if m.links[i].IsChecked {
			continue
		}
		if _, ok := seen[m.links[i].ProjectID]; ok {
			continue
		}

		seen[m.links[i].ProjectID] = struct{}{}
		out = append(out, m.links[i].ProjectID)
	}

	return out, nil
}

func (m *Memory) DeleteLink(_ context.Context, linkID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.links = deleteWhere(m.links, func(l domain.ProjectMetrics) bool { return l.ID == linkID })

	return nil
}

func (m *Memory) StoreMetricsLastUpdate(_ context.Context, upd domain.MetricsLastUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastUpdates = append(m.lastUpdates, upd)

	return nil
}

func (m *Memory) MostRecentMetricsUpdate(_ context.Context) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.lastUpdates) == 0 {
		return time.Now(), nil
	}

	latest := m.lastUpdates[0]
	for _, upd := range m.lastUpdates[1:] {
		if upd.Retrieved.After(latest.Retrieved) {
			latest = upd
		}
	}

	return latest.Datetime, nil
}
