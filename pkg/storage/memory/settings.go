package memory

import (
	"context"

	"domaincheck/pkg/domain"
)

// SeedSettings inserts or replaces settings wholesale. Test helper.
func (m *Memory) SeedSettings(settings ...domain.Setting) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range settings {
		m.seedSettingLocked(s)
	}
}

func (m *Memory) seedSettingLocked(setting domain.Setting) {
	for i := range m.settings {
		if m.settings[i].Key == setting.Key {
			m.settings[i] = setting

			return
		}
	}
	m.settings = append(m.settings, setting)
}

func (m *Memory) Settings(_ context.Context) ([]domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]domain.Setting, len(m.settings))
	copy(out, m.settings)

	return out, nil
}

func (m *Memory) Setting(_ context.Context, key string) (*domain.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.settings {
		if m.settings[i].Key == key {
			setting := m.settings[i]

			return &setting, nil
		}
	}

	return nil, nil
}

func (m *Memory) UpdateSetting(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.settings {
		if m.settings[i].Key == key {
			m.settings[i].Value = value

			return nil
		}
	}

	return nil
}
