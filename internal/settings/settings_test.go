package settings_test

import (
	"context"
	"testing"
	"time"

	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage/memory"

	"github.com/stretchr/testify/require"
)

func seedRegistrarSettings(st *memory.Memory, mode string) {
	st.SeedSettings(
		domain.Setting{Key: settings.KeyRegistrarMode, Value: mode, Type: domain.SettingTypeChoice, Choices: "live\nsandbox"},
		domain.Setting{Key: settings.KeyRegistrarLiveURL, Value: "https://api.example/xml.response", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarSandboxURL, Value: "https://api.sandbox.example/xml.response", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarAPIUser, Value: "apiuser", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarAPIKey, Value: "apikey", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarUsername, Value: "user", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarClientIP, Value: "127.0.0.1", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarBatchSize, Value: "25", Type: domain.SettingTypeInteger},
		domain.Setting{Key: settings.KeyRegistrarWaitSeconds, Value: "2.5", Type: domain.SettingTypeFloat},
	)
}

func TestLoader_Registrar_ModeSelectsEndpoint(t *testing.T) {
	ctx := context.Background()

	st := memory.New()
	seedRegistrarSettings(st, "sandbox")
	cfg, err := settings.NewLoader(st).Registrar(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://api.sandbox.example/xml.response", cfg.URL)
	require.Equal(t, 25, cfg.BatchSize)
	require.Equal(t, 2500*time.Millisecond, cfg.Wait)

	st = memory.New()
	seedRegistrarSettings(st, "live")
	cfg, err = settings.NewLoader(st).Registrar(ctx)
	require.NoError(t, err)
	require.Equal(t, "https://api.example/xml.response", cfg.URL)
}

func TestLoader_Registrar_MissingKey(t *testing.T) {
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyRegistrarMode, Value: "sandbox", Type: domain.SettingTypeChoice, Choices: "live\nsandbox"},
	)

	_, err := settings.NewLoader(st).Registrar(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), settings.KeyRegistrarSandboxURL)
}

func TestLoader_Metrics(t *testing.T) {
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyMetricsAPIURL, Value: "https://metrics.example/url-metrics/", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyMetricsAccessID, Value: "member", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyMetricsSecretKey, Value: "secret", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyMetricsWaitSeconds, Value: "10", Type: domain.SettingTypeFloat},
		domain.Setting{Key: settings.KeyExtensionThreshold, Value: "15", Type: domain.SettingTypeFloat},
	)

	cfg, err := settings.NewLoader(st).Metrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, "https://metrics.example/url-metrics/", cfg.URL)
	require.Equal(t, 10*time.Second, cfg.Wait)
	require.InDelta(t, 15.0, cfg.ExtensionThreshold, 0.001)
}

func TestLoader_Notification(t *testing.T) {
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyOperatorEmail, Value: "ops@example.org", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyParseFailureAddress, Value: "parse@example.org", Type: domain.SettingTypeString},
	)

	cfg, err := settings.NewLoader(st).Notification(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ops@example.org", cfg.OperatorEmail)
	require.Equal(t, "parse@example.org", cfg.ParseFailureAddress)
}
