// Package settings loads the administrator-changeable settings from storage
// into typed structs. Values live in the database rather than the static
// config file so operators can adjust API credentials and pacing without a
// redeploy; callers load them once per task invocation.
package settings

import (
	"context"
	"fmt"
	"time"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"
)

// Setting keys. New keys must be seeded in a migration with a type and a
// default value.
const (
	KeyRegistrarMode        = "registrar_mode"
	KeyRegistrarLiveURL     = "registrar_live_url"
	KeyRegistrarSandboxURL  = "registrar_sandbox_url"
	KeyRegistrarAPIUser     = "registrar_api_user"
	KeyRegistrarAPIKey      = "registrar_api_key"
	KeyRegistrarUsername    = "registrar_username"
	KeyRegistrarClientIP    = "registrar_client_ip"
	KeyRegistrarBatchSize   = "registrar_batch_size"
	KeyRegistrarWaitSeconds = "registrar_wait_seconds"

	KeyMetricsAPIURL       = "metrics_api_url"
	KeyMetricsAccessID     = "metrics_access_id"
	KeyMetricsSecretKey    = "metrics_secret_key"
	KeyMetricsWaitSeconds  = "metrics_wait_seconds"
	KeyExtensionThreshold  = "extension_authority_threshold"
	KeyWildcardMatching    = "wildcard_matching"
	KeyOperatorEmail       = "operator_email"
	KeyParseFailureAddress = "parse_failure_address"
)

// RegistrarModeLive selects the production registrar endpoint; any other
// mode value selects the sandbox endpoint.
const RegistrarModeLive = "live"

// Registrar holds the availability-check API settings.
type Registrar struct {
	// URL is the endpoint selected by the configured mode.
	URL      string
	APIUser  string
	APIKey   string
	Username string
	ClientIP string
	// BatchSize is the number of domains submitted per API call.
	BatchSize int
	// Wait is the pause between consecutive API calls.
	Wait time.Duration
}

// Metrics holds the link-metrics API settings.
type Metrics struct {
	URL       string
	AccessID  string
	SecretKey string
	// Wait is the pause between consecutive API calls.
	Wait time.Duration
	// ExtensionThreshold is the page authority above which extension
	// variant domains are generated.
	ExtensionThreshold float64
}

// Notification holds the outgoing notification addresses.
type Notification struct {
	// OperatorEmail receives error reports and sync outcomes.
	OperatorEmail string
	// ParseFailureAddress receives the aggregated parse-failure report.
	ParseFailureAddress string
}

// Loader reads settings from storage and coerces them into typed structs.
type Loader struct {
	storage storage.SettingsStorage
}

// NewLoader creates a settings loader on top of the given storage.
func NewLoader(st storage.SettingsStorage) *Loader {
	return &Loader{storage: st}
}

// Registrar loads the availability-check API settings. The endpoint URL is
// selected by the registrar_mode setting.
func (l *Loader) Registrar(ctx context.Context) (*Registrar, error) {
	all, err := l.settingsMap(ctx)
	if err != nil {
		return nil, err
	}

	mode, err := l.value(all, KeyRegistrarMode)
	if err != nil {
		return nil, err
	}

	urlKey := KeyRegistrarSandboxURL
	if mode.Value == RegistrarModeLive {
		urlKey = KeyRegistrarLiveURL
	}
	url, err := l.value(all, urlKey)
	if err != nil {
		return nil, err
	}

	apiUser, err := l.value(all, KeyRegistrarAPIUser)
	if err != nil {
		return nil, err
	}
	apiKey, err := l.value(all, KeyRegistrarAPIKey)
	if err != nil {
		return nil, err
	}
	username, err := l.value(all, KeyRegistrarUsername)
	if err != nil {
		return nil, err
	}
	clientIP, err := l.value(all, KeyRegistrarClientIP)
	if err != nil {
		return nil, err
	}

	batchSize, err := l.intValue(all, KeyRegistrarBatchSize)
	if err != nil {
		return nil, err
	}
	wait, err := l.durationValue(all, KeyRegistrarWaitSeconds)
	if err != nil {
		return nil, err
	}

	return &Registrar{
		URL:       url.Value,
		APIUser:   apiUser.Value,
		APIKey:    apiKey.Value,
		Username:  username.Value,
		ClientIP:  clientIP.Value,
		BatchSize: batchSize,
		Wait:      wait,
	}, nil
}

// Metrics loads the link-metrics API settings.
func (l *Loader) Metrics(ctx context.Context) (*Metrics, error) {
	all, err := l.settingsMap(ctx)
	if err != nil {
		return nil, err
	}

	url, err := l.value(all, KeyMetricsAPIURL)
	if err != nil {
		return nil, err
	}
	accessID, err := l.value(all, KeyMetricsAccessID)
	if err != nil {
		return nil, err
	}
	secretKey, err := l.value(all, KeyMetricsSecretKey)
	if err != nil {
		return nil, err
	}

	wait, err := l.durationValue(all, KeyMetricsWaitSeconds)
	if err != nil {
		return nil, err
	}
	threshold, err := l.floatValue(all, KeyExtensionThreshold)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		URL:                url.Value,
		AccessID:           accessID.Value,
		SecretKey:          secretKey.Value,
		Wait:               wait,
		ExtensionThreshold: threshold,
	}, nil
}

// Notification loads the outgoing notification addresses.
func (l *Loader) Notification(ctx context.Context) (*Notification, error) {
	all, err := l.settingsMap(ctx)
	if err != nil {
		return nil, err
	}

	operator, err := l.value(all, KeyOperatorEmail)
	if err != nil {
		return nil, err
	}
	parseFailure, err := l.value(all, KeyParseFailureAddress)
	if err != nil {
		return nil, err
	}

	return &Notification{
		OperatorEmail:       operator.Value,
		ParseFailureAddress: parseFailure.Value,
	}, nil
}

// WildcardMatching reports whether the suffix matcher should honor wildcard
// registry entries.
func (l *Loader) WildcardMatching(ctx context.Context) (bool, error) {
	setting, err := l.storage.Setting(ctx, KeyWildcardMatching)
	if err != nil {
		return false, fmt.Errorf("could not load setting %q: %w", KeyWildcardMatching, err)
	}
	if setting == nil {
		return false, nil
	}

	return setting.Bool(), nil
}

func (l *Loader) settingsMap(ctx context.Context) (map[string]domain.Setting, error) {
	all, err := l.storage.Settings(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load settings: %w", err)
	}

	out := make(map[string]domain.Setting, len(all))
	for _, s := range all {
		out[s.Key] = s
	}

	return out, nil
}

func (l *Loader) value(all map[string]domain.Setting, key string) (domain.Setting, error) {
	setting, ok := all[key]
	if !ok {
		return domain.Setting{}, fmt.Errorf("setting %q is not configured", key)
	}

	return setting, nil
}

func (l *Loader) intValue(all map[string]domain.Setting, key string) (int, error) {
	setting, err := l.value(all, key)
	if err != nil {
		return 0, err
	}

	return setting.Int()
}

func (l *Loader) floatValue(all map[string]domain.Setting, key string) (float64, error) {
	setting, err := l.value(all, key)
	if err != nil {
		return 0, err
	}

	return setting.Float()
}

// durationValue treats the setting as a float number of seconds.
func (l *Loader) durationValue(all map[string]domain.Setting, key string) (time.Duration, error) {
	seconds, err := l.floatValue(all, key)
	if err != nil {
		return 0, err
	}

	return time.Duration(seconds * float64(time.Second)), nil
}
