package tldsync_test

import (
	"context"
	"testing"

	"domaincheck/internal/settings"
	"domaincheck/internal/tldsync"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/mailer"
	mockmailer "domaincheck/pkg/mailer/mock"
	"domaincheck/pkg/registrar"
	mockregistrar "domaincheck/pkg/registrar/mock"
	"domaincheck/pkg/storage/memory"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newSyncer(t *testing.T) (*memory.Memory, *mockregistrar.MockClient, *mockmailer.MockMailer, *tldsync.Syncer) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyRegistrarMode, Value: "live", Type: domain.SettingTypeChoice, Choices: "live\nsandbox"},
		domain.Setting{Key: settings.KeyRegistrarLiveURL, Value: "https://api.example/xml.response", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarSandboxURL, Value: "https://api.sandbox.example/xml.response", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarAPIUser, Value: "apiuser", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarAPIKey, Value: "apikey", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarUsername, Value: "user", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarClientIP, Value: "127.0.0.1", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarBatchSize, Value: "50", Type: domain.SettingTypeInteger},
		domain.Setting{Key: settings.KeyRegistrarWaitSeconds, Value: "0", Type: domain.SettingTypeFloat},
		domain.Setting{Key: settings.KeyOperatorEmail, Value: "ops@example.org", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyParseFailureAddress, Value: "parse@example.org", Type: domain.SettingTypeString},
	)

	client := mockregistrar.NewMockClient(ctrl)
	m := mockmailer.NewMockMailer(ctrl)
	syncer := tldsync.New(st, settings.NewLoader(st), client, m, tldsync.Options{From: "noreply@example.org"})

	return st, client, m, syncer
}

func TestSyncer_Sync(t *testing.T) {
	ctx := context.Background()
	st, client, m, syncer := newSyncer(t)

	// a suffix the registrar no longer lists
	require.NoError(t, st.UpsertTLD(ctx, domain.TLD{
		Suffix: "gone", IsRecognized: true, IsAPIRegisterable: true, Type: "GTLD",
	}))
	// a suffix whose registerability changed
	require.NoError(t, st.UpsertTLD(ctx, domain.TLD{
		Suffix: "com", IsRecognized: true, IsAPIRegisterable: false, Type: "GTLD",
	}))

	client.EXPECT().TLDList(gomock.Any(), gomock.Any()).
		Return([]registrar.TLDInfo{
			{Name: "com", IsAPIRegisterable: true, Type: "GTLD", Description: "commercial"},
			{Name: "io", IsAPIRegisterable: true, Type: "CCTLD"},
		}, "<raw/>", nil)

	var sent mailer.Message
	m.EXPECT().Send(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, msg mailer.Message) error {
			sent = msg

			return nil
		})

	require.NoError(t, syncer.Sync(ctx))

	byName := make(map[string]domain.TLD)
	tlds, err := st.TLDs(ctx)
	require.NoError(t, err)
	for _, tld := range tlds {
		byName[tld.Suffix] = tld
	}

	require.Len(t, byName, 3)
	require.True(t, byName["com"].IsRecognized)
	require.True(t, byName["com"].IsAPIRegisterable)
	require.Equal(t, "commercial", byName["com"].Description)

	require.True(t, byName["io"].IsRecognized)
	require.Equal(t, "CCTLD", byName["io"].Type)

	// the delisted suffix is kept but demoted
	require.False(t, byName["gone"].IsRecognized)
	require.False(t, byName["gone"].IsAPIRegisterable)
	require.Equal(t, "unknown", byName["gone"].Type)

	require.Equal(t, []string{"ops@example.org"}, sent.To)
	require.Contains(t, sent.Body, "<raw/>")
}

func TestSyncer_Sync_fetchFailureSendsNothing(t *testing.T) {
	ctx := context.Background()
	_, client, _, syncer := newSyncer(t)

	client.EXPECT().TLDList(gomock.Any(), gomock.Any()).
		Return(nil, "", context.DeadlineExceeded)

	require.Error(t, syncer.Sync(ctx))
}
