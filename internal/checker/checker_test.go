package checker_test

import (
	"context"
	"testing"

	"domaincheck/internal/checker"
	"domaincheck/internal/project"
	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/lock"
	mockmailer "domaincheck/pkg/mailer/mock"
	"domaincheck/pkg/registrar"
	mockregistrar "domaincheck/pkg/registrar/mock"
	"domaincheck/pkg/serrors"
	"domaincheck/pkg/storage/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	storage  *memory.Memory
	client   *mockregistrar.MockClient
	mailer   *mockmailer.MockMailer
	projects *project.Service
	checker  *checker.Checker
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyRegistrarMode, Value: "sandbox", Type: domain.SettingTypeChoice, Choices: "live\nsandbox"},
		domain.Setting{Key: settings.KeyRegistrarSandboxURL, Value: "https://api.sandbox.example/xml.response", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarLiveURL, Value: "https://api.example/xml.response", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarAPIUser, Value: "apiuser", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarAPIKey, Value: "apikey", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarUsername, Value: "user", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarClientIP, Value: "127.0.0.1", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyRegistrarBatchSize, Value: "50", Type: domain.SettingTypeInteger},
		domain.Setting{Key: settings.KeyRegistrarWaitSeconds, Value: "0", Type: domain.SettingTypeFloat},
		domain.Setting{Key: settings.KeyOperatorEmail, Value: "ops@example.org", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyParseFailureAddress, Value: "parse@example.org", Type: domain.SettingTypeString},
	)
	require.NoError(t, st.UpsertTLD(context.Background(),
		domain.TLD{Suffix: "com", IsRecognized: true, IsAPIRegisterable: true}))

	loader := settings.NewLoader(st)
	m := mockmailer.NewMockMailer(ctrl)
	projects := project.New(st, loader, m, project.Options{From: "noreply@example.org"})
	client := mockregistrar.NewMockClient(ctrl)

	return &fixture{
		storage:  st,
		client:   client,
		mailer:   m,
		projects: projects,
		checker:  checker.New(st, loader, client, lock.NewLocal(), projects),
	}
}

func (f *fixture) newProject(t *testing.T, lines string) *domain.Project {
	t.Helper()

	p, err := f.projects.CreateFromUpload(context.Background(),
		domain.UserID(uuid.New()), "user@example.org", "list.txt", lines)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateChecking, p.State)

	return p
}

func (f *fixture) domainsByName(t *testing.T, id domain.ProjectID) map[string]domain.ProjectDomain {
	t.Helper()

	rows, err := f.storage.ProjectDomains(context.Background(), id)
	require.NoError(t, err)

	out := make(map[string]domain.ProjectDomain, len(rows))
	for _, row := range rows {
		out[row.Domain] = row
	}

	return out
}

func TestChecker_ProcessProject_success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t, "free.com\ntaken.com\n")

	f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&registrar.CheckResult{
			Domains: []registrar.DomainResult{
				{Domain: "free.com", Available: true},
				{Domain: "taken.com", Available: false},
			},
		}, nil)

	require.NoError(t, f.checker.ProcessProject(ctx, p.ID))

	domains := f.domainsByName(t, p.ID)
	require.Equal(t, domain.DomainStateAvailable, domains["free.com"].State)
	require.True(t, domains["free.com"].IsChecked)
	require.False(t, domains["free.com"].LastChecked.IsZero())
	require.Equal(t, domain.DomainStateUnavailable, domains["taken.com"].State)

	// the available domain seeded the measuring stage
	links, err := f.storage.UncheckedLinks(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, links, 1)
	require.False(t, links[0].IsExtension)

	updated, err := f.storage.ProjectByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateMeasuring, updated.State)
}

func TestChecker_ProcessProject_unmatchedDomainStaysUnchecked(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t, "one.com\ntwo.com\n")

	// first response omits two.com; it must stay unchecked and be retried
	first := f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ registrar.Params, names []string) (*registrar.CheckResult, error) {
			require.Len(t, names, 2)

			return &registrar.CheckResult{
				Domains: []registrar.DomainResult{{Domain: "one.com", Available: false}},
			}, nil
		})
	f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), []string{"two.com"}).
		Return(&registrar.CheckResult{
			Domains: []registrar.DomainResult{{Domain: "two.com", Available: false}},
		}, nil).After(first)
	// nothing available to measure, so the project completes with a mail
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.checker.ProcessProject(context.Background(), p.ID))

	domains := f.domainsByName(t, p.ID)
	require.True(t, domains["one.com"].IsChecked)
	require.True(t, domains["two.com"].IsChecked)
}

func TestChecker_ProcessProject_echoedPrefixMatches(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t, "example.com\n")

	f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&registrar.CheckResult{
			Domains: []registrar.DomainResult{{Domain: "Example.COM", Available: true}},
		}, nil)

	require.NoError(t, f.checker.ProcessProject(context.Background(), p.ID))

	domains := f.domainsByName(t, p.ID)
	require.Equal(t, domain.DomainStateAvailable, domains["example.com"].State)
}

func TestChecker_ProcessProject_unparseableTLDMarksBatchErrored(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t, "one.com\ntwo.com\n")

	f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&registrar.CheckResult{
			Errors: []registrar.APIError{{Number: registrar.ErrorNoUnparseableTLD, Description: "bad tld"}},
		}, nil)
	// the whole batch errored, so the project completes with a mail
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.checker.ProcessProject(context.Background(), p.ID))

	for _, d := range f.domainsByName(t, p.ID) {
		require.Equal(t, domain.DomainStateError, d.State)
		require.True(t, d.IsChecked)
		require.Contains(t, d.Error, "TLD")
	}
}

func TestChecker_ProcessProject_unknownAPIErrorIsFatal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t, "one.com\n")

	f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&registrar.CheckResult{
			Errors: []registrar.APIError{{Number: 99, Description: "unexpected"}},
		}, nil)
	// failure mail to the contact and to the operator
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	err := f.checker.ProcessProject(ctx, p.ID)
	require.Error(t, err)

	failed, getErr := f.storage.ProjectByID(ctx, p.ID)
	require.NoError(t, getErr)
	require.Equal(t, domain.ProjectStateError, failed.State)
	require.NotEmpty(t, failed.Error)

	// the domain itself stays unchecked
	domains := f.domainsByName(t, p.ID)
	require.False(t, domains["one.com"].IsChecked)
}

func TestChecker_ProcessProject_abnormalResponseLeavesBatchForRetry(t *testing.T) {
	f := newFixture(t)
	p := f.newProject(t, "one.com\n")

	first := f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, serrors.With(serrors.ErrUnavailable, "status 502"))
	f.client.EXPECT().CheckAvailability(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&registrar.CheckResult{
			Domains: []registrar.DomainResult{{Domain: "one.com", Available: false}},
		}, nil).After(first)
	f.mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	require.NoError(t, f.checker.ProcessProject(context.Background(), p.ID))

	domains := f.domainsByName(t, p.ID)
	require.True(t, domains["one.com"].IsChecked)
}

func TestChecker_ProcessProject_stopsWhenPaused(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.newProject(t, "one.com\n")

	_, err := f.projects.Pause(ctx, p.UserID, p.ID)
	require.NoError(t, err)

	// no registrar call expected
	require.NoError(t, f.checker.ProcessProject(ctx, p.ID))

	domains := f.domainsByName(t, p.ID)
	require.False(t, domains["one.com"].IsChecked)
}
