package project_test

import (
	"context"
	"errors"
	"testing"

	"domaincheck/internal/project"
	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	mockmailer "domaincheck/pkg/mailer/mock"
	"domaincheck/pkg/serrors"
	"domaincheck/pkg/storage"
	"domaincheck/pkg/storage/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestService(t *testing.T) (*memory.Memory, *mockmailer.MockMailer, *project.Service) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyOperatorEmail, Value: "ops@example.org", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyParseFailureAddress, Value: "parse@example.org", Type: domain.SettingTypeString},
	)
	require.NoError(t, st.UpsertTLD(context.Background(),
		domain.TLD{Suffix: "com", IsRecognized: true, IsAPIRegisterable: true}))

	m := mockmailer.NewMockMailer(ctrl)
	svc := project.New(st, settings.NewLoader(st), m, project.Options{From: "noreply@example.org"})

	return st, m, svc
}

func TestService_CreateFromUpload(t *testing.T) {
	st, _, svc := newTestService(t)
	ctx := context.Background()
	userID := domain.UserID(uuid.New())

	p, err := svc.CreateFromUpload(ctx, userID, "user@example.org", "list.txt",
		"http://example.com/page\nother.com\n")
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateChecking, p.State)
	require.Equal(t, "list.txt", p.Name)
	require.Empty(t, p.ParseErrors)

	domains, err := st.ProjectDomains(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, domains, 2)

	file, err := st.UploadedFileByProject(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, file)

	jobs := st.Jobs()
	require.Len(t, jobs, 1)
	require.Equal(t, project.CheckDomainsArgs{ProjectID: uuid.UUID(p.ID)}, jobs[0].Args)
}

func TestService_CreateFromUpload_nothingCheckableCompletesImmediately(t *testing.T) {
	st, m, svc := newTestService(t)
	ctx := context.Background()

	// the aggregated parse-failure report still goes out
	m.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)

	p, err := svc.CreateFromUpload(ctx, domain.UserID(uuid.New()), "", "list.txt",
		"javascript:alert(1)\n10.0.0.1\n")
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateCompleted, p.State)
	require.False(t, p.CompletedAt.IsZero())
	require.Contains(t, p.ParseErrors, "Javascript hook")
	require.Empty(t, st.Jobs())
}

func TestService_CreateFromUpload_emptyRegistry(t *testing.T) {
	ctrl := gomock.NewController(t)
	st := memory.New()
	svc := project.New(st, settings.NewLoader(st), mockmailer.NewMockMailer(ctrl), project.Options{})

	_, err := svc.CreateFromUpload(context.Background(), domain.UserID(uuid.New()), "", "list.txt", "example.com")
	require.Error(t, err)
	require.True(t, errors.Is(err, serrors.ErrUnavailable))
}

func TestService_Project_ownership(t *testing.T) {
	_, _, svc := newTestService(t)
	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	p, err := svc.CreateFromUpload(ctx, owner, "", "list.txt", "example.com")
	require.NoError(t, err)

	_, err = svc.Project(ctx, owner, p.ID)
	require.NoError(t, err)

	_, err = svc.Project(ctx, domain.UserID(uuid.New()), p.ID)
	require.True(t, errors.Is(err, serrors.ErrNotFound))
}

func TestService_Delete_cascades(t *testing.T) {
	st, _, svc := newTestService(t)
	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	p, err := svc.CreateFromUpload(ctx, owner, "", "list.txt", "example.com")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, owner, p.ID))

	domains, err := st.ProjectDomains(ctx, p.ID)
	require.NoError(t, err)
	require.Empty(t, domains)

	file, err := st.UploadedFileByProject(ctx, p.ID)
	require.NoError(t, err)
	require.Nil(t, file)
}

func TestService_RecomputeState_entersMeasuringAndEnqueues(t *testing.T) {
	st, _, svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateFromUpload(ctx, domain.UserID(uuid.New()), "", "list.txt", "example.com")
	require.NoError(t, err)
	st.ResetJobs()

	checkAllDomains(t, st, p.ID)
	seedUncheckedLink(t, st, p.ID)

	updated, err := svc.RecomputeState(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateMeasuring, updated.State)

	jobs := st.Jobs()
	require.Len(t, jobs, 1)
	require.Equal(t, project.UpdateMetricsArgs{ProjectID: uuid.UUID(p.ID)}, jobs[0].Args)
}

func TestService_RecomputeState_completesOnceWithSingleMail(t *testing.T) {
	st, m, svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateFromUpload(ctx, domain.UserID(uuid.New()), "user@example.org", "list.txt", "example.com")
	require.NoError(t, err)

	checkAllDomains(t, st, p.ID)

	// exactly one completion mail no matter how often we recompute
	m.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	updated, err := svc.RecomputeState(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateCompleted, updated.State)
	require.False(t, updated.CompletedAt.IsZero())
	require.True(t, updated.CompletionNotified)

	again, err := svc.RecomputeState(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateCompleted, again.State)
}

func TestService_RecomputeState_stickyStatesAreNoops(t *testing.T) {
	st, _, svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateFromUpload(ctx, domain.UserID(uuid.New()), "", "list.txt", "example.com")
	require.NoError(t, err)

	_, err = st.UpdateProject(ctx, p.ID, storage.ProjectUpdates{State: domain.ProjectStatePaused})
	require.NoError(t, err)
	checkAllDomains(t, st, p.ID)

	updated, err := svc.RecomputeState(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStatePaused, updated.State)
}

func TestService_PauseResume(t *testing.T) {
	st, _, svc := newTestService(t)
	ctx := context.Background()
	owner := domain.UserID(uuid.New())

	p, err := svc.CreateFromUpload(ctx, owner, "", "list.txt", "example.com")
	require.NoError(t, err)
	st.ResetJobs()

	paused, err := svc.Pause(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStatePaused, paused.State)

	// resuming with unchecked domains goes back to checking
	resumed, err := svc.Resume(ctx, owner, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateChecking, resumed.State)

	_, err = svc.Resume(ctx, owner, p.ID)
	require.True(t, errors.Is(err, serrors.ErrConflict))
}

func TestService_MarkFailed(t *testing.T) {
	st, m, svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.CreateFromUpload(ctx, domain.UserID(uuid.New()), "user@example.org", "list.txt", "example.com")
	require.NoError(t, err)

	// one mail for the contact, one for the operator
	m.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, svc.MarkFailed(ctx, p.ID, errors.New("registrar refused the request"), "stack"))

	failed, err := st.ProjectByID(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ProjectStateError, failed.State)
	require.Equal(t, "registrar refused the request", failed.Error)
	require.False(t, failed.CompletedAt.IsZero())
}

func checkAllDomains(t *testing.T, st *memory.Memory, id domain.ProjectID) {
	t.Helper()

	ctx := context.Background()
	domains, err := st.ProjectDomains(ctx, id)
	require.NoError(t, err)

	checked := true
	for _, d := range domains {
		_, err := st.UpdateDomain(ctx, d.ID, storage.DomainUpdates{
			State:     domain.DomainStateUnavailable,
			IsChecked: &checked,
		})
		require.NoError(t, err)
	}
}

func seedUncheckedLink(t *testing.T, st *memory.Memory, id domain.ProjectID) {
	t.Helper()

	ctx := context.Background()
	m, err := st.StoreMetrics(ctx, domain.URLMetrics{QueryURL: "example.com"})
	require.NoError(t, err)

	_, err = st.StoreLink(ctx, domain.ProjectMetrics{
		ProjectID: id,
		MetricsID: m.ID,
	})
	require.NoError(t, err)
}
