package v1handler_test

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"domaincheck/internal/api/handler/v1handler"
	"domaincheck/internal/measurer"
	"domaincheck/internal/project"
	"domaincheck/internal/settings"
	"domaincheck/pkg/domain"
	mocklinkmetrics "domaincheck/pkg/linkmetrics/mock"
	"domaincheck/pkg/lock"
	mockmailer "domaincheck/pkg/mailer/mock"
	"domaincheck/pkg/storage/memory"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type apiFixture struct {
	storage *memory.Memory
	mailer  *mockmailer.MockMailer
	router  chi.Router
	priv    *rsa.PrivateKey
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := memory.New()
	st.SeedSettings(
		domain.Setting{Key: settings.KeyRegistrarBatchSize, Value: "50", Type: domain.SettingTypeInteger},
		domain.Setting{Key: settings.KeyOperatorEmail, Value: "ops@example.org", Type: domain.SettingTypeString},
		domain.Setting{Key: settings.KeyParseFailureAddress, Value: "parse@example.org", Type: domain.SettingTypeString},
	)
	require.NoError(t, st.UpsertTLD(context.Background(),
		domain.TLD{Suffix: "com", IsRecognized: true, IsAPIRegisterable: true}))

	loader := settings.NewLoader(st)
	m := mockmailer.NewMockMailer(ctrl)
	projects := project.New(st, loader, m, project.Options{From: "noreply@example.org"})
	msr := measurer.New(st, loader, mocklinkmetrics.NewMockClient(ctrl), lock.NewLocal(), projects)

	priv, pubPEM := genRSAKeys(t)
	sec := newSecHandlerForTest(t, pubPEM)

	h := v1handler.New(v1handler.Deps{
		Projects: projects,
		Measurer: msr,
		Storage:  st,
	}, v1handler.Options{MaxUploadBytes: 1 << 20})

	return &apiFixture{
		storage: st,
		mailer:  m,
		router:  h.Routes(sec),
		priv:    priv,
	}
}

func (f *apiFixture) token(t *testing.T, userID uuid.UUID, admin bool) string {
	t.Helper()
	now := time.Now()

	return signJWTRS256(t, f.priv, userID.String(), admin, now, now.Add(time.Hour))
}

func (f *apiFixture) do(t *testing.T, token, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

func (f *apiFixture) upload(t *testing.T, token, lines string) domain.Project {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "urls.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte(lines))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("contactEmail", "user@example.org"))
	require.NoError(t, mw.Close())

	rec := f.do(t, token, http.MethodPost, "/projects", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Project
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	return created
}

func decodeItems[T any](t *testing.T, rec *httptest.ResponseRecorder) []T {
	t.Helper()

	var out struct {
		Items []T `json:"items"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))

	return out.Items
}

func TestAPI_UploadFlow(t *testing.T) {
	f := newAPIFixture(t)
	uid := uuid.New()
	token := f.token(t, uid, false)

	created := f.upload(t, token, "https://www.example.com/page\nhttp://sub.other.com\n")
	require.Equal(t, domain.ProjectStateChecking, created.State)
	require.Equal(t, domain.UserID(uid), created.UserID)

	rec := f.do(t, token, http.MethodGet, "/projects", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	projects := decodeItems[domain.Project](t, rec)
	require.Len(t, projects, 1)
	require.Equal(t, created.ID, projects[0].ID)

	rec = f.do(t, token, http.MethodGet, "/projects/"+uuid.UUID(created.ID).String()+"/domains", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	domains := decodeItems[domain.ProjectDomain](t, rec)
	require.Len(t, domains, 2)
	names := []string{domains[0].Domain, domains[1].Domain}
	require.ElementsMatch(t, []string{"example.com", "other.com"}, names)
}

func TestAPI_ProjectOwnership(t *testing.T) {
	f := newAPIFixture(t)
	owner := f.token(t, uuid.New(), false)
	stranger := f.token(t, uuid.New(), false)

	created := f.upload(t, owner, "https://example.com\n")
	path := "/projects/" + uuid.UUID(created.ID).String()

	rec := f.do(t, stranger, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, stranger, http.MethodDelete, path, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, owner, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAPI_PauseResume(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, uuid.New(), false)

	created := f.upload(t, token, "https://example.com\n")
	path := "/projects/" + uuid.UUID(created.ID).String()

	rec := f.do(t, token, http.MethodPost, path+"/pause", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var paused domain.Project
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&paused))
	require.Equal(t, domain.ProjectStatePaused, paused.State)

	// resuming a project with unchecked domains puts it back into checking
	rec = f.do(t, token, http.MethodPost, path+"/resume", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resumed domain.Project
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resumed))
	require.Equal(t, domain.ProjectStateChecking, resumed.State)

	// resuming a running project is a conflict
	rec = f.do(t, token, http.MethodPost, path+"/resume", nil, "")
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAPI_DeleteProject(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, uuid.New(), false)

	created := f.upload(t, token, "https://example.com\n")
	path := "/projects/" + uuid.UUID(created.ID).String()

	rec := f.do(t, token, http.MethodDelete, path, nil, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(t, token, http.MethodGet, path, nil, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_UploadRejectsMissingFile(t *testing.T) {
	f := newAPIFixture(t)
	token := f.token(t, uuid.New(), false)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("contactEmail", "user@example.org"))
	require.NoError(t, mw.Close())

	rec := f.do(t, token, http.MethodPost, "/projects", &buf, mw.FormDataContentType())
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_AdminSettings(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, uuid.New(), true)
	user := f.token(t, uuid.New(), false)

	// the admin surface is closed to regular tokens
	rec := f.do(t, user, http.MethodGet, "/admin/settings", nil, "")
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, admin, http.MethodGet, "/admin/settings", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := bytes.NewBufferString(`{"value":"25"}`)
	rec = f.do(t, admin, http.MethodPut, "/admin/settings/"+settings.KeyRegistrarBatchSize, body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	updated, err := f.storage.Setting(context.Background(), settings.KeyRegistrarBatchSize)
	require.NoError(t, err)
	require.Equal(t, "25", updated.Value)

	// a non-integer value for an integer setting is rejected
	body = bytes.NewBufferString(`{"value":"lots"}`)
	rec = f.do(t, admin, http.MethodPut, "/admin/settings/"+settings.KeyRegistrarBatchSize, body, "application/json")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body = bytes.NewBufferString(`{"value":"1"}`)
	rec = f.do(t, admin, http.MethodPut, "/admin/settings/no-such-key", body, "application/json")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_AdminClassifierLists(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, uuid.New(), true)

	body := bytes.NewBufferString(`{"domains":["blogspot.com","sites.example.com"]}`)
	rec := f.do(t, admin, http.MethodPut, "/admin/exclusions", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, admin, http.MethodGet, "/admin/exclusions", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var got struct {
		Domains []string `json:"domains"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	require.ElementsMatch(t, []string{"blogspot.com", "sites.example.com"}, got.Domains)

	body = bytes.NewBufferString(`{"prefixes":["www."]}`)
	rec = f.do(t, admin, http.MethodPut, "/admin/extension-prefixes", body, "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	prefixes, err := f.storage.ExtensionPrefixes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"www."}, prefixes)
}

func TestAPI_AdminEnqueueIsIdempotent(t *testing.T) {
	f := newAPIFixture(t)
	admin := f.token(t, uuid.New(), true)

	rec := f.do(t, admin, http.MethodPost, "/admin/tldsync", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var first struct {
		Enqueued bool `json:"enqueued"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&first))
	require.True(t, first.Enqueued)

	// the job is unique by kind; a second request is a no-op
	rec = f.do(t, admin, http.MethodPost, "/admin/tldsync", nil, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var second struct {
		Enqueued bool `json:"enqueued"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&second))
	require.False(t, second.Enqueued)
}

func TestAPI_Unauthenticated(t *testing.T) {
	f := newAPIFixture(t)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
