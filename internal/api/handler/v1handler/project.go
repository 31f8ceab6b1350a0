package v1handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"
)

// projectListResponse wraps the project collection.
type projectListResponse struct {
	Items []domain.Project `json:"items"`
}

// domainListResponse wraps a project's parsed domains.
type domainListResponse struct {
	Items []domain.ProjectDomain `json:"items"`
}

// CreateProject accepts a multipart upload of a URL list and starts the
// checking pipeline. The optional contactEmail form field is where the
// completion and failure notifications go.
func (h *Handler) CreateProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.options.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.options.MaxUploadBytes); err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not parse upload"))

		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "missing file field"))

		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "could not read upload"))

		return
	}

	project, err := h.deps.Projects.CreateFromUpload(r.Context(),
		GetUserIDFromContext(r.Context()),
		r.FormValue("contactEmail"),
		header.Filename,
		string(data))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, project)
}

// ListProjects returns the caller's projects, newest first.
func (h *Handler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.deps.Projects.UserProjects(r.Context(), GetUserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, projectListResponse{Items: projects})
}

// GetProject returns one project owned by the caller.
func (h *Handler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	project, err := h.deps.Projects.Project(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, project)
}

// DeleteProject removes a project together with its domains, file and
// metrics links.
func (h *Handler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if err := h.deps.Projects.Delete(r.Context(), GetUserIDFromContext(r.Context()), id); err != nil {
		writeError(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// PauseProject suspends processing of a project.
func (h *Handler) PauseProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	project, err := h.deps.Projects.Pause(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, project)
}

// ResumeProject lifts a pause and re-enqueues the matching job.
func (h *Handler) ResumeProject(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	project, err := h.deps.Projects.Resume(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, project)
}

// ListProjectDomains returns the parsed domains of a project with their
// check states.
func (h *Handler) ListProjectDomains(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	domains, err := h.deps.Projects.Domains(r.Context(), GetUserIDFromContext(r.Context()), id)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, domainListResponse{Items: domains})
}

func projectID(w http.ResponseWriter, r *http.Request) (domain.ProjectID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid project id"))

		return domain.ProjectID{}, false
	}

	return domain.ProjectID(id), true
}
