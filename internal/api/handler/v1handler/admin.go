package v1handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/riverqueue/river"

	"domaincheck/internal/worker"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/serrors"
)

// settingListResponse wraps the admin settings collection.
type settingListResponse struct {
	Items []domain.Setting `json:"items"`
}

// updateSettingRequest carries the new value for one setting.
type updateSettingRequest struct {
	Value string `json:"value"`
}

// domainListRequest replaces one of the classifier's domain sets.
type domainListRequest struct {
	Domains []string `json:"domains"`
}

// prefixListRequest replaces the extension prefix list.
type prefixListRequest struct {
	Prefixes []string `json:"prefixes"`
}

// enqueuedResponse reports whether a maintenance job was actually inserted
// or skipped because one is already queued.
type enqueuedResponse struct {
	Enqueued bool `json:"enqueued"`
}

// ListSettings returns every admin setting with its type information.
func (h *Handler) ListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.deps.Storage.Settings(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, settingListResponse{Items: settings})
}

// UpdateSetting validates and stores a new value for one setting. The key
// set is fixed at migration time; unknown keys are rejected.
func (h *Handler) UpdateSetting(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req updateSettingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	setting, err := h.deps.Storage.Setting(r.Context(), key)
	if err != nil {
		writeError(w, r, err)

		return
	}
	if setting == nil {
		writeError(w, r, serrors.With(serrors.ErrNotFound, "unknown setting %q", key))

		return
	}

	setting.Value = req.Value
	if err := setting.Validate(); err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid value for %q", key))

		return
	}

	if err := h.deps.Storage.UpdateSetting(r.Context(), key, req.Value); err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, setting)
}

// ListExclusions returns the excluded domain set.
func (h *Handler) ListExclusions(w http.ResponseWriter, r *http.Request) {
	h.listStrings(w, r, h.deps.Storage.Exclusions)
}

// ReplaceExclusions replaces the excluded domain set wholesale.
func (h *Handler) ReplaceExclusions(w http.ResponseWriter, r *http.Request) {
	h.replaceDomains(w, r, h.deps.Storage.ReplaceExclusions)
}

// ListPreservations returns the subdomain-preserved domain set.
func (h *Handler) ListPreservations(w http.ResponseWriter, r *http.Request) {
	h.listStrings(w, r, h.deps.Storage.Preservations)
}

// ReplacePreservations replaces the subdomain-preserved domain set wholesale.
func (h *Handler) ReplacePreservations(w http.ResponseWriter, r *http.Request) {
	h.replaceDomains(w, r, h.deps.Storage.ReplacePreservations)
}

// ListExtensionPrefixes returns the extension prefix list.
func (h *Handler) ListExtensionPrefixes(w http.ResponseWriter, r *http.Request) {
	prefixes, err := h.deps.Storage.ExtensionPrefixes(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}
	if prefixes == nil {
		prefixes = []string{}
	}

	writeJSON(w, http.StatusOK, prefixListRequest{Prefixes: prefixes})
}

// ReplaceExtensionPrefixes replaces the extension prefix list wholesale.
func (h *Handler) ReplaceExtensionPrefixes(w http.ResponseWriter, r *http.Request) {
	var req prefixListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	if err := h.deps.Storage.ReplaceExtensionPrefixes(r.Context(), req.Prefixes); err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, prefixListRequest{Prefixes: req.Prefixes})
}

// SyncTLDs enqueues a TLD registry sync job.
func (h *Handler) SyncTLDs(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, worker.TLDSyncArgs{})
}

// RunMetricsSweep enqueues the metrics driver sweep.
func (h *Handler) RunMetricsSweep(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, worker.MetricsSweepArgs{})
}

// RunReconcile enqueues the stalled-project reconciliation sweep.
func (h *Handler) RunReconcile(w http.ResponseWriter, r *http.Request) {
	h.enqueue(w, r, worker.ReconcileArgs{})
}

// RepairProjectLinks reconciles one project's metrics links (restores
// missing ones, drops duplicates) and recomputes its state.
func (h *Handler) RepairProjectLinks(w http.ResponseWriter, r *http.Request) {
	id, ok := projectID(w, r)
	if !ok {
		return
	}

	if err := h.deps.Measurer.Repair(r.Context(), id); err != nil {
		writeError(w, r, err)

		return
	}

	project, err := h.deps.Projects.RecomputeState(r.Context(), id)
	if err != nil {
		writeError(w, r, err)

		return
	}
	if project == nil {
		writeError(w, r, serrors.With(serrors.ErrNotFound, "project not found"))

		return
	}

	writeJSON(w, http.StatusOK, project)
}

func (h *Handler) listStrings(w http.ResponseWriter,
	r *http.Request,
	load func(ctx context.Context) ([]string, error)) {
	values, err := load(r.Context())
	if err != nil {
		writeError(w, r, err)

		return
	}
	if values == nil {
		values = []string{}
	}

	writeJSON(w, http.StatusOK, domainListRequest{Domains: values})
}

func (h *Handler) replaceDomains(w http.ResponseWriter,
	r *http.Request,
	replace func(ctx context.Context, domains []string) error) {
	var req domainListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid request body"))

		return
	}

	if err := replace(r.Context(), req.Domains); err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, args river.JobArgs) {
	inserted, err := h.deps.Storage.AddJob(r.Context(), args, nil)
	if err != nil {
		writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusAccepted, enqueuedResponse{Enqueued: inserted})
}
