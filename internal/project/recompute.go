package project

import (
	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"
)

// Recompute derives the next lifecycle state from the current one and the
// project's progress counters. Pure; every caller that mutates domains or
// metrics links goes through this single function so the transition rules
// stay in one place.
//
// Sticky states (paused, error, parsing) are returned unchanged. Otherwise:
// unchecked domains keep the project checking, unchecked metrics links move
// it to measuring, and a project with nothing left to do is completed. A
// project whose domains are all checked and that has no metrics links at all
// skips measuring entirely.
func Recompute(current domain.ProjectState,
	domains storage.DomainSummary,
	metrics storage.MetricsSummary) domain.ProjectState {
	if current.Sticky() {
		return current
	}

	if domains.Unchecked > 0 {
		return domain.ProjectStateChecking
	}
	if metrics.Unchecked > 0 {
		return domain.ProjectStateMeasuring
	}

	return domain.ProjectStateCompleted
}
