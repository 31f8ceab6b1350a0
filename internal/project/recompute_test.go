package project_test

import (
	"testing"

	"domaincheck/internal/project"
	"domaincheck/pkg/domain"
	"domaincheck/pkg/storage"

	"github.com/stretchr/testify/require"
)

func TestRecompute(t *testing.T) {
	tests := []struct {
		name    string
		current domain.ProjectState
		domains storage.DomainSummary
		metrics storage.MetricsSummary
		want    domain.ProjectState
	}{
		{
			name:    "unchecked domains keep checking",
			current: domain.ProjectStateChecking,
			domains: storage.DomainSummary{Total: 10, Unchecked: 3},
			want:    domain.ProjectStateChecking,
		},
		{
			name:    "unchecked links move to measuring",
			current: domain.ProjectStateChecking,
			domains: storage.DomainSummary{Total: 10},
			metrics: storage.MetricsSummary{Total: 4, Unchecked: 2},
			want:    domain.ProjectStateMeasuring,
		},
		{
			name:    "everything done completes",
			current: domain.ProjectStateMeasuring,
			domains: storage.DomainSummary{Total: 10},
			metrics: storage.MetricsSummary{Total: 4},
			want:    domain.ProjectStateCompleted,
		},
		{
			name:    "no links skips measuring entirely",
			current: domain.ProjectStateChecking,
			domains: storage.DomainSummary{Total: 10},
			want:    domain.ProjectStateCompleted,
		},
		{
			name:    "paused is sticky",
			current: domain.ProjectStatePaused,
			domains: storage.DomainSummary{Total: 10, Unchecked: 10},
			want:    domain.ProjectStatePaused,
		},
		{
			name:    "error is sticky",
			current: domain.ProjectStateError,
			domains: storage.DomainSummary{Total: 10},
			want:    domain.ProjectStateError,
		},
		{
			name:    "parsing is sticky",
			current: domain.ProjectStateParsing,
			domains: storage.DomainSummary{},
			want:    domain.ProjectStateParsing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, project.Recompute(tt.current, tt.domains, tt.metrics))
		})
	}
}
