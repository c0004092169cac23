package repository

import (
	"testing"
	"time"

	"github.com/alexanderramin/mediantree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecord map[string]any

func (r fakeRecord) Get(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

func TestNodeProps_RoundTrip(t *testing.T) {
	manual := 4.0
	n := &domain.Node{
		ID:              "n1",
		Kind:            domain.NodeTask,
		Title:           "Backend",
		Description:     "API work",
		EffortHours:     4,
		LastManualHours: &manual,
		Estimate:        &domain.Estimate{P70: 5.1, P95: 8.2, P99: 11.3},
	}

	props := nodeToProps(n, 3)
	assert.Equal(t, int64(3), props["order"])

	got, err := nodeFromProps(props)
	require.NoError(t, err)
	assert.Equal(t, n, got)
}

func TestNodeProps_OmitsNilPointers(t *testing.T) {
	n := &domain.Node{ID: "root", Kind: domain.NodeProject, Title: "Launch"}

	props := nodeToProps(n, 0)
	assert.NotContains(t, props, "last_manual_hours")
	assert.NotContains(t, props, "estimate_p70")

	got, err := nodeFromProps(props)
	require.NoError(t, err)
	assert.Nil(t, got.LastManualHours)
	assert.Nil(t, got.Estimate)
}

func TestNodeFromProps_IntegerHours(t *testing.T) {
	got, err := nodeFromProps(map[string]any{"id": "a", "kind": "task", "effort_hours": int64(7)})
	require.NoError(t, err)
	assert.Equal(t, 7.0, got.EffortHours)
}

func TestNodeFromProps_RequiresID(t *testing.T) {
	_, err := nodeFromProps(map[string]any{"kind": "task"})
	assert.Error(t, err)
}

func TestSummaryFromRecord(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)

	s, err := summaryFromRecord(fakeRecord{
		"name":       "launch",
		"created_at": formatTime(created),
		"updated_at": formatTime(updated),
		"node_count": int64(6),
		"effort":     10.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "launch", s.Name)
	assert.Equal(t, 6, s.NodeCount)
	assert.Equal(t, 10.0, s.EffortHours)
	assert.True(t, created.Equal(s.CreatedAt))
	assert.True(t, updated.Equal(s.LastUpdatedAt))
}

func TestSummaryFromRecord_NullEffort(t *testing.T) {
	now := formatTime(time.Now())
	s, err := summaryFromRecord(fakeRecord{
		"name": "empty", "created_at": now, "updated_at": now, "node_count": int64(0), "effort": nil,
	})
	require.NoError(t, err)
	assert.Zero(t, s.EffortHours)
}

func TestSummaryFromRecord_BadTimestamp(t *testing.T) {
	_, err := summaryFromRecord(fakeRecord{"name": "x", "created_at": "yesterday"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_at")
}
