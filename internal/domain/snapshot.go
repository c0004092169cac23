package domain

import "time"

// Snapshot is a named, persisted project graph.
type Snapshot struct {
	Name          string
	Graph         *Graph
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}

// ProjectSummary is the listing view of a stored snapshot.
type ProjectSummary struct {
	Name          string
	NodeCount     int
	EffortHours   float64
	CreatedAt     time.Time
	LastUpdatedAt time.Time
}
