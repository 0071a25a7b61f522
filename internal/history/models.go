package history

import "time"

// Run status values.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Counts are the summary tallies of one run.
type Counts struct {
	Processed  int `json:"processed"`
	Added      int `json:"added"`
	Updated    int `json:"updated"`
	Known      int `json:"known"`
	NotFound   int `json:"notFound"`
	Unresolved int `json:"unresolved"`
	Skipped    int `json:"skipped"`
}

// Run is one invocation of sync or refresh.
type Run struct {
	ID         string     `json:"id"`
	Kind       string     `json:"kind"`
	Status     string     `json:"status"`
	DryRun     bool       `json:"dryRun"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
	Counts     Counts     `json:"counts"`
	Error      string     `json:"error,omitempty"`
}

// Check is the outcome of resolving one entry.
type Check struct {
	RunID        string    `json:"runId"`
	EntryID      string    `json:"entryId"`
	Title        string    `json:"title"`
	Outcome      string    `json:"outcome"`
	Services     []string  `json:"services"`
	RentBuy      []string  `json:"rentBuy"`
	MatchedTitle string    `json:"matchedTitle,omitempty"`
	MatchedYear  int       `json:"matchedYear,omitempty"`
	Error        string    `json:"error,omitempty"`
	CheckedAt    time.Time `json:"checkedAt"`
}
