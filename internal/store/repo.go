package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int       // id > After
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEventRecord is a stored LLM request event.
type LLMRequestEventRecord struct {
	ID        int
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates token usage over a group of events.
type LLMUsage struct {
	Key          string // purpose or model
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append access to domain events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// ActivityRecord is the persisted form of an activity. Metadata and
// Content are opaque JSON owned by the activity package.
type ActivityRecord struct {
	ID         string
	OwnerID    string
	Title      string
	Status     string
	Language   string
	Difficulty string
	Topics     string
	Metadata   json.RawMessage
	Content    json.RawMessage
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	OwnerID string // exact match when set
	Status  string // exact match when set
	Limit   int
	Offset  int
}

// ActivityRepo persists activities.
type ActivityRepo interface {
	Create(ctx context.Context, rec *ActivityRecord) error
	// Get returns ErrNotFound when no activity has the id.
	Get(ctx context.Context, id string) (*ActivityRecord, error)
	// List returns activities ordered by most recently updated.
	List(ctx context.Context, f ActivityFilter) ([]ActivityRecord, error)
	// Update replaces every mutable column. Returns ErrNotFound when
	// the id is unknown.
	Update(ctx context.Context, rec *ActivityRecord) error
	// Delete returns ErrNotFound when the id is unknown.
	Delete(ctx context.Context, id string) error
}
