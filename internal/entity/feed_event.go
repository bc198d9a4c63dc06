package entity

import (
	"time"

	"github.com/google/uuid"
)

type FeedEventKind string

const (
	FeedInsert FeedEventKind = "insert"
	FeedModify FeedEventKind = "modify"
	FeedRemove FeedEventKind = "remove"
)

// FeedEvent is one entry of the record change feed: the before and after
// snapshots of a single record mutation. Seq orders the feed; events for the
// same record are appended in mutation order because the append happens inside
// the mutating transaction.
type FeedEvent struct {
	Seq        int64         `json:"seq"`
	EventID    uuid.UUID     `json:"event_id"`
	RecordID   string        `json:"record_id"`
	Kind       FeedEventKind `json:"kind"`
	Before     *ImageRecord  `json:"before,omitempty"`
	After      *ImageRecord  `json:"after,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
	Dispatched bool          `json:"dispatched"`
}
