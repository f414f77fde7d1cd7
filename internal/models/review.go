package models

import "time"

// Queue partitions the due set relative to the backlog threshold.
type Queue string

const (
	QueueRegular Queue = "regular"
	QueueBacklog Queue = "backlog"
	QueueAll     Queue = "all"
)

// Review query defaults shared by the due-card query and deck aggregation.
const (
	DefaultBacklogThresholdDays = 7
	DefaultDisplayLimit         = 100
)

// ReviewQuery selects the flashcards eligible for review.
type ReviewQuery struct {
	Types                []WordType
	Tags                 []string
	States               []CardState
	ShowReverse          bool
	Queue                Queue
	BacklogThresholdDays int
	Now                  time.Time
	Limit                int
}

// Normalized returns a copy with defaults filled in: empty type/state filters
// mean "all", an absent queue means no partition, and the threshold falls
// back to DefaultBacklogThresholdDays. Deck aggregation relies on deriving
// defaults here exactly once.
func (q ReviewQuery) Normalized() ReviewQuery {
	if len(q.Types) == 0 {
		q.Types = append([]WordType(nil), AllWordTypes...)
	}
	if len(q.States) == 0 {
		q.States = append([]CardState(nil), AllCardStates...)
	}
	if q.Queue == "" {
		q.Queue = QueueAll
	}
	if q.BacklogThresholdDays <= 0 {
		q.BacklogThresholdDays = DefaultBacklogThresholdDays
	}
	if q.Now.IsZero() {
		q.Now = time.Now()
	}
	return q
}

// BacklogCutoffMS is the millisecond timestamp separating the regular queue
// from the backlog: due times at or before it are backlog.
func (q ReviewQuery) BacklogCutoffMS() int64 {
	return q.Now.UnixMilli() - int64(q.BacklogThresholdDays)*24*int64(time.Hour/time.Millisecond)
}
