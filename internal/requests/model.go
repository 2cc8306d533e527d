package requests

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a request. declined and returned are
// terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusDeclined Status = "declined"
	StatusIssued   Status = "issued"
	StatusReturned Status = "returned"
)

// transitions is the whole state machine. Anything not listed is rejected.
var transitions = map[Status][]Status{
	StatusPending:  {StatusApproved, StatusDeclined},
	StatusApproved: {StatusIssued},
	StatusIssued:   {StatusReturned},
}

// CanTransition reports whether from -> to is a defined transition.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is defined from s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// TargetType discriminates the polymorphic catalogue reference. Only item
// requests take part in quantity bookkeeping.
type TargetType string

const (
	TargetItem     TargetType = "item"
	TargetDocument TargetType = "document"
)

func ParseTargetType(s string) (TargetType, bool) {
	switch TargetType(s) {
	case TargetItem:
		return TargetItem, true
	case TargetDocument:
		return TargetDocument, true
	}
	return "", false
}

// Fixed loan durations offered to lecturers.
var durations = map[string]struct{}{
	"1 day":  {},
	"2 days": {},
	"3 days": {},
	"4 days": {},
	"5 days": {},
	"1 week": {},
}

func ValidDuration(s string) bool {
	_, ok := durations[s]
	return ok
}

// Request is one row of the requests table. Rows are never deleted; the
// status column is the durable trace of the lifecycle.
type Request struct {
	RequestID         int64
	RequestULID       string
	Type              TargetType
	TargetID          int64
	TargetName        string // joined from the catalogue, read-only
	RequesterID       string
	Status            Status
	QuantityRequested int
	Duration          string
	Issued            bool
	Returned          bool
	DeclineReason     sql.NullString
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Target is a resolved catalogue entry (item or document).
type Target struct {
	Type     TargetType
	ID       int64
	Name     string
	Quantity int // items only
}

// Contact is the name/email pair used for notifications.
type Contact struct {
	Name  string
	Email string
}

// Queue selects one of the storekeeper work queues.
type Queue string

const (
	QueueApproved Queue = "approved" // approved item requests not yet issued
	QueueIssued   Queue = "issued"   // issued, not yet returned
	QueueReturned Queue = "returned" // returned history
)

func ParseQueue(s string) (Queue, bool) {
	switch Queue(s) {
	case QueueApproved, QueueIssued, QueueReturned:
		return Queue(s), true
	}
	return "", false
}

type Page struct {
	Limit  int
	Offset int
	Order  string
}
