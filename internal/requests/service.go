package requests

import (
	"context"
	"crypto/rand"
	"database/sql"
	"log"
	"time"

	"github.com/oklog/ulid/v2"

	"DIMS-backend/internal/platform/notify"
)

// ===== Interfaces =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service =====

// Service is the reservation engine: it validates input, drives the guarded
// transitions through the store and dispatches best-effort notifications
// after a transition commits.
type Service struct {
	store    Store
	notifier notify.Notifier
	clock    Clock
	id       IDGen
}

func NewService(db *sql.DB, n notify.Notifier) *Service {
	return &Service{
		store:    NewStore(db),
		notifier: n,
		clock:    realClock{},
		id:       ulidGen{},
	}
}

// Create validates and persists a new pending request, then notifies the
// admin inbox.
func (s *Service) Create(ctx context.Context, requesterID string, in CreateRequestInput) (*RequestResponse, error) {
	if requesterID == "" {
		return nil, ErrInvalid("requester is required")
	}

	t, ok := ParseTargetType(in.Type)
	if !ok {
		return nil, ErrInvalid("type must be item or document")
	}
	if in.TargetID <= 0 {
		return nil, ErrInvalid("target_id is required")
	}
	if !ValidDuration(in.Duration) {
		return nil, ErrInvalid("duration must be one of the offered periods")
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}
	if qty < 1 {
		return nil, ErrInvalid("quantity must be at least 1")
	}
	// Documents are not quantity-limited; a document request is always one.
	if t == TargetDocument {
		qty = 1
	}

	target, err := s.store.ResolveTarget(ctx, t, in.TargetID)
	if err != nil {
		return nil, err
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	r := &Request{
		RequestULID:       idStr,
		Type:              t,
		TargetID:          in.TargetID,
		TargetName:        target.Name,
		RequesterID:       requesterID,
		Status:            StatusPending,
		QuantityRequested: qty,
		Duration:          in.Duration,
		CreatedAt:         s.clock.Now(),
	}
	if err := s.store.InsertRequest(ctx, r); err != nil {
		return nil, err
	}

	s.dispatch(ctx, notify.EventRequestCreated, r, "")

	resp := buildResponse(r)
	return &resp, nil
}

// Decide applies the admin decision on a pending request.
func (s *Service) Decide(ctx context.Context, requestULID string, in DecideRequestInput) (*RequestResponse, error) {
	var to Status
	switch Status(in.Decision) {
	case StatusApproved:
		to = StatusApproved
	case StatusDeclined:
		to = StatusDeclined
	default:
		return nil, ErrInvalid("decision must be approved or declined")
	}

	r, err := s.store.ExecDecide(ctx, requestULID, to, in.Reason)
	if err != nil {
		return nil, err
	}

	kind := notify.EventRequestApproved
	reason := ""
	if to == StatusDeclined {
		kind = notify.EventRequestDeclined
		if in.Reason != nil {
			reason = *in.Reason
		}
	}
	s.dispatch(ctx, kind, r, reason)

	resp := buildResponse(r)
	return &resp, nil
}

// Issue hands stock to the lecturer: approved -> issued with the quantity
// decrement applied atomically by the store.
func (s *Service) Issue(ctx context.Context, requestULID string) (*RequestResponse, error) {
	r, err := s.store.ExecIssue(ctx, requestULID)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, notify.EventRequestIssued, r, "")

	resp := buildResponse(r)
	return &resp, nil
}

// Return restores stock: issued -> returned.
func (s *Service) Return(ctx context.Context, requestULID string) (*RequestResponse, error) {
	r, err := s.store.ExecReturn(ctx, requestULID)
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, notify.EventRequestReturned, r, "")

	resp := buildResponse(r)
	return &resp, nil
}

func (s *Service) Get(ctx context.Context, requestULID string) (*RequestResponse, error) {
	r, err := s.store.GetByULID(ctx, requestULID)
	if err != nil {
		return nil, err
	}
	resp := buildResponse(r)
	return &resp, nil
}

func (s *Service) ListMine(ctx context.Context, requesterID string, p Page) ([]RequestResponse, int64, error) {
	rs, total, err := s.store.ListByRequester(ctx, requesterID, p)
	if err != nil {
		return nil, 0, err
	}
	return buildResponses(rs), total, nil
}

func (s *Service) ListAll(ctx context.Context, p Page) ([]RequestResponse, int64, error) {
	rs, total, err := s.store.ListAll(ctx, p)
	if err != nil {
		return nil, 0, err
	}
	return buildResponses(rs), total, nil
}

func (s *Service) ListQueue(ctx context.Context, queue string, p Page) ([]RequestResponse, int64, error) {
	q, ok := ParseQueue(queue)
	if !ok {
		return nil, 0, ErrInvalid("unknown queue")
	}
	rs, total, err := s.store.ListQueue(ctx, q, p)
	if err != nil {
		return nil, 0, err
	}
	return buildResponses(rs), total, nil
}

// dispatch assembles the event payload and hands it to the notifier in the
// background. Lookups here are off the transition's critical path; any
// failure is logged and dropped.
func (s *Service) dispatch(ctx context.Context, kind notify.EventKind, r *Request, reason string) {
	ev := notify.Event{
		Kind:        kind,
		RequestULID: r.RequestULID,
		TargetName:  r.TargetName,
		Quantity:    r.QuantityRequested,
		Reason:      reason,
	}

	if ev.TargetName == "" {
		if target, err := s.store.ResolveTarget(ctx, r.Type, r.TargetID); err == nil {
			ev.TargetName = target.Name
		} else {
			log.Printf("[WARN] notify: resolve target for request %s: %v", r.RequestULID, err)
		}
	}
	if contact, err := s.store.GetContact(ctx, r.RequesterID); err == nil {
		ev.RequesterName = contact.Name
		ev.RequesterEmail = contact.Email
	} else {
		log.Printf("[WARN] notify: resolve requester for request %s: %v", r.RequestULID, err)
	}

	notify.Dispatch(s.notifier, ev)
}
