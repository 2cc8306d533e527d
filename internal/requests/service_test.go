package requests

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"DIMS-backend/internal/platform/notify"
)

// ===== in-memory fake store =====

// fakeStore serializes every transition behind one mutex, which is the
// in-memory equivalent of the SQL store's row locks.
type fakeStore struct {
	mu       sync.Mutex
	seq      int64
	requests map[string]*Request
	items    map[int64]*Target
	docs     map[int64]*Target
	contacts map[string]Contact
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		requests: make(map[string]*Request),
		items:    make(map[int64]*Target),
		docs:     make(map[int64]*Target),
		contacts: make(map[string]Contact),
	}
}

func (f *fakeStore) addItem(id int64, name string, qty int) {
	f.items[id] = &Target{Type: TargetItem, ID: id, Name: name, Quantity: qty}
}

func (f *fakeStore) addDoc(id int64, title string) {
	f.docs[id] = &Target{Type: TargetDocument, ID: id, Name: title}
}

func (f *fakeStore) itemQty(id int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[id].Quantity
}

func (f *fakeStore) InsertRequest(_ context.Context, r *Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.RequestID = f.seq
	cp := *r
	f.requests[r.RequestULID] = &cp
	return nil
}

func (f *fakeStore) GetByULID(_ context.Context, u string) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[u]
	if !ok {
		return nil, ErrNotFound("request not found")
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ExecDecide(_ context.Context, u string, to Status, reason *string) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[u]
	if !ok {
		return nil, ErrNotFound("request not found")
	}
	if !CanTransition(r.Status, to) {
		return nil, ErrInvalidTransition(fmt.Sprintf("cannot decide a %s request", r.Status))
	}
	r.DeclineReason = sql.NullString{}
	if to == StatusDeclined && reason != nil && *reason != "" {
		r.DeclineReason = sql.NullString{String: *reason, Valid: true}
	}
	r.Status = to
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ExecIssue(_ context.Context, u string) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[u]
	if !ok {
		return nil, ErrNotFound("request not found")
	}
	if !CanTransition(r.Status, StatusIssued) {
		return nil, ErrInvalidTransition(fmt.Sprintf("cannot issue a %s request", r.Status))
	}
	if r.Type != TargetItem {
		return nil, ErrInvalidTransition("only item requests can be issued")
	}
	item, ok := f.items[r.TargetID]
	if !ok {
		return nil, ErrNotFound("item not found")
	}
	if item.Quantity < r.QuantityRequested {
		return nil, ErrInsufficientStock(fmt.Sprintf("requested %d, available %d", r.QuantityRequested, item.Quantity))
	}
	item.Quantity -= r.QuantityRequested
	r.Status = StatusIssued
	r.Issued = true
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ExecReturn(_ context.Context, u string) (*Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[u]
	if !ok {
		return nil, ErrNotFound("request not found")
	}
	if !CanTransition(r.Status, StatusReturned) {
		return nil, ErrInvalidTransition(fmt.Sprintf("cannot return a %s request", r.Status))
	}
	item, ok := f.items[r.TargetID]
	if !ok {
		return nil, ErrNotFound("item not found")
	}
	item.Quantity += r.QuantityRequested
	r.Status = StatusReturned
	r.Returned = true
	cp := *r
	return &cp, nil
}

func (f *fakeStore) ListByRequester(_ context.Context, id string, _ Page) ([]Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Request
	for _, r := range f.requests {
		if r.RequesterID == id {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListAll(_ context.Context, _ Page) ([]Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Request
	for _, r := range f.requests {
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ListQueue(_ context.Context, q Queue, _ Page) ([]Request, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Request
	for _, r := range f.requests {
		if r.Type != TargetItem {
			continue
		}
		switch q {
		case QueueApproved:
			if r.Status == StatusApproved && !r.Issued {
				out = append(out, *r)
			}
		case QueueIssued:
			if r.Status == StatusIssued && !r.Returned {
				out = append(out, *r)
			}
		case QueueReturned:
			if r.Status == StatusReturned {
				out = append(out, *r)
			}
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeStore) ResolveTarget(_ context.Context, t TargetType, id int64) (*Target, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var m map[int64]*Target
	switch t {
	case TargetItem:
		m = f.items
	case TargetDocument:
		m = f.docs
	default:
		return nil, ErrInvalid("unknown target type")
	}
	tg, ok := m[id]
	if !ok {
		return nil, ErrNotFound(string(t) + " not found")
	}
	cp := *tg
	return &cp, nil
}

func (f *fakeStore) GetContact(_ context.Context, id string) (*Contact, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.contacts[id]
	if !ok {
		return nil, ErrNotFound("account not found")
	}
	return &c, nil
}

// ===== helpers =====

type seqIDGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("REQ%04d", g.n), nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newTestService(f *fakeStore) *Service {
	f.contacts["lect-1"] = Contact{Name: "Ada Lovelace", Email: "ada@dept.example"}
	f.contacts["lect-2"] = Contact{Name: "Alan Turing", Email: "alan@dept.example"}
	return &Service{
		store:    f,
		notifier: nopNotifier{},
		clock:    fixedClock{t: time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)},
		id:       &seqIDGen{},
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, notify.Event) error { return nil }

// ===== tests =====

func TestCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	cases := []struct {
		name string
		uid  string
		in   CreateRequestInput
		code Code
	}{
		{"unknown type", "lect-1", CreateRequestInput{Type: "book", TargetID: 1, Quantity: 1, Duration: "1 day"}, CodeInvalidArgument},
		{"missing duration", "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 1}, CodeInvalidArgument},
		{"bad duration", "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 1, Duration: "2 weeks"}, CodeInvalidArgument},
		{"negative quantity", "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: -3, Duration: "1 day"}, CodeInvalidArgument},
		{"missing target", "lect-1", CreateRequestInput{Type: "item", TargetID: 999, Quantity: 1, Duration: "1 day"}, CodeNotFound},
		{"no requester", "", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 1, Duration: "1 day"}, CodeInvalidArgument},
	}
	for _, tc := range cases {
		_, err := svc.Create(ctx, tc.uid, tc.in)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		if !IsCode(err, tc.code) {
			t.Errorf("%s: got %v, want code %s", tc.name, err, tc.code)
		}
	}

	// Nothing was persisted by the rejected inputs.
	if all, _, _ := f.ListAll(ctx, Page{}); len(all) != 0 {
		t.Errorf("rejected inputs persisted %d requests", len(all))
	}
}

func TestCreateDefaultsAndDocumentQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	f.addDoc(7, "Exam Archive 2024")
	svc := newTestService(f)

	// Quantity omitted defaults to 1.
	res, err := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Duration: "1 day"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.QuantityRequested != 1 || res.Status != string(StatusPending) {
		t.Errorf("got qty=%d status=%s", res.QuantityRequested, res.Status)
	}

	// Document requests are forced to quantity 1.
	res, err = svc.Create(ctx, "lect-1", CreateRequestInput{Type: "document", TargetID: 7, Quantity: 40, Duration: "1 week"})
	if err != nil {
		t.Fatalf("create document request: %v", err)
	}
	if res.QuantityRequested != 1 {
		t.Errorf("document request quantity = %d, want 1", res.QuantityRequested)
	}
	if res.TargetName != "Exam Archive 2024" {
		t.Errorf("target name = %q", res.TargetName)
	}
}

func createApproved(t *testing.T, svc *Service, uid string, itemID int64, qty int) string {
	t.Helper()
	ctx := context.Background()
	res, err := svc.Create(ctx, uid, CreateRequestInput{Type: "item", TargetID: itemID, Quantity: qty, Duration: "3 days"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	return res.RequestULID
}

func TestIssueScenario(t *testing.T) {
	// Item {quantity: 5}, A requests 3, approve, issue => quantity 2.
	// B requests 3, approve, issue => InsufficientStock, quantity stays 2,
	// B stays approved.
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	a := createApproved(t, svc, "lect-1", 1, 3)
	resA, err := svc.Issue(ctx, a)
	if err != nil {
		t.Fatalf("issue A: %v", err)
	}
	if resA.Status != string(StatusIssued) || !resA.Issued {
		t.Errorf("A after issue: status=%s issued=%v", resA.Status, resA.Issued)
	}
	if got := f.itemQty(1); got != 2 {
		t.Errorf("quantity after issue A = %d, want 2", got)
	}

	b := createApproved(t, svc, "lect-2", 1, 3)
	_, err = svc.Issue(ctx, b)
	if !IsCode(err, CodeInsufficientStock) {
		t.Fatalf("issue B: got %v, want INSUFFICIENT_STOCK", err)
	}
	if got := f.itemQty(1); got != 2 {
		t.Errorf("quantity after failed issue B = %d, want 2", got)
	}
	rb, _ := svc.Get(ctx, b)
	if rb.Status != string(StatusApproved) {
		t.Errorf("B after failed issue: status=%s, want approved", rb.Status)
	}
}

func TestIssueReturnRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	a := createApproved(t, svc, "lect-1", 1, 3)
	if _, err := svc.Issue(ctx, a); err != nil {
		t.Fatalf("issue: %v", err)
	}
	res, err := svc.Return(ctx, a)
	if err != nil {
		t.Fatalf("return: %v", err)
	}
	if res.Status != string(StatusReturned) || !res.Returned {
		t.Errorf("after return: status=%s returned=%v", res.Status, res.Returned)
	}
	// Round-trip law: quantity restored exactly.
	if got := f.itemQty(1); got != 5 {
		t.Errorf("quantity after round trip = %d, want 5", got)
	}

	// Terminal: nothing further works.
	if _, err := svc.Return(ctx, a); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("double return: got %v", err)
	}
	if _, err := svc.Issue(ctx, a); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("issue after return: got %v", err)
	}
}

func TestIssueRequiresApproval(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	res, err := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 2, Duration: "1 day"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// pending -> issued is not a defined transition.
	if _, err := svc.Issue(ctx, res.RequestULID); !IsCode(err, CodeInvalidTransition) {
		t.Fatalf("issue pending: got %v, want INVALID_TRANSITION", err)
	}
	if got := f.itemQty(1); got != 5 {
		t.Errorf("quantity touched by rejected issue: %d", got)
	}
}

func TestDoubleIssueRejected(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 10)
	svc := newTestService(f)

	a := createApproved(t, svc, "lect-1", 1, 2)
	if _, err := svc.Issue(ctx, a); err != nil {
		t.Fatalf("first issue: %v", err)
	}
	if _, err := svc.Issue(ctx, a); !IsCode(err, CodeInvalidTransition) {
		t.Fatalf("second issue: got %v, want INVALID_TRANSITION", err)
	}
	if got := f.itemQty(1); got != 8 {
		t.Errorf("quantity = %d, want 8 (single decrement)", got)
	}
}

func TestDeclineWithReason(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	res, err := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 2, Duration: "1 day"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	reason := "out of budget"
	dec, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "declined", Reason: &reason})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if dec.Status != string(StatusDeclined) {
		t.Errorf("status = %s", dec.Status)
	}
	if dec.DeclineReason == nil || *dec.DeclineReason != "out of budget" {
		t.Errorf("decline reason = %v", dec.DeclineReason)
	}

	// declined is terminal.
	if _, err := svc.Issue(ctx, res.RequestULID); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("issue declined: got %v", err)
	}
	if _, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "approved"}); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("re-decide declined: got %v", err)
	}
}

func TestApproveClearsPriorReason(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	res, err := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 1, Duration: "1 day"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Simulate a stale reason on the stored row, then approve.
	f.mu.Lock()
	f.requests[res.RequestULID].DeclineReason = sql.NullString{String: "stale", Valid: true}
	f.mu.Unlock()

	dec, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "approved"})
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if dec.DeclineReason != nil {
		t.Errorf("approve kept decline reason %q", *dec.DeclineReason)
	}
}

func TestDecideValidation(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)

	if _, err := svc.Decide(ctx, "NOPE", DecideRequestInput{Decision: "approved"}); !IsCode(err, CodeNotFound) {
		t.Errorf("decide missing request: got %v", err)
	}

	res, _ := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 1, Duration: "1 day"})
	if _, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "maybe"}); !IsCode(err, CodeInvalidArgument) {
		t.Errorf("bad decision: got %v", err)
	}
}

func TestDocumentRequestsSkipIssuing(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addDoc(7, "Exam Archive 2024")
	svc := newTestService(f)

	res, err := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "document", TargetID: 7, Duration: "1 week"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "approved"}); err != nil {
		t.Fatalf("approve: %v", err)
	}

	// The engine never issues documents.
	if _, err := svc.Issue(ctx, res.RequestULID); !IsCode(err, CodeInvalidTransition) {
		t.Errorf("issue document request: got %v, want INVALID_TRANSITION", err)
	}
}

func TestConcurrentIssueLastStock(t *testing.T) {
	// Two approved requests each want the full remaining stock: exactly one
	// may win and the quantity must never go negative.
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 3)
	svc := newTestService(f)

	a := createApproved(t, svc, "lect-1", 1, 3)
	b := createApproved(t, svc, "lect-2", 1, 3)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, u := range []string{a, b} {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, err := svc.Issue(ctx, u)
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)

	var okCount, stockCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case IsCode(err, CodeInsufficientStock):
			stockCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || stockCount != 1 {
		t.Errorf("got %d successes, %d stock failures; want 1 and 1", okCount, stockCount)
	}
	if got := f.itemQty(1); got != 0 {
		t.Errorf("final quantity = %d, want 0", got)
	}
}

func TestConcurrentDoubleIssueOneRequest(t *testing.T) {
	// Two racing issue calls against the same approved request: one wins,
	// the other hits the status precondition.
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 10)
	svc := newTestService(f)

	a := createApproved(t, svc, "lect-1", 1, 4)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Issue(ctx, a)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var okCount, invalidCount int
	for err := range errs {
		switch {
		case err == nil:
			okCount++
		case IsCode(err, CodeInvalidTransition):
			invalidCount++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || invalidCount != 1 {
		t.Errorf("got %d successes, %d invalid-transition; want 1 and 1", okCount, invalidCount)
	}
	if got := f.itemQty(1); got != 6 {
		t.Errorf("final quantity = %d, want 6 (single decrement)", got)
	}
}

func TestQuantityNeverNegativeUnderChurn(t *testing.T) {
	// Many concurrent issue/return cycles; the invariant quantity >= 0 must
	// hold throughout and the books must balance at the end.
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Multimeter", 4)
	svc := newTestService(f)

	const workers = 8
	ulids := make([]string, workers)
	for i := range ulids {
		ulids[i] = createApproved(t, svc, "lect-1", 1, 2)
	}

	var wg sync.WaitGroup
	for _, u := range ulids {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			if _, err := svc.Issue(ctx, u); err != nil {
				return // insufficient stock is fine here
			}
			if _, err := svc.Return(ctx, u); err != nil {
				t.Errorf("return after issue: %v", err)
			}
		}(u)
	}
	wg.Wait()

	if got := f.itemQty(1); got != 4 {
		t.Errorf("final quantity = %d, want 4", got)
	}
}

func TestStorekeeperQueues(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 10)
	f.addDoc(7, "Exam Archive 2024")
	svc := newTestService(f)

	approvedOnly := createApproved(t, svc, "lect-1", 1, 1)
	issued := createApproved(t, svc, "lect-1", 1, 2)
	if _, err := svc.Issue(ctx, issued); err != nil {
		t.Fatalf("issue: %v", err)
	}
	returned := createApproved(t, svc, "lect-2", 1, 3)
	if _, err := svc.Issue(ctx, returned); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Return(ctx, returned); err != nil {
		t.Fatalf("return: %v", err)
	}
	// An approved document request must not show up in any queue.
	docReq, _ := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "document", TargetID: 7, Duration: "1 day"})
	if _, err := svc.Decide(ctx, docReq.RequestULID, DecideRequestInput{Decision: "approved"}); err != nil {
		t.Fatalf("approve doc: %v", err)
	}

	check := func(queue string, want ...string) {
		t.Helper()
		got, total, err := svc.ListQueue(ctx, queue, Page{})
		if err != nil {
			t.Fatalf("queue %s: %v", queue, err)
		}
		if int(total) != len(want) {
			t.Errorf("queue %s: total=%d, want %d", queue, total, len(want))
		}
		found := map[string]bool{}
		for _, r := range got {
			found[r.RequestULID] = true
		}
		for _, u := range want {
			if !found[u] {
				t.Errorf("queue %s missing %s", queue, u)
			}
		}
	}

	check("approved", approvedOnly)
	check("issued", issued)
	check("returned", returned)

	if _, _, err := svc.ListQueue(ctx, "pending", Page{}); !IsCode(err, CodeInvalidArgument) {
		t.Errorf("unknown queue: got %v", err)
	}
}

func TestListMineFiltersByRequester(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 10)
	svc := newTestService(f)

	createApproved(t, svc, "lect-1", 1, 1)
	createApproved(t, svc, "lect-1", 1, 1)
	createApproved(t, svc, "lect-2", 1, 1)

	mine, total, err := svc.ListMine(ctx, "lect-1", Page{})
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if total != 2 || len(mine) != 2 {
		t.Errorf("lect-1 sees %d requests, want 2", len(mine))
	}
	for _, r := range mine {
		if r.RequesterID != "lect-1" {
			t.Errorf("foreign request %s leaked into list", r.RequestULID)
		}
	}
}

func TestNotifierFailureDoesNotSurface(t *testing.T) {
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 5)
	svc := newTestService(f)
	svc.notifier = erroringNotifier{}

	res, err := svc.Create(ctx, "lect-1", CreateRequestInput{Type: "item", TargetID: 1, Quantity: 1, Duration: "1 day"})
	if err != nil {
		t.Fatalf("create with broken notifier: %v", err)
	}
	if _, err := svc.Decide(ctx, res.RequestULID, DecideRequestInput{Decision: "approved"}); err != nil {
		t.Fatalf("approve with broken notifier: %v", err)
	}
	if _, err := svc.Issue(ctx, res.RequestULID); err != nil {
		t.Fatalf("issue with broken notifier: %v", err)
	}
}

type erroringNotifier struct{}

func (erroringNotifier) Notify(context.Context, notify.Event) error {
	return fmt.Errorf("smtp unreachable")
}

func TestContains(t *testing.T) {
	// Sanity check on the error text seen by callers.
	ctx := context.Background()
	f := newFakeStore()
	f.addItem(1, "Oscilloscope", 1)
	svc := newTestService(f)

	a := createApproved(t, svc, "lect-1", 1, 2)
	_, err := svc.Issue(ctx, a)
	if err == nil || !strings.Contains(err.Error(), "INSUFFICIENT_STOCK") {
		t.Errorf("error text = %v", err)
	}
}
