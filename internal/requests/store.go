package requests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"DIMS-backend/internal/platform/db"
)

// Store is what the reservation engine needs from persistence. The SQL
// implementation below is the production one; tests run against an in-memory
// fake.
type Store interface {
	InsertRequest(ctx context.Context, r *Request) error
	GetByULID(ctx context.Context, requestULID string) (*Request, error)

	// Guarded transitions. Each runs as one atomic unit: the status change
	// and any quantity mutation commit together or not at all.
	ExecDecide(ctx context.Context, requestULID string, to Status, reason *string) (*Request, error)
	ExecIssue(ctx context.Context, requestULID string) (*Request, error)
	ExecReturn(ctx context.Context, requestULID string) (*Request, error)

	ListByRequester(ctx context.Context, requesterID string, p Page) ([]Request, int64, error)
	ListAll(ctx context.Context, p Page) ([]Request, int64, error)
	ListQueue(ctx context.Context, q Queue, p Page) ([]Request, int64, error)

	ResolveTarget(ctx context.Context, t TargetType, id int64) (*Target, error)
	GetContact(ctx context.Context, accountID string) (*Contact, error)
}

type sqlStore struct{ db *sql.DB }

func NewStore(db *sql.DB) Store { return &sqlStore{db: db} }

const requestColumns = `
	r.request_id, r.request_ulid, r.type, r.target_id, r.requester_id,
	r.status, r.quantity_requested, r.duration, r.issued, r.returned,
	r.decline_reason, r.created_at, r.updated_at`

// targetNameJoin resolves the polymorphic target to a display name.
const targetNameJoin = `
	LEFT JOIN items i ON r.type = 'item' AND i.item_id = r.target_id
	LEFT JOIN documents d ON r.type = 'document' AND d.document_id = r.target_id`

func scanRequest(row interface{ Scan(...any) error }, withName bool) (*Request, error) {
	var r Request
	dest := []any{
		&r.RequestID, &r.RequestULID, &r.Type, &r.TargetID, &r.RequesterID,
		&r.Status, &r.QuantityRequested, &r.Duration, &r.Issued, &r.Returned,
		&r.DeclineReason, &r.CreatedAt, &r.UpdatedAt,
	}
	if withName {
		var name sql.NullString
		dest = append(dest, &name)
		if err := row.Scan(dest...); err != nil {
			return nil, err
		}
		r.TargetName = name.String
		return &r, nil
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *sqlStore) InsertRequest(ctx context.Context, r *Request) error {
	const q = `
	INSERT INTO requests
	(request_ulid, type, target_id, requester_id, status, quantity_requested, duration, issued, returned, created_at, updated_at)
	VALUES
	(?, ?, ?, ?, ?, ?, ?, 0, 0, NOW(6), NOW(6))`

	res, err := s.db.ExecContext(ctx, q,
		r.RequestULID, r.Type, r.TargetID, r.RequesterID, r.Status, r.QuantityRequested, r.Duration,
	)
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1452 {
			return ErrNotFound("requester account no longer exists")
		}
		return err
	}
	id, _ := res.LastInsertId()
	r.RequestID = id
	return nil
}

func (s *sqlStore) GetByULID(ctx context.Context, requestULID string) (*Request, error) {
	q := `SELECT` + requestColumns + `, COALESCE(i.name, d.title) AS target_name
	FROM requests r` + targetNameJoin + `
	WHERE r.request_ulid = ?`

	r, err := scanRequest(s.db.QueryRowContext(ctx, q, requestULID), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// lockRequestRow loads and locks the request row inside tx.
func (s *sqlStore) lockRequestRow(ctx context.Context, tx *sql.Tx, requestULID string) (*Request, error) {
	q := `SELECT` + requestColumns + `
	FROM requests r
	WHERE r.request_ulid = ?
	FOR UPDATE`

	r, err := scanRequest(tx.QueryRowContext(ctx, q, requestULID), false)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("request not found")
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// lockItemRow loads and locks the item row inside tx.
func (s *sqlStore) lockItemRow(ctx context.Context, tx *sql.Tx, itemID int64) (quantity int, err error) {
	const q = `SELECT quantity FROM items WHERE item_id = ? FOR UPDATE`
	if err = tx.QueryRowContext(ctx, q, itemID).Scan(&quantity); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound("item not found")
		}
		return 0, err
	}
	return quantity, nil
}

func (s *sqlStore) updateItemQuantity(ctx context.Context, tx *sql.Tx, itemID int64, delta int) error {
	const q = `UPDATE items SET quantity = quantity + ?, updated_at = NOW(6) WHERE item_id = ?`
	res, err := tx.ExecContext(ctx, q, delta, itemID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff != 1 {
		return ErrInternal("failed to update items.quantity")
	}
	return nil
}

// ExecDecide moves pending -> approved|declined. Approving clears any prior
// decline reason.
func (s *sqlStore) ExecDecide(ctx context.Context, requestULID string, to Status, reason *string) (*Request, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. Lock request row
	r, err := s.lockRequestRow(ctx, tx, requestULID)
	if err != nil {
		return nil, err
	}

	// 2. Precondition
	if !CanTransition(r.Status, to) {
		err = ErrInvalidTransition(fmt.Sprintf("cannot decide a %s request", r.Status))
		return nil, err
	}

	// 3. Persist decision
	var reasonArg any
	r.DeclineReason = sql.NullString{}
	if to == StatusDeclined && reason != nil && *reason != "" {
		reasonArg = *reason
		r.DeclineReason = sql.NullString{String: *reason, Valid: true}
	}
	const q = `UPDATE requests SET status = ?, decline_reason = ?, updated_at = NOW(6) WHERE request_id = ?`
	if _, err = tx.ExecContext(ctx, q, to, reasonArg, r.RequestID); err != nil {
		return nil, err
	}
	r.Status = to

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return r, nil
}

// ExecIssue moves approved -> issued and decrements the item quantity.
// Both writes live in one transaction; concurrent issues against the same
// item serialize on the FOR UPDATE item lock.
func (s *sqlStore) ExecIssue(ctx context.Context, requestULID string) (*Request, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. Lock request row
	r, err := s.lockRequestRow(ctx, tx, requestULID)
	if err != nil {
		return nil, err
	}

	// 2. Preconditions
	if !CanTransition(r.Status, StatusIssued) {
		err = ErrInvalidTransition(fmt.Sprintf("cannot issue a %s request", r.Status))
		return nil, err
	}
	if r.Type != TargetItem {
		err = ErrInvalidTransition("only item requests can be issued")
		return nil, err
	}

	// 3. Lock item row & stock check
	qty, err := s.lockItemRow(ctx, tx, r.TargetID)
	if err != nil {
		return nil, err
	}
	if qty < r.QuantityRequested {
		err = ErrInsufficientStock(fmt.Sprintf("requested %d, available %d", r.QuantityRequested, qty))
		return nil, err
	}

	// 4. Decrement stock
	if err = s.updateItemQuantity(ctx, tx, r.TargetID, -r.QuantityRequested); err != nil {
		return nil, err
	}

	// 5. Mark issued
	const q = `UPDATE requests SET status = ?, issued = 1, updated_at = NOW(6) WHERE request_id = ?`
	if _, err = tx.ExecContext(ctx, q, StatusIssued, r.RequestID); err != nil {
		return nil, err
	}
	r.Status = StatusIssued
	r.Issued = true

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return r, nil
}

// ExecReturn moves issued -> returned and restores the item quantity.
func (s *sqlStore) ExecReturn(ctx context.Context, requestULID string) (*Request, error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 1. Lock request row
	r, err := s.lockRequestRow(ctx, tx, requestULID)
	if err != nil {
		return nil, err
	}

	// 2. Precondition
	if !CanTransition(r.Status, StatusReturned) {
		err = ErrInvalidTransition(fmt.Sprintf("cannot return a %s request", r.Status))
		return nil, err
	}

	// 3. Lock item row & restore stock
	if _, err = s.lockItemRow(ctx, tx, r.TargetID); err != nil {
		return nil, err
	}
	if err = s.updateItemQuantity(ctx, tx, r.TargetID, r.QuantityRequested); err != nil {
		return nil, err
	}

	// 4. Mark returned
	const q = `UPDATE requests SET status = ?, returned = 1, updated_at = NOW(6) WHERE request_id = ?`
	if _, err = tx.ExecContext(ctx, q, StatusReturned, r.RequestID); err != nil {
		return nil, err
	}
	r.Status = StatusReturned
	r.Returned = true

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return r, nil
}

// ---- Queries ----

func (s *sqlStore) ListByRequester(ctx context.Context, requesterID string, p Page) ([]Request, int64, error) {
	return s.list(ctx, `r.requester_id = ?`, []any{requesterID}, p)
}

func (s *sqlStore) ListAll(ctx context.Context, p Page) ([]Request, int64, error) {
	return s.list(ctx, `1=1`, nil, p)
}

// ListQueue builds the storekeeper views. Queues only ever contain item
// requests; document requests have no issue/return step.
func (s *sqlStore) ListQueue(ctx context.Context, q Queue, p Page) ([]Request, int64, error) {
	switch q {
	case QueueApproved:
		return s.list(ctx, `r.type = 'item' AND r.status = 'approved' AND r.issued = 0`, nil, p)
	case QueueIssued:
		return s.list(ctx, `r.type = 'item' AND r.status = 'issued' AND r.returned = 0`, nil, p)
	case QueueReturned:
		return s.list(ctx, `r.type = 'item' AND r.status = 'returned'`, nil, p)
	}
	return nil, 0, ErrInvalid("unknown queue")
}

func (s *sqlStore) list(ctx context.Context, where string, args []any, p Page) ([]Request, int64, error) {
	order := "DESC"
	if strings.ToLower(p.Order) == "asc" {
		order = "ASC"
	}
	if p.Limit <= 0 {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}

	q := `SELECT` + requestColumns + `, COALESCE(i.name, d.title) AS target_name
	FROM requests r` + targetNameJoin + `
	WHERE ` + where + fmt.Sprintf(` ORDER BY r.created_at %s LIMIT ? OFFSET ?`, order)
	cq := `SELECT COUNT(*) FROM requests r WHERE ` + where

	var out []Request
	var total int64
	// Page and total come from the same read-only snapshot.
	err := db.ReadOnly(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		rows, err := tx.QueryContext(ctx, q, append(append([]any{}, args...), p.Limit, p.Offset)...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			r, err := scanRequest(rows, true)
			if err != nil {
				return err
			}
			out = append(out, *r)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		return tx.QueryRowContext(ctx, cq, args...).Scan(&total)
	})
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// ResolveTarget checks existence of the catalogue entry and returns its
// display name (and live quantity for items).
func (s *sqlStore) ResolveTarget(ctx context.Context, t TargetType, id int64) (*Target, error) {
	switch t {
	case TargetItem:
		const q = `SELECT name, quantity FROM items WHERE item_id = ?`
		tg := Target{Type: TargetItem, ID: id}
		if err := s.db.QueryRowContext(ctx, q, id).Scan(&tg.Name, &tg.Quantity); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound("item not found")
			}
			return nil, err
		}
		return &tg, nil
	case TargetDocument:
		const q = `SELECT title FROM documents WHERE document_id = ?`
		tg := Target{Type: TargetDocument, ID: id}
		if err := s.db.QueryRowContext(ctx, q, id).Scan(&tg.Name); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound("document not found")
			}
			return nil, err
		}
		return &tg, nil
	}
	return nil, ErrInvalid("unknown target type")
}

func (s *sqlStore) GetContact(ctx context.Context, accountID string) (*Contact, error) {
	const q = `SELECT name, email FROM accounts WHERE account_id = ?`
	var c Contact
	if err := s.db.QueryRowContext(ctx, q, accountID).Scan(&c.Name, &c.Email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("account not found")
		}
		return nil, err
	}
	return &c, nil
}
