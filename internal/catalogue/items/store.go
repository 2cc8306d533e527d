package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

const itemColumns = `item_id, name, description, quantity, category, is_available, created_at, updated_at`

func (s *Store) Insert(ctx context.Context, m *Item) error {
	const q = `
	INSERT INTO items (name, description, quantity, category, is_available, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, NOW(6), NOW(6))`

	res, err := s.db.ExecContext(ctx, q, m.Name, m.Description, m.Quantity, m.Category, m.IsAvailable)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	m.ItemID = id
	return nil
}

func (s *Store) GetByID(ctx context.Context, itemID int64) (*Item, error) {
	q := `SELECT ` + itemColumns + ` FROM items WHERE item_id = ?`
	var m Item
	err := s.db.QueryRowContext(ctx, q, itemID).Scan(
		&m.ItemID, &m.Name, &m.Description, &m.Quantity, &m.Category, &m.IsAvailable,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound("item not found")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) List(ctx context.Context, f ItemFilter, p Page) ([]Item, int64, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if f.Category != nil {
		where += ` AND category = ?`
		args = append(args, *f.Category)
	}
	if f.IsAvailable != nil {
		where += ` AND is_available = ?`
		args = append(args, *f.IsAvailable)
	}

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

	q := `SELECT ` + itemColumns + ` FROM items` + where +
		fmt.Sprintf(` ORDER BY created_at %s LIMIT ? OFFSET ?`, order)

	rows, err := s.db.QueryContext(ctx, q, append(append([]any{}, args...), p.Limit, p.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Item
	for rows.Next() {
		var m Item
		if err := rows.Scan(
			&m.ItemID, &m.Name, &m.Description, &m.Quantity, &m.Category, &m.IsAvailable,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *Store) Update(ctx context.Context, itemID int64, in UpdateItemRequest) error {
	sets := []string{}
	args := []any{}
	if in.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, strings.TrimSpace(*in.Name))
	}
	if in.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *in.Description)
	}
	if in.Quantity != nil {
		sets = append(sets, "quantity = ?")
		args = append(args, *in.Quantity)
	}
	if in.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *in.Category)
	}
	if in.IsAvailable != nil {
		sets = append(sets, "is_available = ?")
		args = append(args, *in.IsAvailable)
	}
	if len(sets) == 0 {
		return ErrInvalid("no fields to update")
	}
	sets = append(sets, "updated_at = NOW(6)")

	q := `UPDATE items SET ` + strings.Join(sets, ", ") + ` WHERE item_id = ?`
	args = append(args, itemID)

	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		// Could also be a no-op write of identical values; check existence.
		if _, err := s.GetByID(ctx, itemID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, itemID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE item_id = ?`, itemID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		return ErrNotFound("item not found")
	}
	return nil
}
