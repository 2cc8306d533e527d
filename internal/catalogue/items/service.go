package items

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ===== Error model =====

type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

// ===== Service =====

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) CreateItem(ctx context.Context, in CreateItemRequest) (ItemResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return ItemResponse{}, ErrInvalid("name is required")
	}
	if in.Quantity < 0 {
		return ItemResponse{}, ErrInvalid("quantity cannot be negative")
	}

	category := defaultCategory
	if in.Category != nil && *in.Category != "" {
		if !validCategory(*in.Category) {
			return ItemResponse{}, ErrInvalid("category must be one of lab, electronics, books, general")
		}
		category = *in.Category
	}

	m := &Item{
		Name:        strings.TrimSpace(in.Name),
		Quantity:    in.Quantity,
		Category:    category,
		IsAvailable: true,
	}
	if in.Description != nil {
		m.Description = *in.Description
	}

	if err := s.store.Insert(ctx, m); err != nil {
		return ItemResponse{}, err
	}

	out, err := s.store.GetByID(ctx, m.ItemID)
	if err != nil {
		return ItemResponse{}, err
	}
	return buildItemResponse(out), nil
}

func (s *Service) GetItem(ctx context.Context, itemID int64) (ItemResponse, error) {
	m, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return ItemResponse{}, err
	}
	return buildItemResponse(m), nil
}

func (s *Service) ListItems(ctx context.Context, f ItemFilter, p Page) ([]ItemResponse, int64, error) {
	ms, total, err := s.store.List(ctx, f, p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ItemResponse, 0, len(ms))
	for i := range ms {
		out = append(out, buildItemResponse(&ms[i]))
	}
	return out, total, nil
}

// UpdateItem edits the catalogue baseline. It does not touch live
// reservations: a quantity edit while requests are issued changes the
// available pool going forward, nothing else.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, in UpdateItemRequest) (ItemResponse, error) {
	if in.Quantity != nil && *in.Quantity < 0 {
		return ItemResponse{}, ErrInvalid("quantity cannot be negative")
	}
	if in.Category != nil && !validCategory(*in.Category) {
		return ItemResponse{}, ErrInvalid("category must be one of lab, electronics, books, general")
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return ItemResponse{}, ErrInvalid("name cannot be empty")
	}

	if err := s.store.Update(ctx, itemID, in); err != nil {
		return ItemResponse{}, err
	}

	m, err := s.store.GetByID(ctx, itemID)
	if err != nil {
		return ItemResponse{}, err
	}
	return buildItemResponse(m), nil
}

func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	return s.store.Delete(ctx, itemID)
}
