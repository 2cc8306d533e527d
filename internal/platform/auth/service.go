package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

type Service struct {
	store  AccountStore
	secret []byte
	ttl    time.Duration
}

func NewService(db *sql.DB, secret string, ttlHours int) *Service {
	return &Service{
		store:  NewStore(db),
		secret: []byte(secret),
		ttl:    time.Duration(ttlHours) * time.Hour,
	}
}

func (s *Service) Secret() []byte { return s.secret }

// Login authenticates by email and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	a, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if a == nil || a.IsDisabled {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  a.AccountID,
		"role": a.Role,
		"name": a.Name,
		"iat":  now.Unix(),
		"exp":  now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Register creates an account. The public endpoint only registers lecturers;
// admins use the account.create operation for other roles.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (*Account, error) {
	existing, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	a := &Account{
		AccountID:    ulid.Make().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.store.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// SeedAdmin creates the initial admin account from the environment when no
// admin exists yet. Without it nobody could create storekeeper accounts.
func (s *Service) SeedAdmin(ctx context.Context) error {
	n, err := s.store.CountByRole(ctx, RoleAdmin)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	email := os.Getenv("DIMS_ADMIN_EMAIL")
	password := os.Getenv("DIMS_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Println("[WARN] no admin account and DIMS_ADMIN_EMAIL/DIMS_ADMIN_PASSWORD not set, skipping seed")
		return nil
	}

	if _, err := s.Register(ctx, "Administrator", email, password, RoleAdmin); err != nil {
		return err
	}
	log.Printf("[INFO] seeded admin account %s", email)
	return nil
}
