// file: internal/database/store.go
// version: 1.3.0
// guid: 4b6d8f2a-0c3e-4571-9d8b-2a5c7e9f1b34

package database

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence operations the service needs. Two backends
// implement it: the in-memory store (default) and SQLite (opt-in). Handlers
// and the seeder only ever talk to this interface; every method that returns
// entities returns copies, so callers can hand them to the matcher without
// worrying about concurrent mutation of live store state.
type Store interface {
	// Lifecycle
	Close() error
	Reset() error

	// Dealers
	GetAllDealers(limit, offset int) ([]Dealer, error)
	GetDealerByID(id string) (*Dealer, error)
	CreateDealer(dealer *Dealer) (*Dealer, error) // generates ULID if ID is empty
	UpdateDealer(id string, dealer *Dealer) (*Dealer, error)
	DeleteDealer(id string) error
	FilterDealers(filter DealerFilter) ([]Dealer, error)
	CountDealers() (int, error)

	// Reviews
	GetReviewsByDealerID(dealerID string) ([]Review, error)
	GetReviewByID(id string) (*Review, error)
	CreateReview(review *Review) (*Review, error)
	DeleteReview(id string) error
	CountReviews() (int, error)

	// Users & auth
	CreateUser(username, email, passwordHashAlgo, passwordHash string, roles []string, status string) (*User, error)
	GetUserByID(id string) (*User, error)
	GetUserByUsername(username string) (*User, error)
	CountUsers() (int, error)

	// Sessions
	CreateSession(userID, ip, userAgent string, ttl time.Duration) (*Session, error)
	GetSession(id string) (*Session, error)
	RevokeSession(id string) error
	ListUserSessions(userID string) ([]Session, error)
	DeleteExpiredSessions(now time.Time) (int, error)
}

// DealerFilter holds the structured (exact-match) listing filters. These are
// applied before any fuzzy ranking; an empty field means "no constraint".
type DealerFilter struct {
	State  string
	Postal string
	Brand  string
	Limit  int
	Offset int
}

// Dealer represents one directory entry.
type Dealer struct {
	ID        string    `json:"id"` // ULID format
	Name      string    `json:"name"`
	City      string    `json:"city"`
	State     string    `json:"state"` // two-letter code
	Postal    string    `json:"postal"`
	Phone     string    `json:"phone,omitempty"`
	Brands    []string  `json:"brands"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Review represents a user review of a dealer.
type Review struct {
	ID        string    `json:"id"` // ULID format
	DealerID  string    `json:"dealer_id"`
	Author    string    `json:"author"` // username of the reviewer
	Rating    int       `json:"rating"` // 1..5
	Title     string    `json:"title,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// User represents an application user (ULID IDs).
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHashAlgo string    `json:"password_hash_algo"`
	PasswordHash     string    `json:"-"`
	Roles            []string  `json:"roles"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Session represents an authenticated session token.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Revoked   bool      `json:"revoked"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	for _, role := range u.Roles {
		if role == "admin" {
			return true
		}
	}
	return false
}

// Global store instance
var GlobalStore Store

// InitializeStore initializes the database store based on configuration.
func InitializeStore(storeType, path string) error {
	var err error

	switch storeType {
	case "memory", "":
		GlobalStore = NewMemoryStore()
	case "sqlite", "sqlite3":
		GlobalStore, err = NewSQLiteStore(path)
		if err != nil {
			return fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
	default:
		return fmt.Errorf("unsupported store type: %s (supported: memory, sqlite)", storeType)
	}

	return nil
}

// CloseStore closes the global store.
func CloseStore() error {
	if GlobalStore != nil {
		return GlobalStore.Close()
	}
	return nil
}
