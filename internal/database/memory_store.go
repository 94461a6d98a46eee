// file: internal/database/memory_store.go
// version: 1.2.0
// guid: 9e1c3a7f-5d82-46b0-8f4a-c2d6e9b1a053

package database

import (
	"crypto/rand"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	ulid "github.com/oklog/ulid/v2"
)

func newULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// MemoryStore is the default Store backend: mutex-guarded maps plus an
// insertion-order slice for dealers so listing output is deterministic.
// All reads return copies; the live maps never escape the lock.
type MemoryStore struct {
	mu          sync.RWMutex
	dealerOrder []string // dealer IDs in insertion order
	dealers     map[string]*Dealer
	reviews     map[string]*Review
	reviewOrder []string
	users       map[string]*User
	sessions    map[string]*Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		dealers:  make(map[string]*Dealer),
		reviews:  make(map[string]*Review),
		users:    make(map[string]*User),
		sessions: make(map[string]*Session),
	}
}

// Close is a no-op for the memory backend.
func (m *MemoryStore) Close() error { return nil }

// Reset drops all data.
func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dealerOrder = nil
	m.reviewOrder = nil
	m.dealers = make(map[string]*Dealer)
	m.reviews = make(map[string]*Review)
	m.users = make(map[string]*User)
	m.sessions = make(map[string]*Session)
	return nil
}

func copyDealer(d *Dealer) *Dealer {
	cp := *d
	cp.Brands = append([]string(nil), d.Brands...)
	return &cp
}

func copyUser(u *User) *User {
	cp := *u
	cp.Roles = append([]string(nil), u.Roles...)
	return &cp
}

// Dealer operations

func (m *MemoryStore) GetAllDealers(limit, offset int) ([]Dealer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	dealers := make([]Dealer, 0, len(m.dealerOrder))
	for _, id := range m.dealerOrder {
		dealers = append(dealers, *copyDealer(m.dealers[id]))
	}
	return paginateDealers(dealers, limit, offset), nil
}

func paginateDealers(dealers []Dealer, limit, offset int) []Dealer {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(dealers) {
		return []Dealer{}
	}
	dealers = dealers[offset:]
	if limit > 0 && limit < len(dealers) {
		dealers = dealers[:limit]
	}
	return dealers
}

func (m *MemoryStore) GetDealerByID(id string) (*Dealer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dealer, ok := m.dealers[id]
	if !ok {
		return nil, nil
	}
	return copyDealer(dealer), nil
}

func (m *MemoryStore) CreateDealer(dealer *Dealer) (*Dealer, error) {
	if dealer == nil {
		return nil, fmt.Errorf("dealer is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if dealer.ID == "" {
		id, err := newULID()
		if err != nil {
			return nil, err
		}
		dealer.ID = id
	}
	if _, exists := m.dealers[dealer.ID]; exists {
		return nil, fmt.Errorf("dealer %s already exists", dealer.ID)
	}
	now := time.Now()
	dealer.CreatedAt = now
	dealer.UpdatedAt = now

	m.dealers[dealer.ID] = copyDealer(dealer)
	m.dealerOrder = append(m.dealerOrder, dealer.ID)
	return copyDealer(dealer), nil
}

func (m *MemoryStore) UpdateDealer(id string, dealer *Dealer) (*Dealer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.dealers[id]
	if !ok {
		return nil, ErrNotFound
	}
	updated := copyDealer(dealer)
	updated.ID = id
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	m.dealers[id] = updated
	return copyDealer(updated), nil
}

func (m *MemoryStore) DeleteDealer(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.dealers[id]; !ok {
		return ErrNotFound
	}
	delete(m.dealers, id)
	for i, did := range m.dealerOrder {
		if did == id {
			m.dealerOrder = append(m.dealerOrder[:i], m.dealerOrder[i+1:]...)
			break
		}
	}
	// Reviews of a removed dealer go with it.
	kept := m.reviewOrder[:0]
	for _, rid := range m.reviewOrder {
		if m.reviews[rid].DealerID == id {
			delete(m.reviews, rid)
			continue
		}
		kept = append(kept, rid)
	}
	m.reviewOrder = kept
	return nil
}

func (m *MemoryStore) FilterDealers(filter DealerFilter) ([]Dealer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	matched := make([]Dealer, 0, len(m.dealerOrder))
	for _, id := range m.dealerOrder {
		dealer := m.dealers[id]
		if filter.State != "" && !strings.EqualFold(dealer.State, filter.State) {
			continue
		}
		if filter.Postal != "" && dealer.Postal != filter.Postal {
			continue
		}
		if filter.Brand != "" && !hasBrand(dealer.Brands, filter.Brand) {
			continue
		}
		matched = append(matched, *copyDealer(dealer))
	}
	return paginateDealers(matched, filter.Limit, filter.Offset), nil
}

func hasBrand(brands []string, want string) bool {
	for _, b := range brands {
		if strings.EqualFold(b, want) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) CountDealers() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dealers), nil
}

// Review operations

func (m *MemoryStore) GetReviewsByDealerID(dealerID string) ([]Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	reviews := make([]Review, 0)
	for _, id := range m.reviewOrder {
		if review := m.reviews[id]; review.DealerID == dealerID {
			reviews = append(reviews, *review)
		}
	}
	return reviews, nil
}

func (m *MemoryStore) GetReviewByID(id string) (*Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	review, ok := m.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *review
	return &cp, nil
}

func (m *MemoryStore) CreateReview(review *Review) (*Review, error) {
	if review == nil {
		return nil, fmt.Errorf("review is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.dealers[review.DealerID]; !ok {
		return nil, fmt.Errorf("dealer %s: %w", review.DealerID, ErrNotFound)
	}
	if review.ID == "" {
		id, err := newULID()
		if err != nil {
			return nil, err
		}
		review.ID = id
	}
	review.CreatedAt = time.Now()

	cp := *review
	m.reviews[review.ID] = &cp
	m.reviewOrder = append(m.reviewOrder, review.ID)
	out := *review
	return &out, nil
}

func (m *MemoryStore) DeleteReview(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.reviews[id]; !ok {
		return ErrNotFound
	}
	delete(m.reviews, id)
	for i, rid := range m.reviewOrder {
		if rid == id {
			m.reviewOrder = append(m.reviewOrder[:i], m.reviewOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (m *MemoryStore) CountReviews() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reviews), nil
}

// User operations

func (m *MemoryStore) CreateUser(username, email, passwordHashAlgo, passwordHash string, roles []string, status string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return nil, fmt.Errorf("username %s already taken", username)
		}
	}
	id, err := newULID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	user := &User{
		ID:               id,
		Username:         username,
		Email:            email,
		PasswordHashAlgo: passwordHashAlgo,
		PasswordHash:     passwordHash,
		Roles:            append([]string(nil), roles...),
		Status:           status,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	m.users[id] = user
	return copyUser(user), nil
}

func (m *MemoryStore) GetUserByID(id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (m *MemoryStore) GetUserByUsername(username string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if strings.EqualFold(user.Username, username) {
			return copyUser(user), nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) CountUsers() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// Session operations

func (m *MemoryStore) CreateSession(userID, ip, userAgent string, ttl time.Duration) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := newULID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	session := &Session{
		ID:        id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		IP:        ip,
		UserAgent: userAgent,
	}
	m.sessions[id] = session
	cp := *session
	return &cp, nil
}

func (m *MemoryStore) GetSession(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	cp := *session
	return &cp, nil
}

func (m *MemoryStore) RevokeSession(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.Revoked = true
	return nil
}

func (m *MemoryStore) ListUserSessions(userID string) ([]Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]Session, 0)
	for _, session := range m.sessions {
		if session.UserID == userID {
			sessions = append(sessions, *session)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions, nil
}

func (m *MemoryStore) DeleteExpiredSessions(now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for id, session := range m.sessions {
		if session.Revoked || now.After(session.ExpiresAt) {
			delete(m.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}
