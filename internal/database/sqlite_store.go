// file: internal/database/sqlite_store.go
// version: 1.1.0
// guid: 6f2b8d4c-1a97-4e35-b0d6-83e5a2c7f914

package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store on a local SQLite database. Insertion order
// is preserved via rowid ordering so listing behavior matches the memory
// backend.
type SQLiteStore struct {
	db *sql.DB
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS dealers (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		postal TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		brands_json TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		dealer_id TEXT NOT NULL REFERENCES dealers(id) ON DELETE CASCADE,
		author TEXT NOT NULL,
		rating INTEGER NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE COLLATE NOCASE,
		email TEXT NOT NULL DEFAULT '',
		password_hash_algo TEXT NOT NULL DEFAULT 'bcrypt',
		password_hash TEXT NOT NULL,
		roles_json TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'active',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		ip TEXT NOT NULL DEFAULT '',
		user_agent TEXT NOT NULL DEFAULT '',
		revoked INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_dealer ON reviews(dealer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_dealers_state ON dealers(state)`,
	`CREATE INDEX IF NOT EXISTS idx_dealers_postal ON dealers(postal)`,
}

// NewSQLiteStore opens (or creates) the database at path and ensures the
// schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) createSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed creating schema: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Reset drops all rows, keeping the schema.
func (s *SQLiteStore) Reset() error {
	for _, table := range []string{"sessions", "users", "reviews", "dealers"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return nil
}

func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	data, _ := json.Marshal(values)
	return string(data)
}

func decodeStrings(raw string) []string {
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil || values == nil {
		return []string{}
	}
	return values
}

// Dealer operations

const dealerColumns = "id, name, city, state, postal, phone, brands_json, created_at, updated_at"

func scanDealer(scanner interface{ Scan(...any) error }) (*Dealer, error) {
	var dealer Dealer
	var brandsJSON string
	if err := scanner.Scan(&dealer.ID, &dealer.Name, &dealer.City, &dealer.State, &dealer.Postal,
		&dealer.Phone, &brandsJSON, &dealer.CreatedAt, &dealer.UpdatedAt); err != nil {
		return nil, err
	}
	dealer.Brands = decodeStrings(brandsJSON)
	return &dealer, nil
}

func (s *SQLiteStore) queryDealers(query string, args ...any) ([]Dealer, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dealers := []Dealer{}
	for rows.Next() {
		dealer, err := scanDealer(rows)
		if err != nil {
			return nil, err
		}
		dealers = append(dealers, *dealer)
	}
	return dealers, rows.Err()
}

func (s *SQLiteStore) GetAllDealers(limit, offset int) ([]Dealer, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	if offset < 0 {
		offset = 0
	}
	return s.queryDealers(
		"SELECT "+dealerColumns+" FROM dealers ORDER BY rowid LIMIT ? OFFSET ?",
		limit, offset)
}

func (s *SQLiteStore) GetDealerByID(id string) (*Dealer, error) {
	dealer, err := scanDealer(s.db.QueryRow(
		"SELECT "+dealerColumns+" FROM dealers WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return dealer, nil
}

func (s *SQLiteStore) CreateDealer(dealer *Dealer) (*Dealer, error) {
	if dealer == nil {
		return nil, fmt.Errorf("dealer is nil")
	}
	if dealer.ID == "" {
		id, err := newULID()
		if err != nil {
			return nil, err
		}
		dealer.ID = id
	}
	now := time.Now()
	dealer.CreatedAt = now
	dealer.UpdatedAt = now

	_, err := s.db.Exec(
		"INSERT INTO dealers (id, name, city, state, postal, phone, brands_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		dealer.ID, dealer.Name, dealer.City, dealer.State, dealer.Postal, dealer.Phone,
		encodeStrings(dealer.Brands), dealer.CreatedAt, dealer.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert dealer: %w", err)
	}
	return s.GetDealerByID(dealer.ID)
}

func (s *SQLiteStore) UpdateDealer(id string, dealer *Dealer) (*Dealer, error) {
	result, err := s.db.Exec(
		"UPDATE dealers SET name = ?, city = ?, state = ?, postal = ?, phone = ?, brands_json = ?, updated_at = ? WHERE id = ?",
		dealer.Name, dealer.City, dealer.State, dealer.Postal, dealer.Phone,
		encodeStrings(dealer.Brands), time.Now(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update dealer: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.GetDealerByID(id)
}

func (s *SQLiteStore) DeleteDealer(id string) error {
	result, err := s.db.Exec("DELETE FROM dealers WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) FilterDealers(filter DealerFilter) ([]Dealer, error) {
	var conditions []string
	var args []any

	if filter.State != "" {
		conditions = append(conditions, "state = ? COLLATE NOCASE")
		args = append(args, filter.State)
	}
	if filter.Postal != "" {
		conditions = append(conditions, "postal = ?")
		args = append(args, filter.Postal)
	}

	query := "SELECT " + dealerColumns + " FROM dealers"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY rowid"

	dealers, err := s.queryDealers(query, args...)
	if err != nil {
		return nil, err
	}
	// Brand filtering is done over the decoded JSON list rather than in SQL.
	if filter.Brand != "" {
		filtered := dealers[:0]
		for _, dealer := range dealers {
			if hasBrand(dealer.Brands, filter.Brand) {
				filtered = append(filtered, dealer)
			}
		}
		dealers = filtered
	}
	return paginateDealers(dealers, filter.Limit, filter.Offset), nil
}

func (s *SQLiteStore) CountDealers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM dealers").Scan(&count)
	return count, err
}

// Review operations

func (s *SQLiteStore) GetReviewsByDealerID(dealerID string) ([]Review, error) {
	rows, err := s.db.Query(
		"SELECT id, dealer_id, author, rating, title, body, created_at FROM reviews WHERE dealer_id = ? ORDER BY rowid",
		dealerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reviews := []Review{}
	for rows.Next() {
		var review Review
		if err := rows.Scan(&review.ID, &review.DealerID, &review.Author, &review.Rating,
			&review.Title, &review.Body, &review.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, review)
	}
	return reviews, rows.Err()
}

func (s *SQLiteStore) GetReviewByID(id string) (*Review, error) {
	var review Review
	err := s.db.QueryRow(
		"SELECT id, dealer_id, author, rating, title, body, created_at FROM reviews WHERE id = ?", id).
		Scan(&review.ID, &review.DealerID, &review.Author, &review.Rating,
			&review.Title, &review.Body, &review.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *SQLiteStore) CreateReview(review *Review) (*Review, error) {
	if review == nil {
		return nil, fmt.Errorf("review is nil")
	}
	dealer, err := s.GetDealerByID(review.DealerID)
	if err != nil {
		return nil, err
	}
	if dealer == nil {
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

	_, err = s.db.Exec(
		"INSERT INTO reviews (id, dealer_id, author, rating, title, body, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		review.ID, review.DealerID, review.Author, review.Rating, review.Title, review.Body, review.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}
	return s.GetReviewByID(review.ID)
}

func (s *SQLiteStore) DeleteReview(id string) error {
	result, err := s.db.Exec("DELETE FROM reviews WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CountReviews() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM reviews").Scan(&count)
	return count, err
}

// User operations

func (s *SQLiteStore) CreateUser(username, email, passwordHashAlgo, passwordHash string, roles []string, status string) (*User, error) {
	id, err := newULID()
	if err != nil {
		return nil, err
	}
	now := time.Now()
	_, err = s.db.Exec(
		"INSERT INTO users (id, username, email, password_hash_algo, password_hash, roles_json, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		id, username, email, passwordHashAlgo, passwordHash, encodeStrings(roles), status, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return s.GetUserByID(id)
}

func scanUser(scanner interface{ Scan(...any) error }) (*User, error) {
	var user User
	var rolesJSON string
	if err := scanner.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHashAlgo,
		&user.PasswordHash, &rolesJSON, &user.Status, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Roles = decodeStrings(rolesJSON)
	return &user, nil
}

const userColumns = "id, username, email, password_hash_algo, password_hash, roles_json, status, created_at, updated_at"

func (s *SQLiteStore) GetUserByID(id string) (*User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByUsername(username string) (*User, error) {
	user, err := scanUser(s.db.QueryRow("SELECT "+userColumns+" FROM users WHERE username = ? COLLATE NOCASE", username))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *SQLiteStore) CountUsers() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count)
	return count, err
}

// Session operations

func (s *SQLiteStore) CreateSession(userID, ip, userAgent string, ttl time.Duration) (*Session, error) {
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
	_, err = s.db.Exec(
		"INSERT INTO sessions (id, user_id, created_at, expires_at, ip, user_agent, revoked) VALUES (?, ?, ?, ?, ?, ?, 0)",
		session.ID, session.UserID, session.CreatedAt, session.ExpiresAt, session.IP, session.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to insert session: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) GetSession(id string) (*Session, error) {
	var session Session
	var revoked int
	err := s.db.QueryRow(
		"SELECT id, user_id, created_at, expires_at, ip, user_agent, revoked FROM sessions WHERE id = ?", id).
		Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
			&session.IP, &session.UserAgent, &revoked)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	session.Revoked = revoked != 0
	return &session, nil
}

func (s *SQLiteStore) RevokeSession(id string) error {
	result, err := s.db.Exec("UPDATE sessions SET revoked = 1 WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) ListUserSessions(userID string) ([]Session, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, created_at, expires_at, ip, user_agent, revoked FROM sessions WHERE user_id = ? ORDER BY created_at",
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := []Session{}
	for rows.Next() {
		var session Session
		var revoked int
		if err := rows.Scan(&session.ID, &session.UserID, &session.CreatedAt, &session.ExpiresAt,
			&session.IP, &session.UserAgent, &revoked); err != nil {
			return nil, err
		}
		session.Revoked = revoked != 0
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) DeleteExpiredSessions(now time.Time) (int, error) {
	result, err := s.db.Exec("DELETE FROM sessions WHERE revoked = 1 OR expires_at < ?", now)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
