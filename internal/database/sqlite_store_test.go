// file: internal/database/sqlite_store_test.go
// version: 1.0.0
// guid: d8b2f4a6-9c13-4e75-a0b8-5f3e7d1c9a24

package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStoreDealerRoundTrip(t *testing.T) {
	store := newTestSQLiteStore(t)

	created, err := store.CreateDealer(newTestDealer("Mile High Motors", "Denver", "CO", "80202", "Toyota", "Subaru"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := store.GetDealerByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mile High Motors", got.Name)
	assert.Equal(t, []string{"Toyota", "Subaru"}, got.Brands)

	got.City = "Aurora"
	updated, err := store.UpdateDealer(created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "Aurora", updated.City)

	_, err = store.UpdateDealer("nonexistent", got)
	assert.ErrorIs(t, err, ErrNotFound)

	missing, err := store.GetDealerByID("nonexistent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSQLiteStoreFilterDealers(t *testing.T) {
	store := newTestSQLiteStore(t)

	_, err := store.CreateDealer(newTestDealer("Mile High Motors", "Denver", "CO", "80202", "Toyota"))
	require.NoError(t, err)
	_, err = store.CreateDealer(newTestDealer("Lone Star Auto", "Austin", "TX", "73301", "Ford"))
	require.NoError(t, err)

	byState, err := store.FilterDealers(DealerFilter{State: "tx"})
	require.NoError(t, err)
	require.Len(t, byState, 1)
	assert.Equal(t, "Lone Star Auto", byState[0].Name)

	byBrand, err := store.FilterDealers(DealerFilter{Brand: "toyota"})
	require.NoError(t, err)
	require.Len(t, byBrand, 1)
	assert.Equal(t, "Mile High Motors", byBrand[0].Name)
}

func TestSQLiteStoreReviewsCascade(t *testing.T) {
	store := newTestSQLiteStore(t)

	dealer, err := store.CreateDealer(newTestDealer("Bayview Imports", "San Francisco", "CA", "94103"))
	require.NoError(t, err)

	_, err = store.CreateReview(&Review{DealerID: dealer.ID, Author: "sam", Rating: 4, Body: "solid"})
	require.NoError(t, err)

	_, err = store.CreateReview(&Review{DealerID: "missing", Author: "sam", Rating: 1, Body: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.DeleteDealer(dealer.ID))
	count, err := store.CountReviews()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSQLiteStoreSessions(t *testing.T) {
	store := newTestSQLiteStore(t)

	user, err := store.CreateUser("admin", "admin@local", "bcrypt", "hash", []string{"admin"}, "active")
	require.NoError(t, err)

	session, err := store.CreateSession(user.ID, "127.0.0.1", "agent", time.Hour)
	require.NoError(t, err)

	got, err := store.GetSession(session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)

	require.NoError(t, store.RevokeSession(session.ID))
	deleted, err := store.DeleteExpiredSessions(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}
