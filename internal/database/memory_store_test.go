// file: internal/database/memory_store_test.go
// version: 1.1.0
// guid: a3f7c1e9-2b48-4d60-95a7-8e1d4c6b2f09

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDealer(name, city, state, postal string, brands ...string) *Dealer {
	return &Dealer{
		Name:   name,
		City:   city,
		State:  state,
		Postal: postal,
		Brands: brands,
	}
}

func TestMemoryStoreDealerCRUD(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	created, err := store.CreateDealer(newTestDealer("Mile High Motors", "Denver", "CO", "80202", "Toyota"))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := store.GetDealerByID(created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Mile High Motors", got.Name)
	assert.Equal(t, []string{"Toyota"}, got.Brands)

	got.Name = "Mile High Auto Group"
	got.Brands = append(got.Brands, "Subaru")
	updated, err := store.UpdateDealer(created.ID, got)
	require.NoError(t, err)
	assert.Equal(t, "Mile High Auto Group", updated.Name)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)

	require.NoError(t, store.DeleteDealer(created.ID))
	gone, err := store.GetDealerByID(created.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.ErrorIs(t, store.DeleteDealer(created.ID), ErrNotFound)
}

func TestMemoryStoreListPreservesInsertionOrder(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	names := []string{"Alpha Auto", "Beta Motors", "Gamma Cars", "Delta Dealers"}
	for _, name := range names {
		_, err := store.CreateDealer(newTestDealer(name, "Denver", "CO", "80202"))
		require.NoError(t, err)
	}

	dealers, err := store.GetAllDealers(0, 0)
	require.NoError(t, err)
	require.Len(t, dealers, len(names))
	for i, dealer := range dealers {
		assert.Equal(t, names[i], dealer.Name)
	}

	page, err := store.GetAllDealers(2, 1)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "Beta Motors", page[0].Name)
	assert.Equal(t, "Gamma Cars", page[1].Name)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	created, err := store.CreateDealer(newTestDealer("Bayview Imports", "San Francisco", "CA", "94103", "Audi"))
	require.NoError(t, err)

	// Mutating what the store handed back must not affect stored state.
	created.Name = "Mutated"
	created.Brands[0] = "Mutated"

	got, err := store.GetDealerByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bayview Imports", got.Name)
	assert.Equal(t, []string{"Audi"}, got.Brands)
}

func TestMemoryStoreFilterDealers(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	_, err := store.CreateDealer(newTestDealer("Mile High Motors", "Denver", "CO", "80202", "Toyota", "Subaru"))
	require.NoError(t, err)
	_, err = store.CreateDealer(newTestDealer("Boulder Autos", "Boulder", "CO", "80301", "Ford"))
	require.NoError(t, err)
	_, err = store.CreateDealer(newTestDealer("Lone Star Auto", "Austin", "TX", "73301", "Ford"))
	require.NoError(t, err)

	byState, err := store.FilterDealers(DealerFilter{State: "co"})
	require.NoError(t, err)
	assert.Len(t, byState, 2)

	byPostal, err := store.FilterDealers(DealerFilter{Postal: "73301"})
	require.NoError(t, err)
	require.Len(t, byPostal, 1)
	assert.Equal(t, "Lone Star Auto", byPostal[0].Name)

	byBrand, err := store.FilterDealers(DealerFilter{Brand: "ford"})
	require.NoError(t, err)
	assert.Len(t, byBrand, 2)

	combined, err := store.FilterDealers(DealerFilter{State: "CO", Brand: "Ford"})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	assert.Equal(t, "Boulder Autos", combined[0].Name)
}

func TestMemoryStoreReviews(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	dealer, err := store.CreateDealer(newTestDealer("Mile High Motors", "Denver", "CO", "80202"))
	require.NoError(t, err)

	_, err = store.CreateReview(&Review{DealerID: "missing", Author: "sam", Rating: 4, Body: "fine"})
	assert.ErrorIs(t, err, ErrNotFound)

	first, err := store.CreateReview(&Review{DealerID: dealer.ID, Author: "sam", Rating: 5, Body: "great service"})
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)

	_, err = store.CreateReview(&Review{DealerID: dealer.ID, Author: "kim", Rating: 2, Body: "slow"})
	require.NoError(t, err)

	reviews, err := store.GetReviewsByDealerID(dealer.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "sam", reviews[0].Author)

	require.NoError(t, store.DeleteReview(first.ID))
	reviews, err = store.GetReviewsByDealerID(dealer.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)

	// Deleting the dealer takes its reviews with it.
	require.NoError(t, store.DeleteDealer(dealer.ID))
	count, err := store.CountReviews()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMemoryStoreUsersAndSessions(t *testing.T) {
	t.Parallel()
	store := NewMemoryStore()

	user, err := store.CreateUser("admin", "admin@local", "bcrypt", "hash", []string{"admin"}, "active")
	require.NoError(t, err)
	require.NotEmpty(t, user.ID)

	_, err = store.CreateUser("Admin", "other@local", "bcrypt", "hash", nil, "active")
	assert.Error(t, err, "usernames are case-insensitively unique")

	byName, err := store.GetUserByUsername("ADMIN")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)
	assert.True(t, byName.IsAdmin())

	session, err := store.CreateSession(user.ID, "127.0.0.1", "test-agent", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	assert.True(t, session.ExpiresAt.After(time.Now()))

	got, err := store.GetSession(session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.False(t, got.Revoked)

	require.NoError(t, store.RevokeSession(session.ID))
	got, err = store.GetSession(session.ID)
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	deleted, err := store.DeleteExpiredSessions(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestInitializeStoreMemory(t *testing.T) {
	prev := GlobalStore
	t.Cleanup(func() { GlobalStore = prev })

	require.NoError(t, InitializeStore("memory", ""))
	require.NotNil(t, GlobalStore)
	require.NoError(t, CloseStore())

	assert.Error(t, InitializeStore("bogus", ""))
}
