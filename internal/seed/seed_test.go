// file: internal/seed/seed_test.go
// version: 1.2.0
// guid: 0d5f7a92-3c8e-4b16-9f4d-7e2a5c8b0d36

package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mhagen/dealerfinder/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSyntheticDealers(t *testing.T) {
	store := database.NewMemoryStore()
	defer store.Close()

	created, err := Run(store, Options{Count: 20, Seed: 42, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 20, created)

	dealers, err := store.GetAllDealers(0, 0)
	require.NoError(t, err)
	require.Len(t, dealers, 20)

	names := make(map[string]bool)
	for _, dealer := range dealers {
		assert.NotEmpty(t, dealer.Name)
		assert.NotEmpty(t, dealer.City)
		assert.Len(t, dealer.State, 2)
		assert.Len(t, dealer.Postal, 5)
		assert.NotEmpty(t, dealer.Brands)
		assert.False(t, names[dealer.Name], "duplicate name %q", dealer.Name)
		names[dealer.Name] = true
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	first := database.NewMemoryStore()
	defer first.Close()
	second := database.NewMemoryStore()
	defer second.Close()

	_, err := Run(first, Options{Count: 10, Seed: 7, Quiet: true})
	require.NoError(t, err)
	_, err = Run(second, Options{Count: 10, Seed: 7, Quiet: true})
	require.NoError(t, err)

	a, err := first.GetAllDealers(0, 0)
	require.NoError(t, err)
	b, err := second.GetAllDealers(0, 0)
	require.NoError(t, err)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].Name, b[i].Name)
		assert.Equal(t, a[i].City, b[i].City)
		assert.Equal(t, a[i].Brands, b[i].Brands)
	}
}

func TestGenerateWithReviews(t *testing.T) {
	store := database.NewMemoryStore()
	defer store.Close()

	created, err := Run(store, Options{Count: 15, Seed: 3, WithReviews: true, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 15, created)

	total, err := store.CountReviews()
	require.NoError(t, err)
	// 0-3 reviews per dealer; with 15 dealers at least one should land.
	assert.Greater(t, total, 0)

	dealers, err := store.GetAllDealers(0, 0)
	require.NoError(t, err)
	for _, dealer := range dealers {
		reviews, err := store.GetReviewsByDealerID(dealer.ID)
		require.NoError(t, err)
		for _, review := range reviews {
			assert.GreaterOrEqual(t, review.Rating, 1)
			assert.LessOrEqual(t, review.Rating, 5)
			assert.NotEmpty(t, review.Body)
		}
	}
}

func TestLoadFixture(t *testing.T) {
	fixture := `dealers:
  - name: Capitol Toyota
    city: Austin
    state: TX
    postal: "78701"
    brands: [Toyota]
  - name: Mile High Motors
    city: Denver
    state: CO
    postal: "80202"
    phone: (303) 555-0042
    brands: [Ford, Lincoln]
  - name: ""
`
	path := filepath.Join(t.TempDir(), "dealers.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fixture), 0o644))

	store := database.NewMemoryStore()
	defer store.Close()

	created, err := Run(store, Options{FixturePath: path, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	dealers, err := store.GetAllDealers(0, 0)
	require.NoError(t, err)
	require.Len(t, dealers, 2)
	assert.Equal(t, "Capitol Toyota", dealers[0].Name)
	assert.Equal(t, []string{"Ford", "Lincoln"}, dealers[1].Brands)
	assert.Equal(t, "(303) 555-0042", dealers[1].Phone)
}

func TestLoadFixtureMissingFile(t *testing.T) {
	store := database.NewMemoryStore()
	defer store.Close()

	_, err := Run(store, Options{FixturePath: "/does/not/exist.yaml", Quiet: true})
	assert.Error(t, err)
}

func TestNilStore(t *testing.T) {
	_, err := Run(nil, Options{Count: 1, Quiet: true})
	assert.Error(t, err)
}

func TestResetClearsExistingData(t *testing.T) {
	store := database.NewMemoryStore()
	defer store.Close()

	_, err := Run(store, Options{Count: 20, Seed: 11, WithReviews: true, Quiet: true})
	require.NoError(t, err)
	reviewsBefore, err := store.CountReviews()
	require.NoError(t, err)
	require.Greater(t, reviewsBefore, 0)

	created, err := Run(store, Options{Count: 5, Seed: 11, Reset: true, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, 5, created)

	dealers, err := store.GetAllDealers(0, 0)
	require.NoError(t, err)
	assert.Len(t, dealers, 5)

	reviewsAfter, err := store.CountReviews()
	require.NoError(t, err)
	assert.Zero(t, reviewsAfter)
}
