// file: internal/seed/seed.go
// version: 1.3.0
// guid: b4e81c2f-9a63-47d5-8b0e-3f6c2d9a1e74

// Package seed populates a store with dealer data, either synthetic or
// loaded from a YAML fixture file. Used by the `seed` subcommand and by
// integration tests that need a realistic directory to search against.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mhagen/dealerfinder/internal/database"
	"github.com/schollz/progressbar/v3"
	"gopkg.in/yaml.v3"
)

// Options controls a seeding run.
type Options struct {
	Count       int    // number of synthetic dealers to generate
	WithReviews bool   // also attach 0-3 reviews per dealer
	FixturePath string // when set, load dealers from YAML instead of generating
	Seed        int64  // RNG seed; 0 means non-deterministic
	Quiet       bool   // suppress the progress bar
	Reset       bool   // wipe all existing data before seeding
}

// nearDuplicateRank is the fuzzy rank at or below which a generated name is
// considered a duplicate of one already seeded and gets skipped.
const nearDuplicateRank = 2

var namePrefixes = []string{
	"Capitol", "Summit", "Riverside", "Lakeshore", "Metro", "Pioneer",
	"Heritage", "Northside", "Southgate", "Valley", "Crosstown", "Harbor",
	"Prairie", "Cascade", "Redwood", "Granite", "Bluebonnet", "Frontier",
}

var nameSuffixes = []string{
	"Motors", "Auto Group", "Automotive", "Auto Sales", "Motor Company",
	"Car Center", "Auto Mall", "Autoplex",
}

type cityEntry struct {
	city   string
	state  string
	postal string
}

var cities = []cityEntry{
	{"Austin", "TX", "78701"},
	{"Denver", "CO", "80202"},
	{"Portland", "OR", "97205"},
	{"Oakland", "CA", "94607"},
	{"Madison", "WI", "53703"},
	{"Raleigh", "NC", "27601"},
	{"Boise", "ID", "83702"},
	{"Tucson", "AZ", "85701"},
	{"Omaha", "NE", "68102"},
	{"Spokane", "WA", "99201"},
	{"Knoxville", "TN", "37902"},
	{"Albany", "NY", "12207"},
}

var brandPool = []string{
	"Toyota", "Honda", "Ford", "Chevrolet", "Subaru", "Mazda", "Nissan",
	"Hyundai", "Kia", "Volkswagen", "Audi", "BMW", "Lincoln", "Jeep",
}

var reviewBodies = []string{
	"Fair price and no pressure. Would buy here again.",
	"Service department kept me waiting two hours past my appointment.",
	"Sales staff knew the inventory cold. Smooth trade-in.",
	"Financing paperwork took forever but the deal was solid.",
	"Called ahead about a listing and it was gone when I arrived.",
	"Straightforward negotiation, out the door in ninety minutes.",
}

var reviewAuthors = []string{"sam", "jordan", "casey", "riley", "morgan", "avery"}

// fixtureFile is the YAML layout accepted by --fixture.
type fixtureFile struct {
	Dealers []struct {
		Name   string   `yaml:"name"`
		City   string   `yaml:"city"`
		State  string   `yaml:"state"`
		Postal string   `yaml:"postal"`
		Phone  string   `yaml:"phone"`
		Brands []string `yaml:"brands"`
	} `yaml:"dealers"`
}

// Run seeds the store and returns the number of dealers created.
func Run(store database.Store, opts Options) (int, error) {
	if store == nil {
		return 0, fmt.Errorf("seed: store is nil")
	}
	if opts.Reset {
		if err := store.Reset(); err != nil {
			return 0, fmt.Errorf("seed: reset store: %w", err)
		}
		log.Printf("[INFO] seed: cleared existing data before seeding")
	}
	if opts.FixturePath != "" {
		return loadFixture(store, opts)
	}
	return generate(store, opts)
}

func loadFixture(store database.Store, opts Options) (int, error) {
	data, err := os.ReadFile(opts.FixturePath)
	if err != nil {
		return 0, fmt.Errorf("seed: read fixture: %w", err)
	}
	var fixture fixtureFile
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return 0, fmt.Errorf("seed: parse fixture: %w", err)
	}

	bar := newBar(len(fixture.Dealers), opts.Quiet)
	created := 0
	for _, entry := range fixture.Dealers {
		if entry.Name == "" {
			continue
		}
		_, err := store.CreateDealer(&database.Dealer{
			Name:   entry.Name,
			City:   entry.City,
			State:  entry.State,
			Postal: entry.Postal,
			Phone:  entry.Phone,
			Brands: entry.Brands,
		})
		if err != nil {
			return created, fmt.Errorf("seed: create dealer %q: %w", entry.Name, err)
		}
		created++
		barAdd(bar)
	}
	return created, nil
}

func generate(store database.Store, opts Options) (int, error) {
	count := opts.Count
	if count <= 0 {
		count = 50
	}

	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	} else {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	bar := newBar(count, opts.Quiet)
	seenNames := make([]string, 0, count)
	created := 0
	attempts := 0
	maxAttempts := count * 10

	for created < count && attempts < maxAttempts {
		attempts++
		name := randomName(rng)
		if isNearDuplicate(name, seenNames) {
			continue
		}

		place := cities[rng.Intn(len(cities))]
		dealer := &database.Dealer{
			Name:   name,
			City:   place.city,
			State:  place.state,
			Postal: place.postal,
			Phone:  randomPhone(rng),
			Brands: randomBrands(rng),
		}
		stored, err := store.CreateDealer(dealer)
		if err != nil {
			return created, fmt.Errorf("seed: create dealer %q: %w", name, err)
		}
		seenNames = append(seenNames, name)
		created++
		barAdd(bar)

		if opts.WithReviews {
			if err := attachReviews(store, rng, stored.ID); err != nil {
				return created, err
			}
		}
	}

	if created < count {
		log.Printf("[WARNING] seed: generated %d of %d dealers before running out of distinct names", created, count)
	}
	return created, nil
}

// isNearDuplicate reports whether name fuzzy-matches an already-seeded name
// closely enough that keeping both would just add search noise.
func isNearDuplicate(name string, seen []string) bool {
	for _, existing := range seen {
		rank := fuzzy.RankMatchNormalizedFold(name, existing)
		if rank >= 0 && rank <= nearDuplicateRank {
			return true
		}
	}
	return false
}

func randomName(rng *rand.Rand) string {
	prefix := namePrefixes[rng.Intn(len(namePrefixes))]
	suffix := nameSuffixes[rng.Intn(len(nameSuffixes))]
	return prefix + " " + suffix
}

func randomPhone(rng *rand.Rand) string {
	return fmt.Sprintf("(%03d) 555-%04d", 200+rng.Intn(700), rng.Intn(10000))
}

func randomBrands(rng *rand.Rand) []string {
	n := 1 + rng.Intn(3)
	picked := make([]string, 0, n)
	used := make(map[int]bool, n)
	for len(picked) < n {
		i := rng.Intn(len(brandPool))
		if used[i] {
			continue
		}
		used[i] = true
		picked = append(picked, brandPool[i])
	}
	return picked
}

func attachReviews(store database.Store, rng *rand.Rand, dealerID string) error {
	for i := 0; i < rng.Intn(4); i++ {
		_, err := store.CreateReview(&database.Review{
			DealerID: dealerID,
			Author:   reviewAuthors[rng.Intn(len(reviewAuthors))],
			Rating:   1 + rng.Intn(5),
			Body:     reviewBodies[rng.Intn(len(reviewBodies))],
		})
		if err != nil {
			return fmt.Errorf("seed: create review: %w", err)
		}
	}
	return nil
}

func newBar(total int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return nil
	}
	return progressbar.Default(int64(total), "seeding dealers")
}

func barAdd(bar *progressbar.ProgressBar) {
	if bar != nil {
		_ = bar.Add(1)
	}
}
