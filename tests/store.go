package testutil

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

// OpenStoreFunc returns both repositories over an empty store.
type OpenStoreFunc func(t *testing.T) (catalog.Repository, review.Repository)

// RunStoreTests checks the behaviour every review store backend must share.
func RunStoreTests(t *testing.T, open OpenStoreFunc) {
	t.Run("owners", func(t *testing.T) { testOwners(t, open) })
	t.Run("resources", func(t *testing.T) { testResources(t, open) })
	t.Run("conditional updates", func(t *testing.T) { testConditionalUpdates(t, open) })
	t.Run("query resources", func(t *testing.T) { testQueryResources(t, open) })
	t.Run("reviews", func(t *testing.T) { testReviews(t, open) })
}

func resourceTitles(resources []catalog.Resource) []string {
	out := make([]string, 0, len(resources))
	for _, r := range resources {
		out = append(out, r.Title)
	}
	return out
}

func reviewIDs(reviews []review.Review) []string {
	out := make([]string, 0, len(reviews))
	for _, rv := range reviews {
		out = append(out, rv.ID)
	}
	return out
}

func testOwners(t *testing.T, open OpenStoreFunc) {
	repo, _ := open(t)
	ctx := context.Background()

	owner := CreateOwner(t, repo, "amina@test.cd", "Amina")
	_, err := repo.CreateOwner(ctx, owner)
	assert.Equal(t, catalog.ErrOwnerExists, err)

	got, err := repo.GetOwnerByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, owner.Name, got.Name)
	assert.Equal(t, catalog.RoleAdmin, got.Role)
	assert.False(t, got.Suspended)
	assert.True(t, owner.CreatedAt.Equal(got.CreatedAt))

	_, err = repo.GetOwnerByID(ctx, "ghost@test.cd")
	assert.True(t, core.IsNotFound(err), "got %v", err)

	// registered after amina, sorts before her by ID
	_, err = repo.CreateOwner(ctx, catalog.Owner{
		ID:        "aaron@test.cd",
		Name:      "Aaron",
		Role:      catalog.RoleAdmin,
		CreatedAt: owner.CreatedAt.Add(time.Second),
	})
	require.NoError(t, err)
	_, err = repo.CreateOwner(ctx, catalog.Owner{
		ID:        "kofi@test.cd",
		Name:      "Kofi",
		Role:      catalog.RoleAdmin,
		CreatedAt: owner.CreatedAt.Add(2 * time.Second),
	})
	require.NoError(t, err)

	owners, err := repo.QueryAllOwners(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(owners))
	for _, o := range owners {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"amina@test.cd", "aaron@test.cd", "kofi@test.cd"}, ids, "registration order")
}

func testResources(t *testing.T, open OpenStoreFunc) {
	repo, _ := open(t)
	ctx := context.Background()
	amina := CreateOwner(t, repo, "amina@test.cd", "Amina")
	kofi := CreateOwner(t, repo, "kofi@test.cd", "Kofi")

	_, err := repo.CreateResource(ctx, catalog.Resource{ID: uuid.NewString(), Title: "x", Category: catalog.CategoryVideos, OwnerID: "ghost@test.cd"})
	assert.True(t, core.IsNotFound(err), "got %v", err)

	first := CreateResource(t, repo, amina.ID, "First", "d1", catalog.CategoryTextbooks)
	CreateResource(t, repo, kofi.ID, "Second", "d2", catalog.CategoryVideos)
	CreateResource(t, repo, amina.ID, "Third", "d3", catalog.CategoryVideos)

	got, err := repo.GetResourceByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Title, got.Title)
	assert.Equal(t, first.Description, got.Description)
	assert.Equal(t, first.Category, got.Category)
	assert.Equal(t, amina.ID, got.OwnerID)
	assert.False(t, got.Flagged)

	for _, id := range []string{uuid.NewString(), "not-a-uuid"} {
		_, err = repo.GetResourceByID(ctx, id)
		assert.True(t, core.IsNotFound(err), "GetResourceByID(%q) = %v", id, err)
	}

	all, err := repo.QueryAllResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Second", "Third"}, resourceTitles(all), "publication order")

	owned, err := repo.QueryResourcesByOwner(ctx, amina.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"First", "Third"}, resourceTitles(owned))

	none, err := repo.QueryResourcesByOwner(ctx, "ghost@test.cd")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func testConditionalUpdates(t *testing.T, open OpenStoreFunc) {
	repo, _ := open(t)
	ctx := context.Background()
	owner := CreateOwner(t, repo, "amina@test.cd", "Amina")
	res := CreateResource(t, repo, owner.ID, "Notes", "", catalog.CategoryLectureNotes)

	race := func(do func() (bool, error)) int {
		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			changed int
		)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := do()
				assert.NoError(t, err)
				if ok {
					mu.Lock()
					changed++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		return changed
	}

	assert.Equal(t, 1, race(func() (bool, error) { return repo.FlagResource(ctx, res.ID) }), "exactly one caller flags")
	assert.Equal(t, 1, race(func() (bool, error) { return repo.SuspendOwner(ctx, owner.ID) }), "exactly one caller suspends")

	got, err := repo.GetResourceByID(ctx, res.ID)
	require.NoError(t, err)
	assert.True(t, got.Flagged)
	o, err := repo.GetOwnerByID(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, o.Suspended)

	_, err = repo.FlagResource(ctx, uuid.NewString())
	assert.True(t, core.IsNotFound(err), "got %v", err)
	_, err = repo.SuspendOwner(ctx, "ghost@test.cd")
	assert.True(t, core.IsNotFound(err), "got %v", err)
}

func testQueryResources(t *testing.T, open OpenStoreFunc) {
	repo, _ := open(t)
	ctx := context.Background()
	owner := CreateOwner(t, repo, "amina@test.cd", "Amina")
	CreateResource(t, repo, owner.ID, "Intro to Physics", "Mechanics", catalog.CategoryTextbooks)
	CreateResource(t, repo, owner.ID, "Quantum Notes", "advanced physics", catalog.CategoryLectureNotes)
	CreateResource(t, repo, owner.ID, "100% Chemistry", "under_score", catalog.CategoryTextbooks)

	tests := []struct {
		name   string
		filter catalog.Filter
		want   []string
	}{
		{name: "all", filter: catalog.Filter{Category: catalog.CategoryAll}, want: []string{"Intro to Physics", "Quantum Notes", "100% Chemistry"}},
		{name: "case-insensitive", filter: catalog.Filter{Search: "PHYSICS", Category: catalog.CategoryAll}, want: []string{"Intro to Physics", "Quantum Notes"}},
		{name: "category", filter: catalog.Filter{Category: catalog.CategoryTextbooks}, want: []string{"Intro to Physics", "100% Chemistry"}},
		{name: "both", filter: catalog.Filter{Search: "physics", Category: catalog.CategoryTextbooks}, want: []string{"Intro to Physics"}},
		{name: "literal percent", filter: catalog.Filter{Search: "0%", Category: catalog.CategoryAll}, want: []string{"100% Chemistry"}},
		{name: "literal underscore", filter: catalog.Filter{Search: "r_s", Category: catalog.CategoryAll}, want: []string{"100% Chemistry"}},
		{name: "regex metacharacters", filter: catalog.Filter{Search: "(.*)", Category: catalog.CategoryAll}, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.QueryResources(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resourceTitles(got))
		})
	}
}

func testReviews(t *testing.T, open OpenStoreFunc) {
	repo, reviews := open(t)
	ctx := context.Background()
	amina := CreateOwner(t, repo, "amina@test.cd", "Amina")
	kofi := CreateOwner(t, repo, "kofi@test.cd", "Kofi")
	a := CreateResource(t, repo, amina.ID, "A", "", catalog.CategoryTextbooks)
	k := CreateResource(t, repo, kofi.ID, "K", "", catalog.CategoryTextbooks)
	b := CreateResource(t, repo, amina.ID, "B", "", catalog.CategoryTextbooks)

	_, err := reviews.CreateReview(ctx, review.Review{ID: uuid.NewString(), ResourceID: uuid.NewString(), Author: "x", Rating: 1, Comment: "c"})
	assert.True(t, core.IsNotFound(err), "got %v", err)

	b1 := AddReviews(t, reviews, b.ID, 1, 1)
	a1 := AddReviews(t, reviews, a.ID, 5, 2)
	k1 := AddReviews(t, reviews, k.ID, 3, 1)
	b2 := AddReviews(t, reviews, b.ID, 2, 1)

	got, err := reviews.QueryReviewsByResource(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, reviewIDs(append(b1, b2...)), reviewIDs(got), "submission order")
	assert.Equal(t, 1, got[0].Rating)
	assert.Equal(t, "tester", got[0].Author)

	got, err = reviews.QueryReviewsByOwner(ctx, amina.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, reviewIDs(append(append(a1, b1...), b2...)), reviewIDs(got))
	assert.Equal(t, 2, review.NewTally(got).Of(5))

	got, err = reviews.QueryAllReviews(ctx)
	require.NoError(t, err)
	assert.Equal(t, reviewIDs(append(append(append(b1, a1...), k1...), b2...)), reviewIDs(got))

	got, err = reviews.QueryReviewsByResource(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
