package review_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	"github.com/trezcool/maktaba/tests"
)

func TestAggregator(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	agg := review.NewAggregator(f.reviews, f.catalog)

	amina := testutil.CreateOwner(t, f.catalog, "amina@test.cd", "Amina")
	kofi := testutil.CreateOwner(t, f.catalog, "kofi@test.cd", "Kofi")
	physics := testutil.CreateResource(t, f.catalog, amina.ID, "Physics", "", catalog.CategoryTextbooks)
	guide := testutil.CreateResource(t, f.catalog, amina.ID, "Guide", "", catalog.CategoryStudyGuides)
	notes := testutil.CreateResource(t, f.catalog, kofi.ID, "Notes", "", catalog.CategoryTextbooks)
	quiet := testutil.CreateResource(t, f.catalog, kofi.ID, "Quiet", "", catalog.CategoryVideos)

	testutil.AddReviews(t, f.reviews, physics.ID, 5, 1)
	testutil.AddReviews(t, f.reviews, physics.ID, 4, 1)
	testutil.AddReviews(t, f.reviews, physics.ID, 4, 1)
	testutil.AddReviews(t, f.reviews, guide.ID, 1, 2)
	testutil.AddReviews(t, f.reviews, notes.ID, 1, 1)

	t.Run("resource", func(t *testing.T) {
		avg, err := agg.AverageRating(ctx, physics.ID)
		require.NoError(t, err)
		assert.Equal(t, 13.0/3.0, avg.Exact())
		assert.Equal(t, 4.3, avg.Rounded())

		n, err := agg.ReviewCount(ctx, physics.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, n)

		n, err = agg.RatingCount(ctx, physics.ID, 4)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		avg, err = agg.AverageRating(ctx, quiet.ID)
		require.NoError(t, err)
		assert.Zero(t, avg.Exact(), "no reviews")
	})

	t.Run("owner", func(t *testing.T) {
		n, err := agg.OwnerOneStarCount(ctx, amina.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = agg.OwnerOneStarCount(ctx, kofi.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n, "only the owner's own resources count")

		avg, err := agg.OwnerAverageRating(ctx, amina.ID)
		require.NoError(t, err)
		assert.Equal(t, 3.0, avg.Exact(), "(5+4+4+1+1)/5")
	})

	t.Run("category distribution", func(t *testing.T) {
		dist, err := agg.CategoryDistribution(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []catalog.CategoryShare{
			{Category: catalog.CategoryTextbooks, Count: 2, Percentage: 50},
			{Category: catalog.CategoryStudyGuides, Count: 1, Percentage: 25},
			{Category: catalog.CategoryVideos, Count: 1, Percentage: 25},
		}, dist)

		dist, err = agg.CategoryDistribution(ctx, kofi.ID)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 0, 1}, []int{dist[0].Mine, dist[1].Mine, dist[2].Mine})
	})

	t.Run("rating distribution", func(t *testing.T) {
		dist, err := agg.RatingDistribution(ctx)
		require.NoError(t, err)
		assert.Equal(t, []review.RatingShare{
			{Rating: 1, Count: 3, Percentage: 50},
			{Rating: 2},
			{Rating: 3},
			{Rating: 4, Count: 2, Percentage: 33.3},
			{Rating: 5, Count: 1, Percentage: 16.7},
		}, dist)
	})
}
