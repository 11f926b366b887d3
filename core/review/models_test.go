package review_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/maktaba/core/review"
)

func TestTally(t *testing.T) {
	tests := []struct {
		name        string
		ratings     []int
		wantCount   int
		wantAverage float64
		wantOneStar int
	}{
		{name: "empty", ratings: nil},
		{name: "single", ratings: []int{3}, wantCount: 1, wantAverage: 3},
		{name: "rounded", ratings: []int{1, 2, 2}, wantCount: 3, wantAverage: 1.7, wantOneStar: 1},
		{name: "ten reviews", ratings: []int{1, 2, 2, 2, 3, 3, 4, 4, 4, 4}, wantCount: 10, wantAverage: 2.9, wantOneStar: 1},
		{name: "out of range ignored", ratings: []int{0, 5, 6, 5}, wantCount: 2, wantAverage: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reviews := make([]review.Review, 0, len(tt.ratings))
			for _, r := range tt.ratings {
				reviews = append(reviews, review.Review{Rating: r})
			}
			tally := review.NewTally(reviews)

			assert.Equal(t, tt.wantCount, tally.Count())
			assert.Equal(t, tt.wantAverage, tally.Average().Rounded())
			assert.Equal(t, tt.wantOneStar, tally.Of(review.MinRating))
			if tt.wantCount > 0 {
				assert.InDelta(t, float64(tally.Sum())/float64(tally.Count()), tally.Average().Exact(), 1e-12)
			}

			dist := tally.Distribution()
			assert.Len(t, dist, review.MaxRating)
			var total int
			for i, share := range dist {
				assert.Equal(t, i+1, share.Rating, "ascending ratings")
				total += share.Count
			}
			assert.Equal(t, tt.wantCount, total)
		})
	}
}

func TestGroupByResource(t *testing.T) {
	tallies := review.GroupByResource([]review.Review{
		{ResourceID: "a", Rating: 1},
		{ResourceID: "b", Rating: 5},
		{ResourceID: "a", Rating: 3},
	})
	assert.Len(t, tallies, 2)
	assert.Equal(t, 2, tallies["a"].Count())
	assert.Equal(t, 2.0, tallies["a"].Average().Exact())
	assert.Equal(t, 1, tallies["b"].Of(5))
}
