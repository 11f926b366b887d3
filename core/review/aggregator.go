package review

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core/catalog"
)

// Aggregator derives statistics from the store on every call. It holds no state of its own.
type Aggregator struct {
	reviews   Repository
	resources catalog.Repository
}

func NewAggregator(reviews Repository, resources catalog.Repository) *Aggregator {
	return &Aggregator{reviews: reviews, resources: resources}
}

func (agg *Aggregator) resourceTally(ctx context.Context, resourceID string) (Tally, error) {
	reviews, err := agg.reviews.QueryReviewsByResource(ctx, resourceID)
	if err != nil {
		return Tally{}, errors.Wrap(err, "querying resource reviews")
	}
	return NewTally(reviews), nil
}

func (agg *Aggregator) ownerTally(ctx context.Context, ownerID string) (Tally, error) {
	reviews, err := agg.reviews.QueryReviewsByOwner(ctx, ownerID)
	if err != nil {
		return Tally{}, errors.Wrap(err, "querying owner reviews")
	}
	return NewTally(reviews), nil
}

// AverageRating is 0 when the resource has no reviews.
func (agg *Aggregator) AverageRating(ctx context.Context, resourceID string) (Average, error) {
	t, err := agg.resourceTally(ctx, resourceID)
	return t.Average(), err
}

func (agg *Aggregator) ReviewCount(ctx context.Context, resourceID string) (int, error) {
	t, err := agg.resourceTally(ctx, resourceID)
	return t.Count(), err
}

func (agg *Aggregator) RatingCount(ctx context.Context, resourceID string, rating int) (int, error) {
	t, err := agg.resourceTally(ctx, resourceID)
	return t.Of(rating), err
}

func (agg *Aggregator) ResourceStats(ctx context.Context, resourceID string) (Stats, error) {
	t, err := agg.resourceTally(ctx, resourceID)
	if err != nil {
		return Stats{}, err
	}
	return t.Stats(), nil
}

// OwnerOneStarCount sums one-star reviews over every resource currently owned by `ownerID`.
func (agg *Aggregator) OwnerOneStarCount(ctx context.Context, ownerID string) (int, error) {
	t, err := agg.ownerTally(ctx, ownerID)
	return t.Of(MinRating), err
}

// OwnerAverageRating averages every review of every resource owned by `ownerID`.
func (agg *Aggregator) OwnerAverageRating(ctx context.Context, ownerID string) (Average, error) {
	t, err := agg.ownerTally(ctx, ownerID)
	return t.Average(), err
}

// CategoryDistribution counts resources per category. A non-empty `ownerID` fills CategoryShare.Mine.
func (agg *Aggregator) CategoryDistribution(ctx context.Context, ownerID string) ([]catalog.CategoryShare, error) {
	resources, err := agg.resources.QueryAllResources(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying resources")
	}
	return catalog.Distribution(resources, ownerID), nil
}

func (agg *Aggregator) RatingDistribution(ctx context.Context) ([]RatingShare, error) {
	reviews, err := agg.reviews.QueryAllReviews(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying reviews")
	}
	return NewTally(reviews).Distribution(), nil
}
