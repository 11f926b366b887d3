// Package analytics builds read-only views over the review store.
package analytics

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

type (
	RatedResource struct {
		catalog.Resource
		Average      float64 `json:"average"`
		AverageExact float64 `json:"average_exact"`
		ReviewCount  int     `json:"review_count"`
	}

	Performance struct {
		Owner        catalog.Owner   `json:"owner"`
		Resources    []RatedResource `json:"resources"`
		Average      float64         `json:"average"`
		ReviewCount  int             `json:"review_count"`
		OneStarCount int             `json:"one_star_count"`
	}

	Totals struct {
		Resources  int     `json:"resources"`
		Reviews    int     `json:"reviews"`
		Categories int     `json:"categories"`
		Average    float64 `json:"average"`
	}

	Report struct {
		CategoryDistribution []catalog.CategoryShare `json:"category_distribution"`
		RatingDistribution   []review.RatingShare    `json:"rating_distribution"`
		TopRated             []RatedResource         `json:"top_rated"`
		OwnerPerformance     *Performance            `json:"owner_performance,omitempty"`
		Totals               Totals                  `json:"totals"`
	}

	Reporter struct {
		catalog       catalog.Repository
		reviews       review.Repository
		topRatedLimit int
	}

	snapshot struct {
		resources []catalog.Resource
		tallies   map[string]review.Tally
		all       review.Tally
		owner     *catalog.Owner
	}
)

func NewReporter(catalogRepo catalog.Repository, reviewRepo review.Repository, conf *core.Config) *Reporter {
	return &Reporter{
		catalog:       catalogRepo,
		reviews:       reviewRepo,
		topRatedLimit: conf.Analytics.TopRatedLimit,
	}
}

// read loads resources, reviews and (optionally) the owner concurrently.
func (rep *Reporter) read(ctx context.Context, ownerID string) (*snapshot, error) {
	var (
		snap    snapshot
		reviews []review.Review
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := rep.catalog.QueryAllResources(gctx)
		snap.resources = res
		return errors.Wrap(err, "querying resources")
	})
	g.Go(func() error {
		rvs, err := rep.reviews.QueryAllReviews(gctx)
		reviews = rvs
		return errors.Wrap(err, "querying reviews")
	})
	if ownerID != "" {
		g.Go(func() error {
			owner, err := rep.catalog.GetOwnerByID(gctx, ownerID)
			if err != nil {
				return errors.Wrap(err, "finding owner")
			}
			snap.owner = &owner
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap.tallies = review.GroupByResource(reviews)
	snap.all = review.NewTally(reviews)
	return &snap, nil
}

func rate(res catalog.Resource, t review.Tally) RatedResource {
	avg := t.Average()
	return RatedResource{
		Resource:     res,
		Average:      avg.Rounded(),
		AverageExact: avg.Exact(),
		ReviewCount:  t.Count(),
	}
}

// topRated keeps reviewed resources, best exact average first, then most reviewed, then lowest ID.
func (snap *snapshot) topRated(n int) []RatedResource {
	rated := make([]RatedResource, 0, len(snap.resources))
	for _, res := range snap.resources {
		if t := snap.tallies[res.ID]; t.Count() > 0 {
			rated = append(rated, rate(res, t))
		}
	}
	sort.SliceStable(rated, func(i, j int) bool {
		a, b := rated[i], rated[j]
		if a.AverageExact != b.AverageExact {
			return a.AverageExact > b.AverageExact
		}
		if a.ReviewCount != b.ReviewCount {
			return a.ReviewCount > b.ReviewCount
		}
		return a.ID < b.ID
	})
	if n < len(rated) {
		rated = rated[:n]
	}
	return rated
}

func (snap *snapshot) performance() *Performance {
	perf := &Performance{Owner: *snap.owner, Resources: []RatedResource{}}
	var owned review.Tally
	for _, res := range snap.resources {
		if res.OwnerID != snap.owner.ID {
			continue
		}
		t := snap.tallies[res.ID]
		perf.Resources = append(perf.Resources, rate(res, t))
		for r := review.MinRating; r <= review.MaxRating; r++ {
			owned[r-1] += t.Of(r)
		}
	}
	perf.Average = owned.Average().Rounded()
	perf.ReviewCount = owned.Count()
	perf.OneStarCount = owned.Of(review.MinRating)
	return perf
}

func (snap *snapshot) totals() Totals {
	cats := make(map[string]bool)
	for _, res := range snap.resources {
		cats[res.Category] = true
	}
	return Totals{
		Resources:  len(snap.resources),
		Reviews:    snap.all.Count(),
		Categories: len(cats),
		Average:    snap.all.Average().Rounded(),
	}
}

func (rep *Reporter) limit(n int) int {
	if n <= 0 {
		return rep.topRatedLimit
	}
	return n
}

// TopRated returns at most `n` reviewed resources by descending average. n <= 0 uses the configured limit.
func (rep *Reporter) TopRated(ctx context.Context, n int) ([]RatedResource, error) {
	snap, err := rep.read(ctx, "")
	if err != nil {
		return nil, err
	}
	return snap.topRated(rep.limit(n)), nil
}

// OwnerPerformance rates every resource of `ownerID` in publication order.
func (rep *Reporter) OwnerPerformance(ctx context.Context, ownerID string) (Performance, error) {
	ownerID = core.CleanString(ownerID, true /* lower */)
	if ownerID == "" {
		return Performance{}, core.NewNotFoundError(catalog.KindOwner, ownerID)
	}
	snap, err := rep.read(ctx, ownerID)
	if err != nil {
		return Performance{}, err
	}
	return *snap.performance(), nil
}

// Report builds every view from one read of the store. OwnerPerformance is only set when `ownerID` is.
// topRated <= 0 uses the configured limit.
func (rep *Reporter) Report(ctx context.Context, ownerID string, topRated int) (Report, error) {
	ownerID = core.CleanString(ownerID, true /* lower */)
	snap, err := rep.read(ctx, ownerID)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		CategoryDistribution: catalog.Distribution(snap.resources, ownerID),
		RatingDistribution:   snap.all.Distribution(),
		TopRated:             snap.topRated(rep.limit(topRated)),
		Totals:               snap.totals(),
	}
	if snap.owner != nil {
		report.OwnerPerformance = snap.performance()
	}
	return report, nil
}
