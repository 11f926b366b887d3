package inmemdb

import (
	"context"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

type reviewRepository struct {
	db *DB
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(_ context.Context, rv review.Review) (review.Review, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.resources.table[rv.ResourceID]; !ok {
		return review.Review{}, core.NewNotFoundError(catalog.KindResource, rv.ResourceID)
	}
	tbl := repo.db.reviews
	tbl.rows = append(tbl.rows, rv)
	tbl.byResource[rv.ResourceID] = append(tbl.byResource[rv.ResourceID], len(tbl.rows)-1)
	return rv, nil
}

// byResource copies out the reviews of `resourceID`. Callers hold the lock.
func (repo *reviewRepository) byResource(resourceID string) []review.Review {
	tbl := repo.db.reviews
	idxs := tbl.byResource[resourceID]
	reviews := make([]review.Review, 0, len(idxs))
	for _, i := range idxs {
		reviews = append(reviews, tbl.rows[i])
	}
	return reviews
}

func (repo *reviewRepository) QueryReviewsByResource(_ context.Context, resourceID string) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.byResource(resourceID), nil
}

func (repo *reviewRepository) QueryReviewsByOwner(_ context.Context, ownerID string) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reviews := make([]review.Review, 0)
	for _, id := range repo.db.resources.order {
		if repo.db.resources.table[id].OwnerID == ownerID {
			reviews = append(reviews, repo.byResource(id)...)
		}
	}
	return reviews, nil
}

func (repo *reviewRepository) QueryAllReviews(_ context.Context) ([]review.Review, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	reviews := make([]review.Review, len(repo.db.reviews.rows))
	copy(reviews, repo.db.reviews.rows)
	return reviews, nil
}
