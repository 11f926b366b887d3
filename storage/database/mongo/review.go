package mongorepos

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/trezcool/maktaba/core/review"
)

type (
	reviewRepository struct {
		db      *DB
		catalog *catalogRepository
	}

	reviewDoc struct {
		review.Review `bson:",inline"`
		Seq           int64 `bson:"seq"`
	}
)

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *DB) review.Repository {
	return &reviewRepository{db: db, catalog: &catalogRepository{db: db}}
}

func (repo *reviewRepository) reviews() *mongo.Collection {
	return repo.db.collection(reviewsCollection)
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rv review.Review) (review.Review, error) {
	if _, err := repo.catalog.GetResourceByID(ctx, rv.ResourceID); err != nil {
		return review.Review{}, err
	}
	seq, err := repo.db.nextSeq(ctx, reviewsCollection)
	if err != nil {
		return review.Review{}, err
	}
	if _, err = repo.reviews().InsertOne(ctx, reviewDoc{Review: rv, Seq: seq}); err != nil {
		return review.Review{}, storeErr("inserting review", err)
	}
	return rv, nil
}

func (repo *reviewRepository) find(ctx context.Context, filter bson.M) ([]review.Review, error) {
	cur, err := repo.reviews().Find(ctx, filter, bySeq())
	if err != nil {
		return nil, storeErr("finding reviews", err)
	}
	var docs []reviewDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decoding reviews", err)
	}
	reviews := make([]review.Review, 0, len(docs))
	for _, d := range docs {
		reviews = append(reviews, d.Review)
	}
	return reviews, nil
}

func (repo *reviewRepository) QueryReviewsByResource(ctx context.Context, resourceID string) ([]review.Review, error) {
	return repo.find(ctx, bson.M{"resource_id": resourceID})
}

// QueryReviewsByOwner resolves the owner's resources first, then their reviews.
func (repo *reviewRepository) QueryReviewsByOwner(ctx context.Context, ownerID string) ([]review.Review, error) {
	resources, err := repo.catalog.QueryResourcesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(resources) == 0 {
		return []review.Review{}, nil
	}
	ids := make(bson.A, 0, len(resources))
	for _, res := range resources {
		ids = append(ids, res.ID)
	}
	return repo.find(ctx, bson.M{"resource_id": bson.M{"$in": ids}})
}

func (repo *reviewRepository) QueryAllReviews(ctx context.Context) ([]review.Review, error) {
	return repo.find(ctx, bson.M{})
}
