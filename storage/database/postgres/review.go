package pgrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
)

type reviewRepository struct {
	db *sqlx.DB
}

var _ review.Repository = (*reviewRepository)(nil)

func NewReviewRepository(db *sqlx.DB) review.Repository {
	return &reviewRepository{db: db}
}

func (repo *reviewRepository) CreateReview(ctx context.Context, rv review.Review) (review.Review, error) {
	if !validUUID(rv.ResourceID) {
		return review.Review{}, core.NewNotFoundError(catalog.KindResource, rv.ResourceID)
	}
	q, args, err := psql.Insert("reviews").
		Columns(reviewColumns...).
		Values(rv.ID, rv.ResourceID, rv.Author, rv.Rating, rv.Comment, rv.CreatedAt).
		ToSql()
	if err != nil {
		return review.Review{}, storeErr("building review insert", err)
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return review.Review{}, core.NewNotFoundError(catalog.KindResource, rv.ResourceID)
		}
		return review.Review{}, storeErr("inserting review", err)
	}
	return rv, nil
}

func (repo *reviewRepository) selectReviews(ctx context.Context, qb sq.SelectBuilder) ([]review.Review, error) {
	q, args, err := qb.ToSql()
	if err != nil {
		return nil, storeErr("building reviews select", err)
	}
	reviews := make([]review.Review, 0)
	if err = repo.db.SelectContext(ctx, &reviews, q, args...); err != nil {
		return nil, storeErr("selecting reviews", err)
	}
	return reviews, nil
}

func (repo *reviewRepository) QueryReviewsByResource(ctx context.Context, resourceID string) ([]review.Review, error) {
	if !validUUID(resourceID) {
		return []review.Review{}, nil
	}
	return repo.selectReviews(ctx, psql.Select(reviewColumns...).
		From("reviews").
		Where(sq.Eq{"resource_id": resourceID}).
		OrderBy("seq"))
}

// QueryReviewsByOwner joins at read time so ownership changes are always reflected.
func (repo *reviewRepository) QueryReviewsByOwner(ctx context.Context, ownerID string) ([]review.Review, error) {
	return repo.selectReviews(ctx, psql.Select(prefixed("rv", reviewColumns)...).
		From("reviews rv").
		Join("resources res ON res.id = rv.resource_id").
		Where(sq.Eq{"res.owner_id": ownerID}).
		OrderBy("res.seq", "rv.seq"))
}

func (repo *reviewRepository) QueryAllReviews(ctx context.Context) ([]review.Review, error) {
	return repo.selectReviews(ctx, psql.Select(reviewColumns...).From("reviews").OrderBy("seq"))
}
