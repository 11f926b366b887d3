package pgrepos

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
)

type catalogRepository struct {
	db *sqlx.DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *sqlx.DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateOwner(ctx context.Context, owner catalog.Owner) (catalog.Owner, error) {
	q, args, err := psql.Insert("owners").
		Columns(ownerColumns...).
		Values(owner.ID, owner.Name, owner.Role, owner.Suspended, owner.CreatedAt).
		ToSql()
	if err != nil {
		return catalog.Owner{}, storeErr("building owner insert", err)
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if pqCode(err) == pqUniqueViolation {
			return catalog.Owner{}, catalog.ErrOwnerExists
		}
		return catalog.Owner{}, storeErr("inserting owner", err)
	}
	return owner, nil
}

func (repo *catalogRepository) GetOwnerByID(ctx context.Context, id string) (catalog.Owner, error) {
	q, args, err := psql.Select(ownerColumns...).From("owners").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return catalog.Owner{}, storeErr("building owner select", err)
	}
	var owner catalog.Owner
	if err = repo.db.GetContext(ctx, &owner, q, args...); err != nil {
		if isNoRows(err) {
			return catalog.Owner{}, core.NewNotFoundError(catalog.KindOwner, id)
		}
		return catalog.Owner{}, storeErr("selecting owner", err)
	}
	return owner, nil
}

func (repo *catalogRepository) QueryAllOwners(ctx context.Context) ([]catalog.Owner, error) {
	q, args, err := psql.Select(ownerColumns...).From("owners").OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, storeErr("building owners select", err)
	}
	owners := make([]catalog.Owner, 0)
	if err = repo.db.SelectContext(ctx, &owners, q, args...); err != nil {
		return nil, storeErr("selecting owners", err)
	}
	return owners, nil
}

// SuspendOwner is a conditional update: only the caller that flips the row gets true.
func (repo *catalogRepository) SuspendOwner(ctx context.Context, id string) (bool, error) {
	q, args, err := psql.Update("owners").
		Set("suspended", true).
		Where(sq.Eq{"id": id, "suspended": false}).
		ToSql()
	if err != nil {
		return false, storeErr("building owner suspension", err)
	}
	changed, err := repo.execConditional(ctx, q, args)
	if err != nil || changed {
		return changed, err
	}
	if _, err = repo.GetOwnerByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (repo *catalogRepository) CreateResource(ctx context.Context, res catalog.Resource) (catalog.Resource, error) {
	q, args, err := psql.Insert("resources").
		Columns(resourceColumns...).
		Values(res.ID, res.Title, res.Description, res.Category, res.OwnerID, res.Flagged, res.PublishedAt).
		ToSql()
	if err != nil {
		return catalog.Resource{}, storeErr("building resource insert", err)
	}
	if _, err = repo.db.ExecContext(ctx, q, args...); err != nil {
		if pqCode(err) == pqForeignKeyViolation {
			return catalog.Resource{}, core.NewNotFoundError(catalog.KindOwner, res.OwnerID)
		}
		return catalog.Resource{}, storeErr("inserting resource", err)
	}
	return res, nil
}

func (repo *catalogRepository) GetResourceByID(ctx context.Context, id string) (catalog.Resource, error) {
	if !validUUID(id) {
		return catalog.Resource{}, core.NewNotFoundError(catalog.KindResource, id)
	}
	q, args, err := psql.Select(resourceColumns...).From("resources").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return catalog.Resource{}, storeErr("building resource select", err)
	}
	var res catalog.Resource
	if err = repo.db.GetContext(ctx, &res, q, args...); err != nil {
		if isNoRows(err) {
			return catalog.Resource{}, core.NewNotFoundError(catalog.KindResource, id)
		}
		return catalog.Resource{}, storeErr("selecting resource", err)
	}
	return res, nil
}

func (repo *catalogRepository) selectResources(ctx context.Context, where sq.Sqlizer) ([]catalog.Resource, error) {
	qb := psql.Select(resourceColumns...).From("resources").OrderBy("seq")
	if where != nil {
		qb = qb.Where(where)
	}
	q, args, err := qb.ToSql()
	if err != nil {
		return nil, storeErr("building resources select", err)
	}
	resources := make([]catalog.Resource, 0)
	if err = repo.db.SelectContext(ctx, &resources, q, args...); err != nil {
		return nil, storeErr("selecting resources", err)
	}
	return resources, nil
}

func (repo *catalogRepository) QueryAllResources(ctx context.Context) ([]catalog.Resource, error) {
	return repo.selectResources(ctx, nil)
}

func (repo *catalogRepository) QueryResources(ctx context.Context, filter catalog.Filter) ([]catalog.Resource, error) {
	and := sq.And{}
	if filter.Category != "" && filter.Category != catalog.CategoryAll {
		and = append(and, sq.Eq{"category": filter.Category})
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		and = append(and, sq.Or{sq.ILike{"title": pattern}, sq.ILike{"description": pattern}})
	}
	if len(and) == 0 {
		return repo.selectResources(ctx, nil)
	}
	return repo.selectResources(ctx, and)
}

func (repo *catalogRepository) QueryResourcesByOwner(ctx context.Context, ownerID string) ([]catalog.Resource, error) {
	return repo.selectResources(ctx, sq.Eq{"owner_id": ownerID})
}

// FlagResource is a conditional update: only the caller that flips the row gets true.
func (repo *catalogRepository) FlagResource(ctx context.Context, id string) (bool, error) {
	if !validUUID(id) {
		return false, core.NewNotFoundError(catalog.KindResource, id)
	}
	q, args, err := psql.Update("resources").
		Set("flagged", true).
		Where(sq.Eq{"id": id, "flagged": false}).
		ToSql()
	if err != nil {
		return false, storeErr("building resource flag", err)
	}
	changed, err := repo.execConditional(ctx, q, args)
	if err != nil || changed {
		return changed, err
	}
	if _, err = repo.GetResourceByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (repo *catalogRepository) execConditional(ctx context.Context, q string, args []interface{}) (bool, error) {
	result, err := repo.db.ExecContext(ctx, q, args...)
	if err != nil {
		return false, storeErr("updating", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, storeErr("counting updated rows", err)
	}
	return n == 1, nil
}
