package inmemdb

import (
	"context"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
)

type catalogRepository struct {
	db *DB
}

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) CreateOwner(_ context.Context, owner catalog.Owner) (catalog.Owner, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tbl := repo.db.owners
	if _, ok := tbl.table[owner.ID]; ok {
		return catalog.Owner{}, catalog.ErrOwnerExists
	}
	tbl.table[owner.ID] = &owner
	tbl.order = append(tbl.order, owner.ID)
	return owner, nil
}

func (repo *catalogRepository) GetOwnerByID(_ context.Context, id string) (catalog.Owner, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if owner, ok := repo.db.owners.table[id]; ok {
		return *owner, nil
	}
	return catalog.Owner{}, core.NewNotFoundError(catalog.KindOwner, id)
}

func (repo *catalogRepository) QueryAllOwners(_ context.Context) ([]catalog.Owner, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tbl := repo.db.owners
	owners := make([]catalog.Owner, 0, len(tbl.order))
	for _, id := range tbl.order {
		owners = append(owners, *tbl.table[id])
	}
	return owners, nil
}

func (repo *catalogRepository) SuspendOwner(_ context.Context, id string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	owner, ok := repo.db.owners.table[id]
	if !ok {
		return false, core.NewNotFoundError(catalog.KindOwner, id)
	}
	if owner.Suspended {
		return false, nil
	}
	owner.Suspended = true
	return true, nil
}

func (repo *catalogRepository) CreateResource(_ context.Context, res catalog.Resource) (catalog.Resource, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.owners.table[res.OwnerID]; !ok {
		return catalog.Resource{}, core.NewNotFoundError(catalog.KindOwner, res.OwnerID)
	}
	tbl := repo.db.resources
	tbl.table[res.ID] = &res
	tbl.order = append(tbl.order, res.ID)
	return res, nil
}

func (repo *catalogRepository) GetResourceByID(_ context.Context, id string) (catalog.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if res, ok := repo.db.resources.table[id]; ok {
		return *res, nil
	}
	return catalog.Resource{}, core.NewNotFoundError(catalog.KindResource, id)
}

// query copies out the resources matching `keep`, in publication order. Callers hold the lock.
func (repo *catalogRepository) query(keep func(catalog.Resource) bool) []catalog.Resource {
	tbl := repo.db.resources
	resources := make([]catalog.Resource, 0, len(tbl.order))
	for _, id := range tbl.order {
		if res := *tbl.table[id]; keep(res) {
			resources = append(resources, res)
		}
	}
	return resources
}

func (repo *catalogRepository) QueryAllResources(_ context.Context) ([]catalog.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(catalog.Resource) bool { return true }), nil
}

func (repo *catalogRepository) QueryResources(_ context.Context, filter catalog.Filter) ([]catalog.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(filter.Match), nil
}

func (repo *catalogRepository) QueryResourcesByOwner(_ context.Context, ownerID string) ([]catalog.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.query(func(res catalog.Resource) bool { return res.OwnerID == ownerID }), nil
}

func (repo *catalogRepository) FlagResource(_ context.Context, id string) (bool, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	res, ok := repo.db.resources.table[id]
	if !ok {
		return false, core.NewNotFoundError(catalog.KindResource, id)
	}
	if res.Flagged {
		return false, nil
	}
	res.Flagged = true
	return true, nil
}
