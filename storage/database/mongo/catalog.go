package mongorepos

import (
	"context"
	"regexp"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
)

type (
	catalogRepository struct {
		db *DB
	}

	resourceDoc struct {
		catalog.Resource `bson:",inline"`
		Seq              int64 `bson:"seq"`
	}
)

var _ catalog.Repository = (*catalogRepository)(nil)

func NewCatalogRepository(db *DB) catalog.Repository {
	return &catalogRepository{db: db}
}

func (repo *catalogRepository) owners() *mongo.Collection {
	return repo.db.collection(ownersCollection)
}

func (repo *catalogRepository) resources() *mongo.Collection {
	return repo.db.collection(resourcesCollection)
}

func (repo *catalogRepository) CreateOwner(ctx context.Context, owner catalog.Owner) (catalog.Owner, error) {
	if _, err := repo.owners().InsertOne(ctx, owner); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return catalog.Owner{}, catalog.ErrOwnerExists
		}
		return catalog.Owner{}, storeErr("inserting owner", err)
	}
	return owner, nil
}

func (repo *catalogRepository) GetOwnerByID(ctx context.Context, id string) (catalog.Owner, error) {
	var owner catalog.Owner
	if err := repo.owners().FindOne(ctx, bson.M{"_id": id}).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.Owner{}, core.NewNotFoundError(catalog.KindOwner, id)
		}
		return catalog.Owner{}, storeErr("finding owner", err)
	}
	return owner, nil
}

func (repo *catalogRepository) QueryAllOwners(ctx context.Context) ([]catalog.Owner, error) {
	cur, err := repo.owners().Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storeErr("finding owners", err)
	}
	owners := make([]catalog.Owner, 0)
	if err = cur.All(ctx, &owners); err != nil {
		return nil, storeErr("decoding owners", err)
	}
	return owners, nil
}

// SuspendOwner is a conditional update: only the caller that flips the document gets true.
func (repo *catalogRepository) SuspendOwner(ctx context.Context, id string) (bool, error) {
	res, err := repo.owners().UpdateOne(ctx,
		bson.M{"_id": id, "suspended": false},
		bson.M{"$set": bson.M{"suspended": true}},
	)
	if err != nil {
		return false, storeErr("suspending owner", err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}
	if _, err = repo.GetOwnerByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}

func (repo *catalogRepository) CreateResource(ctx context.Context, res catalog.Resource) (catalog.Resource, error) {
	if _, err := repo.GetOwnerByID(ctx, res.OwnerID); err != nil {
		return catalog.Resource{}, err
	}
	seq, err := repo.db.nextSeq(ctx, resourcesCollection)
	if err != nil {
		return catalog.Resource{}, err
	}
	if _, err = repo.resources().InsertOne(ctx, resourceDoc{Resource: res, Seq: seq}); err != nil {
		return catalog.Resource{}, storeErr("inserting resource", err)
	}
	return res, nil
}

func (repo *catalogRepository) GetResourceByID(ctx context.Context, id string) (catalog.Resource, error) {
	var doc resourceDoc
	if err := repo.resources().FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return catalog.Resource{}, core.NewNotFoundError(catalog.KindResource, id)
		}
		return catalog.Resource{}, storeErr("finding resource", err)
	}
	return doc.Resource, nil
}

func (repo *catalogRepository) find(ctx context.Context, filter bson.M) ([]catalog.Resource, error) {
	cur, err := repo.resources().Find(ctx, filter, bySeq())
	if err != nil {
		return nil, storeErr("finding resources", err)
	}
	var docs []resourceDoc
	if err = cur.All(ctx, &docs); err != nil {
		return nil, storeErr("decoding resources", err)
	}
	resources := make([]catalog.Resource, 0, len(docs))
	for _, d := range docs {
		resources = append(resources, d.Resource)
	}
	return resources, nil
}

func (repo *catalogRepository) QueryAllResources(ctx context.Context) ([]catalog.Resource, error) {
	return repo.find(ctx, bson.M{})
}

func (repo *catalogRepository) QueryResources(ctx context.Context, filter catalog.Filter) ([]catalog.Resource, error) {
	q := bson.M{}
	if filter.Category != "" && filter.Category != catalog.CategoryAll {
		q["category"] = filter.Category
	}
	if filter.Search != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(filter.Search), "$options": "i"}
		q["$or"] = bson.A{bson.M{"title": pattern}, bson.M{"description": pattern}}
	}
	return repo.find(ctx, q)
}

func (repo *catalogRepository) QueryResourcesByOwner(ctx context.Context, ownerID string) ([]catalog.Resource, error) {
	return repo.find(ctx, bson.M{"owner_id": ownerID})
}

// FlagResource is a conditional update: only the caller that flips the document gets true.
func (repo *catalogRepository) FlagResource(ctx context.Context, id string) (bool, error) {
	res, err := repo.resources().UpdateOne(ctx,
		bson.M{"_id": id, "flagged": false},
		bson.M{"$set": bson.M{"flagged": true}},
	)
	if err != nil {
		return false, storeErr("flagging resource", err)
	}
	if res.ModifiedCount == 1 {
		return true, nil
	}
	if _, err = repo.GetResourceByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
