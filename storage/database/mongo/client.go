// Package mongorepos implements the review store on MongoDB.
package mongorepos

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/trezcool/maktaba/core"
)

const (
	ownersCollection    = "owners"
	resourcesCollection = "resources"
	reviewsCollection   = "reviews"
	countersCollection  = "counters"

	connectTimeout = 10 * time.Second
)

// DB wraps the mongo database holding the review store collections.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client, pings it and makes sure the indexes exist.
func Connect(ctx context.Context, uri, dbName string) (*DB, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "mongo ping")
	}

	db := &DB{client: client, db: client.Database(dbName)}
	if err = db.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return db, nil
}

func (db *DB) ensureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		resourcesCollection: {
			{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "seq", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "seq", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "resource_id", Value: 1}, {Key: "seq", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := db.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "creating %s indexes", coll)
		}
	}
	return nil
}

func (db *DB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// Drop removes every collection. Used by tests.
func (db *DB) Drop(ctx context.Context) error {
	return db.db.Drop(ctx)
}

func (db *DB) collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}

// nextSeq atomically increments the named counter. Sequences give documents their insertion order.
func (db *DB) nextSeq(ctx context.Context, name string) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := db.collection(countersCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": name},
		bson.M{"$inc": bson.M{"seq": 1}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&counter)
	if err != nil {
		return 0, storeErr("incrementing "+name+" counter", err)
	}
	return counter.Seq, nil
}

func storeErr(op string, err error) error {
	return core.NewStoreError("mongo: "+op, err)
}

func bySeq() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "seq", Value: 1}})
}
