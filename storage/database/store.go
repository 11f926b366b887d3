package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	inmemdb "github.com/trezcool/maktaba/storage/database/inmem"
	mongorepos "github.com/trezcool/maktaba/storage/database/mongo"
	pgrepos "github.com/trezcool/maktaba/storage/database/postgres"
)

// Store bundles both halves of the review store over one backend.
type Store struct {
	Catalog catalog.Repository
	Reviews review.Repository
	close   func() error
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

// NewStore opens the backend selected by conf.Database.Engine.
// Postgres databases are created and migrated on the way.
func NewStore(ctx context.Context, conf *core.Config) (*Store, error) {
	switch conf.Database.Engine {
	case core.EngineMemory, "":
		db := inmemdb.Open()
		return &Store{
			Catalog: inmemdb.NewCatalogRepository(db),
			Reviews: inmemdb.NewReviewRepository(db),
			close:   db.Close,
		}, nil

	case core.EnginePostgres:
		if err := CreateIfNotExist(ctx, conf); err != nil {
			return nil, err
		}
		db, err := Open(ctx, conf)
		if err != nil {
			return nil, err
		}
		if err = Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Store{
			Catalog: pgrepos.NewCatalogRepository(db),
			Reviews: pgrepos.NewReviewRepository(db),
			close:   db.Close,
		}, nil

	case core.EngineMongo:
		db, err := mongorepos.Connect(ctx, conf.Database.MongoURI, conf.Database.Name)
		if err != nil {
			return nil, err
		}
		return &Store{
			Catalog: mongorepos.NewCatalogRepository(db),
			Reviews: mongorepos.NewReviewRepository(db),
			close:   db.Close,
		}, nil
	}
	return nil, errors.Errorf("unknown database engine %q", conf.Database.Engine)
}
