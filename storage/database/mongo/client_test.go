package mongorepos_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	mongorepos "github.com/trezcool/maktaba/storage/database/mongo"
	testutil "github.com/trezcool/maktaba/tests"
)

// e.g. mongodb://localhost:27017
const uriEnv = "MAKTABA_TEST_MONGO_URI"

func TestStore(t *testing.T) {
	uri := os.Getenv(uriEnv)
	if uri == "" {
		t.Skipf("%s not set", uriEnv)
	}

	ctx := context.Background()
	n := 0
	testutil.RunStoreTests(t, func(t *testing.T) (catalog.Repository, review.Repository) {
		n++
		db, err := mongorepos.Connect(ctx, uri, fmt.Sprintf("maktaba_test_%d_%d", time.Now().Unix(), n))
		if err != nil {
			t.Fatalf("Connect() failed: %v", err)
		}
		t.Cleanup(func() {
			_ = db.Drop(ctx)
			_ = db.Close()
		})
		return mongorepos.NewCatalogRepository(db), mongorepos.NewReviewRepository(db)
	})
}
