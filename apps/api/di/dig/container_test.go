package dig_container

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/trezcool/maktaba/apps/api/echo"
	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/review"
	"github.com/trezcool/maktaba/storage/database"
)

func TestNew(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("TEST_DATABASE_ENGINE", core.EngineMemory)

	err := New().Invoke(func(store *database.Store, reviewSvc *review.Service, server *echoapi.Server, notifier review.Notifier) {
		defer func() { _ = store.Close() }()
		defer reviewSvc.Close()
		defer func() { _ = server.Close() }()

		assert.NotNil(t, notifier)

		req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
	require.NoError(t, err)
}
