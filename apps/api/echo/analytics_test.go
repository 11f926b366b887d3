package echoapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/trezcool/maktaba/core/analytics"
	"github.com/trezcool/maktaba/core/catalog"
	testutil "github.com/trezcool/maktaba/tests"
)

func Test_analyticsApi_report(t *testing.T) {
	db.Reset()
	ctx := context.Background()

	amina := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	kofi := testutil.CreateOwner(t, catalogRepo, "kofi@test.cd", "Kofi")
	physics := testutil.CreateResource(t, catalogRepo, amina.ID, "Intro to Physics", "", catalog.CategoryTextbooks)
	notes := testutil.CreateResource(t, catalogRepo, kofi.ID, "Quantum Notes", "", catalog.CategoryLectureNotes)
	testutil.CreateResource(t, catalogRepo, amina.ID, "Cell Biology", "", catalog.CategoryVideos)
	testutil.AddReviews(t, reviewRepo, physics.ID, 5, 3)
	testutil.AddReviews(t, reviewRepo, notes.ID, 2, 2)
	testutil.AddReviews(t, reviewRepo, notes.ID, 1, 1)

	report := func(owner string, n int) []byte {
		r, err := reporter.Report(ctx, owner, n)
		require.NoError(t, err)
		return marshalObj(t, r)
	}
	kofiToken := ownerToken(t, kofi)

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/analytics", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "platform", path: "/v1/analytics", token: readerToken(t, "juma@test.cd", "Juma"), wantData: report("", 0)},
		{name: "limit", path: "/v1/analytics?limit=1", token: kofiToken, wantData: report("", 1)},
		{name: "own performance", path: "/v1/analytics?owner=KOFI@test.cd", token: kofiToken, wantData: report(kofi.ID, 0)},
		{name: "own performance without publishing", path: "/v1/analytics?owner=juma@test.cd", token: readerToken(t, "juma@test.cd", "Juma"), wantData: report("", 0)},
		{
			name: "someone else's performance", path: "/v1/analytics?owner=" + amina.ID, token: readerToken(t, "juma@test.cd", "Juma"),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{name: "admins see everyone", path: "/v1/analytics?owner=" + amina.ID, token: kofiToken, wantData: report(amina.ID, 0)},
		{
			name: "negative limit", path: "/v1/analytics?limit=-1", token: kofiToken,
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"limit": "limit must be positive"}),
		},
		{
			name: "unknown owner", path: "/v1/analytics?owner=ghost@test.cd", token: kofiToken,
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: `owner "ghost@test.cd" not found`}),
		},
	})
}

func Test_analyticsApi_ownerPerformance(t *testing.T) {
	db.Reset()

	amina := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	res := testutil.CreateResource(t, catalogRepo, amina.ID, "Intro to Physics", "", catalog.CategoryTextbooks)
	quiet := testutil.CreateResource(t, catalogRepo, amina.ID, "Quiet", "", catalog.CategoryVideos)
	testutil.AddReviews(t, reviewRepo, res.ID, 1, 2)
	testutil.AddReviews(t, reviewRepo, res.ID, 4, 1)

	want := analytics.Performance{
		Owner: amina,
		Resources: []analytics.RatedResource{
			{Resource: res, Average: 2, AverageExact: 2, ReviewCount: 3},
			{Resource: quiet},
		},
		Average:      2,
		ReviewCount:  3,
		OneStarCount: 2,
	}

	runHTTPTests(t, app, []httpTest{
		{name: "auth required", path: "/v1/owners/" + amina.ID + "/performance", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{
			name: "admin required", path: "/v1/owners/" + amina.ID + "/performance", token: readerToken(t, "juma@test.cd", "Juma"),
			wantCode: http.StatusForbidden, wantData: marshalObj(t, errForbidden),
		},
		{name: "found", path: "/v1/owners/" + amina.ID + "/performance", token: ownerToken(t, amina), wantData: marshalObj(t, want)},
		{
			name: "unknown owner", path: "/v1/owners/ghost@test.cd/performance", token: ownerToken(t, amina),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: `owner "ghost@test.cd" not found`}),
		},
	})
}
