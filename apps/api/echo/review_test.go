package echoapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/maktaba/apps/api/echo"
	"github.com/trezcool/maktaba/core/catalog"
	"github.com/trezcool/maktaba/core/review"
	testutil "github.com/trezcool/maktaba/tests"
)

func Test_reviewApi_aggregates(t *testing.T) {
	db.Reset()

	owner := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	res := testutil.CreateResource(t, catalogRepo, owner.ID, "Intro to Physics", "Mechanics", catalog.CategoryTextbooks)
	quiet := testutil.CreateResource(t, catalogRepo, owner.ID, "Quiet", "", catalog.CategoryVideos)
	testutil.AddReviews(t, reviewRepo, res.ID, 5, 2)
	testutil.AddReviews(t, reviewRepo, res.ID, 3, 1)

	runHTTPTests(t, app, []httpTest{
		{
			name: "reviewed", path: "/v1/resources/" + res.ID + "/aggregates",
			wantData: marshalObj(t, review.Stats{
				Average:      4.3,
				AverageExact: 13.0 / 3.0,
				Count:        3,
				Distribution: []review.RatingShare{
					{Rating: 1}, {Rating: 2},
					{Rating: 3, Count: 1, Percentage: 33.3},
					{Rating: 4},
					{Rating: 5, Count: 2, Percentage: 66.7},
				},
			}),
		},
		{
			name: "no reviews", path: "/v1/resources/" + quiet.ID + "/aggregates",
			wantData: marshalObj(t, review.Stats{
				Distribution: []review.RatingShare{{Rating: 1}, {Rating: 2}, {Rating: 3}, {Rating: 4}, {Rating: 5}},
			}),
		},
		{
			name: "unknown resource", path: "/v1/resources/nope/aggregates", wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: `resource "nope" not found`}),
		},
	})
}

func Test_reviewApi_query(t *testing.T) {
	db.Reset()

	owner := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	res := testutil.CreateResource(t, catalogRepo, owner.ID, "Intro to Physics", "Mechanics", catalog.CategoryTextbooks)
	quiet := testutil.CreateResource(t, catalogRepo, owner.ID, "Quiet", "", catalog.CategoryVideos)
	reviews := append(testutil.AddReviews(t, reviewRepo, res.ID, 2, 1), testutil.AddReviews(t, reviewRepo, res.ID, 4, 2)...)

	runHTTPTests(t, app, []httpTest{
		{name: "submission order", path: "/v1/resources/" + res.ID + "/reviews", wantData: marshalObj(t, reviews)},
		{name: "no reviews", path: "/v1/resources/" + quiet.ID + "/reviews", wantData: marshalObj(t, []review.Review{})},
		{
			name: "unknown resource", path: "/v1/resources/nope/reviews", wantCode: http.StatusNotFound,
			wantData: marshalObj(t, httpErr{Error: `resource "nope" not found`}),
		},
	})
}

func Test_reviewApi_submit(t *testing.T) {
	db.Reset()

	owner := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	res := testutil.CreateResource(t, catalogRepo, owner.ID, "Intro to Physics", "Mechanics", catalog.CategoryTextbooks)
	token := readerToken(t, "juma@test.cd", "Juma")
	path := "/v1/resources/" + res.ID + "/reviews"

	runHTTPTests(t, app, []httpTest{
		{
			name: "auth required", method: http.MethodPost, path: path, body: marshalObj(t, ReviewRequest{Rating: 4, Comment: "good"}),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken),
		},
		{
			name: "invalid token", method: http.MethodPost, path: path, token: "not.a.jwt", body: marshalObj(t, ReviewRequest{Rating: 4, Comment: "good"}),
			wantCode: http.StatusUnauthorized, wantData: marshalObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "rating out of range", method: http.MethodPost, path: path, token: token, body: marshalObj(t, ReviewRequest{Rating: 6, Comment: "good"}),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"rating": "rating must be between 1 and 5"}),
		},
		{
			name: "blank comment", method: http.MethodPost, path: path, token: token, body: marshalObj(t, ReviewRequest{Rating: 3, Comment: " \t"}),
			wantCode: http.StatusBadRequest, wantData: marshalObj(t, map[string]string{"comment": "this field is required"}),
		},
		{
			name: "unknown resource", method: http.MethodPost, path: "/v1/resources/nope/reviews", token: token,
			body:     marshalObj(t, ReviewRequest{Rating: 3, Comment: "ok"}),
			wantCode: http.StatusNotFound, wantData: marshalObj(t, httpErr{Error: `resource "nope" not found`}),
		},
	})

	t.Run("recorded", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, token, marshalObj(t, ReviewRequest{Rating: 4, Comment: " clear and concise "}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var rv review.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rv))
		assert.NotEmpty(t, rv.ID)
		assert.Equal(t, res.ID, rv.ResourceID)
		assert.Equal(t, "Juma", rv.Author)
		assert.Equal(t, 4, rv.Rating)
		assert.Equal(t, "clear and concise", rv.Comment)
	})

	t.Run("author falls back to subject", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, path, readerToken(t, "anon@test.cd", ""), marshalObj(t, ReviewRequest{Rating: 5, Comment: "great"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var rv review.Review
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rv))
		assert.Equal(t, "anon@test.cd", rv.Author)
	})

	reviews, err := reviewRepo.QueryReviewsByResource(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2, "only valid submissions are stored")
}

func Test_reviewApi_submit_flagsResource(t *testing.T) {
	db.Reset()

	owner := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	res := testutil.CreateResource(t, catalogRepo, owner.ID, "Outdated Notes", "", catalog.CategoryLectureNotes)
	token := readerToken(t, "juma@test.cd", "Juma")

	submit := func() {
		req, rec := newAuthRequest(http.MethodPost, "/v1/resources/"+res.ID+"/reviews", token, marshalObj(t, ReviewRequest{Rating: 1, Comment: "wrong answers"}))
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}
	isFlagged := func() bool {
		req, rec := newRequest(http.MethodGet, "/v1/resources/"+res.ID)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var got catalog.Resource
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		return got.Flagged
	}

	for i := 0; i < conf.Moderation.ResourceFlagThreshold-1; i++ {
		submit()
	}
	assert.False(t, isFlagged(), "below the threshold")

	submit()
	assert.True(t, isFlagged(), "at the threshold")
}

func Test_reviewApi_submit_rateLimited(t *testing.T) {
	db.Reset()

	limited := *conf
	limited.Server.ReviewRateLimit = 0.01
	reviewSvc, deps := newDeps(&limited)
	srv := NewServer(deps)
	defer func() {
		_ = srv.Close()
		reviewSvc.Close()
	}()

	owner := testutil.CreateOwner(t, catalogRepo, "amina@test.cd", "Amina")
	res := testutil.CreateResource(t, catalogRepo, owner.ID, "Intro to Physics", "Mechanics", catalog.CategoryTextbooks)
	path := "/v1/resources/" + res.ID + "/reviews"
	body := marshalObj(t, ReviewRequest{Rating: 4, Comment: "good"})
	token := readerToken(t, "juma@test.cd", "Juma")

	runHTTPTests(t, srv, []httpTest{
		{name: "first submission", method: http.MethodPost, path: path, token: token, body: body, wantCode: http.StatusCreated},
		{
			name: "too soon", method: http.MethodPost, path: path, token: token, body: body,
			wantCode: http.StatusTooManyRequests, wantData: marshalObj(t, httpErr{Error: "rate limit exceeded"}),
		},
		{name: "reads are not limited", path: path},
	})
}
