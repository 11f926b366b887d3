package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core/review"
)

type (
	reviewApi struct {
		svc *review.Service
	}

	ReviewRequest struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
)

func registerReviewAPI(g *echo.Group, jwt, limiter echo.MiddlewareFunc, svc *review.Service) {
	api := reviewApi{svc: svc}

	rg := g.Group("/resources/:id")
	rg.GET("/aggregates", api.aggregates)
	rg.GET("/reviews", api.query)
	rg.POST("/reviews", api.submit, jwt, limiter)
}

// Handlers

func (api *reviewApi) aggregates(ctx echo.Context) error {
	stats, err := api.svc.Aggregates(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing aggregates")
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *reviewApi) query(ctx echo.Context) error {
	reviews, err := api.svc.QueryByResource(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying reviews")
	}
	return ctx.JSON(http.StatusOK, reviews)
}

func (api *reviewApi) submit(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data ReviewRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}

	rv, err := api.svc.Submit(ctx.Request().Context(), review.NewReview{
		ResourceID: ctx.Param("id"),
		Author:     claims.author(),
		Rating:     data.Rating,
		Comment:    data.Comment,
	})
	if err != nil {
		return errors.Wrap(err, "submitting review")
	}
	return ctx.JSON(http.StatusCreated, rv)
}
