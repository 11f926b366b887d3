package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core/catalog"
)

type catalogApi struct {
	svc *catalog.Service
}

func registerCatalogAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *catalog.Service) {
	api := catalogApi{svc: svc}

	g.GET("/categories", api.queryCategories)

	rg := g.Group("/resources")
	rg.GET("", api.search)
	rg.POST("", api.publish, jwt, adminMiddleware())
	rg.GET("/:id", api.retrieve)
}

// Handlers

func (api *catalogApi) queryCategories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, catalog.Categories)
}

func (api *catalogApi) search(ctx echo.Context) error {
	var filter catalog.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}

	seq, err := api.svc.Search(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "searching resources")
	}
	resources := make([]catalog.Resource, 0)
	for res := range seq {
		resources = append(resources, res)
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *catalogApi) publish(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var data catalog.NewResource
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResource")
	}

	res, err := api.svc.Publish(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "publishing resource")
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *catalogApi) retrieve(ctx echo.Context) error {
	res, err := api.svc.GetResource(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding resource")
	}
	return ctx.JSON(http.StatusOK, res)
}
