package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/maktaba/core"
	"github.com/trezcool/maktaba/core/analytics"
)

type (
	analyticsApi struct {
		reporter *analytics.Reporter
	}

	AnalyticsQuery struct {
		Owner string `query:"owner"`
		Limit int    `query:"limit"`
	}
)

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, reporter *analytics.Reporter) {
	api := analyticsApi{reporter: reporter}

	g.GET("/analytics", api.report, jwt)
	g.GET("/owners/:id/performance", api.ownerPerformance, jwt, adminMiddleware())
}

// Handlers

// report includes the owner's performance when `owner` is set. Only admins can look at other owners.
// Asking for yourself without being a registered owner returns the platform views only.
func (api *analyticsApi) report(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	var q AnalyticsQuery
	if err = ctx.Bind(&q); err != nil {
		return errors.Wrap(err, "binding to AnalyticsQuery")
	}
	q.Owner = core.CleanString(q.Owner, true /* lower */)
	self := q.Owner != "" && q.Owner == strings.ToLower(claims.Subject)
	if q.Owner != "" && !self && !claims.IsAdmin {
		return errHttpForbidden
	}
	if q.Limit < 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "limit", Error: "limit must be positive"})
	}

	report, err := api.reporter.Report(ctx.Request().Context(), q.Owner, q.Limit)
	if core.IsNotFound(err) && self {
		// readers who publish nothing still get the platform views
		report, err = api.reporter.Report(ctx.Request().Context(), "", q.Limit)
	}
	if err != nil {
		return errors.Wrap(err, "building report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *analyticsApi) ownerPerformance(ctx echo.Context) error {
	perf, err := api.reporter.OwnerPerformance(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "computing owner performance")
	}
	return ctx.JSON(http.StatusOK, perf)
}
