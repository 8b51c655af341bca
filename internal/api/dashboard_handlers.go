package api

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"jobdeck-gateway/internal/fanout"
	"jobdeck-gateway/internal/portalapi"
)

// candidateDashboardHandler handles GET /api/dashboard/candidate.
// Each slice is fetched independently; a failed fetch degrades that
// slice to empty rather than failing the dashboard.
func candidateDashboardHandler(c echo.Context) error {
	token := sessions.Token()
	results := fanout.Gather(c.Request().Context(), []fanout.Task{
		{
			Name:    "jobs",
			Default: []portalapi.Job{},
			Run: func(ctx context.Context) (any, error) {
				return portal.Jobs(ctx, token)
			},
		},
		{
			Name:    "applications",
			Default: []portalapi.Application{},
			Run: func(ctx context.Context) (any, error) {
				return portal.Applications(ctx, token)
			},
		},
	})

	logFailures(c, results)
	return c.JSON(http.StatusOK, fanout.Values(results))
}

// recruiterDashboardHandler handles GET /api/dashboard/recruiter
func recruiterDashboardHandler(c echo.Context) error {
	token := sessions.Token()
	results := fanout.Gather(c.Request().Context(), []fanout.Task{
		{
			Name:    "postings",
			Default: []portalapi.Job{},
			Run: func(ctx context.Context) (any, error) {
				return portal.Jobs(ctx, token)
			},
		},
		{
			Name:    "applications",
			Default: []portalapi.Application{},
			Run: func(ctx context.Context) (any, error) {
				return portal.Applications(ctx, token)
			},
		},
	})

	logFailures(c, results)
	return c.JSON(http.StatusOK, fanout.Values(results))
}

// adminDashboardHandler handles GET /api/dashboard/admin
func adminDashboardHandler(c echo.Context) error {
	token := sessions.Token()
	results := fanout.Gather(c.Request().Context(), []fanout.Task{
		{
			Name:    "approvals",
			Default: []portalapi.Approval{},
			Run: func(ctx context.Context) (any, error) {
				return portal.PendingApprovals(ctx, token)
			},
		},
		{
			Name:    "stats",
			Default: map[string]int{},
			Run: func(ctx context.Context) (any, error) {
				return portal.Stats(ctx, token)
			},
		},
	})

	logFailures(c, results)
	return c.JSON(http.StatusOK, fanout.Values(results))
}

// logFailures records degraded dashboard slices without surfacing them
// to the user
func logFailures(c echo.Context, results map[string]fanout.Result) {
	for name, result := range results {
		if result.Failed {
			c.Logger().Warnf("dashboard slice %s degraded: %v", name, result.Err)
		}
	}
}
