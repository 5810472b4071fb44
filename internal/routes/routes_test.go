package routes

import (
	"testing"

	"github.com/Sankura23/woofadaar-moderation/internal/config"
	"github.com/Sankura23/woofadaar-moderation/internal/handlers"
	"github.com/Sankura23/woofadaar-moderation/internal/scorer"
	"github.com/Sankura23/woofadaar-moderation/internal/services"
	"github.com/Sankura23/woofadaar-moderation/internal/storage"
	"github.com/gofiber/fiber/v2"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{JWTSecret: "test-secret", RuleThresholdStep: 0.02}
	store := storage.NewMemoryStore()

	engine, err := services.NewRuleEngine(store)
	if err != nil {
		t.Fatalf("NewRuleEngine() error = %v", err)
	}
	reputation := services.NewReputationService(store)
	queue := services.NewQueueService(store, reputation)
	decision := services.NewDecisionService(store, scorer.NewLexical(), engine, reputation, queue)
	reports := services.NewReportService(store, queue)
	feedback := services.NewFeedbackService(store, reputation, engine, cfg.RuleThresholdStep)
	analytics := services.NewAnalyticsService(store, 0.7)

	app := fiber.New()
	Setup(app, cfg, nil,
		handlers.NewAuthHandler(services.NewAuthService(nil, cfg)),
		handlers.NewHealthHandler(),
		handlers.NewModerationHandler(decision),
		handlers.NewQueueHandler(queue),
		handlers.NewReportHandler(reports),
		handlers.NewFeedbackHandler(feedback),
		handlers.NewAnalyticsHandler(analytics),
		handlers.NewRulesHandler(engine),
	)
	return app
}

// The exposed surface is part of the service contract: resolution is a PATCH
// on the queue resource and reports live at the plural path.
func TestRouteSurface(t *testing.T) {
	app := newTestApp(t)

	registered := make(map[string]bool)
	for _, r := range app.GetRoutes() {
		registered[r.Method+" "+r.Path] = true
	}

	want := []string{
		"GET /api/health",
		"POST /api/auth/register",
		"POST /api/auth/login",
		"POST /api/auth/refresh",
		"POST /api/auth/logout",
		"POST /api/moderation/evaluate",
		"POST /api/moderation/reports",
		"POST /api/moderation/feedback",
		"GET /api/moderation/feedback/:id/agreement",
		"GET /api/moderation/queue",
		"PATCH /api/moderation/queue",
		"POST /api/moderation/queue/:id/claim",
		"GET /api/moderation/analytics",
		"GET /api/admin/rules",
		"PUT /api/admin/rules/:id",
		"DELETE /api/admin/rules/:id",
	}
	for _, route := range want {
		if !registered[route] {
			t.Errorf("route %q not registered", route)
		}
	}

	for _, stale := range []string{
		"POST /api/moderation/report",
		"POST /api/moderation/queue/resolve",
	} {
		if registered[stale] {
			t.Errorf("stale route %q still registered", stale)
		}
	}
}
