package http

import (
	"testing"

	"fare-backend/internal/handlers"
	"fare-backend/internal/middleware"

	"github.com/gorilla/mux"
)

func buildRouter() *mux.Router {
	return NewRouter(
		handlers.NewAuthHandler(nil, nil, nil),
		handlers.NewTOTPHandler(nil, nil),
		handlers.NewUserHandler(nil, nil),
		handlers.NewCustomerHandler(nil, nil),
		handlers.NewLocationHandler(nil),
		handlers.NewPaymentHandler(nil, nil, nil, nil, nil),
		handlers.NewBillingHandler(nil, nil, nil),
		handlers.NewReportHandler(nil, nil),
		handlers.NewOnlinePaymentHandler(nil, nil),
		handlers.NewLogHandler(nil, nil),
		handlers.NewHealthHandler(nil),
		middleware.NewAuthMiddleware(nil, nil),
	)
}

func registeredRoutes(t *testing.T, r *mux.Router) map[string]bool {
	t.Helper()
	routes := map[string]bool{}
	err := r.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		if err != nil {
			return nil
		}
		methods, err := route.GetMethods()
		if err != nil {
			routes[path] = true
			return nil
		}
		for _, m := range methods {
			routes[m+" "+path] = true
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return routes
}

func TestRouterRegistersCoreRoutes(t *testing.T) {
	routes := registeredRoutes(t, buildRouter())

	want := []string{
		"GET /health",
		"GET /health/ready",
		"GET /metrics",
		"POST /auth/login",
		"POST /auth/logout",
		"POST /auth/verify-totp",
		"POST /api/payments",
		"DELETE /api/payments/{id}",
		"POST /api/billing/rollover",
		"GET /api/reports/unpaid.csv",
		"GET /api/reports/customers.csv",
		"POST /api/online-payments/webhook",
	}
	for _, route := range want {
		if !routes[route] {
			t.Errorf("route not registered: %s", route)
		}
	}
}
