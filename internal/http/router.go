package http

import (
	"net/http"

	"fare-backend/internal/handlers"
	"fare-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	totpHandler *handlers.TOTPHandler,
	userHandler *handlers.UserHandler,
	customerHandler *handlers.CustomerHandler,
	locationHandler *handlers.LocationHandler,
	paymentHandler *handlers.PaymentHandler,
	billingHandler *handlers.BillingHandler,
	reportHandler *handlers.ReportHandler,
	onlinePaymentHandler *handlers.OnlinePaymentHandler,
	logHandler *handlers.LogHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Public routes
	r.HandleFunc("/health", healthHandler.Health).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/verify-totp", authHandler.VerifyTOTP).Methods("POST")
	r.Handle("/auth/logout", authMiddleware.Authenticate(http.HandlerFunc(authHandler.Logout))).Methods("POST")

	// Razorpay calls this directly; it authenticates via the webhook signature.
	r.HandleFunc("/api/online-payments/webhook", onlinePaymentHandler.Webhook).Methods("POST")

	adminOnly := authMiddleware.RequireRole("admin")

	// Account
	accountAPI := r.PathPrefix("/api/account").Subrouter()
	accountAPI.Use(authMiddleware.Authenticate)
	accountAPI.HandleFunc("/me", authHandler.Me).Methods("GET")
	accountAPI.HandleFunc("/totp/setup", totpHandler.Setup).Methods("POST")
	accountAPI.HandleFunc("/totp/enable", totpHandler.Enable).Methods("POST")
	accountAPI.HandleFunc("/totp/disable", totpHandler.Disable).Methods("POST")

	// Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate, adminOnly)
	usersAPI.HandleFunc("", userHandler.ListUsers).Methods("GET")
	usersAPI.HandleFunc("", userHandler.CreateUser).Methods("POST")
	usersAPI.HandleFunc("/{id}", userHandler.UpdateUser).Methods("PUT")
	usersAPI.HandleFunc("/{id}", userHandler.DeleteUser).Methods("DELETE")

	// Locations
	locationsAPI := r.PathPrefix("/api/locations").Subrouter()
	locationsAPI.Use(authMiddleware.Authenticate)
	locationsAPI.HandleFunc("", locationHandler.ListLocations).Methods("GET")
	locationsAPI.HandleFunc("", locationHandler.CreateLocation).Methods("POST")
	locationsAPI.HandleFunc("/{id}", locationHandler.UpdateLocation).Methods("PUT")
	locationsAPI.HandleFunc("/{id}", locationHandler.DeleteLocation).Methods("DELETE")

	// Customers
	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", customerHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", customerHandler.CreateCustomer).Methods("POST")
	customersAPI.HandleFunc("/unpaid", customerHandler.UnpaidCustomers).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.GetCustomer).Methods("GET")
	customersAPI.HandleFunc("/{id}", customerHandler.UpdateCustomer).Methods("PUT")
	customersAPI.HandleFunc("/{id}", customerHandler.DeleteCustomer).Methods("DELETE")
	customersAPI.HandleFunc("/{id}/payments", paymentHandler.CustomerPayments).Methods("GET")

	// Payments
	paymentsAPI := r.PathPrefix("/api/payments").Subrouter()
	paymentsAPI.Use(authMiddleware.Authenticate)
	paymentsAPI.HandleFunc("", paymentHandler.ListPayments).Methods("GET")
	paymentsAPI.HandleFunc("", paymentHandler.RecordPayment).Methods("POST")
	paymentsAPI.HandleFunc("/{id}", paymentHandler.ReversePayment).Methods("DELETE")
	paymentsAPI.HandleFunc("/{id}/receipt", paymentHandler.Receipt).Methods("GET")

	// Billing cycle (admin only)
	billingAPI := r.PathPrefix("/api/billing").Subrouter()
	billingAPI.Use(authMiddleware.Authenticate, adminOnly)
	billingAPI.HandleFunc("/rollover", billingHandler.Rollover).Methods("POST")

	// Reports
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/dashboard", reportHandler.Dashboard).Methods("GET")
	reportsAPI.HandleFunc("/summary", reportHandler.Summary).Methods("GET")
	reportsAPI.HandleFunc("/monthly-income", reportHandler.MonthlyIncome).Methods("GET")
	reportsAPI.HandleFunc("/monthly.pdf", reportHandler.MonthlyReportPDF).Methods("GET")
	reportsAPI.HandleFunc("/unpaid.csv", reportHandler.UnpaidCSV).Methods("GET")
	reportsAPI.HandleFunc("/customers.csv", reportHandler.CustomersCSV).Methods("GET")
	reportsAPI.Handle("/archive", adminOnly(http.HandlerFunc(reportHandler.ArchivePayments))).Methods("POST")

	// Online payments
	onlineAPI := r.PathPrefix("/api/online-payments").Subrouter()
	onlineAPI.Use(authMiddleware.Authenticate)
	onlineAPI.HandleFunc("/order", onlinePaymentHandler.CreateOrder).Methods("POST")
	onlineAPI.HandleFunc("/verify", onlinePaymentHandler.VerifyPayment).Methods("POST")
	onlineAPI.HandleFunc("", onlinePaymentHandler.ListTransactions).Methods("GET")

	// Audit logs (admin only)
	logsAPI := r.PathPrefix("/api/logs").Subrouter()
	logsAPI.Use(authMiddleware.Authenticate, adminOnly)
	logsAPI.HandleFunc("/logins", logHandler.ListLoginLogs).Methods("GET")
	logsAPI.HandleFunc("/actions", logHandler.ListAdminActions).Methods("GET")

	return r
}
