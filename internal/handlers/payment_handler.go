package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"fare-backend/internal/cache"
	"fare-backend/internal/ledger"
	"fare-backend/internal/middleware"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/services"
	"fare-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type PaymentHandler struct {
	Ledger       *ledger.Service
	PaymentRepo  *repositories.PaymentRepository
	CustomerRepo *repositories.CustomerRepository
	AuditRepo    *repositories.AdminActionLogRepository
	Reports      *services.ReportService
}

func NewPaymentHandler(ledgerSvc *ledger.Service, paymentRepo *repositories.PaymentRepository, customerRepo *repositories.CustomerRepository, auditRepo *repositories.AdminActionLogRepository, reports *services.ReportService) *PaymentHandler {
	return &PaymentHandler{
		Ledger:       ledgerSvc,
		PaymentRepo:  paymentRepo,
		CustomerRepo: customerRepo,
		AuditRepo:    auditRepo,
		Reports:      reports,
	}
}

// ledgerErrorStatus maps ledger error kinds to HTTP status codes.
func ledgerErrorStatus(err error) int {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ledger.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())

	payment, err := h.Ledger.RecordPayment(r.Context(), req.CustomerID, req.Amount, userID, req.Notes)
	if err != nil {
		utils.Error(w, ledgerErrorStatus(err), err.Error())
		return
	}

	h.audit(r, userID, models.ActionPaymentRecorded, "payment", payment.ID,
		fmt.Sprintf("Recorded %s for Rs. %.2f against customer %d", payment.ReceiptNumber, payment.Amount, payment.CustomerID))
	cache.InvalidateLedgerCaches(r.Context())

	utils.JSON(w, http.StatusCreated, payment)
}

func (h *PaymentHandler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payment, err := h.Ledger.ReversePayment(r.Context(), id)
	if err != nil {
		utils.Error(w, ledgerErrorStatus(err), err.Error())
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	h.audit(r, userID, models.ActionPaymentReversed, "payment", payment.ID,
		fmt.Sprintf("Reversed %s of Rs. %.2f for customer %d", payment.ReceiptNumber, payment.Amount, payment.CustomerID))
	cache.InvalidateLedgerCaches(r.Context())

	utils.JSON(w, http.StatusOK, payment)
}

// CustomerPayments returns a customer's payment history with the running total.
func (h *PaymentHandler) CustomerPayments(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	customer, err := h.CustomerRepo.GetByID(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Customer not found")
		return
	}

	payments, total, err := h.PaymentRepo.ListByCustomer(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.JSON(w, http.StatusOK, &models.PaymentHistory{
		Customer:  customer,
		Payments:  payments,
		TotalPaid: total,
	})
}

func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	payments, err := h.PaymentRepo.List(r.Context(), limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, payments)
}

// Receipt renders a payment receipt PDF.
func (h *PaymentHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid payment id")
		return
	}

	payment, err := h.Ledger.GetPayment(r.Context(), id)
	if err != nil {
		utils.Error(w, ledgerErrorStatus(err), err.Error())
		return
	}
	customer, err := h.CustomerRepo.GetByID(r.Context(), payment.CustomerID)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Customer not found")
		return
	}

	pdf, err := h.Reports.ReceiptPDF(payment, customer)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%s.pdf", payment.ReceiptNumber))
	w.Write(pdf)
}

func (h *PaymentHandler) audit(r *http.Request, userID int, action, targetType string, targetID int, description string) {
	entry := &models.AdminActionLog{
		AdminUserID: userID,
		ActionType:  action,
		TargetType:  targetType,
		TargetID:    &targetID,
		Description: description,
	}
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		entry.IPAddress = &ip
	}
	if err := h.AuditRepo.Create(r.Context(), entry); err != nil {
		log.Printf("[PaymentHandler] Failed to write audit log: %v", err)
	}
}
