package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"

	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/services"
	"fare-backend/pkg/utils"
)

type OnlinePaymentHandler struct {
	Razorpay *services.RazorpayService
	TxRepo   *repositories.OnlineTransactionRepository
}

func NewOnlinePaymentHandler(razorpaySvc *services.RazorpayService, txRepo *repositories.OnlineTransactionRepository) *OnlinePaymentHandler {
	return &OnlinePaymentHandler{Razorpay: razorpaySvc, TxRepo: txRepo}
}

func (h *OnlinePaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateOnlinePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Razorpay.CreateOrder(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, resp)
}

func (h *OnlinePaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.Razorpay.VerifyPayment(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, tx)
}

// Webhook handles Razorpay event delivery. Always returns 200 for verified
// events so Razorpay does not retry endlessly on downstream hiccups we log.
func (h *OnlinePaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Failed to read body")
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if err := h.Razorpay.ProcessWebhook(r.Context(), body, signature); err != nil {
		log.Printf("[OnlinePayment] Webhook processing failed: %v", err)
		utils.Error(w, http.StatusBadRequest, "Webhook rejected")
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *OnlinePaymentHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 500 {
		limit = 50
	}

	txs, err := h.TxRepo.List(r.Context(), limit)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, txs)
}
