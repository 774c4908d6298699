package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"fare-backend/internal/cache"
	"fare-backend/internal/ledger"
	"fare-backend/internal/middleware"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/services"
	"fare-backend/pkg/utils"
)

type BillingHandler struct {
	Ledger    *ledger.Service
	AuditRepo *repositories.AdminActionLogRepository
	Archive   *services.ArchiveService
}

func NewBillingHandler(ledgerSvc *ledger.Service, auditRepo *repositories.AdminActionLogRepository, archive *services.ArchiveService) *BillingHandler {
	return &BillingHandler{
		Ledger:    ledgerSvc,
		AuditRepo: auditRepo,
		Archive:   archive,
	}
}

// Rollover starts a new billing cycle for every customer. Admin only; the
// router enforces the role.
func (h *BillingHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	var req models.RolloverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Snapshot who owed what before balances move, when archiving is on.
	if h.Archive.Enabled() {
		if key, err := h.Archive.ArchiveUnpaid(r.Context()); err != nil {
			log.Printf("[BillingHandler] Pre-rollover archive failed: %v", err)
		} else {
			log.Printf("[BillingHandler] Pre-rollover snapshot archived as %s", key)
		}
	}

	count, err := h.Ledger.RolloverBillingCycle(r.Context(), req.Strategy)
	if err != nil {
		utils.Error(w, ledgerErrorStatus(err), err.Error())
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	entry := &models.AdminActionLog{
		AdminUserID: userID,
		ActionType:  models.ActionCycleRollover,
		TargetType:  "billing_cycle",
		Description: fmt.Sprintf("New billing cycle (%s): %d customers rebalanced", req.Strategy, count),
	}
	if err := h.AuditRepo.Create(r.Context(), entry); err != nil {
		log.Printf("[BillingHandler] Failed to write audit log: %v", err)
	}
	cache.InvalidateLedgerCaches(r.Context())

	utils.JSON(w, http.StatusOK, &models.RolloverResponse{
		Strategy:         req.Strategy,
		CustomersUpdated: count,
	})
}
