package handlers

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"fare-backend/internal/middleware"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/services"
	"fare-backend/pkg/utils"

	"github.com/gorilla/mux"
)

type CustomerHandler struct {
	Service   *services.CustomerService
	AuditRepo *repositories.AdminActionLogRepository
}

func NewCustomerHandler(s *services.CustomerService, auditRepo *repositories.AdminActionLogRepository) *CustomerHandler {
	return &CustomerHandler{Service: s, AuditRepo: auditRepo}
}

func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer, err := h.Service.Create(r.Context(), &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusCreated, customer)
}

func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	customer, err := h.Service.Get(r.Context(), id)
	if err != nil {
		utils.Error(w, http.StatusNotFound, "Customer not found")
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	locationID, _ := strconv.Atoi(q.Get("location_id"))

	result, err := h.Service.List(r.Context(), page, limit, q.Get("search"), locationID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, result)
}

func (h *CustomerHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	var req models.UpdateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	customer, err := h.Service.Update(r.Context(), id, &req)
	if err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, customer)
}

func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		utils.Error(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		utils.Error(w, http.StatusNotFound, err.Error())
		return
	}

	userID, _ := middleware.GetUserIDFromContext(r.Context())
	entry := &models.AdminActionLog{
		AdminUserID: userID,
		ActionType:  models.ActionCustomerDeleted,
		TargetType:  "customer",
		TargetID:    &id,
		Description: fmt.Sprintf("Deleted customer %d", id),
	}
	if err := h.AuditRepo.Create(r.Context(), entry); err != nil {
		log.Printf("[CustomerHandler] Failed to write audit log: %v", err)
	}

	utils.JSON(w, http.StatusOK, map[string]string{"message": "Customer deleted"})
}

// UnpaidCustomers lists customers still owing money, optionally as CSV.
func (h *CustomerHandler) UnpaidCustomers(w http.ResponseWriter, r *http.Request) {
	locationID, _ := strconv.Atoi(r.URL.Query().Get("location_id"))

	customers, err := h.Service.ListUnpaid(r.Context(), locationID)
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		data, err := services.BuildUnpaidCSV(customers)
		if err != nil {
			utils.Error(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", "attachment; filename=unpaid_customers.csv")
		w.Write(data)
		return
	}

	utils.JSON(w, http.StatusOK, customers)
}
