package handlers

import (
	"net/http"

	"fare-backend/internal/services"
	"fare-backend/pkg/utils"
)

type ReportHandler struct {
	Reports *services.ReportService
	Archive *services.ArchiveService
}

func NewReportHandler(reports *services.ReportService, archive *services.ArchiveService) *ReportHandler {
	return &ReportHandler{Reports: reports, Archive: archive}
}

func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.Dashboard(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Reports.Summary(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, summary)
}

func (h *ReportHandler) MonthlyIncome(w http.ResponseWriter, r *http.Request) {
	income, err := h.Reports.MonthlyIncome(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, income)
}

func (h *ReportHandler) MonthlyReportPDF(w http.ResponseWriter, r *http.Request) {
	pdf, err := h.Reports.MonthlyReportPDF(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=monthly_report.pdf")
	w.Write(pdf)
}

// UnpaidCSV downloads the unpaid customer list as CSV.
func (h *ReportHandler) UnpaidCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Reports.UnpaidCSV(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=unpaid_customers.csv")
	w.Write(data)
}

// CustomersCSV downloads the full customer roster as CSV.
func (h *ReportHandler) CustomersCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Reports.CustomersCSV(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=customers.csv")
	w.Write(data)
}

// ArchivePayments uploads a payments export to the configured bucket.
func (h *ReportHandler) ArchivePayments(w http.ResponseWriter, r *http.Request) {
	if !h.Archive.Enabled() {
		utils.Error(w, http.StatusServiceUnavailable, "Archiving is not configured")
		return
	}
	key, err := h.Archive.ArchivePayments(r.Context())
	if err != nil {
		utils.Error(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.JSON(w, http.StatusOK, map[string]string{"archived": key})
}
