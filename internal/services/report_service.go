package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"fare-backend/internal/cache"
	"fare-backend/internal/models"
	"fare-backend/internal/repositories"
	"fare-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

type ReportService struct {
	customerRepo *repositories.CustomerRepository
	locationRepo *repositories.LocationRepository
	paymentRepo  *repositories.PaymentRepository
}

func NewReportService(customerRepo *repositories.CustomerRepository, locationRepo *repositories.LocationRepository, paymentRepo *repositories.PaymentRepository) *ReportService {
	return &ReportService{
		customerRepo: customerRepo,
		locationRepo: locationRepo,
		paymentRepo:  paymentRepo,
	}
}

// Dashboard builds the landing-page overview: every location with its
// customers sorted by balance, plus this month's headline numbers.
func (s *ReportService) Dashboard(ctx context.Context) (*models.DashboardSummary, error) {
	if data, ok := cache.GetCached(ctx, cache.DashboardSummaryKey); ok {
		summary := &models.DashboardSummary{}
		if err := json.Unmarshal(data, summary); err == nil {
			return summary, nil
		}
	}

	locations, err := s.locationRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.DashboardSummary{Locations: []*models.DashboardLocation{}}
	for _, loc := range locations {
		page, err := s.customerRepo.List(ctx, 1, 100, "", loc.ID)
		if err != nil {
			return nil, err
		}
		customers := page.Customers
		sort.Slice(customers, func(i, j int) bool {
			return customers[i].Balance > customers[j].Balance
		})
		summary.Locations = append(summary.Locations, &models.DashboardLocation{
			Location:  loc,
			Customers: customers,
		})
		summary.TotalCustomers += len(customers)
		for _, c := range customers {
			if c.Balance > 0 {
				summary.UnpaidCustomers++
			}
		}
	}

	monthStart := timeutil.StartOfMonth(timeutil.Now())
	collected, err := s.paymentRepo.CollectedSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}
	summary.CollectedMonth = collected

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cache.DashboardSummaryKey, data, 2*time.Minute)
	}
	return summary, nil
}

// Summary builds the financial reports page payload.
func (s *ReportService) Summary(ctx context.Context) (*models.ReportSummary, error) {
	if data, ok := cache.GetCached(ctx, cache.ReportSummaryKey); ok {
		summary := &models.ReportSummary{}
		if err := json.Unmarshal(data, summary); err == nil {
			return summary, nil
		}
	}

	now := timeutil.Now()
	collected, err := s.paymentRepo.CollectedSince(ctx, timeutil.StartOfMonth(now))
	if err != nil {
		return nil, err
	}
	outstanding, err := s.paymentRepo.TotalOutstanding(ctx)
	if err != nil {
		return nil, err
	}
	income, err := s.paymentRepo.MonthlyIncome(ctx, now)
	if err != nil {
		return nil, err
	}
	unpaid, err := s.customerRepo.ListUnpaid(ctx, 0)
	if err != nil {
		return nil, err
	}

	monthly := make([]models.MonthlyIncome, len(income))
	for i, m := range income {
		monthly[i] = *m
	}

	summary := &models.ReportSummary{
		CollectedThisMonth: collected,
		TotalOutstanding:   outstanding,
		MonthlyIncome:      monthly,
		UnpaidCustomers:    unpaid,
	}

	if data, err := json.Marshal(summary); err == nil {
		cache.SetCached(ctx, cache.ReportSummaryKey, data, 5*time.Minute)
	}
	return summary, nil
}

func (s *ReportService) MonthlyIncome(ctx context.Context) ([]*models.MonthlyIncome, error) {
	if data, ok := cache.GetCached(ctx, cache.MonthlyIncomeKey); ok {
		var income []*models.MonthlyIncome
		if err := json.Unmarshal(data, &income); err == nil {
			return income, nil
		}
	}

	income, err := s.paymentRepo.MonthlyIncome(ctx, timeutil.Now())
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(income); err == nil {
		cache.SetCached(ctx, cache.MonthlyIncomeKey, data, 5*time.Minute)
	}
	return income, nil
}

// UnpaidCSV renders the unpaid customer list as a downloadable CSV.
func (s *ReportService) UnpaidCSV(ctx context.Context) ([]byte, error) {
	customers, err := s.customerRepo.ListUnpaid(ctx, 0)
	if err != nil {
		return nil, err
	}
	return BuildUnpaidCSV(customers)
}

// CustomersCSV renders the full customer roster as a downloadable CSV.
func (s *ReportService) CustomersCSV(ctx context.Context) ([]byte, error) {
	customers, err := s.customerRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCustomersCSV(customers)
}

// BuildUnpaidCSV renders the unpaid customers list as CSV for download.
func BuildUnpaidCSV(customers []*models.Customer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Phone", "Location", "Fixed Fare", "Balance Due"}); err != nil {
		return nil, err
	}
	for _, c := range customers {
		record := []string{
			c.Name,
			c.Phone,
			c.LocationName,
			fmt.Sprintf("%.2f", c.FixedFare),
			fmt.Sprintf("%.2f", c.Balance),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildCustomersCSV renders the complete customer roster as CSV, paid and
// unpaid alike.
func BuildCustomersCSV(customers []*models.Customer) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Name", "Phone", "Location", "Fixed Fare", "Balance"}); err != nil {
		return nil, err
	}
	for _, c := range customers {
		record := []string{
			c.Name,
			c.Phone,
			c.LocationName,
			fmt.Sprintf("%.2f", c.FixedFare),
			fmt.Sprintf("%.2f", c.Balance),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPaymentsCSV renders a payment listing as CSV for download or archival.
func BuildPaymentsCSV(payments []*models.Payment) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"Receipt", "Customer", "Amount", "Recorded By", "Paid At", "Notes"}); err != nil {
		return nil, err
	}
	for _, p := range payments {
		record := []string{
			p.ReceiptNumber,
			p.CustomerName,
			fmt.Sprintf("%.2f", p.Amount),
			p.RecordedByName,
			timeutil.FormatIST(p.PaidAt, timeutil.DateTimeLayout),
			p.Notes,
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReceiptPDF renders a printable receipt for a single payment.
func (s *ReportService) ReceiptPDF(payment *models.Payment, customer *models.Customer) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Fare Payment Receipt", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.FormatIST(timeutil.Now(), "02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Receipt Details", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Receipt No: %s", payment.ReceiptNumber), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Date: %s", timeutil.FormatIST(payment.PaidAt, "02-Jan-2006")), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Customer: %s", customer.Name), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Phone: %s", customer.Phone), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(190, 7, fmt.Sprintf("Location: %s", customer.LocationName), "LRB", 1, "L", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Payment", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Amount Paid: Rs. %.2f", payment.Amount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Balance Due: Rs. %.2f", customer.Balance), "1", 1, "C", false, 0, "")
	if payment.Notes != "" {
		pdf.CellFormat(190, 7, fmt.Sprintf("Notes: %s", payment.Notes), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

// MonthlyReportPDF renders the income chart data and unpaid listing as a
// printable monthly report.
func (s *ReportService) MonthlyReportPDF(ctx context.Context) ([]byte, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	now := timeutil.Now()
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Fare Collection - Monthly Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Period: %s to %s",
		timeutil.FormatIST(timeutil.StartOfMonth(now), "02-Jan-2006"),
		timeutil.FormatIST(timeutil.EndOfMonth(now), "02-Jan-2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.FormatIST(now, "02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Summary", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 8, fmt.Sprintf("Collected This Month: Rs. %.2f", summary.CollectedThisMonth), "1", 0, "C", false, 0, "")
	pdf.CellFormat(95, 8, fmt.Sprintf("Total Outstanding: Rs. %.2f", summary.TotalOutstanding), "1", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Income - Last 12 Months", "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(95, 7, "Month", "1", 0, "C", true, 0, "")
	pdf.CellFormat(95, 7, "Collected", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, m := range summary.MonthlyIncome {
		pdf.CellFormat(95, 6, fmt.Sprintf("%s %d", time.Month(m.Month).String(), m.Year), "1", 0, "C", false, 0, "")
		pdf.CellFormat(95, 6, fmt.Sprintf("Rs. %.2f", m.Total), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(5)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, fmt.Sprintf("Unpaid Customers (%d)", len(summary.UnpaidCustomers)), "1", 1, "L", true, 0, "")
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(70, 7, "Name", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Phone", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Location", "1", 0, "C", true, 0, "")
	pdf.CellFormat(40, 7, "Balance Due", "1", 1, "C", true, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, c := range summary.UnpaidCustomers {
		pdf.CellFormat(70, 6, c.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, c.Phone, "1", 0, "C", false, 0, "")
		pdf.CellFormat(40, 6, c.LocationName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("Rs. %.2f", c.Balance), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return buf.Bytes(), nil
}
