package models

// DashboardSummary is the landing-page overview: customers grouped by location
// plus this month's headline numbers
type DashboardSummary struct {
	Locations        []*DashboardLocation `json:"locations"`
	TotalCustomers   int                  `json:"total_customers"`
	CollectedMonth   float64              `json:"collected_this_month"`
	UnpaidCustomers  int                  `json:"unpaid_customers"`
}

// DashboardLocation is one location with its customers sorted by balance
type DashboardLocation struct {
	Location  *Location   `json:"location"`
	Customers []*Customer `json:"customers"`
}

// ReportSummary is the financial reports page payload
type ReportSummary struct {
	CollectedThisMonth float64         `json:"collected_this_month"`
	TotalOutstanding   float64         `json:"total_outstanding"`
	MonthlyIncome      []MonthlyIncome `json:"monthly_income"` // Last 12 months, oldest first
	UnpaidCustomers    []*Customer     `json:"unpaid_customers"`
}
