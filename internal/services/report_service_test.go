package services

import (
	"strings"
	"testing"
	"time"

	"fare-backend/internal/models"
)

func TestBuildUnpaidCSV(t *testing.T) {
	customers := []*models.Customer{
		{Name: "Ramesh Kumar", Phone: "9876543210", LocationName: "Sector 12", FixedFare: 500, Balance: 1200},
		{Name: "Sita, Devi", Phone: "9123456780", LocationName: "Old Market", FixedFare: 750, Balance: 750},
	}

	data, err := BuildUnpaidCSV(customers)
	if err != nil {
		t.Fatalf("BuildUnpaidCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "Name,Phone,Location,Fixed Fare,Balance Due" {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "1200.00") {
		t.Fatalf("row 1 missing balance: %q", lines[1])
	}
	// Commas inside fields must be quoted, not split.
	if !strings.Contains(lines[2], `"Sita, Devi"`) {
		t.Fatalf("row 2 not properly quoted: %q", lines[2])
	}
}

func TestBuildCustomersCSV(t *testing.T) {
	customers := []*models.Customer{
		{Name: "Ramesh Kumar", Phone: "9876543210", LocationName: "Sector 12", FixedFare: 500, Balance: 0},
		{Name: "Mohan Lal", Phone: "9123456780", LocationName: "Old Market", FixedFare: 750, Balance: -250},
	}

	data, err := BuildCustomersCSV(customers)
	if err != nil {
		t.Fatalf("BuildCustomersCSV: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3 (header + 2 rows)", len(lines))
	}
	if lines[0] != "Name,Phone,Location,Fixed Fare,Balance" {
		t.Fatalf("header = %q", lines[0])
	}
	// The full roster export includes settled and credit balances too.
	if !strings.Contains(lines[1], "0.00") {
		t.Fatalf("row 1 missing zero balance: %q", lines[1])
	}
	if !strings.Contains(lines[2], "-250.00") {
		t.Fatalf("row 2 missing credit balance: %q", lines[2])
	}
}

func TestBuildPaymentsCSV(t *testing.T) {
	paidAt := time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC)
	payments := []*models.Payment{
		{ReceiptNumber: "RCP-000042", CustomerName: "Ramesh Kumar", Amount: 500, RecordedByName: "Admin", PaidAt: paidAt, Notes: "cash"},
	}

	data, err := BuildPaymentsCSV(payments)
	if err != nil {
		t.Fatalf("BuildPaymentsCSV: %v", err)
	}

	out := string(data)
	if !strings.HasPrefix(out, "Receipt,Customer,Amount,Recorded By,Paid At,Notes") {
		t.Fatalf("unexpected header: %q", out)
	}
	if !strings.Contains(out, "RCP-000042") || !strings.Contains(out, "500.00") {
		t.Fatalf("missing payment row: %q", out)
	}
}

func TestBuildPaymentsCSVEmpty(t *testing.T) {
	data, err := BuildPaymentsCSV(nil)
	if err != nil {
		t.Fatalf("BuildPaymentsCSV: %v", err)
	}
	if strings.TrimSpace(string(data)) != "Receipt,Customer,Amount,Recorded By,Paid At,Notes" {
		t.Fatalf("want header only, got %q", string(data))
	}
}
