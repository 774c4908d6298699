package models

import "time"

// AdminActionLog records balance-affecting operations (payment recorded or
// reversed, billing rollover) and sensitive admin actions for the audit trail.
type AdminActionLog struct {
	ID          int       `json:"id"`
	AdminUserID int       `json:"admin_user_id"`
	ActionType  string    `json:"action_type"`
	TargetType  string    `json:"target_type"`
	TargetID    *int      `json:"target_id,omitempty"`
	Description string    `json:"description"`
	IPAddress   *string   `json:"ip_address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Action types recorded by the ledger and admin handlers
const (
	ActionPaymentRecorded = "payment_recorded"
	ActionPaymentReversed = "payment_reversed"
	ActionCycleRollover   = "cycle_rollover"
	ActionUserCreated     = "user_created"
	ActionUserDeleted     = "user_deleted"
	ActionCustomerDeleted = "customer_deleted"
)
