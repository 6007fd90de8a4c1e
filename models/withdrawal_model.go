package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending   WithdrawalStatus = "pending"
	WithdrawalApproved  WithdrawalStatus = "approved"
	WithdrawalRejected  WithdrawalStatus = "rejected"
	WithdrawalCompleted WithdrawalStatus = "completed"
)

// CanTransition is the single source of truth for the withdrawal lifecycle.
// pending -> completed is the direct-settle shape, pending -> approved ->
// completed the two-step shape; rejected and completed are terminal.
func CanTransition(from, to WithdrawalStatus) bool {
	switch from {
	case WithdrawalPending:
		return to == WithdrawalApproved || to == WithdrawalRejected || to == WithdrawalCompleted
	case WithdrawalApproved:
		return to == WithdrawalCompleted
	default:
		return false
	}
}

// IsTerminal reports whether no further decision may touch the request.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalRejected || s == WithdrawalCompleted
}

// WithdrawalRequest records one payout attempt. Amount and PayoutTarget are
// snapshots fixed at creation; rebinding the account's target later must not
// change where a pending request pays out.
type WithdrawalRequest struct {
	ID           uint             `gorm:"primaryKey" json:"id"`
	AccountID    string           `gorm:"size:64;index;not null" json:"account_id"`
	Amount       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	PayoutTarget string           `gorm:"size:255;not null" json:"payout_target"`
	Status       WithdrawalStatus `gorm:"size:20;index;not null;default:'pending'" json:"status"`

	ReviewerNotes *string    `gorm:"type:text" json:"reviewer_notes,omitempty"`
	DecidedBy     *string    `gorm:"size:64" json:"decided_by,omitempty"`
	DecidedAt     *time.Time `json:"decided_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Account Account `gorm:"foreignKey:AccountID" json:"account,omitempty"`
}
