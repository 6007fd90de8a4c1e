package services

import "errors"

// Service errors, one per user-distinguishable denial. Handlers map these to
// HTTP statuses and stable messages; none of them is a crash.
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidAmount        = errors.New("amount must be a positive value")
	ErrInsufficientFunds    = errors.New("insufficient balance")
	ErrInvalidPayoutTarget  = errors.New("invalid payout target format")
	ErrPayoutTargetMissing  = errors.New("no payout target bound to this account")
	ErrBelowMinimum         = errors.New("amount is below the minimum withdrawal")
	ErrDuplicateFingerprint = errors.New("this network identity is already verified with another account")
	ErrBonusAlreadyGranted  = errors.New("welcome bonus already granted")
	ErrCooldownActive       = errors.New("daily bonus already claimed")
	ErrRequestNotFound      = errors.New("withdrawal request not found")
	ErrAlreadyDecided       = errors.New("withdrawal request already processed")
	ErrNotApproved          = errors.New("withdrawal request has not been approved")
	ErrNotAuthorized        = errors.New("not authorized to decide withdrawal requests")
)
