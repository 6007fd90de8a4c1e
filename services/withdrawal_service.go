package services

import (
	"errors"

	config "github.com/earnhub/rewards-backend/configs"
	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RequestWithdrawal escrows the amount and records the pending request in a
// single transaction: the debit and the request row commit together or not
// at all. The payout target is snapshotted onto the request so a later
// rebind cannot redirect a pending payout.
func RequestWithdrawal(accountID string, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount.LessThan(config.Settings.MinimumWithdrawal) {
		return nil, ErrBelowMinimum
	}

	unlock := lockAccount(accountID)
	defer unlock()

	var request models.WithdrawalRequest
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		account, err := loadAccountTx(tx, accountID)
		if err != nil {
			return err
		}
		if account.PayoutTarget == nil || *account.PayoutTarget == "" {
			return ErrPayoutTargetMissing
		}
		if account.Balance.LessThan(amount) {
			return ErrInsufficientFunds
		}

		account.Balance = account.Balance.Sub(amount)
		if err := tx.Save(account).Error; err != nil {
			return err
		}

		request = models.WithdrawalRequest{
			AccountID:    accountID,
			Amount:       amount,
			PayoutTarget: *account.PayoutTarget,
			Status:       models.WithdrawalPending,
		}
		return tx.Create(&request).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// DecideWithdrawal applies a reviewer's approve/reject decision to a pending
// request. Rejection credits the escrowed amount back in the same
// transaction as the status change; approval leaves the funds debited (they
// are disbursed externally) and lands on approved or completed depending on
// the configured approval policy. A request that is no longer pending is
// refused with ErrAlreadyDecided, so a double-tap or a second reviewer can
// never double-process.
func DecideWithdrawal(requestID uint, approve bool, reviewer *models.Reviewer, notes string) (*models.WithdrawalRequest, error) {
	if reviewer == nil || !reviewer.IsActive {
		return nil, ErrNotAuthorized
	}

	request, err := GetWithdrawal(requestID)
	if err != nil {
		return nil, err
	}

	target := models.WithdrawalRejected
	if approve {
		target = models.WithdrawalCompleted
		if config.Settings.ApprovalPolicy == config.PolicyTwoStep {
			target = models.WithdrawalApproved
		}
	}

	unlock := lockAccount(request.AccountID)
	defer unlock()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(request, "id = ?", requestID).Error; err != nil {
			return err
		}
		if request.Status != models.WithdrawalPending {
			return ErrAlreadyDecided
		}
		if !models.CanTransition(request.Status, target) {
			return ErrAlreadyDecided
		}

		if target == models.WithdrawalRejected {
			account, err := loadAccountTx(tx, request.AccountID)
			if err != nil {
				return err
			}
			account.Balance = account.Balance.Add(request.Amount)
			if err := tx.Save(account).Error; err != nil {
				return err
			}
		}

		now := Now().UTC()
		reviewerID := reviewer.ID.String()
		request.Status = target
		request.DecidedBy = &reviewerID
		request.DecidedAt = &now
		if notes != "" {
			request.ReviewerNotes = &notes
		}
		return tx.Save(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// ConfirmSettlement moves an approved request to completed under the
// two-step policy, once the external payout has actually been executed.
func ConfirmSettlement(requestID uint, reviewer *models.Reviewer) (*models.WithdrawalRequest, error) {
	if reviewer == nil || !reviewer.IsActive {
		return nil, ErrNotAuthorized
	}

	request, err := GetWithdrawal(requestID)
	if err != nil {
		return nil, err
	}

	unlock := lockAccount(request.AccountID)
	defer unlock()

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(request, "id = ?", requestID).Error; err != nil {
			return err
		}
		if request.Status.IsTerminal() {
			return ErrAlreadyDecided
		}
		if !models.CanTransition(request.Status, models.WithdrawalCompleted) || request.Status == models.WithdrawalPending {
			return ErrNotApproved
		}

		now := Now().UTC()
		request.Status = models.WithdrawalCompleted
		request.DecidedAt = &now
		return tx.Save(request).Error
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

func GetWithdrawal(requestID uint) (*models.WithdrawalRequest, error) {
	var request models.WithdrawalRequest
	if err := database.DB.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	return &request, nil
}
