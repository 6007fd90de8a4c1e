package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/earnhub/rewards-backend/database"
	"github.com/earnhub/rewards-backend/models"
	"github.com/earnhub/rewards-backend/notifications"
)

// RemindPendingWithdrawals nudges reviewers about requests that have been
// sitting pending for over an hour. Runs every 5 minutes; the 5-minute
// window means each request is flagged exactly once, when its age crosses
// the threshold.
func RemindPendingWithdrawals() {
	log.Println("Running job: RemindPendingWithdrawals...")

	now := time.Now()
	upperBound := now.Add(-60 * time.Minute)
	lowerBound := now.Add(-65 * time.Minute)

	var staleRequests []models.WithdrawalRequest
	err := database.DB.
		Preload("Account").
		Where("status = ? AND created_at BETWEEN ? AND ?", models.WithdrawalPending, lowerBound, upperBound).
		Find(&staleRequests).Error
	if err != nil {
		log.Printf("Error checking for stale withdrawal requests: %v", err)
		return
	}

	if len(staleRequests) == 0 {
		return
	}

	for _, request := range staleRequests {
		log.Printf("Sending reviewer reminder for withdrawal request ID: %d", request.ID)
		notifications.NotifyReviewers(fmt.Sprintf(
			"⏳ Withdrawal request #%d (%s from account %s) has been pending for over an hour.",
			request.ID, request.Amount, request.AccountID))
	}
}
