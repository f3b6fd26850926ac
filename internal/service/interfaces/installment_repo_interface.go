package interfaces

import (
	"context"
	"time"

	"payja-lending/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InstallmentRepositoryInterface interface {
	CreateSchedule(ctx context.Context, installments []models.Installment) error
	FindByLoan(ctx context.Context, loanID primitive.ObjectID) ([]models.Installment, error)
	FindByLoanAndNumber(ctx context.Context, loanID primitive.ObjectID, number int) (*models.Installment, error)
	FindDuePending(ctx context.Context, now time.Time, limit int64) ([]models.Installment, error)
	// MarkOverdue flips PENDING -> OVERDUE and reports whether this call did it.
	MarkOverdue(ctx context.Context, id primitive.ObjectID) (bool, error)
	// MarkPaid settles an unpaid installment and reports whether this call did it.
	MarkPaid(ctx context.Context, id primitive.ObjectID, paymentRef string, at time.Time) (bool, error)
	CountUnpaid(ctx context.Context, loanID primitive.ObjectID) (int64, error)
	CountOverdue(ctx context.Context, loanID primitive.ObjectID) (int64, error)
}
