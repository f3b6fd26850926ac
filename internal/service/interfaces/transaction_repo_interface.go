package interfaces

import (
	"context"
	"time"

	"payja-lending/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TransactionRepositoryInterface interface {
	FindByLoan(ctx context.Context, loanID primitive.ObjectID) ([]models.Transaction, error)
	// Insert appends a ledger entry. A duplicate hop yields an error matched by mongo.IsDuplicateKeyError.
	Insert(ctx context.Context, entry *models.Transaction) (primitive.ObjectID, error)
	MarkCompleted(ctx context.Context, id primitive.ObjectID, at time.Time) error
	MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) error
	FindCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error)
}
