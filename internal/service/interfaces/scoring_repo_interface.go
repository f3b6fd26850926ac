package interfaces

import (
	"context"

	"payja-lending/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ScoringResultRepositoryInterface interface {
	// CreateOnce stores the result unless one already exists for the loan, in which case
	// the stored result is returned.
	CreateOnce(ctx context.Context, result *models.ScoringResult) (*models.ScoringResult, error)
	FindByLoan(ctx context.Context, loanID primitive.ObjectID) (*models.ScoringResult, error)
}
