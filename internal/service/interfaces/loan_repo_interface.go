package interfaces

import (
	"context"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LoanRepositoryInterface interface {
	Create(ctx context.Context, loan *models.Loan) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Loan, error)
	FindBySessionID(ctx context.Context, sessionID string) (*models.Loan, error)
	FindLatestByCustomer(ctx context.Context, customerID primitive.ObjectID) (*models.Loan, error)
	HasOpenLoan(ctx context.Context, customerID primitive.ObjectID) (bool, error)
	// TransitionStatus moves the loan from -> to only if it is still in from.
	// extra is merged into the same $set. Reports whether a document changed.
	TransitionStatus(
		ctx context.Context,
		id primitive.ObjectID,
		from, to consts.LoanStatus,
		extra bson.M,
	) (bool, error)
	SetFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}
