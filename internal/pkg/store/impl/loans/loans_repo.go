package loans

import (
	"context"
	"errors"
	"time"

	"payja-lending/internal/pkg/consts"
	mongodb "payja-lending/internal/pkg/db/mongo"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/store/repository"
	"payja-lending/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var openStatuses = []consts.LoanStatus{
	consts.LoanStatusAnalyzing,
	consts.LoanStatusApproved,
	consts.LoanStatusDisbursed,
	consts.LoanStatusActive,
	consts.LoanStatusOverdue,
}

type LoanRepository struct {
	repo interfaces.DocumentStore[models.Loan]
}

func NewLoanRepository(client *mongodb.MongoClient) *LoanRepository {
	collection := client.Database.Collection(consts.LoansCollection)
	return &LoanRepository{repo: repository.NewMongoRepository[models.Loan](collection)}
}

func NewLoanRepositoryWithInterface(repo interfaces.DocumentStore[models.Loan]) *LoanRepository {
	return &LoanRepository{repo: repo}
}

func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) (primitive.ObjectID, error) {
	res, err := r.repo.Create(ctx, loan)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			logger.CtxError(ctx, "Error creating loan", err, zap.String("session_id", loan.SessionID))
		}
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	loan.ID = id
	return id, nil
}

func (r *LoanRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Loan, error) {
	return r.findOne(ctx, bson.M{"_id": id}, options.FindOne())
}

func (r *LoanRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Loan, error) {
	return r.findOne(ctx, bson.M{"sessionId": sessionID}, options.FindOne())
}

func (r *LoanRepository) FindLatestByCustomer(ctx context.Context, customerID primitive.ObjectID) (*models.Loan, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	return r.findOne(ctx, bson.M{"customerId": customerID}, opts)
}

func (r *LoanRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*models.Loan, error) {
	loan, err := r.repo.FindOne(ctx, filter, opts)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, "Error finding loan", err, zap.Any("filter", filter))
		}
		return nil, err
	}
	return &loan, nil
}

func (r *LoanRepository) HasOpenLoan(ctx context.Context, customerID primitive.ObjectID) (bool, error) {
	count, err := r.repo.CountDocuments(ctx, bson.M{
		"customerId": customerID,
		"status":     bson.M{"$in": openStatuses},
	})
	if err != nil {
		logger.CtxError(ctx, "Error counting open loans", err, zap.String("customer_id", customerID.Hex()))
		return false, err
	}
	return count > 0, nil
}

func (r *LoanRepository) TransitionStatus(
	ctx context.Context,
	id primitive.ObjectID,
	from, to consts.LoanStatus,
	extra bson.M,
) (bool, error) {
	set := bson.M{"status": to, "updatedAt": time.Now().UTC()}
	for k, v := range extra {
		set[k] = v
	}

	res, err := r.repo.UpdateOne(ctx, bson.M{"_id": id, "status": from}, set)
	if err != nil {
		logger.CtxError(ctx, "Error updating loan status", err,
			zap.String("loan_id", id.Hex()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
		return false, err
	}
	changed := res.ModifiedCount > 0
	if changed {
		logger.CtxInfo(ctx, "Loan status changed",
			zap.String("loan_id", id.Hex()),
			zap.String("from", string(from)),
			zap.String("to", string(to)),
		)
	}
	return changed, nil
}

func (r *LoanRepository) SetFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updatedAt"] = time.Now().UTC()
	if _, err := r.repo.UpdateOne(ctx, bson.M{"_id": id}, fields); err != nil {
		logger.CtxError(ctx, "Error updating loan", err, zap.String("loan_id", id.Hex()))
		return err
	}
	return nil
}
