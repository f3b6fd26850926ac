package transactions

import (
	"context"
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

// TransactionRepository is the append-only settlement ledger. Entries are never
// deleted; status moves PENDING -> COMPLETED, or to FAILED and back to COMPLETED on retry.
type TransactionRepository struct {
	repo interfaces.DocumentStore[models.Transaction]
}

func NewTransactionRepository(client *mongodb.MongoClient) *TransactionRepository {
	collection := client.Database.Collection(consts.TransactionsCollection)
	return &TransactionRepository{repo: repository.NewMongoRepository[models.Transaction](collection)}
}

func NewTransactionRepositoryWithInterface(repo interfaces.DocumentStore[models.Transaction]) *TransactionRepository {
	return &TransactionRepository{repo: repo}
}

func (r *TransactionRepository) FindByLoan(ctx context.Context, loanID primitive.ObjectID) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sequence", Value: 1}})
	entries, err := r.repo.Find(ctx, bson.M{"loanId": loanID}, opts)
	if err != nil {
		logger.CtxError(ctx, "Error loading ledger entries", err, zap.String("loan_id", loanID.Hex()))
		return nil, err
	}
	return entries, nil
}

func (r *TransactionRepository) Insert(ctx context.Context, entry *models.Transaction) (primitive.ObjectID, error) {
	res, err := r.repo.Create(ctx, entry)
	if err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			logger.CtxError(ctx, "Error appending ledger entry", err,
				zap.String("loan_id", entry.LoanID.Hex()),
				zap.Int("sequence", entry.Sequence),
			)
		}
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	entry.ID = id
	return id, nil
}

func (r *TransactionRepository) MarkCompleted(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"status":      consts.TransactionCompleted,
			"processedAt": at,
			"completedAt": at,
		},
		"$unset": bson.M{"lastError": ""},
		"$inc":   bson.M{"attempts": 1},
	}
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$ne": consts.TransactionCompleted},
	}
	if _, err := r.repo.UpdateOneRaw(ctx, filter, update); err != nil {
		logger.CtxError(ctx, "Error completing ledger entry", err, zap.String("transaction_id", id.Hex()))
		return err
	}
	return nil
}

func (r *TransactionRepository) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string, at time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"status":      consts.TransactionFailed,
			"processedAt": at,
			"lastError":   reason,
		},
		"$inc": bson.M{"attempts": 1},
	}
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$ne": consts.TransactionCompleted},
	}
	if _, err := r.repo.UpdateOneRaw(ctx, filter, update); err != nil {
		logger.CtxError(ctx, "Error failing ledger entry", err, zap.String("transaction_id", id.Hex()))
		return err
	}
	return nil
}

// FindCreatedBetween returns entries created in [from, to), ordered for export.
func (r *TransactionRepository) FindCreatedBetween(ctx context.Context, from, to time.Time) ([]models.Transaction, error) {
	filter := bson.M{"createdAt": bson.M{"$gte": from, "$lt": to}}
	opts := options.Find().SetSort(bson.D{{Key: "loanId", Value: 1}, {Key: "sequence", Value: 1}})
	entries, err := r.repo.Find(ctx, filter, opts)
	if err != nil {
		logger.CtxError(ctx, "Error loading ledger window", err)
		return nil, err
	}
	return entries, nil
}
