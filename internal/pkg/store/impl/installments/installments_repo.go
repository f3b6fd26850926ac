package installments

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

type InstallmentRepository struct {
	repo interfaces.DocumentStore[models.Installment]
}

func NewInstallmentRepository(client *mongodb.MongoClient) *InstallmentRepository {
	collection := client.Database.Collection(consts.InstallmentsCollection)
	return &InstallmentRepository{repo: repository.NewMongoRepository[models.Installment](collection)}
}

func NewInstallmentRepositoryWithInterface(repo interfaces.DocumentStore[models.Installment]) *InstallmentRepository {
	return &InstallmentRepository{repo: repo}
}

// CreateSchedule inserts each installment. Numbers already present for the loan are skipped,
// so a retried activation does not duplicate the schedule.
func (r *InstallmentRepository) CreateSchedule(ctx context.Context, installments []models.Installment) error {
	for i := range installments {
		if _, err := r.repo.Create(ctx, &installments[i]); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				continue
			}
			logger.CtxError(ctx, "Error creating installment", err,
				zap.String("loan_id", installments[i].LoanID.Hex()),
				zap.Int("number", installments[i].Number),
			)
			return err
		}
	}
	return nil
}

func (r *InstallmentRepository) FindByLoan(ctx context.Context, loanID primitive.ObjectID) ([]models.Installment, error) {
	opts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	return r.repo.Find(ctx, bson.M{"loanId": loanID}, opts)
}

func (r *InstallmentRepository) FindByLoanAndNumber(
	ctx context.Context,
	loanID primitive.ObjectID,
	number int,
) (*models.Installment, error) {
	inst, err := r.repo.FindOne(ctx, bson.M{"loanId": loanID, "number": number}, options.FindOne())
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, "Error finding installment", err, zap.String("loan_id", loanID.Hex()))
		}
		return nil, err
	}
	return &inst, nil
}

func (r *InstallmentRepository) FindDuePending(ctx context.Context, now time.Time, limit int64) ([]models.Installment, error) {
	filter := bson.M{
		"status":  consts.InstallmentPending,
		"dueDate": bson.M{"$lt": now},
	}
	opts := options.Find().SetSort(bson.D{{Key: "dueDate", Value: 1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return r.repo.Find(ctx, filter, opts)
}

func (r *InstallmentRepository) MarkOverdue(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := r.repo.UpdateOne(ctx,
		bson.M{"_id": id, "status": consts.InstallmentPending},
		bson.M{"status": consts.InstallmentOverdue},
	)
	if err != nil {
		logger.CtxError(ctx, "Error marking installment overdue", err, zap.String("installment_id", id.Hex()))
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *InstallmentRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, paymentRef string, at time.Time) (bool, error) {
	filter := bson.M{
		"_id":    id,
		"status": bson.M{"$in": []consts.InstallmentStatus{consts.InstallmentPending, consts.InstallmentOverdue}},
	}
	res, err := r.repo.UpdateOne(ctx, filter, bson.M{
		"status":     consts.InstallmentPaid,
		"paidAt":     at,
		"paymentRef": paymentRef,
	})
	if err != nil {
		logger.CtxError(ctx, "Error marking installment paid", err, zap.String("installment_id", id.Hex()))
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

func (r *InstallmentRepository) CountUnpaid(ctx context.Context, loanID primitive.ObjectID) (int64, error) {
	return r.repo.CountDocuments(ctx, bson.M{
		"loanId": loanID,
		"status": bson.M{"$ne": consts.InstallmentPaid},
	})
}

func (r *InstallmentRepository) CountOverdue(ctx context.Context, loanID primitive.ObjectID) (int64, error) {
	return r.repo.CountDocuments(ctx, bson.M{
		"loanId": loanID,
		"status": consts.InstallmentOverdue,
	})
}
