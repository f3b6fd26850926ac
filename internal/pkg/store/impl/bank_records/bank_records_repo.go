package bankrecords

import (
	"context"
	"errors"
	"regexp"
	"strings"

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

// BankRecordRepository holds the bank-side KYC snapshot refreshed by employee sync.
type BankRecordRepository struct {
	repo interfaces.DocumentStore[models.BankRecord]
}

func NewBankRecordRepository(client *mongodb.MongoClient) *BankRecordRepository {
	collection := client.Database.Collection(consts.BankRecordsCollection)
	return &BankRecordRepository{repo: repository.NewMongoRepository[models.BankRecord](collection)}
}

func NewBankRecordRepositoryWithInterface(repo interfaces.DocumentStore[models.BankRecord]) *BankRecordRepository {
	return &BankRecordRepository{repo: repo}
}

var newestFirst = bson.D{{Key: "syncedAt", Value: -1}}

func (r *BankRecordRepository) FindByNUIT(ctx context.Context, nuit string) (*models.BankRecord, error) {
	return r.findOne(ctx, bson.M{"nuit": strings.TrimSpace(nuit)})
}

// FindByPhoneOrName is the fallback lookup when the tax id is unknown to every bank.
// The name comparison is exact but case-insensitive.
func (r *BankRecordRepository) FindByPhoneOrName(ctx context.Context, phoneNumber, name string) (*models.BankRecord, error) {
	or := bson.A{}
	if phoneNumber != "" {
		or = append(or, bson.M{"phoneNumber": phoneNumber})
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		or = append(or, bson.M{"name": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(trimmed) + "$",
			Options: "i",
		}})
	}
	if len(or) == 0 {
		return nil, mongo.ErrNoDocuments
	}
	return r.findOne(ctx, bson.M{"$or": or})
}

func (r *BankRecordRepository) findOne(ctx context.Context, filter bson.M) (*models.BankRecord, error) {
	record, err := r.repo.FindOne(ctx, filter, options.FindOne().SetSort(newestFirst))
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, "Error finding bank record", err)
		}
		return nil, err
	}
	return &record, nil
}

// UpsertMany replaces each record keyed by (bankCode, nuit) and returns how many were written.
func (r *BankRecordRepository) UpsertMany(ctx context.Context, records []models.BankRecord) (int, error) {
	written := 0
	for _, rec := range records {
		filter := bson.M{"bankCode": rec.BankCode, "nuit": rec.NUIT}
		update := bson.M{"$set": bson.M{
			"name":          rec.Name,
			"phoneNumber":   rec.PhoneNumber,
			"biNumber":      rec.BINumber,
			"employer":      rec.Employer,
			"salary":        rec.Salary,
			"approvedLimit": rec.ApprovedLimit,
			"creditScore":   rec.CreditScore,
			"activeDebt":    rec.ActiveDebt,
			"accountActive": rec.AccountActive,
			"syncedAt":      rec.SyncedAt,
		}}
		if _, err := r.repo.UpdateOneRaw(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
			logger.CtxError(ctx, "Error upserting bank record", err,
				zap.String("bank_code", rec.BankCode),
				zap.Int("written", written),
			)
			return written, err
		}
		written++
	}
	return written, nil
}
