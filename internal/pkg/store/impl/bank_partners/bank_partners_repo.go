package bankpartners

import (
	"context"
	"errors"

	"payja-lending/internal/pkg/consts"
	mongodb "payja-lending/internal/pkg/db/mongo"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/store/repository"
	"payja-lending/internal/service/interfaces"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type BankPartnerRepository struct {
	repo interfaces.DocumentStore[models.BankPartner]
}

func NewBankPartnerRepository(client *mongodb.MongoClient) *BankPartnerRepository {
	collection := client.Database.Collection(consts.BankPartnersCollection)
	return &BankPartnerRepository{repo: repository.NewMongoRepository[models.BankPartner](collection)}
}

func NewBankPartnerRepositoryWithInterface(repo interfaces.DocumentStore[models.BankPartner]) *BankPartnerRepository {
	return &BankPartnerRepository{repo: repo}
}

func (r *BankPartnerRepository) FindByCode(ctx context.Context, code string) (*models.BankPartner, error) {
	partner, err := r.repo.FindOne(ctx, bson.M{"code": code}, options.FindOne())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consts.ErrorUnknownBank
		}
		logger.CtxError(ctx, "Error finding bank partner", err, zap.String("bank_code", code))
		return nil, err
	}
	return &partner, nil
}

func (r *BankPartnerRepository) FindActive(ctx context.Context) ([]models.BankPartner, error) {
	opts := options.Find().SetSort(bson.D{{Key: "code", Value: 1}})
	partners, err := r.repo.Find(ctx, bson.M{"active": true}, opts)
	if err != nil {
		logger.CtxError(ctx, "Error listing bank partners", err)
		return nil, err
	}
	return partners, nil
}
