package customers

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

type CustomerRepository struct {
	repo interfaces.DocumentStore[models.Customer]
}

func NewCustomerRepository(client *mongodb.MongoClient) *CustomerRepository {
	collection := client.Database.Collection(consts.CustomersCollection)
	return &CustomerRepository{repo: repository.NewMongoRepository[models.Customer](collection)}
}

func NewCustomerRepositoryWithInterface(repo interfaces.DocumentStore[models.Customer]) *CustomerRepository {
	return &CustomerRepository{repo: repo}
}

func (r *CustomerRepository) FindByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error) {
	customer, err := r.repo.FindOne(ctx, bson.M{"phoneNumber": phoneNumber}, options.FindOne())
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, "Error finding customer", err, zap.String("phone_number", phoneNumber))
		}
		return nil, err
	}
	return &customer, nil
}

// Upsert writes the customer keyed by phone number. Last write wins on every field
// except createdAt, which is only set on insert.
func (r *CustomerRepository) Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	set := bson.M{
		"name":        customer.Name,
		"nuit":        customer.NUIT,
		"biNumber":    customer.BINumber,
		"institution": customer.Institution,
		"verified":    customer.Verified,
		"creditLimit": customer.CreditLimit,
		"matchScore":  customer.MatchScore,
		"bankCode":    customer.BankCode,
		"employer":    customer.Employer,
		"salary":      customer.Salary,
		"channel":     customer.Channel,
		"updatedAt":   customer.UpdatedAt,
	}
	if customer.VerifiedAt != nil {
		set["verifiedAt"] = customer.VerifiedAt
	}
	update := bson.M{
		"$set":         set,
		"$setOnInsert": bson.M{"phoneNumber": customer.PhoneNumber, "createdAt": customer.CreatedAt},
	}

	filter := bson.M{"phoneNumber": customer.PhoneNumber}
	res, err := r.repo.UpdateOneRaw(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		logger.CtxError(ctx, "Error upserting customer", err, zap.String("phone_number", customer.PhoneNumber))
		return nil, err
	}
	if res != nil && res.UpsertedID != nil {
		logger.CtxInfo(ctx, "Customer created", zap.String("phone_number", customer.PhoneNumber))
	}

	stored, err := r.repo.FindOne(ctx, filter, options.FindOne())
	if err != nil {
		return nil, err
	}
	return &stored, nil
}
