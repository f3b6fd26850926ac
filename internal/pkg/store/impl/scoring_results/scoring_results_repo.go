package scoringresults

import (
	"context"

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

type ScoringResultRepository struct {
	repo interfaces.DocumentStore[models.ScoringResult]
}

func NewScoringResultRepository(client *mongodb.MongoClient) *ScoringResultRepository {
	collection := client.Database.Collection(consts.ScoringResultsCollection)
	return &ScoringResultRepository{repo: repository.NewMongoRepository[models.ScoringResult](collection)}
}

func NewScoringResultRepositoryWithInterface(repo interfaces.DocumentStore[models.ScoringResult]) *ScoringResultRepository {
	return &ScoringResultRepository{repo: repo}
}

func (r *ScoringResultRepository) CreateOnce(ctx context.Context, result *models.ScoringResult) (*models.ScoringResult, error) {
	res, err := r.repo.Create(ctx, result)
	if err == nil {
		result.ID, _ = res.InsertedID.(primitive.ObjectID)
		return result, nil
	}
	if mongo.IsDuplicateKeyError(err) {
		logger.CtxWarn(ctx, "Scoring result already recorded", zap.String("loan_id", result.LoanID.Hex()))
		return r.FindByLoan(ctx, result.LoanID)
	}
	logger.CtxError(ctx, "Error saving scoring result", err, zap.String("loan_id", result.LoanID.Hex()))
	return nil, err
}

func (r *ScoringResultRepository) FindByLoan(ctx context.Context, loanID primitive.ObjectID) (*models.ScoringResult, error) {
	result, err := r.repo.FindOne(ctx, bson.M{"loanId": loanID}, options.FindOne())
	if err != nil {
		return nil, err
	}
	return &result, nil
}
