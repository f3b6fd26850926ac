package mongo

import (
	"context"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func requiredIndexes() []collectionIndexes {
	sessionRetention := int32(consts.SessionEndedRetentionDay * 24 * 3600)

	return []collectionIndexes{
		{
			collection: consts.TransactionsCollection,
			models: []mongo.IndexModel{{
				Keys: bson.D{
					{Key: "loanId", Value: 1},
					{Key: "type", Value: 1},
					{Key: "fromParty", Value: 1},
					{Key: "toParty", Value: 1},
				},
				Options: options.Index().SetUnique(true).SetName("uniq_loan_hop"),
			}, {
				Keys:    bson.D{{Key: "createdAt", Value: 1}},
				Options: options.Index().SetName("created_at"),
			}},
		},
		{
			collection: consts.LoansCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "sessionId", Value: 1}},
				Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_session"),
			}, {
				Keys:    bson.D{{Key: "reference", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_reference"),
			}, {
				Keys:    bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("customer_recent"),
			}},
		},
		{
			collection: consts.CustomersCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "phoneNumber", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_phone"),
			}},
		},
		{
			collection: consts.ScoringResultsCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "loanId", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_loan"),
			}},
		},
		{
			collection: consts.InstallmentsCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "loanId", Value: 1}, {Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_loan_number"),
			}, {
				Keys:    bson.D{{Key: "status", Value: 1}, {Key: "dueDate", Value: 1}},
				Options: options.Index().SetName("status_due"),
			}},
		},
		{
			collection: consts.SessionsCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "sessionId", Value: 1}},
				Options: options.Index().SetName("session_id"),
			}, {
				Keys: bson.D{
					{Key: "phoneNumber", Value: 1},
					{Key: "active", Value: 1},
					{Key: "startedAt", Value: -1},
				},
				Options: options.Index().SetName("phone_active_recent"),
			}, {
				Keys:    bson.D{{Key: "endedAt", Value: 1}},
				Options: options.Index().SetExpireAfterSeconds(sessionRetention).SetName("ended_ttl"),
			}},
		},
		{
			collection: consts.BankRecordsCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "bankCode", Value: 1}, {Key: "nuit", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_bank_nuit"),
			}, {
				Keys:    bson.D{{Key: "phoneNumber", Value: 1}},
				Options: options.Index().SetName("phone"),
			}},
		},
		{
			collection: consts.BankPartnersCollection,
			models: []mongo.IndexModel{{
				Keys:    bson.D{{Key: "code", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("uniq_code"),
			}},
		},
	}
}

// EnsureIndexes creates the indexes the ledger and session logic rely on.
// CreateMany is a no-op for indexes that already exist with the same spec.
func (m *MongoClient) EnsureIndexes(ctx context.Context) error {
	if m == nil || m.Database == nil {
		logger.Info("Skipping index setup: MongoDB is not connected")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, ci := range requiredIndexes() {
		names, err := m.Database.Collection(ci.collection).Indexes().CreateMany(ctx, ci.models)
		if err != nil {
			logger.CtxError(ctx, "Failed to create indexes", err, zap.String("collection", ci.collection))
			return err
		}
		logger.CtxDebug(ctx, "Indexes ensured", zap.String("collection", ci.collection), zap.Strings("indexes", names))
	}
	return nil
}
