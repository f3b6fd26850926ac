package sessions

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

type SessionRepository struct {
	repo interfaces.DocumentStore[models.Session]
}

func NewSessionRepository(client *mongodb.MongoClient) *SessionRepository {
	collection := client.Database.Collection(consts.SessionsCollection)
	return &SessionRepository{repo: repository.NewMongoRepository[models.Session](collection)}
}

func NewSessionRepositoryWithInterface(repo interfaces.DocumentStore[models.Session]) *SessionRepository {
	return &SessionRepository{repo: repo}
}

func (r *SessionRepository) FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})
	session, err := r.repo.FindOne(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, "Error finding session", err, zap.String("session_id", sessionID))
		}
		return nil, err
	}
	return &session, nil
}

// FindReacquirable returns the newest active session for the phone that is waiting
// on a code which has not yet expired.
func (r *SessionRepository) FindReacquirable(ctx context.Context, phoneNumber string, now time.Time) (*models.Session, error) {
	filter := bson.M{
		"phoneNumber":  phoneNumber,
		"active":       true,
		"step":         consts.StepOTPVerify,
		"otpExpiresAt": bson.M{"$gt": now},
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "startedAt", Value: -1}})

	session, err := r.repo.FindOne(ctx, filter, opts)
	if err != nil {
		if !errors.Is(err, mongo.ErrNoDocuments) {
			logger.CtxError(ctx, "Error finding re-acquirable session", err, zap.String("phone_number", phoneNumber))
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) (primitive.ObjectID, error) {
	res, err := r.repo.Create(ctx, session)
	if err != nil {
		logger.CtxError(ctx, "Error creating session", err, zap.String("session_id", session.SessionID))
		return primitive.NilObjectID, err
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	session.ID = id
	return id, nil
}

func (r *SessionRepository) Rebind(ctx context.Context, id primitive.ObjectID, sessionID string, now time.Time) error {
	_, err := r.repo.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"sessionId":      sessionID,
		"lastActivityAt": now,
	})
	if err != nil {
		logger.CtxError(ctx, "Error re-binding session", err, zap.String("session_id", sessionID))
	}
	return err
}

// DeactivateOthers closes every other active session of the phone number.
func (r *SessionRepository) DeactivateOthers(
	ctx context.Context,
	phoneNumber string,
	keep primitive.ObjectID,
	now time.Time,
) (int64, error) {
	filter := bson.M{
		"phoneNumber": phoneNumber,
		"active":      true,
		"_id":         bson.M{"$ne": keep},
	}
	update := bson.M{
		"$set":   bson.M{"active": false, "endedAt": now, "lastActivityAt": now},
		"$unset": bson.M{"otpHash": "", "otpExpiresAt": ""},
	}
	res, err := r.repo.Update(ctx, filter, update)
	if err != nil {
		logger.CtxError(ctx, "Error deactivating sessions", err, zap.String("phone_number", phoneNumber))
		return 0, err
	}
	return res.ModifiedCount, nil
}

// Save persists step, state, code fields and the active flag in a single write.
// A cleared code is removed from the document rather than left blank.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	set := bson.M{
		"sessionId":      session.SessionID,
		"step":           session.Step,
		"state":          session.State,
		"otpAttempts":    session.OTPAttempts,
		"active":         session.Active,
		"lastActivityAt": session.LastActivityAt,
	}
	unset := bson.M{}

	if session.OTPHash != "" {
		set["otpHash"] = session.OTPHash
		set["otpExpiresAt"] = session.OTPExpiresAt
	} else {
		unset["otpHash"] = ""
		unset["otpExpiresAt"] = ""
	}
	if session.State == nil {
		delete(set, "state")
		unset["state"] = ""
	}
	if session.EndedAt != nil {
		set["endedAt"] = session.EndedAt
	}
	if session.LastTurn != nil {
		set["lastTurn"] = session.LastTurn
	} else {
		unset["lastTurn"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	if _, err := r.repo.UpdateOneRaw(ctx, bson.M{"_id": session.ID}, update); err != nil {
		logger.CtxError(ctx, "Error saving session", err,
			zap.String("session_id", session.SessionID),
			zap.String("step", string(session.Step)),
		)
		return err
	}
	return nil
}
