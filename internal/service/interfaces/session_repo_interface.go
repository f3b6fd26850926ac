package interfaces

import (
	"context"
	"time"

	"payja-lending/internal/pkg/store/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SessionRepositoryInterface interface {
	FindBySessionID(ctx context.Context, sessionID string) (*models.Session, error)
	FindReacquirable(ctx context.Context, phoneNumber string, now time.Time) (*models.Session, error)
	Create(ctx context.Context, session *models.Session) (primitive.ObjectID, error)
	Rebind(ctx context.Context, id primitive.ObjectID, sessionID string, now time.Time) error
	DeactivateOthers(ctx context.Context, phoneNumber string, keep primitive.ObjectID, now time.Time) (int64, error)
	Save(ctx context.Context, session *models.Session) error
}
