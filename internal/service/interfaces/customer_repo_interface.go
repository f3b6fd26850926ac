package interfaces

import (
	"context"

	"payja-lending/internal/pkg/store/models"
)

type CustomerRepositoryInterface interface {
	FindByPhone(ctx context.Context, phoneNumber string) (*models.Customer, error)
	Upsert(ctx context.Context, customer *models.Customer) (*models.Customer, error)
}
