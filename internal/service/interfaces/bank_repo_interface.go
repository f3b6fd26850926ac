package interfaces

import (
	"context"

	"payja-lending/internal/pkg/store/models"
)

type BankPartnerRepositoryInterface interface {
	FindByCode(ctx context.Context, code string) (*models.BankPartner, error)
	FindActive(ctx context.Context) ([]models.BankPartner, error)
}

type BankRecordRepositoryInterface interface {
	FindByNUIT(ctx context.Context, nuit string) (*models.BankRecord, error)
	FindByPhoneOrName(ctx context.Context, phoneNumber, name string) (*models.BankRecord, error)
	UpsertMany(ctx context.Context, records []models.BankRecord) (int, error)
}
