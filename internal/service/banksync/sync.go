package banksync

import (
	"context"
	"strings"
	"time"

	"payja-lending/internal/pkg/downstream/bank"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/utils"
	"payja-lending/internal/service/interfaces"

	"go.uber.org/zap"
)

type Result struct {
	BankCode string `json:"bankCode"`
	Received int    `json:"received"`
	Upserted int    `json:"upserted"`
	Skipped  int    `json:"skipped"`
}

// SyncService refreshes the bank-side KYC records the cross-validator reads.
type SyncService struct {
	banks    bank.Resolver
	partners interfaces.BankPartnerRepositoryInterface
	records  interfaces.BankRecordRepositoryInterface
	now      func() time.Time
}

func NewSyncService(
	banks bank.Resolver,
	partners interfaces.BankPartnerRepositoryInterface,
	records interfaces.BankRecordRepositoryInterface,
) *SyncService {
	return &SyncService{banks: banks, partners: partners, records: records, now: time.Now}
}

// SyncBank pulls the bank's employee roster and upserts it by (bank, NUIT).
// Rows without a valid NUIT cannot be matched later and are skipped.
func (s *SyncService) SyncBank(ctx context.Context, bankCode string) (*Result, error) {
	bankCode = strings.ToUpper(strings.TrimSpace(bankCode))
	adapter, err := s.banks.Adapter(ctx, bankCode)
	if err != nil {
		return nil, err
	}
	employees, err := adapter.SyncEmployees(ctx)
	if err != nil {
		logger.CtxError(ctx, log_messages.EmployeeSyncFailed, err, zap.String("bank_code", bankCode))
		return nil, err
	}

	now := s.now().UTC()
	result := &Result{BankCode: bankCode, Received: len(employees)}
	records := make([]models.BankRecord, 0, len(employees))
	for _, e := range employees {
		nuit := strings.TrimSpace(e.NUIT)
		if !utils.IsValidNUIT(nuit) {
			result.Skipped++
			continue
		}
		records = append(records, models.BankRecord{
			BankCode:      bankCode,
			NUIT:          nuit,
			Name:          strings.Join(strings.Fields(e.Name), " "),
			PhoneNumber:   e.PhoneNumber,
			BINumber:      strings.ToUpper(strings.TrimSpace(e.BINumber)),
			Employer:      e.Employer,
			Salary:        e.Salary,
			ApprovedLimit: e.ApprovedLimit,
			CreditScore:   e.CreditScore,
			ActiveDebt:    e.ActiveDebt,
			AccountActive: e.AccountActive,
			SyncedAt:      now,
		})
	}

	if len(records) > 0 {
		n, err := s.records.UpsertMany(ctx, records)
		if err != nil {
			logger.CtxError(ctx, log_messages.EmployeeSyncFailed, err, zap.String("bank_code", bankCode))
			return nil, err
		}
		result.Upserted = n
	}

	logger.CtxInfo(ctx, log_messages.EmployeeSyncFinished,
		zap.String("bank_code", bankCode),
		zap.Int("received", result.Received),
		zap.Int("upserted", result.Upserted),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// SyncAll syncs every active partner. One bank failing does not stop the rest;
// the first error is returned alongside the results that did complete.
func (s *SyncService) SyncAll(ctx context.Context) ([]Result, error) {
	partners, err := s.partners.FindActive(ctx)
	if err != nil {
		return nil, err
	}
	var (
		results  []Result
		firstErr error
	)
	for _, p := range partners {
		r, err := s.SyncBank(ctx, p.Code)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results = append(results, *r)
	}
	return results, firstErr
}
