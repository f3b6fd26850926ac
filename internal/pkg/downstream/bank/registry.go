package bank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/retry"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/service/interfaces"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type cachedAdapter struct {
	adapter   Adapter
	updatedAt time.Time
}

// Registry resolves bank codes to adapters built from the bank_partners
// collection. An adapter is rebuilt when its partner record changes.
type Registry struct {
	partners interfaces.BankPartnerRepositoryInterface
	policy   retry.Policy
	validate *validator.Validate

	mu    sync.Mutex
	cache map[string]cachedAdapter
}

func NewRegistry(partners interfaces.BankPartnerRepositoryInterface, policy retry.Policy) *Registry {
	return &Registry{
		partners: partners,
		policy:   policy,
		validate: validator.New(),
		cache:    make(map[string]cachedAdapter),
	}
}

func (r *Registry) Adapter(ctx context.Context, bankCode string) (Adapter, error) {
	partner, err := r.partners.FindByCode(ctx, bankCode)
	if err != nil {
		return nil, err
	}
	if !partner.Active {
		return nil, fmt.Errorf("%w: %s is inactive", consts.ErrorUnknownBank, bankCode)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache[bankCode]; ok && cached.updatedAt.Equal(partner.UpdatedAt) {
		return cached.adapter, nil
	}

	if err := r.validate.StructCtx(ctx, partner); err != nil {
		logger.CtxError(ctx, log_messages.BankPartnerValidationFailed, err, zap.String("bank_code", bankCode))
		return nil, fmt.Errorf("%w: %v", consts.ErrorBankPartnerInvalid, err)
	}

	adapter, err := NewHTTPAdapter(partner, r.policy)
	if err != nil {
		return nil, err
	}
	r.cache[bankCode] = cachedAdapter{adapter: adapter, updatedAt: partner.UpdatedAt}

	logger.CtxInfo(ctx, log_messages.BankAdapterBuilt,
		zap.String("bank_code", bankCode),
		zap.String("adapter", partner.Adapter),
		zap.Int("max_retries", partner.MaxRetries),
	)
	return adapter, nil
}
