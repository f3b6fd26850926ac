package bank

import (
	"context"
	"errors"
	"testing"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPartnerRepo struct {
	mock.Mock
}

func (m *MockPartnerRepo) FindByCode(ctx context.Context, code string) (*models.BankPartner, error) {
	args := m.Called(ctx, code)
	if p, ok := args.Get(0).(*models.BankPartner); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPartnerRepo) FindActive(ctx context.Context) ([]models.BankPartner, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.BankPartner), args.Error(1)
}

func TestRegistryCachesUntilPartnerChanges(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepo)

	p := partner("bci", "https://bci.example.co.mz")
	p.UpdatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.On("FindByCode", ctx, "BCI").Return(p, nil).Twice()

	r := NewRegistry(repo, noWaitPolicy())
	first, err := r.Adapter(ctx, "BCI")
	require.NoError(t, err)
	second, err := r.Adapter(ctx, "BCI")
	require.NoError(t, err)
	assert.Same(t, first, second)

	changed := *p
	changed.UpdatedAt = p.UpdatedAt.Add(time.Hour)
	changed.MaxRetries = 5
	repo.On("FindByCode", ctx, "BCI").Return(&changed, nil).Once()

	third, err := r.Adapter(ctx, "BCI")
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 6, third.(*HTTPAdapter).policy.MaxAttempts)
	repo.AssertExpectations(t)
}

func TestRegistryErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown bank", func(t *testing.T) {
		repo := new(MockPartnerRepo)
		repo.On("FindByCode", ctx, "XYZ").Return(nil, consts.ErrorUnknownBank)
		_, err := NewRegistry(repo, noWaitPolicy()).Adapter(ctx, "XYZ")
		assert.ErrorIs(t, err, consts.ErrorUnknownBank)
	})

	t.Run("inactive partner", func(t *testing.T) {
		repo := new(MockPartnerRepo)
		p := partner("bci", "https://bci.example.co.mz")
		p.Active = false
		repo.On("FindByCode", ctx, "BCI").Return(p, nil)
		_, err := NewRegistry(repo, noWaitPolicy()).Adapter(ctx, "BCI")
		assert.ErrorIs(t, err, consts.ErrorUnknownBank)
	})

	t.Run("invalid configuration", func(t *testing.T) {
		repo := new(MockPartnerRepo)
		p := partner("bci", "not a url")
		p.TimeoutSeconds = 0
		repo.On("FindByCode", ctx, "BCI").Return(p, nil)
		_, err := NewRegistry(repo, noWaitPolicy()).Adapter(ctx, "BCI")
		assert.ErrorIs(t, err, consts.ErrorBankPartnerInvalid)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockPartnerRepo)
		repo.On("FindByCode", ctx, "BCI").Return(nil, errors.New("mongo down"))
		_, err := NewRegistry(repo, noWaitPolicy()).Adapter(ctx, "BCI")
		assert.EqualError(t, err, "mongo down")
	})
}
