package crossvalidation

import (
	"context"
	"errors"
	"testing"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/store/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

type MockBankRecordRepo struct {
	mock.Mock
}

func (m *MockBankRecordRepo) FindByNUIT(ctx context.Context, nuit string) (*models.BankRecord, error) {
	args := m.Called(ctx, nuit)
	if r, ok := args.Get(0).(*models.BankRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBankRecordRepo) FindByPhoneOrName(ctx context.Context, phone, name string) (*models.BankRecord, error) {
	args := m.Called(ctx, phone, name)
	if r, ok := args.Get(0).(*models.BankRecord); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockBankRecordRepo) UpsertMany(ctx context.Context, records []models.BankRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

var testCfg = config.CrossValidationConfig{
	ApprovalThreshold: 70,
	LowCreditScore:    500,
	MidCreditScore:    650,
	LowBandFactor:     0.5,
	MidBandFactor:     0.7,
	ActiveDebtFactor:  0.8,
	MinViableAmount:   500,
}

func bankRecord() *models.BankRecord {
	return &models.BankRecord{
		BankCode:      "BCI",
		NUIT:          "123456789",
		Name:          "Ana Machava",
		PhoneNumber:   "258841234567",
		BINumber:      "110100123456A",
		ApprovedLimit: 20000,
		CreditScore:   720,
		AccountActive: true,
	}
}

func fullCandidate() Candidate {
	return Candidate{
		NUIT:        "123456789",
		BINumber:    "110100123456A",
		Name:        "Ana Machava",
		PhoneNumber: "841234567",
		Institution: "MISAU",
	}
}

func TestValidatePerfectMatch(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBankRecordRepo)
	repo.On("FindByNUIT", ctx, "123456789").Return(bankRecord(), nil)

	res, err := NewCrossValidationService(repo, testCfg).Validate(ctx, fullCandidate())
	require.NoError(t, err)
	assert.True(t, res.Approved)
	assert.Equal(t, 100.0, res.MatchScore)
	assert.Equal(t, 20000.0, res.CreditLimit)
	assert.Equal(t, ReasonApproved, res.Reason)
	assert.Equal(t, "BCI", res.Record.BankCode)
}

func TestValidateTaxIDAndPhoneOnlyIsRejected(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBankRecordRepo)
	rec := bankRecord()
	rec.Name = "Rui"
	repo.On("FindByNUIT", ctx, "123456789").Return(rec, nil)

	c := fullCandidate()
	c.Name = "Ana"
	c.BINumber = "999999999999Z"

	res, err := NewCrossValidationService(repo, testCfg).Validate(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 60.0, res.MatchScore)
	assert.False(t, res.Approved)
	assert.Equal(t, ReasonLowScore, res.Reason)
	assert.Zero(t, res.CreditLimit)
}

func TestValidateNotFound(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBankRecordRepo)
	repo.On("FindByNUIT", ctx, "123456789").Return(nil, mongo.ErrNoDocuments)
	repo.On("FindByPhoneOrName", ctx, "841234567", "Ana Machava").Return(nil, mongo.ErrNoDocuments)

	res, err := NewCrossValidationService(repo, testCfg).Validate(ctx, fullCandidate())
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Zero(t, res.MatchScore)
	assert.Equal(t, ReasonNotFound, res.Reason)
}

func TestValidateFallbackMatchRejectsWithZeroScore(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBankRecordRepo)
	repo.On("FindByNUIT", ctx, "123456789").Return(nil, mongo.ErrNoDocuments)
	repo.On("FindByPhoneOrName", ctx, "841234567", "Ana Machava").Return(bankRecord(), nil)

	res, err := NewCrossValidationService(repo, testCfg).Validate(ctx, fullCandidate())
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Zero(t, res.MatchScore)
	assert.Equal(t, ReasonNUITMismatch, res.Reason)
}

func TestValidateRepositoryError(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBankRecordRepo)
	repo.On("FindByNUIT", ctx, "123456789").Return(nil, errors.New("socket closed"))

	_, err := NewCrossValidationService(repo, testCfg).Validate(ctx, fullCandidate())
	assert.EqualError(t, err, "socket closed")
}

func TestMissingOptionalFieldNeverScoresHigher(t *testing.T) {
	ctx := context.Background()
	repo := new(MockBankRecordRepo)
	repo.On("FindByNUIT", ctx, "123456789").Return(bankRecord(), nil)
	svc := NewCrossValidationService(repo, testCfg)

	full, err := svc.Validate(ctx, fullCandidate())
	require.NoError(t, err)

	drops := map[string]func(*Candidate){
		"bi":    func(c *Candidate) { c.BINumber = "" },
		"name":  func(c *Candidate) { c.Name = "" },
		"phone": func(c *Candidate) { c.PhoneNumber = "" },
	}
	for name, drop := range drops {
		t.Run(name, func(t *testing.T) {
			c := fullCandidate()
			drop(&c)
			res, err := svc.Validate(ctx, c)
			require.NoError(t, err)
			assert.Less(t, res.MatchScore, full.MatchScore)
			assert.Zero(t, res.Breakdown[name])
		})
	}
}

func TestNameSimilarityIgnoresCaseAndWhitespace(t *testing.T) {
	assert.Equal(t, 1.0, nameSimilarity("  ANA   machava ", "Ana Machava"))
	assert.Equal(t, 0.0, nameSimilarity("", "Ana"))
	assert.Equal(t, 0.0, nameSimilarity("abc", "xyz"))
	// one substitution in eleven characters
	assert.InDelta(t, 1-1.0/11, nameSimilarity("Ana Machava", "Ana Machave"), 1e-9)
}

func TestNameSimilarityCountsRunes(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"João Cossa", "Joao Cossa", 0.9},
		{"Inês", "ines", 0.75},
		{"kitten", "sitting", 1 - 3.0/7},
		{"Ana", "", 0},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, nameSimilarity(tt.a, tt.b), 1e-9, "%s/%s", tt.a, tt.b)
	}
}

func TestCreditCeiling(t *testing.T) {
	svc := NewCrossValidationService(nil, testCfg)
	tests := []struct {
		name   string
		score  int
		debt   float64
		limit  float64
		expect float64
	}{
		{"good score no debt", 720, 0, 20000, 20000},
		{"mid band", 600, 0, 20000, 14000},
		{"low band", 450, 0, 20000, 10000},
		{"low band with debt", 450, 1500, 20000, 8000},
		{"mid band with debt", 600, 1, 10000, 5600},
		{"floored at minimum viable", 450, 100, 1000, 500},
		{"no bank limit", 720, 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &models.BankRecord{CreditScore: tt.score, ActiveDebt: tt.debt, ApprovedLimit: tt.limit}
			assert.Equal(t, tt.expect, svc.CreditCeiling(r))
		})
	}
}
