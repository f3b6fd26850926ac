package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/loans"
	"payja-lending/internal/service/settlement"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockDisburser struct {
	mock.Mock
}

func (m *MockDisburser) Disburse(ctx context.Context, loanID primitive.ObjectID) (*settlement.Result, error) {
	args := m.Called(ctx, loanID)
	if res := args.Get(0); res != nil {
		return res.(*settlement.Result), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLoanOperator struct {
	mock.Mock
}

func (m *MockLoanOperator) TransitionStatus(ctx context.Context, loanID primitive.ObjectID, to consts.LoanStatus) (*models.Loan, error) {
	args := m.Called(ctx, loanID, to)
	if loan := args.Get(0); loan != nil {
		return loan.(*models.Loan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanOperator) PayInstallment(ctx context.Context, req loans.PaymentRequest) (*models.Installment, error) {
	args := m.Called(ctx, req)
	if inst := args.Get(0); inst != nil {
		return inst.(*models.Installment), args.Error(1)
	}
	return nil, args.Error(1)
}

var testLoanID = primitive.NewObjectID()

func loanRouter(d Disburser, op LoanOperator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h := NewLoanHandler(d, op)
	router.POST("/loans/:loanId/disburse", h.Disburse)
	router.PATCH("/loans/:loanId/status", h.UpdateStatus)
	router.POST("/loans/:loanId/installments/:number/payment", h.PayInstallment)
	return router
}

func TestLoanHandlerDisburse(t *testing.T) {
	path := "/loans/" + testLoanID.Hex() + "/disburse"

	t.Run("settled", func(t *testing.T) {
		d := new(MockDisburser)
		d.On("Disburse", mock.Anything, testLoanID).Return(&settlement.Result{
			LoanID:          testLoanID.Hex(),
			Reference:       "PJ123",
			Status:          consts.LoanStatusActive,
			CustomerAmount:  8600,
			BankTransaction: "BCI-TX-1",
		}, nil)

		w := postJSON(loanRouter(d, new(MockLoanOperator)), http.MethodPost, path, "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"reference":"PJ123"`)
		assert.Contains(t, w.Body.String(), `"customerAmount":8600`)
		d.AssertExpectations(t)
	})

	t.Run("wallet leg failed", func(t *testing.T) {
		d := new(MockDisburser)
		d.On("Disburse", mock.Anything, testLoanID).Return(&settlement.Result{
			LoanID:    testLoanID.Hex(),
			Reference: "PJ123",
			Status:    consts.LoanStatusDisbursed,
		}, fmt.Errorf("%w: emola timeout", consts.ErrorWalletCreditFailed))

		w := postJSON(loanRouter(d, new(MockLoanOperator)), http.MethodPost, path, "")

		assert.Equal(t, http.StatusAccepted, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"DISBURSED"`)
		assert.Contains(t, w.Body.String(), `"code":"PAYJA_SETTLEMENT_WALLET_CREDIT_FAILED"`)
	})

	t.Run("not approved", func(t *testing.T) {
		d := new(MockDisburser)
		d.On("Disburse", mock.Anything, testLoanID).Return(nil, consts.ErrorLoanNotApproved)

		w := postJSON(loanRouter(d, new(MockLoanOperator)), http.MethodPost, path, "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.JSONEq(t, `{"code":"PAYJA_SETTLEMENT_LOAN_NOT_APPROVED","message":"Loan is not in APPROVED state"}`, w.Body.String())
	})

	t.Run("malformed id", func(t *testing.T) {
		d := new(MockDisburser)
		w := postJSON(loanRouter(d, new(MockLoanOperator)), http.MethodPost, "/loans/xyz/disburse", "")

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		d.AssertNotCalled(t, "Disburse", mock.Anything, mock.Anything)
	})
}

func TestLoanHandlerUpdateStatus(t *testing.T) {
	path := "/loans/" + testLoanID.Hex() + "/status"
	updated := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	t.Run("transition applied", func(t *testing.T) {
		op := new(MockLoanOperator)
		op.On("TransitionStatus", mock.Anything, testLoanID, consts.LoanStatusCompleted).Return(&models.Loan{
			ID:          testLoanID,
			Reference:   "PJ123",
			Status:      consts.LoanStatusCompleted,
			Amount:      3000,
			TotalAmount: 3600,
			TermCode:    "M3",
			BankCode:    "BCI",
			UpdatedAt:   updated,
		}, nil)

		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPatch, path, `{"status":"COMPLETED"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{
			"id":"`+testLoanID.Hex()+`",
			"reference":"PJ123",
			"status":"COMPLETED",
			"amount":3000,
			"totalAmount":3600,
			"termCode":"M3",
			"bankCode":"BCI",
			"updatedAt":"2026-06-01T10:00:00Z"
		}`, w.Body.String())
	})

	t.Run("unknown status rejected by binding", func(t *testing.T) {
		op := new(MockLoanOperator)
		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPatch, path, `{"status":"PAUSED"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		op.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("transition not allowed", func(t *testing.T) {
		op := new(MockLoanOperator)
		op.On("TransitionStatus", mock.Anything, testLoanID, consts.LoanStatusApproved).
			Return(nil, fmt.Errorf("%w: COMPLETED -> APPROVED", consts.ErrorInvalidStatusTransition))

		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPatch, path, `{"status":"APPROVED"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"PAYJA_LOAN_INVALID_STATUS_TRANSITION"`)
	})
}

func TestLoanHandlerPayInstallment(t *testing.T) {
	path := "/loans/" + testLoanID.Hex() + "/installments/2/payment"
	paidAt := time.Date(2026, 8, 1, 9, 30, 0, 0, time.UTC)

	t.Run("paid", func(t *testing.T) {
		op := new(MockLoanOperator)
		op.On("PayInstallment", mock.Anything, loans.PaymentRequest{
			LoanID:    testLoanID,
			Number:    2,
			Amount:    1200,
			Reference: "MP-778",
		}).Return(&models.Installment{
			LoanID:     testLoanID,
			Number:     2,
			Amount:     1200,
			DueDate:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			Status:     consts.InstallmentPaid,
			PaymentRef: "MP-778",
			PaidAt:     &paidAt,
		}, nil)

		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPost, path, `{"amount":1200,"reference":"MP-778"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PAID"`)
		assert.Contains(t, w.Body.String(), `"paidAt":"2026-08-01T09:30:00Z"`)
		op.AssertExpectations(t)
	})

	t.Run("bad installment number", func(t *testing.T) {
		op := new(MockLoanOperator)
		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPost,
			"/loans/"+testLoanID.Hex()+"/installments/0/payment", `{"amount":1200,"reference":"MP-778"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		op.AssertNotCalled(t, "PayInstallment", mock.Anything, mock.Anything)
	})

	t.Run("missing reference", func(t *testing.T) {
		op := new(MockLoanOperator)
		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPost, path, `{"amount":1200}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("already paid", func(t *testing.T) {
		op := new(MockLoanOperator)
		op.On("PayInstallment", mock.Anything, mock.Anything).Return(nil, consts.ErrorInstallmentAlreadyPaid)

		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPost, path, `{"amount":1200,"reference":"MP-778"}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short payment", func(t *testing.T) {
		op := new(MockLoanOperator)
		op.On("PayInstallment", mock.Anything, mock.Anything).Return(nil, consts.ErrorInstallmentAmountMismatch)

		w := postJSON(loanRouter(new(MockDisburser), op), http.MethodPost, path, `{"amount":100,"reference":"MP-778"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
