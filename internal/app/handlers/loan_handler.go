package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/utils"
	"payja-lending/internal/service/loans"
	"payja-lending/internal/service/settlement"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Disburser is satisfied by *settlement.SettlementService.
type Disburser interface {
	Disburse(ctx context.Context, loanID primitive.ObjectID) (*settlement.Result, error)
}

// LoanOperator is satisfied by *loans.LoanGatewayService.
type LoanOperator interface {
	TransitionStatus(ctx context.Context, loanID primitive.ObjectID, to consts.LoanStatus) (*models.Loan, error)
	PayInstallment(ctx context.Context, req loans.PaymentRequest) (*models.Installment, error)
}

type statusRequest struct {
	Status consts.LoanStatus `json:"status" binding:"required,oneof=APPROVED REJECTED DISBURSED ACTIVE OVERDUE COMPLETED"`
}

type paymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	Reference string  `json:"reference" binding:"required,max=64"`
}

type LoanView struct {
	ID          string            `json:"id"`
	Reference   string            `json:"reference"`
	Status      consts.LoanStatus `json:"status"`
	Amount      float64           `json:"amount"`
	TotalAmount float64           `json:"totalAmount"`
	TermCode    string            `json:"termCode"`
	BankCode    string            `json:"bankCode"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

type InstallmentView struct {
	LoanID     string                   `json:"loanId"`
	Number     int                      `json:"number"`
	Amount     float64                  `json:"amount"`
	DueDate    time.Time                `json:"dueDate"`
	Status     consts.InstallmentStatus `json:"status"`
	PaymentRef string                   `json:"paymentRef,omitempty"`
	PaidAt     *time.Time               `json:"paidAt,omitempty"`
}

// DisburseResponse carries a partial settlement: the bank leg and ledger are
// done but the wallet credit still has to be retried.
type DisburseResponse struct {
	Result *settlement.Result `json:"result"`
	Error  ErrorResponse      `json:"error"`
}

type LoanHandler struct {
	settlement Disburser
	loans      LoanOperator
}

func NewLoanHandler(settlement Disburser, loans LoanOperator) *LoanHandler {
	return &LoanHandler{settlement: settlement, loans: loans}
}

func loanIDParam(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param("loanId"))
	if err != nil {
		respondError(c, fmt.Errorf("%w: loanId must be a 24 character hex id", consts.ErrorInvalidRequest))
		return primitive.NilObjectID, false
	}
	return id, true
}

func (h *LoanHandler) Disburse(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	res, err := h.settlement.Disburse(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, consts.ErrorWalletCreditFailed) && res != nil {
			c.JSON(http.StatusAccepted, DisburseResponse{
				Result: res,
				Error:  ErrorResponse{Code: utils.GetErrorCode(err), Message: utils.PublicMessage(err)},
			})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) UpdateStatus(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	var body statusRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}
	loan, err := h.loans.TransitionStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, LoanView{
		ID:          loan.ID.Hex(),
		Reference:   loan.Reference,
		Status:      loan.Status,
		Amount:      loan.Amount,
		TotalAmount: loan.TotalAmount,
		TermCode:    loan.TermCode,
		BankCode:    loan.BankCode,
		UpdatedAt:   loan.UpdatedAt,
	})
}

func (h *LoanHandler) PayInstallment(c *gin.Context) {
	id, ok := loanIDParam(c)
	if !ok {
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number < 1 {
		respondError(c, fmt.Errorf("%w: installment number must be a positive integer", consts.ErrorInvalidRequest))
		return
	}
	var body paymentRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		respondBindError(c, err)
		return
	}

	inst, err := h.loans.PayInstallment(c.Request.Context(), loans.PaymentRequest{
		LoanID:    id,
		Number:    number,
		Amount:    body.Amount,
		Reference: body.Reference,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, InstallmentView{
		LoanID:     inst.LoanID.Hex(),
		Number:     inst.Number,
		Amount:     inst.Amount,
		DueDate:    inst.DueDate,
		Status:     inst.Status,
		PaymentRef: inst.PaymentRef,
		PaidAt:     inst.PaidAt,
	})
}
