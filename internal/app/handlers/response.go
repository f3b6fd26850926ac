package handlers

import (
	"errors"
	"net/http"
	"strings"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/models"
	"payja-lending/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

var statusByCode = map[string]int{
	consts.ErrorInvalidRequest.Code:            http.StatusUnprocessableEntity,
	consts.ErrorMsisdnInvalid.Code:             http.StatusUnprocessableEntity,
	consts.ErrorUnknownTerm.Code:               http.StatusUnprocessableEntity,
	consts.ErrorInvalidPrincipal.Code:          http.StatusUnprocessableEntity,
	consts.ErrorInstallmentAmountMismatch.Code: http.StatusUnprocessableEntity,

	consts.ErrorLoanNotFound.Code:        http.StatusNotFound,
	consts.ErrorInstallmentNotFound.Code: http.StatusNotFound,
	consts.ErrorCustomerNotFound.Code:    http.StatusNotFound,
	consts.ErrorUnknownBank.Code:         http.StatusNotFound,

	consts.ErrorLoanNotApproved.Code:         http.StatusConflict,
	consts.ErrorInvalidStatusTransition.Code: http.StatusConflict,
	consts.ErrorStatusChanged.Code:           http.StatusConflict,
	consts.ErrorInstallmentAlreadyPaid.Code:  http.StatusConflict,
	consts.ErrorDisbursementInProgress.Code:  http.StatusConflict,

	consts.ErrorBankDisbursementFailed.Code: http.StatusBadGateway,
	consts.ErrorWalletCreditFailed.Code:     http.StatusBadGateway,
	consts.ErrorScoringUnavailable.Code:     http.StatusBadGateway,
}

// statusFor maps a domain error to its HTTP status. Anything unrecognised is a 500.
func statusFor(err error) int {
	var customErr *models.CustomError
	if errors.As(err, &customErr) {
		if status, ok := statusByCode[customErr.Code]; ok {
			return status
		}
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.CtxError(c.Request.Context(), "Request failed", err, zap.String("path", c.FullPath()))
	} else {
		logger.CtxInfo(c.Request.Context(), "Request rejected",
			zap.String("path", c.FullPath()),
			zap.String("code", utils.GetErrorCode(err)),
			zap.Error(err),
		)
	}
	c.JSON(status, ErrorResponse{Code: utils.GetErrorCode(err), Message: utils.PublicMessage(err)})
}

// respondBindError reports which fields failed validation without echoing the
// decoder's own error text.
func respondBindError(c *gin.Context, err error) {
	message := "request body is not valid JSON"
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		problems := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			problems = append(problems, fieldName(fe.Field())+" failed "+fe.Tag())
		}
		message = strings.Join(problems, "; ")
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Code:    consts.ErrorInvalidRequest.Code,
		Message: message,
	})
}

func fieldName(goName string) string {
	if goName == "" {
		return goName
	}
	return strings.ToLower(goName[:1]) + goName[1:]
}
