package consts

import "payja-lending/internal/pkg/models"

const InternalErrorCode = "PAYJA_INTERNAL_ERROR"

var (
	ErrorLoanNotFound = &models.CustomError{
		Code:    "PAYJA_LOAN_NOT_FOUND",
		Message: "Loan not found",
	}
	ErrorLoanNotApproved = &models.CustomError{
		Code:    "PAYJA_SETTLEMENT_LOAN_NOT_APPROVED",
		Message: "Loan is not in APPROVED state",
	}
	ErrorInvalidStatusTransition = &models.CustomError{
		Code:    "PAYJA_LOAN_INVALID_STATUS_TRANSITION",
		Message: "Loan status transition not allowed",
	}
	ErrorStatusChanged = &models.CustomError{
		Code:    "PAYJA_LOAN_STATUS_CHANGED",
		Message: "Loan status changed concurrently",
	}
	ErrorInstallmentNotFound = &models.CustomError{
		Code:    "PAYJA_INSTALLMENT_NOT_FOUND",
		Message: "Installment not found",
	}
	ErrorInstallmentAlreadyPaid = &models.CustomError{
		Code:    "PAYJA_INSTALLMENT_ALREADY_PAID",
		Message: "Installment already paid",
	}
	ErrorInstallmentAmountMismatch = &models.CustomError{
		Code:    "PAYJA_INSTALLMENT_AMOUNT_MISMATCH",
		Message: "Payment amount does not cover the installment",
	}
	ErrorDisbursementInProgress = &models.CustomError{
		Code:    "PAYJA_SETTLEMENT_IN_PROGRESS",
		Message: "Disbursement already in progress for this loan",
	}
	ErrorBankDisbursementFailed = &models.CustomError{
		Code:    "PAYJA_SETTLEMENT_BANK_DISBURSEMENT_FAILED",
		Message: "Bank disbursement failed",
	}
	ErrorWalletCreditFailed = &models.CustomError{
		Code:    "PAYJA_SETTLEMENT_WALLET_CREDIT_FAILED",
		Message: "Wallet credit failed, loan remains DISBURSED",
	}
	ErrorLedgerImbalance = &models.CustomError{
		Code:    "PAYJA_SETTLEMENT_LEDGER_IMBALANCE",
		Message: "Settlement hops do not conserve the loan amount",
	}
	ErrorUnknownBank = &models.CustomError{
		Code:    "PAYJA_BANK_UNKNOWN",
		Message: "Bank partner not configured",
	}
	ErrorBankPartnerInvalid = &models.CustomError{
		Code:    "PAYJA_BANK_PARTNER_INVALID",
		Message: "Bank partner configuration is invalid",
	}
	ErrorUnknownTerm = &models.CustomError{
		Code:    "PAYJA_PRICING_UNKNOWN_TERM",
		Message: "Unknown loan term",
	}
	ErrorInvalidPrincipal = &models.CustomError{
		Code:    "PAYJA_PRICING_INVALID_PRINCIPAL",
		Message: "Principal must be positive",
	}
	ErrorCustomerNotFound = &models.CustomError{
		Code:    "PAYJA_CUSTOMER_NOT_FOUND",
		Message: "Customer not found",
	}
	ErrorSessionStateCorrupt = &models.CustomError{
		Code:    "PAYJA_SESSION_STATE_CORRUPT",
		Message: "Session state does not match its step",
	}
	ErrorScoringUnavailable = &models.CustomError{
		Code:    "PAYJA_SCORING_UNAVAILABLE",
		Message: "Scoring could not be completed",
	}
	ErrorInvalidRequest = &models.CustomError{
		Code:    "PAYJA_VALIDATION_INVALID_REQUEST",
		Message: "Invalid request",
	}
	ErrorMsisdnInvalid = &models.CustomError{
		Code:    "PAYJA_VALIDATION_MSISDN_INVALID",
		Message: "Phone number not valid",
	}
)
