package consts

type LoanEventType string

const (
	EventLoanCreated        LoanEventType = "LOAN_CREATED"
	EventLoanApproved       LoanEventType = "LOAN_APPROVED"
	EventLoanRejected       LoanEventType = "LOAN_REJECTED"
	EventLoanDisbursed      LoanEventType = "LOAN_DISBURSED"
	EventWalletCreditFailed LoanEventType = "WALLET_CREDIT_FAILED"
	EventLoanActivated      LoanEventType = "LOAN_ACTIVATED"
	EventInstallmentPaid    LoanEventType = "INSTALLMENT_PAID"
	EventLoanOverdue        LoanEventType = "LOAN_OVERDUE"
	EventInstallmentOverdue LoanEventType = "INSTALLMENT_OVERDUE"
	EventLoanCompleted      LoanEventType = "LOAN_COMPLETED"
)

type SmsCategory string

const (
	SmsCategoryOTP          SmsCategory = "OTP"
	SmsCategoryRegistration SmsCategory = "REGISTRATION"
	SmsCategoryLoan         SmsCategory = "LOAN"
	SmsCategoryDisbursement SmsCategory = "DISBURSEMENT"
	SmsCategoryPayment      SmsCategory = "PAYMENT"
	SmsCategoryReminder     SmsCategory = "REMINDER"
)
