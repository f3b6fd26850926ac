package consts

type LoanStatus string

const (
	LoanStatusAnalyzing LoanStatus = "ANALYZING"
	LoanStatusApproved  LoanStatus = "APPROVED"
	LoanStatusRejected  LoanStatus = "REJECTED"
	LoanStatusDisbursed LoanStatus = "DISBURSED"
	LoanStatusActive    LoanStatus = "ACTIVE"
	LoanStatusCompleted LoanStatus = "COMPLETED"
	LoanStatusOverdue   LoanStatus = "OVERDUE"
)

// IsOpen reports whether the loan still blocks the customer from borrowing again.
func (s LoanStatus) IsOpen() bool {
	switch s {
	case LoanStatusAnalyzing, LoanStatusApproved, LoanStatusDisbursed, LoanStatusActive, LoanStatusOverdue:
		return true
	}
	return false
}

func (s LoanStatus) IsTerminal() bool {
	return s == LoanStatusRejected || s == LoanStatusCompleted
}

type InstallmentStatus string

const (
	InstallmentPending InstallmentStatus = "PENDING"
	InstallmentPaid    InstallmentStatus = "PAID"
	InstallmentOverdue InstallmentStatus = "OVERDUE"
)

type ScoringDecision string

const (
	DecisionApproved ScoringDecision = "APPROVED"
	DecisionRejected ScoringDecision = "REJECTED"
)

type RiskBand string

const (
	RiskLow    RiskBand = "LOW"
	RiskMedium RiskBand = "MEDIUM"
	RiskHigh   RiskBand = "HIGH"
)

var LoanPurposes = []string{"PESSOAL", "NEGOCIO", "EDUCACAO", "SAUDE", "OUTRO"}
