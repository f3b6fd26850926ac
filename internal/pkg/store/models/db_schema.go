package models

import (
	"time"

	"payja-lending/internal/pkg/consts"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Session is one USSD conversation. State holds the step-specific payload
// encoded by the session package; it is only meaningful together with Step.
type Session struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	SessionID      string             `bson:"sessionId"`
	PhoneNumber    string             `bson:"phoneNumber"`
	Step           consts.SessionStep `bson:"step"`
	State          bson.Raw           `bson:"state,omitempty"`
	OTPHash        string             `bson:"otpHash,omitempty"`
	OTPExpiresAt   *time.Time         `bson:"otpExpiresAt,omitempty"`
	OTPAttempts    int                `bson:"otpAttempts"`
	Active         bool               `bson:"active"`
	StartedAt      time.Time          `bson:"startedAt"`
	LastActivityAt time.Time          `bson:"lastActivityAt"`
	EndedAt        *time.Time         `bson:"endedAt,omitempty"`
	LastTurn       *SessionTurn       `bson:"lastTurn,omitempty"`
}

// SessionTurn is the last input a session handled and the reply it produced,
// kept so a re-delivered input is answered again instead of being fed to the
// step that followed.
type SessionTurn struct {
	Input    string             `bson:"input"`
	FromStep consts.SessionStep `bson:"fromStep"`
	Step     consts.SessionStep `bson:"step"`
	Reply    string             `bson:"reply"`
	At       time.Time          `bson:"at"`
}

// OTPPending reports whether the session holds a code that can still be entered.
func (s *Session) OTPPending(now time.Time) bool {
	return s.OTPHash != "" && s.OTPExpiresAt != nil && now.Before(*s.OTPExpiresAt)
}

type Customer struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	PhoneNumber string             `bson:"phoneNumber"`
	Name        string             `bson:"name"`
	NUIT        string             `bson:"nuit"`
	BINumber    string             `bson:"biNumber"`
	Institution string             `bson:"institution"`
	Verified    bool               `bson:"verified"`
	CreditLimit float64            `bson:"creditLimit"`
	MatchScore  float64            `bson:"matchScore"`
	BankCode    string             `bson:"bankCode,omitempty"`
	Employer    string             `bson:"employer,omitempty"`
	Salary      float64            `bson:"salary,omitempty"`
	Channel     string             `bson:"channel"`
	VerifiedAt  *time.Time         `bson:"verifiedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

// CommissionRates are copied onto a loan at creation and never re-read from config.
type CommissionRates struct {
	Bank       float64 `bson:"bank" json:"bank"`
	Aggregator float64 `bson:"aggregator" json:"aggregator"`
	Wallet     float64 `bson:"wallet" json:"wallet"`
}

type Loan struct {
	ID                primitive.ObjectID `bson:"_id,omitempty"`
	Reference         string             `bson:"reference"`
	CustomerID        primitive.ObjectID `bson:"customerId"`
	PhoneNumber       string             `bson:"phoneNumber"`
	SessionID         string             `bson:"sessionId,omitempty"`
	Amount            float64            `bson:"amount"`
	InterestRate      float64            `bson:"interestRate"`
	TermCode          string             `bson:"termCode"`
	TermDays          int                `bson:"termDays,omitempty"`
	TermMonths        int                `bson:"termMonths,omitempty"`
	InterestAmount    float64            `bson:"interestAmount"`
	TotalAmount       float64            `bson:"totalAmount"`
	InstallmentCount  int                `bson:"installmentCount"`
	InstallmentAmount float64            `bson:"installmentAmount"`
	Purpose           string             `bson:"purpose"`
	BankCode          string             `bson:"bankCode"`
	Channel           string             `bson:"channel"`
	Status            consts.LoanStatus  `bson:"status"`
	Commission        CommissionRates    `bson:"commission"`
	DueDate           *time.Time         `bson:"dueDate,omitempty"`
	DisbursedAt       *time.Time         `bson:"disbursedAt,omitempty"`
	WalletCreditedAt  *time.Time         `bson:"walletCreditedAt,omitempty"`
	WalletCreditRef   string             `bson:"walletCreditRef,omitempty"`
	CreatedAt         time.Time          `bson:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt"`
}

// Transaction is one ledger hop. (LoanID, Type, From, To) is unique.
type Transaction struct {
	ID                primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	LoanID            primitive.ObjectID       `bson:"loanId" json:"loanId"`
	Sequence          int                      `bson:"sequence" json:"sequence"`
	Type              consts.TransactionType   `bson:"type" json:"type"`
	From              consts.Party             `bson:"fromParty" json:"from"`
	To                consts.Party             `bson:"toParty" json:"to"`
	Amount            float64                  `bson:"amount" json:"amount"`
	ExternalReference string                   `bson:"externalReference" json:"externalReference"`
	Status            consts.TransactionStatus `bson:"status" json:"status"`
	Attempts          int                      `bson:"attempts" json:"attempts"`
	LastError         string                   `bson:"lastError,omitempty" json:"lastError,omitempty"`
	CreatedAt         time.Time                `bson:"createdAt" json:"createdAt"`
	ProcessedAt       *time.Time               `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
	CompletedAt       *time.Time               `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

type Installment struct {
	ID         primitive.ObjectID       `bson:"_id,omitempty"`
	LoanID     primitive.ObjectID       `bson:"loanId"`
	Number     int                      `bson:"number"`
	Amount     float64                  `bson:"amount"`
	Principal  float64                  `bson:"principal"`
	Interest   float64                  `bson:"interest"`
	DueDate    time.Time                `bson:"dueDate"`
	Status     consts.InstallmentStatus `bson:"status"`
	PaidAt     *time.Time               `bson:"paidAt,omitempty"`
	PaymentRef string                   `bson:"paymentRef,omitempty"`
}

type ScoringResult struct {
	ID         primitive.ObjectID     `bson:"_id,omitempty"`
	LoanID     primitive.ObjectID     `bson:"loanId"`
	CustomerID primitive.ObjectID     `bson:"customerId"`
	BankCode   string                 `bson:"bankCode"`
	Decision   consts.ScoringDecision `bson:"decision"`
	FinalScore float64                `bson:"finalScore"`
	Risk       consts.RiskBand        `bson:"risk"`
	Factors    map[string]float64     `bson:"factors"`
	Reason     string                 `bson:"reason,omitempty"`
	CreatedAt  time.Time              `bson:"createdAt"`
}

// BankPartner is the admin-maintained connectivity record for one bank.
type BankPartner struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Code           string             `bson:"code" validate:"required,alphanum,max=16"`
	Name           string             `bson:"name" validate:"required"`
	Adapter        string             `bson:"adapter" validate:"required,oneof=bci bim"`
	BaseURL        string             `bson:"baseUrl" validate:"required,url"`
	APIKey         string             `bson:"apiKey" validate:"required"`
	Endpoints      map[string]string  `bson:"endpoints,omitempty"`
	TimeoutSeconds int                `bson:"timeoutSeconds" validate:"gte=1,lte=60"`
	MaxRetries     int                `bson:"maxRetries" validate:"gte=0,lte=10"`
	Account        string             `bson:"account,omitempty"`
	Active         bool               `bson:"active"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

// BankRecord is the bank-side KYC view of one employee/customer, refreshed by syncEmployees.
type BankRecord struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	BankCode      string             `bson:"bankCode"`
	NUIT          string             `bson:"nuit"`
	Name          string             `bson:"name"`
	PhoneNumber   string             `bson:"phoneNumber"`
	BINumber      string             `bson:"biNumber"`
	Employer      string             `bson:"employer"`
	Salary        float64            `bson:"salary"`
	ApprovedLimit float64            `bson:"approvedLimit"`
	CreditScore   int                `bson:"creditScore"`
	ActiveDebt    float64            `bson:"activeDebt"`
	AccountActive bool               `bson:"accountActive"`
	SyncedAt      time.Time          `bson:"syncedAt"`
}
