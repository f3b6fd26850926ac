package settlement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/bank"
	"payja-lending/internal/pkg/downstream/wallet"
	"payja-lending/internal/pkg/events"
	"payja-lending/internal/pkg/gcs"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/otel"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/interfaces"
	"payja-lending/internal/service/pricing"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// StatusTransitioner advances a loan through its lifecycle table.
// Satisfied by *loans.LoanGatewayService.
type StatusTransitioner interface {
	TransitionStatus(ctx context.Context, loanID primitive.ObjectID, to consts.LoanStatus) (*models.Loan, error)
}

type WalletCreditor interface {
	CreditWallet(ctx context.Context, req wallet.CreditRequest) (*wallet.CreditResult, error)
}

type Result struct {
	LoanID          string               `json:"loanId"`
	Reference       string               `json:"reference"`
	Status          consts.LoanStatus    `json:"status"`
	CustomerAmount  float64              `json:"customerAmount"`
	BankTransaction string               `json:"bankTransactionId,omitempty"`
	WalletCreditRef string               `json:"walletCreditRef,omitempty"`
	AlreadySettled  bool                 `json:"alreadySettled"`
	Transactions    []models.Transaction `json:"transactions"`
}

// Receipt is the archived proof of one completed settlement.
type Receipt struct {
	LoanID          string                 `json:"loanId"`
	Reference       string                 `json:"reference"`
	CustomerPhone   string                 `json:"customerPhone"`
	BankCode        string                 `json:"bankCode"`
	Principal       float64                `json:"principal"`
	Commission      models.CommissionRates `json:"commission"`
	BankTransaction string                 `json:"bankTransactionId,omitempty"`
	WalletCreditRef string                 `json:"walletCreditRef"`
	Transactions    []models.Transaction   `json:"transactions"`
	SettledAt       time.Time              `json:"settledAt"`
}

type Dependencies struct {
	Loans        interfaces.LoanRepositoryInterface
	Transactions interfaces.TransactionRepositoryInterface
	Installments interfaces.InstallmentRepositoryInterface
	Locks        interfaces.RedisStoreOperations
	Banks        bank.Resolver
	Wallet       WalletCreditor
	Status       StatusTransitioner
	Archive      interfaces.ReceiptArchiver
	Sms          interfaces.SmsSender
	Events       interfaces.EventPublisher
}

type SettlementService struct {
	deps   Dependencies
	cfg    config.SettlementConfig
	tracer trace.Tracer
	now    func() time.Time
}

func NewSettlementService(deps Dependencies, cfg config.SettlementConfig) *SettlementService {
	return &SettlementService{
		deps:   deps,
		cfg:    cfg,
		tracer: otel.GetTracer(),
		now:    time.Now,
	}
}

// Disburse walks an APPROVED loan through the six ledger hops and credits the
// customer's wallet. It is safe to call again for the same loan: completed hops
// are never recorded twice, missing hops are resumed, and a loan left DISBURSED
// by a failed wallet credit only retries the credit.
func (s *SettlementService) Disburse(ctx context.Context, loanID primitive.ObjectID) (*Result, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Disburse",
		trace.WithAttributes(attribute.String("loan.id", loanID.Hex())))
	defer span.End()

	result, err := s.disburse(ctx, loanID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (s *SettlementService) disburse(ctx context.Context, loanID primitive.ObjectID) (*Result, error) {
	release, err := s.acquire(ctx, loanID)
	if err != nil {
		return nil, err
	}
	defer release()

	loan, err := s.deps.Loans.FindByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, consts.ErrorLoanNotFound
		}
		return nil, err
	}

	switch loan.Status {
	case consts.LoanStatusApproved, consts.LoanStatusDisbursed:
	case consts.LoanStatusActive, consts.LoanStatusOverdue, consts.LoanStatusCompleted:
		txs, err := s.deps.Transactions.FindByLoan(ctx, loanID)
		if err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, log_messages.SettlementAlreadyComplete, zap.String("loan_id", loanID.Hex()))
		return s.result(loan, txs, true), nil
	default:
		return nil, fmt.Errorf("%w: loan %s is %s", consts.ErrorLoanNotApproved, loan.Reference, loan.Status)
	}

	logger.CtxInfo(ctx, log_messages.SettlementStarted,
		zap.String("loan_id", loanID.Hex()),
		zap.String("reference", loan.Reference),
		zap.String("status", string(loan.Status)),
		zap.Float64("amount", loan.Amount),
	)

	plan, err := PlanHops(loan.Amount, loan.Commission)
	if err != nil {
		return nil, err
	}

	bankTxID, err := s.recordHops(ctx, loan, plan)
	if err != nil {
		return nil, err
	}

	if loan.Status == consts.LoanStatusApproved {
		if err := s.advance(ctx, loan, consts.LoanStatusDisbursed); err != nil {
			return nil, err
		}
	}

	txs, err := s.deps.Transactions.FindByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if !Conserved(txs) {
		return nil, fmt.Errorf("%w: loan %s", consts.ErrorLedgerImbalance, loan.Reference)
	}

	result := s.result(loan, txs, false)
	result.BankTransaction = bankTxID

	var credit *wallet.CreditResult
	if loan.WalletCreditRef != "" {
		// the wallet already took the money; only activation is left
		credit = &wallet.CreditResult{TransactionID: loan.WalletCreditRef}
		if loan.WalletCreditedAt != nil {
			credit.CreditedAt = *loan.WalletCreditedAt
		}
		logger.CtxInfo(ctx, log_messages.SettlementWalletAlreadyCredited,
			zap.String("loan_id", loanID.Hex()),
			zap.String("wallet_credit_ref", loan.WalletCreditRef),
		)
	} else {
		credit, err = s.creditWallet(ctx, loan, plan[len(plan)-1].Amount)
		if err != nil {
			return result, err
		}
	}
	result.WalletCreditRef = credit.TransactionID

	if err := s.activate(ctx, loan, credit); err != nil {
		return result, err
	}
	result.Status = loan.Status

	s.deps.Sms.SendSms(ctx, loan.PhoneNumber,
		fmt.Sprintf(consts.SmsLoanDisbursed, result.CustomerAmount, loan.Reference), consts.SmsCategoryDisbursement)
	s.archive(ctx, loan, result)

	logger.CtxInfo(ctx, log_messages.SettlementCompleted,
		zap.String("loan_id", loanID.Hex()),
		zap.String("reference", loan.Reference),
		zap.Float64("customer_amount", result.CustomerAmount),
	)
	return result, nil
}

// acquire takes the per-loan lock. The returned func releases it only while
// this call still owns it.
func (s *SettlementService) acquire(ctx context.Context, loanID primitive.ObjectID) (func(), error) {
	key := consts.SettlementLockKeyPrefix + loanID.Hex()
	token := uuid.NewString()
	ok, err := s.deps.Locks.SetNX(ctx, key, token, time.Duration(s.cfg.LockTTLSeconds)*time.Second)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, consts.ErrorDisbursementInProgress
	}
	return func() {
		if _, err := s.deps.Locks.DeleteIfValue(context.WithoutCancel(ctx), key, token); err != nil {
			logger.CtxWarn(ctx, "Failed to release settlement lock", zap.String("key", key), zap.Error(err))
		}
	}, nil
}

// recordHops makes sure every planned hop exists and is COMPLETED. Only the
// first hop moves real money, through the bank adapter; a failure there is
// recorded on the hop and stops the walk.
func (s *SettlementService) recordHops(ctx context.Context, loan *models.Loan, plan []Hop) (string, error) {
	existing, err := s.deps.Transactions.FindByLoan(ctx, loan.ID)
	if err != nil {
		return "", err
	}
	byKey := make(map[hopKey]models.Transaction, len(existing))
	for _, tx := range existing {
		byKey[keyOf(tx)] = tx
	}

	var bankTxID string
	for _, hop := range plan {
		entry, found := byKey[hop.key()]
		if found && entry.Status == consts.TransactionCompleted {
			continue
		}
		if !found {
			created, err := s.insertHop(ctx, loan.ID, hop)
			if err != nil {
				return "", err
			}
			entry = *created
		}

		if hop.Sequence == 1 {
			id, err := s.requestBankDisbursement(ctx, loan, &entry)
			if err != nil {
				return "", err
			}
			bankTxID = id
		}

		if err := s.deps.Transactions.MarkCompleted(ctx, entry.ID, s.now().UTC()); err != nil {
			return "", err
		}
		logger.CtxInfo(ctx, log_messages.SettlementHopRecorded,
			zap.String("loan_id", loan.ID.Hex()),
			zap.Int("sequence", hop.Sequence),
			zap.String("from", string(hop.From)),
			zap.String("to", string(hop.To)),
			zap.Float64("amount", hop.Amount),
		)
	}
	return bankTxID, nil
}

func (s *SettlementService) insertHop(ctx context.Context, loanID primitive.ObjectID, hop Hop) (*models.Transaction, error) {
	entry := &models.Transaction{
		LoanID:            loanID,
		Sequence:          hop.Sequence,
		Type:              hop.Type,
		From:              hop.From,
		To:                hop.To,
		Amount:            hop.Amount,
		ExternalReference: uuid.NewString(),
		Status:            consts.TransactionPending,
		CreatedAt:         s.now().UTC(),
	}
	if _, err := s.deps.Transactions.Insert(ctx, entry); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		// a concurrent or earlier run got there first
		txs, ferr := s.deps.Transactions.FindByLoan(ctx, loanID)
		if ferr != nil {
			return nil, ferr
		}
		for _, tx := range txs {
			if keyOf(tx) == hop.key() {
				return &tx, nil
			}
		}
		return nil, err
	}
	return entry, nil
}

func (s *SettlementService) requestBankDisbursement(ctx context.Context, loan *models.Loan, entry *models.Transaction) (string, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.bankDisbursement",
		trace.WithAttributes(attribute.String("bank.code", loan.BankCode)))
	defer span.End()

	fail := func(err error) (string, error) {
		span.RecordError(err)
		logger.CtxError(ctx, log_messages.SettlementBankCallFailed, err,
			zap.String("loan_id", loan.ID.Hex()),
			zap.String("bank_code", loan.BankCode),
		)
		if merr := s.deps.Transactions.MarkFailed(ctx, entry.ID, err.Error(), s.now().UTC()); merr != nil {
			logger.CtxError(ctx, "Failed to record failed hop", merr, zap.String("loan_id", loan.ID.Hex()))
		}
		return "", fmt.Errorf("%w: %v", consts.ErrorBankDisbursementFailed, err)
	}

	adapter, err := s.deps.Banks.Adapter(ctx, loan.BankCode)
	if err != nil {
		return fail(err)
	}
	res, err := adapter.RequestDisbursement(ctx, bank.DisbursementRequest{
		Reference:   loan.Reference,
		Amount:      entry.Amount,
		Destination: s.cfg.PayjaAccount,
		PhoneNumber: loan.PhoneNumber,
	})
	if err != nil {
		return fail(err)
	}
	return res.TransactionID, nil
}

// advance moves the loan forward, accepting that another writer may already
// have done so.
func (s *SettlementService) advance(ctx context.Context, loan *models.Loan, to consts.LoanStatus) error {
	updated, err := s.deps.Status.TransitionStatus(ctx, loan.ID, to)
	if err == nil {
		loan.Status = updated.Status
		return nil
	}
	if !errors.Is(err, consts.ErrorStatusChanged) && !errors.Is(err, consts.ErrorInvalidStatusTransition) {
		return err
	}
	current, ferr := s.deps.Loans.FindByID(ctx, loan.ID)
	if ferr != nil {
		return ferr
	}
	if current.Status != to {
		return err
	}
	loan.Status = current.Status
	return nil
}

func (s *SettlementService) creditWallet(ctx context.Context, loan *models.Loan, amount float64) (*wallet.CreditResult, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.walletCredit")
	defer span.End()

	credit, err := s.deps.Wallet.CreditWallet(ctx, wallet.CreditRequest{
		Reference:   loan.Reference,
		PhoneNumber: loan.PhoneNumber,
		Amount:      amount,
	})
	if err == nil {
		return credit, nil
	}

	span.RecordError(err)
	logger.CtxError(ctx, log_messages.SettlementWalletCreditRetry, err,
		zap.String("loan_id", loan.ID.Hex()),
		zap.String("reference", loan.Reference),
	)
	s.deps.Events.Publish(ctx, events.LoanEvent{
		Type:        consts.EventWalletCreditFailed,
		LoanID:      loan.ID.Hex(),
		Reference:   loan.Reference,
		CustomerID:  loan.CustomerID.Hex(),
		PhoneNumber: loan.PhoneNumber,
		BankCode:    loan.BankCode,
		Status:      loan.Status,
		Amount:      amount,
		Details:     map[string]any{"error": err.Error()},
	})
	s.deps.Sms.SendSms(ctx, loan.PhoneNumber, fmt.Sprintf(consts.SmsCreditPending, loan.Reference), consts.SmsCategoryDisbursement)
	return nil, fmt.Errorf("%w: %v", consts.ErrorWalletCreditFailed, err)
}

// activate records the wallet credit, lays out the repayment schedule and
// moves the loan to ACTIVE.
func (s *SettlementService) activate(ctx context.Context, loan *models.Loan, credit *wallet.CreditResult) error {
	now := s.now().UTC()
	creditedAt := credit.CreditedAt
	if creditedAt.IsZero() {
		creditedAt = now
	}
	if err := s.deps.Loans.SetFields(ctx, loan.ID, bson.M{
		"walletCreditedAt": creditedAt.UTC(),
		"walletCreditRef":  credit.TransactionID,
		"updatedAt":        now,
	}); err != nil {
		return err
	}

	quote, err := pricing.QuoteFor(loan.Amount, loan.TermCode)
	if err != nil {
		return err
	}
	schedule, err := pricing.Schedule(quote, now)
	if err != nil {
		return err
	}
	installments := make([]models.Installment, 0, len(schedule))
	for _, inst := range schedule {
		installments = append(installments, models.Installment{
			LoanID:    loan.ID,
			Number:    inst.Number,
			Amount:    inst.Amount,
			Principal: inst.Principal,
			Interest:  inst.Interest,
			DueDate:   inst.DueDate,
			Status:    consts.InstallmentPending,
		})
	}
	if err := s.deps.Installments.CreateSchedule(ctx, installments); err != nil {
		return err
	}

	return s.advance(ctx, loan, consts.LoanStatusActive)
}

func (s *SettlementService) archive(ctx context.Context, loan *models.Loan, result *Result) {
	if s.deps.Archive == nil {
		return
	}
	receipt := Receipt{
		LoanID:          loan.ID.Hex(),
		Reference:       loan.Reference,
		CustomerPhone:   loan.PhoneNumber,
		BankCode:        loan.BankCode,
		Principal:       loan.Amount,
		Commission:      loan.Commission,
		BankTransaction: result.BankTransaction,
		WalletCreditRef: result.WalletCreditRef,
		Transactions:    result.Transactions,
		SettledAt:       s.now().UTC(),
	}
	err := s.deps.Archive.UploadJSON(ctx, "receipts/"+loan.Reference+".json", receipt)
	if err != nil && !errors.Is(err, gcs.ErrObjectExists) {
		logger.CtxError(ctx, "Failed to archive settlement receipt", err, zap.String("loan_id", loan.ID.Hex()))
	}
}

func (s *SettlementService) result(loan *models.Loan, txs []models.Transaction, already bool) *Result {
	r := &Result{
		LoanID:          loan.ID.Hex(),
		Reference:       loan.Reference,
		Status:          loan.Status,
		WalletCreditRef: loan.WalletCreditRef,
		AlreadySettled:  already,
		Transactions:    txs,
	}
	for _, tx := range txs {
		if tx.To == consts.PartyCustomer {
			r.CustomerAmount = tx.Amount
		}
	}
	return r
}
