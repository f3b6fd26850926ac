package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/downstream/wallet"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/utils"
	"payja-lending/internal/service/crossvalidation"
	"payja-lending/internal/service/interfaces"
	"payja-lending/internal/service/loans"
	"payja-lending/internal/service/settlement"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Request struct {
	SessionID   string `json:"sessionId"`
	PhoneNumber string `json:"phoneNumber"`
	UserInput   string `json:"userInput"`
}

type Response struct {
	Reply       string `json:"reply"`
	ShouldClose bool   `json:"shouldClose"`
}

type IdentityValidator interface {
	Validate(ctx context.Context, c crossvalidation.Candidate) (*crossvalidation.Result, error)
}

type SubscriberLookup interface {
	LookupSubscriber(ctx context.Context, phoneNumber string) (*wallet.Subscriber, error)
}

// LoanGateway is the part of *loans.LoanGatewayService the menu drives.
type LoanGateway interface {
	CreateLoan(ctx context.Context, req loans.LoanRequest) (*models.Loan, error)
	Decide(ctx context.Context, customer *models.Customer, loan *models.Loan) (*models.Loan, *models.ScoringResult, error)
	LatestLoan(ctx context.Context, customerID primitive.ObjectID) (*models.Loan, error)
	HasOpenLoan(ctx context.Context, customerID primitive.ObjectID) (bool, error)
}

type Disburser interface {
	Disburse(ctx context.Context, loanID primitive.ObjectID) (*settlement.Result, error)
}

type Dependencies struct {
	Sessions    interfaces.SessionRepositoryInterface
	Customers   interfaces.CustomerRepositoryInterface
	Banks       interfaces.BankPartnerRepositoryInterface
	Transactor  interfaces.Transactor
	ReplyCache  interfaces.RedisStoreOperations
	Validator   IdentityValidator
	Subscribers SubscriberLookup
	Loans       LoanGateway
	// Disburser is optional; without it approved loans wait for the disburse endpoint.
	Disburser Disburser
	Sms       interfaces.SmsSender
}

type SessionEngine struct {
	deps    Dependencies
	cfg     config.SessionConfig
	loanCfg config.LoanConfig
	replies *replyCache
	now     func() time.Time
}

func NewSessionEngine(deps Dependencies, cfg config.SessionConfig, loanCfg config.LoanConfig) *SessionEngine {
	return &SessionEngine{
		deps:    deps,
		cfg:     cfg,
		loanCfg: loanCfg,
		replies: newReplyCache(deps.ReplyCache, cfg.ReplyCacheTTL()),
		now:     time.Now,
	}
}

// turn is everything a step handler may look at for one request.
type turn struct {
	session  *models.Session
	customer *models.Customer
	now      time.Time
}

// outcome is what a step handler decided. A nil next with close unset keeps
// the session on its current step.
type outcome struct {
	reply     string
	next      stepState
	close     bool
	committed bool
}

func stay(reply string) outcome { return outcome{reply: reply} }

func advance(next stepState, reply string) outcome { return outcome{reply: reply, next: next} }

func closeWith(reply string) outcome { return outcome{reply: reply, close: true} }

// HandleRequest serves one inbound USSD round-trip. Errors are returned only
// for malformed requests and storage failures before a session is resolved;
// everything after that produces a reply.
func (e *SessionEngine) HandleRequest(ctx context.Context, req Request) (*Response, error) {
	phone, err := utils.CleanMSISDN(req.PhoneNumber)
	if err != nil {
		return nil, err
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: sessionId is required", consts.ErrorInvalidRequest)
	}
	input := strings.TrimSpace(req.UserInput)
	now := e.now().UTC()

	sess, err := e.deps.Sessions.FindBySessionID(ctx, sessionID)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if sess != nil && sess.PhoneNumber == phone && input != "" {
		if reply, ok := e.redelivered(sess, input, now); ok {
			logger.CtxInfo(ctx, log_messages.SessionDuplicateInput,
				zap.String("session_id", sessionID),
				zap.String("step", string(sess.Step)),
			)
			return &Response{Reply: reply}, nil
		}
		if cached, ok := e.replies.lookup(ctx, sessionID, input, sess); ok {
			logger.CtxInfo(ctx, log_messages.SessionDuplicateInput, zap.String("session_id", sessionID))
			return cached, nil
		}
	}

	customer, err := e.findCustomer(ctx, phone)
	if err != nil {
		return nil, err
	}

	if sess == nil || !sess.Active || sess.PhoneNumber != phone {
		var created bool
		sess, created, err = e.resolve(ctx, sessionID, phone, customer, now)
		if err != nil {
			return nil, err
		}
		if created {
			input = ""
		}
	}

	resp := e.runSafely(ctx, sess, customer, input, now)
	if input != "" {
		e.replies.remember(ctx, sessionID, input, sess, resp)
	}
	return &resp, nil
}

func (e *SessionEngine) findCustomer(ctx context.Context, phone string) (*models.Customer, error) {
	c, err := e.deps.Customers.FindByPhone(ctx, phone)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	return c, err
}

// redelivered reports whether input repeats the turn the session just took.
// A gateway retry arrives within the duplicate window and finds the session on
// the step that turn left it on; it gets the same reply and the step handler
// never sees it.
func (e *SessionEngine) redelivered(sess *models.Session, input string, now time.Time) (string, bool) {
	last := sess.LastTurn
	window := e.cfg.DuplicateWindow()
	if !sess.Active || last == nil || window <= 0 {
		return "", false
	}
	if last.Input != input || last.Step != sess.Step {
		return "", false
	}
	if age := now.Sub(last.At); age < 0 || age > window {
		return "", false
	}
	return last.Reply, true
}

// resolve finds the session to continue when the presented id is unknown: a
// code-pending session for the same phone is re-bound to the new id, otherwise
// a fresh session is started and any older active one for the phone is retired.
func (e *SessionEngine) resolve(
	ctx context.Context,
	sessionID, phone string,
	customer *models.Customer,
	now time.Time,
) (*models.Session, bool, error) {
	dormant, err := e.deps.Sessions.FindReacquirable(ctx, phone, now)
	switch {
	case err == nil:
		if err := e.deps.Sessions.Rebind(ctx, dormant.ID, sessionID, now); err != nil {
			return nil, false, err
		}
		logger.CtxInfo(ctx, log_messages.SessionReacquired,
			zap.String("session_id", sessionID),
			zap.String("previous_session_id", dormant.SessionID),
		)
		dormant.SessionID = sessionID
		dormant.LastActivityAt = now
		return dormant, false, nil
	case !errors.Is(err, mongo.ErrNoDocuments):
		return nil, false, err
	}

	var first stepState = initState{}
	if customer != nil && customer.Verified {
		first = mainState{}
	}
	raw, err := encodeState(first)
	if err != nil {
		return nil, false, err
	}
	sess := &models.Session{
		SessionID:      sessionID,
		PhoneNumber:    phone,
		Step:           first.forStep(),
		State:          raw,
		Active:         true,
		StartedAt:      now,
		LastActivityAt: now,
	}
	if _, err := e.deps.Sessions.Create(ctx, sess); err != nil {
		return nil, false, err
	}
	if n, err := e.deps.Sessions.DeactivateOthers(ctx, phone, sess.ID, now); err != nil {
		logger.CtxWarn(ctx, "Failed to deactivate older sessions", zap.String("phone", phone), zap.Error(err))
	} else if n > 0 {
		logger.CtxDebug(ctx, "Older sessions deactivated", zap.Int64("count", n))
	}
	logger.CtxInfo(ctx, log_messages.SessionCreated,
		zap.String("session_id", sessionID),
		zap.String("step", string(sess.Step)),
	)
	return sess, true, nil
}

// runSafely runs the step and turns any failure, panics included, into a
// closed session and a generic reply.
func (e *SessionEngine) runSafely(ctx context.Context, sess *models.Session, customer *models.Customer, input string, now time.Time) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			logger.CtxError(ctx, log_messages.SessionHandlerPanic, fmt.Errorf("%v", r),
				zap.String("session_id", sess.SessionID),
				zap.String("step", string(sess.Step)),
				zap.Stack("stack"),
			)
			resp = e.fail(ctx, sess, now)
		}
	}()

	hctx := ctx
	if timeout := e.cfg.HandlerTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		hctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := e.ProcessStep(hctx, sess, customer, input, now)
	if err != nil {
		logger.CtxError(ctx, log_messages.SessionHandlerFailure, err,
			zap.String("session_id", sess.SessionID),
			zap.String("step", string(sess.Step)),
		)
		return e.fail(ctx, sess, now)
	}
	return resp
}

// ProcessStep runs the handler for the session's current step and persists
// the result as one write.
func (e *SessionEngine) ProcessStep(
	ctx context.Context,
	sess *models.Session,
	customer *models.Customer,
	input string,
	now time.Time,
) (Response, error) {
	h, ok := steps[sess.Step]
	if !ok {
		return Response{}, fmt.Errorf("%w: unknown step %q", consts.ErrorSessionStateCorrupt, sess.Step)
	}

	from := sess.Step
	t := &turn{session: sess, customer: customer, now: now}
	out, err := h.run(ctx, e, t, input)
	if err != nil {
		return Response{}, err
	}
	resp := Response{Reply: out.reply, ShouldClose: out.close}
	if out.committed {
		return resp, nil
	}

	switch {
	case out.close:
		sess.Active = false
		sess.EndedAt = &now
	case out.next != nil:
		if successors[sess.Step] != out.next.forStep() {
			return Response{}, fmt.Errorf("%w: %s cannot advance to %s",
				consts.ErrorSessionStateCorrupt, sess.Step, out.next.forStep())
		}
		raw, err := encodeState(out.next)
		if err != nil {
			return Response{}, err
		}
		sess.Step = out.next.forStep()
		sess.State = raw
	}
	sess.LastActivityAt = now
	sess.LastTurn = nil
	if input != "" {
		sess.LastTurn = &models.SessionTurn{
			Input:    input,
			FromStep: from,
			Step:     sess.Step,
			Reply:    resp.Reply,
			At:       now,
		}
	}

	if err := e.deps.Sessions.Save(ctx, sess); err != nil {
		logger.CtxError(ctx, log_messages.SessionPersistFailure, err, zap.String("session_id", sess.SessionID))
		return Response{}, err
	}
	if out.close {
		logger.CtxInfo(ctx, log_messages.SessionClosed,
			zap.String("session_id", sess.SessionID),
			zap.String("step", string(sess.Step)),
		)
	}
	return resp, nil
}

// fail closes the session so the next request starts clean.
func (e *SessionEngine) fail(ctx context.Context, sess *models.Session, now time.Time) Response {
	clearOTP(sess)
	sess.Active = false
	sess.EndedAt = &now
	sess.LastActivityAt = now
	if err := e.deps.Sessions.Save(context.WithoutCancel(ctx), sess); err != nil {
		logger.CtxError(ctx, log_messages.SessionPersistFailure, err, zap.String("session_id", sess.SessionID))
	}
	return Response{Reply: consts.UssdGenericError, ShouldClose: true}
}

func clearOTP(sess *models.Session) {
	sess.OTPHash = ""
	sess.OTPExpiresAt = nil
}
