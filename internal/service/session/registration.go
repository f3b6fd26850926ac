package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/pkg/utils"
	"payja-lending/internal/service/crossvalidation"

	"go.uber.org/zap"
)

var initStep = step[initState]{
	prompt: fixed[initState](consts.UssdWelcome),
	handle: func(_ context.Context, _ *SessionEngine, _ *turn, _ initState, input string) (outcome, error) {
		switch input {
		case "1":
			return advance(nuitInputState{}, consts.UssdAskNUIT), nil
		case "0":
			return closeWith(consts.UssdGoodbye), nil
		}
		return retry(consts.UssdInvalidOption, consts.UssdWelcome), nil
	},
}

var nuitStep = step[nuitInputState]{
	prompt: fixed[nuitInputState](consts.UssdAskNUIT),
	handle: func(_ context.Context, _ *SessionEngine, _ *turn, _ nuitInputState, input string) (outcome, error) {
		if !utils.IsValidNUIT(input) {
			return retry(consts.UssdInvalidNUIT, consts.UssdAskNUIT), nil
		}
		return advance(biInputState{NUIT: input}, consts.UssdAskBI), nil
	},
}

var biStep = step[biInputState]{
	prompt: fixed[biInputState](consts.UssdAskBI),
	handle: func(_ context.Context, _ *SessionEngine, _ *turn, st biInputState, input string) (outcome, error) {
		if !utils.IsValidBINumber(input) {
			return retry(consts.UssdInvalidBI, consts.UssdAskBI), nil
		}
		return advance(institutionInputState{NUIT: st.NUIT, BINumber: strings.ToUpper(input)}, consts.UssdAskInstitution), nil
	},
}

var institutionStep = step[institutionInputState]{
	prompt: fixed[institutionInputState](consts.UssdAskInstitution),
	handle: handleInstitution,
}

// handleInstitution closes the identity form: the wallet name and the typed
// fields are matched against the bank's records, and an approved caller is
// sent a one-time code.
func handleInstitution(ctx context.Context, e *SessionEngine, t *turn, st institutionInputState, input string) (outcome, error) {
	institution := strings.Join(strings.Fields(input), " ")
	if len([]rune(institution)) < consts.MinInstitutionLn {
		return retry(consts.UssdInvalidInst, consts.UssdAskInstitution), nil
	}

	var name string
	if e.deps.Subscribers != nil {
		sub, err := e.deps.Subscribers.LookupSubscriber(ctx, t.session.PhoneNumber)
		if err != nil {
			// matching can still pass on the remaining fields
			logger.CtxWarn(ctx, "Wallet subscriber lookup failed", zap.Error(err))
		} else {
			name = sub.Name
		}
	}

	result, err := e.deps.Validator.Validate(ctx, crossvalidation.Candidate{
		NUIT:        st.NUIT,
		BINumber:    st.BINumber,
		Name:        name,
		PhoneNumber: t.session.PhoneNumber,
		Institution: institution,
	})
	if err != nil {
		return outcome{}, err
	}
	if !result.Approved {
		if result.Reason == crossvalidation.ReasonNotFound {
			return closeWith(consts.UssdNotFoundAtBank), nil
		}
		return closeWith(consts.UssdIdentityMismatch), nil
	}

	code, err := generateOTP(e.cfg.OTPLength)
	if err != nil {
		return outcome{}, err
	}
	hash, err := hashOTP(code, e.cfg.OTPHashCost)
	if err != nil {
		return outcome{}, err
	}
	expiresAt := t.now.Add(e.cfg.OTPTTL())
	t.session.OTPHash = hash
	t.session.OTPExpiresAt = &expiresAt
	t.session.OTPAttempts = 0

	next := otpVerifyState{
		NUIT:        st.NUIT,
		BINumber:    st.BINumber,
		Institution: institution,
		Name:        name,
		MatchScore:  result.MatchScore,
		CreditLimit: result.CreditLimit,
	}
	if r := result.Record; r != nil {
		next.BankCode = r.BankCode
		next.Employer = r.Employer
		next.Salary = r.Salary
		if next.Name == "" {
			next.Name = r.Name
		}
	}

	minutes := int(e.cfg.OTPTTL() / time.Minute)
	e.deps.Sms.SendSms(ctx, t.session.PhoneNumber, fmt.Sprintf(consts.SmsOTP, code, minutes), consts.SmsCategoryOTP)
	return advance(next, consts.UssdAskOTP), nil
}

var otpStep = step[otpVerifyState]{
	prompt: fixed[otpVerifyState](consts.UssdAskOTP),
	handle: handleOTP,
}

// handleOTP checks the code. An expired code or the last allowed miss closes
// the session with the code wiped; success registers the customer and closes
// the session in one transaction.
func handleOTP(ctx context.Context, e *SessionEngine, t *turn, st otpVerifyState, input string) (outcome, error) {
	sess := t.session
	if sess.OTPHash == "" || sess.OTPExpiresAt == nil || !t.now.Before(*sess.OTPExpiresAt) {
		logger.CtxInfo(ctx, log_messages.OTPExpired, zap.String("session_id", sess.SessionID))
		clearOTP(sess)
		return closeWith(consts.UssdOTPExpired), nil
	}

	if !otpMatches(sess.OTPHash, input) {
		sess.OTPAttempts++
		if sess.OTPAttempts >= e.cfg.OTPMaxAttempts {
			logger.CtxWarn(ctx, log_messages.OTPLockout,
				zap.String("session_id", sess.SessionID),
				zap.Int("attempts", sess.OTPAttempts),
			)
			clearOTP(sess)
			return closeWith(consts.UssdOTPLocked), nil
		}
		return stay(fmt.Sprintf(consts.UssdWrongOTP, e.cfg.OTPMaxAttempts-sess.OTPAttempts)), nil
	}

	customer := &models.Customer{
		PhoneNumber: sess.PhoneNumber,
		Name:        st.Name,
		NUIT:        st.NUIT,
		BINumber:    st.BINumber,
		Institution: st.Institution,
		Verified:    true,
		CreditLimit: st.CreditLimit,
		MatchScore:  st.MatchScore,
		BankCode:    st.BankCode,
		Employer:    st.Employer,
		Salary:      st.Salary,
		Channel:     e.loanCfg.Channel,
		VerifiedAt:  &t.now,
		CreatedAt:   t.now,
		UpdatedAt:   t.now,
	}

	clearOTP(sess)
	sess.Active = false
	sess.EndedAt = &t.now
	sess.LastActivityAt = t.now

	var saved *models.Customer
	err := e.deps.Transactor.WithTransaction(ctx, func(tctx context.Context) error {
		c, err := e.deps.Customers.Upsert(tctx, customer)
		if err != nil {
			return err
		}
		saved = c
		return e.deps.Sessions.Save(tctx, sess)
	})
	if err != nil {
		return outcome{}, err
	}

	logger.CtxInfo(ctx, log_messages.OTPVerified,
		zap.String("session_id", sess.SessionID),
		zap.String("customer_id", saved.ID.Hex()),
		zap.Float64("credit_limit", saved.CreditLimit),
	)
	e.deps.Sms.SendSms(ctx, sess.PhoneNumber, fmt.Sprintf(consts.SmsRegistered, saved.CreditLimit), consts.SmsCategoryRegistration)
	return outcome{reply: fmt.Sprintf(consts.UssdRegistered, saved.CreditLimit), close: true, committed: true}, nil
}
