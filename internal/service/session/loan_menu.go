package session

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/utils"
	"payja-lending/internal/service/loans"
	"payja-lending/internal/service/pricing"

	"go.uber.org/zap"
)

var purposeLabels = map[string]string{
	"PESSOAL":  "Pessoal",
	"NEGOCIO":  "Negocio",
	"EDUCACAO": "Educacao",
	"SAUDE":    "Saude",
	"OUTRO":    "Outro",
}

var mainStep = step[mainState]{
	prompt: fixed[mainState](consts.UssdMainMenu),
	handle: handleMain,
}

func handleMain(ctx context.Context, e *SessionEngine, t *turn, _ mainState, input string) (outcome, error) {
	c := t.customer
	if c == nil || !c.Verified {
		return closeWith(consts.UssdGenericError), nil
	}

	switch input {
	case "1":
		open, err := e.deps.Loans.HasOpenLoan(ctx, c.ID)
		if err != nil {
			return outcome{}, err
		}
		if open {
			return closeWith(consts.UssdOpenLoanExists), nil
		}
		if c.CreditLimit < e.loanCfg.MinAmount || c.CreditLimit <= 0 {
			return closeWith(consts.UssdNoLimit), nil
		}
		next := amountState{CreditLimit: c.CreditLimit}
		return advance(next, amountPrompt(e, next)), nil
	case "2":
		return closeWith(fmt.Sprintf(consts.UssdYourLimit, c.CreditLimit)), nil
	case "3":
		loan, err := e.deps.Loans.LatestLoan(ctx, c.ID)
		if err != nil {
			return outcome{}, err
		}
		if loan == nil {
			return closeWith(consts.UssdNoLoans), nil
		}
		return closeWith(fmt.Sprintf(consts.UssdLoanStatus, loan.Reference, loan.Amount, loan.TotalAmount, loan.Status)), nil
	case "0":
		return closeWith(consts.UssdGoodbye), nil
	}
	return retry(consts.UssdInvalidOption, consts.UssdMainMenu), nil
}

func amountPrompt(e *SessionEngine, st amountState) string {
	return fmt.Sprintf(consts.UssdAskAmount, e.loanCfg.MinAmount, st.CreditLimit)
}

var amountStep = step[amountState]{
	prompt: func(_ context.Context, e *SessionEngine, _ *turn, st amountState) (string, error) {
		return amountPrompt(e, st), nil
	},
	handle: func(_ context.Context, e *SessionEngine, _ *turn, st amountState, input string) (outcome, error) {
		amount, ok := utils.ParseAmount(input)
		if !ok || amount < e.loanCfg.MinAmount || amount > st.CreditLimit {
			return retry(consts.UssdInvalidAmount, amountPrompt(e, st)), nil
		}
		return advance(termState{Amount: amount}, termPrompt()), nil
	},
}

func termPrompt() string {
	var sb strings.Builder
	sb.WriteString(consts.UssdAskTerm)
	for i, term := range pricing.Terms {
		fmt.Fprintf(&sb, "\n%d. %s (%.0f%%)", i+1, term.Label, term.Rate*100)
	}
	return sb.String()
}

var termStep = step[termState]{
	prompt: func(context.Context, *SessionEngine, *turn, termState) (string, error) {
		return termPrompt(), nil
	},
	handle: func(_ context.Context, _ *SessionEngine, _ *turn, st termState, input string) (outcome, error) {
		choice, ok := utils.ParseMenuChoice(input, len(pricing.Terms))
		if !ok {
			return retry(consts.UssdInvalidOption, termPrompt()), nil
		}
		term, ok := pricing.TermByChoice(choice)
		if !ok {
			return retry(consts.UssdInvalidOption, termPrompt()), nil
		}
		return advance(purposeState{Amount: st.Amount, TermCode: term.Code}, purposePrompt()), nil
	},
}

func purposePrompt() string {
	var sb strings.Builder
	sb.WriteString(consts.UssdAskPurpose)
	for i, p := range consts.LoanPurposes {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, purposeLabels[p])
	}
	return sb.String()
}

var purposeStep = step[purposeState]{
	prompt: func(context.Context, *SessionEngine, *turn, purposeState) (string, error) {
		return purposePrompt(), nil
	},
	handle: handlePurpose,
}

// handlePurpose snapshots the active partner banks into the next state so the
// numbered list the caller sees stays stable while they choose.
func handlePurpose(ctx context.Context, e *SessionEngine, _ *turn, st purposeState, input string) (outcome, error) {
	choice, ok := utils.ParseMenuChoice(input, len(consts.LoanPurposes))
	if !ok {
		return retry(consts.UssdInvalidOption, purposePrompt()), nil
	}

	partners, err := e.deps.Banks.FindActive(ctx)
	if err != nil {
		return outcome{}, err
	}
	if len(partners) == 0 {
		return closeWith(consts.UssdNoBanks), nil
	}
	next := bankSelectState{
		Amount:   st.Amount,
		TermCode: st.TermCode,
		Purpose:  consts.LoanPurposes[choice-1],
	}
	for _, p := range partners {
		next.Banks = append(next.Banks, bankOption{Code: p.Code, Name: p.Name})
	}
	return advance(next, bankPrompt(next)), nil
}

func bankPrompt(st bankSelectState) string {
	var sb strings.Builder
	sb.WriteString(consts.UssdAskBank)
	for i, b := range st.Banks {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, b.Name)
	}
	return sb.String()
}

var bankSelectStep = step[bankSelectState]{
	prompt: func(_ context.Context, _ *SessionEngine, _ *turn, st bankSelectState) (string, error) {
		return bankPrompt(st), nil
	},
	handle: func(_ context.Context, _ *SessionEngine, _ *turn, st bankSelectState, input string) (outcome, error) {
		choice, ok := utils.ParseMenuChoice(input, len(st.Banks))
		if !ok {
			return retry(consts.UssdInvalidOption, bankPrompt(st)), nil
		}
		b := st.Banks[choice-1]
		next := termsState{
			Amount:   st.Amount,
			TermCode: st.TermCode,
			Purpose:  st.Purpose,
			BankCode: b.Code,
			BankName: b.Name,
		}
		prompt, err := termsPrompt(next)
		if err != nil {
			return outcome{}, err
		}
		return advance(next, prompt), nil
	},
}

func termsPrompt(st termsState) (string, error) {
	q, err := pricing.QuoteFor(st.Amount, st.TermCode)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(consts.UssdTermsSummary,
		q.Principal, q.Interest, q.TotalAmount, len(q.Installments), q.InstallmentAmount), nil
}

var termsStep = step[termsState]{
	prompt: func(_ context.Context, _ *SessionEngine, _ *turn, st termsState) (string, error) {
		return termsPrompt(st)
	},
	handle: func(_ context.Context, _ *SessionEngine, _ *turn, st termsState, input string) (outcome, error) {
		switch input {
		case "1":
			next := confirmState(st)
			return advance(next, confirmPrompt(next)), nil
		case "2":
			return closeWith(consts.UssdCancelled), nil
		}
		prompt, err := termsPrompt(st)
		if err != nil {
			return outcome{}, err
		}
		return retry(consts.UssdInvalidOption, prompt), nil
	},
}

func confirmPrompt(st confirmState) string {
	return fmt.Sprintf(consts.UssdAskConfirm, st.Amount, st.BankName)
}

var confirmStep = step[confirmState]{
	prompt: func(_ context.Context, _ *SessionEngine, _ *turn, st confirmState) (string, error) {
		return confirmPrompt(st), nil
	},
	handle: handleConfirm,
}

// handleConfirm creates the loan, has it scored and, when configured,
// settles it straight away. The loan is keyed by the session row, so a
// repeated confirmation finds the loan instead of creating another.
func handleConfirm(ctx context.Context, e *SessionEngine, t *turn, st confirmState, input string) (outcome, error) {
	switch input {
	case "1":
	case "2":
		return closeWith(consts.UssdCancelled), nil
	default:
		return retry(consts.UssdInvalidOption, confirmPrompt(st)), nil
	}
	if t.customer == nil {
		return outcome{}, consts.ErrorCustomerNotFound
	}

	loan, err := e.deps.Loans.CreateLoan(ctx, loans.LoanRequest{
		Customer:  t.customer,
		SessionID: t.session.ID.Hex(),
		Amount:    st.Amount,
		TermCode:  st.TermCode,
		Purpose:   st.Purpose,
		BankCode:  st.BankCode,
	})
	if err != nil {
		return outcome{}, err
	}

	loan, _, err = e.deps.Loans.Decide(ctx, t.customer, loan)
	if err != nil {
		// the loan stays ANALYZING and is picked up again from the back office
		logger.CtxError(ctx, "Loan scoring failed", err, zap.String("loan_id", loan.ID.Hex()))
		return closeWith(fmt.Sprintf(consts.UssdLoanPending, loan.Reference)), nil
	}

	switch loan.Status {
	case consts.LoanStatusRejected:
		return closeWith(fmt.Sprintf(consts.UssdLoanRejected, loan.Reference)), nil
	case consts.LoanStatusAnalyzing:
		return closeWith(fmt.Sprintf(consts.UssdLoanPending, loan.Reference)), nil
	}

	if !e.loanCfg.AutoDisburse || e.deps.Disburser == nil || loan.Status != consts.LoanStatusApproved {
		return closeWith(fmt.Sprintf(consts.UssdLoanApproved, loan.Reference)), nil
	}
	res, err := e.deps.Disburser.Disburse(ctx, loan.ID)
	if err != nil {
		if !errors.Is(err, consts.ErrorWalletCreditFailed) {
			logger.CtxError(ctx, "Automatic disbursement failed", err, zap.String("loan_id", loan.ID.Hex()))
		}
		return closeWith(fmt.Sprintf(consts.UssdLoanApproved, loan.Reference)), nil
	}
	return closeWith(fmt.Sprintf(consts.UssdLoanDisbursed, loan.Reference, res.CustomerAmount)), nil
}
