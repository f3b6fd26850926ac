package session

import (
	"context"
	"strings"

	"payja-lending/internal/pkg/consts"
)

type handler interface {
	run(ctx context.Context, e *SessionEngine, t *turn, input string) (outcome, error)
}

// step binds a step's prompt and input handler to its state type. Empty input
// re-shows the prompt without touching the state.
type step[S stepState] struct {
	prompt func(ctx context.Context, e *SessionEngine, t *turn, st S) (string, error)
	handle func(ctx context.Context, e *SessionEngine, t *turn, st S, input string) (outcome, error)
}

func (s step[S]) run(ctx context.Context, e *SessionEngine, t *turn, input string) (outcome, error) {
	st, err := decodeState[S](t.session.State)
	if err != nil {
		return outcome{}, err
	}
	if strings.TrimSpace(input) == "" {
		reply, err := s.prompt(ctx, e, t, st)
		if err != nil {
			return outcome{}, err
		}
		return stay(reply), nil
	}
	return s.handle(ctx, e, t, st, strings.TrimSpace(input))
}

// retry keeps the session on its step, showing what was wrong above the prompt.
func retry(msg, prompt string) outcome {
	return stay(msg + "\n" + prompt)
}

func fixed[S stepState](text string) func(context.Context, *SessionEngine, *turn, S) (string, error) {
	return func(context.Context, *SessionEngine, *turn, S) (string, error) { return text, nil }
}

var steps map[consts.SessionStep]handler

func init() {
	steps = map[consts.SessionStep]handler{
		consts.StepInit:             initStep,
		consts.StepNUITInput:        nuitStep,
		consts.StepBIInput:          biStep,
		consts.StepInstitutionInput: institutionStep,
		consts.StepOTPVerify:        otpStep,
		consts.StepMain:             mainStep,
		consts.StepAmount:           amountStep,
		consts.StepTerm:             termStep,
		consts.StepPurpose:          purposeStep,
		consts.StepBankSelect:       bankSelectStep,
		consts.StepTerms:            termsStep,
		consts.StepConfirm:          confirmStep,
	}
}
