package consts

// SessionStep is the alphabet shared by the registration and loan-request families.
type SessionStep string

const (
	StepInit             SessionStep = "INIT"
	StepNUITInput        SessionStep = "NUIT_INPUT"
	StepBIInput          SessionStep = "BI_INPUT"
	StepInstitutionInput SessionStep = "INSTITUTION_INPUT"
	StepOTPVerify        SessionStep = "OTP_VERIFY"

	StepMain       SessionStep = "MAIN"
	StepAmount     SessionStep = "AMOUNT"
	StepTerm       SessionStep = "TERM"
	StepPurpose    SessionStep = "PURPOSE"
	StepBankSelect SessionStep = "BANK_SELECT"
	StepTerms      SessionStep = "TERMS"
	StepConfirm    SessionStep = "CONFIRM"
)

func (s SessionStep) IsRegistration() bool {
	switch s {
	case StepInit, StepNUITInput, StepBIInput, StepInstitutionInput, StepOTPVerify:
		return true
	}
	return false
}

const (
	ReplyCacheKeyPrefix      = "ussd:reply:"
	SettlementLockKeyPrefix  = "settlement:lock:"
	SessionEndedRetentionDay = 30
)
