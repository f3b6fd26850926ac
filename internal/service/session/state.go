package session

import (
	"fmt"

	"payja-lending/internal/pkg/consts"

	"go.mongodb.org/mongo-driver/bson"
)

// stepState is the payload a session carries while sitting on one step. Each
// step has its own type, so a handler can only read what the steps before it
// actually collected. The session's Step field is the tag.
type stepState interface {
	forStep() consts.SessionStep
}

type initState struct{}

type nuitInputState struct{}

type biInputState struct {
	NUIT string `bson:"nuit"`
}

type institutionInputState struct {
	NUIT     string `bson:"nuit"`
	BINumber string `bson:"biNumber"`
}

// otpVerifyState holds the validated identity until the code is confirmed.
type otpVerifyState struct {
	NUIT        string  `bson:"nuit"`
	BINumber    string  `bson:"biNumber"`
	Institution string  `bson:"institution"`
	Name        string  `bson:"name"`
	MatchScore  float64 `bson:"matchScore"`
	CreditLimit float64 `bson:"creditLimit"`
	BankCode    string  `bson:"bankCode,omitempty"`
	Employer    string  `bson:"employer,omitempty"`
	Salary      float64 `bson:"salary,omitempty"`
}

type mainState struct{}

type amountState struct {
	CreditLimit float64 `bson:"creditLimit"`
}

type termState struct {
	Amount float64 `bson:"amount"`
}

type purposeState struct {
	Amount   float64 `bson:"amount"`
	TermCode string  `bson:"termCode"`
}

type bankOption struct {
	Code string `bson:"code"`
	Name string `bson:"name"`
}

type bankSelectState struct {
	Amount   float64      `bson:"amount"`
	TermCode string       `bson:"termCode"`
	Purpose  string       `bson:"purpose"`
	Banks    []bankOption `bson:"banks"`
}

type termsState struct {
	Amount   float64 `bson:"amount"`
	TermCode string  `bson:"termCode"`
	Purpose  string  `bson:"purpose"`
	BankCode string  `bson:"bankCode"`
	BankName string  `bson:"bankName"`
}

type confirmState termsState

func (initState) forStep() consts.SessionStep             { return consts.StepInit }
func (nuitInputState) forStep() consts.SessionStep        { return consts.StepNUITInput }
func (biInputState) forStep() consts.SessionStep          { return consts.StepBIInput }
func (institutionInputState) forStep() consts.SessionStep { return consts.StepInstitutionInput }
func (otpVerifyState) forStep() consts.SessionStep        { return consts.StepOTPVerify }
func (mainState) forStep() consts.SessionStep             { return consts.StepMain }
func (amountState) forStep() consts.SessionStep           { return consts.StepAmount }
func (termState) forStep() consts.SessionStep             { return consts.StepTerm }
func (purposeState) forStep() consts.SessionStep          { return consts.StepPurpose }
func (bankSelectState) forStep() consts.SessionStep       { return consts.StepBankSelect }
func (termsState) forStep() consts.SessionStep            { return consts.StepTerms }
func (confirmState) forStep() consts.SessionStep          { return consts.StepConfirm }

// successors lists the only step each step may advance to.
var successors = map[consts.SessionStep]consts.SessionStep{
	consts.StepInit:             consts.StepNUITInput,
	consts.StepNUITInput:        consts.StepBIInput,
	consts.StepBIInput:          consts.StepInstitutionInput,
	consts.StepInstitutionInput: consts.StepOTPVerify,
	consts.StepMain:             consts.StepAmount,
	consts.StepAmount:           consts.StepTerm,
	consts.StepTerm:             consts.StepPurpose,
	consts.StepPurpose:          consts.StepBankSelect,
	consts.StepBankSelect:       consts.StepTerms,
	consts.StepTerms:            consts.StepConfirm,
}

func encodeState(s stepState) (bson.Raw, error) {
	data, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", consts.ErrorSessionStateCorrupt, err)
	}
	return data, nil
}

func decodeState[S stepState](raw bson.Raw) (S, error) {
	var st S
	if len(raw) == 0 {
		return st, nil
	}
	if err := bson.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("%w: %v", consts.ErrorSessionStateCorrupt, err)
	}
	return st, nil
}
