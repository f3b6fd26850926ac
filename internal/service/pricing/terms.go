package pricing

import (
	"payja-lending/internal/pkg/consts"
)

// Term is one row of the fixed term table. Day terms repay in a single
// installment, month terms repay monthly.
type Term struct {
	Code                    string
	Label                   string
	Days                    int
	Months                  int
	Rate                    float64
	Installments            int
	EarlySettlementDiscount bool
}

// Terms is ordered as offered on the USSD menu.
var Terms = []Term{
	{Code: "D7", Label: "7 dias", Days: 7, Rate: 0.08, Installments: 1},
	{Code: "D15", Label: "15 dias", Days: 15, Rate: 0.12, Installments: 1},
	{Code: "D30", Label: "30 dias", Days: 30, Rate: 0.15, Installments: 1},
	{Code: "M3", Label: "3 meses", Months: 3, Rate: 0.20, Installments: 3, EarlySettlementDiscount: true},
	{Code: "M6", Label: "6 meses", Months: 6, Rate: 0.30, Installments: 6, EarlySettlementDiscount: true},
	{Code: "M12", Label: "12 meses", Months: 12, Rate: 0.45, Installments: 12, EarlySettlementDiscount: true},
}

func LookupTerm(code string) (Term, error) {
	for _, t := range Terms {
		if t.Code == code {
			return t, nil
		}
	}
	return Term{}, consts.ErrorUnknownTerm
}

// TermByChoice maps a 1-based menu choice onto Terms.
func TermByChoice(choice int) (Term, bool) {
	if choice < 1 || choice > len(Terms) {
		return Term{}, false
	}
	return Terms[choice-1], true
}
