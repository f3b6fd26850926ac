package pricing

import (
	"time"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"

	"github.com/shopspring/decimal"
)

// Installment is one scheduled repayment. Amount = Principal + Interest.
type Installment struct {
	Number    int
	Amount    float64
	Principal float64
	Interest  float64
	DueDate   time.Time
}

type Quote struct {
	Principal         float64
	TermCode          string
	Rate              float64
	Interest          float64
	TotalAmount       float64
	InstallmentAmount float64
	Installments      []Installment
}

// Split is the commission allocation of one loan, computed on gross principal.
type Split struct {
	Bank       float64
	Aggregator float64
	Wallet     float64
	Net        float64
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// QuoteFor prices principal over the term with a flat rate and equal
// installments. Every amount is rounded to the cent as it is computed; the last
// installment absorbs the rounding remainder so the schedule sums exactly to
// TotalAmount. Due dates are left zero; see Schedule.
func QuoteFor(principal float64, termCode string) (*Quote, error) {
	term, err := LookupTerm(termCode)
	if err != nil {
		return nil, err
	}
	p := round2(decimal.NewFromFloat(principal))
	if !p.IsPositive() {
		return nil, consts.ErrorInvalidPrincipal
	}

	rate := decimal.NewFromFloat(term.Rate)
	interest := round2(p.Mul(rate))
	total := p.Add(interest)

	n := decimal.NewFromInt(int64(term.Installments))
	each := round2(total.Div(n))
	eachPrincipal := round2(p.Div(n))

	installments := make([]Installment, term.Installments)
	allocated, allocatedPrincipal := decimal.Zero, decimal.Zero
	for i := 0; i < term.Installments; i++ {
		amount, principalPart := each, eachPrincipal
		if i == term.Installments-1 {
			amount = total.Sub(allocated)
			principalPart = p.Sub(allocatedPrincipal)
		}
		allocated = allocated.Add(amount)
		allocatedPrincipal = allocatedPrincipal.Add(principalPart)

		installments[i] = Installment{
			Number:    i + 1,
			Amount:    amount.InexactFloat64(),
			Principal: principalPart.InexactFloat64(),
			Interest:  amount.Sub(principalPart).InexactFloat64(),
		}
	}

	return &Quote{
		Principal:         p.InexactFloat64(),
		TermCode:          term.Code,
		Rate:              term.Rate,
		Interest:          interest.InexactFloat64(),
		TotalAmount:       total.InexactFloat64(),
		InstallmentAmount: each.InexactFloat64(),
		Installments:      installments,
	}, nil
}

// Schedule returns the quote's installments with due dates counted from start.
func Schedule(q *Quote, start time.Time) ([]Installment, error) {
	term, err := LookupTerm(q.TermCode)
	if err != nil {
		return nil, err
	}
	out := make([]Installment, len(q.Installments))
	for i, inst := range q.Installments {
		if term.Months > 0 {
			inst.DueDate = start.AddDate(0, i+1, 0)
		} else {
			inst.DueDate = start.AddDate(0, 0, term.Days)
		}
		out[i] = inst
	}
	return out, nil
}

// DueDate is the date the last installment falls due.
func DueDate(termCode string, start time.Time) (time.Time, error) {
	term, err := LookupTerm(termCode)
	if err != nil {
		return time.Time{}, err
	}
	if term.Months > 0 {
		return start.AddDate(0, term.Months, 0), nil
	}
	return start.AddDate(0, 0, term.Days), nil
}

// CommissionSplit applies each rate to the gross principal independently.
func CommissionSplit(principal float64, rates models.CommissionRates) Split {
	p := round2(decimal.NewFromFloat(principal))
	bank := round2(p.Mul(decimal.NewFromFloat(rates.Bank)))
	aggregator := round2(p.Mul(decimal.NewFromFloat(rates.Aggregator)))
	wallet := round2(p.Mul(decimal.NewFromFloat(rates.Wallet)))

	return Split{
		Bank:       bank.InexactFloat64(),
		Aggregator: aggregator.InexactFloat64(),
		Wallet:     wallet.InexactFloat64(),
		Net:        p.Sub(bank).Sub(aggregator).Sub(wallet).InexactFloat64(),
	}
}
