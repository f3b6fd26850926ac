package settlement

import (
	"fmt"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/store/models"
	"payja-lending/internal/service/pricing"

	"github.com/shopspring/decimal"
)

// Hop is one planned ledger movement.
type Hop struct {
	Sequence int
	Type     consts.TransactionType
	From     consts.Party
	To       consts.Party
	Amount   float64
}

func (h Hop) key() hopKey {
	return hopKey{h.Type, h.From, h.To}
}

type hopKey struct {
	typ      consts.TransactionType
	from, to consts.Party
}

func keyOf(t models.Transaction) hopKey {
	return hopKey{t.Type, t.From, t.To}
}

// PlanHops lays out the six-hop walk for a loan. Commissions come from the
// gross principal; the two transfer hops carry whatever is left after the
// deductions before them.
func PlanHops(principal float64, rates models.CommissionRates) ([]Hop, error) {
	split := pricing.CommissionSplit(principal, rates)
	gross := decimal.NewFromFloat(principal).Round(2)
	bank := decimal.NewFromFloat(split.Bank)
	aggregator := decimal.NewFromFloat(split.Aggregator)
	wallet := decimal.NewFromFloat(split.Wallet)

	toEmola := gross.Sub(bank).Sub(aggregator)
	toCustomer := toEmola.Sub(wallet)

	hops := []Hop{
		{1, consts.TransactionDisbursement, consts.PartyBank, consts.PartyPayja, gross.InexactFloat64()},
		{2, consts.TransactionCommission, consts.PartyPayja, consts.PartyBank, split.Bank},
		{3, consts.TransactionCommission, consts.PartyPayja, consts.PartyPayja, split.Aggregator},
		{4, consts.TransactionDisbursement, consts.PartyPayja, consts.PartyEmola, toEmola.InexactFloat64()},
		{5, consts.TransactionCommission, consts.PartyEmola, consts.PartyEmola, split.Wallet},
		{6, consts.TransactionDisbursement, consts.PartyEmola, consts.PartyCustomer, toCustomer.InexactFloat64()},
	}

	if !toCustomer.IsPositive() || !toCustomer.Equal(decimal.NewFromFloat(split.Net)) {
		return nil, fmt.Errorf("%w: net %s, split net %.2f", consts.ErrorLedgerImbalance, toCustomer, split.Net)
	}
	return hops, nil
}

// Conserved reports whether the bank outflow equals the commissions plus the
// customer credit.
func Conserved(txs []models.Transaction) bool {
	var out, kept decimal.Decimal
	for _, tx := range txs {
		amount := decimal.NewFromFloat(tx.Amount)
		switch {
		case tx.From == consts.PartyBank:
			out = out.Add(amount)
		case tx.Type == consts.TransactionCommission, tx.To == consts.PartyCustomer:
			kept = kept.Add(amount)
		}
	}
	return len(txs) == consts.SettlementHopCount && out.Equal(kept)
}
