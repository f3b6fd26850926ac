package consts

const (
	SessionsCollection       = "ussd_sessions"
	CustomersCollection      = "customers"
	LoansCollection          = "loans"
	TransactionsCollection   = "transactions"
	InstallmentsCollection   = "installments"
	ScoringResultsCollection = "scoring_results"
	BankPartnersCollection   = "bank_partners"
	BankRecordsCollection    = "bank_records"
)

// MongoDuplicateKeyCode is returned by the server when a unique index rejects a write.
const MongoDuplicateKeyCode = 11000
