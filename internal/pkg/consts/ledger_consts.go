package consts

type Party string

const (
	PartyBank     Party = "BANK"
	PartyPayja    Party = "PAYJA"
	PartyEmola    Party = "EMOLA"
	PartyCustomer Party = "CUSTOMER"
)

type TransactionType string

const (
	TransactionDisbursement TransactionType = "DISBURSEMENT"
	TransactionCommission   TransactionType = "COMMISSION"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "PENDING"
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionFailed    TransactionStatus = "FAILED"
)

const SettlementHopCount = 6
