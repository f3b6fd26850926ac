package log_messages

const (
	ServerStartFailure         = "failed to start server"
	ServerExiting              = "Server exiting"
	FailedLoadingConfiguration = "Failed to load configuration"
	CleanupStarted             = "Starting cleanup of resources..."
	CleanupCompleted           = "All resources cleaned up successfully"

	KafkaProducerCreated   = "Kafka producer created"
	PubsubPublisherCreated = "PubSub publisher created"
	ErrorClosingGCSClient  = "Error closing GCS client"
	ErrorMarshallingJSON   = "Error marshalling JSON"
	ErrorUploadingToGCS    = "Error uploading to GCS bucket"
	ErrorClosingGCSWriter  = "Error closing GCS writer"
	UploadedToGCSBucket    = "Uploaded object to GCS bucket"
	GCSClientClosed        = "GCS client closed successfully"

	// session engine
	SessionCreated        = "USSD session created"
	SessionReacquired     = "USSD session re-acquired by phone number"
	SessionClosed         = "USSD session closed"
	SessionDuplicateInput = "Duplicate USSD delivery served from reply cache"
	SessionHandlerPanic   = "USSD step handler panicked"
	SessionHandlerFailure = "USSD step handler failed"
	SessionPersistFailure = "Failed to persist USSD session"
	OTPLockout            = "OTP attempts exhausted, session locked"
	OTPExpired            = "OTP expired"
	OTPVerified           = "OTP verified, customer registered"

	// cross validation and scoring
	CrossValidationNotFound = "Bank record not found for candidate"
	CrossValidationResult   = "Cross-validation completed"
	ScoringCompleted        = "Scoring completed"

	// settlement
	SettlementStarted               = "Settlement started"
	SettlementHopRecorded           = "Settlement hop recorded"
	SettlementAlreadyComplete       = "Settlement already complete, nothing to do"
	SettlementBankCallFailed        = "Bank disbursement call failed"
	SettlementWalletCreditRetry     = "Wallet credit failed; loan left DISBURSED for retry"
	SettlementWalletAlreadyCredited = "Wallet already credited, resuming activation"
	SettlementCompleted             = "Settlement completed"

	// collaborators
	SmsPublishFailure   = "Failed to publish SMS notification"
	EventPublishFailure = "Failed to publish loan event"
	ReceiptUploadFailed = "Failed to archive settlement receipt"
	BankNotifyFailure   = "Failed to notify bank of payment"
	RetryAttemptFailed  = "Attempt failed, backing off"

	// overdue sweep
	OverdueSweepStarted  = "Overdue sweep started"
	OverdueSweepFinished = "Overdue sweep finished"

	// ledger export and bank sync
	LedgerExported       = "Ledger exported"
	LedgerExportFailed   = "Ledger export failed"
	EmployeeSyncFinished = "Bank employee sync finished"
	EmployeeSyncFailed   = "Bank employee sync failed"

	// downstream clients
	ReceivedBankResponse           = "Received bank partner response"
	ReceivedWalletResponse         = "Received e-Mola response"
	ErrorBuildingDownstreamRequest = "failed to build downstream request: %v"
	ErrorSendingDownstreamRequest  = "failed to send downstream request: %v"
	ErrorReadingDownstreamResponse = "failed to read downstream response: %v"
	ErrorDecodingDownstreamSuccess = "failed to decode downstream success response: %v"
	ErrorDecodingDownstreamError   = "failed to decode downstream error response: %v"
	ErrorApiReturnedError          = "API returned error: %s"
	ErrorUnknownFormatError        = "unknown error format"
	ErrorClosingResponseBody       = "failed to close response body"
	BankDeclinedRequest            = "bank declined request: %s"
	WalletDeclinedCredit           = "wallet declined credit: %s"
	BankAdapterBuilt               = "Bank adapter built"
	BankPartnerValidationFailed    = "Bank partner configuration failed validation"

	// http
	RequestCompleted   = "Request completed"
	ServerStarted      = "HTTP server listening"
	OverdueSweepFailed = "Overdue sweep failed"
)
