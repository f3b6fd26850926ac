package consts

const (
	// Mozambican mobile numbers, with or without the 258 country code.
	ValidMSISDN      = `^(\+?258)?8[2-7]\d{7}$`
	ValidNUIT        = `^\d{9}$`
	ValidBINumber    = `^\d{12}[A-Za-z]$`
	ValidAmount      = `^\d+([.,]\d{1,2})?$`
	CountryCode      = "258"
	ContentType      = "application/json"
	DateFormat       = "2006-01-02"
	MinInstitutionLn = 3
)

const RequestIDHeader = "X-Request-ID"

// SensitiveHeaders are masked in request logs.
var SensitiveHeaders = []string{"Authorization", "X-Api-Key", "Cookie"}
