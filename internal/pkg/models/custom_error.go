package models

// CustomError is a named failure carrying a stable PAYJA_ code that the HTTP
// layer maps onto a status and the USSD layer onto a reply.
type CustomError struct {
	Code    string
	Message string
}

func (e CustomError) Error() string {
	return e.Message
}

func (e CustomError) ErrorCode() string {
	return e.Code
}

// Is matches on code so copies of a declared error still satisfy errors.Is.
func (e CustomError) Is(target error) bool {
	switch t := target.(type) {
	case *CustomError:
		return t != nil && t.Code == e.Code
	case CustomError:
		return t.Code == e.Code
	}
	return false
}
