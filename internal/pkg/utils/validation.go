package utils

import (
	"regexp"
	"strconv"
	"strings"

	"payja-lending/internal/pkg/consts"
)

var (
	msisdnRegex   = regexp.MustCompile(consts.ValidMSISDN)
	nuitRegex     = regexp.MustCompile(consts.ValidNUIT)
	biNumberRegex = regexp.MustCompile(consts.ValidBINumber)
	amountRegex   = regexp.MustCompile(consts.ValidAmount)
)

// CleanMSISDN strips separators and normalises to the 258XXXXXXXXX form.
func CleanMSISDN(msisdn string) (string, error) {
	cleaned := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(msisdn))
	if !msisdnRegex.MatchString(cleaned) {
		return "", consts.ErrorMsisdnInvalid
	}
	cleaned = strings.TrimPrefix(cleaned, "+")
	if !strings.HasPrefix(cleaned, consts.CountryCode) {
		cleaned = consts.CountryCode + cleaned
	}
	return cleaned, nil
}

// SamePhone compares two numbers after normalisation; unparsable numbers never match.
func SamePhone(a, b string) bool {
	ca, errA := CleanMSISDN(a)
	cb, errB := CleanMSISDN(b)
	return errA == nil && errB == nil && ca == cb
}

func IsValidNUIT(nuit string) bool {
	return nuitRegex.MatchString(strings.TrimSpace(nuit))
}

func IsValidBINumber(bi string) bool {
	return biNumberRegex.MatchString(strings.TrimSpace(bi))
}

// ParseAmount accepts "1500", "1500.5" or "1500,50".
func ParseAmount(input string) (float64, bool) {
	input = strings.TrimSpace(input)
	if !amountRegex.MatchString(input) {
		return 0, false
	}
	value, err := strconv.ParseFloat(strings.Replace(input, ",", ".", 1), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// ParseMenuChoice returns the 1-based option picked from a menu of size n.
func ParseMenuChoice(input string, n int) (int, bool) {
	choice, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || choice < 1 || choice > n {
		return 0, false
	}
	return choice, true
}
