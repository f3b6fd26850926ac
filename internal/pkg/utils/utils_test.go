package utils

import (
	"errors"
	"fmt"
	"testing"

	"payja-lending/internal/pkg/consts"

	"github.com/stretchr/testify/assert"
)

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, "PAYJA_LOAN_NOT_FOUND", GetErrorCode(consts.ErrorLoanNotFound))
	assert.Equal(t, "PAYJA_LOAN_NOT_FOUND", GetErrorCode(fmt.Errorf("disburse: %w", consts.ErrorLoanNotFound)))
	assert.Equal(t, consts.InternalErrorCode, GetErrorCode(errors.New("boom")))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Installment already paid", PublicMessage(consts.ErrorInstallmentAlreadyPaid))
	assert.Equal(t, "Internal error", PublicMessage(errors.New("mongo: connection refused")))
}

func TestCleanMSISDN(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "841234567", want: "258841234567"},
		{in: "258841234567", want: "258841234567"},
		{in: "+258 86 123 4567", want: "258861234567"},
		{in: "84-123-4567", want: "258841234567"},
		{in: "881234567", wantErr: true},
		{in: "12345", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := CleanMSISDN(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, consts.ErrorMsisdnInvalid)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSamePhone(t *testing.T) {
	assert.True(t, SamePhone("841234567", "+258841234567"))
	assert.False(t, SamePhone("841234567", "841234568"))
	assert.False(t, SamePhone("", ""))
}

func TestIdentityFormats(t *testing.T) {
	assert.True(t, IsValidNUIT("123456789"))
	assert.True(t, IsValidNUIT(" 123456789 "))
	assert.False(t, IsValidNUIT("12345678"))
	assert.False(t, IsValidNUIT("12345678a"))

	assert.True(t, IsValidBINumber("110100123456A"))
	assert.True(t, IsValidBINumber("110100123456b"))
	assert.False(t, IsValidBINumber("110100123456"))
	assert.False(t, IsValidBINumber("A10100123456B"))
}

func TestParseAmount(t *testing.T) {
	v, ok := ParseAmount("1500")
	assert.True(t, ok)
	assert.Equal(t, 1500.0, v)

	v, ok = ParseAmount("1500,50")
	assert.True(t, ok)
	assert.Equal(t, 1500.5, v)

	_, ok = ParseAmount("15a")
	assert.False(t, ok)
	_, ok = ParseAmount("-100")
	assert.False(t, ok)
	_, ok = ParseAmount("1.234")
	assert.False(t, ok)
}

func TestParseMenuChoice(t *testing.T) {
	c, ok := ParseMenuChoice(" 2 ", 3)
	assert.True(t, ok)
	assert.Equal(t, 2, c)

	_, ok = ParseMenuChoice("0", 3)
	assert.False(t, ok)
	_, ok = ParseMenuChoice("4", 3)
	assert.False(t, ok)
	_, ok = ParseMenuChoice("x", 3)
	assert.False(t, ok)
}
