package utils

import (
	"errors"

	"payja-lending/internal/pkg/consts"
	"payja-lending/internal/pkg/models"
)

func GetErrorCode(err error) string {
	var customErr *models.CustomError
	if errors.As(err, &customErr) {
		return customErr.ErrorCode()
	}
	return consts.InternalErrorCode
}

// PublicMessage returns the message safe to expose to API callers.
func PublicMessage(err error) string {
	var customErr *models.CustomError
	if errors.As(err, &customErr) {
		return customErr.Message
	}
	return "Internal error"
}
