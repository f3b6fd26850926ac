package bank

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"payja-lending/internal/pkg/consts"
	errs "payja-lending/internal/pkg/downstream/error_handling"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"
	"payja-lending/internal/pkg/utils"

	"go.uber.org/zap"
)

const maxResponseBytes = 4 << 20

type transport struct {
	bankCode   string
	apiKey     string
	httpClient *http.Client
	parseError func(statusCode int, body []byte) *errs.APIError
}

func newTransport(bankCode, apiKey string, timeout time.Duration, parseError func(int, []byte) *errs.APIError) *transport {
	return &transport{
		bankCode:   bankCode,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		parseError: parseError,
	}
}

// call sends one request and returns the raw 2xx body. Non-2xx responses are
// turned into an APIError by the partner's error parser.
func (t *transport) call(ctx context.Context, method, url string, payload any, headers map[string]string) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errs.NewBankAPIError(fmt.Errorf(log_messages.ErrorBuildingDownstreamRequest, err))
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorBuildingDownstreamRequest, err, zap.String("url", url))
		return nil, errs.NewBankAPIError(fmt.Errorf(log_messages.ErrorBuildingDownstreamRequest, err))
	}
	httpReq.Header.Set("x-api-key", t.apiKey)
	httpReq.Header.Set("Accept", consts.ContentType)
	if payload != nil {
		httpReq.Header.Set("Content-Type", consts.ContentType)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorSendingDownstreamRequest, err,
			zap.String("bank_code", t.bankCode),
			zap.String("url", url),
		)
		return nil, errs.NewBankAPIError(fmt.Errorf(log_messages.ErrorSendingDownstreamRequest, err), -1)
	}
	defer func() {
		if cerr := httpResp.Body.Close(); cerr != nil {
			logger.CtxError(ctx, log_messages.ErrorClosingResponseBody, cerr)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, errs.NewBankAPIError(fmt.Errorf(log_messages.ErrorReadingDownstreamResponse, err), httpResp.StatusCode)
	}

	logger.CtxInfo(ctx, log_messages.ReceivedBankResponse,
		zap.String("bank_code", t.bankCode),
		zap.String("method", method),
		zap.Int("status", httpResp.StatusCode),
	)

	if httpResp.StatusCode >= http.StatusOK && httpResp.StatusCode < http.StatusMultipleChoices {
		return body, nil
	}
	return nil, t.parseError(httpResp.StatusCode, body)
}

// decodeSuccess unmarshals a 2xx body, reporting failures as bank errors.
func decodeSuccess(body []byte, statusCode int, out any) error {
	if err := json.Unmarshal(body, out); err != nil {
		return errs.NewBankAPIError(fmt.Errorf(log_messages.ErrorDecodingDownstreamSuccess, err), statusCode)
	}
	return nil
}

// errorFromEnvelope fills an APIError from a partner's decoded error fields.
func errorFromEnvelope(statusCode int, code, message string, decodeErr error) *errs.APIError {
	if decodeErr != nil {
		return errs.NewBankAPIError(fmt.Errorf(log_messages.ErrorDecodingDownstreamError, decodeErr), statusCode)
	}
	apiErr := errs.NewBankAPIError(nil, statusCode)
	apiErr.ErrorCode = code
	apiErr.ErrorMessage = message
	if message != "" {
		apiErr.Err = fmt.Errorf(log_messages.ErrorApiReturnedError, message)
	} else {
		apiErr.Err = errors.New(log_messages.ErrorUnknownFormatError)
	}
	return apiErr
}

// declined is the error for a well-formed 2xx refusal.
func declined(reason string) *errs.APIError {
	apiErr := errs.NewBankAPIError(fmt.Errorf(log_messages.BankDeclinedRequest, reason), http.StatusOK)
	apiErr.ErrorMessage = reason
	apiErr.Declined = true
	return apiErr
}

func timeOrNow(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

// normalizePhone keeps unparsable numbers as given so the record is still stored.
func normalizePhone(raw string) string {
	cleaned, err := utils.CleanMSISDN(raw)
	if err != nil {
		return strings.TrimSpace(raw)
	}
	return cleaned
}
