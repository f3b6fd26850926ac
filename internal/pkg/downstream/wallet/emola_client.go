package wallet

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

	"payja-lending/internal/pkg/config"
	"payja-lending/internal/pkg/consts"
	errs "payja-lending/internal/pkg/downstream/error_handling"
	"payja-lending/internal/pkg/downstream/retry"
	"payja-lending/internal/pkg/log_messages"
	"payja-lending/internal/pkg/logger"

	"go.uber.org/zap"
)

// EmolaAPI is the mobile-wallet collaborator: KYC lookup for cross-validation
// and the final credit leg of a settlement.
type EmolaAPI interface {
	LookupSubscriber(ctx context.Context, phoneNumber string) (*Subscriber, error)
	CreditWallet(ctx context.Context, req CreditRequest) (*CreditResult, error)
}

type Subscriber struct {
	PhoneNumber string `json:"msisdn"`
	Name        string `json:"name"`
	Active      bool   `json:"active"`
}

type CreditRequest struct {
	Reference   string  `json:"reference"`
	PhoneNumber string  `json:"msisdn"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

type CreditResult struct {
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	CreditedAt    time.Time `json:"creditedAt"`
	Message       string    `json:"message,omitempty"`
}

type EmolaClient struct {
	LookupURL  string
	CreditURL  string
	apiKey     string
	httpClient *http.Client
	policy     retry.Policy
}

func NewEmolaClient(cfg config.WalletConfig, policy retry.Policy) *EmolaClient {
	return &EmolaClient{
		LookupURL: strings.TrimRight(cfg.LookupURL, "/"),
		CreditURL: cfg.CreditURL,
		apiKey:    cfg.APIKey,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.HTTPTimeoutSeconds) * time.Second,
		},
		policy: policy,
	}
}

// processResponseBody decodes a 2xx body into out, otherwise builds a WalletAPIError.
func (c *EmolaClient) processResponseBody(ctx context.Context, statusCode int, body io.Reader, out any) error {
	logger.CtxInfo(ctx, log_messages.ReceivedWalletResponse, zap.Int("status", statusCode))

	if statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices {
		if err := json.NewDecoder(body).Decode(out); err != nil {
			logger.CtxError(ctx, log_messages.ErrorDecodingDownstreamSuccess, err)
			return errs.NewWalletAPIError(fmt.Errorf(log_messages.ErrorDecodingDownstreamSuccess, err), statusCode)
		}
		return nil
	}

	apiErr := errs.NewWalletAPIError(nil, statusCode)
	if err := json.NewDecoder(body).Decode(apiErr); err != nil {
		logger.CtxError(ctx, log_messages.ErrorDecodingDownstreamError, err)
		apiErr.Err = fmt.Errorf(log_messages.ErrorDecodingDownstreamError, err)
		return apiErr
	}
	if apiErr.ErrorMessage != "" {
		apiErr.Err = fmt.Errorf(log_messages.ErrorApiReturnedError, apiErr.ErrorMessage)
	} else {
		apiErr.Err = errors.New(log_messages.ErrorUnknownFormatError)
	}
	return apiErr
}

func (c *EmolaClient) send(ctx context.Context, method, url string, payload any, headers map[string]string, out any) error {
	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errs.NewWalletAPIError(fmt.Errorf(log_messages.ErrorBuildingDownstreamRequest, err))
		}
		reader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorBuildingDownstreamRequest, err)
		return errs.NewWalletAPIError(fmt.Errorf(log_messages.ErrorBuildingDownstreamRequest, err))
	}
	httpReq.Header.Set("x-api-key", c.apiKey)
	if payload != nil {
		httpReq.Header.Set("Content-Type", consts.ContentType)
	}
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		logger.CtxError(ctx, log_messages.ErrorSendingDownstreamRequest, err, zap.String("url", url))
		return errs.NewWalletAPIError(fmt.Errorf(log_messages.ErrorSendingDownstreamRequest, err), -1)
	}
	defer func() {
		if cerr := httpResp.Body.Close(); cerr != nil {
			logger.CtxError(ctx, log_messages.ErrorClosingResponseBody, cerr)
		}
	}()

	return c.processResponseBody(ctx, httpResp.StatusCode, httpResp.Body, out)
}

func (c *EmolaClient) LookupSubscriber(ctx context.Context, phoneNumber string) (*Subscriber, error) {
	url := fmt.Sprintf("%s/%s", c.LookupURL, phoneNumber)

	var out Subscriber
	err := c.policy.Do(ctx, "emola.lookup", func(ctx context.Context) error {
		return c.send(ctx, http.MethodGet, url, nil, nil, &out)
	})
	if err != nil {
		return nil, err
	}
	if out.PhoneNumber == "" {
		out.PhoneNumber = phoneNumber
	}
	return &out, nil
}

// CreditWallet is keyed by the loan reference; e-Mola answers a replayed key
// with the original result.
func (c *EmolaClient) CreditWallet(ctx context.Context, req CreditRequest) (*CreditResult, error) {
	if req.Currency == "" {
		req.Currency = "MZN"
	}
	headers := map[string]string{"Idempotency-Key": req.Reference}

	var out CreditResult
	err := c.policy.Do(ctx, "emola.credit", func(ctx context.Context) error {
		out = CreditResult{}
		if err := c.send(ctx, http.MethodPost, c.CreditURL, req, headers, &out); err != nil {
			return err
		}
		if out.Status != "" && !strings.EqualFold(out.Status, "SUCCESS") {
			apiErr := errs.NewWalletAPIError(fmt.Errorf(log_messages.WalletDeclinedCredit, out.Message), http.StatusOK)
			apiErr.ErrorMessage = out.Message
			apiErr.Declined = true
			return apiErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.CreditedAt.IsZero() {
		out.CreditedAt = time.Now().UTC()
	}
	return &out, nil
}
