// Package mural реализует HTTP клиент для API платежного провайдера Mural.
package mural

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/fsdevblog/groph-market/internal/config"
	"github.com/pkg/errors"
)

const (
	routeAccount       = "/api/accounts/%s"
	routePayout        = "/api/payouts/payout"
	routePayoutByID    = "/api/payouts/payout/%s"
	routePayoutExecute = "/api/payouts/payout/%s/execute"
)

// Client является реализацией HTTP клиента Mural API. Конфигурация (ключи, org id,
// id счета) передается явно при создании, окружение здесь не читается.
type Client struct {
	conf       config.Mural
	httpClient *http.Client
}

func New(conf config.Mural) *Client {
	return &Client{
		conf:       conf,
		httpClient: http.DefaultClient,
	}
}

// AccountID возвращает id депозитного счета из конфигурации.
func (c *Client) AccountID() string {
	return c.conf.AccountID
}

// GetAccount возвращает счет с адресом кошелька и блокчейном для депозитов.
func (c *Client) GetAccount(ctx context.Context, accountID string) (*Account, error) {
	var account Account
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(routeAccount, accountID), nil, nil, &account); err != nil {
		return nil, errors.Wrap(err, "get account")
	}
	return &account, nil
}

// CreatePayoutRequest создает payout request на стороне провайдера.
func (c *Client) CreatePayoutRequest(ctx context.Context, args CreatePayoutRequestArgs) (*PayoutRequest, error) {
	var payout PayoutRequest
	if err := c.do(ctx, http.MethodPost, routePayout, args, nil, &payout); err != nil {
		return nil, errors.Wrap(err, "create payout request")
	}
	return &payout, nil
}

// ExecutePayoutRequest исполняет ранее созданный payout request.
// Исполнение требует отдельного transfer ключа в заголовке.
func (c *Client) ExecutePayoutRequest(ctx context.Context, payoutRequestID string) (*PayoutRequest, error) {
	body := map[string]string{"exchangeRateToleranceMode": "FLEXIBLE"}
	headers := map[string]string{"transfer-api-key": c.conf.TransferAPIKey}

	var payout PayoutRequest
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf(routePayoutExecute, payoutRequestID), body, headers, &payout); err != nil {
		return nil, errors.Wrap(err, "execute payout request")
	}
	return &payout, nil
}

// GetPayoutRequest возвращает текущее состояние payout request'а.
func (c *Client) GetPayoutRequest(ctx context.Context, payoutRequestID string) (*PayoutRequest, error) {
	var payout PayoutRequest
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf(routePayoutByID, payoutRequestID), nil, nil, &payout); err != nil {
		return nil, errors.Wrap(err, "get payout request")
	}
	return &payout, nil
}

//nolint:nonamedreturns
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body any,
	headers map[string]string,
	out any,
) (err error) {
	var reqBody io.Reader
	if body != nil {
		raw, marshalErr := json.Marshal(body)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "marshal request body")
		}
		reqBody = bytes.NewReader(raw)
	}

	req, reqErr := http.NewRequestWithContext(ctx, method, c.conf.APIURL+path, reqBody)
	if reqErr != nil {
		return errors.Wrap(reqErr, "create request")
	}

	req.Header.Set("Authorization", "Bearer "+c.conf.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if c.conf.OrgID != "" {
		req.Header.Set("on-behalf-of", c.conf.OrgID)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, doErr := c.httpClient.Do(req)
	if doErr != nil {
		return errors.Wrap(doErr, "do request")
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	respBody, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		return errors.Wrap(readErr, "read response")
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return NewStatusCodeError(resp.StatusCode, string(respBody))
	}

	if out == nil || len(respBody) == 0 || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if jsonErr := json.Unmarshal(respBody, out); jsonErr != nil {
		return errors.Wrap(jsonErr, "parse response")
	}
	return nil
}
