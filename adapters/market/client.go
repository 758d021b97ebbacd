// Package market is the HTTP adapter for the remote marketplace service.
package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/nostrmarket/agora/core"
	"github.com/nostrmarket/agora/ports"
)

// Client implements ports.Market over HTTP. Every request carries the
// caller's context, a transport timeout, and passes through a client-side
// rate limiter so bursts from the facade stay polite.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a market client for a base URL.
func NewClient(baseURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(requestsPerSecond)+1),
	}
}

// Register creates an account and returns its key material.
func (c *Client) Register(ctx context.Context, lightningAddress string) (*core.Registration, error) {
	body := map[string]string{"lightning_address": lightningAddress}

	var reg core.Registration
	if err := c.do(ctx, http.MethodPost, "/users/register", nil, body, &reg); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Login resolves an encoded private key to its account.
func (c *Client) Login(ctx context.Context, encodedSecret string) (*core.LoginResult, error) {
	body := map[string]string{"private_key": encodedSecret}

	var res core.LoginResult
	if err := c.do(ctx, http.MethodPost, "/users/login", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Challenge requests an auth challenge for a public key.
func (c *Client) Challenge(ctx context.Context, publicKey string) (*core.Challenge, error) {
	q := url.Values{"public_key": {publicKey}}

	var ch core.Challenge
	if err := c.do(ctx, http.MethodGet, "/auth/challenge", q, nil, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

// Verify submits a signed challenge.
func (c *Client) Verify(ctx context.Context, sessionID, signatureB64 string) (*core.VerifyResult, error) {
	body := map[string]string{
		"session_id":    sessionID,
		"signature_b64": signatureB64,
	}

	var res core.VerifyResult
	if err := c.do(ctx, http.MethodPost, "/auth/verify", nil, body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ValidateSession asks the issuer whether a token is still accepted.
func (c *Client) ValidateSession(ctx context.Context, token string) error {
	q := url.Values{"session-token": {token}}
	return c.do(ctx, http.MethodGet, "/auth/validate", q, nil, nil)
}

// profileResponse tolerates both field names the service has used for the
// payment address.
type profileResponse struct {
	PublicKey        string `json:"nostr_public_key"`
	DisplayName      string `json:"display_name"`
	About            string `json:"about"`
	LightningAddress string `json:"lightning_address"`
	Lud16            string `json:"lud16"`
}

// SellerProfile fetches the profile for a public key.
func (c *Client) SellerProfile(ctx context.Context, publicKey string) (*core.SellerProfile, error) {
	var res profileResponse
	if err := c.do(ctx, http.MethodGet, "/users/nostr-profile/"+url.PathEscape(publicKey), nil, nil, &res); err != nil {
		return nil, err
	}

	address := res.LightningAddress
	if address == "" {
		address = res.Lud16
	}

	return &core.SellerProfile{
		PublicKey:        res.PublicKey,
		DisplayName:      res.DisplayName,
		About:            res.About,
		LightningAddress: address,
	}, nil
}

// invoiceResponse tolerates both field names for the payment request.
type invoiceResponse struct {
	Invoice        string `json:"invoice"`
	PaymentRequest string `json:"payment_request"`
}

// CreateInvoice creates a lightning invoice payable to sellerAddress. A
// 2xx response without a payment request is core.ErrInvoiceCreation.
func (c *Client) CreateInvoice(ctx context.Context, sellerAddress string, amount decimal.Decimal, description string) (*core.Invoice, error) {
	q := url.Values{
		"seller_ln_address": {sellerAddress},
		"amount":            {amount.String()},
		"description":       {description},
	}

	var res invoiceResponse
	if err := c.do(ctx, http.MethodPost, "/invoices/create_invoice/", q, nil, &res); err != nil {
		return nil, err
	}

	request := res.Invoice
	if request == "" {
		request = res.PaymentRequest
	}
	if request == "" {
		return nil, core.ErrInvoiceCreation
	}

	return &core.Invoice{
		PaymentRequest: request,
		Amount:         amount,
		Description:    description,
	}, nil
}

// PayInvoice pays a payment request. The success criterion is transport
// level only; the result payload is opaque and not inspected.
func (c *Client) PayInvoice(ctx context.Context, credential, paymentRequest string) error {
	q := url.Values{
		"nwc_buyer_string": {credential},
		"invoicestr":       {paymentRequest},
	}
	return c.do(ctx, http.MethodGet, "/invoices/pay_invoice/", q, nil, nil)
}

// CreateListing submits a listing with its proof of work. The session
// token rides in the query string per the service contract.
func (c *Client) CreateListing(ctx context.Context, token string, draft core.ListingDraft, proof core.ProofOfWork) (*core.Listing, error) {
	q := url.Values{"session-token": {token}}

	body := struct {
		core.ListingDraft
		Nonce uint64 `json:"nonce"`
		Hash  string `json:"hash"`
	}{draft, proof.Nonce, proof.Hash}

	var listing core.Listing
	if err := c.do(ctx, http.MethodPost, "/listings", q, body, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateListing applies a partial update and returns the resulting state.
func (c *Client) UpdateListing(ctx context.Context, id string, update core.ListingUpdate) (*core.Listing, error) {
	var listing core.Listing
	if err := c.do(ctx, http.MethodPut, "/listings/"+url.PathEscape(id), nil, update, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// Listings returns all listings.
func (c *Client) Listings(ctx context.Context) ([]core.Listing, error) {
	var listings []core.Listing
	if err := c.do(ctx, http.MethodGet, "/listings", nil, nil, &listings); err != nil {
		return nil, err
	}
	return listings, nil
}

// Listing returns one listing by id.
func (c *Client) Listing(ctx context.Context, id string) (*core.Listing, error) {
	var listing core.Listing
	if err := c.do(ctx, http.MethodGet, "/listings/"+url.PathEscape(id), nil, nil, &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

// do performs one request. Non-2xx responses become *core.ServerError;
// transport failures wrap core.ErrNetwork. When out is non-nil the
// response body is decoded into it.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", core.ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return &core.ServerError{Status: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", path, err)
	}
	return nil
}

var _ ports.Market = (*Client)(nil)
