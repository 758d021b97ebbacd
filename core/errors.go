package core

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode is returned when an encoded secret has a bad prefix,
	// checksum or length
	ErrDecode = errors.New("malformed encoded secret")

	// ErrNetwork is returned when a call to the marketplace service fails
	// at the transport level
	ErrNetwork = errors.New("network failure")

	// ErrAuthenticationFailed is returned when the issuer rejects a signature
	ErrAuthenticationFailed = errors.New("signature rejected by issuer")

	// ErrAuthInProgress is returned when verification for a session id is
	// already in flight
	ErrAuthInProgress = errors.New("verification already in progress")

	// ErrProfileRequired is returned when verification succeeded but no
	// profile exists for the public key and one is required
	ErrProfileRequired = errors.New("profile must be provisioned before login")

	// ErrNoSession is returned when an authenticated operation runs with
	// an empty session store
	ErrNoSession = errors.New("no active session")

	// ErrSessionExpired is returned when the local session token is
	// visibly past its expiry
	ErrSessionExpired = errors.New("session token expired")

	// ErrMissingPaymentAddress is returned when a seller profile carries
	// no lightning address
	ErrMissingPaymentAddress = errors.New("seller profile has no payment address")

	// ErrMissingCredential is returned when the buyer supplies an empty
	// wallet credential
	ErrMissingCredential = errors.New("missing buyer wallet credential")

	// ErrInvoiceCreation is returned when the invoice response carries no
	// payment request
	ErrInvoiceCreation = errors.New("invoice response missing payment request")

	// ErrPaymentFailed is returned when the pay call does not succeed
	ErrPaymentFailed = errors.New("invoice payment failed")

	// ErrSettlementConflict is returned when the listing was settled by a
	// different buyer before our update landed
	ErrSettlementConflict = errors.New("listing settled by another buyer")

	// ErrConsistencyGap is returned when the payment settled but the
	// listing update did not; external reconciliation is required
	ErrConsistencyGap = errors.New("payment settled but listing update failed")

	// ErrPowExhausted is returned when the solver reaches its nonce
	// ceiling without a valid hash
	ErrPowExhausted = errors.New("nonce ceiling reached without a valid hash")
)

// ServerError is a non-2xx response from the marketplace service.
type ServerError struct {
	Status int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Status)
}

// IsNotFound reports whether err is a ServerError with a 404 status.
func IsNotFound(err error) bool {
	var se *ServerError
	return errors.As(err, &se) && se.Status == 404
}
