package walleterr

import "errors"

// Kind enumerates every failure mode the session engine can surface.
type Kind string

const (
	KindUserRejected        Kind = "USER_REJECTED"
	KindIframeBlocked       Kind = "IFRAME_BLOCKED"
	KindNoWalletFound       Kind = "NO_WALLET"
	KindNoAccounts          Kind = "NO_ACCOUNTS"
	KindNotConnected        Kind = "NOT_CONNECTED"
	KindInvalidAddress      Kind = "INVALID_ADDRESS"
	KindInvalidAmount       Kind = "INVALID_AMOUNT"
	KindInsufficientFunds   Kind = "INSUFFICIENT_FUNDS"
	KindGasEstimationFailed Kind = "GAS_ESTIMATION_FAILED"
	KindUnsupportedAsset    Kind = "UNSUPPORTED_ASSET"
	KindTransactionFailed   Kind = "TRANSACTION_FAILED"
	KindInternal            Kind = "INTERNAL"
)

// Error is a tagged error value. Failures travel as values so every call
// site can enumerate its failure modes instead of type-switching on
// exception classes.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind preserving the underlying cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind from any error. Non-tagged errors map to
// KindInternal so the caller always gets a usable classification.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Decode converts an error to a (kind, message) pair for the HTTP envelope.
func Decode(err error) (Kind, string) {
	if err == nil {
		return "", "OK"
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, e.Message
	}
	return KindInternal, err.Error()
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Common errors with fixed wording. Ones that need a cause attached are
// built with Wrap at the call site instead.
var (
	ErrIframeBlocked = New(KindIframeBlocked,
		"Wallet connection is not supported in embedded frames. Please open this app in a new tab.")
	ErrNoWalletFound = New(KindNoWalletFound,
		"No compatible Ethereum wallet found. Please install MetaMask or another Web3 wallet.")
	ErrNoAccounts       = New(KindNoAccounts, "No accounts found")
	ErrNotConnected     = New(KindNotConnected, "Wallet not connected")
	ErrInvalidAddress   = New(KindInvalidAddress, "Invalid recipient address")
	ErrInvalidAmount    = New(KindInvalidAmount, "Invalid amount format")
	ErrInsufficient     = New(KindInsufficientFunds, "Insufficient balance")
	ErrUnsupportedAsset = New(KindUnsupportedAsset, "Asset has no settlement path yet")
)
