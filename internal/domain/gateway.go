package domain

import (
	"context"
	"errors"
	"fmt"
)

// SessionGateway discovers active live sessions for an account. Sessions are
// externally owned and may disappear between polls; an empty token is a
// normal outcome, not an error.
type SessionGateway interface {
	ActiveSession(ctx context.Context, accountID int) (string, error)
}

// ApplicationGateway publishes product sets into a live session.
type ApplicationGateway interface {
	ReplaceProducts(ctx context.Context, accountID int, sessionID string, productSetID int) error
	ClearProducts(ctx context.Context, accountID int, sessionID string) error
}

// CatalogGateway reads accounts, niches and product sets from the member API.
// The rotation loop never polls this on its own cadence; it is consulted
// before a run starts and on explicit operator refresh.
type CatalogGateway interface {
	ShopeeAccounts(ctx context.Context) ([]ShopeeAccount, error)
	Niches(ctx context.Context) ([]Niche, error)
	ProductSets(ctx context.Context) ([]ProductSet, error)
}

// GatewayErrorKind classifies a failed gateway call for the error policy.
type GatewayErrorKind string

const (
	// GatewayValidationRejected means the gateway understood but refused the
	// request (HTTP 400/422). Counts toward the consecutive-error threshold.
	GatewayValidationRejected GatewayErrorKind = "validation_rejected"
	// GatewayAuthMismatch means the member credential no longer matches the
	// registered device (HTTP 401/403). Stops the loop immediately.
	GatewayAuthMismatch GatewayErrorKind = "auth_mismatch"
	GatewayNetwork      GatewayErrorKind = "network"
	GatewayTimeout      GatewayErrorKind = "timeout"
	GatewayUnknown      GatewayErrorKind = "unknown"
)

// GatewayError wraps a failed gateway call with its classification.
type GatewayError struct {
	Kind    GatewayErrorKind
	Status  int
	Message string
	Cause   error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway %s (http %d): %s", e.Kind, e.Status, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("gateway %s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("gateway %s: %s", e.Kind, e.Message)
}

func (e *GatewayError) Unwrap() error { return e.Cause }

// GatewayErrorKindOf extracts the kind from err, returning GatewayUnknown for
// errors that carry no recognizable signal.
func GatewayErrorKindOf(err error) GatewayErrorKind {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		return gwErr.Kind
	}
	return GatewayUnknown
}
