package domain

import (
	"context"
	"errors"
	"net/http"
)

var (
	// ErrInvalidSignature is returned when the webhook signature does not verify.
	ErrInvalidSignature = errors.New("invalid_signature")

	// ErrInvalidPayload is returned when the webhook body is not valid JSON
	// or is missing required fields.
	ErrInvalidPayload = errors.New("invalid_payload")

	// ErrEventIgnored indicates an event type we do not act on.
	ErrEventIgnored = errors.New("event_ignored")

	// ErrUnknownProduct is returned when the purchased product does not map
	// to a license plan.
	ErrUnknownProduct = errors.New("unknown_product")
)

// Service ingests payment-provider webhooks and fulfills completed orders.
type Service interface {
	Ingest(ctx context.Context, payload []byte, headers http.Header) error
	// ReplayFailed retries fulfillment for events whose first delivery
	// failed. It returns how many events were fulfilled this pass.
	ReplayFailed(ctx context.Context, limit int) (int, error)
}
