package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
)

type ActivateRequest struct {
	LicenseID      snowflake.ID
	MaxActivations int
	CustomerID     *snowflake.ID
	DeviceID       string
	DeviceName     string
	OS             string
	AppVersion     string
}

type ActivateResult struct {
	InstanceID  string
	DevicesUsed int
	// Existing is true when the device was already bound and the call only
	// refreshed its metadata.
	Existing bool
}

type Service interface {
	// Activate binds a device to a license, enforcing the activation cap.
	// Repeat calls for the same (license, device) pair are idempotent and
	// return the original instance identifier. The count check and insert
	// run atomically with respect to other activations of the same license.
	Activate(ctx context.Context, req ActivateRequest) (*ActivateResult, error)
	// Deactivate releases the device bound to an instance identifier,
	// freeing an activation slot. The row is kept; only is_active flips.
	Deactivate(ctx context.Context, instanceID string) error
	CountActive(ctx context.Context, licenseID snowflake.ID) (int, error)
}

var (
	ErrInvalidDevice    = errors.New("invalid_device")
	ErrInstanceNotFound = errors.New("instance_not_found")
)

// ErrLimitExceeded reports a license with no activation slots left. It
// carries the configured limit so the caller can render a precise message.
type ErrLimitExceeded struct {
	Limit int
}

func (e *ErrLimitExceeded) Error() string {
	return fmt.Sprintf("activation_limit_exceeded: limit is %d devices", e.Limit)
}
