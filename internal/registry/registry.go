// Package registry owns tenant profile state. It is constructed at process
// start and passed by handle to every consumer; there is no package-level
// singleton, so tests get isolated instances.
package registry

import (
	"context"
	"errors"

	"brandguard-platform/models"
)

var (
	// ErrUnknownClient is returned when no profile exists for a client id.
	// Consumers must propagate it rather than substitute a default profile.
	ErrUnknownClient = errors.New("unknown client")

	// ErrDuplicateClient is returned by Register when the client id is
	// already present. Re-registration never overwrites; use Update.
	ErrDuplicateClient = errors.New("client already registered")
)

// Registry is the client profile store. Register rejects duplicates, Update
// replaces the profile wholesale, and Get fails with ErrUnknownClient.
type Registry interface {
	Register(ctx context.Context, profile models.ClientProfile) error
	Get(ctx context.Context, clientID string) (models.ClientProfile, error)
	Update(ctx context.Context, profile models.ClientProfile) error
	Deregister(ctx context.Context, clientID string) error
	List(ctx context.Context) ([]models.ClientProfile, error)
}
