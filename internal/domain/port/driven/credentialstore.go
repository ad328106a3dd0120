package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// TOOTGROUP_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set TOOTGROUP_SECRET_KEY")

// CredentialStore defines the driven port for encrypted credential persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the credential for the given group and key.
	Set(ctx context.Context, groupName, key, plaintext string) error

	// Get retrieves the plaintext credential. Returns ("", nil) if none exists.
	Get(ctx context.Context, groupName, key string) (string, error)

	// List returns all credentials of a group with decrypted values.
	List(ctx context.Context, groupName string) ([]model.Credential, error)

	// Delete removes the credential for the given group and key.
	Delete(ctx context.Context, groupName, key string) error
}
