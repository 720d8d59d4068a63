// Package store defines the secret-store gateway contract and its
// error taxonomy. The core issues no network calls itself; everything
// goes through an external secret-management client behind this
// boundary, which tests replace with fakes.
package store

import (
	"context"
	"fmt"
	"strings"
)

// Gateway is the contract over the external secret-store client.
type Gateway interface {
	// Validate checks that the client is installed and authenticated.
	Validate(ctx context.Context) error

	// ItemExists reports whether the item exists in the vault.
	ItemExists(ctx context.Context, vault, item string) (bool, error)

	// UpsertFields creates the item if absent. If present, only the
	// given field names are updated; other fields on the item are left
	// untouched (merge, not replace).
	UpsertFields(ctx context.Context, vault, item string, fields map[string]string) error

	// InjectTemplate substitutes every store reference in the template
	// with the corresponding live field value.
	InjectTemplate(ctx context.Context, templateText string) (string, error)

	// Scheme is the reference URI scheme understood by this store.
	Scheme() string
}

// Reference renders the URI-shaped string pointing at one field.
func Reference(scheme, vault, item, field string) string {
	return fmt.Sprintf("%s://%s/%s/%s", scheme, vault, item, field)
}

// AuthError means the store client rejected or lacks a session.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	msg := "secret store authentication required"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *AuthError) Unwrap() error { return e.Err }

// VaultNotFoundError means the target vault does not exist or is not
// visible to the current session.
type VaultNotFoundError struct {
	Vault string
}

func (e *VaultNotFoundError) Error() string {
	return fmt.Sprintf("vault %q not found in secret store", e.Vault)
}

// PermissionError means the session is valid but lacks access rights.
type PermissionError struct {
	Op      string // "read", "write"
	Vault   string
	Item    string
	Message string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied during %s of %s/%s: %s", e.Op, e.Vault, e.Item, e.Message)
}

// UnavailableError covers transport and other unclassified client
// failures. Never retried internally; retry policy is the caller's.
type UnavailableError struct {
	Message string
	Err     error
}

func (e *UnavailableError) Error() string {
	msg := "secret store unavailable"
	if e.Message != "" {
		msg += ": " + strings.TrimSpace(e.Message)
	}
	return msg
}

func (e *UnavailableError) Unwrap() error { return e.Err }

// ReferenceError means template injection hit a reference whose
// vault, item or field does not exist.
type ReferenceError struct {
	Reference string
	Message   string
}

func (e *ReferenceError) Error() string {
	msg := "unresolvable secret reference"
	if e.Reference != "" {
		msg += " " + e.Reference
	}
	if e.Message != "" {
		msg += ": " + strings.TrimSpace(e.Message)
	}
	return msg
}
