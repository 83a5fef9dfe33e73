package model

import "fmt"

// NotFoundError signals that a referenced work item or asset folder does not
// exist in the backing storage. Fatal for that item's processing.
type NotFoundError struct {
	Kind string
	Ref  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Ref)
}

// EmptyMediaError signals a work item with zero media files. Fatal for that item.
type EmptyMediaError struct {
	Ref string
}

func (e *EmptyMediaError) Error() string {
	return fmt.Sprintf("no media in folder: %s", e.Ref)
}

// PublishError wraps a platform rejection or transport failure. Fatal for that
// platform leg only; the run continues.
type PublishError struct {
	Platform Platform
	Err      error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("%s publish failed: %v", e.Platform, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

// TokenRefreshError wraps a failed credential exchange. Non-fatal: the token
// manager degrades to the last known token.
type TokenRefreshError struct {
	Err error
}

func (e *TokenRefreshError) Error() string {
	return fmt.Sprintf("token refresh failed: %v", e.Err)
}

func (e *TokenRefreshError) Unwrap() error { return e.Err }

// LedgerWriteError wraps a failed status-store write. The external post may
// exist without being marked; the duplicate risk is documented, not solved.
type LedgerWriteError struct {
	ItemID string
	Err    error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed for %s: %v", e.ItemID, e.Err)
}

func (e *LedgerWriteError) Unwrap() error { return e.Err }
