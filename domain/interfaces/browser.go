package interfaces

import (
	"context"
	"time"

	"ui_flow_runner/domain/entities"
)

// Driver is the process-wide browser handle. It is acquired once and
// spawns isolated sessions; NewSession is safe for concurrent use.
type Driver interface {
	// NewSession creates an isolated browser context with one open page
	NewSession(ctx context.Context) (Session, error)

	// Close releases the browser and stops the driver
	Close() error
}

// Session is an isolated browser context owned by one scenario run.
// Page-level operations act on the most recently opened page.
type Session interface {
	// Navigate loads url and waits until navigation is committed
	Navigate(ctx context.Context, url string) error

	// Click clicks the index-th element matching selector once it is actionable
	Click(ctx context.Context, selector string, index int, timeout time.Duration) error

	// Fill types value into the index-th element matching selector once it is actionable
	Fill(ctx context.Context, selector string, index int, value string, timeout time.Duration) error

	// WaitForState waits for the current page to reach a lifecycle state
	WaitForState(ctx context.Context, state entities.LoadState, timeout time.Duration) error

	// Reload reloads the current page
	Reload(ctx context.Context) error

	// SetOffline toggles network emulation for the whole session
	SetOffline(ctx context.Context, offline bool) error

	// WaitForText waits until text is visible on the current page.
	// Expiry is reported as entities.ErrTimeout.
	WaitForText(ctx context.Context, text string, timeout time.Duration) error

	// Snapshot describes the current page
	Snapshot(ctx context.Context) (entities.PageSnapshot, error)

	// Close tears the session down; calls after the first are no-ops
	Close() error
}
