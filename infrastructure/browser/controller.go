package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ui_flow_runner/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const (
	DefaultNavigationTimeout = 10 * time.Second
	DefaultLoadTimeout       = 3 * time.Second
	DefaultActionTimeout     = 5 * time.Second
)

// DefaultArgs are the Chromium flags the recorded flows launched with
var DefaultArgs = []string{
	"--window-size=1280,720",
	"--disable-dev-shm-usage",
}

// Options configures the browser driver and every session it spawns
type Options struct {
	Headless          bool
	Args              []string
	NavigationTimeout time.Duration
	LoadTimeout       time.Duration
	ActionTimeout     time.Duration
}

func (o Options) withDefaults() Options {
	if o.Args == nil {
		o.Args = DefaultArgs
	}
	if o.NavigationTimeout <= 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.LoadTimeout <= 0 {
		o.LoadTimeout = DefaultLoadTimeout
	}
	if o.ActionTimeout <= 0 {
		o.ActionTimeout = DefaultActionTimeout
	}
	return o
}

// Driver owns the Playwright process and the launched browser. Sessions are
// independent browser contexts created from it.
type Driver struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	logger  *logrus.Logger
	opts    Options

	mu       sync.Mutex
	closed   bool
	sessions map[*session]struct{}
}

// NewDriver - starts playwright and launches chromium
func NewDriver(logger *logrus.Logger, opts Options) (*Driver, error) {
	opts = opts.withDefaults()

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     opts.Args,
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"headless": opts.Headless,
		"version":  browser.Version(),
	}).Info("browser launched")

	return &Driver{
		pw:       pw,
		browser:  browser,
		logger:   logger,
		opts:     opts,
		sessions: make(map[*session]struct{}),
	}, nil
}

// NewSession - creates an isolated context with a single page
func (d *Driver) NewSession(ctx context.Context) (interfaces.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil, errors.New("driver is closed")
	}

	bctx, err := d.browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  1280,
			Height: 720,
		},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create context: %w", err)
	}
	bctx.SetDefaultTimeout(toMillis(d.opts.ActionTimeout))
	bctx.SetDefaultNavigationTimeout(toMillis(d.opts.NavigationTimeout))

	s := &session{
		context: bctx,
		logger:  d.logger,
		opts:    d.opts,
		release: d.release,
	}
	bctx.OnPage(s.track)

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	// OnPage may already have tracked the page; track ignores duplicates.
	s.track(page)

	d.sessions[s] = struct{}{}
	return s, nil
}

// release - forgets a session once it has been torn down
func (d *Driver) release(s *session) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.sessions, s)
}

// ActiveSessions - returns the number of sessions not yet closed
func (d *Driver) ActiveSessions() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sessions)
}

// Close - closes any remaining sessions, the browser and the driver
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	remaining := make([]*session, 0, len(d.sessions))
	for s := range d.sessions {
		remaining = append(remaining, s)
	}
	d.mu.Unlock()

	var errs []error
	for _, s := range remaining {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	if d.browser != nil {
		if err := d.browser.Close(); err != nil && !isClosedErr(err) {
			errs = append(errs, fmt.Errorf("failed to close browser: %w", err))
		}
	}

	if d.pw != nil {
		if err := d.pw.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop playwright: %w", err))
		}
	}

	return errors.Join(errs...)
}

// isClosedErr - reports errors caused by a target that is already gone
func isClosedErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, playwright.ErrTargetClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

// toMillis - converts a duration to the float milliseconds playwright expects
func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

var _ interfaces.Driver = (*Driver)(nil)
