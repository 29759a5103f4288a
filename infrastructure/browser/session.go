package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ui_flow_runner/domain/entities"
	"ui_flow_runner/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

const actionablePollInterval = 100 * time.Millisecond

var errNoPage = errors.New("session has no open page")

type session struct {
	context playwright.BrowserContext
	logger  *logrus.Logger
	opts    Options
	release func(*session)

	pagesMutex sync.Mutex
	pages      []playwright.Page
	page       playwright.Page

	closeOnce sync.Once
	closeErr  error
}

// track - registers a newly opened page and makes it current
func (s *session) track(newPage playwright.Page) {
	s.pagesMutex.Lock()
	defer s.pagesMutex.Unlock()

	for _, p := range s.pages {
		if p == newPage {
			return
		}
	}

	s.pages = append(s.pages, newPage)
	s.page = newPage

	newPage.OnDialog(func(dialog playwright.Dialog) {
		_ = dialog.Accept()
	})
	newPage.OnClose(s.untrack)
}

// untrack - forgets a closed page; the most recently opened remaining page
// becomes current
func (s *session) untrack(closedPage playwright.Page) {
	s.pagesMutex.Lock()
	defer s.pagesMutex.Unlock()

	for i, p := range s.pages {
		if p == closedPage {
			s.pages = append(s.pages[:i], s.pages[i+1:]...)
			break
		}
	}

	if s.page == closedPage {
		s.page = nil
		if len(s.pages) > 0 {
			s.page = s.pages[len(s.pages)-1]
		}
	}
}

// CurrentPage - returns the most recently opened page of the session
func (s *session) CurrentPage() playwright.Page {
	s.pagesMutex.Lock()
	defer s.pagesMutex.Unlock()
	return s.page
}

// PageCount - returns the number of open pages
func (s *session) PageCount() int {
	s.pagesMutex.Lock()
	defer s.pagesMutex.Unlock()
	return len(s.pages)
}

func (s *session) currentPage(ctx context.Context) (playwright.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	page := s.CurrentPage()
	if page == nil {
		return nil, errNoPage
	}
	return page, nil
}

// Navigate - loads url, waiting only for the navigation to commit
func (s *session) Navigate(ctx context.Context, url string) error {
	page, err := s.currentPage(ctx)
	if err != nil {
		return err
	}

	_, err = page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
		Timeout:   playwright.Float(toMillis(s.opts.NavigationTimeout)),
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, classify(err))
	}

	s.settleLoad(page)
	return nil
}

// settleLoad - gives the page and its frames a bounded chance to reach
// DOMContentLoaded; failures are tolerated
func (s *session) settleLoad(page playwright.Page) {
	log := s.logger.WithField("url", page.URL())

	_ = BestEffort(log, "page domcontentloaded", s.opts.LoadTimeout, func(timeoutMS float64) error {
		return page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
			State:   playwright.LoadStateDomcontentloaded,
			Timeout: playwright.Float(timeoutMS),
		})
	})

	for _, frame := range page.Frames() {
		_ = BestEffort(log, "frame domcontentloaded", s.opts.LoadTimeout, func(timeoutMS float64) error {
			return frame.WaitForLoadState(playwright.FrameWaitForLoadStateOptions{
				State:   playwright.LoadStateDomcontentloaded,
				Timeout: playwright.Float(timeoutMS),
			})
		})
	}
}

// actionable - waits until the index-th match of selector is visible and
// enabled; returns the part of timeout left for the action itself
func (s *session) actionable(ctx context.Context, selector string, index int, timeout time.Duration) (playwright.Locator, time.Duration, error) {
	page, err := s.currentPage(ctx)
	if err != nil {
		return nil, 0, err
	}

	deadline := time.Now().Add(timeout)
	locator := page.Locator(selector).Nth(index)

	err = locator.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(toMillis(timeout)),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("element %s[%d] not found or not visible: %w", selector, index, classify(err))
	}

	for {
		enabled, err := locator.IsEnabled()
		if err != nil {
			return nil, 0, fmt.Errorf("element %s[%d] state unknown: %w", selector, index, classify(err))
		}
		if enabled {
			remaining, err := remainingTimeout(deadline)
			if err != nil {
				return nil, 0, fmt.Errorf("element %s[%d] %w", selector, index, err)
			}
			return locator, remaining, nil
		}
		if !time.Now().Before(deadline) {
			return nil, 0, fmt.Errorf("%w: element %s[%d] not enabled within %s", entities.ErrTimeout, selector, index, timeout)
		}

		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(actionablePollInterval):
		}
	}
}

// remainingTimeout - time left before deadline. Playwright treats a zero
// timeout as unlimited, so an expired deadline is an error instead.
func remainingTimeout(deadline time.Time) (time.Duration, error) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return 0, fmt.Errorf("%w: no time left to act", entities.ErrTimeout)
	}
	return remaining, nil
}

// Click - clicks an element once it is actionable
func (s *session) Click(ctx context.Context, selector string, index int, timeout time.Duration) error {
	locator, remaining, err := s.actionable(ctx, selector, index, timeout)
	if err != nil {
		return err
	}

	err = locator.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(toMillis(remaining)),
	})
	if err != nil {
		return fmt.Errorf("failed to click %s[%d]: %w", selector, index, classify(err))
	}
	return nil
}

// Fill - replaces the value of an input once it is actionable
func (s *session) Fill(ctx context.Context, selector string, index int, value string, timeout time.Duration) error {
	locator, remaining, err := s.actionable(ctx, selector, index, timeout)
	if err != nil {
		return err
	}

	err = locator.Fill(value, playwright.LocatorFillOptions{
		Timeout: playwright.Float(toMillis(remaining)),
	})
	if err != nil {
		return fmt.Errorf("failed to fill %s[%d]: %w", selector, index, classify(err))
	}
	return nil
}

// WaitForState - waits for the current page to reach a lifecycle state
func (s *session) WaitForState(ctx context.Context, state entities.LoadState, timeout time.Duration) error {
	page, err := s.currentPage(ctx)
	if err != nil {
		return err
	}

	pwState, err := toLoadState(state)
	if err != nil {
		return err
	}

	err = page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   pwState,
		Timeout: playwright.Float(toMillis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("page did not reach %s: %w", state, classify(err))
	}
	return nil
}

// Reload - reloads the current page with the same commit-only policy as Navigate
func (s *session) Reload(ctx context.Context) error {
	page, err := s.currentPage(ctx)
	if err != nil {
		return err
	}

	_, err = page.Reload(playwright.PageReloadOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
		Timeout:   playwright.Float(toMillis(s.opts.NavigationTimeout)),
	})
	if err != nil {
		return fmt.Errorf("failed to reload: %w", classify(err))
	}

	s.settleLoad(page)
	return nil
}

// SetOffline - toggles network emulation for every page of the session
func (s *session) SetOffline(ctx context.Context, offline bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.context.SetOffline(offline); err != nil {
		return fmt.Errorf("failed to set offline=%t: %w", offline, err)
	}
	return nil
}

// WaitForText - waits until some element containing text is visible. Hidden
// matches are skipped, not waited on.
func (s *session) WaitForText(ctx context.Context, text string, timeout time.Duration) error {
	page, err := s.currentPage(ctx)
	if err != nil {
		return err
	}

	err = page.GetByText(text).Locator("visible=true").First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(toMillis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("text %q not visible: %w", text, classify(err))
	}
	return nil
}

// Snapshot - describes the current page for diagnostics
func (s *session) Snapshot(ctx context.Context) (entities.PageSnapshot, error) {
	page, err := s.currentPage(ctx)
	if err != nil {
		return entities.PageSnapshot{}, err
	}

	title, _ := page.Title()
	text, _ := visibleText(page)

	return entities.PageSnapshot{
		URL:         page.URL(),
		Title:       title,
		TextContent: text,
		Pages:       s.PageCount(),
	}, nil
}

// Close - closes the browser context exactly once
func (s *session) Close() error {
	s.closeOnce.Do(func() {
		if err := s.context.Close(); err != nil && !isClosedErr(err) {
			s.closeErr = fmt.Errorf("failed to close context: %w", err)
		}
		if s.release != nil {
			s.release(s)
		}
	})
	return s.closeErr
}

// visibleText - extracts visible text content from the page
func visibleText(page playwright.Page) (string, error) {
	jsCode := `
	() => {
		if (!document.body) return '';
		const walker = document.createTreeWalker(
			document.body,
			NodeFilter.SHOW_TEXT,
			{
				acceptNode: function(node) {
					const parent = node.parentElement;
					if (!parent) return NodeFilter.FILTER_REJECT;
					const style = window.getComputedStyle(parent);
					if (style.display === 'none' || style.visibility === 'hidden') {
						return NodeFilter.FILTER_REJECT;
					}
					return NodeFilter.FILTER_ACCEPT;
				}
			}
		);

		const texts = [];
		let node;
		while (node = walker.nextNode()) {
			const text = node.textContent.trim();
			if (text.length > 0) {
				texts.push(text);
			}
		}
		return texts.join(' ').substring(0, 1000);
	}
	`

	result, err := page.Evaluate(jsCode)
	if err != nil {
		return "", err
	}
	if text, ok := result.(string); ok {
		return text, nil
	}
	return "", nil
}

// toLoadState - maps a step load state onto playwright's
func toLoadState(state entities.LoadState) (*playwright.LoadState, error) {
	switch state {
	case entities.LoadStateLoad:
		return playwright.LoadStateLoad, nil
	case entities.LoadStateDOMContentLoaded:
		return playwright.LoadStateDomcontentloaded, nil
	case entities.LoadStateNetworkIdle:
		return playwright.LoadStateNetworkidle, nil
	default:
		return nil, fmt.Errorf("unknown load state: %q", state)
	}
}

// classify - marks playwright timeouts with entities.ErrTimeout
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) && !errors.Is(err, entities.ErrTimeout) {
		return fmt.Errorf("%w: %w", entities.ErrTimeout, err)
	}
	return err
}

var _ interfaces.Session = (*session)(nil)
