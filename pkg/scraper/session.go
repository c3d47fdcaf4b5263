// pkg/scraper/session.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"gymbooker/pkg/log"
)

var chromeExecutablePath = func() string {
	if path, _ := exec.LookPath("google-chrome"); path != "" {
		return path
	}
	if path, _ := exec.LookPath("chromium"); path != "" {
		return path
	}
	return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
}()

const (
	loginPagePath             = "/portal/login"
	schedulePagePath          = "/portal/schedule"
	scheduleDateParameterName = "selectedDate"
	scheduleFixedQuerySuffix  = "hideIntegration=true&public=false"
	scheduleDateLayout        = "2006-01-02T00:00:00"

	cookieConsentSelector     = "#cookie-consent-accept"
	usernameFieldSelector     = "#login-username"
	passwordFieldSelector     = "#login-password"
	loginSubmitSelector       = "form.login-form button[type=submit]"
	scheduleContainerSelector = ".schedule-grid"
	bodySelector              = "body"
	expectedTitleFragment     = "Member Area"

	navigationTimeout  = 45 * time.Second
	pageSettleDuration = 2 * time.Second
)

// ErrTitleMismatch means the post-login page title did not look like the
// authenticated member area, usually wrong credentials.
var ErrTitleMismatch = errors.New("unexpected page title after login")

// Session owns one headless browser for the whole run. It is not safe for
// concurrent use; the run is strictly sequential anyway.
type Session struct {
	baseURL         string
	allocatorCancel context.CancelFunc
	browserContext  context.Context
	browserCancel   context.CancelFunc
}

// NewSession starts the headless browser the same way every run: system
// Chrome or Chromium, headless, no GPU.
func NewSession(parentContext context.Context, baseURL string) (*Session, error) {
	allocatorContext, allocatorCancel := chromedp.NewExecAllocator(
		parentContext,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.ExecPath(chromeExecutablePath),
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
		)...,
	)
	browserContext, browserCancel := chromedp.NewContext(allocatorContext)
	if runError := chromedp.Run(browserContext); runError != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("starting browser: %w", runError)
	}
	return &Session{
		baseURL:         strings.TrimRight(baseURL, "/"),
		allocatorCancel: allocatorCancel,
		browserContext:  browserContext,
		browserCancel:   browserCancel,
	}, nil
}

// Login walks the interactive login flow: open the login page, dismiss the
// cookie-consent prompt when present, fill the form, submit, and check the
// landing page title for the member area.
func (s *Session) Login(username, password string) error {
	loginURL := s.baseURL + loginPagePath
	log.L().Info("login_start", zap.String("url", loginURL))

	contextWithTimeout, contextCancel := context.WithTimeout(s.browserContext, navigationTimeout)
	defer contextCancel()

	var pageTitle string
	runError := chromedp.Run(
		contextWithTimeout,
		chromedp.Navigate(loginURL),
		chromedp.WaitVisible(usernameFieldSelector, chromedp.ByQuery),
		chromedp.ActionFunc(func(actionContext context.Context) error {
			_ = chromedp.Click(cookieConsentSelector, chromedp.ByQuery, chromedp.AtLeast(0)).Do(actionContext)
			return nil
		}),
		chromedp.SendKeys(usernameFieldSelector, username, chromedp.ByQuery),
		chromedp.SendKeys(passwordFieldSelector, password, chromedp.ByQuery),
		chromedp.Click(loginSubmitSelector, chromedp.ByQuery),
		chromedp.Sleep(pageSettleDuration),
		chromedp.Title(&pageTitle),
	)
	if runError != nil {
		return fmt.Errorf("login navigation: %w", runError)
	}
	if !strings.Contains(pageTitle, expectedTitleFragment) {
		return fmt.Errorf("%w: %q", ErrTitleMismatch, pageTitle)
	}
	log.L().Info("login_done", zap.String("title", pageTitle))
	return nil
}

// OpenWeek loads the weekly-schedule view for the given date (sent as
// midnight, integration and public modes suppressed), waits for the grid to
// render and settle, and returns the page HTML.
func (s *Session) OpenWeek(date time.Time) (string, error) {
	weekURL := fmt.Sprintf("%s%s?%s=%s&%s",
		s.baseURL, schedulePagePath,
		scheduleDateParameterName, url.QueryEscape(date.Format(scheduleDateLayout)),
		scheduleFixedQuerySuffix,
	)
	log.L().Info("open_week", zap.String("url", weekURL))

	contextWithTimeout, contextCancel := context.WithTimeout(s.browserContext, navigationTimeout)
	defer contextCancel()

	var pageHTML string
	runError := chromedp.Run(
		contextWithTimeout,
		chromedp.Navigate(weekURL),
		chromedp.WaitVisible(scheduleContainerSelector, chromedp.ByQuery),
		chromedp.Sleep(pageSettleDuration),
		chromedp.OuterHTML(bodySelector, &pageHTML, chromedp.ByQuery),
	)
	if runError != nil {
		return "", fmt.Errorf("loading weekly schedule: %w", runError)
	}
	return pageHTML, nil
}

// Cookies exports the browser session's cookies for the booking client.
func (s *Session) Cookies() ([]*http.Cookie, error) {
	var exportedCookies []*http.Cookie
	runError := chromedp.Run(s.browserContext, chromedp.ActionFunc(func(actionContext context.Context) error {
		browserCookies, cookiesError := network.GetCookies().Do(actionContext)
		if cookiesError != nil {
			return cookiesError
		}
		for _, browserCookie := range browserCookies {
			exportedCookies = append(exportedCookies, &http.Cookie{
				Name:   browserCookie.Name,
				Value:  browserCookie.Value,
				Domain: browserCookie.Domain,
				Path:   browserCookie.Path,
			})
		}
		return nil
	}))
	if runError != nil {
		return nil, fmt.Errorf("exporting cookies: %w", runError)
	}
	return exportedCookies, nil
}

// Close tears the browser down.
func (s *Session) Close() {
	s.browserCancel()
	s.allocatorCancel()
}
