package crawler

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"sjsage522/encarworker/logger"
	"sjsage522/encarworker/pkg/errors"
)

// BrowserOptions configures a Chromium session
type BrowserOptions struct {
	Headless bool
	// Bin is the browser binary; empty lets rod find or download one
	Bin string
	// ProfileDir keeps cookies between sessions; empty uses a throwaway dir
	ProfileDir      string
	UserAgent       string
	ProxyServer     string
	ProxyLogin      string
	ProxyPassword   string
	PageLoadTimeout time.Duration
	TableTimeout    time.Duration
}

// BrowserFetcher implements PageFetcher with a real browser driven by rod
type BrowserFetcher struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	opts     BrowserOptions
	log      *logger.Logger
}

// NewBrowserFetcher launches a browser and connects to it
func NewBrowserFetcher(ctx context.Context, opts BrowserOptions, log *logger.Logger) (*BrowserFetcher, error) {
	l := launcher.New().
		Context(ctx).
		Headless(opts.Headless).
		Set("disable-gpu").
		Set("disable-dev-shm-usage").
		Set("no-sandbox").
		Set("mute-audio").
		Set("disable-notifications").
		Set("disable-popup-blocking").
		Set("window-size", "1920,1080")

	if opts.Bin != "" {
		l = l.Bin(opts.Bin)
	}
	if opts.ProfileDir != "" {
		l = l.UserDataDir(opts.ProfileDir)
	}
	if opts.ProxyServer != "" {
		l = l.Proxy(opts.ProxyServer)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, errors.NewNetwork("", "launch browser", err)
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, errors.NewNetwork("", "connect browser", err)
	}

	if opts.ProxyLogin != "" {
		wait := browser.HandleAuth(opts.ProxyLogin, opts.ProxyPassword)
		go func() {
			if err := wait(); err != nil && ctx.Err() == nil {
				log.Debug().Err(err).Msg("Proxy auth handler stopped")
			}
		}()
	}

	log.Debug().
		Bool("headless", opts.Headless).
		Bool("proxy", opts.ProxyServer != "").
		Str("profile", opts.ProfileDir).
		Msg("Browser session started")

	return &BrowserFetcher{
		launcher: l,
		browser:  browser,
		opts:     opts,
		log:      log,
	}, nil
}

// FetchRows opens url in a new tab and waits for the car list rows
func (f *BrowserFetcher) FetchRows(ctx context.Context, url string) ([]Row, error) {
	page, err := f.browser.Context(ctx).Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, errors.NewNetwork(url, "open tab", err)
	}
	defer page.Close()

	if f.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.opts.UserAgent}); err != nil {
			f.log.Warn().Err(err).Msg("Failed to set user agent")
		}
	}

	nav := page.Timeout(f.opts.PageLoadTimeout)
	err = nav.Navigate(url)
	nav.CancelTimeout()
	if err != nil {
		return nil, waitError(ctx, url, f.opts.PageLoadTimeout, err)
	}

	wait := page.Timeout(f.opts.TableTimeout)
	defer wait.CancelTimeout()

	if _, err := wait.Element(CarListSelector); err != nil {
		return nil, waitError(ctx, url, f.opts.TableTimeout, err)
	}
	if _, err := wait.Element(CarRowSelector); err != nil {
		return nil, waitError(ctx, url, f.opts.TableTimeout, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, errors.NewNetwork(url, "read page html", err)
	}

	rows, err := RowsFromHTML(strings.NewReader(html))
	if err != nil {
		return nil, errors.NewExtraction(url, "parse rendered page", err)
	}
	return rows, nil
}

// Close shuts the browser down and removes a throwaway profile
func (f *BrowserFetcher) Close() error {
	err := f.browser.Close()
	f.launcher.Kill()
	if f.opts.ProfileDir == "" {
		f.launcher.Cleanup()
	}
	return err
}

// waitError classifies a failed bounded wait
func waitError(ctx context.Context, url string, wait time.Duration, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeout(url, wait, err)
	}
	return errors.NewNetwork(url, "browser navigation failed", err)
}
