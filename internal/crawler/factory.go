package crawler

import (
	"context"
	"net/http"
	"net/url"

	"sjsage522/encarworker/config"
	"sjsage522/encarworker/helpers"
	"sjsage522/encarworker/logger"
)

// NewFetcherFactory returns a factory for the fetcher selected in cfg,
// bound to the configured browser identity
func NewFetcherFactory(cfg *config.Config, log *logger.Logger) FetcherFactory {
	identity := cfg.Identity()
	log = log.ForComponent("fetcher")

	if cfg.Fetcher == "http" {
		client := helpers.NewClient(cfg.PageLoadTimeout)
		if identity.UseProxy {
			proxyURL := &url.URL{
				Scheme: "http",
				Host:   identity.Proxy.Host + ":" + identity.Proxy.Port,
			}
			if identity.Proxy.Login != "" {
				proxyURL.User = url.UserPassword(identity.Proxy.Login, identity.Proxy.Password)
			}
			client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
		}
		return func(ctx context.Context) (PageFetcher, error) {
			return NewHTTPFetcher(client, identity.UA), nil
		}
	}

	opts := BrowserOptions{
		Headless:        cfg.Headless,
		Bin:             cfg.BrowserBin,
		ProfileDir:      cfg.BrowserProfileDir(),
		UserAgent:       identity.UA,
		PageLoadTimeout: cfg.PageLoadTimeout,
		TableTimeout:    cfg.TableTimeout,
	}
	if identity.UseProxy {
		opts.ProxyServer = identity.Proxy.Server()
		opts.ProxyLogin = identity.Proxy.Login
		opts.ProxyPassword = identity.Proxy.Password
	}

	return func(ctx context.Context) (PageFetcher, error) {
		return NewBrowserFetcher(ctx, opts, log)
	}
}
