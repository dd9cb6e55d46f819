// Package httpclient builds the transport used to reach the events API.
package httpclient

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eventdesk/eventdesk/internal/config"
	"golang.org/x/net/proxy"
)

// DefaultDialTimeout bounds connection establishment.
const DefaultDialTimeout = 5 * time.Second

// Options configures the transport.
type Options struct {
	DialTimeout time.Duration
	Proxy       *config.ProxyConfig
}

// New returns an http.Client without a whole-request timeout.
// Callers bound each call with a context deadline.
func New(opts Options) (*http.Client, error) {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}

	dialer := &net.Dialer{
		Timeout:   opts.DialTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          20,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.DialTimeout,
		ExpectContinueTimeout: time.Second,
	}

	if opts.Proxy.HasProxy() {
		if err := applyProxy(transport, dialer, opts.Proxy); err != nil {
			return nil, fmt.Errorf("configure proxy: %w", err)
		}
	}

	return &http.Client{Transport: transport}, nil
}

// FromConfig builds the client described by cfg.
func FromConfig(cfg *config.Config) (*http.Client, error) {
	if cfg == nil {
		return New(Options{})
	}
	return New(Options{Proxy: cfg.Proxy})
}

func applyProxy(transport *http.Transport, direct *net.Dialer, cfg *config.ProxyConfig) error {
	if cfg.SOCKS5Proxy != "" {
		dial, err := socks5Dialer(cfg.SOCKS5Proxy, direct)
		if err != nil {
			return err
		}
		transport.DialContext = dial
		return nil
	}

	for _, raw := range []string{cfg.HTTPProxy, cfg.HTTPSProxy} {
		if raw == "" {
			continue
		}
		if _, err := url.Parse(raw); err != nil {
			return fmt.Errorf("parse proxy URL: %w", err)
		}
	}
	transport.Proxy = func(req *http.Request) (*url.URL, error) {
		return selectProxy(req.URL, cfg)
	}
	return nil
}

type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func socks5Dialer(raw string, direct *net.Dialer) (dialContextFunc, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse SOCKS5 proxy URL: %w", err)
	}

	var auth *proxy.Auth
	if u.User != nil {
		password, _ := u.User.Password()
		auth = &proxy.Auth{User: u.User.Username(), Password: password}
	}

	d, err := proxy.SOCKS5("tcp", u.Host, auth, direct)
	if err != nil {
		return nil, fmt.Errorf("create SOCKS5 dialer: %w", err)
	}

	if cd, ok := d.(proxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}

// selectProxy picks the proxy for a target URL, or nil for a direct connection.
func selectProxy(target *url.URL, cfg *config.ProxyConfig) (*url.URL, error) {
	if bypassProxy(target.Host, cfg.NoProxy) {
		return nil, nil
	}

	raw := cfg.HTTPProxy
	if target.Scheme == "https" && cfg.HTTPSProxy != "" {
		raw = cfg.HTTPSProxy
	}
	if raw == "" {
		return nil, nil
	}
	return url.Parse(raw)
}

// bypassProxy reports whether host matches a no_proxy entry.
func bypassProxy(host, noProxy string) bool {
	if noProxy == "" {
		return false
	}

	name, _, err := net.SplitHostPort(host)
	if err != nil {
		name = host
	}
	name = strings.ToLower(name)

	for _, entry := range strings.Split(noProxy, ",") {
		entry = strings.ToLower(strings.TrimSpace(entry))
		switch {
		case entry == "":
			continue
		case entry == "*":
			return true
		case strings.HasPrefix(entry, "."):
			if strings.HasSuffix(name, entry) {
				return true
			}
		case name == entry, strings.HasSuffix(name, "."+entry):
			return true
		}
	}
	return false
}

// Describe renders the proxy settings with credentials masked.
func Describe(cfg *config.ProxyConfig) string {
	if !cfg.HasProxy() {
		return "direct"
	}

	var parts []string
	if cfg.SOCKS5Proxy != "" {
		parts = append(parts, "socks5="+maskCredentials(cfg.SOCKS5Proxy))
	}
	if cfg.HTTPProxy != "" {
		parts = append(parts, "http="+maskCredentials(cfg.HTTPProxy))
	}
	if cfg.HTTPSProxy != "" {
		parts = append(parts, "https="+maskCredentials(cfg.HTTPSProxy))
	}
	if cfg.NoProxy != "" {
		parts = append(parts, "no_proxy="+cfg.NoProxy)
	}
	return strings.Join(parts, " ")
}

func maskCredentials(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.User != nil {
		if _, ok := u.User.Password(); ok {
			u.User = url.UserPassword(u.User.Username(), "****")
		}
	}
	return u.String()
}
