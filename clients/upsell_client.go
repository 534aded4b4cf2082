package clients

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yashrajoria/storefront/logger"
	"resty.dev/v3"
)

// maxUpsellBody caps how much of an upsell response is buffered.
const maxUpsellBody = 4 << 20

// UpsellClient issues the cart's upsell GET against the storefront's own public origin.
// It satisfies upsell.Fetcher.
type UpsellClient struct {
	http     *resty.Client
	baseURL  string
	locale   string
	clientIP string
}

func NewUpsellClient(baseURL string, timeout time.Duration) *UpsellClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetResponseBodyLimit(maxUpsellBody).
		SetHeader("Accept", "application/json")

	return &UpsellClient{http: client, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// WithLocale returns a copy that prefixes every path with /{locale}.
func (u *UpsellClient) WithLocale(locale string) *UpsellClient {
	cp := *u
	cp.locale = strings.Trim(locale, "/")
	return &cp
}

// WithClientIP returns a copy that sends ip as X-Forwarded-For, so the self-call is
// rate limited against the shopper rather than the server's own address.
func (u *UpsellClient) WithClientIP(ip string) *UpsellClient {
	cp := *u
	cp.clientIP = ip
	return &cp
}

func (u *UpsellClient) Fetch(ctx context.Context, path string) (int, []byte, error) {
	target := u.baseURL
	if u.locale != "" {
		target += "/" + u.locale
	}
	target += path

	req := u.http.R().SetContext(ctx)
	if rid := logger.RequestID(ctx); rid != "unknown" {
		req.SetHeader("X-Request-ID", rid)
	}
	if u.clientIP != "" {
		req.SetHeader("X-Forwarded-For", u.clientIP)
	}

	resp, err := req.Get(target)
	if err != nil {
		return 0, nil, fmt.Errorf("upsell fetch: %w", err)
	}
	return resp.StatusCode(), resp.Bytes(), nil
}

func (u *UpsellClient) Close() error {
	return u.http.Close()
}
