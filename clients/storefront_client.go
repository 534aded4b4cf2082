package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yashrajoria/storefront/metrics"
	"resty.dev/v3"
)

// ErrStorefrontStatus is returned when the Storefront API answers with a non-2xx status.
var ErrStorefrontStatus = errors.New("storefront: unexpected status")

type StorefrontConfig struct {
	// Endpoint overrides the URL derived from Domain and APIVersion.
	Endpoint   string
	Domain     string
	APIVersion string
	Token      string
	Timeout    time.Duration
}

// URL returns the GraphQL endpoint.
func (c StorefrontConfig) URL() string {
	if c.Endpoint != "" {
		return c.Endpoint
	}
	domain := strings.TrimSuffix(strings.TrimPrefix(c.Domain, "https://"), "/")
	return fmt.Sprintf("https://%s/api/%s/graphql.json", domain, c.APIVersion)
}

// GraphQLError is one entry of the response's errors array.
type GraphQLError struct {
	Message string `json:"message"`
}

type GraphQLErrors []GraphQLError

func (e GraphQLErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ge := range e {
		msgs = append(msgs, ge.Message)
	}
	return "storefront graphql: " + strings.Join(msgs, "; ")
}

// StorefrontExecutor runs a GraphQL operation and decodes its data into out.
type StorefrontExecutor interface {
	Query(ctx context.Context, operation, query string, variables map[string]any, out any) error
}

type StorefrontClient struct {
	http     *resty.Client
	endpoint string
}

func NewStorefrontClient(cfg StorefrontConfig) *StorefrontClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		client.SetHeader("X-Shopify-Storefront-Access-Token", cfg.Token)
	}

	return &StorefrontClient{http: client, endpoint: cfg.URL()}
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors"`
}

func (c *StorefrontClient) Query(ctx context.Context, operation, query string, variables map[string]any, out any) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveStorefront(operation, start, err) }()

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(graphQLRequest{Query: query, Variables: variables}).
		Post(c.endpoint)
	if err != nil {
		return fmt.Errorf("storefront %s: %w", operation, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("%w: %s status=%d body=%s", ErrStorefrontStatus, operation, resp.StatusCode(), truncate(resp.String(), 256))
	}

	var env graphQLResponse
	if err := json.Unmarshal(resp.Bytes(), &env); err != nil {
		return fmt.Errorf("storefront %s: decode response: %w", operation, err)
	}
	if len(env.Errors) > 0 {
		return fmt.Errorf("storefront %s: %w", operation, env.Errors)
	}
	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("storefront %s: decode data: %w", operation, err)
	}
	return nil
}

func (c *StorefrontClient) Close() error {
	return c.http.Close()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
