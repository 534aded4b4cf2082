package upsell

import (
	"encoding/json"
	"fmt"

	"github.com/yashrajoria/storefront/models"
)

// Decode classifies one response of the upsell endpoint.
func Decode(status int, body []byte) ([]models.Product, error) {
	if status < 200 || status > 299 {
		return nil, upstreamError(status, body)
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, networkError(fmt.Errorf("decode upsell response: %w", err))
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &FetchError{Kind: ErrMalformedResponse, Status: status, Message: malformedMessage}
	}
	if _, ok := obj["products"].([]any); !ok {
		return nil, &FetchError{Kind: ErrMalformedResponse, Status: status, Message: malformedMessage}
	}

	var env struct {
		Products []models.Product `json:"products"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &FetchError{Kind: ErrMalformedResponse, Status: status, Message: malformedMessage, Err: err}
	}
	if env.Products == nil {
		env.Products = []models.Product{}
	}
	return env.Products, nil
}

func upstreamError(status int, body []byte) *FetchError {
	msg := DefaultErrorMessage
	var env struct {
		Error any `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if s, ok := env.Error.(string); ok && s != "" {
			msg = s
		}
	}
	return &FetchError{Kind: ErrUpstream, Status: status, Message: msg}
}
