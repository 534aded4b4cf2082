package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yashrajoria/storefront/models"
)

type queryCall struct {
	operation string
	variables map[string]any
}

// fakeStorefront answers each operation with canned data JSON or an error.
type fakeStorefront struct {
	data  map[string]string
	err   error
	calls []queryCall
}

func (f *fakeStorefront) Query(_ context.Context, operation, _ string, variables map[string]any, out any) error {
	f.calls = append(f.calls, queryCall{operation: operation, variables: variables})
	if f.err != nil {
		return f.err
	}
	raw, ok := f.data[operation]
	if !ok || out == nil {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}

type fakeCache struct {
	entries map[string][]models.Product
	sets    int
}

func (f *fakeCache) GetUpsell(_ context.Context, locale string) ([]models.Product, bool) {
	p, ok := f.entries[locale]
	return p, ok
}

func (f *fakeCache) SetUpsell(_ context.Context, locale string, products []models.Product) {
	if f.entries == nil {
		f.entries = map[string][]models.Product{}
	}
	f.entries[locale] = products
	f.sets++
}

type published struct {
	topic, eventType string
	body             []byte
}

type fakeSNS struct {
	msgs []published
	err  error
}

func (f *fakeSNS) Publish(_ context.Context, topicArn, eventType string, message []byte) error {
	f.msgs = append(f.msgs, published{topic: topicArn, eventType: eventType, body: message})
	return f.err
}

type fakeRecorder struct{ counts map[string]int }

func (f *fakeRecorder) RecordCount(_ context.Context, metricName string, _ map[string]string) error {
	if f.counts == nil {
		f.counts = map[string]int{}
	}
	f.counts[metricName]++
	return nil
}

func (f *fakeRecorder) RecordLatency(context.Context, string, time.Duration, map[string]string) error {
	return nil
}

func (f *fakeRecorder) IsEnabled() bool { return true }
