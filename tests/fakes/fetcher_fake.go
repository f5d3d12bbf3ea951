package fakes

import (
	"context"
	"sync"
	"time"

	"github.com/systmms/globalsecrets/pkg/provider"
)

// FakeFetcher is an in-memory provider.Fetcher that counts calls.
type FakeFetcher struct {
	name string

	secrets map[string]string
	failOn  map[string]error
	delay   time.Duration
	calls   map[string]int

	// Hook, when set, runs at the start of every Fetch.
	Hook func(secretName string)

	mu sync.Mutex
}

// NewFakeFetcher creates an empty fake named "fake".
func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		name:    "fake",
		secrets: make(map[string]string),
		failOn:  make(map[string]error),
		calls:   make(map[string]int),
	}
}

// WithSecret stores a payload under secretName.
func (f *FakeFetcher) WithSecret(secretName, payload string) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.secrets[secretName] = payload
	return f
}

// WithError makes Fetch of secretName fail with err.
func (f *FakeFetcher) WithError(secretName string, err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failOn[secretName] = err
	return f
}

// WithDelay makes every Fetch sleep before answering.
func (f *FakeFetcher) WithDelay(d time.Duration) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = d
	return f
}

// Name implements provider.Fetcher.
func (f *FakeFetcher) Name() string {
	return f.name
}

// Fetch implements provider.Fetcher.
func (f *FakeFetcher) Fetch(ctx context.Context, secretName string) (provider.SecretBlob, error) {
	if f.Hook != nil {
		f.Hook(secretName)
	}

	f.mu.Lock()
	f.calls[secretName]++
	delay := f.delay
	payload, ok := f.secrets[secretName]
	failErr := f.failOn[secretName]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return provider.SecretBlob{}, ctx.Err()
		}
	}

	if failErr != nil {
		return provider.SecretBlob{}, failErr
	}
	if !ok {
		return provider.SecretBlob{}, &provider.NotFoundError{Provider: f.name, Key: secretName}
	}
	return provider.SecretBlob{Value: payload, Version: "v1"}, nil
}

// FetchCount returns how many times secretName was fetched.
func (f *FakeFetcher) FetchCount(secretName string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[secretName]
}

// TotalFetches returns the number of Fetch calls across all names.
func (f *FakeFetcher) TotalFetches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}
