// Package testutil provides shared test helpers for globalsecrets.
//
// This file implements the fetcher contract suite that checks every
// provider.Fetcher behaves the way secret bundles rely on.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/globalsecrets/pkg/provider"
)

// FetcherTestCase defines a fetcher under test with its test data.
type FetcherTestCase struct {
	// Name is a descriptive name for this test case
	Name string

	// Fetcher is the implementation to test
	Fetcher provider.Fetcher

	// TestData maps secret names to the payloads the store holds for them
	TestData map[string]string

	// SkipValidation skips the Validate() test, or is implied when the
	// fetcher does not implement provider.Validator
	SkipValidation bool
}

// RunFetcherContractTests runs the fetcher contract suite:
//   - Name() is stable and well formed
//   - Fetch() returns the stored payload
//   - missing secrets produce *provider.NotFoundError
//   - concurrent Fetch() calls are safe
//
// Example usage:
//
//	testutil.RunFetcherContractTests(t, testutil.FetcherTestCase{
//	    Name:     "aws.secretsmanager",
//	    Fetcher:  fetcher,
//	    TestData: map[string]string{"app/secrets": `{"key1":"value1"}`},
//	})
func RunFetcherContractTests(t *testing.T, tc FetcherTestCase) {
	t.Helper()

	require.NotNil(t, tc.Fetcher, "Fetcher cannot be nil")
	require.NotEmpty(t, tc.Name, "Test case name cannot be empty")
	require.NotEmpty(t, tc.TestData, "TestData must contain at least one secret")

	t.Run("Name", func(t *testing.T) {
		testFetcherName(t, tc)
	})

	if v, ok := tc.Fetcher.(provider.Validator); ok && !tc.SkipValidation {
		t.Run("Validate", func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			assert.NoError(t, v.Validate(ctx), "Validate() should succeed with valid configuration")
		})
	}

	t.Run("Fetch", func(t *testing.T) {
		testFetcherFetch(t, tc)
	})

	t.Run("NotFound", func(t *testing.T) {
		testFetcherNotFound(t, tc)
	})

	t.Run("Concurrency", func(t *testing.T) {
		testFetcherConcurrency(t, tc)
	})
}

func testFetcherName(t *testing.T, tc FetcherTestCase) {
	t.Helper()

	name := tc.Fetcher.Name()
	assert.NotEmpty(t, name, "Name() must return non-empty string")
	assert.Equal(t, name, tc.Fetcher.Name(), "Name() must return consistent value")
	assert.Regexp(t, `^[a-z][a-z0-9._-]*$`, name,
		"Fetcher name should be lowercase with dots, dashes, or underscores")
}

func testFetcherFetch(t *testing.T, tc FetcherTestCase) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for secretName, want := range tc.TestData {
		t.Run(sanitizeTestName(secretName), func(t *testing.T) {
			blob, err := tc.Fetcher.Fetch(ctx, secretName)
			require.NoError(t, err, "Fetch() should succeed for existing secret")
			assert.Equal(t, want, blob.Value, "Payload should match test data")
		})
	}
}

func testFetcherNotFound(t *testing.T, tc FetcherTestCase) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	missing := "this-secret-definitely-does-not-exist-" + time.Now().Format("20060102150405")

	_, err := tc.Fetcher.Fetch(ctx, missing)
	require.Error(t, err, "Fetch() should return error for non-existent secret")

	var notFound *provider.NotFoundError
	if assert.ErrorAs(t, err, &notFound) {
		assert.Equal(t, tc.Fetcher.Name(), notFound.Provider)
		assert.Equal(t, missing, notFound.Key)
	}
}

func testFetcherConcurrency(t *testing.T, tc FetcherTestCase) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping concurrency test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	var secretName string
	for k := range tc.TestData {
		secretName = k
		break
	}
	want := tc.TestData[secretName]

	const concurrency = 50
	var wg sync.WaitGroup
	errs := make(chan error, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			blob, err := tc.Fetcher.Fetch(ctx, secretName)
			if err != nil {
				errs <- fmt.Errorf("goroutine %d: Fetch failed: %w", id, err)
				return
			}
			if blob.Value != want {
				errs <- fmt.Errorf("goroutine %d: payload mismatch", id)
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	failed := 0
	for err := range errs {
		t.Error(err)
		failed++
	}
	if failed > 0 {
		t.Fatalf("Concurrency test failed with %d errors", failed)
	}
}

// sanitizeTestName converts a secret name into a valid subtest name.
func sanitizeTestName(name string) string {
	return strings.NewReplacer("/", "_", ":", "_", " ", "_").Replace(name)
}
