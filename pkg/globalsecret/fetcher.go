package globalsecret

import (
	"context"
	"sync"

	"github.com/systmms/globalsecrets/internal/config"
	"github.com/systmms/globalsecrets/internal/logging"
	"github.com/systmms/globalsecrets/internal/providers"
	"github.com/systmms/globalsecrets/pkg/provider"
)

var (
	defaultMu      sync.Mutex
	defaultFetcher provider.Fetcher

	loggerOnce    sync.Once
	runtimeLogger *logging.Logger
)

// SetDefaultFetcher replaces the fetcher used by bundles declared without
// WithFetcher. It only affects bundles that have not been loaded yet. Passing
// nil restores lazy construction of the AWS Secrets Manager fetcher.
func SetDefaultFetcher(f provider.Fetcher) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultFetcher = f
}

// DefaultFetcher returns the process-wide fetcher, building the AWS Secrets
// Manager fetcher from GLOBALSECRETS_* configuration on first use. A build
// failure is not cached.
func DefaultFetcher(ctx context.Context) (provider.Fetcher, error) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	if defaultFetcher != nil {
		return defaultFetcher, nil
	}

	rt, err := config.LoadRuntime()
	if err != nil {
		return nil, err
	}
	f, err := providers.NewAWSSecretsManagerFetcher(ctx, rt)
	if err != nil {
		return nil, err
	}
	logger().Debug("using %s in region %q", f.Name(), f.Region())
	defaultFetcher = f
	return f, nil
}

func logger() *logging.Logger {
	loggerOnce.Do(func() {
		runtimeLogger = newRuntimeLogger(config.LoadRuntime)
	})
	return runtimeLogger
}

// newRuntimeLogger takes its level from the Debug setting of the runtime
// configuration. A configuration that fails to load leaves debug off; the
// same failure surfaces from DefaultFetcher.
func newRuntimeLogger(load func() (config.Runtime, error)) *logging.Logger {
	rt, err := load()
	return logging.New(err == nil && rt.Debug, true)
}
