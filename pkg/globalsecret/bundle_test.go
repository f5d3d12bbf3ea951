package globalsecret

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/globalsecrets/pkg/provider"
	"github.com/systmms/globalsecrets/tests/fakes"
)

type appSecrets struct {
	Key1 string
	Key2 string
}

func buildAppSecrets(v *Values) (appSecrets, error) {
	return appSecrets{
		Key1: v.String("key1"),
		Key2: v.String("key2"),
	}, v.Err()
}

type serverSecrets struct {
	Host string
	Port int
}

func serverDescriptor(secret string) Descriptor {
	return Descriptor{
		Name:       "ServerSecrets",
		SecretName: secret,
		Fields: []Field{
			{Name: "Host", Key: "host", Kind: KindString},
			{Name: "Port", Key: "port", Kind: KindInt},
		},
	}
}

func buildServerSecrets(v *Values) (serverSecrets, error) {
	return serverSecrets{
		Host: v.String("host"),
		Port: int(v.Int("port", 0)),
	}, v.Err()
}

func TestBundleGet(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("AppSecrets", `{"key1":"value1","key2":"value2"}`)
	b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(fetcher))

	assert.Equal(t, StateUninitialized, b.State())
	assert.Equal(t, 0, fetcher.TotalFetches(), "declaring a bundle must not fetch")

	got, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, appSecrets{Key1: "value1", Key2: "value2"}, got)
	assert.Equal(t, StateReady, b.State())
}

func TestBundleFetchesOnce(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("AppSecrets", `{"key1":"value1","key2":"value2"}`)
	b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(fetcher))

	first := b.MustGet()
	for i := 0; i < 50; i++ {
		got, err := b.Get()
		require.NoError(t, err)
		assert.Equal(t, first, got)
	}
	assert.Equal(t, 1, fetcher.FetchCount("AppSecrets"))
}

func TestBundleConcurrentFirstAccess(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "success", payload: `{"key1":"value1","key2":"value2"}`},
		{name: "failure", payload: `{"key1":"value1"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			const callers = 16
			fetcher := fakes.NewFakeFetcher().
				WithSecret("AppSecrets", tt.payload).
				WithDelay(50 * time.Millisecond)
			b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(fetcher))

			var (
				wg    sync.WaitGroup
				start = make(chan struct{})
				vals  = make([]appSecrets, callers)
				errs  = make([]error, callers)
			)
			for i := 0; i < callers; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					vals[i], errs[i] = b.Get()
				}(i)
			}
			close(start)
			wg.Wait()

			assert.Equal(t, 1, fetcher.FetchCount("AppSecrets"))
			for i := 1; i < callers; i++ {
				assert.Equal(t, vals[0], vals[i])
				assert.True(t, errs[0] == errs[i], "caller %d saw a different error", i)
			}
			if tt.wantErr {
				assert.ErrorIs(t, errs[0], ErrPoisoned)
				assert.Equal(t, StateFailed, b.State())
			} else {
				assert.NoError(t, errs[0])
				assert.Equal(t, StateReady, b.State())
			}
		})
	}
}

func TestBundleMissingKeyPoisons(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("AppSecrets", `{"key1":"value1"}`)
	b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(fetcher))

	_, err := b.Get()
	require.Error(t, err)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "key2", decodeErr.Key)
	assert.Equal(t, reasonMissing, decodeErr.Reason)
	assert.ErrorIs(t, err, ErrPoisoned)

	// The store is fixed now, but the bundle stays failed.
	fetcher.WithSecret("AppSecrets", `{"key1":"value1","key2":"value2"}`)
	_, again := b.Get()
	assert.Same(t, err, again)
	assert.Equal(t, 1, fetcher.FetchCount("AppSecrets"))
	assert.Equal(t, StateFailed, b.State())
}

func TestBundleTypeMismatch(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("svc/server", `{"host":"db.internal","port":"not-an-integer"}`)
	b := New(serverDescriptor("svc/server"), buildServerSecrets, WithFetcher(fetcher))

	_, err := b.Get()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "port", decodeErr.Key)
	assert.Equal(t, "cannot parse value as int", decodeErr.Reason)
	assert.NotContains(t, err.Error(), "not-an-integer")
}

func TestBundleNumericPayload(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("svc/numeric", `{"host":"db.internal","port":5432}`)
	b := New(serverDescriptor("svc/numeric"), buildServerSecrets, WithFetcher(fetcher))

	got, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, serverSecrets{Host: "db.internal", Port: 5432}, got)
}

func TestBundleFetchError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fetcher *fakes.FakeFetcher
		wantIs  error
	}{
		{
			name:    "not found",
			fetcher: fakes.NewFakeFetcher(),
		},
		{
			name:    "store failure",
			fetcher: fakes.NewFakeFetcher().WithError("AppSecrets", errors.New("connection refused")),
		},
		{
			name:    "auth failure",
			fetcher: fakes.NewFakeFetcher().WithError("AppSecrets", provider.AuthError{Provider: "fake", Message: "denied"}),
			wantIs:  provider.AuthError{Provider: "fake", Message: "denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(tt.fetcher))
			_, err := b.Get()

			var fetchErr *FetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, "AppSecrets", fetchErr.Secret)
			assert.Equal(t, "fake", fetchErr.Store)
			assert.ErrorIs(t, err, ErrPoisoned)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}

			_, _ = b.Get()
			assert.Equal(t, 1, tt.fetcher.FetchCount("AppSecrets"))
		})
	}
}

func TestBundleBuildPanicIsRecovered(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("AppSecrets", `{"key1":"value1","key2":"value2"}`)
	b := New(twoKeyDescriptor(), func(*Values) (appSecrets, error) {
		panic("boom")
	}, WithFetcher(fetcher))

	_, err := b.Get()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPoisoned)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, StateFailed, b.State())
}

func TestBundleBuildErrorIsDecodeError(t *testing.T) {
	t.Parallel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("AppSecrets", `{"key1":"value1","key2":"value2"}`)
	b := New(twoKeyDescriptor(), func(*Values) (appSecrets, error) {
		return appSecrets{}, fmt.Errorf("key1 and key2 must differ")
	}, WithFetcher(fetcher))

	_, err := b.Get()
	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "key1 and key2 must differ", decodeErr.Reason)
}

func TestBundleMustGetPanics(t *testing.T) {
	t.Parallel()

	b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(fakes.NewFakeFetcher()))
	assert.Panics(t, func() { b.MustGet() })
}

func TestBundleContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := fakes.NewFakeFetcher().
		WithSecret("AppSecrets", `{"key1":"value1","key2":"value2"}`).
		WithDelay(time.Second)
	b := New(twoKeyDescriptor(), buildAppSecrets, WithFetcher(fetcher), WithContext(ctx))

	_, err := b.Get()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBundleDefaultFetcher(t *testing.T) {
	fetcher := fakes.NewFakeFetcher().
		WithSecret("svc/default", `{"host":"localhost","port":"6379"}`)
	SetDefaultFetcher(fetcher)
	t.Cleanup(func() { SetDefaultFetcher(nil) })

	b := New(serverDescriptor("svc/default"), buildServerSecrets)
	got, err := b.Get()
	require.NoError(t, err)
	assert.Equal(t, serverSecrets{Host: "localhost", Port: 6379}, got)
	assert.Equal(t, 1, fetcher.FetchCount("svc/default"))
}

func TestBundleMetrics(t *testing.T) {
	t.Parallel()

	ok := fakes.NewFakeFetcher().
		WithSecret("metrics/ok", `{"host":"h","port":"1"}`)
	_, err := New(serverDescriptor("metrics/ok"), buildServerSecrets, WithFetcher(ok)).Get()
	require.NoError(t, err)

	bad := fakes.NewFakeFetcher().
		WithSecret("metrics/bad", `{"host":"h","port":"x"}`)
	_, err = New(serverDescriptor("metrics/bad"), buildServerSecrets, WithFetcher(bad)).Get()
	require.Error(t, err)

	_, err = New(serverDescriptor("metrics/missing"), buildServerSecrets, WithFetcher(fakes.NewFakeFetcher())).Get()
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(fetchTotal.WithLabelValues("metrics/ok", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fetchTotal.WithLabelValues("metrics/bad", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(decodeFailures.WithLabelValues("metrics/bad")))
	assert.Equal(t, 1.0, testutil.ToFloat64(fetchTotal.WithLabelValues("metrics/missing", "not_found")))
	assert.Equal(t, 0.0, testutil.ToFloat64(decodeFailures.WithLabelValues("metrics/ok")))
}

func TestStateString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "uninitialized", StateUninitialized.String())
	assert.Equal(t, "ready", StateReady.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
}
