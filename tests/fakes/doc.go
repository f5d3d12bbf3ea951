// Package fakes provides test doubles for the secret store boundary.
//
// Fakes are manually implemented (not generated) to give tests precise
// control over behavior: the number of fetches performed, artificial
// latency to widen race windows, and injected failures.
//
// Usage:
//
//	fetcher := fakes.NewFakeFetcher().
//	    WithSecret("SampleSecrets", `{"key1":"value1","key2":"value2"}`)
//	bundle := globalsecret.New(desc, build, globalsecret.WithFetcher(fetcher))
//	// ... access the bundle ...
//	assert.Equal(t, 1, fetcher.FetchCount("SampleSecrets"))
package fakes
