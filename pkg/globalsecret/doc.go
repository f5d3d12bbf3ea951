// Package globalsecret is the run-time half of globalsecrets: the code that
// generated secret bundles call into.
//
// A secret bundle is a struct whose fields mirror the keys of a JSON secret
// stored in AWS Secrets Manager under the struct's name. The generator emits a
// package-level *Bundle for each annotated struct:
//
//	//go:generate globalsecrets generate -type SampleSecrets
//	type SampleSecrets struct {
//	    key1 string
//	    key2 string
//	}
//
// and accessors that load it on first use:
//
//	s := MustSampleSecrets()
//	fmt.Println(s.key1)
//
// # Lifecycle
//
// A Bundle starts uninitialized. The first Get or MustGet, from any
// goroutine, fetches the secret, decodes it, validates its shape against the
// descriptor, and builds the struct. Concurrent callers wait for that single
// attempt and all observe its outcome. A successful value is cached for the
// life of the process and never refetched.
//
// A failed attempt poisons the bundle: every later access returns the same
// *InitializationError (matching ErrPoisoned) without contacting the store
// again. Secrets are treated as a startup dependency; restart the process
// once the store is fixed.
//
// # Remote store
//
// Bundles fetch through the process-wide default fetcher, which is built on
// first use from GLOBALSECRETS_* variables (see internal/config) and the
// standard AWS credential chain. Call SetDefaultFetcher before the first
// access to substitute another provider.Fetcher, or pass WithFetcher to New.
package globalsecret
