// Package provider defines the contract between generated secret bundles and
// the remote secret store they are loaded from.
//
// A Fetcher returns the raw text stored under a secret name. It knows nothing
// about the shape of the payload: decoding and validation happen in package
// globalsecret. The production implementation talks to AWS Secrets Manager;
// tests substitute an in-memory fake.
//
// Implementing a Fetcher:
//
//	type fileFetcher struct{ dir string }
//
//	func (f fileFetcher) Name() string { return "file" }
//
//	func (f fileFetcher) Fetch(ctx context.Context, secretName string) (provider.SecretBlob, error) {
//	    data, err := os.ReadFile(filepath.Join(f.dir, secretName+".json"))
//	    if errors.Is(err, fs.ErrNotExist) {
//	        return provider.SecretBlob{}, &provider.NotFoundError{Provider: f.Name(), Key: secretName}
//	    }
//	    if err != nil {
//	        return provider.SecretBlob{}, err
//	    }
//	    return provider.SecretBlob{Value: string(data)}, nil
//	}
//
// # Error Handling
//
// Fetchers should use the error types defined in this package:
//   - NotFoundError for missing secrets
//   - AuthError for authentication and authorization failures
//   - Standard Go errors for everything else
//
// # Threading and Concurrency
//
// Fetch may be called from any goroutine. Implementations must be safe for
// concurrent use.
package provider
