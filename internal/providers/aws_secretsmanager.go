package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
	"github.com/systmms/globalsecrets/internal/config"
	"github.com/systmms/globalsecrets/pkg/provider"
)

// SecretsManagerName is the store name reported in errors and logs
const SecretsManagerName = "aws.secretsmanager"

// SecretsManagerClientAPI defines the Secrets Manager operations the fetcher uses.
// This allows for mocking in tests
type SecretsManagerClientAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error)
}

// AWSSecretsManagerFetcher reads secret bundles from AWS Secrets Manager
type AWSSecretsManagerFetcher struct {
	client   SecretsManagerClientAPI
	region   string
	endpoint string // Optional custom endpoint for LocalStack or testing
	timeout  time.Duration
}

// FetcherOption is a functional option for configuring the fetcher
type FetcherOption func(*AWSSecretsManagerFetcher)

// WithSecretsManagerClient sets a custom Secrets Manager client (for testing)
func WithSecretsManagerClient(client SecretsManagerClientAPI) FetcherOption {
	return func(f *AWSSecretsManagerFetcher) {
		f.client = client
	}
}

// NewAWSSecretsManagerFetcher creates a fetcher from run-time configuration
func NewAWSSecretsManagerFetcher(ctx context.Context, rt config.Runtime, opts ...FetcherOption) (*AWSSecretsManagerFetcher, error) {
	f := &AWSSecretsManagerFetcher{
		region:   rt.Region,
		endpoint: rt.Endpoint,
		timeout:  rt.Timeout,
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(f)
	}

	if f.client == nil {
		cfg, err := loadAWSConfig(ctx, rt)
		if err != nil {
			return nil, err
		}
		f.region = cfg.Region

		var clientOpts []func(*secretsmanager.Options)
		if f.endpoint != "" {
			endpoint := f.endpoint
			clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		f.client = secretsmanager.NewFromConfig(cfg, clientOpts...)
	}

	return f, nil
}

// Name returns the store name
func (f *AWSSecretsManagerFetcher) Name() string {
	return SecretsManagerName
}

// Region returns the region requests are sent to
func (f *AWSSecretsManagerFetcher) Region() string {
	return f.region
}

// Fetch retrieves the current version of a secret
func (f *AWSSecretsManagerFetcher) Fetch(ctx context.Context, secretName string) (provider.SecretBlob, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	result, err := f.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	})
	if err != nil {
		return provider.SecretBlob{}, f.handleError(err, secretName)
	}

	var value string
	switch {
	case result.SecretString != nil:
		value = *result.SecretString
	case result.SecretBinary != nil:
		value = string(result.SecretBinary)
	default:
		return provider.SecretBlob{}, fmt.Errorf("secret '%s' has no value", secretName)
	}

	blob := provider.SecretBlob{
		Value:   value,
		Version: aws.ToString(result.VersionId),
	}
	if result.CreatedDate != nil {
		blob.CreatedAt = *result.CreatedDate
	}
	return blob, nil
}

// Validate checks that AWS credentials are configured and can list secrets
func (f *AWSSecretsManagerFetcher) Validate(ctx context.Context) error {
	_, err := f.client.ListSecrets(ctx, &secretsmanager.ListSecretsInput{
		MaxResults: aws.Int32(1),
	})
	if err != nil {
		return provider.AuthError{
			Provider: SecretsManagerName,
			Message:  fmt.Sprintf("AWS authentication failed: %v", err),
		}
	}
	return nil
}

// handleError converts AWS errors to provider errors
func (f *AWSSecretsManagerFetcher) handleError(err error, secretName string) error {
	if isNotFoundError(err) {
		return &provider.NotFoundError{
			Provider: SecretsManagerName,
			Key:      secretName,
		}
	}

	if isAuthError(err) {
		return provider.AuthError{
			Provider: SecretsManagerName,
			Message:  fmt.Sprintf("AWS authentication/authorization failed: %v", err),
		}
	}

	return fmt.Errorf("AWS Secrets Manager error: %w", err)
}

func isNotFoundError(err error) bool {
	var resourceNotFound *types.ResourceNotFoundException
	return errors.As(err, &resourceNotFound)
}

var authErrorCodes = map[string]bool{
	"AccessDeniedException":       true,
	"UnrecognizedClientException": true,
	"InvalidSignatureException":   true,
	"ExpiredTokenException":       true,
	"UnauthorizedOperation":       true,
}

func isAuthError(err error) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return authErrorCodes[apiErr.ErrorCode()]
	}
	// Credential resolution fails before any request is signed.
	return strings.Contains(err.Error(), "failed to retrieve credentials")
}
