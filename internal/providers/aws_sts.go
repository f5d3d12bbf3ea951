package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/systmms/globalsecrets/internal/config"
	"github.com/systmms/globalsecrets/pkg/provider"
)

// STSClientAPI defines the STS operations used to check credentials
type STSClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// CallerIdentity describes the principal the SDK resolved credentials for
type CallerIdentity struct {
	Account string
	ARN     string
	UserID  string
}

// IdentityChecker resolves the active AWS identity
type IdentityChecker struct {
	client STSClientAPI
}

// IdentityOption is a functional option for configuring the checker
type IdentityOption func(*IdentityChecker)

// WithSTSClient sets a custom STS client (for testing)
func WithSTSClient(client STSClientAPI) IdentityOption {
	return func(c *IdentityChecker) {
		c.client = client
	}
}

// NewIdentityChecker creates an identity checker from run-time configuration
func NewIdentityChecker(ctx context.Context, rt config.Runtime, opts ...IdentityOption) (*IdentityChecker, error) {
	c := &IdentityChecker{}
	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		cfg, err := loadAWSConfig(ctx, rt)
		if err != nil {
			return nil, err
		}

		var clientOpts []func(*sts.Options)
		if rt.Endpoint != "" {
			endpoint := rt.Endpoint
			clientOpts = append(clientOpts, func(o *sts.Options) {
				o.BaseEndpoint = &endpoint
			})
		}
		c.client = sts.NewFromConfig(cfg, clientOpts...)
	}

	return c, nil
}

// CallerIdentity calls sts:GetCallerIdentity
func (c *IdentityChecker) CallerIdentity(ctx context.Context) (CallerIdentity, error) {
	out, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return CallerIdentity{}, provider.AuthError{
			Provider: "aws.sts",
			Message:  fmt.Sprintf("failed to resolve caller identity: %v", err),
		}
	}

	return CallerIdentity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
