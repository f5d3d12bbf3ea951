package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/systmms/globalsecrets/internal/config"
)

// loadAWSConfig builds the shared SDK configuration. Region and credentials
// fall back to the SDK default chain unless overridden by GLOBALSECRETS_*.
func loadAWSConfig(ctx context.Context, rt config.Runtime) (aws.Config, error) {
	var configOpts []func(*awsconfig.LoadOptions) error
	if rt.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(rt.Region))
	}

	// Use static credentials if provided (for LocalStack/testing)
	if rt.AccessKeyID != "" && rt.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(rt.AccessKeyID, rt.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}
