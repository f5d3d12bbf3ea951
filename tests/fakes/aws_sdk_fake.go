package fakes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// FakeSecretsManagerClient is a mock of the Secrets Manager operations used
// by AWSSecretsManagerFetcher
type FakeSecretsManagerClient struct {
	// Secrets maps secret names to their data
	Secrets map[string]*SecretData
	// Errors maps secret names to errors to return
	Errors map[string]error
	// ListSecretsErr is returned by ListSecrets when set
	ListSecretsErr error
	// GetSecretValueFunc allows custom behavior for GetSecretValue
	GetSecretValueFunc func(ctx context.Context, params *secretsmanager.GetSecretValueInput) (*secretsmanager.GetSecretValueOutput, error)

	mu    sync.Mutex
	calls int
}

// SecretData holds the data for a mock secret
type SecretData struct {
	SecretString *string
	SecretBinary []byte
	VersionId    *string
	CreatedDate  *time.Time
}

// NewFakeSecretsManagerClient creates a new mock Secrets Manager client
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets: make(map[string]*SecretData),
		Errors:  make(map[string]error),
	}
}

// AddSecretString adds a string secret to the mock client
func (f *FakeSecretsManagerClient) AddSecretString(name, value string) {
	now := time.Now()
	f.Secrets[name] = &SecretData{
		SecretString: aws.String(value),
		VersionId:    aws.String("v1-abc123"),
		CreatedDate:  &now,
	}
}

// AddSecretBinary adds a binary secret to the mock client
func (f *FakeSecretsManagerClient) AddSecretBinary(name string, value []byte) {
	now := time.Now()
	f.Secrets[name] = &SecretData{
		SecretBinary: value,
		VersionId:    aws.String("v1-abc123"),
		CreatedDate:  &now,
	}
}

// AddError configures the mock to return an error for a specific secret
func (f *FakeSecretsManagerClient) AddError(name string, err error) {
	f.Errors[name] = err
}

// Calls returns the number of GetSecretValue calls
func (f *FakeSecretsManagerClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// GetSecretValue mocks the GetSecretValue operation
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.GetSecretValueFunc != nil {
		return f.GetSecretValueFunc(ctx, params)
	}

	secretName := aws.ToString(params.SecretId)

	if err, exists := f.Errors[secretName]; exists {
		return nil, err
	}

	data, exists := f.Secrets[secretName]
	if !exists {
		return nil, &types.ResourceNotFoundException{
			Message: aws.String(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", secretName)),
		}
	}

	return &secretsmanager.GetSecretValueOutput{
		ARN:           aws.String(fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", secretName)),
		Name:          params.SecretId,
		SecretString:  data.SecretString,
		SecretBinary:  data.SecretBinary,
		VersionId:     data.VersionId,
		VersionStages: []string{"AWSCURRENT"},
		CreatedDate:   data.CreatedDate,
	}, nil
}

// ListSecrets mocks the ListSecrets operation
func (f *FakeSecretsManagerClient) ListSecrets(ctx context.Context, params *secretsmanager.ListSecretsInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.ListSecretsOutput, error) {
	if f.ListSecretsErr != nil {
		return nil, f.ListSecretsErr
	}
	return &secretsmanager.ListSecretsOutput{
		SecretList: []types.SecretListEntry{},
	}, nil
}

// FakeSTSClient is a mock of sts:GetCallerIdentity
type FakeSTSClient struct {
	Account string
	Arn     string
	UserId  string
	Err     error
}

// GetCallerIdentity mocks the GetCallerIdentity operation
func (f *FakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.Account),
		Arn:     aws.String(f.Arn),
		UserId:  aws.String(f.UserId),
	}, nil
}
