package commands

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/globalsecrets/internal/providers"
	"github.com/systmms/globalsecrets/tests/fakes"
)

// isolateRuntime keeps doctor from reading the developer's .env or
// GLOBALSECRETS_* variables
func isolateRuntime(t *testing.T) {
	t.Helper()
	t.Setenv("GLOBALSECRETS_DOTENV", filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("GLOBALSECRETS_TIMEOUT", "5s")
	t.Setenv("GLOBALSECRETS_REGION", "us-east-1")
}

func fakeClients(sm *fakes.FakeSecretsManagerClient, sts *fakes.FakeSTSClient) doctorClients {
	return doctorClients{
		fetcherOpts:  []providers.FetcherOption{providers.WithSecretsManagerClient(sm)},
		identityOpts: []providers.IdentityOption{providers.WithSTSClient(sts)},
	}
}

func TestDoctorCommand_Healthy(t *testing.T) {
	isolateRuntime(t)

	sm := fakes.NewFakeSecretsManagerClient()
	sts := &fakes.FakeSTSClient{Account: "123456789012", Arn: "arn:aws:iam::123456789012:user/dev", UserId: "AIDA"}
	cmd := newDoctorCommand(testConfig(t), fakeClients(sm, sts))

	out, err := executeCommand(t, cmd)
	require.NoError(t, err)

	assert.Contains(t, out, "CHECK")
	assert.Contains(t, out, "arn:aws:iam::123456789012:user/dev")
	assert.Contains(t, out, "aws.secretsmanager")
	assert.Contains(t, out, "Summary: 2/2 checks passed")
}

func TestDoctorCommand_BundleDryRun(t *testing.T) {
	isolateRuntime(t)

	dir := writeSamplePackage(t)
	sm := fakes.NewFakeSecretsManagerClient()
	sm.AddSecretString("SampleSecrets", `{"key1":"value1","key2":"value2"}`)
	sts := &fakes.FakeSTSClient{Arn: "arn:aws:iam::123456789012:user/dev"}

	out, err := executeCommand(t, newDoctorCommand(testConfig(t), fakeClients(sm, sts)),
		"--type", "SampleSecrets", "--dir", dir)
	require.NoError(t, err)

	assert.Contains(t, out, "bundle SampleSecrets")
	assert.Contains(t, out, `2 keys decoded from "SampleSecrets"`)
	assert.Contains(t, out, "Summary: 3/3 checks passed")
	assert.NotContains(t, out, "value1")
	assert.NotContains(t, out, "value2")
}

func TestDoctorCommand_BundleDecodeFailure(t *testing.T) {
	isolateRuntime(t)

	dir := writeSamplePackage(t)
	sm := fakes.NewFakeSecretsManagerClient()
	sm.AddSecretString("prod/server", `{"host":"db.internal","port":"not-an-integer"}`)
	sts := &fakes.FakeSTSClient{Arn: "arn:aws:iam::123456789012:user/dev"}

	out, err := executeCommand(t, newDoctorCommand(testConfig(t), fakeClients(sm, sts)),
		"--type", "ServerSecrets", "--dir", dir, "--secret-name", "prod/server")
	require.Error(t, err)

	assert.Contains(t, out, "✗ error")
	assert.Contains(t, out, `key "port": cannot parse value as int`)
	assert.Contains(t, out, "Summary: 2/3 checks passed")
	assert.NotContains(t, out, "not-an-integer")
}

func TestDoctorCommand_Failures(t *testing.T) {
	isolateRuntime(t)

	sm := fakes.NewFakeSecretsManagerClient()
	sm.ListSecretsErr = errors.New("AccessDeniedException: not authorized")
	sts := &fakes.FakeSTSClient{Err: errors.New("no EC2 IMDS role found")}

	out, err := executeCommand(t, newDoctorCommand(testConfig(t), fakeClients(sm, sts)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 checks failed")
	assert.Contains(t, out, "failed to resolve caller identity")
	assert.Contains(t, out, "Summary: 0/2 checks passed")
}

func TestDoctorCommand_MissingSecret(t *testing.T) {
	isolateRuntime(t)

	dir := writeSamplePackage(t)
	sm := fakes.NewFakeSecretsManagerClient()
	sts := &fakes.FakeSTSClient{Arn: "arn"}

	out, err := executeCommand(t, newDoctorCommand(testConfig(t), fakeClients(sm, sts)),
		"--type", "SampleSecrets", "--dir", dir)
	require.Error(t, err)
	assert.Contains(t, out, "secret store error during fetch of 'SampleSecrets'")
	assert.Contains(t, out, "Verify the secret name and region")
}

func TestDoctorCommand_RedactsCredentials(t *testing.T) {
	isolateRuntime(t)
	t.Setenv("GLOBALSECRETS_ACCESS_KEY_ID", "AKIAEXAMPLEKEYID")
	t.Setenv("GLOBALSECRETS_SECRET_ACCESS_KEY", "wJalrXUtnFEMIexamplesecret")

	sm := fakes.NewFakeSecretsManagerClient()
	sm.ListSecretsErr = errors.New("InvalidClientTokenId: key AKIAEXAMPLEKEYID\nsigned with wJalrXUtnFEMIexamplesecret")
	sts := &fakes.FakeSTSClient{Err: errors.New("SignatureDoesNotMatch for AKIAEXAMPLEKEYID")}

	out, err := executeCommand(t, newDoctorCommand(testConfig(t), fakeClients(sm, sts)))
	require.Error(t, err)

	assert.NotContains(t, out, "AKIAEXAMPLEKEYID")
	assert.NotContains(t, out, "wJalrXUtnFEMIexamplesecret")
	assert.Contains(t, out, "[REDACTED]")
}

func TestDoctorCommand_RetryableFailures(t *testing.T) {
	isolateRuntime(t)

	dir := writeSamplePackage(t)
	sm := fakes.NewFakeSecretsManagerClient()
	sm.AddError("SampleSecrets", errors.New("dial tcp: i/o timeout"))
	sts := &fakes.FakeSTSClient{Err: errors.New("ThrottlingException: Rate exceeded")}

	out, err := executeCommand(t, newDoctorCommand(testConfig(t), fakeClients(sm, sts)),
		"--type", "SampleSecrets", "--dir", dir)
	require.Error(t, err)

	assert.Contains(t, out, "Summary: 1/3 checks passed")
	assert.Equal(t, 2, strings.Count(out, "(retry after fixing connectivity)"))
}

func TestDisplayResults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		result      checkResult
		contains    []string
		notContains []string
	}{
		{
			name:     "ok",
			result:   checkResult{Name: "aws identity", OK: true, Message: "arn:aws:iam::1:user/dev"},
			contains: []string{"✓ ok", "arn:aws:iam::1:user/dev"},
		},
		{
			name:        "permanent failure",
			result:      failedCheck("aws.secretsmanager", errors.New("AccessDeniedException: not authorized")),
			contains:    []string{"✗ error", "AccessDeniedException"},
			notContains: []string{"retry after fixing connectivity"},
		},
		{
			name:     "transient failure",
			result:   failedCheck("aws.secretsmanager", errors.New("connection reset by peer")),
			contains: []string{"connection reset by peer (retry after fixing connectivity)"},
		},
		{
			name:        "decode failure mentioning timeout is not transient",
			result:      checkResult{Name: "bundle DatabaseSecrets", Err: errors.New("missing key connect_timeout")},
			contains:    []string{"missing key connect_timeout"},
			notContains: []string{"retry after fixing connectivity"},
		},
		{
			name:        "multi-line error is redacted",
			result:      failedCheck("aws identity", errors.New("request failed\n  signed with s3cr3t-access-key")),
			contains:    []string{"aws identity:", "signed with [REDACTED]"},
			notContains: []string{"s3cr3t-access-key"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			displayResults(&buf, []checkResult{tt.result}, []string{"s3cr3t-access-key", ""})

			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
			for _, unwanted := range tt.notContains {
				assert.NotContains(t, buf.String(), unwanted)
			}
		})
	}
}
