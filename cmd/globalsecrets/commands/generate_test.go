package commands

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/systmms/globalsecrets/internal/introspect"
)

func TestGenerateCommand_SingleType(t *testing.T) {
	t.Parallel()

	dir := writeSamplePackage(t)
	cmd := NewGenerateCommand(testConfig(t))

	_, err := executeCommand(t, cmd, "--type", "SampleSecrets", "--dir", dir)
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(dir, "samplesecrets_globalsecret.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), "// Code generated by globalsecrets. DO NOT EDIT.")
	assert.Contains(t, string(code), "// Command: globalsecrets generate -type SampleSecrets\n")
	assert.Contains(t, string(code), "func LoadSampleSecrets() (SampleSecrets, error)")
	assert.Contains(t, string(code), "func MustSampleSecrets() SampleSecrets")
}

func TestGenerateCommand_Flags(t *testing.T) {
	t.Parallel()

	dir := writeSamplePackage(t)
	cmd := NewGenerateCommand(testConfig(t))

	_, err := executeCommand(t, cmd,
		"--type", "ServerSecrets",
		"--dir", dir,
		"--secret-name", "prod/server",
		"--strict",
		"--output", "server_gen.go",
	)
	require.NoError(t, err)

	code, err := os.ReadFile(filepath.Join(dir, "server_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), `SecretName: "prod/server",`)
	assert.Contains(t, string(code), "Strict: true,")
	assert.Contains(t, string(code), `int(v.Int("port", 0))`)
	assert.Contains(t, string(code), "-secret-name prod/server -strict")
}

func TestGenerateCommand_DeclarationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		extra      string
		typeName   string
		wantReason string
	}{
		{
			name:       "missing type",
			typeName:   "MissingSecrets",
			wantReason: "type not found",
		},
		{
			name:       "duplicate field name",
			extra:      "package sample\n\ntype DupSecrets struct {\n\tA string\n\tA string\n}\n",
			typeName:   "DupSecrets",
			wantReason: "duplicate field name",
		},
		{
			name:       "type name differs only in case",
			extra:      "package sample\n\ntype sampleSecrets struct{ A string }\n",
			typeName:   "SampleSecrets",
			wantReason: "differs only in case from sampleSecrets",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := writeSamplePackage(t)
			if tt.extra != "" {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "extra.go"), []byte(tt.extra), 0o644))
			}
			before, err := os.ReadDir(dir)
			require.NoError(t, err)

			_, err = executeCommand(t, NewGenerateCommand(testConfig(t)), "--type", tt.typeName, "--dir", dir)
			require.Error(t, err)

			var declErr *introspect.DeclarationError
			require.True(t, errors.As(err, &declErr))
			assert.Contains(t, declErr.Reason, tt.wantReason)

			after, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Len(t, after, len(before), "no file may be written when generation fails")
		})
	}
}

func TestGenerateCommand_FromConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	pkgDir := filepath.Join(root, "sample")
	require.NoError(t, os.MkdirAll(pkgDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(pkgDir, "sample.go"), []byte(sampleSource), 0o644))

	cfgPath := filepath.Join(root, "globalsecrets.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`version: 0
bundles:
  - type: SampleSecrets
    dir: sample
  - type: ServerSecrets
    dir: sample
    secretName: prod/server
    output: server_secrets_gen.go
    strict: true
`), 0o644))

	cfg := testConfig(t)
	cfg.Path = cfgPath
	cmd := NewGenerateCommand(cfg)

	_, err := executeCommand(t, cmd)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(pkgDir, "samplesecrets_globalsecret.go"))
	code, err := os.ReadFile(filepath.Join(pkgDir, "server_secrets_gen.go"))
	require.NoError(t, err)
	assert.Contains(t, string(code), `SecretName: "prod/server",`)
}

func TestGenerateCommand_MissingConfig(t *testing.T) {
	t.Parallel()

	cmd := NewGenerateCommand(testConfig(t))
	_, err := executeCommand(t, cmd)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestGenerateCommand_HelpDescribesKeyRules(t *testing.T) {
	t.Parallel()

	long := NewGenerateCommand(testConfig(t)).Long
	assert.Contains(t, long, `secret:"-" or json:"-"`)
	assert.Contains(t, long, "differ only in case")
}
