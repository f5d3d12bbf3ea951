package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/systmms/globalsecrets/internal/config"
	dserrors "github.com/systmms/globalsecrets/internal/errors"
	"github.com/systmms/globalsecrets/internal/introspect"
	"github.com/systmms/globalsecrets/internal/logging"
	"github.com/systmms/globalsecrets/internal/providers"
	"github.com/systmms/globalsecrets/pkg/globalsecret"
)

// doctorClients lets tests substitute the AWS clients used by doctor
type doctorClients struct {
	fetcherOpts  []providers.FetcherOption
	identityOpts []providers.IdentityOption
}

func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	return newDoctorCommand(cfg, doctorClients{})
}

func newDoctorCommand(cfg *config.Config, clients doctorClients) *cobra.Command {
	var flags bundleFlags

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check AWS credentials and secret store access",
		Long: `Verify that generated bundles will be able to load at run time.

This command checks:
- GLOBALSECRETS_* and .env configuration
- AWS caller identity (sts:GetCallerIdentity)
- Secrets Manager access (secretsmanager:ListSecrets)

With --type, it also fetches the bundle's secret and decodes it against the
struct. Secret values are never printed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			out := cmd.OutOrStdout()

			rt, err := config.LoadRuntime()
			if err != nil {
				return err
			}
			cfg.Logger.Debug("Runtime config: region=%q endpoint=%q timeout=%s", rt.Region, rt.Endpoint, rt.Timeout)
			credentials := []string{rt.AccessKeyID, rt.SecretAccessKey}

			var results []checkResult

			identity, err := providers.NewIdentityChecker(ctx, rt, clients.identityOpts...)
			if err == nil {
				var who providers.CallerIdentity
				who, err = identity.CallerIdentity(ctx)
				if err == nil {
					results = append(results, checkResult{Name: "aws identity", OK: true, Message: who.ARN})
				}
			}
			if err != nil {
				results = append(results, failedCheck("aws identity", err))
			}

			fetcher, err := providers.NewAWSSecretsManagerFetcher(ctx, rt, clients.fetcherOpts...)
			if err != nil {
				results = append(results, failedCheck(providers.SecretsManagerName, err))
			} else if err := fetcher.Validate(ctx); err != nil {
				results = append(results, failedCheck(providers.SecretsManagerName, err))
			} else {
				results = append(results, checkResult{
					Name:    providers.SecretsManagerName,
					OK:      true,
					Message: fmt.Sprintf("reachable in region %q", fetcher.Region()),
				})
			}

			if flags.typeName != "" && fetcher != nil {
				results = append(results, checkBundle(ctx, cfg, flags, fetcher))
			}

			displayResults(out, results, credentials)

			failed := 0
			for _, r := range results {
				if !r.OK {
					failed++
				}
			}
			_, _ = fmt.Fprintf(out, "\nSummary: %d/%d checks passed\n", len(results)-failed, len(results))
			if failed > 0 {
				for _, r := range results {
					if !r.OK {
						cfg.Logger.Debug("%s: %s", r.Name, logging.Redact(r.Err.Error(), credentials))
					}
				}
				return fmt.Errorf("%d checks failed", failed)
			}

			cfg.Logger.Info("✓ All checks passed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.typeName, "type", "t", "", "Also fetch and decode this bundle")
	cmd.Flags().StringVar(&flags.dir, "dir", "", "Package directory (default: directory of $GOFILE, else .)")
	cmd.Flags().StringVar(&flags.secretName, "secret-name", "", "Secret name in the store (default: the type name)")
	cmd.Flags().BoolVar(&flags.strict, "strict", false, "Reject payload keys that no field maps")

	return cmd
}

// checkResult is the outcome of one doctor check
type checkResult struct {
	Name    string
	OK      bool
	Message string
	Err     error
	// Retryable marks transient transport failures
	Retryable bool
}

// failedCheck records a failure talking to AWS
func failedCheck(name string, err error) checkResult {
	return checkResult{Name: name, Err: err, Retryable: dserrors.IsRetryable(err)}
}

// checkBundle fetches and decodes one bundle without printing its values
func checkBundle(ctx context.Context, cfg *config.Config, flags bundleFlags, fetcher *providers.AWSSecretsManagerFetcher) checkResult {
	name := "bundle " + flags.typeName

	bc, err := resolveBundle(cfg, flags)
	if err != nil {
		return checkResult{Name: name, Err: err}
	}
	desc, err := introspect.Inspect(introspect.Options{
		Dir:        bc.Dir,
		TypeName:   bc.Type,
		SecretName: bc.SecretName,
		Strict:     bc.Strict,
	})
	if err != nil {
		return checkResult{Name: name, Err: err}
	}

	rd := desc.Runtime()
	blob, err := fetcher.Fetch(ctx, rd.LookupName())
	if err != nil {
		r := failedCheck(name, err)
		r.Err = dserrors.StoreError(rd.LookupName(), "fetch", err)
		return r
	}

	values, err := globalsecret.Decode(rd.LookupName(), blob.Value, rd)
	if err == nil {
		err = values.Check(rd)
	}
	if err != nil {
		return checkResult{Name: name, Err: dserrors.StoreError(rd.LookupName(), "decode", err)}
	}

	return checkResult{
		Name:    name,
		OK:      true,
		Message: fmt.Sprintf("%d keys decoded from %q (version %s)", len(rd.Fields), rd.LookupName(), blob.Version),
	}
}

// displayResults shows check outcomes in a formatted table. Occurrences of
// secrets in error text are redacted.
func displayResults(w io.Writer, results []checkResult, secrets []string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(tw, "CHECK\tSTATUS\tMESSAGE\n")
	_, _ = fmt.Fprintf(tw, "-----\t------\t-------\n")

	for _, r := range results {
		status := "✓ ok"
		message := r.Message
		if !r.OK {
			status = "✗ error"
			message = logging.Redact(firstLine(r.Err), secrets)
			if r.Retryable {
				message += " (retry after fixing connectivity)"
			}
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Name, status, message)
	}
	_ = tw.Flush()

	for _, r := range results {
		if r.OK || r.Err == nil {
			continue
		}
		if full := r.Err.Error(); full != firstLine(r.Err) {
			_, _ = fmt.Fprintf(w, "\n%s:\n%s\n", r.Name, logging.Redact(full, secrets))
		}
	}
}

func firstLine(err error) string {
	if err == nil {
		return ""
	}
	line, _, _ := strings.Cut(err.Error(), "\n")
	return line
}
