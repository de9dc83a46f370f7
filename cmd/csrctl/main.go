package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/csr-compliance-api/pkg/client"
	"github.com/noah-isme/csr-compliance-api/pkg/config"
)

var (
	baseURL string
	timeout time.Duration
	verbose bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := config.ClientConfig{BaseURL: "http://localhost:8080", Timeout: 10 * time.Second}
	if cfg, err := config.Load(); err == nil {
		defaults = cfg.Client
	}

	root := &cobra.Command{
		Use:           "csrctl",
		Short:         "Track CSR compliance requirements, documents and versions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&baseURL, "base-url", defaults.BaseURL, "API base URL (API_BASE_URL)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", defaults.Timeout, "request timeout (API_TIMEOUT)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log HTTP requests")

	root.AddCommand(requirementsCmd(), documentsCmd(), versionsCmd(), importCmd())
	return root
}

func newClient() *client.Client {
	logr := zap.NewNop()
	if verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			logr = l
		}
	}
	return client.New(baseURL, client.WithTimeout(timeout), client.WithLogger(logr))
}

// fail prints a mutation error and returns it so the command exits non-zero.
func fail(cmd *cobra.Command, action string, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), styles.Error.Render(fmt.Sprintf("%s failed: %v", action, err)))
	return err
}
