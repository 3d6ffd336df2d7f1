// Package cli implements the redoffice command line.
// Commands are thin: they resolve the key, ask the core for a token or
// session and print JSON. Failures are printed as an ErrorReport.
package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// KeyEnv names the environment variable holding the symmetric key.
const KeyEnv = "REDOFFICE_KEY"

var version = "dev"

// Global flags.
var (
	keyFlag     string
	verboseFlag bool
	configDir   string
)

var rootCmd = &cobra.Command{
	Use:   "redoffice",
	Short: "Encrypted Google credentials and API access",
	Long: `redoffice keeps Google OAuth client secrets and tokens encrypted at rest
and uses them to call the Calendar, Gmail and Sheets APIs.

Start by encrypting your OAuth client secret JSON:
  redoffice init-cred client_secret.json

Keep the printed key safe. Pass it with --key or the ` + KeyEnv + ` variable:
  export ` + KeyEnv + `=...
  redoffice auth login calendar
  redoffice calendar list`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&keyFlag, "key", "",
		"symmetric key (defaults to $"+KeyEnv+", then a prompt)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "config directory (default ~/.redoffice)")
}

// Execute runs the command line and returns the process exit code.
// Any error is written to stdout as an ErrorReport.
func Execute(ctx context.Context) int {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	if err == nil {
		return 0
	}
	if cmd == nil {
		cmd = rootCmd
	}
	_ = writeJSON(cmd.OutOrStdout(), errorReport(cmd, err))
	return 1
}

// errorReport classifies err for the command that raised it.
func errorReport(cmd *cobra.Command, err error) domain.ErrorReport {
	report := domain.NewErrorReport(functionName(cmd), err)
	report.StatusCode = google.StatusCode(err)
	return report
}

// functionName is the command path without the binary name, e.g. "calendar list".
func functionName(cmd *cobra.Command) string {
	path := cmd.CommandPath()
	if i := strings.IndexByte(path, ' '); i >= 0 {
		return path[i+1:]
	}
	return path
}

// resolveKey reads the key from --key, then the environment, then an
// interactive prompt when stdin is a terminal.
func resolveKey(cmd *cobra.Command) (domain.SymmetricKey, error) {
	if keyFlag != "" {
		return domain.ParseKey(keyFlag)
	}
	if env := os.Getenv(KeyEnv); env != "" {
		return domain.ParseKey(env)
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, fmt.Errorf("%w: pass --key or set %s", domain.ErrInvalidKey, KeyEnv)
	}
	cmd.PrintErr("Enter key: ")
	return domain.ParseKey(readPassword())
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
