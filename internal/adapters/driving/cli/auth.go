package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authorize services and inspect stored tokens",
	Long: `Obtain and inspect OAuth tokens for each service.

A login reuses a valid stored token, refreshes an expired one, and only
opens the browser for consent when neither works. --force always asks for
consent again, e.g. after revoking access.

Examples:
  redoffice auth login calendar
  redoffice auth login mail --force
  redoffice auth status`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [service]",
	Short: "Obtain a valid token for a service",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogin,
}

var authStatusCmd = &cobra.Command{
	Use:   "status [service...]",
	Short: "Show the stored token state for services",
	RunE:  runAuthStatus,
}

// Flags for auth login.
var authLoginForce bool

func init() {
	authLoginCmd.Flags().BoolVar(&authLoginForce, "force", false, "skip the stored token and ask for consent")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

// authLoginOutput reports a successful login. Token values are never printed.
type authLoginOutput struct {
	Status  string              `json:"status"`
	Service domain.Service      `json:"service"`
	Scopes  []string            `json:"scopes"`
	Expiry  *time.Time          `json:"expiry,omitempty"`
	Trace   []domain.TokenState `json:"trace"`
}

// authStatusEntry describes one service's stored token.
type authStatusEntry struct {
	Service         domain.Service    `json:"service"`
	State           domain.TokenState `json:"state"`
	Expiry          *time.Time        `json:"expiry,omitempty"`
	Scopes          []string          `json:"scopes,omitempty"`
	HasRefreshToken bool              `json:"has_refresh_token"`
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	service, err := domain.ParseService(args[0])
	if err != nil {
		return err
	}
	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}

	return withApp(cmd, func(a *app) error {
		ts, err := a.tokens(service, key)
		if err != nil {
			return err
		}

		var tok *domain.Token
		if authLoginForce {
			tok, err = ts.Reauthorize(cmd.Context())
		} else {
			tok, err = ts.Token(cmd.Context())
		}
		if err != nil {
			return err
		}

		return writeJSON(cmd.OutOrStdout(), authLoginOutput{
			Status:  "success",
			Service: service,
			Scopes:  tok.Scopes,
			Expiry:  expiryOf(tok),
			Trace:   ts.Trace(),
		})
	})
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	services := domain.AllServices()
	if len(args) > 0 {
		services = services[:0:0]
		for _, arg := range args {
			s, err := domain.ParseService(arg)
			if err != nil {
				return err
			}
			services = append(services, s)
		}
	}

	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}

	return withApp(cmd, func(a *app) error {
		entries := make([]authStatusEntry, 0, len(services))
		for _, service := range services {
			ts, err := a.tokens(service, key)
			if err != nil {
				return err
			}
			tok, state := ts.Inspect()
			entry := authStatusEntry{Service: service, State: state}
			if tok != nil {
				entry.Expiry = expiryOf(tok)
				entry.Scopes = tok.Scopes
				entry.HasRefreshToken = tok.HasRefreshToken()
			}
			entries = append(entries, entry)
		}
		return writeJSON(cmd.OutOrStdout(), entries)
	})
}

func expiryOf(tok *domain.Token) *time.Time {
	if tok == nil || tok.Expiry.IsZero() {
		return nil
	}
	e := tok.Expiry
	return &e
}
