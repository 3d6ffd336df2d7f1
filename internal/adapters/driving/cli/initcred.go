package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

var initCredCmd = &cobra.Command{
	Use:   "init-cred [client_secret.json|-]",
	Short: "Encrypt and store an OAuth client secret",
	Long: `Encrypt a Google OAuth client secret JSON file and store it for each service.

Without --key a new key is generated and printed. The key is the only way
to decrypt the stored credential and tokens: keep it safe, it is never
written to disk.

Examples:
  redoffice init-cred client_secret.json
  redoffice init-cred client_secret.json --service calendar
  cat client_secret.json | redoffice init-cred - --key "$REDOFFICE_KEY"`,
	Args: cobra.ExactArgs(1),
	RunE: runInitCred,
}

// Flags for init-cred.
var initCredServices []string

func init() {
	initCredCmd.Flags().StringSliceVar(&initCredServices, "service", nil,
		"limit to services (calendar, mail, spreadsheet); default all")
	rootCmd.AddCommand(initCredCmd)
}

// initCredOutput is printed on success. It is the only place the key is shown.
type initCredOutput struct {
	Status   string           `json:"status"`
	Key      string           `json:"key"`
	Services []domain.Service `json:"services"`
}

func runInitCred(cmd *cobra.Command, args []string) error {
	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	defer clear(raw)

	services := make([]domain.Service, 0, len(initCredServices))
	for _, name := range initCredServices {
		s, err := domain.ParseService(name)
		if err != nil {
			return err
		}
		services = append(services, s)
	}

	// A supplied key is reused so every artifact shares it; otherwise one is generated.
	var key domain.SymmetricKey
	switch {
	case keyFlag != "":
		if key, err = domain.ParseKey(keyFlag); err != nil {
			return err
		}
	case os.Getenv(KeyEnv) != "":
		if key, err = domain.ParseKey(os.Getenv(KeyEnv)); err != nil {
			return err
		}
	}

	return withApp(cmd, func(a *app) error {
		result, err := a.credentials.Initialize(cmd.Context(), raw, key, services)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), initCredOutput{
			Status:   result.Status,
			Key:      result.Key.String(),
			Services: result.Services,
		})
	})
}
