package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/redoffice/internal/core/domain"
)

// withSession resolves the key and runs fn with a ready session for service.
func withSession(cmd *cobra.Command, service domain.Service, fn func(a *app, s *domain.Session) error) error {
	key, err := resolveKey(cmd)
	if err != nil {
		return err
	}
	return withApp(cmd, func(a *app) error {
		session, err := a.sessions(key).Session(cmd.Context(), service)
		if err != nil {
			return err
		}
		return fn(a, session)
	})
}
