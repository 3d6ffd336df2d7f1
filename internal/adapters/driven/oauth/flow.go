package oauth

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	callback "github.com/custodia-labs/redoffice/internal/adapters/driving/oauth"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
)

// Ensure LocalServerFlow implements the interface.
var _ driven.Authorizer = (*LocalServerFlow)(nil)

// DefaultAuthTimeout bounds the wait for the operator to finish consent.
const DefaultAuthTimeout = 5 * time.Minute

// FlowConfig configures the installed-app flow.
type FlowConfig struct {
	// Opener launches a browser at the consent URL. Nil only prints the URL.
	Opener func(url string) error
	// Prompt receives the consent URL. Defaults to stderr.
	Prompt io.Writer
	// Timeout bounds the wait for the redirect. Zero waits until ctx is done.
	Timeout time.Duration
	// Logger defaults to a no-op logger.
	Logger driven.Logger
}

// LocalServerFlow runs the authorization-code flow with PKCE against an
// ephemeral loopback redirect listener.
type LocalServerFlow struct {
	provider *Provider
	opener   func(url string) error
	prompt   io.Writer
	timeout  time.Duration
	logger   driven.Logger
}

// NewLocalServerFlow creates an interactive authorizer.
func NewLocalServerFlow(provider *Provider, cfg FlowConfig) *LocalServerFlow {
	if cfg.Prompt == nil {
		cfg.Prompt = os.Stderr
	}
	if cfg.Logger == nil {
		cfg.Logger = driven.NopLogger{}
	}
	return &LocalServerFlow{
		provider: provider,
		opener:   cfg.Opener,
		prompt:   cfg.Prompt,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// Authorize blocks until the operator completes consent in the browser,
// the provider reports an error, the timeout elapses or ctx is done.
// The listener is shut down on every path.
func (f *LocalServerFlow) Authorize(
	ctx context.Context,
	client *domain.ClientCredential,
	scopes domain.ScopeSet,
) (*domain.Token, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: no client credential", domain.ErrInvalidInput)
	}
	if err := client.Validate(); err != nil {
		return nil, err
	}
	if client.AuthURL == "" {
		return nil, fmt.Errorf("%w: client credential has no auth_uri", domain.ErrInvalidInput)
	}

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	server := callback.NewCallbackServer(0, state)
	if err := server.Start(); err != nil {
		return nil, fmt.Errorf("start redirect listener: %w", err)
	}
	defer func() {
		if err := server.Stop(); err != nil {
			f.logger.Warn("redirect listener shutdown: %v", err)
		}
	}()

	redirectURI := server.RedirectURI()
	authURL := f.provider.AuthCodeURL(client, scopes, redirectURI, state, verifier)
	f.logger.Debug("waiting for authorization redirect on %s", redirectURI)

	_, _ = fmt.Fprintf(f.prompt, "Please visit this URL to authorize this application: %s\n", authURL)
	if f.opener != nil {
		if err := f.opener(authURL); err != nil {
			f.logger.Warn("could not open browser: %v", err)
		}
	}

	code, err := server.WaitForCode(ctx, f.timeout)
	if err != nil {
		return nil, fmt.Errorf("wait for authorization: %w", err)
	}

	tok, err := f.provider.Exchange(ctx, client, scopes, redirectURI, code, verifier)
	if err != nil {
		return nil, err
	}
	f.logger.Info("authorization completed")
	return tok, nil
}
