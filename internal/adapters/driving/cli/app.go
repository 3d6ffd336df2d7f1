package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/redoffice/internal/adapters/driven/config/file"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/crypto/nacl"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/oauth"
	"github.com/custodia-labs/redoffice/internal/adapters/driven/storage/encfile"
	callback "github.com/custodia-labs/redoffice/internal/adapters/driving/oauth"
	"github.com/custodia-labs/redoffice/internal/connectors/google"
	"github.com/custodia-labs/redoffice/internal/core/domain"
	"github.com/custodia-labs/redoffice/internal/core/ports/driven"
	"github.com/custodia-labs/redoffice/internal/core/ports/driving"
	"github.com/custodia-labs/redoffice/internal/core/services"
	"github.com/custodia-labs/redoffice/internal/logger"
)

// app holds the services commands use. Token services are created per
// service and key, since the key is only known at run time.
type app struct {
	logger      driven.Logger
	credentials driving.CredentialInitializer
	tokens      func(service domain.Service, key domain.SymmetricKey) (driving.TokenService, error)
	builder     driven.SessionBuilder
	close       func() error
}

// sessions returns a session factory bound to key.
func (a *app) sessions(key domain.SymmetricKey) driving.SessionFactory {
	return services.NewSessionFactory(func(service domain.Service) (driving.TokenService, error) {
		return a.tokens(service, key)
	}, a.builder)
}

// newApp builds the app for a command. Tests replace it.
var newApp = buildApp

// withApp runs fn with an app and releases it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	if a.close != nil {
		defer func() { _ = a.close() }()
	}
	return fn(a)
}

// loadConfig opens the config store named by --config.
func loadConfig() (driven.ConfigStore, error) {
	config, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return config, nil
}

func buildApp(cmd *cobra.Command) (*app, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(cmd.ErrOrStderr(), verboseFlag || config.GetBool(file.KeyLogVerbose))
	closeLog := func() error { return nil }
	if path := config.GetString(file.KeyLogFile); path != "" {
		sink, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		log.SetSink(sink)
		closeLog = sink.Close
	}

	secretsDir := config.GetString(file.KeySecretsDir)
	if secretsDir == "" {
		secretsDir = filepath.Join(filepath.Dir(config.Path()), "secrets")
	}

	codec := nacl.NewCodec()
	store, err := encfile.NewStore(secretsDir, codec)
	if err != nil {
		_ = closeLog()
		return nil, err
	}
	materializer := encfile.NewMaterializer(store, codec, "")
	provider := oauth.NewProvider(nil)

	var opener func(string) error
	if _, set := config.Get(file.KeyAuthOpenBrowser); !set || config.GetBool(file.KeyAuthOpenBrowser) {
		opener = callback.OpenBrowser
	}
	flow := oauth.NewLocalServerFlow(provider, oauth.FlowConfig{
		Opener:  opener,
		Prompt:  cmd.ErrOrStderr(),
		Timeout: config.GetDuration(file.KeyAuthTimeout, oauth.DefaultAuthTimeout),
		Logger:  log,
	})

	log.Debug("Secrets directory: %s", store.Dir())

	return &app{
		logger:      log,
		credentials: services.NewCredentialService(store, provider, log),
		tokens: func(service domain.Service, key domain.SymmetricKey) (driving.TokenService, error) {
			return services.NewTokenManager(service, key, store, materializer, provider, flow, log), nil
		},
		builder: google.NewBuilder(nil),
		close:   closeLog,
	}, nil
}

// readInput reads a file argument, or stdin when the argument is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return data, nil
}
