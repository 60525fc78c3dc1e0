// Package cli implements the pawhealth command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-pawhealth/internal/config"
	"github.com/goliatone/go-pawhealth/internal/logging"
	"github.com/goliatone/go-pawhealth/internal/store"
	"github.com/goliatone/go-pawhealth/pkg/client"
	"github.com/goliatone/go-pawhealth/pkg/renderers/tui"
	"github.com/goliatone/go-pawhealth/pkg/session"
)

// tokenKey is the state key used when the keychain is unavailable.
const tokenKey = "session.token"

// App carries the state shared by every command of one invocation.
type App struct {
	out    io.Writer
	errOut io.Writer
	driver tui.PromptDriver

	configPath string
	apiURL     string
	dbPath     string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
	store  *store.Store
}

// Option configures the App behind the root command.
type Option func(*App)

// WithOutput redirects command output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		if out != nil {
			a.out = out
		}
		if errOut != nil {
			a.errOut = errOut
		}
	}
}

// WithPromptDriver replaces the terminal prompts, mainly for tests.
func WithPromptDriver(driver tui.PromptDriver) Option {
	return func(a *App) {
		a.driver = driver
	}
}

// NewRootCmd builds the pawhealth command tree.
func NewRootCmd(options ...Option) *cobra.Command {
	a := &App{out: os.Stdout, errOut: os.Stderr, logger: zap.NewNop()}
	for _, opt := range options {
		if opt != nil {
			opt(a)
		}
	}

	root := &cobra.Command{
		Use:           "pawhealth",
		Short:         "Pet health intake, protocols and admin tools",
		Long:          "pawhealth talks to the pet-health backend: fill intake forms, review protocols, chat with the assistant and manage the onboarding form.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.teardown()
		},
	}
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: <user config dir>/pawhealth/config.yaml)")
	flags.StringVar(&a.apiURL, "api", "", "Backend base URL (overrides api.base_url)")
	flags.StringVar(&a.dbPath, "db", "", "Local state database (overrides store.path)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.intakeCmd(),
		a.previewCmd(),
		a.builderCmd(),
		a.protocolCmd(),
		a.chatCmd(),
		a.brandCmd(),
		a.serveCmd(),
		a.xpCmd(),
	)
	return root
}

// Execute runs the command tree and prints the user facing error, if any.
func Execute(ctx context.Context, options ...Option) int {
	root := NewRootCmd(options...)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "error: %s\n", client.Message(err))
		return 1
	}
	return 0
}

func (a *App) setup() error {
	path := a.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.apiURL != "" {
		cfg.API.BaseURL = a.apiURL
	}
	if a.dbPath != "" {
		cfg.Store.Path = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging, a.verbose)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

func (a *App) teardown() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("close store", zap.Error(err))
		}
		a.store = nil
	}
	_ = a.logger.Sync()
}

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pawhealth", "config.yaml")
}

func (a *App) openStore() (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	st, err := store.Open(a.cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	a.store = st
	return st, nil
}

func (a *App) sessionDeps() (session.Deps, error) {
	st, err := a.openStore()
	if err != nil {
		return session.Deps{}, err
	}
	var tokens session.TokenStore = session.NewKVStore(st, tokenKey)
	if !a.cfg.Keyring.Disabled {
		tokens = session.NewFallbackStore(session.NewKeychainStore(a.cfg.Keyring.Service), tokens, a.logger)
	}
	return session.Deps{Tokens: tokens, State: st, Logger: a.logger}, nil
}

// restore returns the persisted session, with a friendlier error when the
// user never signed in.
func (a *App) restore(ctx context.Context) (*session.Session, error) {
	deps, err := a.sessionDeps()
	if err != nil {
		return nil, err
	}
	sess, err := session.Restore(ctx, deps)
	if errors.Is(err, session.ErrNoSession) {
		return nil, fmt.Errorf("%w: run `pawhealth login` first", err)
	}
	return sess, err
}

func (a *App) apiClient(tokens client.TokenSource) (*client.Client, error) {
	timeout, err := a.cfg.APITimeout()
	if err != nil {
		return nil, err
	}
	return client.New(a.cfg.API.BaseURL,
		client.WithHTTPClient(&http.Client{Timeout: timeout}),
		client.WithTokenSource(tokens),
		client.WithLogger(a.logger),
		client.WithUserAgent(a.cfg.API.UserAgent),
	)
}

// signedInClient restores the session and returns a client authenticated
// with it.
func (a *App) signedInClient(ctx context.Context) (*session.Session, *client.Client, error) {
	sess, err := a.restore(ctx)
	if err != nil {
		return nil, nil, err
	}
	c, err := a.apiClient(sess.Auth)
	if err != nil {
		return nil, nil, err
	}
	return sess, c, nil
}

func (a *App) prompts() tui.PromptDriver {
	if a.driver == nil {
		a.driver = tui.NewSurveyDriver(a.errOut)
	}
	return a.driver
}

func (a *App) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(data))
	return err
}

// flush prints queued notices of sess.
func (a *App) flush(sess *session.Session) {
	if sess == nil {
		return
	}
	for _, notice := range sess.Messages.Drain() {
		w := a.out
		if notice.Level == session.LevelError {
			w = a.errOut
		}
		fmt.Fprintf(w, "[%s] %s\n", notice.Level, strings.TrimSpace(notice.Text))
	}
}

func writeOutput(path string, fallback io.Writer, data []byte) error {
	if path == "" || path == "-" {
		_, err := fallback.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
