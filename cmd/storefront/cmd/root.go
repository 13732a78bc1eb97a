// Package cmd provides the CLI commands for the storefront client.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"storefront/internal/app"
	"storefront/internal/config"
	"storefront/internal/logger"
	"storefront/internal/notify"
)

const (
	outputJSON = "json"
	outputText = "text"
)

// env carries what every command needs. The App is built before each
// command runs and closed after it by withTeardown.
type env struct {
	cfgFile string
	output  string
	verbose bool

	stdout io.Writer
	stderr io.Writer
	opts   []app.Option

	app *app.App
}

// NewRootCommand builds the storefront command tree writing to stdout and stderr.
// opts are passed to app.New.
func NewRootCommand(stdout, stderr io.Writer, opts ...app.Option) *cobra.Command {
	e := &env{stdout: stdout, stderr: stderr, opts: opts}

	root := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront - command line client for the shop backend",
		Long: `storefront talks to the shop backend on behalf of a signed-in user.

The session token is stored between runs (file, redis or memory storage) and
attached to every request. A rejected or expired token clears the session.

Configuration:
  Settings come from an optional YAML file, .env and environment variables
  with the STOREFRONT_ prefix.
  Example: STOREFRONT_API_BASE_URL=http://127.0.0.1:8000

Results are printed to stdout as JSON; notifications go to stderr.`,
		SilenceUsage:      true,
		PersistentPreRunE: e.setup,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&e.cfgFile, "config", config.GetEnvOrDefault("STOREFRONT_CONFIG", ""), "config file (YAML)")
	root.PersistentFlags().StringVarP(&e.output, "output", "o", outputJSON, "output format: json or text")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log backend requests to stderr")

	root.AddCommand(
		newLoginCmd(e),
		newLogoutCmd(e),
		newRegisterCmd(e),
		newWhoamiCmd(e),
		newProfileCmd(e),
		newPasswordCmd(e),
		newProductsCmd(e),
		newCartCmd(e),
		newOrdersCmd(e),
		newAddressesCmd(e),
		newCouponsCmd(e),
		newReturnsCmd(e),
		newNavigateCmd(e),
		newRoutesCmd(e),
	)
	withTeardown(e, root)
	return root
}

// withTeardown closes the App after every runnable command, including
// commands that fail. cobra skips post-run hooks when RunE returns an error.
func withTeardown(e *env, cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(cmd *cobra.Command, args []string) (err error) {
			defer func() {
				err = errors.Join(err, e.teardown())
			}()
			return run(cmd, args)
		}
	}
	for _, sub := range cmd.Commands() {
		withTeardown(e, sub)
	}
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func (e *env) setup(cmd *cobra.Command, args []string) error {
	if e.output != outputJSON && e.output != outputText {
		return fmt.Errorf("unknown output format %q", e.output)
	}
	// cobra checks required flags after this hook, when the App would already be open
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return err
	}

	cfg, err := config.Load(e.cfgFile)
	if err != nil {
		return err
	}

	level := cfg.Log.Level
	if e.verbose {
		level = "debug"
	}
	log := logger.NewWithWriter(e.stderr, level, cfg.Log.Format)
	logger.SetDefault(log)

	opts := append([]app.Option{app.WithNotifier(notify.NewWriterNotifier(e.stderr))}, e.opts...)
	a, err := app.New(cfg, log, opts...)
	if err != nil {
		return err
	}
	if err := a.Init(cmd.Context()); err != nil {
		a.Close()
		return err
	}
	e.app = a
	return nil
}

func (e *env) teardown() error {
	if e.app == nil {
		return nil
	}
	err := e.app.Close()
	e.app = nil
	return err
}

func (e *env) ctx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// print writes v as indented JSON, or through text when -o text is set and
// the command has a text rendering
func (e *env) print(v any, text func(w io.Writer)) error {
	if e.output == outputText && text != nil {
		text(e.stdout)
		return nil
	}
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// idArg wraps a command body that takes exactly one numeric id
func idArg(run func(cmd *cobra.Command, id int64) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		return run(cmd, id)
	}
}
