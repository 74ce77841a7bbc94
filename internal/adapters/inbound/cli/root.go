package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bst-license-checker/bst-license-checker/internal/adapters/outbound/config"
	"github.com/bst-license-checker/bst-license-checker/internal/domain"
	"github.com/bst-license-checker/bst-license-checker/internal/logger"
)

var (
	version = "dev"
	commit  = "none"
)

// globalFlags are shared by every command.
type globalFlags struct {
	logLevel   string
	logFormat  string
	configPath string
}

func (g *globalFlags) logger(cmd *cobra.Command) logger.Logger {
	return logger.New(logger.Options{
		Level:  g.logLevel,
		Format: g.logFormat,
		Writer: cmd.ErrOrStderr(),
	}.FromEnv())
}

// validate checks the shared flags. Subcommands with their own
// PersistentPreRunE must call it, cobra only runs the nearest hook.
func (g *globalFlags) validate() error {
	if !logger.ValidLevel(g.logLevel) {
		return domain.ConfigErrorf("unknown log level %q (valid: trace, debug, info, warn, error)", g.logLevel)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := newAuditCmd(g)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return g.validate()
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error (default info)")
	pf.StringVar(&g.logFormat, "log-format", "", "Log format: console or json (default console)")
	pf.StringVar(&g.configPath, "config", "", "Tool config file (default ./"+config.FileName+" if present)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCacheCmd(g))
	cmd.AddCommand(newHistoryCmd())
	cmd.AddCommand(newMCPCmd(g))
	return cmd
}

// NewRootCmdForTest returns the root command for testing.
func NewRootCmdForTest() *cobra.Command {
	return newRootCmd()
}

// Execute runs the command line. SIGINT and SIGTERM cancel the run; the
// error is printed to stderr and returned for the exit status.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bst-license-checker: %s: %v\n", domain.KindOf(err), err)
	}
	return err
}
