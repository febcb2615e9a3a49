// Command gocas differentiates, integrates, simplifies and plots
// expressions written in linear notation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gocas "github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/internal/logging"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	gnuplot    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "gocas",
		Short: "gocas - symbolic differentiation, integration and simplification",
		Long: `gocas works on expressions in linear notation, for example

  gocas diff x "x^2*sin(x)"
  gocas integrate x "3*x^2+cos(x)"
  gocas plot --xrange=-3:3 "x^3-x"

Run "gocas repl" for an interactive shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger, err = logging.New(cfg.Logging, a.verbose)
			if err != nil {
				return err
			}
			a.logger.Debug("config loaded", zap.String("path", a.configPath))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.gnuplot, "gnuplot", false, "print results with ** for exponentiation")

	root.AddCommand(
		a.diffCmd(),
		a.integrateCmd(),
		a.simplifyCmd(),
		a.renderCmd(),
		a.plotCmd(),
		a.replCmd(),
	)
	return root
}

func (a *app) parser() *gocas.Parser {
	return &gocas.Parser{MaxDepth: a.cfg.Engine.MaxDepth}
}

func (a *app) mode() gocas.Mode {
	if a.gnuplot {
		return gocas.Gnuplot
	}
	return gocas.Standard
}

func (a *app) print(cmd *cobra.Command, e gocas.Expr) {
	fmt.Fprintln(cmd.OutOrStdout(), gocas.RenderString(e, a.mode()))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
