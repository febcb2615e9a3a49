package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	gocas "github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/config"
	"github.com/njchilds90/gocas/plot"
	"github.com/njchilds90/gocas/repl"
)

func joinArgs(args []string) string { return strings.Join(args, " ") }

func (a *app) diffCmd() *cobra.Command {
	var order int
	cmd := &cobra.Command{
		Use:   "diff <var> <expr>",
		Short: "Differentiate an expression",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.parser().Parse(joinArgs(args[1:]))
			if err != nil {
				return err
			}
			d, err := gocas.DiffN(e, args[0], order)
			if err != nil {
				return err
			}
			a.print(cmd, d)
			return nil
		},
	}
	cmd.Flags().IntVarP(&order, "order", "n", 1, "derivative order")
	return cmd
}

func (a *app) integrateCmd() *cobra.Command {
	var strict bool
	cmd := &cobra.Command{
		Use:   "integrate <var> <expr>",
		Short: "Find an antiderivative; unresolved parts stay as integrate[expr, var]",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.parser().Parse(joinArgs(args[1:]))
			if err != nil {
				return err
			}
			out := gocas.Integrate(e, args[0])
			a.print(cmd, out)
			if strict && !gocas.Resolved(out) {
				return fmt.Errorf("no closed form for part of the integrand")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "fail when the result is not fully resolved")
	return cmd
}

func (a *app) simplifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "simplify <expr>",
		Short: "Fold numbers and remove identities",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.parser().Parse(joinArgs(args))
			if err != nil {
				return err
			}
			s, err := gocas.Simplify(e)
			if err != nil {
				return err
			}
			a.print(cmd, s)
			return nil
		},
	}
}

func (a *app) renderCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render <expr>",
		Short: "Print an expression as text, tokens or JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.parser().Parse(joinArgs(args))
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch format {
			case "text":
				a.print(cmd, e)
			case "tokens":
				fmt.Fprintln(w, strings.Join(gocas.Render(e, a.mode()), " "))
			case "json":
				j, err := gocas.ToJSON(e)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, j)
			default:
				return fmt.Errorf("unknown format %q (want text, tokens or json)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, tokens or json")
	return cmd
}

func (a *app) plotter() *plot.Plotter {
	return &plot.Plotter{
		Command: a.cfg.Plot.Command,
		Args:    a.cfg.Plot.Args,
		Logger:  a.logger,
	}
}

// plotOptions merges the config defaults with flag values.
func (a *app) plotOptions(title, xlabel, ylabel, xrange, yrange string, samples int) (plot.Options, error) {
	opts := plot.Options{Title: title, XLabel: xlabel, YLabel: ylabel, Samples: a.cfg.Plot.Samples}
	if samples > 0 {
		opts.Samples = samples
	}
	if xrange == "" {
		xrange = a.cfg.Plot.XRange
	}
	if yrange == "" {
		yrange = a.cfg.Plot.YRange
	}
	var err error
	if opts.XRange, err = parseRange(xrange); err != nil {
		return opts, fmt.Errorf("xrange: %w", err)
	}
	if opts.YRange, err = parseRange(yrange); err != nil {
		return opts, fmt.Errorf("yrange: %w", err)
	}
	return opts, nil
}

func parseRange(s string) (*plot.Range, error) {
	if s == "" {
		return nil, nil
	}
	lo, hi, err := config.ParseRange(s)
	if err != nil {
		return nil, err
	}
	return &plot.Range{Lo: lo, Hi: hi}, nil
}

func (a *app) plotCmd() *cobra.Command {
	var (
		title, xlabel, ylabel string
		xrange, yrange        string
		samples               int
		scriptOnly            bool
	)
	cmd := &cobra.Command{
		Use:   "plot <expr>",
		Short: "Plot an expression with gnuplot",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.parser().Parse(joinArgs(args))
			if err != nil {
				return err
			}
			opts, err := a.plotOptions(title, xlabel, ylabel, xrange, yrange, samples)
			if err != nil {
				return err
			}
			if scriptOnly {
				fmt.Fprint(cmd.OutOrStdout(), plot.Script(e, opts))
				return nil
			}
			a.logger.Info("plotting", zap.String("expr", gocas.String(e)))
			return a.plotter().Plot(cmd.Context(), e, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "plot title")
	f.StringVar(&xlabel, "xlabel", "", "x axis label")
	f.StringVar(&ylabel, "ylabel", "", "y axis label")
	f.StringVar(&xrange, "xrange", "", "x range as a:b")
	f.StringVar(&yrange, "yrange", "", "y range as a:b")
	f.IntVar(&samples, "samples", 0, "sample count (default from config)")
	f.BoolVar(&scriptOnly, "script", false, "print the gnuplot script instead of running it")
	return cmd
}

func (a *app) replCmd() *cobra.Command {
	var history string
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := a.plotOptions("", "", "", "", "", 0)
			if err != nil {
				return err
			}
			r := &repl.REPL{
				Out:         cmd.OutOrStdout(),
				Parser:      a.parser(),
				Plotter:     a.plotter(),
				PlotOptions: opts,
				HistoryFile: history,
				Logger:      a.logger,
			}
			return r.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&history, "history", "", "file to keep line history in")
	return cmd
}
