// Package plot draws gocas expressions with gnuplot.
//
// Script builds the gnuplot command file; Plotter writes it to a temporary
// file, runs gnuplot on it synchronously and removes the file afterwards.
package plot

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"

	gocas "github.com/njchilds90/gocas"
	"github.com/njchilds90/gocas/internal/logging"
)

// DefaultSamples is the sample count used when Options.Samples is zero.
const DefaultSamples = 200

// Range is a closed axis interval.
type Range struct {
	Lo, Hi float64
}

func (r Range) String() string {
	return "[" + formatBound(r.Lo) + ":" + formatBound(r.Hi) + "]"
}

func formatBound(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

// Options controls the plot decoration. Zero values leave gnuplot's
// defaults in place.
type Options struct {
	Title   string
	XLabel  string
	YLabel  string
	XRange  *Range
	YRange  *Range
	Samples int
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string { return `"` + quoter.Replace(s) + `"` }

// Script returns the gnuplot commands that plot e. The expression is
// rendered with ** for exponentiation.
func Script(e gocas.Expr, opts Options) string {
	var b strings.Builder
	samples := opts.Samples
	if samples <= 0 {
		samples = DefaultSamples
	}
	fmt.Fprintf(&b, "set samples %d\n", samples)
	if opts.Title != "" {
		fmt.Fprintf(&b, "set title %s\n", quote(opts.Title))
	}
	if opts.XLabel != "" {
		fmt.Fprintf(&b, "set xlabel %s\n", quote(opts.XLabel))
	}
	if opts.YLabel != "" {
		fmt.Fprintf(&b, "set ylabel %s\n", quote(opts.YLabel))
	}
	if opts.XRange != nil {
		fmt.Fprintf(&b, "set xrange %s\n", opts.XRange)
	}
	if opts.YRange != nil {
		fmt.Fprintf(&b, "set yrange %s\n", opts.YRange)
	}
	fmt.Fprintf(&b, "plot %s\n", gocas.RenderString(e, gocas.Gnuplot))
	return b.String()
}

// Plotter runs gnuplot.
type Plotter struct {
	// Command is the gnuplot binary; "gnuplot" when empty.
	Command string
	// Args precede the script path on the command line.
	Args []string
	// Dir holds the temporary script; os.TempDir() when empty.
	Dir    string
	Logger *zap.Logger
}

func (p *Plotter) logger() *zap.Logger { return logging.OrNop(p.Logger) }

// Plot writes the script for e to a temporary file and runs the plot
// command on it, waiting for it to exit. The file is removed on every path.
func (p *Plotter) Plot(ctx context.Context, e gocas.Expr, opts Options) error {
	log := p.logger()

	f, err := os.CreateTemp(p.Dir, "gocas-*.gp")
	if err != nil {
		return fmt.Errorf("plot: create script: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("failed to remove plot script", zap.String("path", path), zap.Error(err))
		}
	}()

	script := Script(e, opts)
	if _, err := f.WriteString(script); err != nil {
		f.Close()
		return fmt.Errorf("plot: write script: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("plot: write script: %w", err)
	}

	command := p.Command
	if command == "" {
		command = "gnuplot"
	}
	args := append(append([]string(nil), p.Args...), path)
	cmd := exec.CommandContext(ctx, command, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log.Debug("running plot",
		zap.String("command", command),
		zap.Strings("args", args),
		zap.String("expr", gocas.String(e)),
	)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		log.Error("plot failed", zap.Error(err), zap.String("stderr", msg))
		if msg != "" {
			return fmt.Errorf("plot: %s: %w: %s", command, err, msg)
		}
		return fmt.Errorf("plot: %s: %w", command, err)
	}
	return nil
}
