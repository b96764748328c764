// Command ahpcalc evaluates factor tables from a CSV or YAML file and prints
// the weights, optionally exporting the matrix and weights as CSV.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/okian/classahp/internal/adapters/export"
	"github.com/okian/classahp/internal/adapters/tables"
	"github.com/okian/classahp/internal/domain/ahp"
	"github.com/okian/classahp/internal/domain/model"
	"github.com/okian/classahp/internal/domain/types"
	"github.com/okian/classahp/pkg/logger"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, "ahpcalc:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("ahpcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		in          = fs.String("in", "", "Factor tables (.csv, .yaml or .yml)")
		matrixOut   = fs.String("matrix", "", "Write the comparison matrix CSV to this path")
		weightsOut  = fs.String("weights", "", "Write the weights CSV to this path")
		logLevel    = fs.String("log-level", "warn", "Log level: debug, info, warn, error")
		logFormat   = fs.String("log-format", logger.FormatText, "Log format: text or json")
		crThreshold = fs.Float64("cr-threshold", ahp.AcceptableCR, "Consistency ratio above which the matrix is flagged")
		strict      = fs.Bool("strict", true, "Reject tables outside the 2..15 factor and 3..9 class bounds")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}

	if err := logger.InitWithOptions(logger.Options{Writer: stderr, Format: *logFormat}); err != nil {
		return err
	}
	if err := logger.SetLevelString(*logLevel); err != nil {
		return err
	}
	log := logger.Named("ahpcalc")

	factors, err := tables.Load(*in)
	if err != nil {
		return fmt.Errorf("load %s: %w", *in, err)
	}
	if *strict {
		if err := model.Validate(factors); err != nil {
			return err
		}
	}
	log.Debug(ctx, "tables loaded", logger.String("path", *in), logger.Int("factors", len(factors)))

	res := ahp.Recompute(factors)
	ev := types.FromResult("", res, *crThreshold, time.Time{})
	for _, a := range res.Advisories {
		log.Warn(ctx, "factor carries no information", logger.String("factor", a.Factor))
	}
	if !res.Converged {
		log.Warn(ctx, "power iteration did not converge", logger.Int("iterations", res.Iterations))
	}

	if err := printReport(stdout, ev); err != nil {
		return err
	}
	if *matrixOut != "" {
		if err := writeFile(*matrixOut, func(w io.Writer) error {
			return export.WriteMatrixCSV(w, ev.Names(), ev.Matrix)
		}); err != nil {
			return err
		}
		log.Info(ctx, "matrix written", logger.String("path", *matrixOut))
	}
	if *weightsOut != "" {
		if err := writeFile(*weightsOut, func(w io.Writer) error {
			return export.WriteWeightsCSV(w, ev.Names(), ev.Weights())
		}); err != nil {
			return err
		}
		log.Info(ctx, "weights written", logger.String("path", *weightsOut))
	}
	return nil
}

func printReport(w io.Writer, ev types.Evaluation) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FACTOR\tSCORE\tTOTAL\tWEIGHT\tNOTE")
	for _, f := range ev.Factors {
		note := ""
		if f.NoInformation {
			note = "no information"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.Name, num(f.Score), num(f.Total), num(f.Weight), note)
	}
	fmt.Fprintln(tw)
	printMatrix(tw, ev)
	fmt.Fprintln(tw)
	fmt.Fprintf(tw, "lambda_max\t%s\n", num(ev.LambdaMax))
	fmt.Fprintf(tw, "CI\t%s\n", num(ev.CI))
	fmt.Fprintf(tw, "CR\t%s\n", num(ev.CR))
	fmt.Fprintf(tw, "acceptable\t%t\n", ev.Acceptable)
	fmt.Fprintf(tw, "iterations\t%d\n", ev.Iterations)
	fmt.Fprintf(tw, "converged\t%t\n", ev.Converged)
	if len(ev.Advisories) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "ADVISORIES")
		for _, a := range ev.Advisories {
			fmt.Fprintln(tw, a)
		}
	}
	return tw.Flush()
}

// printMatrix writes the comparison matrix with factor names on both axes.
func printMatrix(w io.Writer, ev types.Evaluation) {
	names := ev.Names()
	fmt.Fprint(w, "MATRIX")
	for _, name := range names {
		fmt.Fprint(w, "\t", name)
	}
	fmt.Fprintln(w)
	for i, row := range ev.Matrix {
		if i < len(names) {
			fmt.Fprint(w, names[i])
		}
		for _, v := range row {
			fmt.Fprint(w, "\t", num(v))
		}
		fmt.Fprintln(w)
	}
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return write(f)
}
