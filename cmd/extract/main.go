// Command extract runs the oracle-output extractor over a saved response.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pageza/nutriwise/backend/internal/extract"
	"github.com/pageza/nutriwise/backend/internal/logging"
	"github.com/spf13/cobra"
)

var version = "dev"

// errExtractionFailed signals that the Failure JSON was printed.
var errExtractionFailed = errors.New("extraction failed")

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

type options struct {
	shape   string
	food    string
	verbose bool
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "extract [file]",
		Short: "Extract a nutrition record or meal plan from raw model output",
		Long: `extract reads raw text produced by the model, recovers the JSON object it
contains and validates it against the requested shape.

Examples:
  # Analyse a saved nutrition response
  extract --shape nutrition --food banana response.txt

  # Read a meal plan from stdin
  cat plan.txt | extract --shape mealplan -`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(opts, args, stdin, stdout, stderr)
			if err != nil && !errors.Is(err, errExtractionFailed) {
				fmt.Fprintln(stderr, "Error:", err)
			}
			return err
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.Flags().StringVarP(&opts.shape, "shape", "s", string(extract.ShapeNutrition), "expected shape: nutrition or mealplan")
	cmd.Flags().StringVarP(&opts.food, "food", "f", "", "food name to use for a nutrition record")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log rejected candidates to stderr")
	return cmd
}

func run(opts options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	shape, err := extract.ParseShape(opts.shape)
	if err != nil {
		return err
	}

	raw, err := readInput(args, stdin)
	if err != nil {
		return err
	}

	ex := extract.New(nil)
	if opts.verbose {
		logger, err := logging.New("debug", false)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		ex = extract.New(logger)
	}

	res := ex.Extract(string(raw), shape, opts.food)
	if res.Failure != nil {
		if err := writeJSON(stdout, res.Failure); err != nil {
			return err
		}
		return errExtractionFailed
	}
	return writeJSON(stdout, *res.Value)
}

func readInput(args []string, stdin io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
