package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	apiclient "github.com/donaldgifford/winning-products/internal/api/client"
	"github.com/donaldgifford/winning-products/internal/engine"
	"github.com/donaldgifford/winning-products/internal/render"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

// fromEngine converts a local pipeline result into the shape the API
// returns, so both paths share one renderer.
func fromEngine(res *engine.Result) *apiclient.Result {
	return &apiclient.Result{
		Mode:             res.Mode,
		Products:         res.Products,
		Top:              res.Top,
		Fetched:          res.Fetched,
		Normalized:       res.Normalized,
		Dropped:          res.Dropped,
		CreditsRemaining: res.CreditsRemaining,
	}
}

// printResult writes the full ranked table followed by the bar chart and
// detail cards of the top products.
func printResult(w io.Writer, res *apiclient.Result, chartWidth int) error {
	if jsonOutput() {
		return render.JSON(w, res)
	}

	tw := newTabWriter(w)
	tw.writef("Mode:\t%s\n", res.Mode)
	tw.writef("Fetched:\t%d\n", res.Fetched)
	tw.writef("Normalized:\t%d\n", res.Normalized)
	tw.writef("Dropped:\t%d\n", res.Dropped)
	if res.CreditsRemaining != nil {
		tw.writef("Credits left:\t%d\n", *res.CreditsRemaining)
	}
	if err := tw.finish(); err != nil {
		return err
	}

	if len(res.Products) == 0 {
		_, err := fmt.Fprintln(w, "\nNo products found.")
		return err
	}

	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := render.Table(w, res.Products); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nTop %d\n\n", len(res.Top)); err != nil {
		return err
	}
	if err := render.BarChart(w, res.Top, res.Mode, chartWidth); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return render.Cards(w, res.Top)
}

func writeCSVFile(path string, res *apiclient.Result) (err error) {
	f, err := os.Create(path) //nolint:gosec // path from trusted CLI flag
	if err != nil {
		return fmt.Errorf("creating CSV file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing CSV file: %w", cerr)
		}
	}()

	if err := render.CSV(f, res.Products); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
