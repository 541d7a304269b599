package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/winning-products/internal/api/client"
	"github.com/donaldgifford/winning-products/internal/engine"
	"github.com/donaldgifford/winning-products/internal/rainforest"
)

func rankCmd() *cobra.Command {
	var flags pipelineFlags

	cmd := &cobra.Command{
		Use:   "rank <file|->",
		Short: "Rank a saved search response without calling the API",
		Long: "Reads a search response document saved earlier, either the full API\n" +
			"envelope or a bare JSON array of result records, and runs it through\n" +
			"the same normalize and rank pipeline as search. Use - for stdin.",
		Example: `  winning-products rank earbuds.json
  curl -s "$URL" | winning-products rank - --mode reviews`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, args[0], &flags)
		},
	}
	flags.register(cmd)

	return cmd
}

func runRank(cmd *cobra.Command, path string, flags *pipelineFlags) error {
	if err := flags.validate(); err != nil {
		return err
	}
	mode, _ := flags.rankMode()

	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	doc, err := rainforest.DecodeSearchResponse(data)
	if err != nil {
		return err
	}

	var res *apiclient.Result
	if serverURL() != "" {
		res, err = newClient().Rank(cmd.Context(), &apiclient.RankParams{
			Records: doc.Results,
			Limit:   flags.limit,
			Top:     flags.top,
			Mode:    string(mode),
		})
		if err != nil {
			return fmt.Errorf("ranking: %w", err)
		}
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		eng := newEngine(cfg, newLogger(cfg), nil)
		res = fromEngine(eng.RankRecords(doc.Results, engine.Params{
			Limit: flags.limit,
			Top:   flags.top,
			Mode:  mode,
		}))
	}

	if flags.csvPath != "" {
		if err := writeCSVFile(flags.csvPath, res); err != nil {
			return err
		}
	}

	return printResult(cmd.OutOrStdout(), res, flags.chartWidth)
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // path from trusted CLI argument
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}
