package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/winning-products/internal/api/client"
	"github.com/donaldgifford/winning-products/internal/engine"
	domain "github.com/donaldgifford/winning-products/pkg/types"
)

// pipelineFlags are shared by search and rank.
type pipelineFlags struct {
	limit      int
	top        int
	mode       string
	csvPath    string
	chartWidth int
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.limit, "limit", 0, "results to normalize (default from config, 12)")
	cmd.Flags().IntVar(&f.top, "top", 0, "size of the chart and card view (default from config, 8)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "ranking mode: score or reviews (default from config)")
	cmd.Flags().StringVar(&f.csvPath, "csv", "", "also write the ranked table to this CSV file")
	cmd.Flags().IntVar(&f.chartWidth, "chart-width", 0, "length of the longest chart bar")
}

func (f *pipelineFlags) rankMode() (domain.RankMode, error) {
	if f.mode == "" {
		return "", nil
	}
	return domain.ParseRankMode(f.mode)
}

func (f *pipelineFlags) validate() error {
	if f.limit < 0 || f.limit > engine.MaxLimit {
		return fmt.Errorf("--limit must be between 1 and %d", engine.MaxLimit)
	}
	if f.top < 0 {
		return fmt.Errorf("--top must be positive")
	}
	_, err := f.rankMode()
	return err
}

func searchCmd() *cobra.Command {
	var (
		flags       pipelineFlags
		marketplace string
	)

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search Amazon and rank the results",
		Long: "Fetches one page of search results, drops listings without a title,\n" +
			"ranks the rest and prints the table, a bar chart and detail cards of\n" +
			"the top products. Every live search spends Rainforest API credits.",
		Example: `  winning-products search "wireless earbuds"
  winning-products search "yoga mat" --domain amazon.com --mode reviews --top 5
  winning-products search "air fryer" --csv air-fryers.csv --output json
  winning-products search "kettle" --server http://localhost:8080`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(cmd, strings.Join(args, " "), marketplace, &flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&marketplace, "domain", "", "Amazon marketplace domain (default from config, amazon.in)")

	return cmd
}

func runSearch(cmd *cobra.Command, term, marketplace string, flags *pipelineFlags) error {
	if err := flags.validate(); err != nil {
		return err
	}
	mode, _ := flags.rankMode()

	var res *apiclient.Result
	if serverURL() != "" {
		var err error
		res, err = newClient().Search(cmd.Context(), &apiclient.SearchParams{
			Term:   term,
			Domain: marketplace,
			Limit:  flags.limit,
			Top:    flags.top,
			Mode:   string(mode),
		})
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rf, _ := newRainforestClient(cfg)
		if marketplace == "" {
			marketplace = cfg.Rainforest.Domain
		}

		out, err := newEngine(cfg, newLogger(cfg), rf).Search(cmd.Context(), engine.Params{
			Term:   term,
			Domain: marketplace,
			Limit:  flags.limit,
			Top:    flags.top,
			Mode:   mode,
		})
		if err != nil {
			return err
		}
		res = fromEngine(out)
	}

	if flags.csvPath != "" {
		if err := writeCSVFile(flags.csvPath, res); err != nil {
			return err
		}
	}

	return printResult(cmd.OutOrStdout(), res, flags.chartWidth)
}
