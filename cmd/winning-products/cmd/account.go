package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	apiclient "github.com/donaldgifford/winning-products/internal/api/client"
	"github.com/donaldgifford/winning-products/internal/render"
)

func accountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "account",
		Short: "Show Rainforest API credit usage",
		Long:  "Looks up the plan and credit usage of the configured API key. The lookup itself is free.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var acct *apiclient.Account
			if serverURL() != "" {
				var err error
				acct, err = newClient().GetAccount(cmd.Context())
				if err != nil {
					return fmt.Errorf("getting account: %w", err)
				}
			} else {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				rf, _ := newRainforestClient(cfg)
				info, err := rf.GetAccount(cmd.Context())
				if err != nil {
					return fmt.Errorf("getting account: %w", err)
				}
				acct = &apiclient.Account{
					Plan:             info.Plan,
					CreditsUsed:      info.CreditsUsed,
					CreditsLimit:     info.CreditsLimit,
					CreditsRemaining: info.CreditsRemaining,
					CreditsResetAt:   info.CreditsResetAt,
				}
			}

			if jsonOutput() {
				return render.JSON(cmd.OutOrStdout(), acct)
			}
			return printAccount(cmd.OutOrStdout(), acct)
		},
	}
}

func printAccount(w io.Writer, a *apiclient.Account) error {
	tw := newTabWriter(w)
	tw.writef("Plan:\t%s\n", a.Plan)
	tw.writef("Credits used:\t%d\n", a.CreditsUsed)
	tw.writef("Credits limit:\t%d\n", a.CreditsLimit)
	tw.writef("Credits remaining:\t%d\n", a.CreditsRemaining)
	if a.CreditsResetAt != nil {
		tw.writef("Resets at:\t%s\n", a.CreditsResetAt.Format(time.RFC3339))
	}
	return tw.finish()
}

var errQuotaNeedsServer = errors.New("quota reports a running server's budget; pass --server")

func quotaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quota",
		Short: "Show the server's daily search budget",
		Long: "Shows how many searches the API server may still send upstream in the\n" +
			"current 24-hour window. The budget lives in the server process, so\n" +
			"this command needs --server.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if serverURL() == "" {
				return errQuotaNeedsServer
			}

			q, err := newClient().GetQuota(cmd.Context())
			if err != nil {
				return fmt.Errorf("getting quota: %w", err)
			}

			if jsonOutput() {
				return render.JSON(cmd.OutOrStdout(), q)
			}
			return printQuota(cmd.OutOrStdout(), q)
		},
	}
}

func printQuota(w io.Writer, q *apiclient.Quota) error {
	tw := newTabWriter(w)
	limit := "unlimited"
	if q.DailyLimit > 0 {
		limit = fmt.Sprintf("%d", q.DailyLimit)
	}
	tw.writef("Daily limit:\t%s\n", limit)
	tw.writef("Used:\t%d\n", q.DailyUsed)
	if q.DailyLimit > 0 {
		tw.writef("Remaining:\t%d\n", q.Remaining)
	}
	if q.ResetAt != nil {
		tw.writef("Resets at:\t%s\n", q.ResetAt.Format(time.RFC3339))
	}
	return tw.finish()
}
