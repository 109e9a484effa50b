package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rishikoli/IRIS1-sub001/internal/httpapi"
)

func newSubmitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "submit <company-symbol>",
		Short: "Submit a company for analysis",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubmit,
	}
	cmd.Flags().StringSlice("analysis-types", nil, "analysis types to run (default: all)")
	cmd.Flags().String("source", "yahoo", "upstream source (yahoo|nse|bse|fmp)")
	cmd.Flags().Int("periods", 2, "number of periods to fetch")
	cmd.Flags().String("priority", "NORMAL", "job priority (LOW|NORMAL|HIGH|CRITICAL)")
	return cmd
}

func runSubmit(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")
	analysisTypes, _ := cmd.Flags().GetStringSlice("analysis-types")
	source, _ := cmd.Flags().GetString("source")
	periods, _ := cmd.Flags().GetInt("periods")
	priority, _ := cmd.Flags().GetString("priority")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := newAPIClient(apiURL, timeout)
	req := httpapi.SubmitJobRequest{
		CompanySymbol: args[0],
		AnalysisTypes: analysisTypes,
		Source:        source,
		Periods:       periods,
		Priority:      priority,
	}

	var resp httpapi.SubmitJobResponse
	if err := client.do(ctx, "POST", "/jobs", req, &resp); err != nil {
		if ctx.Err() != nil {
			os.Exit(exitTimeout)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUpstreamFailed)
	}

	fmt.Println(resp.JobID)
	return nil
}
