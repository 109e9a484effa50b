package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rishikoli/IRIS1-sub001/internal/httpapi"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <job-id>",
		Short: "Print a job's current status",
		Args:  cobra.ExactArgs(1),
		RunE:  runStatus,
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := newAPIClient(apiURL, timeout)
	var job httpapi.JobResponse
	if err := client.do(ctx, "GET", "/jobs/"+args[0], nil, &job); err != nil {
		if ctx.Err() != nil {
			os.Exit(exitTimeout)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUpstreamFailed)
	}

	out, _ := json.MarshalIndent(job, "", "  ")
	fmt.Println(string(out))

	if job.Status == "CANCELLED" {
		os.Exit(exitCancelled)
	}
	if job.Status == "FAILED" {
		os.Exit(exitUpstreamFailed)
	}
	return nil
}
