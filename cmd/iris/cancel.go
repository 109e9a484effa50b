package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rishikoli/IRIS1-sub001/internal/httpapi"
)

func newCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <job-id>",
		Short: "Cancel a pending or running job",
		Args:  cobra.ExactArgs(1),
		RunE:  runCancel,
	}
}

func runCancel(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := newAPIClient(apiURL, timeout)
	var resp httpapi.CancelJobResponse
	if err := client.do(ctx, "DELETE", "/jobs/"+args[0], nil, &resp); err != nil {
		if ctx.Err() != nil {
			os.Exit(exitTimeout)
		}
		if apiErr, ok := err.(*apiError); ok && apiErr.status == http.StatusNotFound {
			os.Exit(exitBadArguments)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUpstreamFailed)
	}

	fmt.Printf("job %s: %s\n", resp.JobID, resp.Status)
	return nil
}
