package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/Rishikoli/IRIS1-sub001/internal/domain"
)

func newResultCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "result <job-id>",
		Short: "Print a completed job's result bundle",
		Args:  cobra.ExactArgs(1),
		RunE:  runResult,
	}
}

func runResult(cmd *cobra.Command, args []string) error {
	apiURL, _ := cmd.Flags().GetString("api")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client := newAPIClient(apiURL, timeout)
	var bundle domain.ResultBundle
	if err := client.do(ctx, "GET", "/jobs/"+args[0]+"/result", nil, &bundle); err != nil {
		if ctx.Err() != nil {
			os.Exit(exitTimeout)
		}
		if apiErr, ok := err.(*apiError); ok && apiErr.status == http.StatusNotFound {
			os.Exit(exitBadArguments)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUpstreamFailed)
	}

	out, _ := json.MarshalIndent(bundle, "", "  ")
	fmt.Println(string(out))
	return nil
}
