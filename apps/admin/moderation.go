package main

import (
	"context"

	"github.com/spf13/cobra"
)

func (cli *commandLine) reevaluateCmd() *cobra.Command {
	var resourceID string
	cmd := &cobra.Command{
		Use:   "reevaluate --resource ID",
		Short: "Re-run the escalation rules of a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if resourceID == "" {
				return cli.help(cmd, args)
			}
			out, err := cli.reviewSvc.Reevaluate(context.Background(), resourceID)
			if err != nil {
				return err
			}
			return cli.printJSON(out)
		},
	}
	cmd.Flags().StringVar(&resourceID, "resource", "", "The resource ID.")
	return cmd
}

func (cli *commandLine) reportCmd() *cobra.Command {
	var (
		owner string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "report [--owner EMAIL] [--limit N]",
		Short: "Print the analytics report as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := cli.reporter.Report(context.Background(), owner, limit)
			if err != nil {
				return err
			}
			return cli.printJSON(report)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "Include this owner's performance and share of each category.")
	cmd.Flags().IntVar(&limit, "limit", 0, "Number of top rated resources; defaults to the configured limit.")
	return cmd
}
