package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var queryTimeout time.Duration

var queryCmd = &cobra.Command{
	Use:   "query [select statement]",
	Short: "Run a single SELECT statement and print the rows",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), queryTimeout)
		defer cancel()

		result, err := a.queryService.ExecuteSelect(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}
		return renderRows(result.Columns, result.Rows)
	},
}

func init() {
	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", time.Minute, "Time allowed for the statement")
}
