package cmd

import (
	"context"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ekaya-inc/fraudwatch/pkg/models"
)

var askTimeout time.Duration

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask the assistant a question about the fraud data",
	Long: `ask runs one assistant turn: the question is completed into a SELECT,
the statement is executed and the answer is printed with the rows it returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(configPath)
		if err != nil {
			return err
		}
		defer a.close()

		ctx, cancel := context.WithTimeout(cmd.Context(), askTimeout)
		defer cancel()

		spinner, _ := pterm.DefaultSpinner.Start("Thinking...")
		turn, err := a.intelligenceService.Ask(ctx, strings.Join(args, " "))
		if err != nil {
			if spinner != nil {
				spinner.Fail(err.Error())
			}
			return err
		}
		if spinner != nil {
			if turn.Outcome == models.TurnOutcomeAnswered {
				spinner.Success("Answered")
			} else {
				spinner.Warning(turn.Outcome)
			}
		}

		renderMessage(turn.Message)
		if turn.Outcome == models.TurnOutcomeAnswered && turn.RowCount > 1 {
			return renderRows(turn.Columns, turn.Rows)
		}
		return nil
	},
}

func init() {
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "Overall time allowed for the turn")
}
