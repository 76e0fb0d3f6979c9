package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"finchat/internal/cli"
)

var (
	flagHistoryUser  string
	flagHistoryLimit int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently answered questions from the audit trail",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&flagHistoryUser, "user", "u", "", "User id")
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "l", 20, "Maximum number of events")
	_ = historyCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	events, err := repo.ListChatEvents(cmd.Context(), flagHistoryUser, flagHistoryLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("CHAT HISTORY: "+flagHistoryUser))
	fmt.Fprintln(out)
	if len(events) == 0 {
		fmt.Fprintln(out, "  No answered questions recorded.")
		return nil
	}

	t := cli.Table{Headers: []string{"When", "Intent", "Question", "Answer"}}
	for _, e := range events {
		t.Rows = append(t.Rows, []string{
			e.OccurredAt.Local().Format("2006-01-02 15:04"),
			e.Intent,
			truncate(e.Question, 40),
			truncate(e.Answer, 60),
		})
	}
	fmt.Fprint(out, cli.RenderTable(t))
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
