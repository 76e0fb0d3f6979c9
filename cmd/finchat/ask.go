package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"finchat/internal/cli"
	"finchat/internal/core"
)

var (
	flagAskUser    string
	flagAskMessage string
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer one question and exit",
	Example: `  finchat ask --user u1 --message "How much left this month?"
  DATA_BACKEND=sqlite finchat ask -u u1 -m "Am I wasting money?"`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVarP(&flagAskUser, "user", "u", "", "User id")
	askCmd.Flags().StringVarP(&flagAskMessage, "message", "m", "", "Question to answer")
	_ = askCmd.MarkFlagRequired("user")
	_ = askCmd.MarkFlagRequired("message")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	stack, err := cli.NewStack(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer stack.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.RequestTimeout)
	defer cancel()

	answer, err := stack.Chat.Answer(ctx, flagAskUser, flagAskMessage)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), cli.RenderError(err.Error(), core.ErrorCode(err)))
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderAnswer(answer.Text, answer.Intent.String()))
	fmt.Fprintln(cmd.OutOrStdout())
	return nil
}
