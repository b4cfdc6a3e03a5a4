package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/p-n-ai/stemblast/internal/quiz"
)

func newPickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Serve one question the way the server would",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := fileStore(cmd)
			if err != nil {
				return err
			}
			loc, err := locator(cmd)
			if err != nil {
				return err
			}

			level, _ := cmd.Flags().GetString("level")
			subject, _ := cmd.Flags().GetString("subject")
			difficulty, _ := cmd.Flags().GetString("difficulty")
			history, _ := cmd.Flags().GetStringArray("history")

			sel := quiz.NewSelector(quiz.NewBankSource(store, quiz.WithLocator(loc)))
			q := sel.SelectQuestion(cmd.Context(), quiz.SelectionCriteria{
				Grade:      level,
				Subject:    subject,
				Difficulty: quiz.ParseDifficulty(difficulty),
				History:    history,
			})

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(q)
		},
	}
	cmd.Flags().String("level", "Kindergarten", "Grade level")
	cmd.Flags().String("subject", quiz.DefaultSubject, "Subject")
	cmd.Flags().String("difficulty", string(quiz.Easy), "Easy, Intermediate or Hard")
	cmd.Flags().StringArray("history", nil, "Question text already seen (repeatable)")
	return cmd
}
