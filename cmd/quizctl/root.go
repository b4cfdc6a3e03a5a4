package main

import (
	"github.com/spf13/cobra"

	"github.com/p-n-ai/stemblast/internal/bank"
	"github.com/p-n-ai/stemblast/internal/catalog"
	"github.com/p-n-ai/stemblast/internal/quiz"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "quizctl",
		Short:         "Inspect and load STEM quiz question banks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("dir", "", "Bank directory (default: the embedded starter banks)")
	root.PersistentFlags().String("catalog", "", "Catalog YAML adding subject tokens")

	root.AddCommand(newLocateCmd())
	root.AddCommand(newPickCmd())
	root.AddCommand(newSeedCmd())
	return root
}

// fileStore opens --dir, or the starter banks when it is unset.
func fileStore(cmd *cobra.Command) (*bank.FileStore, error) {
	dir, _ := cmd.Flags().GetString("dir")
	if dir == "" {
		return bank.Starter(), nil
	}
	return bank.NewDirStore(dir)
}

// locator builds the subject table from --catalog.
func locator(cmd *cobra.Command) (*quiz.Locator, error) {
	path, _ := cmd.Flags().GetString("catalog")
	cat, err := catalog.Load(path)
	if err != nil {
		return nil, err
	}
	return quiz.NewLocator(cat.SubjectTokens()), nil
}
