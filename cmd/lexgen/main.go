package main

import (
	"os"

	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	rootCmd := newRootCommand()
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		log.Error("lexgen failed", zap.Error(err))
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "lexgen",
		Short:             "lexgen generates lexer transition tables from token grammars.",
		SilenceUsage:      true,
		PersistentPreRunE: initCommand,
	}
	defineCommonFlags(rootCmd)
	rootCmd.AddCommand(
		newBuildCommand(),
		newScanCommand(),
	)
	return rootCmd
}
