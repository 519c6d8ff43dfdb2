package main

import (
	"os"

	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"sigs.k8s.io/yaml"
)

const flagOutput = "output"

func newBuildCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <grammar.toml>",
		Short: "build the lexer tables of a grammar and dump them as YAML",
		Args:  cobra.ExactArgs(1),
		RunE:  runBuild,
	}
	cmd.Flags().StringP(flagOutput, "o", "", "Write the tables to this file instead of stdout")
	return cmd
}

func runBuild(cmd *cobra.Command, args []string) error {
	out, err := generate(cmd, args[0])
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return errors.Trace(err)
	}

	path, err := cmd.Flags().GetString(flagOutput)
	if err != nil {
		return errors.Trace(err)
	}
	if path == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return errors.Trace(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Annotatef(err, "write tables to %s", path)
	}
	log.Info("wrote lexer tables",
		zap.String("grammar", args[0]),
		zap.String("output", path),
		zap.Int("contexts", len(out.Contexts)),
		zap.Int("methods", len(out.Methods)))
	return nil
}
