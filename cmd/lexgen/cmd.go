package main

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/spf13/cobra"

	"github.com/coregx/lexgen"
	"github.com/coregx/lexgen/internal/logutil"
	"github.com/coregx/lexgen/lexspec"
)

const (
	// flagLogLevel is the name of log-level flag.
	flagLogLevel = "log-level"
	// flagLogFile is the name of log-file flag.
	flagLogFile = "log-file"
	// flagLogFormat is the name of log-format flag.
	flagLogFormat = "log-format"
	// flagConfig is the name of config flag.
	flagConfig = "config"
	// flagNoBlockSharing disables shared non-ASCII blocks.
	flagNoBlockSharing = "no-block-sharing"
)

// defineCommonFlags defines the flags shared by every subcommand.
func defineCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringP(flagLogLevel, "L", "warn",
		"Set the log level")
	cmd.PersistentFlags().String(flagLogFile, "",
		"Set the log file path. If not set, logs will output to stdout")
	cmd.PersistentFlags().String(flagLogFormat, "text",
		"Set the log format")
	cmd.PersistentFlags().StringP(flagConfig, "c", "",
		"Set the path of a TOML generator config file")
	cmd.PersistentFlags().Bool(flagNoBlockSharing, false,
		"Give every non-ASCII block its own low-byte entry")
}

// initCommand sets up the global logger from the command line flags.
func initCommand(cmd *cobra.Command, _ []string) error {
	level, err := cmd.Flags().GetString(flagLogLevel)
	if err != nil {
		return errors.Trace(err)
	}
	file, err := cmd.Flags().GetString(flagLogFile)
	if err != nil {
		return errors.Trace(err)
	}
	format, err := cmd.Flags().GetString(flagLogFormat)
	if err != nil {
		return errors.Trace(err)
	}
	_, err = logutil.InitLogger(logutil.NewLogConfig(level, format, file))
	return errors.Trace(err)
}

// generatorConfig reads --config and applies the flag overrides on top.
func generatorConfig(cmd *cobra.Command) (lexgen.Config, error) {
	config := lexgen.DefaultConfig()
	path, err := cmd.Flags().GetString(flagConfig)
	if err != nil {
		return config, errors.Trace(err)
	}
	if path != "" {
		if config, err = lexgen.LoadConfig(path); err != nil {
			return config, errors.Annotatef(err, "load config %s", path)
		}
	}
	noSharing, err := cmd.Flags().GetBool(flagNoBlockSharing)
	if err != nil {
		return config, errors.Trace(err)
	}
	if noSharing {
		config.BlockSharing = false
	}
	return config, nil
}

// generate loads the grammar at path and builds its tables.
func generate(cmd *cobra.Command, path string) (*lexgen.Output, error) {
	config, err := generatorConfig(cmd)
	if err != nil {
		return nil, err
	}
	g, err := lexspec.LoadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	config.Logger = log.L()
	return lexgen.Generate(g, config)
}
