package main

import (
	"fmt"
	"io"
	"os"

	"github.com/pingcap/errors"
	"github.com/spf13/cobra"

	"github.com/coregx/lexgen/scanner"
)

func newScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan <grammar.toml> <input>",
		Short: "tokenize a file with the tables of a grammar",
		Long:  "Tokenize input with the generated tables and print one token per line. Use - to read stdin.",
		Args:  cobra.ExactArgs(2),
		RunE:  runScan,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	out, err := generate(cmd, args[0])
	if err != nil {
		return err
	}

	var src []byte
	if args[1] == "-" {
		src, err = io.ReadAll(cmd.InOrStdin())
	} else {
		src, err = os.ReadFile(args[1])
	}
	if err != nil {
		return errors.Annotatef(err, "read input %s", args[1])
	}

	s := scanner.New(out, string(src))
	w := cmd.OutOrStdout()
	for {
		tok, err := s.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Trace(err)
		}
		if _, err := fmt.Fprintf(w, "%d:%d\t%s\t%q\n", tok.Line, tok.Column, tok.Name, tok.Text); err != nil {
			return errors.Trace(err)
		}
	}
}
