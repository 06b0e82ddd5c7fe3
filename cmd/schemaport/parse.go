package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schemaport/internal/output"
	"schemaport/internal/parser"
)

func newParseCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "parse <schema.rb|schema.toml>",
		Short: "Parse a schema file and print the parsed model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, _, err := parser.ParseFile(args[0], a.logger)
			if err != nil {
				return err
			}

			formatter, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatSchema(db)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), formatted)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(output.FormatJSON), "Output format: json, summary, or sql")

	return cmd
}
