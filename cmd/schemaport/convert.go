package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"schemaport/internal/convert"
	"schemaport/internal/migration"
	"schemaport/internal/output"
	"schemaport/internal/parser"
)

func newConvertCmd(a *app) *cobra.Command {
	var outFile string
	var rollbackOutFile string

	cmd := &cobra.Command{
		Use:   "convert <schema.rb|schema.toml>",
		Short: "Convert a schema file into a PostgreSQL script",
		Long: `Convert reads a Rails schema.rb (or a TOML schema) and generates the
equivalent PostgreSQL DDL: extensions, enum types, tables, indexes, and
foreign keys inferred from <name>_id UUID columns.

Examples:
  schemaport convert db/schema.rb -o db/schema.sql
  schemaport convert db/schema.rb --format summary
  schemaport convert db/schema.rb -o out/schema.sql --rollback-output out/rollback.sql`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			path := args[0]

			db, format, err := parser.ParseFile(path, a.logger)
			if err != nil {
				return err
			}
			status(stderr, infoFmt("Parsed %s (%s): %d tables, %d enums", path, format, len(db.Tables), len(db.Enums)))

			res, err := convert.Database(db, convert.Options{
				Format:     format,
				Title:      a.cfg.Title,
				Pluralizer: a.cfg.Pluralizer,
				Exclusions: append([]string{}, a.cfg.FKExclusions...),
				Logger:     a.logger,
			})
			if err != nil {
				return err
			}
			for _, note := range res.Migration.Notes() {
				status(stderr, warnFmt("Note: %s", note))
			}

			formatter, err := output.NewFormatter(a.cfg.Format)
			if err != nil {
				return err
			}
			formatted, err := formatter.FormatMigration(res.Migration)
			if err != nil {
				return fmt.Errorf("failed to format output: %w", err)
			}

			if outFile == "" {
				if _, err := fmt.Fprint(cmd.OutOrStdout(), formatted); err != nil {
					return err
				}
			} else {
				if err := writeFile(outFile, formatted); err != nil {
					return err
				}
				status(stderr, successFmt("Output saved to %s", outFile))
			}

			if rollbackOutFile != "" {
				if err := writeRollbackFile(rollbackOutFile, res.Migration); err != nil {
					return fmt.Errorf("failed to write rollback output: %w", err)
				}
				status(stderr, successFmt("Rollback saved to %s", rollbackOutFile))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVarP(&rollbackOutFile, "rollback-output", "r", "", "Output file for rollback SQL")
	cmd.Flags().StringP("format", "f", "", "Output format: sql, json, or summary")
	cmd.Flags().String("title", "", "Title written in the script header")
	cmd.Flags().String("pluralizer", "", "Foreign-key pluralizer: naive or inflect")
	cmd.Flags().StringSlice("exclude", nil, "Referenced names never inferred as foreign keys")

	return cmd
}

func writeRollbackFile(path string, m *migration.Migration) (err error) {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return output.WriteRollback(m, f)
}
