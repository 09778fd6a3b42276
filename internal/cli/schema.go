package cli

import (
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
)

// SchemaOptions holds flags for the schema command.
type SchemaOptions struct {
	*RootOptions
	Output string // output file path
}

// SchemaResult is the JSON payload of the schema command.
type SchemaResult struct {
	Statements []string `json:"statements"`
	Output     string   `json:"output,omitempty"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SchemaOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the compiled DDL",
		Long: `Compile the table and index declarations and print the statements that
opening a store executes. The database is not touched.

Example:
  ripdb schema
  ripdb schema --schema ./tables.cue --output schema.sql`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runSchema(opts *SchemaOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	cfg, err := opts.settings()
	if err != nil {
		return formatter.Fail(err)
	}
	set, err := schemaSet(cfg)
	if err != nil {
		return formatter.Fail(err)
	}

	script := set.Script()
	formatter.VerboseLog("Compiled %d table(s), %d index(es)", len(set.Tables()), len(set.Indexes()))

	if opts.Output != "" {
		if err := atomic.WriteFile(opts.Output, strings.NewReader(script)); err != nil {
			return formatter.Fail(&LoadError{
				Code:    ErrCodeWriteFailed,
				Message: fmt.Sprintf("writing output file: %v", err),
				Err:     err,
			})
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(SchemaResult{Statements: set.Statements(), Output: opts.Output})
	}
	if opts.Output != "" {
		fmt.Fprintf(formatter.Writer, "Wrote %d statement(s) to %s\n", len(set.Statements()), opts.Output)
		return nil
	}
	fmt.Fprint(formatter.Writer, script)
	return nil
}
