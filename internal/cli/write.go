package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ripdb/internal/store"
)

// WriteResult is the JSON payload of insert, update and delete.
type WriteResult struct {
	Table string `json:"table"`
	RowID int64  `json:"rowid,omitempty"`
}

// InsertOptions holds flags for the insert command.
type InsertOptions struct {
	*RootOptions
	Null string // value text that is stored as NULL
}

// NewInsertCommand creates the insert command.
func NewInsertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InsertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "insert <table> <value>...",
		Short: "Insert one row and commit",
		Long: `Insert one row, giving a value for every declared column in order, then
commit. The commit waits while other processes hold the database lock.

Example:
  ripdb insert sites example.com 1 ok
  ripdb insert metadata 3 title "Some Album"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				return runInsert(cmd, opts, st, f, args[0], args[1:])
			})
		},
	}
	cmd.Flags().StringVar(&opts.Null, "null", `\N`, "value text stored as NULL")

	return cmd
}

func runInsert(cmd *cobra.Command, opts *InsertOptions, st *store.Store, formatter *OutputFormatter, table string, values []string) error {
	args := stringArgs(values)
	for i, v := range values {
		if v == opts.Null {
			args[i] = nil
		}
	}

	id, err := st.Insert(cmd.Context(), table, args...)
	if err != nil {
		return err
	}
	if err := st.Commit(cmd.Context()); err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(WriteResult{Table: table, RowID: id})
	}
	fmt.Fprintf(formatter.Writer, "✓ Inserted row %d into %s\n", id, table)
	return nil
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "update <table> <assignments>",
		Short: "Update matching rows and commit",
		Long: `Apply the assignments to every row matching --where, then commit. The
params bind to placeholders in the assignments first, then in the predicate.

Example:
  ripdb update albums "ready = 1" --where "name = ?" --param "Some Album"
  ripdb update albums "path = ?" --where "rowid = ?" --param /srv/rips/a --param 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				return runUpdate(cmd, opts, st, f, args[0], args[1])
			})
		},
	}
	opts.addFlags(cmd)
	_ = cmd.MarkFlagRequired("where")

	return cmd
}

func runUpdate(cmd *cobra.Command, opts *FilterOptions, st *store.Store, formatter *OutputFormatter, table, assignments string) error {
	if err := st.Update(cmd.Context(), table, assignments, opts.Where, opts.params()...); err != nil {
		return err
	}
	if err := st.Commit(cmd.Context()); err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(WriteResult{Table: table})
	}
	fmt.Fprintf(formatter.Writer, "✓ Updated %s where %s\n", table, strings.TrimSpace(opts.Where))
	return nil
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete <table>",
		Short: "Delete matching rows and commit",
		Long: `Delete every row matching --where, then commit. --where is required.

Example:
  ripdb delete urls --where "albumid = ?" --param 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				return runDelete(cmd, opts, st, f, args[0])
			})
		},
	}
	opts.addFlags(cmd)
	_ = cmd.MarkFlagRequired("where")

	return cmd
}

func runDelete(cmd *cobra.Command, opts *FilterOptions, st *store.Store, formatter *OutputFormatter, table string) error {
	if err := st.Delete(cmd.Context(), table, opts.Where, opts.params()...); err != nil {
		return err
	}
	if err := st.Commit(cmd.Context()); err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(WriteResult{Table: table})
	}
	fmt.Fprintf(formatter.Writer, "✓ Deleted from %s where %s\n", table, strings.TrimSpace(opts.Where))
	return nil
}
