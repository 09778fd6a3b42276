package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ripdb/internal/store"
)

// FilterOptions holds the predicate flags shared by the row commands.
// Params bind to the ? placeholders of Where in order.
type FilterOptions struct {
	*RootOptions
	Where  string
	Params []string
}

func (o *FilterOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Where, "where", "w", "", "SQL predicate (trusted text, use ? for values)")
	cmd.Flags().StringArrayVarP(&o.Params, "param", "p", nil, "value bound to the next ? placeholder (repeatable)")
}

func (o *FilterOptions) params() []any {
	return stringArgs(o.Params)
}

// stringArgs passes CLI text to SQLite as-is; column affinity converts
// numeric text in INTEGER columns.
func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// CountResult is the JSON payload of the count command.
type CountResult struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

// NewCountCommand creates the count command.
func NewCountCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FilterOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "count <table>",
		Short: "Count rows, optionally matching a predicate",
		Long: `Count the rows of a table, optionally restricted by --where.

Example:
  ripdb count albums
  ripdb count urls --where "albumid = ?" --param 3`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				return runCount(cmd, opts, st, f, args[0])
			})
		},
	}
	opts.addFlags(cmd)

	return cmd
}

func runCount(cmd *cobra.Command, opts *FilterOptions, st *store.Store, formatter *OutputFormatter, table string) error {
	n, err := st.Count(cmd.Context(), table, opts.Where, opts.params()...)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(CountResult{Table: table, Count: n})
	}
	fmt.Fprintln(formatter.Writer, n)
	return nil
}

// SelectOptions holds flags for the select command.
type SelectOptions struct {
	FilterOptions
	One bool
}

// NewSelectCommand creates the select command.
func NewSelectCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SelectOptions{FilterOptions: FilterOptions{RootOptions: rootOpts}}

	cmd := &cobra.Command{
		Use:   "select <projection> <table>",
		Short: "Print matching rows",
		Long: `Print the projection of every row matching --where. Rows are streamed from
the store; with --one only the first column of the first row is printed and a
missing row is an error.

Example:
  ripdb select "name, url" albums
  ripdb select "url" urls --where "albumid = ? order by i_index" --param 3
  ripdb select --one path albums --where "name = ?" --param "Some Album"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				if opts.One {
					return runSelectOne(cmd, opts, st, f, args[0], args[1])
				}
				return runSelect(cmd, opts, st, f, args[0], args[1])
			})
		},
	}
	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&opts.One, "one", false, "print only the first column of the first row")

	return cmd
}

func runSelect(cmd *cobra.Command, opts *SelectOptions, st *store.Store, formatter *OutputFormatter, projection, table string) error {
	rows, err := st.Select(cmd.Context(), projection, table, opts.Where, opts.params()...)
	if err != nil {
		return err
	}

	rs := RowSet{Columns: rows.Columns()}
	for values, err := range rows.All() {
		if err != nil {
			return err
		}
		rs.Rows = append(rs.Rows, values)
	}
	formatter.VerboseLog("%d row(s)", len(rs.Rows))

	return formatter.Rows(rs)
}

func runSelectOne(cmd *cobra.Command, opts *SelectOptions, st *store.Store, formatter *OutputFormatter, projection, table string) error {
	v, err := st.SelectOne(cmd.Context(), projection, table, opts.Where, opts.params()...)
	if err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(v)
	}
	fmt.Fprintln(formatter.Writer, textValue(v))
	return nil
}
