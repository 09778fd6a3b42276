package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ripdb/internal/store"
)

// InitResult reports the structures of an opened store.
type InitResult struct {
	Path    string   `json:"path"`
	ID      string   `json:"id"`
	Tables  []string `json:"tables"`
	Indexes []string `json:"indexes"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the store and its tables and indexes",
		Long: `Open the store, creating the database file and every declared table and
index that does not exist yet. Running init on an existing store is a no-op.

Example:
  ripdb init --db ./database.db
  ripdb init --db ./custom.db --schema ./tables.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, runInit)
		},
	}
}

func runInit(st *store.Store, formatter *OutputFormatter) error {
	set := st.Schema()
	result := InitResult{
		Path:    st.Path(),
		ID:      st.ID(),
		Tables:  []string{},
		Indexes: []string{},
	}
	for _, t := range set.Tables() {
		result.Tables = append(result.Tables, t.Name)
	}
	for _, ix := range set.Indexes() {
		result.Indexes = append(result.Indexes, ix.Name)
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ Initialized %s\n\n", result.Path)
	fmt.Fprintf(formatter.Writer, "Tables (%d):\n", len(result.Tables))
	for _, t := range set.Tables() {
		fmt.Fprintf(formatter.Writer, "  %s: %d column(s), %d key(s)\n", t.Name, len(t.Columns), len(t.Keys))
	}
	fmt.Fprintf(formatter.Writer, "\nIndexes (%d):\n", len(result.Indexes))
	for _, ix := range set.Indexes() {
		fmt.Fprintf(formatter.Writer, "  %s on %s\n", ix.Name, ix.Table)
	}
	return nil
}
