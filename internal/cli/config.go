package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/ripdb/internal/store"
)

// ConfigEntry is the JSON payload of config get and set.
type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write persistent settings in the store",
		Long: `Read and write the key/value settings kept in the store's config table.

Example:
  ripdb config set last_run 2024-05-01
  ripdb config get last_run`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the value stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				return runConfigGet(cmd, st, f, args[0])
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store value under key, replacing any previous value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(st *store.Store, f *OutputFormatter) error {
				return runConfigSet(cmd, st, f, args[0], args[1])
			})
		},
	})

	return cmd
}

func runConfigGet(cmd *cobra.Command, st *store.Store, formatter *OutputFormatter, key string) error {
	value, ok, err := st.GetConfig(cmd.Context(), key)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("config key %q: %w", key, store.ErrNotFound)
	}

	if formatter.Format == "json" {
		return formatter.Success(ConfigEntry{Key: key, Value: value})
	}
	fmt.Fprintln(formatter.Writer, value)
	return nil
}

func runConfigSet(cmd *cobra.Command, st *store.Store, formatter *OutputFormatter, key, value string) error {
	if err := st.SetConfig(cmd.Context(), key, value); err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(ConfigEntry{Key: key, Value: value})
	}
	fmt.Fprintf(formatter.Writer, "✓ %s = %s\n", key, value)
	return nil
}
