package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/ripdb/internal/config"
	"github.com/roach88/ripdb/internal/logging"
	"github.com/roach88/ripdb/internal/schema"
	"github.com/roach88/ripdb/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides the configured database path
	ConfigPath string // YAML config file
	SchemaPath string // CUE schema declaration file
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the ripdb CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ripdb",
		Short: "ripdb - album rip store",
		Long: `Inspect and edit the SQLite store shared by the album ripper processes.

Every command opens the store, creating the file and its tables and indexes
on first use. Writes are committed before the command exits, waiting out
other processes that hold the file lock.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (default from config, then "+config.DefaultDatabase+")")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to YAML config file")
	cmd.PersistentFlags().StringVar(&opts.SchemaPath, "schema", "", "path to CUE schema file replacing the built-in tables")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the OutputFormatter for a command.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// settings loads the config and applies the global flags over it.
func (o *RootOptions) settings() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err}
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.SchemaPath != "" {
		cfg.Schema = o.SchemaPath
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// logger builds the diagnostic logger on the command's stderr.
func logger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return logging.NewWriter(cmd.ErrOrStderr(), level)
}

// schemaSet loads the configured schema with the configured index mode.
func schemaSet(cfg config.Config) (*schema.Set, error) {
	set, err := LoadSchema(cfg.Schema)
	if err != nil {
		return nil, err
	}
	mode, err := schema.ParseIndexMode(cfg.IndexMode)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err}
	}
	set.Mode = mode
	return set, nil
}

// openStore loads settings and schema and opens the store. The caller closes
// the store.
func (o *RootOptions) openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := o.settings()
	if err != nil {
		return nil, err
	}
	set, err := schemaSet(cfg)
	if err != nil {
		return nil, err
	}

	log := logger(cmd, cfg)
	storeOpts, err := cfg.StoreOptions(set, log)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeConfig, Message: err.Error(), Err: err}
	}

	log.Debug("opening database", "path", cfg.Database, "schema", cfg.Schema)
	st, err := store.Open(cmd.Context(), cfg.Database, storeOpts...)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeOpenFailed, Message: fmt.Sprintf("opening %s: %v", cfg.Database, err), Err: err}
	}
	return st, nil
}

// withStore runs fn against an open store and closes it afterwards.
func (o *RootOptions) withStore(cmd *cobra.Command, fn func(*store.Store, *OutputFormatter) error) error {
	formatter := o.formatter(cmd)

	st, err := o.openStore(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer st.Close()

	formatter.VerboseLog("Opened %s (store %s)", st.Path(), st.ID())
	if err := fn(st, formatter); err != nil {
		return formatter.Fail(err)
	}
	return nil
}
