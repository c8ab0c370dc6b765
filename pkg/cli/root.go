package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"streamverse-backend/pkg/client"
	"streamverse-backend/pkg/config"
	"streamverse-backend/pkg/database"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIBaseURL string
	LocalDB    string
	Offline    bool
	Format     string // "json" | "text"
	Timeout    time.Duration
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the streamverse CLI.
func NewRootCommand(cfg *config.Config) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "streamverse",
		Short: "Browse and manage the StreamVerse site directory",
		Long: `Browse and manage the StreamVerse site directory.

Every command talks to the API first and falls back to the local store
when the API cannot be reached.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.APIBaseURL, "api", cfg.APIBaseURL, "base URL of the StreamVerse API")
	cmd.PersistentFlags().StringVar(&opts.LocalDB, "local-db", cfg.LocalStorePath, "path of the local fallback store")
	cmd.PersistentFlags().BoolVar(&opts.Offline, "offline", false, "use the local store only")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", cfg.RequestTimeout, "per-request API timeout")

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openController builds the fallback chain (API, then local) and loads the
// current collection.
func openController(cmd *cobra.Command, opts *RootOptions) (*client.Controller, func(), error) {
	slots, err := database.OpenSQLiteSlots(opts.LocalDB)
	if err != nil {
		return nil, nil, err
	}
	local := database.NewLocalStorage(slots, database.DefaultLocalSlot)

	stores := []database.SiteStore{local}
	if !opts.Offline {
		stores = []database.SiteStore{client.NewAPIStore(opts.APIBaseURL, opts.Timeout), local}
	}
	chain := client.NewOrchestrator(stores...)
	closeFn := func() { chain.Close() }

	if err := chain.Initialize(cmd.Context()); err != nil {
		closeFn()
		return nil, nil, err
	}

	ctrl := client.NewController(chain)
	if err := ctrl.Refresh(cmd.Context()); err != nil {
		closeFn()
		return nil, nil, err
	}
	return ctrl, closeFn, nil
}
