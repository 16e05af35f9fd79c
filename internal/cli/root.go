package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/roach88/storefront/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	ConfigDir string

	// viper carries defaults, environment and the bound flags below.
	viper *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the storefront CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{viper: config.New()}

	cmd := &cobra.Command{
		Use:   "storefront",
		Short: "Storefront - supermarket data layer",
		Long: `Drive the supermarket storefront's local data layer: the seeded
catalogue, the user's cart and wishlist, and scripted scenarios.

Settings resolve from defaults, storefront.yaml in --config,
STOREFRONT_* environment variables and flags, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			configureLogging(cmd, opts.Verbose)
			return nil
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVar(&opts.ConfigDir, "config", "", "directory holding storefront.yaml")
	flags.String("data-dir", ".", "directory holding the database")
	flags.String("db-name", "supermarket_app_db", "database file name")
	flags.Int64("user-id", 1, "user whose cart and wishlist are used")

	_ = opts.viper.BindPFlag(config.KeyDataDir, flags.Lookup("data-dir"))
	_ = opts.viper.BindPFlag(config.KeyDBName, flags.Lookup("db-name"))
	_ = opts.viper.BindPFlag(config.KeyUserID, flags.Lookup("user-id"))

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewCategoriesCommand(opts))
	cmd.AddCommand(NewProductsCommand(opts))
	cmd.AddCommand(NewCartCommand(opts))
	cmd.AddCommand(NewWishlistCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// configureLogging installs a text handler on the command's stderr.
func configureLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// formatter returns the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// loadConfig resolves settings. Subcommands built without a root command get a
// fresh viper instance.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	if o.viper == nil {
		o.viper = config.New()
	}
	cfg, err := config.Load(o.viper, o.ConfigDir)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	return cfg, nil
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
