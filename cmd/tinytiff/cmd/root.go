package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

const AppName = "tinytiff"

// Execute runs the tinytiff command line.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand builds the tinytiff command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          AppName,
		Short:        AppName + " - inspect, check and create uncompressed TIFF files",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().String("log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(DefineInfoCommand())
	rootCmd.AddCommand(DefineCheckCommand())
	rootCmd.AddCommand(DefineDumpCommand())
	rootCmd.AddCommand(DefineImportCommand())

	return rootCmd
}

// newLogger builds a text logger on the command's stderr at the level
// given by --log-level.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	s, _ := cmd.Flags().GetString("log-level")

	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}

	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: level,
	})
	return slog.New(handler), nil
}
