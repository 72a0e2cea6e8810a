// Package cli implements the wirectl command framework.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fatih/color"

	"httpbridge-core/internal/core/log"
	"httpbridge-core/internal/version"
)

var (
	logLevel  string
	logFormat string
)

var rootCmd = &cobra.Command{
	Use:   "wirectl",
	Short: "wirectl - inspect and produce marshalled HTTP request blobs",
	Long: `wirectl works with the flat binary encoding of HTTP requests that is
exchanged across the runtime boundary.

Examples:
  wirectl decode request.bin          Decode a marshalled request blob
  wirectl decode --headers hdrs.bin   Decode a header-only blob
  wirectl encode request.yaml         Encode a yaml description to a blob
  wirectl serve --listen :8089        Run the HTTP inspection service`,
	Version:       version.GetVersion(),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !isatty.IsTerminal(os.Stdout.Fd()) {
			color.NoColor = true
		}
		return log.Configure(log.Config{
			Level:  logLevel,
			Format: logFormat,
		})
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug/info/warn/error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text/json")

	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// readInput loads the blob or spec from the single path argument, or
// stdin when no argument is given.
func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(args[0])
}
