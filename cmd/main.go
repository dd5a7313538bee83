package main

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/httprunner/WorksheetAgent/internal/config"
	"github.com/httprunner/WorksheetAgent/internal/env"
)

var rootCmd = &cobra.Command{
	Use:   "hapworksheet",
	Short: "Add or update HAP worksheet records",
	Long: `hapworksheet forwards record data to the HAP (Mingdao) open worksheet API.
Each invocation validates its parameters, performs a single addRow or editRow
call and prints exactly one JSON message: {"result": ...} or {"error": ...}.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := setLogLevel(rootLogLevel); err != nil {
			return err
		}
		reportDotEnv()
		return nil
	},
}

var (
	rootLogLevel      string
	rootVerboseErrors bool
)

func init() {
	output := zerolog.ConsoleWriter{Out: os.Stderr}
	log.Logger = zerolog.New(output).With().Timestamp().Logger()
	_, _ = env.Ensure()

	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", config.String(config.EnvLogLevel, "info"), "Log level (debug, info, warn, error) overriding $LOG_LEVEL")
	rootCmd.PersistentFlags().BoolVar(&rootVerboseErrors, "verbose-errors", false, "Append stack traces to error messages (or set $HAP_VERBOSE_ERRORS=1)")
	rootCmd.AddCommand(
		newAddRowCmd(),
		newUpdateRowCmd(),
		newInvokeCmd(),
	)
}

func setLogLevel(raw string) error {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(raw)))
	if err != nil {
		return errors.Wrapf(err, "invalid --log-level %q", raw)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	return nil
}

func reportDotEnv() {
	path, err := env.Ensure()
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("load .env failed")
	case path != "":
		log.Debug().Str("dotenv", path).Msg("loaded .env")
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errOperationFailed) {
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("hapworksheet command failed")
	}
}
