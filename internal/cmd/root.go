package cmd

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/atikulmunna/sieve/internal/failure"
)

// Exit codes
const (
	ExitSuccess           = 0
	ExitInvalidSpec       = 1
	ExitSourceUnavailable = 2
	ExitWriteFailure      = 3
	ExitConflict          = 4
)

var (
	cfgFile string
	verbose bool
	quiet   bool

	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "sieve"})
)

// rootCmd is the base command when called without subcommands.
var rootCmd = &cobra.Command{
	Use:   "sieve",
	Short: "Sieve, a wordlist filter and splitter",
	Long: `Sieve filters large wordlists by length, character classes, entropy,
regular expressions and whitespace, optionally deduplicates, sorts or
shuffles the survivors, and writes them to stdout, a file, or a family of
split files sized by bytes or by percentage.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		switch {
		case verbose:
			logger.SetLevel(log.DebugLevel)
		case quiet:
			logger.SetLevel(log.ErrorLevel)
		}
	},
}

// Execute runs the root command and exits with a code derived from the
// failure kind.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch failure.KindOf(err) {
	case failure.KindSourceUnavailable:
		return ExitSourceUnavailable
	case failure.KindWriteFailure:
		return ExitWriteFailure
	case failure.KindConflict:
		return ExitConflict
	default:
		return ExitInvalidSpec
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: $HOME/.sieve.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors and skip the report")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".sieve")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("sieve")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		logger.Debug("using config file", "path", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		logger.Warn("cannot read config file", "path", cfgFile, "err", err)
	}
}
