package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	verbose   bool
	logFormat string
)

// errProblems is returned by lint when the report exceeds the configured
// threshold or a file failed. It has already been reported.
var errProblems = errors.New("problems found")

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "doclint",
	Short: "doclint - check JSDoc comments against the code they document",
	Long: `doclint validates JSDoc and Closure-style documentation comments in
JavaScript and TypeScript sources: missing or misplaced @return annotations,
constructor declarations, undocumented parameters, malformed tags and type
nullability.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
//
// Exit status: 0 clean, 1 problems found, 2 usage or configuration error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errProblems) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(2)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .doclint/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug) logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format (text|json)")
}

// newLogger builds the command logger writing to w.
func newLogger(w io.Writer, verbose bool, format string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	switch format {
	case "", "text":
		log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: !verbose})
	case "json":
		log.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log format %q (valid: text, json)", format)
	}
	return log, nil
}
