package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fintrack/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":8080")
//	-d string     PostgreSQL DSN
//	-r string     recommendation engine base URL
//	-t duration   recommendation engine timeout (e.g., "30s")
//	-b int        bcrypt cost
//	-l string     log level
//
// args is filtered with flagx.FilterArgs first, so flags owned by other
// layers (such as -c) do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-r", "-t", "-b", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.RecommenderURL, "r", config.RecommenderURL, "recommendation engine URL")
	fs.DurationVar(&config.RecommenderTimeout, "t", config.RecommenderTimeout, "recommendation engine timeout")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" && config.RecommenderTimeout <= 0 {
			err = fmt.Errorf("-t: %w", ErrNonPositiveTimeout)
		}
	})
	return err
}
