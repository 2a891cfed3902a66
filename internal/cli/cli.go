// Package cli implements the gokanfd command-line interface.
//
// # Commands
//
//   - demo: walk through propagation, backtracking and reification on a
//     small model
//   - queens: solve the N-queens puzzle, sequentially or with a portfolio
//   - settings: print the effective solver settings as YAML
//
// Every command accepts --config to load solver settings from a TOML or YAML
// file and --verbose (-v) for debug logging of the search.
package cli

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gitrdm/gokanfd/pkg/solver"
)

var (
	version string
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds the state shared by the commands.
type CLI struct {
	out      io.Writer
	logger   *logrus.Logger
	settings solver.Settings

	configPath string
	verbose    bool
}

// New creates a CLI printing results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{
		out:      out,
		logger:   newLogger(errOut, logrus.InfoLevel),
		settings: solver.DefaultSettings(),
	}
}

// RootCommand builds the command tree.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "gokanfd",
		Short:         "gokanfd is a finite-domain constraint propagation engine",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.logger.SetLevel(logrus.DebugLevel)
			}
			if c.configPath == "" {
				return nil
			}
			s, err := solver.LoadSettings(c.configPath)
			if err != nil {
				return err
			}
			c.settings = s
			c.logger.WithField("path", c.configPath).Debug("settings loaded")
			return nil
		},
	}
	root.SetOut(c.out)
	root.SetVersionTemplate("gokanfd " + version + "\ncommit: " + commit + "\nbuilt: " + date + "\n")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "solver settings file (.toml, .yaml)")

	root.AddCommand(c.newDemoCmd())
	root.AddCommand(c.newQueensCmd())
	root.AddCommand(c.newSettingsCmd())
	return root
}

func (c *CLI) newModel(name string) (*solver.Model, error) {
	m, err := solver.NewModelWithSettings(name, c.settings)
	if err != nil {
		return nil, err
	}
	m.SetLogger(c.logger)
	return m, nil
}
