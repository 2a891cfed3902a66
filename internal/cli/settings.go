package cli

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

func (c *CLI) newSettingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective solver settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(c.settings)
			if err != nil {
				return errors.Wrap(err, "encoding settings")
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
