package commands

import "github.com/spf13/cobra"

func (c *CLI) newTargetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "targets",
		Short: "Show the targets of the build script",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c.finish(c.app.ShowTargets(c.baseOptions()))
			return nil
		},
	}
}

func (c *CLI) newFrameworksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "frameworks",
		Short: "List the frameworks of the settings file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			c.finish(c.app.ShowFrameworks(c.baseOptions()))
			return nil
		},
	}
}
