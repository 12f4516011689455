// Package commands implements the CLI commands for the emmet build tool.
package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/emmet/internal/app"
	"go.trai.ch/emmet/internal/build"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/zerr"
)

// CLI represents the command line interface for emmet.
type CLI struct {
	app      *app.App
	rootCmd  *cobra.Command
	exitCode int

	buildFile    string
	findInParent bool
	settingsFile string
}

// New creates a new CLI instance with the given app.
func New(a *app.App) *CLI {
	rootCmd := &cobra.Command{
		Use:           "emmet",
		Short:         "A declarative build tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.buildFile, "buildfile", "f", "", "Use the given build script instead of looking one up")
	flags.BoolVar(&c.findInParent, "find", false, "Search parent directories for the build script")
	flags.StringVar(&c.settingsFile, "settings", "", "Use the given settings file instead of "+domain.SettingsFileName)

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newTargetsCmd())
	rootCmd.AddCommand(c.newFrameworksCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context and returns the
// process exit code.
func (c *CLI) Execute(ctx context.Context) int {
	c.rootCmd.SetContext(ctx)
	if err := c.rootCmd.Execute(); err != nil {
		return c.app.Fail(zerr.Wrap(domain.ErrUsage, err.Error()))
	}
	return c.exitCode
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput redirects cobra's own output such as help and version text.
func (c *CLI) SetOutput(stdout, stderr io.Writer) {
	c.rootCmd.SetOut(stdout)
	c.rootCmd.SetErr(stderr)
}

func (c *CLI) baseOptions() app.RunOptions {
	return app.RunOptions{
		BuildFile:    c.buildFile,
		FindInParent: c.findInParent,
		SettingsFile: c.settingsFile,
	}
}

// finish records the exit code for err. Errors are reported by the app, so
// cobra never sees them.
func (c *CLI) finish(err error) {
	c.exitCode = c.app.Fail(err)
}
