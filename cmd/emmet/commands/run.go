package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/emmet/internal/app"
	"go.trai.ch/emmet/internal/core/domain"
)

type runFlags struct {
	defines   []string
	framework string
	quiet     bool
	verbose   bool
	debug     bool
	logFile   string
	json      bool
	summary   bool
	traceFile string
	watch     bool
}

func (f *runFlags) level() domain.Level {
	switch {
	case f.debug:
		return domain.LevelDebug
	case f.verbose:
		return domain.LevelVerbose
	case f.quiet:
		return domain.LevelWarning
	default:
		return domain.LevelInfo
	}
}

func (c *CLI) newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [targets...]",
		Short: "Run the given targets, or the default target",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := app.ParseDefines(f.defines)
			if err != nil {
				c.finish(err)
				return nil
			}

			opts := c.baseOptions()
			opts.Targets = args
			opts.Properties = props
			opts.Framework = f.framework
			opts.Level = f.level()
			opts.JSON = f.json
			opts.LogFile = f.logFile
			opts.Summary = f.summary
			opts.TraceFile = f.traceFile
			opts.Watch = f.watch

			c.exitCode = c.app.RunBuild(cmd.Context(), opts)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&f.defines, "define", "D", nil, "Define a read-only property as name=value (repeatable)")
	flags.StringVar(&f.framework, "framework", "", "Select a framework from the settings file")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Only print warnings and errors")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Print verbose messages")
	flags.BoolVarP(&f.debug, "debug", "d", false, "Print debug messages and error details")
	flags.StringVar(&f.logFile, "logfile", "", "Write build output to the given file")
	flags.BoolVar(&f.json, "json", false, "Log in JSON format")
	flags.BoolVar(&f.summary, "summary", false, "Print a timing summary of targets and tasks")
	flags.StringVar(&f.traceFile, "trace-file", "", "Export the build trace as JSON to the given file")
	flags.BoolVarP(&f.watch, "watch", "w", false, "Rebuild when files below the project base directory change")
	cmd.MarkFlagsMutuallyExclusive("quiet", "verbose", "debug")

	return cmd
}
