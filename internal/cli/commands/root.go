package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/velocity/internal/cli/ui"
	"github.com/crimson-sun/velocity/internal/config"
	"github.com/crimson-sun/velocity/internal/logging"
)

const version = "0.1.0"

// state is shared by the subcommands of one invocation.
type state struct {
	cfg      *config.Config
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	st := &state{}

	rootCmd := &cobra.Command{
		Use:     "velocity",
		Short:   "Board velocity counter",
		Version: version,
		Long: `Counts cards created, removed and finished on a board, per day, as
running totals. The result is a table of date, create, remove and finish
columns, suitable for a spreadsheet or a chart.

Credentials and board settings come from keys.sh ("export KEY=value" lines),
velocity.yaml, or the environment.`,
		Example: `  # Count the configured board and print a TSV table
  $ velocity count

  # Count from an exported file and write a CSV next to it
  $ velocity count --source file --input actions.json --output file --format csv

  # Find the exact board and list names
  $ velocity boards
  $ velocity lists`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Read()
			if err != nil {
				return err
			}
			st.cfg = cfg
			return nil
		},
	}
	rootCmd.SetVersionTemplate(fmt.Sprintf("velocity version %s\n", version))
	rootCmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", "log level: debug, info, warn, error")

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(newCountCmd(st))
	rootCmd.AddCommand(newBoardsCmd(st))
	rootCmd.AddCommand(newListsCmd(st))
	rootCmd.AddCommand(newRulesCmd(st))

	// Set custom template with bold uppercase headers
	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
	return rootCmd
}

// Execute runs the command tree under ctx.
func Execute(ctx context.Context) error {
	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		ui.PrintError("%v", err)
	}
	return err
}

// initLogging installs the default logger once configuration and flag
// overrides are final.
func (st *state) initLogging() {
	level := st.cfg.Log.Level
	if st.logLevel != "" {
		level = st.logLevel
	}
	logging.Init(st.cfg.Log.Format, slices.Contains(st.cfg.Outputs(), "stdout"), logging.ParseLevel(level))
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}
