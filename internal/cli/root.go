package cli

import (
	"github.com/alexanderramin/mediantree/internal/config"
	"github.com/alexanderramin/mediantree/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects  service.ProjectService
	Tasks     service.TaskService
	Estimates service.EstimateService
	Import    service.ImportService

	// Config is the loaded configuration; nil means defaults.
	Config *config.Config

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool

	// Setup wires the services once flags are parsed. It returns a cleanup
	// run after the command finishes. Tests leave it nil and set services
	// directly.
	Setup func(app *App, flags *pflag.FlagSet) (func(), error)

	cleanup func()
}

// NewRootCmd creates the top-level "mediantree" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "mediantree",
		Short:         "Task tree effort roll-up with lognormal completion estimates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Setup == nil {
				return nil
			}
			cleanup, err := app.Setup(app, cmd.Flags())
			if err != nil {
				return err
			}
			app.cleanup = cleanup
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.cleanup != nil {
				app.cleanup()
				app.cleanup = nil
			}
		},
	}

	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newProjectCmd(app),
		newTaskCmd(app),
		newEstimateCmd(app),
		newImportCmd(app),
		newServeCmd(app),
		newBrowseCmd(app),
	)

	return root
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) config() *config.Config {
	if a.Config == nil {
		return config.Default()
	}
	return a.Config
}
