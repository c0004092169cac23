package cli

import (
	"fmt"

	"github.com/alexanderramin/mediantree/internal/cli/formatter"
	"github.com/alexanderramin/mediantree/internal/service"
	"github.com/spf13/cobra"
)

// Node arguments accept a full ID, a unique ID prefix, or a unique title.
func newTaskCmd(app *App) *cobra.Command {
	var project string

	cmd := &cobra.Command{
		Use:   "task",
		Short: "Edit a project's task tree",
	}

	cmd.PersistentFlags().StringVarP(&project, "project", "p", "", "Project name (default: most recently updated)")

	cmd.AddCommand(
		newTaskAddCmd(app, &project),
		newTaskHoursCmd(app, &project),
		newTaskLinkCmd(app, &project),
		newTaskUnlinkCmd(app, &project),
		newTaskRemoveCmd(app, &project),
	)

	return cmd
}

func newTaskAddCmd(app *App, project *string) *cobra.Command {
	var in service.AddTaskInput
	var hours string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task under the project root or a parent task",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if cmd.Flags().Changed("hours") {
				h, err := parseHours(hours)
				if err != nil {
					return err
				}
				in.Hours = &h
			}

			name, err := resolveProject(ctx, app, *project)
			if err != nil {
				return err
			}
			node, res, err := app.Tasks.Add(ctx, name, in)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Added task %s %s (%s)\n", formatter.TruncID(node.ID), formatter.Bold(node.Title), formatter.FormatHours(node.EffortHours))
			fmt.Fprint(out, formatter.FormatMutation(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Title, "title", "", "Task title")
	cmd.Flags().StringVar(&in.Parent, "parent", "", "Parent task (default: project root)")
	cmd.Flags().StringVar(&in.Description, "description", "", "Task description")
	cmd.Flags().StringVar(&hours, "hours", "", "Median effort in hours")
	_ = cmd.MarkFlagRequired("title")

	return cmd
}

func newTaskHoursCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "hours NODE HOURS",
		Short: "Set a leaf task's median effort",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := parseHours(args[1])
			if err != nil {
				return err
			}
			return runMutation(cmd, app, *project, func(name string) (*service.MutationResult, error) {
				return app.Tasks.SetHours(cmd.Context(), name, args[0], h)
			})
		},
	}
}

func newTaskLinkCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "link PARENT CHILD",
		Short: "Make CHILD a subtask of PARENT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, *project, func(name string) (*service.MutationResult, error) {
				return app.Tasks.Link(cmd.Context(), name, args[0], args[1])
			})
		},
	}
}

func newTaskUnlinkCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink PARENT CHILD",
		Short: "Detach CHILD from PARENT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, *project, func(name string) (*service.MutationResult, error) {
				return app.Tasks.Unlink(cmd.Context(), name, args[0], args[1])
			})
		},
	}
}

func newTaskRemoveCmd(app *App, project *string) *cobra.Command {
	return &cobra.Command{
		Use:     "remove NODE",
		Aliases: []string{"rm"},
		Short:   "Remove a task; its children become detached",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMutation(cmd, app, *project, func(name string) (*service.MutationResult, error) {
				return app.Tasks.Remove(cmd.Context(), name, args[0])
			})
		},
	}
}

func runMutation(cmd *cobra.Command, app *App, project string, fn func(name string) (*service.MutationResult, error)) error {
	name, err := resolveProject(cmd.Context(), app, project)
	if err != nil {
		return err
	}
	res, err := fn(name)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(res))
	return nil
}
