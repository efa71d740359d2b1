package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newGroupsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Organize channels into groups",
	}

	cmd.AddCommand(
		newGroupsListCommand(a),
		newGroupsRenameCommand(a),
		newGroupsMergeCommand(a),
		newGroupsDeleteCommand(a),
		newGroupsAssignCommand(a),
	)

	return cmd
}

func newGroupsListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			groups, err := a.groupService().List(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCHANNELS")
			for _, g := range groups {
				fmt.Fprintf(w, "%s\t%s\t%d\n", g.ID, g.Name, g.ChannelCount)
			}
			return w.Flush()
		},
	}
}

func newGroupsRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <group-id> <name>",
		Short: "Change a group's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.groupService().Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "group %s renamed to %q\n", g.ID, g.Name)
			return nil
		},
	}
}

func newGroupsMergeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <source-id> <target-id>",
		Short: "Move every channel of the source group into the target and delete the source",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := a.groupService().Merge(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "merged into %s (%d channels)\n", g.Name, g.ChannelCount)
			return nil
		},
	}
}

func newGroupsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <group-id>",
		Short: "Delete a group; its channels become ungrouped",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.groupService().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "group %s deleted\n", args[0])
			return nil
		},
	}
}

func newGroupsAssignCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <group-id> <channel-id>...",
		Short: "Move the given channels into a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.groupService().Assign(cmd.Context(), args[0], args[1:]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d channels assigned to group %s\n", len(args)-1, args[0])
			return nil
		},
	}
}
