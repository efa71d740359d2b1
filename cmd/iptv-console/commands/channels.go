package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alorle/iptv-console/internal/channel"
)

func newChannelsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channels",
		Short: "Browse and edit discovered channels",
	}

	cmd.AddCommand(
		newChannelsListCommand(a),
		newChannelsGetCommand(a),
		newChannelsRenameCommand(a),
		newChannelsSetGroupCommand(a),
		newChannelsDeleteCommand(a),
	)

	return cmd
}

func newChannelsListCommand(a *app) *cobra.Command {
	var (
		group  string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List channels, optionally filtered by group or name",
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, err := a.channelService().List(cmd.Context(), channel.Filter{
				Group:  group,
				Search: search,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tGROUP\tVERIFIED\tURL")
			for _, ch := range channels {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", ch.ID, ch.Name, ch.Group, ch.Verified, ch.URL)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "only channels in this group")
	cmd.Flags().StringVar(&search, "search", "", "substring match on the channel name")
	return cmd
}

func newChannelsGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <channel-id>",
		Short: "Show one channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := a.channelService().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "id:       %s\n", ch.ID)
			fmt.Fprintf(out, "name:     %s\n", ch.Name)
			fmt.Fprintf(out, "url:      %s\n", ch.URL)
			fmt.Fprintf(out, "group:    %s\n", ch.Group)
			fmt.Fprintf(out, "verified: %v\n", ch.Verified)
			if ch.TvgID != "" {
				fmt.Fprintf(out, "tvg-id:   %s\n", ch.TvgID)
			}
			if ch.Codec != "" {
				fmt.Fprintf(out, "codec:    %s\n", ch.Codec)
			}
			if ch.Bitrate > 0 {
				fmt.Fprintf(out, "bitrate:  %d\n", ch.Bitrate)
			}
			return nil
		},
	}
}

func newChannelsRenameCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <channel-id> <name>",
		Short: "Change a channel's display name",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := a.channelService().Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "channel %s renamed to %q\n", ch.ID, args[1])
			return nil
		},
	}
}

func newChannelsSetGroupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-group <channel-id> <group>",
		Short: "Move a channel into a group; an empty group ungroups it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ch, err := a.channelService().SetGroup(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "channel %s moved to group %q\n", ch.ID, args[1])
			return nil
		},
	}
}

func newChannelsDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <channel-id>",
		Short: "Remove a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.channelService().Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "channel %s deleted\n", args[0])
			return nil
		},
	}
}
