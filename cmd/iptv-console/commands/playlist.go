package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newPlaylistCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Import and export M3U playlists",
	}

	cmd.AddCommand(
		newPlaylistImportCommand(a),
		newPlaylistExportCommand(a),
		newPlaylistPreviewCommand(a),
	)

	return cmd
}

func newPlaylistImportCommand(a *app) *cobra.Command {
	var (
		name string
		url  string
	)

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Upload an M3U playlist from a file or URL",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (url == "") {
				return fmt.Errorf("provide either a file argument or --url")
			}

			service, err := a.playlistService()
			if err != nil {
				return err
			}

			if url != "" {
				result, err := service.ImportURL(cmd.Context(), name, url)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "playlist %s imported: %d channels, %d skipped\n",
					result.PlaylistID, result.Imported, result.Skipped)
				return nil
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open playlist file: %w", err)
			}
			defer file.Close()

			result, err := service.ImportReader(cmd.Context(), name, file)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "playlist %s imported: %d channels, %d skipped\n",
				result.PlaylistID, result.Imported, result.Skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name for the imported playlist")
	cmd.Flags().StringVar(&url, "url", "", "download the playlist from this URL instead of a file")
	return cmd
}

func newPlaylistExportCommand(a *app) *cobra.Command {
	var (
		group  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the backend's channel set as M3U",
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.playlistService()
			if err != nil {
				return err
			}

			dst := cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer file.Close()
				dst = file
			}

			return service.Export(cmd.Context(), group, dst)
		},
	}

	cmd.Flags().StringVar(&group, "group", "", "export only this group")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to a file instead of stdout")
	return cmd
}

func newPlaylistPreviewCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Parse a playlist locally and list its channels without uploading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := a.playlistService()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open playlist file: %w", err)
			}
			defer file.Close()

			channels, err := service.Preview(file)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(w, "#\tTITLE\tGROUP\tURI")
			for _, ch := range channels {
				group := ""
				if ch.TVGTags != nil {
					group = ch.TVGTags.GroupTitle
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", ch.SeqId, ch.Title, group, ch.URI)
			}
			return w.Flush()
		},
	}
}
