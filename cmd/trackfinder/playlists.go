package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func NewPlaylistsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "playlists",
		Short: "List the saved songs of a user",
		Args:  cobra.NoArgs,
		RunE:  runPlaylists,
	}
	cmd.Flags().String("user", "", "User id")
	cmd.Flags().String("sort", "", "Sort column (default playlist_subgenre)")
	cmd.Flags().Bool("desc", false, "Sort descending")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runPlaylists(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	col, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	rows, err := a.svc.Overview(cmd.Context(), user, domain.OverviewSort{Column: domain.Column(col), Descending: desc})
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return outputJSON(cmd, rows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYLIST\tTRACK\tARTIST\tALBUM\tGENRE\tSUBGENRE")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.PlaylistName, r.TrackName, r.TrackArtist, r.TrackAlbumName, r.PlaylistGenre, r.PlaylistSubgenre)
	}
	return tw.Flush()
}
