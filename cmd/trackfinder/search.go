package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search the catalog by artist, track name or genre",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
	cmd.Flags().StringP("field", "f", string(domain.SearchTrackArtist), "Field to search: track_artist, track_name or playlist_genre")
	cmd.Flags().IntP("number", "n", 20, "Maximum results")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	name, _ := cmd.Flags().GetString("field")
	field, err := domain.ParseSearchField(name)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("number")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	songs, err := a.svc.SearchCatalog(cmd.Context(), field, args[0], limit)
	if err != nil {
		return err
	}
	if wantJSON(cmd) {
		return outputJSON(cmd, songs)
	}
	for _, s := range songs {
		fmt.Fprintf(cmd.OutOrStdout(), "%s::%s\t[%s]\n", s.TrackArtist, s.TrackName, s.Genre)
	}
	return nil
}
