package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/domain"
)

// seedSeparator splits a --seed value into artist and track name.
const seedSeparator = "::"

func NewSimilarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "similar",
		Short: "Find songs similar to a set of seeds",
		Long: `Run a similarity search seeded by at least five catalog songs.

Each seed is given as "artist::track name".`,
		Example: `  trackfinder similar -k 20 \
    --seed "Coldplay::Yellow" --seed "Coldplay::Clocks" \
    --seed "Muse::Uprising" --seed "Keane::Somewhere Only We Know" \
    --seed "Snow Patrol::Chasing Cars"`,
		Args: cobra.NoArgs,
		RunE: runSimilar,
	}

	cmd.Flags().StringArray("seed", nil, `Seed song as "artist::track" (repeatable)`)
	cmd.Flags().IntP("neighbors", "k", 0, "Neighbors per seed (default search.default_neighbors)")
	cmd.Flags().Bool("exclude-seeds", false, "Drop the seed songs from the result")
	cmd.Flags().IntP("limit", "n", 0, "Maximum songs to print (0 prints all)")
	cmd.Flags().String("save", "", "Save the result as a playlist with this name")
	cmd.Flags().String("user", "", "User id owning the saved playlist")
	return cmd
}

func runSimilar(cmd *cobra.Command, _ []string) error {
	rawSeeds, _ := cmd.Flags().GetStringArray("seed")
	keys := make([]domain.SongKey, 0, len(rawSeeds))
	for _, raw := range rawSeeds {
		key, err := parseSeed(raw)
		if err != nil {
			return err
		}
		keys = append(keys, key)
	}
	saveName, _ := cmd.Flags().GetString("save")
	user, _ := cmd.Flags().GetString("user")
	if saveName != "" && user == "" {
		return fmt.Errorf("--save requires --user")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("exclude-seeds") {
		cfg.Search.ExcludeSeeds, _ = cmd.Flags().GetBool("exclude-seeds")
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	k, _ := cmd.Flags().GetInt("neighbors")
	if !cmd.Flags().Changed("neighbors") {
		k = cfg.Search.DefaultNeighbors
	}
	svc := a.svc

	s := domain.NewSession("cli", user, time.Now())
	for _, key := range keys {
		if _, err := svc.AddSong(s, key); err != nil {
			return err
		}
	}

	res, err := svc.FindSimilar(cmd.Context(), s, k)
	if err != nil {
		return err
	}

	var handle *domain.PlaylistHandle
	if saveName != "" {
		h, err := svc.SavePlaylist(cmd.Context(), s, saveName)
		if err != nil {
			return err
		}
		handle = &h
	}

	limit, _ := cmd.Flags().GetInt("limit")
	shown := res.Truncate(limit)
	if wantJSON(cmd) {
		return outputJSON(cmd, map[string]any{
			"result":   shown,
			"total":    res.Len(),
			"playlist": handle,
		})
	}

	out := cmd.OutOrStdout()
	for _, m := range shown.Matches {
		fmt.Fprintf(out, "%8.4f  %s - %s\n", m.Distance, m.Song.TrackArtist, m.Song.TrackName)
	}
	fmt.Fprintf(out, "%d songs from %d seeds (k=%d)\n", res.Len(), res.Seeds, res.Neighbors)
	if handle != nil {
		fmt.Fprintf(out, "saved %d rows as %q (%s)\n", handle.Rows, handle.Name, handle.ID)
	}
	return nil
}

func parseSeed(raw string) (domain.SongKey, error) {
	artist, track, ok := strings.Cut(raw, seedSeparator)
	artist, track = strings.TrimSpace(artist), strings.TrimSpace(track)
	if !ok || artist == "" || track == "" {
		return domain.SongKey{}, fmt.Errorf("invalid seed %q: want \"artist%strack\"", raw, seedSeparator)
	}
	return domain.SongKey{TrackName: track, TrackArtist: artist}, nil
}
