package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/core/stats"
)

func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize a user's saved songs",
		Long:  `Print the top artists, the genre counts and the distribution of one audio feature.`,
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	cmd.Flags().String("user", "", "User id")
	cmd.Flags().String("feature", stats.DefaultFeature, "Feature to bin")
	cmd.Flags().Int("bins", stats.DefaultBins, "Histogram bins")
	cmd.Flags().IntP("number", "n", stats.DefaultTopArtists, "Top artists to show")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	user, _ := cmd.Flags().GetString("user")
	feature, _ := cmd.Flags().GetString("feature")
	bins, _ := cmd.Flags().GetInt("bins")
	n, _ := cmd.Flags().GetInt("number")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	artists, err := a.svc.TopArtists(ctx, user, n)
	if err != nil {
		return err
	}
	genres, err := a.svc.GenreCounts(ctx, user)
	if err != nil {
		return err
	}
	dist, err := a.svc.FeatureDistribution(ctx, user, feature, bins)
	if err != nil {
		return err
	}

	if wantJSON(cmd) {
		return outputJSON(cmd, map[string]any{
			"artists":      artists,
			"genres":       genres,
			"distribution": dist,
		})
	}

	out := cmd.OutOrStdout()
	if artists.NoData {
		fmt.Fprintf(out, "no saved songs for %s\n", user)
		return nil
	}
	fmt.Fprintln(out, "Top artists:")
	for _, c := range artists.Counts {
		fmt.Fprintf(out, "  %4d  %s\n", c.Count, c.Label)
	}
	fmt.Fprintln(out, "Genres:")
	for _, c := range genres.Counts {
		fmt.Fprintf(out, "  %4d  %s\n", c.Count, c.Label)
	}
	fmt.Fprintf(out, "%s (n=%d, mean=%.3f):\n", dist.Feature, dist.Count, dist.Mean)
	for _, b := range dist.Bins {
		fmt.Fprintf(out, "  [%8.3f, %8.3f)  %-4d %s\n", b.Lower, b.Upper, b.Count, strings.Repeat("#", b.Count))
	}
	return nil
}
