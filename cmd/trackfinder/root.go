package main

import (
	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/trackfinder/internal/config"
	"github.com/ewilliams-labs/trackfinder/internal/logging"
)

func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trackfinder",
		Short:         "Find songs that sound like the ones you pick",
		Long:          `Build playlists from a song catalog by audio-feature similarity and keep them per user.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	rootCmd.AddCommand(
		NewServeCmd(),
		NewSimilarCmd(),
		NewSearchCmd(),
		NewPlaylistsCmd(),
		NewStatsCmd(),
	)
	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	cmd.PersistentFlags().String("catalog", "", "Catalog database (overrides catalog.path)")
	cmd.PersistentFlags().String("store-dir", "", "Playlist partition directory (overrides store.dir)")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
}

// loadConfig resolves the configuration for cmd and initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if v, _ := cmd.Flags().GetString("catalog"); v != "" {
		cfg.Catalog.Path = v
	}
	if v, _ := cmd.Flags().GetString("store-dir"); v != "" {
		cfg.Store.Dir = v
	}

	lc := cfg.Logging.ToLogging()
	lc.Output = cmd.ErrOrStderr()
	logging.Init(lc)
	return cfg, nil
}
