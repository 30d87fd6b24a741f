package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petasbytes/rpg-agent/internal/config"
	"github.com/petasbytes/rpg-agent/internal/telemetry"
)

type flags struct {
	configPath   string
	dataDir      string
	characterDir string
	sourceDir    string
	logLevel     string
}

func rootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:           "rpgchat",
		Short:         "Role-play with a hosted assistant that remembers you",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load()
			if err != nil {
				return err
			}
			return runChat(cmd.Context(), cfg, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "rpgchat.yaml", "config file (YAML); missing file uses defaults")
	pf.StringVar(&f.dataDir, "data-dir", "", "directory for memory artifacts and transcripts")
	pf.StringVar(&f.characterDir, "character-dir", "", "directory holding the character config.json")
	pf.StringVar(&f.sourceDir, "source-dir", "", "reference material directory")
	pf.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")

	cmd.AddCommand(memoryCmd(f), schemaCmd())
	return cmd
}

// load reads .env and the config file, applies flag overrides and installs
// the process logger.
func (f *flags) load() (*config.Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(f.configPath)
	if err != nil {
		return nil, err
	}
	cfg.Merge(&config.Config{
		DataDir:      f.dataDir,
		CharacterDir: f.characterDir,
		SourceDir:    f.sourceDir,
		LogLevel:     f.logLevel,
	})

	slog.SetDefault(telemetry.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat))
	return cfg, nil
}
