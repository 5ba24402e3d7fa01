package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"subdl/internal/cache"
	"subdl/internal/client"
	"subdl/internal/config"
	"subdl/internal/language"
	"subdl/internal/services"
)

func newRootCommand() *cobra.Command {
	var (
		usernameFlag string
		passwordFlag string
		languageFlag string
		configFlag   string
	)

	long := `subdl fingerprints each video by content, looks the fingerprints up in the
OpenSubtitles catalog in a single search, and saves the highest-rated subtitle
next to each video as <name>.<language>.<format>.`

	rootCmd := &cobra.Command{
		Use:           "subdl FILE...",
		Short:         "Download subtitles for video files from the OpenSubtitles catalog",
		Long:          long,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, usernameFlag, passwordFlag, languageFlag, configFlag)
		},
	}

	rootCmd.Flags().StringVarP(&usernameFlag, "username", "u", "", "Catalog username (empty = anonymous)")
	rootCmd.Flags().StringVarP(&passwordFlag, "password", "p", "", "Catalog password (prompted when a username is given without one)")
	rootCmd.Flags().StringVarP(&languageFlag, "language", "l", "", "Subtitle language (e.g. en, eng, de)")
	rootCmd.Flags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")

	return rootCmd
}

func run(cmd *cobra.Command, paths []string, username, password, languageInput, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	config.SetLogLevel(cfg.LogLevel)
	logger := config.GetLogger()

	if languageInput == "" {
		languageInput = cfg.Language
	}
	languageCode, err := language.Normalize(languageInput)
	if err != nil {
		return err
	}

	if username != "" && password == "" {
		password, err = promptPassword(username)
		if err != nil {
			return err
		}
	}

	fingerprints, err := newFingerprintCache(cfg)
	if err != nil {
		return err
	}
	defer fingerprints.Close()

	logger.Debug().Str("language", languageCode).Int("videos", len(paths)).Msg("Starting batch")

	pipe := services.NewPipeline(client.New(cfg), fingerprints, services.Options{
		Username: username,
		Password: password,
		Language: languageCode,
	})

	report, err := pipe.Run(cmd.Context(), paths)
	fmt.Fprintf(cmd.OutOrStdout(), "saved %d of %d subtitle(s)\n", report.Saved, report.Considered)
	return err
}

func newFingerprintCache(cfg *config.Config) (cache.Cache, error) {
	ttl := time.Hour
	if cfg.Cache.TTL != "" {
		if parsed, err := time.ParseDuration(cfg.Cache.TTL); err == nil {
			ttl = parsed
		} else {
			log := config.GetLogger()
			log.Warn().Err(err).Str("ttl", cfg.Cache.TTL).Msg("Invalid cache TTL, using default 1h")
		}
	}
	size := cfg.Cache.Size
	if size <= 0 {
		size = 128
	}
	return cache.New("memory", cache.ProviderConfig{Size: size, TTL: ttl})
}

// promptPassword reads a password from the terminal without echo. A username
// without a password on a non-interactive stdin is an error rather than a
// silent anonymous login.
func promptPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("a username was given without a password and stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "Password for %s: ", username)
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(secret), nil
}
