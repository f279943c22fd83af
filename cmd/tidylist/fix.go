package main

import (
	"fmt"

	"github.com/klyr/tidylist/internal/cache"
	"github.com/klyr/tidylist/internal/config"
	"github.com/klyr/tidylist/internal/fixer"
	"github.com/spf13/cobra"
)

func newFixCmd() *cobra.Command {
	var configPath string
	var cachePath string
	var force bool
	var lint bool

	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Normalize and combine filter list files in place",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			paths, err := cfg.FixerPaths(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no filter lists found")
				return err
			}

			if cachePath == "" {
				cachePath = cfg.CachePath()
			}
			c, err := cache.Open(cachePath, cache.ScopeFixer)
			if err != nil {
				return err
			}

			env, err := openRunEnv(cfg)
			if err != nil {
				return err
			}
			defer env.Close(cmd.ErrOrStderr())

			f, err := fixer.New(fixer.Options{
				Cache:     c,
				Strategy:  cfg.Fixer.Strategy,
				BlockSize: cfg.Fixer.BlockSize,
				Threshold: cfg.Fixer.Threshold,
				Lint:      lint || cfg.Fixer.Lint,
				Logger:    env.logger,
				Metrics:   env.metrics,
				Out:       cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}
			defer f.Close()

			st, err := f.Run(cmd.Context(), paths, force)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), st.String())
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to config file")
	cmd.Flags().StringVar(&cachePath, "cache", "", "Cache file or directory (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Ignore the cache and process every file")
	cmd.Flags().BoolVar(&lint, "lint", false, "Report invalid selectors and domains after fixing")

	return cmd
}
