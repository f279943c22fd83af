package main

import (
	"fmt"

	"github.com/klyr/tidylist/internal/builder"
	"github.com/klyr/tidylist/internal/cache"
	"github.com/klyr/tidylist/internal/config"
	"github.com/spf13/cobra"
)

func newBuildCmd() *cobra.Command {
	var configPath string
	var cachePath string
	var force bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Assemble filter lists from their configured sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			if cachePath == "" {
				cachePath = cfg.CachePath()
			}
			c, err := cache.Open(cachePath, cache.ScopeBuilder)
			if err != nil {
				return err
			}

			env, err := openRunEnv(cfg)
			if err != nil {
				return err
			}
			defer env.Close(cmd.ErrOrStderr())

			b, err := builder.New(builder.Options{
				Config:  cfg,
				Cache:   c,
				Logger:  env.logger,
				Metrics: env.metrics,
				Out:     cmd.OutOrStdout(),
			})
			if err != nil {
				return err
			}

			st, err := b.Run(cmd.Context(), force)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), st.String())
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to config file")
	cmd.Flags().StringVar(&cachePath, "cache", "", "Cache file or directory (default from config)")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild every list regardless of the cache")

	return cmd
}
