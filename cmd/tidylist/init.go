package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/klyr/tidylist/internal/config"
	"github.com/spf13/cobra"
)

const starterConfig = `configVersion: 1
# cacheDir: .tmp

# Settings for the fix command
fixer:
  paths:
    - folder_1/file.txt
    - folder_2
  excludes:
    - excluded_file.txt
    - path/to/source
  strategy: block
  blockSize: 300
  threshold: 2

# Settings for the build command
builder:
  outputDir: dist
  filterList:
    - filename: general_blocklist.txt
      removeDuplicates: true
      metadata:
        header: Adblock Plus 2.0
        title: General Blocklist
        version: true
        custom: |
          Description: Filter list that specifically removes adverts.
          Expires: 6 days (update frequency)
          Homepage: https://example.org/
          License: MIT
      source:
        - blocklists/general/local-rules.txt
        - https://cdn.example.org/blocklists/general.txt

# logging:
#   runLog: logs/tidylist.jsonl
# metrics:
#   textfile: metrics/tidylist.prom
`

func newInitCmd() *cobra.Command {
	var configPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter tidylist.yml",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(configPath); err == nil && !overwrite {
				return fmt.Errorf("%s already exists, use --force to overwrite", configPath)
			} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			if err := os.WriteFile(configPath, []byte(starterConfig), 0o644); err != nil {
				return err
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s created\n", configPath)
			return err
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultFileName, "Path to config file")
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing config file")

	return cmd
}
