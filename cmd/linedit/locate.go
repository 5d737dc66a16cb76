package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/helixml/linedit/internal/log"
)

func locateCmd() *cobra.Command {
	var (
		envFile string
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "locate <file> <symbol>",
		Short: "Print the line range of a function or class",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(envFile)
			if err != nil {
				return err
			}
			slogger := log.NewLogger(cfg).Slog()

			client, err := newClient(cfg, slogger)
			if err != nil {
				return err
			}
			defer closeClient(client, slogger)

			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			loc, err := client.Symbols.Locate(cmd.Context(), path, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"path":        loc.Path,
					"name":        loc.Name,
					"start":       loc.Range.Start(),
					"end":         loc.Range.End(),
					"strategy":    loc.Range.Source(),
					"fingerprint": loc.Fingerprint.String(),
				})
			}
			_, err = fmt.Fprintf(out, "%s:%d-%d %s\n", loc.Path, loc.Range.Start(), loc.Range.End(), loc.Fingerprint)
			return err
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the location as JSON")

	return cmd
}
