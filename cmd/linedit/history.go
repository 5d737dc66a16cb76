package main

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/linedit/application/service"
	"github.com/helixml/linedit/internal/log"
)

func historyCmd() *cobra.Command {
	var (
		envFile   string
		path      string
		sessionID string
		since     time.Duration
		limit     int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List confirmed changes from the edit journal",
		Args:  cobra.NoArgs,
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

			query := service.HistoryQuery{SessionID: sessionID, Limit: limit}
			if path != "" {
				if query.Path, err = filepath.Abs(path); err != nil {
					return fmt.Errorf("resolve path: %w", err)
				}
			}
			if since > 0 {
				query.Since = time.Now().Add(-since)
			}

			commits, err := client.History.List(cmd.Context(), query)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "ID\tCOMMITTED\tSESSION\tPATH\tLINES\t-/+")
			for _, c := range commits {
				_, _ = fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t-%d/+%d\n",
					c.ID(), c.CommittedAt().Format(time.RFC3339), c.SessionID(), c.Path(),
					c.Target(), c.LinesRemoved(), c.LinesAdded())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file")
	cmd.Flags().StringVar(&path, "path", "", "Only changes to this file")
	cmd.Flags().StringVar(&sessionID, "session", "", "Only changes from this session")
	cmd.Flags().DurationVar(&since, "since", 0, "Only changes newer than this, e.g. 24h")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries")

	return cmd
}
