package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/autoagenda/internal/temporal"
)

func newResolveCmd(configPath *string) *cobra.Command {
	var (
		dateText string
		timeText string
		dayPart  string
		nowText  string
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve a date and time phrase against now",
		Example: `  autoagenda resolve --date "el lunes" --time 17
  autoagenda resolve --date mañana --part afternoon --now 2024-03-13T10:00:00+01:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			now := time.Now()
			if nowText != "" {
				now, err = time.Parse(time.RFC3339, nowText)
				if err != nil {
					return fmt.Errorf("--now must be RFC3339: %w", err)
				}
			}

			resolver := temporal.NewResolver(temporal.NewDateParser(cfg.Language), temporal.LanguageFor(cfg.Language))
			anchor := temporal.Anchor{Now: now, Zone: cfg.Location()}
			phrase := temporal.Phrase{DateText: dateText, TimeText: timeText, DayPart: temporal.DayPart(dayPart)}

			got, ok := resolver.Resolve(phrase, anchor)
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "unresolvable")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), got.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&dateText, "date", "", "date phrase, e.g. \"el lunes\"")
	cmd.Flags().StringVar(&timeText, "time", "", "time phrase, e.g. 17, 14.30, 9h")
	cmd.Flags().StringVar(&dayPart, "part", "", "day part: morning, noon, afternoon or night")
	cmd.Flags().StringVar(&nowText, "now", "", "anchor instant (RFC3339), defaults to the current time")
	return cmd
}
