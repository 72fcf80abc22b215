package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/autoagenda/internal/agenda"
	"github.com/dukerupert/autoagenda/internal/database"
	"github.com/dukerupert/autoagenda/internal/logging"
	"github.com/dukerupert/autoagenda/internal/recurrence"
	"github.com/dukerupert/autoagenda/internal/store"
)

func newAgendaCmd(configPath *string) *cobra.Command {
	var (
		ownerID int64
		from    string
		to      string
		ics     bool
	)

	cmd := &cobra.Command{
		Use:   "agenda",
		Short: "Print an owner's agenda for a window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

			db, err := database.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()

			eval := recurrence.NewRRuleEvaluator(cfg.MaxOccurrences, logger)
			m := agenda.New(store.NewTaskStore(db), store.NewEventStore(db), eval, cfg.Location(), logger)

			lo, hi, err := m.Bounds(from, to)
			if err != nil {
				return err
			}
			items, err := m.Materialize(ownerID, lo, hi)
			if err != nil {
				return err
			}

			if ics {
				return agenda.WriteICS(cmd.OutOrStdout(), items, m.Zone(), time.Now())
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		},
	}

	cmd.Flags().Int64Var(&ownerID, "owner", 0, "owner user id")
	cmd.Flags().StringVar(&from, "from", "", "window start (ISO 8601)")
	cmd.Flags().StringVar(&to, "to", "", "window end (ISO 8601)")
	cmd.Flags().BoolVar(&ics, "ics", false, "print iCalendar instead of JSON")
	_ = cmd.MarkFlagRequired("owner")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
