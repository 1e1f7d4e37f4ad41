package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/syssam/cruddy/config"
	"github.com/syssam/cruddy/dialect"
	"github.com/syssam/cruddy/dialect/sql"
	"github.com/syssam/cruddy/repository"
)

func newSearchCmd() *cobra.Command {
	var (
		entityID string
		driver   string
		dsn      string
		filters  []string
		page     repository.Page
		count    bool
		slow     time.Duration
	)
	searchCmd := &cobra.Command{
		Use:   "search <definitions.yaml>",
		Short: "List the records of an entity as JSON lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if entityID == "" {
				return errors.New("--entity is required")
			}
			if !dialect.Supported(driver) {
				return errors.New("unsupported dialect " + driver)
			}
			data, err := parseFilters(filters)
			if err != nil {
				return err
			}
			cfg, err := config.LoadFile(args[0], config.WithLogger(slog.Default()))
			if err != nil {
				return err
			}
			ent, ok := cfg.Entity(entityID)
			if !ok {
				return errors.New("unknown entity " + entityID)
			}
			drv, err := sql.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer drv.Close()
			stats := sql.NewStatsDriver(drv, sql.WithSlowThreshold(slow), sql.WithSlowQueryLog(slog.Default()))
			repo := repository.New(stats, ent, repository.WithLogger(slog.Default()))

			enc := json.NewEncoder(cmd.OutOrStdout())
			if count {
				n, err := repo.Count(cmd.Context(), data)
				if err != nil {
					return err
				}
				return enc.Encode(map[string]int64{"count": n})
			}
			rows, err := repo.Search(cmd.Context(), data, page)
			if err != nil {
				return err
			}
			for _, row := range rows {
				if err := enc.Encode(row); err != nil {
					return err
				}
			}
			slog.Debug("search done", "entity", ent.ID(), "rows", len(rows), "stats", stats.EntityStats(ent.ID()).String())
			return nil
		},
	}
	searchCmd.Flags().StringVar(&entityID, "entity", "", "Entity to search")
	searchCmd.Flags().StringVar(&driver, "dialect", dialect.SQLite, "Database dialect: postgres, mysql or sqlite")
	searchCmd.Flags().StringVar(&dsn, "dsn", "", "Data source name")
	searchCmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as key=value, key.from=value or key.to=value")
	searchCmd.Flags().IntVar(&page.Limit, "limit", 50, "Maximum number of records")
	searchCmd.Flags().IntVar(&page.Offset, "offset", 0, "Number of records to skip")
	searchCmd.Flags().StringVar(&page.Sort, "sort", "", "Sort field, prefixed with - for descending order")
	searchCmd.Flags().BoolVar(&count, "count", false, "Print the number of matching records only")
	searchCmd.Flags().DurationVar(&slow, "slow", 200*time.Millisecond, "Slow query threshold")
	return searchCmd
}
