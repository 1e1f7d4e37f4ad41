// Command cruddy inspects entity definitions and queries their records.
//
//	cruddy schema users.yaml --entity users --locale fr --messages i18n
//	cruddy search users.yaml --entity users --dialect sqlite --dsn app.db --filter name=ann
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := execRootCmd(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

func execRootCmd(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var logLevel string
	rootCmd := &cobra.Command{
		Use:           "cruddy",
		Short:         "Admin panel schema utility",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid log level %q", logLevel)
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.AddCommand(newSchemaCmd(), newSearchCmd())
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}

// parseFilters turns "key=value" pairs into filter data. Keys ending in
// ".from" or ".to" build a range: "age.from=18" becomes
// {"age": {"from": "18"}}. A repeated key collects its values:
// "role=a" and "role=b" become {"role": ["a", "b"]}.
func parseFilters(pairs []string) (map[string]any, error) {
	filters := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, expected key=value", pair)
		}
		id, bound, isRange := strings.Cut(key, ".")
		if isRange && bound != "from" && bound != "to" {
			return nil, fmt.Errorf("invalid filter %q, expected %s.from or %s.to", pair, id, id)
		}
		prev, seen := filters[id]
		r, wasRange := prev.(map[string]any)
		if seen && wasRange != isRange {
			return nil, fmt.Errorf("invalid filter %q, %s is both a value and a range", pair, id)
		}
		switch {
		case isRange && r == nil:
			filters[id] = map[string]any{bound: value}
		case isRange:
			r[bound] = value
		case !seen:
			filters[id] = value
		default:
			switch prev := prev.(type) {
			case []any:
				filters[id] = append(prev, value)
			default:
				filters[id] = []any{prev, value}
			}
		}
	}
	return filters, nil
}
