package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/cruddy"
	"github.com/syssam/cruddy/codec"
	"github.com/syssam/cruddy/config"
	"github.com/syssam/cruddy/schema/entity"
	"github.com/syssam/cruddy/translate"
)

func newSchemaCmd() *cobra.Command {
	var (
		entityID string
		locale   string
		messages string
		format   string
	)
	schemaCmd := &cobra.Command{
		Use:   "schema <definitions.yaml>",
		Short: "Print the UI schema of entities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := codec.ByName(format)
			if err != nil {
				return err
			}
			opts := []config.Option{config.WithLogger(slog.Default())}
			if messages != "" {
				catalog, err := translate.LoadFS(cmd.Context(), os.DirFS(messages), ".", translate.WithLogger(slog.Default()))
				if err != nil {
					return err
				}
				opts = append(opts, config.WithTranslator(catalog.For(locale)))
			}
			cfg, err := config.LoadFile(args[0], opts...)
			if err != nil {
				return err
			}
			entities, err := selectEntities(cfg, entityID)
			if err != nil {
				return err
			}
			cache := cruddy.NewMemoryCache()
			out := cmd.OutOrStdout()
			for _, ent := range entities {
				b, err := codec.Schema(cmd.Context(), cache, ent, locale, c)
				if err != nil {
					return err
				}
				if _, err := out.Write(b); err != nil {
					return err
				}
				if c == codec.JSON {
					fmt.Fprintln(out)
				}
			}
			return nil
		},
	}
	schemaCmd.Flags().StringVar(&entityID, "entity", "", "Entity to print, all entities when empty")
	schemaCmd.Flags().StringVar(&locale, "locale", "en", "Preferred locale, an Accept-Language value is allowed")
	schemaCmd.Flags().StringVar(&messages, "messages", "", "Directory of translation files")
	schemaCmd.Flags().StringVar(&format, "format", "json", "Output format: json or msgpack")
	return schemaCmd
}

func selectEntities(cfg *config.Config, id string) ([]*entity.Entity, error) {
	if id == "" {
		return cfg.Entities(), nil
	}
	ent, ok := cfg.Entity(id)
	if !ok {
		return nil, fmt.Errorf("unknown entity %q, defined: %v", id, cfg.IDs())
	}
	return []*entity.Entity{ent}, nil
}
