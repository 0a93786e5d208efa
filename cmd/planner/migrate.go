package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhicism/dailyplanner/internal/infrastructure/config"
	mongostore "github.com/abhicism/dailyplanner/internal/infrastructure/db/mongo"
	"github.com/abhicism/dailyplanner/internal/infrastructure/db/sqlstore"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status|version]",
		Short:     "Manage the database schema",
		Long:      "Run goose migrations for the sqlite and postgres drivers. For mongo, \"up\" creates the indexes.",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "status", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := "up"
			if len(args) == 1 {
				command = args[0]
			}

			ctx := cmd.Context()
			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}

			switch cfg.Storage.Driver {
			case config.DriverMongo:
				if command != "up" {
					return fmt.Errorf("migrate %s is not supported for the mongo driver", command)
				}
				client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
				if err != nil {
					return err
				}
				defer func() { _ = client.Disconnect(ctx) }()
				if err := mongostore.EnsureIndexes(ctx, db); err != nil {
					return err
				}
				log.Info().Msg("mongo indexes ensured")
				return nil

			default:
				driver, dsn := sqlstore.DriverSQLite, cfg.Storage.SQLitePath
				if cfg.Storage.Driver == config.DriverPostgres {
					driver, dsn = sqlstore.DriverPostgres, cfg.Storage.DatabaseURL
				}
				db, err := sqlstore.Open(ctx, sqlstore.Config{Driver: driver, DSN: dsn})
				if err != nil {
					return err
				}
				defer db.Close()
				return sqlstore.Migrate(ctx, db, command, log)
			}
		},
	}
}
