package main

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/config"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/internal/repository/mongodb"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/surgery-scheduler/pkg/metrics"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the MongoDB indexes and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.Driver != config.DriverMongo {
			return errors.New("migrate requires STORE_DRIVER=mongo")
		}

		ctx := cmd.Context()
		client, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			database.Disconnect(disconnectCtx, client, log)
		}()

		m := metrics.NewCollector(cfg.App.Name, prometheus.NewRegistry())
		repo := mongodb.NewSurgeryRepository(client, cfg.Database.Name, cfg.Database.Collection,
			cfg.Database.QueryTimeout, m, log)
		return database.Migrate(ctx, log, repo)
	},
}
