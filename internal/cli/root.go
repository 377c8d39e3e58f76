package cli

import (
	"context"
	"fmt"

	"voxarena/config"
	"voxarena/db"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:           "voxctl",
	Short:         "Operate a VoxArena CMS database",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "./config/config.yml", "Path to config file")
}

func Execute() error {
	return rootCmd.Execute()
}

// env is what every subcommand needs: config, logger and an open database.
type env struct {
	cfg      *config.Config
	log      *logrus.Logger
	client   *mongo.Client
	database *mongo.Database
}

func openEnv() (*env, error) {
	cfg, err := config.LoadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	log := config.NewLogger(cfg)
	client, database, err := db.ConnectMongoDB(cfg.Database.URI, log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, client: client, database: database}, nil
}

func (e *env) Close() {
	if err := e.client.Disconnect(context.Background()); err != nil {
		e.log.WithError(err).Warn("Failed to disconnect from MongoDB")
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
