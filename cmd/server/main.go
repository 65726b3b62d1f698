package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"inkpost/internal/config"
	"inkpost/internal/db"
	"inkpost/internal/handlers"
	"inkpost/internal/logs"
	"inkpost/internal/router"
	"inkpost/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var skipMigrate bool

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the blog web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), config.Load(), !skipMigrate)
		},
	}
	serve.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not migrate the schema on start")

	migrate := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if err := db.Init(cfg.DatabaseURL, cfg.DBLogLevel); err != nil {
				return err
			}
			defer db.Close()
			return db.Migrate(db.DB)
		},
	}

	// 无子命令时直接启动服务
	root := &cobra.Command{
		Use:          "inkpost",
		Short:        "inkpost blog server",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())
	root.AddCommand(serve, migrate)
	return root
}

func runServer(ctx context.Context, cfg *config.Config, migrate bool) error {
	if err := db.Init(cfg.DatabaseURL, cfg.DBLogLevel); err != nil {
		logs.Error.Printf("Failed to connect to database: %v", err)
		return err
	}
	defer db.Close()

	if migrate {
		if err := db.Migrate(db.DB); err != nil {
			return err
		}
	}

	if err := storage.Init(ctx, cfg); err != nil {
		logs.Error.Printf("Failed to initialise image storage: %v", err)
		return err
	}

	gin.SetMode(cfg.Mode)

	opts := router.Options{
		SessionSecret: cfg.SessionSecret,
		Store:         storage.Default,
		Google:        handlers.NewGoogleAuth(cfg),
		SiteURL:       cfg.SiteURL,
	}
	if cfg.Storage == "" || cfg.Storage == "local" {
		opts.MediaRoot = cfg.MediaRoot
	}
	r := router.New(opts)

	logs.Info.Printf("Server starting on :%s", cfg.Port)
	return r.Run(":" + cfg.Port)
}
