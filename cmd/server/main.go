package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/benbeisheim/chessbot-backend/internal/config"
	"github.com/benbeisheim/chessbot-backend/internal/server"
	"github.com/benbeisheim/chessbot-backend/internal/service"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:          "chessbot-server",
		Short:        "Serve chess games over HTTP and websockets",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			server.SetLogLevel(cfg.Log.Level)

			gameManager := service.NewGameManager(cfg.Matchmaking.Interval)
			defer gameManager.Close()
			gameService := service.NewGameService(gameManager)

			app := server.NewApp(cfg, gameService)

			go func() {
				sig := make(chan os.Signal, 1)
				signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
				<-sig
				log.Info("shutting down")
				if err := app.Shutdown(); err != nil {
					log.Errorf("shutdown: %v", err)
				}
			}()

			log.Infof("listening on %s", cfg.Server.Addr)
			return app.Listen(cfg.Server.Addr)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
