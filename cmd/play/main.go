package main

import (
	"fmt"
	"io"
	"os"

	"github.com/benbeisheim/chessbot-backend/internal/engine"
	"github.com/benbeisheim/chessbot-backend/internal/tui"
	"github.com/gdamore/tcell/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/spf13/cobra"
)

func main() {
	var (
		fen     string
		logPath string
	)

	rootCmd := &cobra.Command{
		Use:          "chessbot-play",
		Short:        "Play a two-player game in the terminal",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := engine.FromFEN(fen)
			if err != nil {
				return err
			}

			// The board owns the terminal, so logs go to a file or nowhere.
			log.SetOutput(io.Discard)
			if logPath != "" {
				f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log: %w", err)
				}
				defer f.Close()
				log.SetOutput(f)
				log.SetLevel(log.LevelDebug)
			}

			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("open terminal: %w", err)
			}
			defer screen.Fini()

			return tui.New(screen, state).Run()
		},
	}
	rootCmd.Flags().StringVar(&fen, "fen", engine.StartFEN, "starting position")
	rootCmd.Flags().StringVar(&logPath, "log", "", "write debug logs to this file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
