package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v3"

	app "github.com/rocketscienceinc/tictactoe-game-rules/internal"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/client"
	"github.com/rocketscienceinc/tictactoe-game-rules/internal/config"
)

// main - is the entry point of the application. It builds the command tree and runs the selected command.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	cmd := &cli.Command{
		Name:   "tictactoe",
		Usage:  "real-time tic-tac-toe session coordinator",
		Flags:  []cli.Flag{configFlag()},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the game socket and the admin API",
				Flags:  []cli.Flag{configFlag()},
				Action: serve,
			},
			{
				Name:  "play",
				Usage: "join a room from the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Value: "localhost:8000", Usage: "game socket address"},
					&cli.StringFlag{Name: "room", Required: true, Usage: "room id"},
					&cli.StringFlag{Name: "player", Required: true, Usage: "player id"},
				},
				Action: play,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Value:   "./config.yml",
		Usage:   "path to the config file",
		Sources: cli.EnvVars("CONFIG_PATH"),
	}
}

func serve(_ context.Context, cmd *cli.Command) error {
	conf := initConfig(cmd.String("config"))
	logger := initLogger(conf)

	if err := app.RunApp(logger, conf); err != nil {
		panic(fmt.Errorf("app run failed: %w", err))
	}

	return nil
}

func play(ctx context.Context, cmd *cli.Command) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	player, err := client.Dial(ctx, cmd.String("addr"), cmd.String("room"), cmd.String("player"), os.Stdout)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "type a cell index and press enter, q to quit")

	return player.Run(ctx, os.Stdin)
}

// initialize config.
func initConfig(path string) *config.Config {
	if !filepath.IsAbs(path) {
		baseDir, err := os.Getwd()
		if err != nil {
			panic(fmt.Errorf("failed to get current directory: %w", err))
		}

		path = filepath.Join(baseDir, path)
	}

	return config.MustLoad(path)
}

// initialize logger.
func initLogger(conf *config.Config) *slog.Logger {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
