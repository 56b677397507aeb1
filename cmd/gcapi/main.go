package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/GoArmGo/gcapi/internal/app"
	"github.com/GoArmGo/gcapi/internal/di"
)

func main() {
	mode := flag.String("mode", app.ModeServer, "Режим запуска приложения: server или worker")
	flag.Parse()

	// bootstrap-логгер (используется только на этапе инициализации, пока нет основного)
	bootstrapLogger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)
	bootstrapLogger.Info("starting application", "mode", *mode)

	ctx := context.Background()

	application, err := di.BuildApp(ctx)
	if err != nil {
		bootstrapLogger.Error("failed to build app", "error", err)
		os.Exit(1)
	}

	log := application.Logger()
	if err := application.Run(ctx, *mode); err != nil {
		log.Error("application run failed", "error", err)
		os.Exit(1)
	}

	log.Info("application stopped gracefully")
}
