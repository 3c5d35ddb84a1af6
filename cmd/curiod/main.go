package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"curio/config"
	"curio/core"
	nativecommon "curio/native/common"
	"curio/native/roles"
	"curio/observability/logging"
	"curio/rpc"
	"curio/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	env := strings.TrimSpace(cfg.Env)
	if fromEnv := strings.TrimSpace(os.Getenv("CURIO_ENV")); fromEnv != "" {
		env = fromEnv
	}
	logger := logging.Setup("curiod", env)

	db, err := storage.NewLevelDB(cfg.DataDir)
	if err != nil {
		panic(fmt.Sprintf("Failed to open database: %v", err))
	}
	defer db.Close()

	node := core.NewNode(db)
	node.SetDefaultGrowthBps(cfg.DefaultGrowthBps)

	admin, err := cfg.Admin()
	if err != nil {
		logger.Error("Failed to parse admin address", slog.Any("error", err))
		os.Exit(1)
	}
	node.SetAdmin(admin)

	if path := strings.TrimSpace(cfg.RolesFile); path != "" {
		provider, err := roles.LoadStatic(path)
		if err != nil {
			logger.Error("Failed to load roles file", slog.String("path", path), slog.Any("error", err))
			os.Exit(1)
		}
		node.SetCapabilityProvider(provider)
	}

	if len(cfg.PausedModules) > 0 {
		logger.Warn("Modules paused at startup", slog.Any("modules", cfg.PausedModules))
		node.SetPauses(nativecommon.NewStaticPauses(cfg.PausedModules))
	}

	server := rpc.NewServer(node, logger)
	logger.Info("Starting RPC server", slog.String("address", cfg.RPCAddress))
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server terminated", slog.Any("error", err))
		os.Exit(1)
	}
}
