package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"frachtrechner/internal/config"
	"frachtrechner/internal/logger"
	"frachtrechner/internal/server"
	"frachtrechner/internal/util"
)

var (
	port       = flag.Int("port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	devMode    = flag.Bool("dev", false, "开发模式")
	configPath = flag.String("config", "", "配置文件路径 (默认: 可执行文件同目录下的 config.toml)")
	noBrowser  = flag.Bool("no-browser", false, "启动后不打开浏览器")
)

func main() {
	flag.Parse()

	// 加载配置
	cfg, info, err := config.LoadConfigWithInfo(*configPath)
	loadErr := err
	if err != nil {
		cfg = config.DefaultConfig()
		info = config.LoadConfigInfo{}
	}

	// 命令行参数覆盖配置
	if *port > 0 && !info.PortSpecified {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *noBrowser {
		cfg.Server.OpenBrowser = false
	}

	log, err := logger.New(cfg.Server.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if loadErr != nil {
		log.Warn("加载配置失败，使用默认配置", zap.String("path", info.Path), zap.Error(loadErr))
	}

	srv := server.NewServer(cfg, log)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("服务启动", zap.String("addr", addr), zap.String("currency", cfg.Display.Currency))
		errCh <- srv.Run(addr)
	}()

	if cfg.Server.OpenBrowser && !cfg.Server.DevMode {
		if err := util.OpenBrowser(url); err != nil {
			log.Info("无法自动打开浏览器，请手动访问", zap.String("url", url), zap.Error(err))
		}
	} else {
		log.Info("请访问", zap.String("url", url))
	}

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("服务启动失败", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("正在关闭服务")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("关闭服务失败", zap.Error(err))
		}
	}
}
