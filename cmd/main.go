package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/api/router"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

var (
	version = "1.0.0" //nolint:gochecknoglobals
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "", "Path to config file")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	logCloser, err := logger.Init(logger.Config(cfg.Logger))
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化日志失败")
	}
	if logCloser != nil {
		defer logCloser.Close()
	}

	// Hertz 内部日志也走 zerolog
	glog.SetLogger(hertzadapter.From(logger.Logger))
	if cfg.Logger.Level == "debug" {
		glog.SetLevel(glog.LevelDebug)
	}
	logger.Info().Str("version", version).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.InitProvider(ctx, cfg.Tracing, version)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()

	resumeParser, err := buildParser(ctx, cfg, storageManager)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化简历解析器失败")
	}
	resumeHandler := handler.NewResumeHandler(cfg, storageManager, resumeParser)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
		// multipart 边界和其他字段需要少量额外空间
		server.WithMaxRequestBodySize(cfg.MaxUploadBytes()+1<<20),
		server.WithExitWaitTime(config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second)),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))
	router.RegisterRoutes(h, resumeHandler, cfg.Server)

	logger.Info().
		Str("address", cfg.Server.Address).
		Str("extractor", cfg.Parser.TextExtractor).
		Msg("HTTP 服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout, 5*time.Second))
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("关闭链路追踪失败")
	}
	logger.Info().Msg("优雅退出完成")
}

// buildParser 按配置组装文本提取器、字段提取器和可选组件
func buildParser(ctx context.Context, cfg *config.Config, store *storage.Storage) (*processor.ResumeParser, error) {
	textExtractor, err := processor.BuildTextExtractor(ctx, cfg, logger.NewStdLogger)
	if err != nil {
		return nil, err
	}

	compOpts := []processor.ComponentOpt{
		processor.WithcompTextextractor(textExtractor),
		processor.WithcompFields(processor.BuildFieldExtractor(cfg)),
	}
	if cfg.Parser.InspectPDF {
		compOpts = append(compOpts, processor.WithcompInspector(parser.NewPDFInspector()))
	}
	if store.ResultCache != nil {
		compOpts = append(compOpts, processor.WithcompResultcache(store.ResultCache))
	}

	setOpts := []processor.SettingOpt{
		processor.WithsetDebug(cfg.Logger.Level == "debug"),
		processor.WithsetLogger(logger.NewStdLogger("[ResumeParser] ")),
		processor.WithsetConcurrent(cfg.Parser.ConcurrentExtraction),
		processor.WithsetExtractionTimeout(config.GetDuration(cfg.Parser.ExtractionTimeout, 30*time.Second)),
	}
	return processor.CreateParser(compOpts, setOpts)
}
