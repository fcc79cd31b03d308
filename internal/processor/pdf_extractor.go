package processor

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/parser"
)

// BuildTextExtractor 统一构建文本提取器的逻辑
// 根据 parser.text_extractor 配置返回对应的后端实现
func BuildTextExtractor(ctx context.Context, cfg *config.Config, loggerProvider func(prefix string) *log.Logger) (TextExtractor, error) {
	initLogger := loggerProvider("[TextExtractorInit] ")
	timeout := config.GetDuration(cfg.Parser.ExtractionTimeout, 30*time.Second)

	backend := strings.ToLower(strings.TrimSpace(cfg.Parser.TextExtractor))
	switch backend {
	case parser.BackendTika:
		if cfg.Tika.ServerURL == "" {
			return nil, fmt.Errorf("text_extractor 为 tika 但未配置 tika.server_url")
		}
		initLogger.Printf("使用Tika文本提取器: %s", cfg.Tika.ServerURL)
		var tikaOptions []parser.TikaOption
		switch cfg.Tika.MetadataMode {
		case "full":
			tikaOptions = append(tikaOptions, parser.WithFullMetadata(true))
		case "none":
			tikaOptions = append(tikaOptions, parser.WithMinimalMetadata(false), parser.WithFullMetadata(false))
		default: // "minimal"
			tikaOptions = append(tikaOptions, parser.WithMinimalMetadata(true))
		}
		if cfg.Tika.Timeout > 0 {
			tikaOptions = append(tikaOptions, parser.WithTimeout(time.Duration(cfg.Tika.Timeout)*time.Second))
		}
		tikaOptions = append(tikaOptions, parser.WithTikaLogger(loggerProvider("[TikaPDF] ")))
		return parser.NewTikaPDFExtractor(cfg.Tika.ServerURL, tikaOptions...), nil

	case parser.BackendLedongthuc:
		initLogger.Println("使用ledongthuc纯Go文本提取器")
		return parser.NewLedongthucPDFExtractor(parser.WithLedongthucLogger(loggerProvider("[LedongthucPDF] "))), nil

	case parser.BackendDocconv:
		initLogger.Println("使用docconv文本提取器")
		return parser.NewDocconvPDFExtractor(parser.WithDocconvLogger(loggerProvider("[DocconvPDF] "))), nil

	case "", parser.BackendEino:
		initLogger.Println("使用Eino文本提取器")
		return parser.NewEinoPDFTextExtractor(ctx,
			parser.WithEinoLogger(loggerProvider("[EinoPDF] ")),
			parser.WithEinoTimeout(timeout),
		)

	default:
		return nil, fmt.Errorf("未知的文本提取器类型: %s", cfg.Parser.TextExtractor)
	}
}

// BuildFieldExtractor 根据配置创建字段提取器，启用NER时共享进程级模型
func BuildFieldExtractor(cfg *config.Config) *parser.FieldExtractor {
	opts := []parser.FieldOption{
		parser.WithFallbacks(cfg.Parser.Fallback.Name, cfg.Parser.Fallback.Email, cfg.Parser.Fallback.Phone),
		parser.WithWindows(cfg.Parser.HeaderLines, cfg.Parser.NameWindow, cfg.Parser.NERWindow),
	}
	if cfg.Parser.EnableNER {
		opts = append(opts, parser.WithRecognizer(parser.DefaultRecognizer()))
	}
	return parser.NewFieldExtractor(opts...)
}
