package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"

	"github.com/spf13/pflag"
)

// 命令行参数定义
var (
	pdfFilePath = pflag.StringP("file", "f", "", "PDF简历文件路径 (必填)")
	configPath  = pflag.StringP("config", "c", "", "配置文件路径，为空时使用默认配置")
	command     = pflag.String("cmd", "parse", "执行的命令: parse=解析为结构化JSON, extract=仅提取文本, inspect=校验PDF结构")
	extractor   = pflag.String("extractor", "", "覆盖配置中的文本提取器: eino, tika, ledongthuc, docconv")
	concurrent  = pflag.Bool("concurrent", false, "并发执行字段提取")
	indent      = pflag.Int("indent", 4, "JSON缩进的空格数")
	maxLen      = pflag.Int("maxlen", 1000, "extract 命令显示的文本最大长度，设为-1显示全部")
	timeout     = pflag.Duration("timeout", 60*time.Second, "整体超时时间")
	verbose     = pflag.BoolP("verbose", "v", false, "输出调试日志")
)

func main() {
	pflag.Parse()

	if *pdfFilePath == "" {
		fmt.Fprintln(os.Stderr, "错误: 必须提供PDF文件路径。使用 -f/--file 参数。")
		pflag.Usage()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// 根据命令执行不同的功能
	switch *command {
	case "parse":
		err = handleParseCommand(ctx, cfg, *pdfFilePath)
	case "extract":
		err = handleExtractCommand(ctx, cfg, *pdfFilePath)
	case "inspect":
		err = handleInspectCommand(*pdfFilePath)
	default:
		fmt.Fprintf(os.Stderr, "错误: 未知命令 '%s'。支持的命令: parse, extract, inspect\n", *command)
		pflag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s 失败: %v\n", *command, err)
		os.Exit(1)
	}
}

// loadConfig 加载配置并应用命令行覆盖项，日志只写到stderr以保持stdout为纯JSON
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return nil, err
	}
	if *extractor != "" {
		cfg.Parser.TextExtractor = *extractor
	}
	if pflag.CommandLine.Changed("concurrent") {
		cfg.Parser.ConcurrentExtraction = *concurrent
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	if _, err := logger.Init(logger.Config{Level: level, Format: "pretty"}); err != nil {
		return nil, err
	}
	cfg.Logger.Level = level
	return cfg, nil
}
