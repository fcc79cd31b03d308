package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
)

// handleExtractCommand 只提取文本，便于比较不同的提取后端
func handleExtractCommand(ctx context.Context, cfg *config.Config, inputFile string) error {
	absPath, err := filepath.Abs(inputFile)
	if err != nil {
		return fmt.Errorf("无法获取文件的绝对路径: %w", err)
	}
	if _, err := os.Stat(absPath); err != nil {
		return fmt.Errorf("无法访问文件 %s: %w", absPath, err)
	}

	textExtractor, err := processor.BuildTextExtractor(ctx, cfg, logger.NewStdLogger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	text, metadata, err := textExtractor.ExtractFromFile(ctx, absPath)
	if err != nil {
		return err
	}
	fmt.Printf("提取完成! 后端: %s 耗时: %v\n", cfg.Parser.TextExtractor, time.Since(startTime))

	if len(metadata) > 0 {
		keys := make([]string, 0, len(metadata))
		for k := range metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("\n===== 元数据 =====")
		for _, k := range keys {
			fmt.Printf("%s: %v\n", k, metadata[k])
		}
	}

	fmt.Printf("\n===== 提取的文本 (总计 %d 字符) =====\n", len(text))
	displayText := text
	if *maxLen >= 0 && len(text) > *maxLen {
		displayText = text[:*maxLen] + "\n... (已截断)"
	}
	fmt.Println(displayText)

	sections := parser.SplitSections(text)
	fmt.Printf("\n===== 识别到 %d 个章节 =====\n", len(sections))
	for _, s := range sections {
		fmt.Printf("[%s] %s (%d 行)\n", s.Type, s.Title, len(s.Lines))
	}
	return nil
}
