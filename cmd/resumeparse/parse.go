package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/processor"
)

// handleParseCommand 解析简历并将结构化结果以JSON输出到stdout
func handleParseCommand(ctx context.Context, cfg *config.Config, path string) error {
	textExtractor, err := processor.BuildTextExtractor(ctx, cfg, logger.NewStdLogger)
	if err != nil {
		return err
	}

	compOpts := []processor.ComponentOpt{
		processor.WithcompTextextractor(textExtractor),
		processor.WithcompFields(processor.BuildFieldExtractor(cfg)),
	}
	if cfg.Parser.InspectPDF {
		compOpts = append(compOpts, processor.WithcompInspector(parser.NewPDFInspector()))
	}
	rp, err := processor.CreateParser(compOpts, []processor.SettingOpt{
		processor.WithsetDebug(cfg.Logger.Level == "debug"),
		processor.WithsetLogger(logger.NewStdLogger("[ResumeParser] ")),
		processor.WithsetConcurrent(cfg.Parser.ConcurrentExtraction),
		processor.WithsetExtractionTimeout(config.GetDuration(cfg.Parser.ExtractionTimeout, 0)),
	})
	if err != nil {
		return err
	}

	outcome, err := rp.ParseFileWithOutcome(ctx, path)
	if err != nil {
		return err
	}
	if !outcome.Succeeded() {
		fmt.Fprintf(os.Stderr, "警告: 未能提取文本，输出空结构: %v\n", outcome.ExtractionErr)
	}
	if len(outcome.Anomalies) > 0 {
		fmt.Fprintf(os.Stderr, "警告: 以下字段提取异常: %v\n", outcome.Anomalies)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", strings.Repeat(" ", max(*indent, 0)))
	enc.SetEscapeHTML(false)
	return enc.Encode(outcome.Record)
}
