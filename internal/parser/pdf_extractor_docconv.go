package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"code.sajari.com/docconv"
)

const pdfContentType = "application/pdf"

// DocconvPDFExtractor 基于docconv的文本提取器（底层调用poppler的pdftotext）
type DocconvPDFExtractor struct {
	logger *log.Logger
}

// DocconvOption 配置选项
type DocconvOption func(*DocconvPDFExtractor)

// WithDocconvLogger 配置自定义日志记录器
func WithDocconvLogger(logger *log.Logger) DocconvOption {
	return func(e *DocconvPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

var _ PDFExtractor = (*DocconvPDFExtractor)(nil)

// NewDocconvPDFExtractor 创建docconv文本提取器
func NewDocconvPDFExtractor(options ...DocconvOption) *DocconvPDFExtractor {
	extractor := &DocconvPDFExtractor{
		logger: log.New(os.Stderr, "[DocconvPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从PDF文件提取文本
func (e *DocconvPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e.logger, filePath, e.ExtractTextFromReader)
}

// ExtractTextFromReader 从io.Reader提取文本
func (e *DocconvPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	startTime := time.Now()
	metadata := toExtraMeta(options)
	metadata["extractor"] = BackendDocconv

	res, err := docconv.Convert(reader, pdfContentType, false)
	if err != nil {
		e.logger.Printf("docconv: 提取失败 (URI: %s): %v", uri, err)
		return "", metadata, fmt.Errorf("docconv extraction failed for URI %s: %w", uri, err)
	}

	if err := ctx.Err(); err != nil {
		return "", metadata, fmt.Errorf("提取完成后上下文已取消: %w", err)
	}

	for k, v := range res.Meta {
		metadata["docconv:"+k] = v
	}
	metadata["text_length"] = len(res.Body)
	metadata["processing_duration_ms"] = time.Since(startTime).Milliseconds()

	e.logger.Printf("docconv: 提取了 %d 个字符 (URI: %s)", len(res.Body), uri)
	return res.Body, metadata, nil
}

// ExtractTextFromBytes 从字节数组提取文本
func (e *DocconvPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri, options)
}
