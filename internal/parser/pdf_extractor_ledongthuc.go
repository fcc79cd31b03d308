package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// LedongthucPDFExtractor 纯Go实现的逐页文本提取器，不依赖外部服务
type LedongthucPDFExtractor struct {
	logger *log.Logger
}

// LedongthucOption 配置选项
type LedongthucOption func(*LedongthucPDFExtractor)

// WithLedongthucLogger 配置自定义日志记录器
func WithLedongthucLogger(logger *log.Logger) LedongthucOption {
	return func(e *LedongthucPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

var _ PDFExtractor = (*LedongthucPDFExtractor)(nil)

// NewLedongthucPDFExtractor 创建逐页文本提取器
func NewLedongthucPDFExtractor(options ...LedongthucOption) *LedongthucPDFExtractor {
	extractor := &LedongthucPDFExtractor{
		logger: log.New(os.Stderr, "[LedongthucPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(extractor)
	}
	return extractor
}

// ExtractFromFile 从PDF文件提取文本
func (e *LedongthucPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e.logger, filePath, e.ExtractTextFromReader)
}

// ExtractTextFromReader 从io.Reader提取文本；该库需要随机访问，因此先读入内存
func (e *LedongthucPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 逐页提取文本，页与页之间以换行分隔
func (e *LedongthucPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	startTime := time.Now()
	metadata := toExtraMeta(options)
	metadata["extractor"] = BackendLedongthuc

	pdfReader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", metadata, fmt.Errorf("failed to read pdf %s: %w", uri, err)
	}

	numPages := pdfReader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", metadata, fmt.Errorf("提取第 %d 页时上下文已取消: %w", i, err)
		}
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", metadata, fmt.Errorf("提取第 %d 页文本失败: %w", i, err)
		}
		pages = append(pages, text)
	}

	fullText := strings.Join(pages, "\n")
	duration := time.Since(startTime)

	metadata["page_count"] = numPages
	metadata["text_length"] = len(fullText)
	metadata["processing_duration_ms"] = duration.Milliseconds()

	e.logger.Printf("PDF提取完成 (URI: %s): %d 页, %d 个字符 (用时 %.2f秒)", uri, numPages, len(fullText), duration.Seconds())
	return fullText, metadata, nil
}
