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

	"github.com/cloudwego/eino-ext/components/document/parser/pdf"
	einoParser "github.com/cloudwego/eino/components/document/parser"
)

// EinoPDFTextExtractor 使用 Eino 的 PDF 文档解析器逐页提取文本
type EinoPDFTextExtractor struct {
	parser  *pdf.PDFParser
	logger  *log.Logger
	timeout time.Duration
}

// EinoPDFOption PDF提取器的配置选项
type EinoPDFOption func(*EinoPDFTextExtractor)

// WithEinoLogger 配置自定义日志记录器
func WithEinoLogger(logger *log.Logger) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithEinoTimeout 配置单次解析的超时时间
func WithEinoTimeout(timeout time.Duration) EinoPDFOption {
	return func(e *EinoPDFTextExtractor) {
		if timeout > 0 {
			e.timeout = timeout
		}
	}
}

var _ PDFExtractor = (*EinoPDFTextExtractor)(nil)

// NewEinoPDFTextExtractor 初始化 Eino PDF 文本提取器
// 解析器按页返回文档，便于统计页数和空白页
func NewEinoPDFTextExtractor(ctx context.Context, options ...EinoPDFOption) (*EinoPDFTextExtractor, error) {
	p, err := pdf.NewPDFParser(ctx, &pdf.Config{ToPages: true})
	if err != nil {
		return nil, fmt.Errorf("failed to create Eino PDF parser: %w", err)
	}

	e := &EinoPDFTextExtractor{
		parser:  p,
		logger:  log.New(os.Stderr, "[EinoPDF] ", log.LstdFlags),
		timeout: 30 * time.Second,
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// ExtractFromFile 从PDF文件提取文本
func (e *EinoPDFTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e.logger, filePath, e.ExtractTextFromReader)
}

// ExtractTextFromReader 逐页提取后按阅读顺序拼接，页与页之间以换行分隔
func (e *EinoPDFTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	meta := toExtraMeta(options)
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	pages, err := e.parser.Parse(ctx, reader, einoParser.WithURI(uri))
	if err != nil {
		return "", meta, fmt.Errorf("eino PDF parser failed for URI %s: %w", uri, err)
	}
	if len(pages) == 0 {
		return "", meta, fmt.Errorf("eino PDF parser returned no documents for URI %s", uri)
	}

	texts := make([]string, 0, len(pages))
	blankPages := 0
	for _, page := range pages {
		text := strings.TrimRight(page.Content, " \t\r\n\f")
		if strings.TrimSpace(text) == "" {
			blankPages++
			continue
		}
		texts = append(texts, text)
	}
	full := strings.Join(texts, "\n")

	// 调用方传入的元数据优先于解析器的元数据
	result := make(map[string]interface{}, len(pages[0].MetaData)+len(meta)+5)
	for k, v := range pages[0].MetaData {
		result[k] = v
	}
	for k, v := range meta {
		result[k] = v
	}
	result["extractor"] = BackendEino
	result["page_count"] = len(pages)
	result["blank_pages"] = blankPages
	result["text_length"] = len(full)
	result["processing_duration_ms"] = time.Since(start).Milliseconds()

	e.logger.Printf("Eino提取完成: %d 页, %d 个字符 (用时 %.2f秒)", len(pages), len(full), time.Since(start).Seconds())
	return full, result, nil
}

// ExtractTextFromBytes 从字节数组提取文本内容
func (e *EinoPDFTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	return e.ExtractTextFromReader(ctx, bytes.NewReader(data), uri, options)
}
