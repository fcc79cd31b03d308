package parser

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// tikaContentKey /rmeta 响应中保存正文的字段
const tikaContentKey = "X-TIKA:content"

// tikaMinimalKeys 精简模式下保留的元数据
var tikaMinimalKeys = map[string]bool{
	"Content-Type":                  true,
	"pdf:PDFVersion":                true,
	"pdf:encrypted":                 true,
	"pdf:totalUnmappedUnicodeChars": true,
	"dcterms:created":               true,
	"language":                      true,
	"xmpTPg:NPages":                 true,
}

// TikaStatusError Tika 服务器返回了非 200 状态码
type TikaStatusError struct {
	StatusCode int
	Body       string
}

func (e *TikaStatusError) Error() string {
	return fmt.Sprintf("tika服务器返回错误状态码: %d %s", e.StatusCode, e.Body)
}

// Unprocessable 文档无法解析（加密或损坏），重试没有意义
func (e *TikaStatusError) Unprocessable() bool {
	return e.StatusCode == http.StatusUnprocessableEntity
}

// TikaPDFExtractor 通过 Tika Server 的 /rmeta/text 接口一次取回正文和元数据
type TikaPDFExtractor struct {
	ServerURL string
	Client    *http.Client

	extractFullMetadata    bool
	extractMinimalMetadata bool
	extractAnnotations     bool
	logger                 *log.Logger
}

// TikaOption 定义配置选项函数
type TikaOption func(*TikaPDFExtractor)

// WithFullMetadata 保留 Tika 返回的全部元数据
func WithFullMetadata(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractFullMetadata = extract
	}
}

// WithMinimalMetadata 只保留页数、版本等少量元数据
func WithMinimalMetadata(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractMinimalMetadata = extract
	}
}

// WithAnnotations 是否提取PDF链接注释文本
func WithAnnotations(extract bool) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.extractAnnotations = extract
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaPDFExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTimeout 配置HTTP客户端超时时间
func WithTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaPDFExtractor) {
		e.Client.Timeout = timeout
	}
}

var _ PDFExtractor = (*TikaPDFExtractor)(nil)

// NewTikaPDFExtractor 创建 Tika 文本提取器
func NewTikaPDFExtractor(serverURL string, options ...TikaOption) *TikaPDFExtractor {
	e := &TikaPDFExtractor{
		ServerURL:              strings.TrimRight(serverURL, "/"),
		Client:                 &http.Client{Timeout: 60 * time.Second},
		extractMinimalMetadata: true,
		extractAnnotations:     true,
		logger:                 log.New(os.Stderr, "[TikaPDF] ", log.LstdFlags),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractFromFile 从PDF文件提取文本内容
func (e *TikaPDFExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	return extractFile(ctx, e.logger, filePath, e.ExtractTextFromReader)
}

// ExtractTextFromReader 读取全部内容后交给 ExtractTextFromBytes
func (e *TikaPDFExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, fmt.Errorf("读取PDF内容失败: %w", err)
	}
	return e.ExtractTextFromBytes(ctx, data, uri, options)
}

// ExtractTextFromBytes 提取正文，按配置筛选元数据
// 内嵌文档（附件）的正文按顺序拼接在主文档之后
func (e *TikaPDFExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	start := time.Now()
	meta := toExtraMeta(options)
	meta["extractor"] = BackendTika
	if _, ok := meta["source_file_path"]; !ok {
		meta["source_file_path"] = uri
	}

	docs, err := e.rmeta(ctx, data, uri)
	if err != nil {
		e.logger.Printf("Tika提取失败 (URI: %s): %v", uri, err)
		return "", meta, err
	}

	var sb strings.Builder
	for i, doc := range docs {
		if content, ok := doc[tikaContentKey].(string); ok {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(content)
		}
		if i == 0 {
			e.mergeMetadata(meta, doc)
		}
	}
	if len(docs) > 1 {
		meta["embedded_documents"] = len(docs) - 1
	}

	text := sb.String()
	meta["text_length"] = len(text)
	meta["processing_duration_ms"] = time.Since(start).Milliseconds()
	e.logger.Printf("Tika提取完成: %d 个字符 (用时 %.2f秒)", len(text), time.Since(start).Seconds())
	return text, meta, nil
}

// mergeMetadata 把主文档的元数据按模式合并进结果，页数另存为整数 page_count
func (e *TikaPDFExtractor) mergeMetadata(meta map[string]interface{}, doc map[string]interface{}) {
	if pages, ok := pageCount(doc["xmpTPg:NPages"]); ok {
		meta["page_count"] = pages
	}
	if !e.extractFullMetadata && !e.extractMinimalMetadata {
		return
	}
	for k, v := range doc {
		if k == tikaContentKey {
			continue
		}
		if e.extractFullMetadata || tikaMinimalKeys[k] {
			meta[k] = v
		}
	}
}

// rmeta 调用 /rmeta/text，返回主文档及内嵌文档的元数据列表
func (e *TikaPDFExtractor) rmeta(ctx context.Context, data []byte, uri string) ([]map[string]interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.ServerURL+"/rmeta/text", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Charset", "utf-8")
	if uri != "" {
		req.Header.Set("X-Tika-Resource-Name", uri)
	}
	if !e.extractAnnotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := e.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("发送请求到Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &TikaStatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var docs []map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("解析Tika响应失败: %w", err)
	}
	if len(docs) == 0 {
		return nil, errors.New("tika响应中没有文档")
	}
	return docs, nil
}

// pageCount Tika 的数值元数据可能是字符串或数字
func pageCount(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	}
	return 0, false
}
