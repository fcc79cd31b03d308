package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// PDFExtractor PDF文本提取器接口 - 与processor包中的TextExtractor定义相同
type PDFExtractor interface {
	// ExtractFromFile 从PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

// 各后端的名称，与配置项 parser.text_extractor 对应
const (
	BackendEino       = "eino"
	BackendTika       = "tika"
	BackendLedongthuc = "ledongthuc"
	BackendDocconv    = "docconv"
)

// toExtraMeta 将options转换为新的元数据map，不修改调用方传入的map
func toExtraMeta(options interface{}) map[string]interface{} {
	if options == nil {
		return make(map[string]interface{})
	}
	if meta, ok := options.(map[string]interface{}); ok {
		copied := make(map[string]interface{}, len(meta))
		for k, v := range meta {
			copied[k] = v
		}
		return copied
	}
	// 如果不是期望的类型，创建一个新的并记录原始options
	return map[string]interface{}{
		"original_options": options,
	}
}

// extractFile 打开文件并交给具体后端的 reader 提取函数，统一记录耗时
func extractFile(
	ctx context.Context,
	logger *log.Logger,
	filePath string,
	extract func(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error),
) (string, map[string]interface{}, error) {
	startTime := time.Now()
	logger.Printf("开始处理PDF文件: %s", filePath)

	file, err := os.Open(filePath)
	if err != nil {
		return "", nil, fmt.Errorf("打开PDF文件 %s 失败: %w", filePath, err)
	}
	defer file.Close()

	if fileInfo, err := file.Stat(); err == nil {
		logger.Printf("PDF文件大小: %.2f MB", float64(fileInfo.Size())/1024/1024)
	}

	extraMeta := map[string]interface{}{
		"source_file_path": filePath,
		"extraction_time":  time.Now().Format(time.RFC3339),
	}

	text, metadata, err := extract(ctx, file, filePath, extraMeta)

	duration := time.Since(startTime)
	if err != nil {
		logger.Printf("PDF处理失败: %s (用时 %.2f秒)", err, duration.Seconds())
		return "", nil, err
	}

	logger.Printf("PDF处理完成: 提取了 %d 个字符 (用时 %.2f秒)", len(text), duration.Seconds())
	return text, metadata, nil
}
