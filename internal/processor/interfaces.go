package processor

import (
	"context"
	"io"

	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/types"
)

//
// 文本提取相关接口
//

// TextExtractor 文本提取器接口
type TextExtractor interface {
	// ExtractFromFile 从PDF文件提取文本和元数据
	ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error)

	// ExtractTextFromReader 从io.Reader提取文本和元数据
	// 参数：
	// - ctx: 上下文
	// - reader: PDF文件内容的读取器
	// - uri: 资源标识符（用于日志或元数据）
	// - options: 可选的元数据map，会被复制到返回的元数据中
	ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error)

	// ExtractTextFromBytes 从字节数组提取文本和元数据
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error)
}

// 所有解析后端都满足TextExtractor
var _ TextExtractor = (parser.PDFExtractor)(nil)

// DocumentInspector 文本提取前的文档预检
type DocumentInspector interface {
	Inspect(data []byte) (*parser.PDFInfo, error)
}

//
// 字段提取相关接口
//

// FieldExtractors 各字段的提取函数，均为输入文本的纯函数
// 每个字段单独调用，一个字段的异常不影响其他字段
type FieldExtractors interface {
	Name(text string) string
	Email(text string) string
	Phone(text string) string
	Address(text string) string
	Education(text string) []types.EducationEntry
	Skills(text string) map[string][]string
	Experience(text string) []types.ExperienceEntry
}

var _ FieldExtractors = (*parser.FieldExtractor)(nil)

//
// 缓存相关接口
//

// ResultCache 按文件内容MD5缓存解析结果
type ResultCache interface {
	// GetCachedResult 返回缓存的解析结果，未命中时返回 (nil, false, nil)
	GetCachedResult(ctx context.Context, fileMD5 string) (*types.ResumeRecord, bool, error)

	// CacheResult 缓存解析结果
	CacheResult(ctx context.Context, fileMD5 string, record *types.ResumeRecord) error
}
