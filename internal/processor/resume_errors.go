package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	// ErrDocumentNotFound 文档路径不存在或不可读，是唯一返回给调用方的错误
	ErrDocumentNotFound = errors.New("简历文件不存在")
	// ErrExtractionFailed 文本提取失败（内部使用，最终转换为空结构）
	ErrExtractionFailed = errors.New("提取简历文本失败")
	// ErrFieldExtraction 单个字段提取器异常（内部使用，对应字段置空）
	ErrFieldExtraction = errors.New("字段提取异常")
)

// ParseError 包含详细错误信息的自定义错误
type ParseError struct {
	Op      string
	Source  string
	BaseErr error
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 来源:%s): %s", e.BaseErr, e.Op, e.Source, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 来源:%s)", e.BaseErr, e.Op, e.Source)
}

func (e *ParseError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *ParseError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewNotFoundError(source, detail string) error {
	return &ParseError{
		Op:      "open",
		Source:  source,
		BaseErr: ErrDocumentNotFound,
		Detail:  detail,
	}
}

func NewExtractionError(source, detail string) error {
	return &ParseError{
		Op:      "extract_text",
		Source:  source,
		BaseErr: ErrExtractionFailed,
		Detail:  detail,
	}
}

func NewFieldError(field, source, detail string) error {
	return &ParseError{
		Op:      "extract_" + field,
		Source:  source,
		BaseErr: ErrFieldExtraction,
		Detail:  detail,
	}
}
