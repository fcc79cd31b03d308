package parser

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"resume-parser-go/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEinoPDFTextExtractor(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err, "创建PDF提取器不应返回错误")
	require.NotNil(t, extractor, "创建的PDF提取器不应为nil")
	require.NotNil(t, extractor.parser, "PDF提取器内部的parser不应为nil")
	require.NotNil(t, extractor.logger, "PDF提取器应该有默认的logger")
	assert.Equal(t, 30*time.Second, extractor.timeout, "默认超时应为30秒")

	customLogger := log.New(os.Stdout, "[测试PDF提取器] ", log.LstdFlags)
	custom, err := NewEinoPDFTextExtractor(ctx, WithEinoLogger(customLogger), WithEinoTimeout(5*time.Second))
	require.NoError(t, err, "创建带自定义选项的PDF提取器不应返回错误")
	assert.Equal(t, customLogger, custom.logger, "应该使用提供的自定义logger")
	assert.Equal(t, 5*time.Second, custom.timeout)
}

func TestEinoExtractFromFile(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	path := testutil.WriteTempPDF(t, "resume.pdf", testutil.SampleResumeLines...)
	text, metadata, err := extractor.ExtractFromFile(ctx, path)
	require.NoError(t, err, "PDF提取不应返回错误")

	assert.Contains(t, text, "JOHN MICHAEL SMITH", "提取的文本应包含姓名")
	assert.Contains(t, text, "john.smith@example.com", "提取的文本应包含邮箱")

	require.NotNil(t, metadata, "元数据不应为nil")
	assert.Equal(t, path, metadata["source_file_path"], "source_file_path应该是文件路径")
	assert.Equal(t, BackendEino, metadata["extractor"])
	assert.Equal(t, len(text), metadata["text_length"])
	assert.Equal(t, 1, metadata["page_count"], "单页文档")
	assert.Equal(t, 0, metadata["blank_pages"])
}

func TestEinoExtractInvalidContent(t *testing.T) {
	ctx := context.Background()
	extractor, err := NewEinoPDFTextExtractor(ctx)
	require.NoError(t, err)

	_, _, err = extractor.ExtractTextFromBytes(ctx, []byte("this is not a pdf document"), "broken.pdf", nil)
	assert.Error(t, err, "非PDF内容应返回错误")

	_, _, err = extractor.ExtractFromFile(ctx, "testdata/does-not-exist.pdf")
	assert.ErrorIs(t, err, os.ErrNotExist, "文件不存在时应返回包装后的错误")
}
