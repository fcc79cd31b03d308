package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrNotPDF 内容不是PDF文档
var ErrNotPDF = errors.New("内容不是PDF文档")

// PDFInfo 文档预检结果
type PDFInfo struct {
	PageCount int
	Encrypted bool
	Size      int64
}

// PDFInspector 在文本提取前使用pdfcpu校验文档结构
type PDFInspector struct {
	conf *model.Configuration
}

// NewPDFInspector 创建文档预检器
func NewPDFInspector() *PDFInspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFInspector{conf: conf}
}

// Inspect 校验字节内容是可读取的PDF并返回页数
func (i *PDFInspector) Inspect(data []byte) (*PDFInfo, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, "\x00\t\r\n "), []byte("%PDF-")) {
		return nil, ErrNotPDF
	}
	return i.InspectReader(bytes.NewReader(data))
}

// InspectReader 校验可随机访问的PDF内容
func (i *PDFInspector) InspectReader(rs io.ReadSeeker) (*PDFInfo, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("定位文档末尾失败: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("定位文档开头失败: %w", err)
	}

	ctx, err := api.ReadValidateAndOptimize(rs, i.conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	info := &PDFInfo{
		PageCount: ctx.PageCount,
		Encrypted: ctx.Encrypt != nil,
		Size:      size,
	}
	if info.PageCount == 0 {
		return info, fmt.Errorf("PDF文档不包含任何页面")
	}
	return info, nil
}
