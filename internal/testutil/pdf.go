// Package testutil 提供测试使用的辅助工具
package testutil

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleResumeLines 一份结构完整的英文简历，用于端到端测试
var SampleResumeLines = []string{
	"JOHN MICHAEL SMITH",
	"Austin, TX | john.smith@example.com | +1 (555) 123-4567",
	"",
	"EXPERIENCE",
	"Backend Engineer at Acme Corp",
	"Jan 2020 - Present",
	"- Built REST APIs in Go",
	"",
	"EDUCATION",
	"Bachelor of Science in Computer Science",
	"University of Texas 2019",
	"",
	"SKILLS",
	"Go, Docker, Teamwork",
}

// MinimalPDF 生成一个单页、使用Helvetica字体逐行写入文本的最小PDF文档
// 只支持ASCII文本，括号与反斜杠会被转义
func MinimalPDF(lines ...string) []byte {
	var content bytes.Buffer
	content.WriteString("BT\n/F1 11 Tf\n14 TL\n72 740 Td\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", escapePDFString(line))
	}
	content.WriteString("ET\n")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xrefOffset)

	return buf.Bytes()
}

// WriteTempPDF 将生成的PDF写入测试临时目录并返回路径
func WriteTempPDF(t testing.TB, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, MinimalPDF(lines...), 0o644); err != nil {
		t.Fatalf("写入测试PDF失败: %v", err)
	}
	return path
}

func escapePDFString(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
