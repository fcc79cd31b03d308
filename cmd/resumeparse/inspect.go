package main

import (
	"fmt"
	"os"

	"resume-parser-go/internal/parser"
)

// handleInspectCommand 使用pdfcpu校验文档结构并输出页数
func handleInspectCommand(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := parser.NewPDFInspector().InspectReader(f)
	if err != nil {
		return err
	}
	fmt.Printf("页数: %d\n加密: %v\n大小: %d 字节\n", info.PageCount, info.Encrypted, info.Size)
	return nil
}
