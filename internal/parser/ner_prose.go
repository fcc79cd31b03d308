package parser

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jdkato/prose/v2"
)

// PersonRecognizer 命名实体识别接口，返回文本中按出现顺序排列的人名实体
type PersonRecognizer interface {
	Persons(text string) []string
}

// ProseRecognizer 基于prose的命名实体识别器
// 模型在首次使用时加载一次，之后所有调用共享同一个模型
type ProseRecognizer struct {
	once    sync.Once
	model   *prose.Model
	loadErr error
	logger  *log.Logger
}

var (
	defaultRecognizer     *ProseRecognizer
	defaultRecognizerOnce sync.Once
)

// DefaultRecognizer 返回进程级共享的识别器
func DefaultRecognizer() *ProseRecognizer {
	defaultRecognizerOnce.Do(func() {
		defaultRecognizer = NewProseRecognizer(log.New(os.Stderr, "[NER] ", log.LstdFlags))
	})
	return defaultRecognizer
}

// NewProseRecognizer 创建识别器，模型延迟加载
func NewProseRecognizer(logger *log.Logger) *ProseRecognizer {
	if logger == nil {
		logger = log.New(os.Stderr, "[NER] ", log.LstdFlags)
	}
	return &ProseRecognizer{logger: logger}
}

// Warmup 预先加载模型，返回加载错误（如果有）
func (r *ProseRecognizer) Warmup() error {
	r.once.Do(r.load)
	return r.loadErr
}

func (r *ProseRecognizer) load() {
	defer func() {
		if p := recover(); p != nil {
			r.loadErr = fmt.Errorf("加载NER模型时发生panic: %v", p)
		}
	}()

	doc, err := prose.NewDocument("Warm up the entity model.", prose.WithSegmentation(false))
	if err != nil {
		r.loadErr = fmt.Errorf("加载NER模型失败: %w", err)
		return
	}
	r.model = doc.Model
	r.logger.Printf("NER模型加载完成")
}

// Persons 返回文本中的PERSON实体；模型不可用时返回空
func (r *ProseRecognizer) Persons(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if err := r.Warmup(); err != nil {
		r.logger.Printf("NER不可用: %v", err)
		return nil
	}

	doc, err := prose.NewDocument(text,
		prose.UsingModel(r.model),
		prose.WithSegmentation(false),
	)
	if err != nil {
		r.logger.Printf("NER处理失败: %v", err)
		return nil
	}

	var persons []string
	for _, ent := range doc.Entities() {
		if ent.Label == "PERSON" {
			persons = append(persons, ent.Text)
		}
	}
	return persons
}
