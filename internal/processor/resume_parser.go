package processor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"resume-parser-go/internal/tracing"
	"resume-parser-go/internal/types"
	"resume-parser-go/pkg/utils"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("processor")

// ParseState 单次解析经过的状态
type ParseState string

const (
	StateStart                  ParseState = "start"
	StateTextExtracted          ParseState = "text_extracted"
	StateFieldsExtracted        ParseState = "fields_extracted"
	StateTextExtractionFailed   ParseState = "text_extraction_failed"
	StateEmptyStructureReturned ParseState = "empty_structure_returned"
	StateDone                   ParseState = "done"
)

// 字段名称，用于日志、追踪和异常记录
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAddress    = "address"
	FieldEducation  = "education"
	FieldSkills     = "skills"
	FieldExperience = "work_experience"
)

// Components 聚合所有功能组件依赖，便于集中管理和测试替换
type Components struct {
	TextExtractor TextExtractor     // 文本提取
	Fields        FieldExtractors   // 字段提取
	Inspector     DocumentInspector // 文档预检（可选）
	Cache         ResultCache       // 解析结果缓存（可选）
}

// Settings 纯配置项，不包含任何业务逻辑组件
type Settings struct {
	Debug             bool          // 是否开启调试模式
	Concurrent        bool          // 字段提取器是否并发执行
	ExtractionTimeout time.Duration // 文本提取超时
	Logger            *log.Logger   // 日志记录器
}

// ParseOutcome 一次解析的完整结果，除记录外还包含用于审计和事件的统计信息
type ParseOutcome struct {
	Record         *types.ResumeRecord
	Source         string
	FileMD5        string
	FileSize       int
	TextLength     int
	States         []ParseState // 经过的状态序列
	Cached         bool
	ExtractionErr  error    // 文本提取失败的原因（已转换为空结构）
	Anomalies      []string // 发生异常的字段
	Metadata       map[string]interface{}
	ExtractionTime time.Duration
	FieldsTime     time.Duration
}

// Succeeded 是否成功提取到文本
func (o *ParseOutcome) Succeeded() bool {
	return o.ExtractionErr == nil
}

func (o *ParseOutcome) transition(state ParseState) {
	o.States = append(o.States, state)
}

// ResumeParser 简历解析编排器：文本提取 -> 字段提取 -> 组装记录
// 除文件不存在外，任何失败都返回规范的空结构
type ResumeParser struct {
	components Components
	settings   Settings
}

// NewResumeParser 创建解析器，使用明确分离的组件和设置
func NewResumeParser(comp *Components, set *Settings, opts ...SettingOpt) (*ResumeParser, error) {
	if comp == nil || comp.TextExtractor == nil {
		return nil, fmt.Errorf("ResumeParser: TextExtractor is not initialized")
	}
	if comp.Fields == nil {
		return nil, fmt.Errorf("ResumeParser: FieldExtractors is not initialized")
	}
	if set == nil {
		set = &Settings{}
	}
	for _, opt := range opts {
		opt(set)
	}
	if set.Logger == nil {
		set.Logger = log.New(os.Stdout, "[ResumeParser] ", log.LstdFlags)
	}
	if set.ExtractionTimeout <= 0 {
		set.ExtractionTimeout = 30 * time.Second
	}

	return &ResumeParser{components: *comp, settings: *set}, nil
}

// CreateParser 使用组件选项和设置选项创建解析器
func CreateParser(compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeParser, error) {
	comp := &Components{}
	for _, opt := range compOpts {
		opt(comp)
	}
	return NewResumeParser(comp, &Settings{}, setOpts...)
}

// ParseFile 解析磁盘上的PDF文件
// 文件不存在或路径是目录时返回 ErrDocumentNotFound；文件存在但读取失败按文本提取失败处理，返回空结构
func (rp *ResumeParser) ParseFile(ctx context.Context, path string) (*types.ResumeRecord, error) {
	outcome, err := rp.ParseFileWithOutcome(ctx, path)
	if err != nil {
		return nil, err
	}
	return outcome.Record, nil
}

// ParseFileWithOutcome 与 ParseFile 相同，同时返回解析统计
func (rp *ResumeParser) ParseFileWithOutcome(ctx context.Context, path string) (*ParseOutcome, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NewNotFoundError(path, err.Error())
	}
	if err == nil && info.IsDir() {
		return nil, NewNotFoundError(path, "路径是目录")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return rp.emptyOutcome(path, NewExtractionError(path, "读取文件失败: "+err.Error())), nil
	}
	return rp.ParseBytesWithOutcome(ctx, data, path), nil
}

// ParseReader 解析任意字节流；读取失败视为文本提取失败
func (rp *ResumeParser) ParseReader(ctx context.Context, r io.Reader, uri string) *types.ResumeRecord {
	data, err := io.ReadAll(r)
	if err != nil {
		outcome := rp.emptyOutcome(uri, NewExtractionError(uri, "读取内容失败: "+err.Error()))
		return outcome.Record
	}
	return rp.ParseBytes(ctx, data, uri)
}

// ParseBytes 解析内存中的PDF内容
func (rp *ResumeParser) ParseBytes(ctx context.Context, data []byte, uri string) *types.ResumeRecord {
	return rp.ParseBytesWithOutcome(ctx, data, uri).Record
}

// ParseBytesWithOutcome 解析内存中的PDF内容并返回解析统计
func (rp *ResumeParser) ParseBytesWithOutcome(ctx context.Context, data []byte, uri string) *ParseOutcome {
	ctx, span := tracer.Start(ctx, "ResumeParser.Parse",
		trace.WithAttributes(
			attribute.String("resume.source", tracing.SafeFileName(uri)),
			attribute.Int("resume.size_bytes", len(data)),
		))
	defer span.End()

	outcome := &ParseOutcome{
		Source:   uri,
		FileMD5:  utils.CalculateMD5(data),
		FileSize: len(data),
	}
	outcome.transition(StateStart)
	span.SetAttributes(attribute.String("resume.md5", outcome.FileMD5))

	if cached := rp.lookupCache(ctx, outcome.FileMD5); cached != nil {
		outcome.Record = cached
		outcome.Cached = true
		outcome.transition(StateTextExtracted)
		outcome.transition(StateFieldsExtracted)
		outcome.transition(StateDone)
		span.SetAttributes(attribute.Bool("resume.cache_hit", true))
		rp.logDebug("解析结果缓存命中: %s (MD5: %s)", uri, outcome.FileMD5)
		return outcome
	}

	extractStart := time.Now()
	text, metadata, err := rp.extractText(ctx, data, uri)
	outcome.ExtractionTime = time.Since(extractStart)
	outcome.Metadata = metadata

	if err == nil && strings.TrimSpace(text) == "" {
		err = NewExtractionError(uri, "未提取到任何文本")
	}
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
		rp.logWarn("文本提取失败，返回空结构: %s: %v", uri, err)
		outcome.ExtractionErr = err
		outcome.transition(StateTextExtractionFailed)
		outcome.Record = types.NewEmptyResumeRecord()
		outcome.transition(StateEmptyStructureReturned)
		outcome.transition(StateDone)
		return outcome
	}

	outcome.TextLength = len(text)
	outcome.transition(StateTextExtracted)
	span.SetAttributes(attribute.Int("resume.text_length", len(text)))

	fieldsStart := time.Now()
	record, anomalies := rp.extractFields(ctx, text, uri)
	outcome.FieldsTime = time.Since(fieldsStart)
	outcome.Record = record
	outcome.Anomalies = anomalies
	outcome.transition(StateFieldsExtracted)

	if len(anomalies) > 0 {
		span.SetAttributes(attribute.StringSlice("resume.field_anomalies", anomalies))
	} else {
		rp.storeCache(ctx, outcome.FileMD5, record)
	}

	span.SetStatus(codes.Ok, "解析完成")
	rp.logInfo("解析完成: %s, 文本 %d 字符, 教育 %d 条, 工作 %d 条, 技能 %d 项 (提取 %v, 字段 %v)",
		tracing.SafeFileName(uri), len(text), len(record.Education), len(record.WorkExperience),
		record.SkillCount(), outcome.ExtractionTime, outcome.FieldsTime)

	outcome.transition(StateDone)
	return outcome
}

// emptyOutcome 构造提取失败时的结果
func (rp *ResumeParser) emptyOutcome(uri string, err error) *ParseOutcome {
	rp.logWarn("文本提取失败，返回空结构: %s: %v", uri, err)
	outcome := &ParseOutcome{Source: uri, ExtractionErr: err, Record: types.NewEmptyResumeRecord()}
	outcome.transition(StateStart)
	outcome.transition(StateTextExtractionFailed)
	outcome.transition(StateEmptyStructureReturned)
	outcome.transition(StateDone)
	return outcome
}

// extractText 预检文档并调用文本提取器，提取器的panic与超时都转换为错误
func (rp *ResumeParser) extractText(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error) {
	ctx, span := tracer.Start(ctx, "ExtractText")
	defer span.End()

	if rp.components.Inspector != nil {
		info, err := rp.components.Inspector.Inspect(data)
		if err != nil {
			return "", nil, NewExtractionError(uri, "文档预检失败: "+err.Error())
		}
		if info.Encrypted {
			return "", nil, NewExtractionError(uri, "文档已加密")
		}
		span.SetAttributes(attribute.Int("pdf.page_count", info.PageCount))
	}

	ctx, cancel := context.WithTimeout(ctx, rp.settings.ExtractionTimeout)
	defer cancel()

	type result struct {
		text     string
		metadata map[string]interface{}
		err      error
	}
	done := make(chan result, 1)

	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- result{err: NewExtractionError(uri, fmt.Sprintf("文本提取器panic: %v", p))}
			}
		}()
		meta := map[string]interface{}{"source_file_path": uri}
		text, metadata, err := rp.components.TextExtractor.ExtractTextFromBytes(ctx, data, uri, meta)
		done <- result{text: text, metadata: metadata, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			var parseErr *ParseError
			if !errors.As(res.err, &parseErr) {
				res.err = NewExtractionError(uri, res.err.Error())
			}
			tracing.RecordError(span, res.err, tracing.ErrorTypeExtraction)
			return "", res.metadata, res.err
		}
		return res.text, res.metadata, nil
	case <-ctx.Done():
		err := NewExtractionError(uri, "文本提取超时: "+ctx.Err().Error())
		tracing.RecordError(span, err, tracing.ErrorTypeTimeout)
		return "", nil, err
	}
}

// fieldTask 单个字段的提取任务
type fieldTask struct {
	name string
	run  func(text string)
}

// extractFields 运行全部字段提取器并组装记录，返回发生异常的字段
func (rp *ResumeParser) extractFields(ctx context.Context, text, uri string) (*types.ResumeRecord, []string) {
	ctx, span := tracer.Start(ctx, "ExtractFields",
		trace.WithAttributes(attribute.Bool("fields.concurrent", rp.settings.Concurrent)))
	defer span.End()

	record := types.NewEmptyResumeRecord()
	fields := rp.components.Fields

	tasks := []fieldTask{
		{FieldName, func(t string) { record.PersonalInfo.Name = fields.Name(t) }},
		{FieldEmail, func(t string) { record.PersonalInfo.Email = fields.Email(t) }},
		{FieldPhone, func(t string) { record.PersonalInfo.Phone = fields.Phone(t) }},
		{FieldAddress, func(t string) { record.PersonalInfo.Address = fields.Address(t) }},
		{FieldEducation, func(t string) { record.Education = fields.Education(t) }},
		{FieldSkills, func(t string) { record.Skills = fields.Skills(t) }},
		{FieldExperience, func(t string) { record.WorkExperience = fields.Experience(t) }},
	}
	errs := make([]error, len(tasks))

	if rp.settings.Concurrent {
		// 每个任务只写入记录中属于自己的字段
		var g errgroup.Group
		for i, task := range tasks {
			i, task := i, task
			g.Go(func() error {
				errs[i] = rp.runField(ctx, task, text, uri)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, task := range tasks {
			errs[i] = rp.runField(ctx, task, text, uri)
		}
	}

	var anomalies []string
	for i, err := range errs {
		if err != nil {
			anomalies = append(anomalies, tasks[i].name)
			tracing.RecordError(span, err, tracing.ErrorTypeFieldExtraction)
		}
	}

	return record.Normalize(), anomalies
}

// runField 执行单个字段提取，panic被转换为 ErrFieldExtraction，字段保持空值
func (rp *ResumeParser) runField(ctx context.Context, task fieldTask, text, uri string) (err error) {
	_, span := tracer.Start(ctx, "ExtractField."+task.name)
	defer span.End()

	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			err = NewFieldError(task.name, uri, fmt.Sprintf("%v", p))
			tracing.RecordError(span, err, tracing.ErrorTypeFieldExtraction)
			rp.logWarn("字段提取异常，使用空值: %v", err)
		}
	}()

	task.run(text)
	rp.logDebug("字段 %s 提取完成 (用时 %v)", task.name, time.Since(start))
	return nil
}

func (rp *ResumeParser) lookupCache(ctx context.Context, fileMD5 string) *types.ResumeRecord {
	if rp.components.Cache == nil {
		return nil
	}
	record, ok, err := rp.components.Cache.GetCachedResult(ctx, fileMD5)
	if err != nil {
		rp.logWarn("读取解析结果缓存失败: %v", err)
		return nil
	}
	if !ok || record == nil {
		return nil
	}
	return record.Normalize()
}

func (rp *ResumeParser) storeCache(ctx context.Context, fileMD5 string, record *types.ResumeRecord) {
	if rp.components.Cache == nil {
		return
	}
	if err := rp.components.Cache.CacheResult(ctx, fileMD5, record); err != nil {
		rp.logWarn("写入解析结果缓存失败: %v", err)
	}
}
