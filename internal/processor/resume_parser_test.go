package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/parser"
	"resume-parser-go/internal/testutil"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleText = `JOHN MICHAEL SMITH
john.smith@example.com | +1 (555) 123-4567

EXPERIENCE
Backend Engineer at Acme Corp
Jan 2020 - Present
- Built REST APIs in Go

EDUCATION
Bachelor of Science in Computer Science
University of Texas 2019

SKILLS
Go, Docker, Teamwork
`

// MockTextExtractor 模拟文本提取器
type MockTextExtractor struct {
	text  string
	err   error
	panic bool
	delay time.Duration

	mu    sync.Mutex
	calls int
}

func (m *MockTextExtractor) ExtractFromFile(ctx context.Context, filePath string) (string, map[string]interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", nil, err
	}
	return m.ExtractTextFromBytes(ctx, data, filePath, nil)
}

func (m *MockTextExtractor) ExtractTextFromReader(ctx context.Context, reader io.Reader, uri string, options interface{}) (string, map[string]interface{}, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", nil, err
	}
	return m.ExtractTextFromBytes(ctx, data, uri, options)
}

func (m *MockTextExtractor) ExtractTextFromBytes(ctx context.Context, data []byte, uri string, options interface{}) (string, map[string]interface{}, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.panic {
		panic("extractor exploded")
	}
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", nil, ctx.Err()
		}
	}
	return m.text, map[string]interface{}{"extractor": "mock"}, m.err
}

func (m *MockTextExtractor) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// panickingFields 在指定字段上panic，其余字段委托给真实提取器
type panickingFields struct {
	*parser.FieldExtractor
	panicOn map[string]bool
}

func (p *panickingFields) Name(text string) string {
	if p.panicOn[FieldName] {
		panic("name extractor failed")
	}
	return p.FieldExtractor.Name(text)
}

func (p *panickingFields) Skills(text string) map[string][]string {
	if p.panicOn[FieldSkills] {
		panic("skills extractor failed")
	}
	return p.FieldExtractor.Skills(text)
}

// mapCache 内存实现的结果缓存
type mapCache struct {
	mu      sync.Mutex
	records map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{records: make(map[string][]byte)}
}

func (c *mapCache) GetCachedResult(ctx context.Context, fileMD5 string) (*types.ResumeRecord, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data, ok := c.records[fileMD5]
	if !ok {
		return nil, false, nil
	}
	var record types.ResumeRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *mapCache) CacheResult(ctx context.Context, fileMD5 string, record *types.ResumeRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[fileMD5] = data
	return nil
}

func newTestParser(t *testing.T, extractor TextExtractor, fields FieldExtractors, opts ...SettingOpt) *ResumeParser {
	t.Helper()
	opts = append([]SettingOpt{WithsetLogger(log.New(io.Discard, "", 0))}, opts...)
	rp, err := CreateParser(
		[]ComponentOpt{WithcompTextextractor(extractor), WithcompFields(fields)},
		opts,
	)
	require.NoError(t, err, "创建解析器不应失败")
	return rp
}

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func assertEmptyRecord(t *testing.T, record *types.ResumeRecord) {
	t.Helper()
	require.NotNil(t, record, "记录不应为nil")
	assert.Equal(t, types.NewEmptyResumeRecord(), record, "应返回规范的空结构")
}

func TestNewResumeParserRequiresComponents(t *testing.T) {
	_, err := NewResumeParser(&Components{}, nil)
	assert.Error(t, err, "缺少文本提取器时应返回错误")

	_, err = NewResumeParser(&Components{TextExtractor: &MockTextExtractor{}}, nil)
	assert.Error(t, err, "缺少字段提取器时应返回错误")

	rp, err := NewResumeParser(&Components{TextExtractor: &MockTextExtractor{}, Fields: parser.NewFieldExtractor()}, nil)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, rp.settings.ExtractionTimeout, "默认提取超时应为30秒")
	assert.NotNil(t, rp.settings.Logger, "应提供默认logger")
}

func TestParseFileSuccess(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		rp := newTestParser(t, &MockTextExtractor{text: sampleText}, parser.NewFieldExtractor(), WithsetConcurrent(concurrent))
		path := writeTempFile(t, []byte("%PDF-1.4 fake"))

		outcome, err := rp.ParseFileWithOutcome(context.Background(), path)
		require.NoError(t, err)

		record := outcome.Record
		assert.Equal(t, "JOHN MICHAEL SMITH", record.PersonalInfo.Name)
		assert.Equal(t, "john.smith@example.com", record.PersonalInfo.Email)
		assert.Equal(t, "+1 (555) 123-4567", record.PersonalInfo.Phone)
		require.Len(t, record.WorkExperience, 1)
		assert.Equal(t, "Acme Corp", record.WorkExperience[0].Company)
		require.Len(t, record.Education, 1)
		assert.Equal(t, "2019", record.Education[0].Year)
		assert.Equal(t, []string{"REST", "Go", "Docker"}, record.Skills[types.SkillTechnical])

		assert.Equal(t, []ParseState{StateStart, StateTextExtracted, StateFieldsExtracted, StateDone}, outcome.States)
		assert.True(t, outcome.Succeeded())
		assert.Empty(t, outcome.Anomalies)
		assert.Equal(t, len(sampleText), outcome.TextLength)
		assert.Len(t, outcome.FileMD5, 32)
	}
}

func TestParseFileNotFound(t *testing.T) {
	extractor := &MockTextExtractor{text: sampleText}
	rp := newTestParser(t, extractor, parser.NewFieldExtractor())

	record, err := rp.ParseFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.Nil(t, record)
	assert.True(t, errors.Is(err, ErrDocumentNotFound), "文件不存在应返回ErrDocumentNotFound")
	assert.Equal(t, 0, extractor.callCount(), "文件不存在时不应调用文本提取器")

	_, err = rp.ParseFile(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrDocumentNotFound, "目录不是可解析的文档")
}

func TestParseFileUnreadableReturnsEmptyRecord(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root用户忽略文件权限")
	}
	extractor := &MockTextExtractor{text: sampleText}
	rp := newTestParser(t, extractor, parser.NewFieldExtractor())

	path := writeTempFile(t, []byte("%PDF-1.4"))
	require.NoError(t, os.Chmod(path, 0o000))
	t.Cleanup(func() { _ = os.Chmod(path, 0o644) })

	outcome, err := rp.ParseFileWithOutcome(context.Background(), path)
	require.NoError(t, err, "文件存在但不可读不是ErrDocumentNotFound")
	assertEmptyRecord(t, outcome.Record)
	assert.ErrorIs(t, outcome.ExtractionErr, ErrExtractionFailed)
	assert.Equal(t, 0, extractor.callCount())
}

func TestParseExtractionFailureReturnsEmptyRecord(t *testing.T) {
	testCases := []struct {
		name      string
		extractor *MockTextExtractor
	}{
		{"提取器返回错误", &MockTextExtractor{err: errors.New("corrupted xref table")}},
		{"提取器panic", &MockTextExtractor{panic: true}},
		{"文本为空", &MockTextExtractor{text: "  \n\t "}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rp := newTestParser(t, tc.extractor, parser.NewFieldExtractor())

			outcome := rp.ParseBytesWithOutcome(context.Background(), []byte("whatever"), "broken.pdf")
			assertEmptyRecord(t, outcome.Record)
			assert.False(t, outcome.Succeeded())
			assert.ErrorIs(t, outcome.ExtractionErr, ErrExtractionFailed)
			assert.Equal(t, []ParseState{StateStart, StateTextExtractionFailed, StateEmptyStructureReturned, StateDone}, outcome.States)
		})
	}
}

func TestParseExtractionTimeout(t *testing.T) {
	extractor := &MockTextExtractor{text: sampleText, delay: 2 * time.Second}
	rp := newTestParser(t, extractor, parser.NewFieldExtractor(), WithsetExtractionTimeout(50*time.Millisecond))

	start := time.Now()
	outcome := rp.ParseBytesWithOutcome(context.Background(), []byte("slow"), "slow.pdf")
	assert.Less(t, time.Since(start), time.Second, "超时后应立即返回")
	assertEmptyRecord(t, outcome.Record)
	assert.ErrorIs(t, outcome.ExtractionErr, ErrExtractionFailed)
}

func TestParseInspectorRejectsNonPDF(t *testing.T) {
	extractor := &MockTextExtractor{text: sampleText}
	rp := newTestParser(t, extractor, parser.NewFieldExtractor())
	rp.components.Inspector = parser.NewPDFInspector()

	outcome := rp.ParseBytesWithOutcome(context.Background(), []byte("not a pdf at all"), "fake.pdf")
	assertEmptyRecord(t, outcome.Record)
	assert.Equal(t, 0, extractor.callCount(), "预检失败时不应调用文本提取器")

	outcome = rp.ParseBytesWithOutcome(context.Background(), testutil.MinimalPDF("JOHN SMITH"), "real.pdf")
	assert.True(t, outcome.Succeeded(), "有效PDF应通过预检")
	assert.Equal(t, "JOHN MICHAEL SMITH", outcome.Record.PersonalInfo.Name)
}

func TestFieldPanicIsIsolated(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		fields := &panickingFields{
			FieldExtractor: parser.NewFieldExtractor(),
			panicOn:        map[string]bool{FieldName: true, FieldSkills: true},
		}
		rp := newTestParser(t, &MockTextExtractor{text: sampleText}, fields, WithsetConcurrent(concurrent))

		outcome := rp.ParseBytesWithOutcome(context.Background(), []byte("pdf"), "resume.pdf")
		record := outcome.Record

		assert.Equal(t, "", record.PersonalInfo.Name, "panic的字段应为空值")
		assert.Equal(t, "john.smith@example.com", record.PersonalInfo.Email, "其他字段不受影响")
		assert.Len(t, record.WorkExperience, 1, "其他字段不受影响")
		assert.Equal(t, types.NewEmptySkills(), record.Skills, "技能字段应为包含全部分类的空表")
		assert.ElementsMatch(t, []string{FieldName, FieldSkills}, outcome.Anomalies)
		assert.True(t, outcome.Succeeded(), "字段异常不影响整体解析")
	}
}

func TestParseIsIdempotent(t *testing.T) {
	rp := newTestParser(t, &MockTextExtractor{text: sampleText}, parser.NewFieldExtractor(), WithsetConcurrent(true))

	first, err := json.Marshal(rp.ParseBytes(context.Background(), []byte("same"), "a.pdf"))
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(rp.ParseBytes(context.Background(), []byte("same"), "a.pdf"))
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again), "相同输入应得到字节级相同的输出")
	}
}

func TestParseUsesResultCache(t *testing.T) {
	extractor := &MockTextExtractor{text: sampleText}
	cache := newMapCache()
	rp := newTestParser(t, extractor, parser.NewFieldExtractor())
	rp.components.Cache = cache

	first := rp.ParseBytesWithOutcome(context.Background(), []byte("cached"), "a.pdf")
	second := rp.ParseBytesWithOutcome(context.Background(), []byte("cached"), "b.pdf")

	assert.False(t, first.Cached)
	assert.True(t, second.Cached, "相同内容的第二次解析应命中缓存")
	assert.Equal(t, []ParseState{StateStart, StateTextExtracted, StateFieldsExtracted, StateDone}, second.States,
		"命中缓存时状态序列与正常解析一致")
	assert.Equal(t, 1, extractor.callCount(), "命中缓存时不应再次提取文本")
	assert.Equal(t, first.Record, second.Record)

	// 失败的解析不写入缓存
	failing := newTestParser(t, &MockTextExtractor{err: errors.New("boom")}, parser.NewFieldExtractor())
	failing.components.Cache = cache
	failing.ParseBytes(context.Background(), []byte("failing"), "c.pdf")
	assert.Len(t, cache.records, 1)
}

func TestParseReader(t *testing.T) {
	rp := newTestParser(t, &MockTextExtractor{text: sampleText}, parser.NewFieldExtractor())

	record := rp.ParseReader(context.Background(), bytes.NewReader([]byte("pdf")), "reader.pdf")
	assert.Equal(t, "JOHN MICHAEL SMITH", record.PersonalInfo.Name)

	record = rp.ParseReader(context.Background(), iotestErrReader{}, "broken.pdf")
	assertEmptyRecord(t, record)
}

type iotestErrReader struct{}

func (iotestErrReader) Read(p []byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestBuildTextExtractor(t *testing.T) {
	cfg := config.DefaultConfig()
	discard := func(prefix string) *log.Logger { return log.New(io.Discard, prefix, 0) }
	ctx := context.Background()

	testCases := []struct {
		backend  string
		expected interface{}
	}{
		{"", &parser.EinoPDFTextExtractor{}},
		{parser.BackendEino, &parser.EinoPDFTextExtractor{}},
		{parser.BackendLedongthuc, &parser.LedongthucPDFExtractor{}},
		{parser.BackendDocconv, &parser.DocconvPDFExtractor{}},
	}
	for _, tc := range testCases {
		cfg.Parser.TextExtractor = tc.backend
		extractor, err := BuildTextExtractor(ctx, cfg, discard)
		require.NoError(t, err, "后端 %q 应创建成功", tc.backend)
		assert.IsType(t, tc.expected, extractor)
	}

	cfg.Parser.TextExtractor = parser.BackendTika
	cfg.Tika.ServerURL = ""
	_, err := BuildTextExtractor(ctx, cfg, discard)
	assert.Error(t, err, "未配置Tika地址时应返回错误")

	cfg.Tika.ServerURL = "http://localhost:9998"
	extractor, err := BuildTextExtractor(ctx, cfg, discard)
	require.NoError(t, err)
	assert.IsType(t, &parser.TikaPDFExtractor{}, extractor)

	cfg.Parser.TextExtractor = "ocr"
	_, err = BuildTextExtractor(ctx, cfg, discard)
	assert.Error(t, err, "未知后端应返回错误")
}

func TestBuildFieldExtractorUsesFallbacks(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Parser.EnableNER = false
	cfg.Parser.Fallback.Name = "HEMANTH JAYARAM"

	fields := BuildFieldExtractor(cfg)
	assert.Equal(t, "HEMANTH JAYARAM", fields.Name("nothing here"))
	assert.Equal(t, parser.DefaultFallbackEmail, fields.Email("nothing here"))
}

func TestParseErrorWrapping(t *testing.T) {
	err := NewNotFoundError("/tmp/x.pdf", "no such file")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
	assert.NotErrorIs(t, err, ErrExtractionFailed)
	assert.Contains(t, err.Error(), "/tmp/x.pdf")

	var parseErr *ParseError
	require.ErrorAs(t, NewFieldError(FieldSkills, "a.pdf", "panic"), &parseErr)
	assert.Equal(t, "extract_skills", parseErr.Op)
}
