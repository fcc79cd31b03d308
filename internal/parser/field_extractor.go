package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

// 未配置占位值时使用的默认值
const (
	DefaultFallbackName  = "Unknown"
	DefaultFallbackEmail = "Not found"
	DefaultFallbackPhone = "Not found"

	defaultHeaderLines = 5
	defaultNameWindow  = 1000
	defaultNERWindow   = 2000
)

var (
	// 标签只对"name"不区分大小写，姓名部分要求首字母大写且不跨行
	labeledNameRe = regexp.MustCompile(`\b(?i:name)\s*[:|\-]?\s*([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})`)
	leadingNameRe = regexp.MustCompile(`^([A-Z][a-z]+(?:[ \t]+[A-Z][a-z]+){1,2})\s+`)

	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`[\+\(]?[1-9][0-9 .\-\(\)]{8,}[0-9]`)

	addressRe = regexp.MustCompile(`(?im)^[ \t]*(?:address|location|residence)[ \t]*[:\-][ \t]*(.+?)[ \t]*$`)
)

// FieldExtractor 从简历文本中提取各个字段
// 所有方法都是输入文本的纯函数，可以安全地并发调用
type FieldExtractor struct {
	fallbackName  string
	fallbackEmail string
	fallbackPhone string

	headerLines int
	nameWindow  int
	nerWindow   int

	recognizer PersonRecognizer
}

// FieldOption 字段提取器的配置选项
type FieldOption func(*FieldExtractor)

// WithFallbacks 配置未找到时返回的占位值，空字符串表示保留默认值
func WithFallbacks(name, email, phone string) FieldOption {
	return func(f *FieldExtractor) {
		if name != "" {
			f.fallbackName = name
		}
		if email != "" {
			f.fallbackEmail = email
		}
		if phone != "" {
			f.fallbackPhone = phone
		}
	}
}

// WithRecognizer 配置命名实体识别器，传入nil表示禁用
func WithRecognizer(recognizer PersonRecognizer) FieldOption {
	return func(f *FieldExtractor) {
		f.recognizer = recognizer
	}
}

// WithWindows 配置姓名启发式的扫描范围
func WithWindows(headerLines, nameWindow, nerWindow int) FieldOption {
	return func(f *FieldExtractor) {
		if headerLines > 0 {
			f.headerLines = headerLines
		}
		if nameWindow > 0 {
			f.nameWindow = nameWindow
		}
		if nerWindow > 0 {
			f.nerWindow = nerWindow
		}
	}
}

// NewFieldExtractor 创建字段提取器，默认不启用命名实体识别
func NewFieldExtractor(options ...FieldOption) *FieldExtractor {
	f := &FieldExtractor{
		fallbackName:  DefaultFallbackName,
		fallbackEmail: DefaultFallbackEmail,
		fallbackPhone: DefaultFallbackPhone,
		headerLines:   defaultHeaderLines,
		nameWindow:    defaultNameWindow,
		nerWindow:     defaultNERWindow,
	}
	for _, option := range options {
		option(f)
	}
	return f
}

// Name 按启发式链依次尝试，返回第一个非空结果；全部失败时返回占位值
func (f *FieldExtractor) Name(text string) string {
	header := firstLines(text, f.headerLines)

	// 1. 前几行中全大写、2-3个词、不含数字的短行，标题行不算（见 isHeadingLike）
	for _, raw := range header {
		line := strings.TrimSpace(raw)
		if isAllUpper(line) && tokenCountBetween(line, 2, 3) && !containsDigit(line) && !isHeadingLike(line) {
			return line
		}
	}

	window := firstRunes(text, f.nameWindow)

	// 2. "Name: Xxx Yyy" 标签形式
	if m := labeledNameRe.FindStringSubmatch(window); m != nil {
		return m[1]
	}

	// 3. 命名实体识别
	if f.recognizer != nil {
		for _, person := range f.recognizer.Persons(firstRunes(text, f.nerWindow)) {
			if len(strings.Fields(person)) >= 2 {
				return strings.TrimSpace(person)
			}
		}
	}

	// 4. 前几行中每个词首字母大写的短行
	for _, raw := range header {
		line := strings.TrimSpace(raw)
		if tokenCountBetween(line, 2, 3) && allTokensCapitalized(line) && !containsDigit(line) && !isHeadingLike(line) {
			return line
		}
	}

	// 5. 文本开头的姓名模式
	if m := leadingNameRe.FindStringSubmatch(window); m != nil {
		return m[1]
	}

	return f.fallbackName
}

// Email 返回文本中第一个邮箱地址
func (f *FieldExtractor) Email(text string) string {
	if email := emailRe.FindString(text); email != "" {
		return email
	}
	return f.fallbackEmail
}

// Phone 返回文本中第一个电话号码，保留原始格式
func (f *FieldExtractor) Phone(text string) string {
	if phone := phoneRe.FindString(text); phone != "" {
		return phone
	}
	return f.fallbackPhone
}

// Address 返回"Address:"/"Location:"标签后的内容，未找到时返回空字符串
func (f *FieldExtractor) Address(text string) string {
	if m := addressRe.FindStringSubmatch(firstRunes(text, f.nameWindow)); m != nil {
		return trimSeparators(m[1])
	}
	return ""
}

// PersonalInfo 提取个人信息
func (f *FieldExtractor) PersonalInfo(text string) types.PersonalInfo {
	return types.PersonalInfo{
		Name:    f.Name(text),
		Email:   f.Email(text),
		Phone:   f.Phone(text),
		Address: f.Address(text),
	}
}

// Education 提取教育经历
func (f *FieldExtractor) Education(text string) []types.EducationEntry {
	return ExtractEducation(SplitSections(text))
}

// Skills 提取并分类技能
func (f *FieldExtractor) Skills(text string) map[string][]string {
	return ExtractSkills(text, SplitSections(text))
}

// Experience 提取工作经历
func (f *FieldExtractor) Experience(text string) []types.ExperienceEntry {
	return ExtractExperience(SplitSections(text))
}

func tokenCountBetween(line string, min, max int) bool {
	n := len(strings.Fields(line))
	return n >= min && n <= max
}

func allTokensCapitalized(line string) bool {
	for _, word := range strings.Fields(line) {
		if !startsUpper(word) {
			return false
		}
	}
	return true
}

// isHeadingLike 排除"CURRICULUM VITAE"、"WORK EXPERIENCE"这类标题行
// 规则1和规则4中首个满足条件的行若是标题则跳过，继续看下一行
func isHeadingLike(line string) bool {
	normalized := normalizeHeading(line)
	if normalized == "curriculum vitae" || normalized == "resume" {
		return true
	}
	_, ok := sectionAliases[normalized]
	return ok
}
