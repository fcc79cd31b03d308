package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

const (
	monthPattern     = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?,?`
	dateTokenPattern = `(?:` + monthPattern + `\s+\d{4}|\d{1,2}[/.\-]\d{4}|\d{4})`

	// 超过该词数的非项目符号行被视为职责描述而不是职位抬头
	maxHeaderWords = 12
)

var (
	durationRe = regexp.MustCompile(`(?i)\b` + dateTokenPattern +
		`\s*(?:-|–|—|to|until|till)\s*(?:` + dateTokenPattern + `|present|current|now|date|today)\b`)
	singleDateRe = regexp.MustCompile(`(?i)\b(?:` + monthPattern + `\s+\d{4}|\d{1,2}/\d{4})\b`)

	headerSeparators = []string{" at ", " @ ", " | ", " — ", " – ", " - ", ", "}

	// "Technologies: Go, Kafka"这类带标签的明细行
	labeledDetailRe = regexp.MustCompile(`^[A-Za-z][A-Za-z &/+.\-]{1,30}:\s*\S`)
)

// ExtractExperience 从WORK_EXPERIENCE章节提取工作经历
// 日期区间行或职位/公司抬头行开始一个新条目，项目符号行归入职责
func ExtractExperience(sections []types.ResumeSection) []types.ExperienceEntry {
	entries := []types.ExperienceEntry{}
	var current *types.ExperienceEntry

	flush := func() {
		if current != nil && (current.Title != "" || current.Company != "" || len(current.Responsibilities) > 0) {
			if current.Responsibilities == nil {
				current.Responsibilities = []string{}
			}
			entries = append(entries, *current)
		}
		current = nil
	}
	ensure := func() {
		if current == nil {
			current = &types.ExperienceEntry{}
		}
	}

	for _, raw := range sectionLines(sections, types.SectionWorkExperience) {
		if isBullet(raw) {
			if text := stripBullet(raw); text != "" {
				ensure()
				current.Responsibilities = append(current.Responsibilities, text)
			}
			continue
		}

		line := collapseSpaces(raw)
		duration := findDuration(line)

		if duration != "" {
			if current != nil && (current.Duration != "" || len(current.Responsibilities) > 0) {
				flush()
			}
			ensure()
			current.Duration = duration
			if rest := trimSeparators(strings.Replace(line, duration, " ", 1)); rest != "" {
				assignHeader(current, rest)
			}
			continue
		}

		if looksLikeSentence(line) || (current != nil && labeledDetailRe.MatchString(line)) {
			ensure()
			current.Responsibilities = append(current.Responsibilities, line)
			continue
		}

		// 职责之后或抬头已完整时出现的新抬头行，开始下一个条目
		if current != nil && (len(current.Responsibilities) > 0 ||
			(current.Title != "" && current.Company != "" && current.Duration != "")) {
			flush()
		}
		ensure()
		assignHeader(current, line)
	}
	flush()

	return entries
}

// findDuration 返回行中的日期区间，没有区间时返回单个"月份 年份"日期
func findDuration(line string) string {
	if d := durationRe.FindString(line); d != "" {
		return strings.TrimSpace(d)
	}
	return strings.TrimSpace(singleDateRe.FindString(line))
}

// assignHeader 依次填充职位与公司；两者都已存在时作为职责描述
func assignHeader(entry *types.ExperienceEntry, text string) {
	switch {
	case entry.Title == "":
		if title, company, ok := splitHeader(text); ok {
			entry.Title = title
			if entry.Company == "" {
				entry.Company = company
			}
			return
		}
		entry.Title = text
	case entry.Company == "":
		entry.Company = text
	default:
		entry.Responsibilities = append(entry.Responsibilities, text)
	}
}

// splitHeader 拆分"Backend Engineer at Acme Corp"、"Backend Engineer | Acme Corp"这类抬头
func splitHeader(text string) (title, company string, ok bool) {
	for _, sep := range headerSeparators {
		if idx := strings.Index(text, sep); idx > 0 {
			title = trimSeparators(text[:idx])
			company = trimSeparators(text[idx+len(sep):])
			if title != "" && company != "" {
				return title, company, true
			}
		}
	}
	return "", "", false
}

// looksLikeSentence 以句号结尾或词数较多的行视为职责描述
func looksLikeSentence(line string) bool {
	return strings.HasSuffix(line, ".") || len(strings.Fields(line)) > maxHeaderWords
}
