package parser

import (
	"regexp"
	"strings"

	"resume-parser-go/internal/types"
)

var (
	degreeRe = regexp.MustCompile(`(?i)\b(?:bachelor(?:'s)?|master(?:'s)?|diploma|doctorate|associate(?:'s)? degree|ph\.?\s?d\b|mba\b|b\.?tech\b|m\.?tech\b|b\.?sc\b|m\.?sc\b|b\.e\b|m\.e\b|b\.s\b|m\.s\b|b\.a\b|m\.a\b|b\.com\b|m\.com\b|high school|higher secondary|secondary school|pre-university)`)

	institutionRe = regexp.MustCompile(`(?i)\b(?:university|college|institute|school|academy|polytechnic|iit|nit)\b`)

	yearRe = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	gpaAfterRe  = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d{1,2})?)\s*(?:/\s*\d{1,2}(?:\.\d{1,2})?\s*)?(c?gpa)\b`)
	gpaBeforeRe = regexp.MustCompile(`(?i)\b(c?gpa)\s*[:\-]?\s*(\d{1,2}(?:\.\d{1,2})?)`)

	// 学历行中需要剥离的日期/成绩片段
	eduNoiseRe = regexp.MustCompile(`(?i)\(?\s*(?:(?:expected|graduated|graduation)\s*(?:in|:)?\s*)?(?:` + monthPattern + `\s+)?(?:\d{1,2}/)?(?:19|20)\d{2}\b\s*(?:[-–—]|to)?\s*(?:present|current)?\)?`)
)

// ExtractEducation 从EDUCATION章节提取教育经历
// 包含学位关键字的行开始一个新条目；紧随其后的院校行、年份与成绩归入该条目
func ExtractEducation(sections []types.ResumeSection) []types.EducationEntry {
	entries := []types.EducationEntry{}
	var current *types.EducationEntry
	var pendingYear string

	flush := func() {
		if current != nil && (current.Degree != "" || current.Institution != "") {
			entries = append(entries, *current)
		}
		current = nil
	}

	for _, raw := range sectionLines(sections, types.SectionEducation) {
		line := stripBullet(raw)
		if line == "" {
			continue
		}

		isDegree := degreeRe.MatchString(line)
		isInstitution := institutionRe.MatchString(line)

		switch {
		case isDegree:
			if current != nil && current.Degree != "" {
				flush()
			}
			if current == nil {
				current = &types.EducationEntry{Year: pendingYear}
				pendingYear = ""
			}
			degree, institution := splitDegreeLine(line)
			current.Degree = degree
			if institution != "" && current.Institution == "" {
				current.Institution = institution
			}
		case isInstitution && (current == nil || current.Institution != ""):
			flush()
			current = &types.EducationEntry{Institution: cleanEducationText(line), Year: pendingYear}
			pendingYear = ""
		case current == nil:
			// 条目开始前的年份行（例如日期写在学位之前）
			if years := yearRe.FindAllString(line, -1); len(years) > 0 {
				pendingYear = years[len(years)-1]
			}
			continue
		case current.Institution == "" && !isMostlyDate(line) && !isGPALine(line):
			current.Institution = cleanEducationText(line)
		case isMostlyDate(line):
			// 只有日期的行仅用于更新年份
		default:
			current.Details = append(current.Details, line)
		}

		if years := yearRe.FindAllString(line, -1); len(years) > 0 {
			current.Year = years[len(years)-1]
		}
		if gpa := extractGPA(line); gpa != "" && current.GPA == "" {
			current.GPA = gpa
		}
	}
	flush()

	return entries
}

// splitDegreeLine 将"B.Sc, Some University"这类行拆分为学位与院校
// 除" | "外，分隔符右侧必须是院校，否则整行作为学位（例如"Master of Science: Data Engineering"）
func splitDegreeLine(line string) (degree, institution string) {
	cleaned := cleanEducationText(line)
	for _, sep := range degreeSeparators {
		idx := strings.Index(cleaned, sep.text)
		if sep.last {
			idx = strings.LastIndex(cleaned, sep.text)
		}
		if idx <= 0 {
			continue
		}
		left := trimSeparators(cleaned[:idx])
		right := trimSeparators(cleaned[idx+len(sep.text):])
		if right == "" || !degreeRe.MatchString(left) {
			continue
		}
		if sep.needsInstitution && !institutionRe.MatchString(right) {
			continue
		}
		return left, right
	}
	return cleaned, ""
}

// degreeSeparators 按优先级排列；逗号取最后一个，使专业留在学位中
var degreeSeparators = []struct {
	text             string
	last             bool
	needsInstitution bool
}{
	{text: ", ", last: true, needsInstitution: true},
	{text: " | "},
	{text: " - ", needsInstitution: true},
	{text: " – ", needsInstitution: true},
	{text: " — ", needsInstitution: true},
	{text: ":", needsInstitution: true},
}

// cleanEducationText 去除日期与成绩片段
func cleanEducationText(line string) string {
	line = gpaAfterRe.ReplaceAllString(line, "")
	line = gpaBeforeRe.ReplaceAllString(line, "")
	line = eduNoiseRe.ReplaceAllString(line, " ")
	return trimSeparators(line)
}

// extractGPA 返回形如"3.80 GPA"的成绩
func extractGPA(line string) string {
	if m := gpaAfterRe.FindStringSubmatch(line); m != nil {
		return m[1] + " " + strings.ToUpper(m[2])
	}
	if m := gpaBeforeRe.FindStringSubmatch(line); m != nil {
		return m[2] + " " + strings.ToUpper(m[1])
	}
	return ""
}

func isGPALine(line string) bool {
	return extractGPA(line) != ""
}

// isMostlyDate 去除日期后不剩有效文字
func isMostlyDate(line string) bool {
	return yearRe.MatchString(line) && len(cleanEducationText(line)) < 3
}
