package parser

import (
	"strings"
	"unicode"

	"resume-parser-go/internal/types"
)

// maxHeadingLength 超过该长度的行不会被识别为章节标题
const maxHeadingLength = 50

// sectionAliases 规范化后的标题文本到章节类型的映射
var sectionAliases = map[string]types.SectionType{}

func init() {
	aliases := map[types.SectionType][]string{
		types.SectionSummary: {
			"summary", "professional summary", "career summary", "profile", "professional profile",
			"objective", "career objective", "about me", "about", "personal statement",
		},
		types.SectionEducation: {
			"education", "academic background", "academic qualifications", "qualifications",
			"educational qualifications", "education and training", "academics", "academic details",
		},
		types.SectionWorkExperience: {
			"experience", "work experience", "professional experience", "employment", "employment history",
			"work history", "career history", "internships", "internship", "internship experience",
			"relevant experience",
		},
		types.SectionSkills: {
			"skills", "technical skills", "key skills", "core competencies", "competencies", "expertise",
			"technologies", "skills and abilities", "soft skills", "core skills", "skill set", "skillset",
			"areas of expertise",
		},
		types.SectionLanguages: {
			"languages", "language skills", "languages known", "language proficiency",
		},
		types.SectionCertifications: {
			"certifications", "certification", "certificates", "licenses and certifications",
			"certifications and training", "training", "trainings", "courses",
		},
		types.SectionProjects: {
			"projects", "personal projects", "academic projects", "portfolio", "key projects",
		},
		types.SectionAwards: {
			"awards", "honors", "achievements", "awards and honors", "honors and awards", "accomplishments",
		},
	}
	for sectionType, names := range aliases {
		for _, name := range names {
			sectionAliases[name] = sectionType
		}
	}
}

// normalizeHeading 小写化、将&替换为and、去除标点并合并空白
func normalizeHeading(line string) string {
	line = strings.ReplaceAll(strings.ToLower(line), "&", " and ")
	var b strings.Builder
	for _, r := range line {
		switch {
		case unicode.IsLetter(r):
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '-', r == '/':
			b.WriteRune(' ')
		}
	}
	return collapseSpaces(b.String())
}

// matchHeading 判断行是否为章节标题
// 支持"Skills: Go, Docker"这类行内标题，rest为冒号后的内容；项目符号行不是标题
func matchHeading(line string) (sectionType types.SectionType, title string, rest string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" || isBullet(line) {
		return "", "", "", false
	}

	if len(line) < maxHeadingLength {
		if t, found := sectionAliases[normalizeHeading(line)]; found {
			return t, strings.TrimRight(line, ": "), "", true
		}
	}

	if idx := strings.Index(line, ":"); idx > 0 && idx < maxHeadingLength {
		head := line[:idx]
		if t, found := sectionAliases[normalizeHeading(head)]; found {
			return t, strings.TrimSpace(head), strings.TrimSpace(line[idx+1:]), true
		}
	}
	return "", "", "", false
}

// opensInlineSection 行内标题只在页眉、摘要和列表型章节中切换章节
// 经历、教育、项目中的"Technologies: ..."等行属于当前条目
func opensInlineSection(current types.SectionType) bool {
	switch current {
	case types.SectionHeader, types.SectionSummary,
		types.SectionSkills, types.SectionLanguages, types.SectionCertifications:
		return true
	}
	return false
}

// SplitSections 按章节标题切分文本，第一个标题之前的内容归入HEADER章节
func SplitSections(text string) []types.ResumeSection {
	sections := []types.ResumeSection{{Type: types.SectionHeader}}
	current := &sections[0]

	for _, line := range nonEmptyLines(text) {
		if sectionType, title, rest, ok := matchHeading(line); ok && (rest == "" || opensInlineSection(current.Type)) {
			sections = append(sections, types.ResumeSection{Type: sectionType, Title: title})
			current = &sections[len(sections)-1]
			if rest != "" {
				current.Lines = append(current.Lines, rest)
			}
			continue
		}
		current.Lines = append(current.Lines, line)
	}

	return sections
}

// inlineSkillLines 返回其他章节中以技能标签开头的行内容，例如经历中的"Technologies: Go, Kafka"
func inlineSkillLines(sections []types.ResumeSection) []string {
	var lines []string
	for _, section := range sections {
		if section.Type == types.SectionSkills {
			continue
		}
		for _, line := range section.Lines {
			if t, _, rest, ok := matchHeading(line); ok && t == types.SectionSkills && rest != "" {
				lines = append(lines, rest)
			}
		}
	}
	return lines
}

// sectionLines 合并指定类型的所有章节内容
func sectionLines(sections []types.ResumeSection, sectionType types.SectionType) []string {
	var lines []string
	for _, section := range sections {
		if section.Type == sectionType {
			lines = append(lines, section.Lines...)
		}
	}
	return lines
}

// hasSection 判断是否存在指定类型的章节
func hasSection(sections []types.ResumeSection, sectionType types.SectionType) bool {
	for _, section := range sections {
		if section.Type == sectionType {
			return true
		}
	}
	return false
}
