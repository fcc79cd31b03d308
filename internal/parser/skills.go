package parser

import (
	"regexp"
	"sort"
	"strings"

	"resume-parser-go/internal/types"
)

// skillKeyword 一个已知技能及其匹配规则
type skillKeyword struct {
	name          string
	category      string
	caseSensitive bool // "Go"、"REST"这类容易与普通单词混淆的技能只按原样匹配
	re            *regexp.Regexp
}

var skillKeywords []*skillKeyword

func init() {
	add := func(category string, caseSensitive bool, names ...string) {
		for _, name := range names {
			flags := "(?i)"
			if caseSensitive {
				flags = ""
			}
			skillKeywords = append(skillKeywords, &skillKeyword{
				name:          name,
				category:      category,
				caseSensitive: caseSensitive,
				re:            regexp.MustCompile(flags + `(?:^|[^A-Za-z0-9+#.])` + regexp.QuoteMeta(name) + `(?:$|[^A-Za-z0-9+#])`),
			})
		}
	}

	add(types.SkillTechnical, true, "Go", "REST", "Excel", "Swift", "Rust", "Spring")
	add(types.SkillTechnical, false,
		"Golang", "Python", "Java", "JavaScript", "TypeScript", "C++", "C#", "Ruby", "PHP",
		"Kotlin", "Scala", "SQL", "HTML", "CSS", "React", "Vue", "Angular", "Node.js",
		"Django", "Flask", "Docker", "Kubernetes", "PostgreSQL", "MySQL", "MongoDB",
		"Redis", "Kafka", "RabbitMQ", "AWS", "Azure", "GCP", "GraphQL", "Microservices",
		"Git", "CI/CD", "Linux", "Terraform", "Machine Learning", "Deep Learning",
		"Artificial Intelligence", "Data Analysis", "Data Science", "DevOps", "TensorFlow", "PyTorch",
		"Pandas", "NumPy", "Tableau", "Power BI", "MATLAB", "AutoCAD", "SolidWorks",
		"Automation", "Embedded Systems", "PLC",
	)
	add(types.SkillSoft, false,
		"Communication", "Teamwork", "Leadership", "Problem Solving", "Time Management",
		"Critical Thinking", "Adaptability", "Collaboration", "Creativity", "Attention to Detail",
		"Quick Learner", "Project Management", "Negotiation", "Presentation", "Decision Making",
		"Interpersonal Skills", "Mentoring",
	)
	add(types.SkillLanguages, false,
		"English", "Hindi", "Kannada", "Tamil", "Telugu", "Marathi", "Bengali", "Malayalam", "Urdu",
		"Spanish", "French", "German", "Mandarin", "Chinese", "Japanese", "Korean", "Arabic",
		"Portuguese", "Russian", "Italian",
	)
	add(types.SkillCertifications, true,
		"PMP", "CCNA", "CCNP", "CISSP", "CPA", "CFA", "ITIL", "PRINCE2", "CSM",
	)
}

var (
	skillDelimiterRe  = regexp.MustCompile(`[,;|•●▪·\n]+`)
	skillLabelRe      = regexp.MustCompile(`^[^:]{1,40}:\s*`)
	parenthesizedRe   = regexp.MustCompile(`\s*\([^)]*\)`)
	proficiencySuffix = regexp.MustCompile(`(?i)\s*[-–]\s*(?:native|fluent|basic|intermediate|advanced|proficient|beginner)\s*$`)
)

// skillCandidate 带有首次出现位置的候选技能
type skillCandidate struct {
	name     string
	category string
	position int
	order    int
}

// ExtractSkills 对技能做分类关键字匹配，并补充SKILLS/LANGUAGES/CERTIFICATIONS章节中的条目
// 结果按在文本中首次出现的位置排序，不区分大小写去重
func ExtractSkills(text string, sections []types.ResumeSection) map[string][]string {
	skills := types.NewEmptySkills()
	lowerText := strings.ToLower(text)

	var candidates []skillCandidate
	addCandidate := func(name, category string, position int) {
		candidates = append(candidates, skillCandidate{name: name, category: category, position: position, order: len(candidates)})
	}

	languageScope := text
	if hasSection(sections, types.SectionLanguages) {
		languageScope = strings.Join(sectionLines(sections, types.SectionLanguages), "\n")
	}

	for _, kw := range skillKeywords {
		scope := text
		if kw.category == types.SkillLanguages {
			scope = languageScope
		}
		loc := kw.re.FindStringIndex(scope)
		if loc == nil {
			continue
		}
		position := loc[0]
		if scope != text {
			position = positionInText(text, lowerText, kw.name, kw.caseSensitive)
		}
		addCandidate(kw.name, kw.category, position)
	}

	skillLines := append(sectionLines(sections, types.SectionSkills), inlineSkillLines(sections)...)
	for _, token := range splitSkillTokens(skillLines) {
		addCandidate(token, categorizeToken(token, types.SkillTechnical), positionInText(text, lowerText, token, false))
	}
	for _, token := range splitSkillTokens(sectionLines(sections, types.SectionLanguages)) {
		addCandidate(token, types.SkillLanguages, positionInText(text, lowerText, token, false))
	}
	for _, raw := range sectionLines(sections, types.SectionCertifications) {
		if line := stripBullet(raw); len(line) > 1 {
			addCandidate(line, types.SkillCertifications, positionInText(text, lowerText, line, false))
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].position != candidates[j].position {
			return candidates[i].position < candidates[j].position
		}
		return candidates[i].order < candidates[j].order
	})

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		key := strings.ToLower(c.name)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills[c.category] = append(skills[c.category], c.name)
	}

	return skills
}

// splitSkillTokens 按常见分隔符拆分技能行，并去掉"Languages:"这类前缀标签
func splitSkillTokens(lines []string) []string {
	var tokens []string
	for _, raw := range lines {
		line := skillLabelRe.ReplaceAllString(stripBullet(raw), "")
		for _, part := range skillDelimiterRe.Split(line, -1) {
			part = proficiencySuffix.ReplaceAllString(parenthesizedRe.ReplaceAllString(part, ""), "")
			part = trimSeparators(stripBullet(part))
			if len(part) > 1 && len(part) < 50 && !looksLikeSentence(part) {
				tokens = append(tokens, part)
			}
		}
	}
	return tokens
}

// categorizeToken 已知关键字使用其分类，未知词条使用默认分类
func categorizeToken(token, defaultCategory string) string {
	for _, kw := range skillKeywords {
		if kw.caseSensitive {
			if token == kw.name {
				return kw.category
			}
		} else if strings.EqualFold(token, kw.name) {
			return kw.category
		}
	}
	return defaultCategory
}

// positionInText 返回词条在文本中首次出现的字节位置，找不到时返回文本长度
func positionInText(text, lowerText, token string, caseSensitive bool) int {
	var idx int
	if caseSensitive {
		idx = strings.Index(text, token)
	} else {
		idx = strings.Index(lowerText, strings.ToLower(token))
	}
	if idx < 0 {
		return len(text)
	}
	return idx
}
