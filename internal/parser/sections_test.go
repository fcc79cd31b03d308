package parser

import (
	"testing"

	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitSections(t *testing.T) {
	sections := SplitSections(sampleResume)

	var sectionTypes []types.SectionType
	for _, s := range sections {
		sectionTypes = append(sectionTypes, s.Type)
	}
	assert.Equal(t, []types.SectionType{
		types.SectionHeader,
		types.SectionSummary,
		types.SectionWorkExperience,
		types.SectionEducation,
		types.SectionSkills,
		types.SectionLanguages,
		types.SectionCertifications,
	}, sectionTypes, "章节顺序应与文本一致")

	require.Len(t, sections[0].Lines, 3, "HEADER章节应包含标题前的三行")
	assert.Equal(t, "JOHN MICHAEL SMITH", sections[0].Lines[0])
	assert.Equal(t, "EXPERIENCE", sections[2].Title)
	assert.Len(t, sections[2].Lines, 6)
}

func TestMatchHeading(t *testing.T) {
	testCases := []struct {
		line     string
		expected types.SectionType
		rest     string
		ok       bool
	}{
		{"WORK EXPERIENCE", types.SectionWorkExperience, "", true},
		{"Education:", types.SectionEducation, "", true},
		{"Skills & Abilities", types.SectionSkills, "", true},
		{"Technical Skills: Go, Docker", types.SectionSkills, "Go, Docker", true},
		{"Languages Known", types.SectionLanguages, "", true},
		{"Location: Austin, TX", "", "", false},
		{"• Training: AWS workshop", "", "", false},
		{"- Skills", "", "", false},
		{"Experienced engineer with a strong background in education technology", "", "", false},
		{"", "", "", false},
	}

	for _, tc := range testCases {
		sectionType, _, rest, ok := matchHeading(tc.line)
		assert.Equal(t, tc.ok, ok, "标题识别结果不符合预期: %q", tc.line)
		assert.Equal(t, tc.expected, sectionType, "章节类型不符合预期: %q", tc.line)
		assert.Equal(t, tc.rest, rest, "行内内容不符合预期: %q", tc.line)
	}
}

func TestSplitSectionsWithoutHeadings(t *testing.T) {
	sections := SplitSections("just some text\nwithout any headings")
	require.Len(t, sections, 1)
	assert.Equal(t, types.SectionHeader, sections[0].Type)
	assert.Len(t, sections[0].Lines, 2)

	assert.Len(t, SplitSections(""), 1, "空文本只有一个空的HEADER章节")
}

func TestExtractEducation(t *testing.T) {
	entries := ExtractEducation(SplitSections(sampleResume))

	require.Len(t, entries, 1)
	assert.Equal(t, types.EducationEntry{
		Degree:      "Bachelor of Science in Computer Science",
		Institution: "University of Texas, Austin",
		Year:        "2019",
		GPA:         "3.80 GPA",
		Details:     []string{"GPA: 3.80", "Dean's List"},
	}, entries[0])
}

func TestExtractEducationMultipleEntries(t *testing.T) {
	text := `EDUCATION
Master of Science: Data Engineering
Stanford University (2021)
Bachelor of Engineering, Anna University
2014 - 2018
8.5 CGPA
`
	entries := ExtractEducation(SplitSections(text))

	require.Len(t, entries, 2, "每个学位行应开始一个新条目")

	assert.Equal(t, "Master of Science: Data Engineering", entries[0].Degree, "专业保留在学位中")
	assert.Equal(t, "Stanford University", entries[0].Institution)
	assert.Equal(t, "2021", entries[0].Year)

	assert.Equal(t, "Bachelor of Engineering", entries[1].Degree)
	assert.Equal(t, "Anna University", entries[1].Institution)
	assert.Equal(t, "2018", entries[1].Year, "取最后出现的年份")
	assert.Equal(t, "8.5 CGPA", entries[1].GPA)
	assert.Equal(t, []string{"8.5 CGPA"}, entries[1].Details, "只有日期的行不计入详情")
}

func TestExtractEducationSubjectAfterColon(t *testing.T) {
	text := `EDUCATION
Master of Science: Data Engineering
Stanford University, 2020
`
	entries := ExtractEducation(SplitSections(text))

	require.Len(t, entries, 1, "院校行应补全上一条目而不是开始新条目")
	assert.Equal(t, "Master of Science: Data Engineering", entries[0].Degree, "冒号后的专业不是院校")
	assert.Equal(t, "Stanford University", entries[0].Institution)
	assert.Equal(t, "2020", entries[0].Year)
}

func TestExtractEducationInstitutionFollowsDegree(t *testing.T) {
	text := `EDUCATION
Bachelor of Engineering: Artificial Intelligence & Machine Learning
Expected in 06/2026
Ramaiah Institute of Technology - Bengaluru, India
Diploma: Electrical & Electronics Engineering
2023
8.32 GPA/CGPA
`
	entries := ExtractEducation(SplitSections(text))

	require.Len(t, entries, 2)
	assert.Equal(t, "Bachelor of Engineering: Artificial Intelligence & Machine Learning", entries[0].Degree)
	assert.Equal(t, "Ramaiah Institute of Technology - Bengaluru, India", entries[0].Institution, "院校归属于它前面的学士学位")
	assert.Equal(t, "2026", entries[0].Year)

	assert.Equal(t, "Diploma: Electrical & Electronics Engineering", entries[1].Degree)
	assert.Equal(t, "", entries[1].Institution, "专业不应被当作院校")
	assert.Equal(t, "2023", entries[1].Year)
	assert.Equal(t, "8.32 GPA", entries[1].GPA)
}

func TestSplitDegreeLine(t *testing.T) {
	testCases := []struct {
		line        string
		degree      string
		institution string
	}{
		{"B.Sc, Delhi University", "B.Sc", "Delhi University"},
		{"B.Sc, Physics, Delhi University", "B.Sc, Physics", "Delhi University"},
		{"MBA | Harvard Business School", "MBA", "Harvard Business School"},
		{"Bachelor of Science - Computer Science", "Bachelor of Science - Computer Science", ""},
		{"Master of Science: Data Engineering, Stanford University", "Master of Science: Data Engineering", "Stanford University"},
	}

	for _, tc := range testCases {
		degree, institution := splitDegreeLine(tc.line)
		assert.Equal(t, tc.degree, degree, "学位不符合预期: %q", tc.line)
		assert.Equal(t, tc.institution, institution, "院校不符合预期: %q", tc.line)
	}
}

func TestExtractEducationEmpty(t *testing.T) {
	entries := ExtractEducation(SplitSections("JOHN SMITH\nno education section"))
	assert.NotNil(t, entries, "没有教育经历时返回空切片而不是nil")
	assert.Empty(t, entries)
}

func TestExtractExperience(t *testing.T) {
	entries := ExtractExperience(SplitSections(sampleResume))

	require.Len(t, entries, 2)
	assert.Equal(t, types.ExperienceEntry{
		Title:    "Backend Engineer",
		Company:  "Acme Corp",
		Duration: "Jan 2020 - Present",
		Responsibilities: []string{
			"Built REST APIs in Go serving 2M requests per day",
			"Led migration to Kubernetes",
		},
	}, entries[0])
	assert.Equal(t, types.ExperienceEntry{
		Title:            "Intern",
		Company:          "Initech",
		Duration:         "June 2019",
		Responsibilities: []string{"Wrote Python scripts for data analysis"},
	}, entries[1])
}

func TestExtractExperienceHeaderVariants(t *testing.T) {
	text := `WORK HISTORY
Senior Developer | Globex
03/2018 to 12/2020
Designed the billing pipeline and reduced costs by a third.
Data Analyst
Umbrella Corp
`
	entries := ExtractExperience(SplitSections(text))

	require.Len(t, entries, 2)
	assert.Equal(t, "Senior Developer", entries[0].Title)
	assert.Equal(t, "Globex", entries[0].Company)
	assert.Equal(t, "03/2018 to 12/2020", entries[0].Duration)
	assert.Equal(t, []string{"Designed the billing pipeline and reduced costs by a third."}, entries[0].Responsibilities)

	assert.Equal(t, "Data Analyst", entries[1].Title)
	assert.Equal(t, "Umbrella Corp", entries[1].Company)
	assert.NotNil(t, entries[1].Responsibilities, "职责字段始终存在")
	assert.Empty(t, entries[1].Responsibilities)
}

func TestExperienceKeepsLabeledLinesInEntry(t *testing.T) {
	text := `EXPERIENCE
Backend Engineer at Acme Corp
Jan 2020 - Present
• Built billing APIs
Technologies: Go, Kafka, PostgreSQL
Software Engineer at Initech
Jan 2017 - Dec 2019
• Maintained reporting jobs
• Training: internal Go workshop
`
	sections := SplitSections(text)

	var sectionTypes []types.SectionType
	for _, s := range sections {
		sectionTypes = append(sectionTypes, s.Type)
	}
	assert.Equal(t, []types.SectionType{types.SectionHeader, types.SectionWorkExperience}, sectionTypes,
		"经历中的行内标签不应切换章节")

	entries := ExtractExperience(sections)
	require.Len(t, entries, 2, "标签行之后的工作经历不应丢失")
	assert.Equal(t, types.ExperienceEntry{
		Title:            "Backend Engineer",
		Company:          "Acme Corp",
		Duration:         "Jan 2020 - Present",
		Responsibilities: []string{"Built billing APIs", "Technologies: Go, Kafka, PostgreSQL"},
	}, entries[0])
	assert.Equal(t, types.ExperienceEntry{
		Title:            "Software Engineer",
		Company:          "Initech",
		Duration:         "Jan 2017 - Dec 2019",
		Responsibilities: []string{"Maintained reporting jobs", "Training: internal Go workshop"},
	}, entries[1])

	skills := ExtractSkills(text, sections)
	assert.Subset(t, skills[types.SkillTechnical], []string{"Go", "Kafka", "PostgreSQL"}, "标签行中的技术栈计入技能")
	assert.NotContains(t, skills[types.SkillTechnical], "Software Engineer at Initech")
	assert.NotContains(t, skills[types.SkillTechnical], "Jan 2017 - Dec 2019")
}

func TestSplitSectionsInlineHeadingInHeader(t *testing.T) {
	sections := SplitSections("JANE DOE\nSkills: Go, Docker\nEXPERIENCE\nEngineer at Globex")
	require.Len(t, sections, 3)
	assert.Equal(t, types.SectionSkills, sections[1].Type, "页眉中的行内标题开始新章节")
	assert.Equal(t, []string{"Go, Docker"}, sections[1].Lines)
	assert.Equal(t, types.SectionWorkExperience, sections[2].Type)
}

func TestExtractExperienceMonthNamesDoNotMatchWords(t *testing.T) {
	assert.Equal(t, "", findDuration("Marketing Manager"), "Marketing不应被识别为月份")
	assert.Equal(t, "Mar 2019 - Jun 2021", findDuration("Marketing Manager Mar 2019 - Jun 2021"))
}

func TestExtractSkills(t *testing.T) {
	skills := ExtractSkills(sampleResume, SplitSections(sampleResume))

	assert.Equal(t, map[string][]string{
		types.SkillTechnical:      {"Go", "Docker", "REST", "Kubernetes", "Python", "Data Analysis", "PostgreSQL", "AWS"},
		types.SkillSoft:           {"Teamwork", "Communication"},
		types.SkillLanguages:      {"English", "Spanish"},
		types.SkillCertifications: {"AWS Certified Developer"},
	}, skills)
}

func TestExtractSkillsAvoidsCommonWords(t *testing.T) {
	text := "I like to go for a rest after work and excel at chess."
	skills := ExtractSkills(text, SplitSections(text))

	assert.Empty(t, skills[types.SkillTechnical], "普通单词不应被识别为技能")
	for _, category := range types.SkillCategories {
		assert.Contains(t, skills, category, "所有分类都应该存在")
	}
}

func TestExtractSkillsLanguagesScopedToSection(t *testing.T) {
	text := `JANE DOE
Taught English literature to high school students.

LANGUAGES
Hindi - Native, Kannada
`
	skills := ExtractSkills(text, SplitSections(text))
	assert.Equal(t, []string{"Hindi", "Kannada"}, skills[types.SkillLanguages], "存在LANGUAGES章节时只统计该章节中的语言")
}

func TestSplitSkillTokens(t *testing.T) {
	tokens := splitSkillTokens([]string{
		"Languages: Go; Python | CI/CD",
		"• Problem Solving, Leadership (team of 5)",
	})
	assert.Equal(t, []string{"Go", "Python", "CI/CD", "Problem Solving", "Leadership"}, tokens)
}
