package handler

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
	"testing"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewBuilder_SanitizesPDFText(t *testing.T) {
	record := types.NewEmptyResumeRecord()
	record.PersonalInfo.Name = `<script>alert("x")</script>Jane Doe`
	record.PersonalInfo.Email = "jane@example.com"
	record.Skills[types.SkillTechnical] = []string{"<b>Go</b>", "C & C++", "   "}
	record.WorkExperience = []types.ExperienceEntry{{
		Title:            "Engineer",
		Company:          `<a href="javascript:alert(1)">Acme</a>`,
		Responsibilities: []string{"Shipped <img src=x onerror=alert(1)> features"},
	}}

	view := newViewBuilder().Build(record)
	assert.Equal(t, template.HTML("Jane Doe"), view.Name, "标签和脚本内容应被去除")
	assert.Equal(t, template.HTML("Acme"), view.Experience[0].Company)
	assert.NotContains(t, string(view.Experience[0].Responsibilities[0]), "<img")

	require.Len(t, view.Skills, len(types.SkillCategories), "所有技能分类都应展示")
	assert.Equal(t, "technical", view.Skills[0].Category)
	assert.Equal(t, "Technical", view.Skills[0].Label)
	assert.Equal(t, []template.HTML{"Go", "C &amp; C++"}, view.Skills[0].Items, "空白项应被丢弃，特殊字符应被转义")
	assert.Empty(t, view.Skills[1].Items)
}

func TestViewBuilder_NilRecord(t *testing.T) {
	view := newViewBuilder().Build(nil)
	assert.Empty(t, view.Education)
	assert.Empty(t, view.Experience)
	assert.Len(t, view.Skills, len(types.SkillCategories))
}

func TestTemplates_RenderResult(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	record := types.NewEmptyResumeRecord()
	record.PersonalInfo.Name = "Jane Doe"
	record.Education = []types.EducationEntry{{Degree: "MSc Data Science", Institution: "MIT", Year: "2021"}}

	var buf bytes.Buffer
	err = tmpl.ExecuteTemplate(&buf, tmplResult, PageData{
		Title:   "Parsed resume",
		Flashes: nil,
		Resume:  newViewBuilder().Build(record),
	})
	require.NoError(t, err)
	html := buf.String()
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "MSc Data Science")
	assert.Contains(t, html, "(2021)")
	assert.Contains(t, html, "No work experience found.")
	assert.Equal(t, 1, strings.Count(html, "<html"), "页面应只包含一个完整文档")
}

func TestBuildParsedMessage(t *testing.T) {
	record := types.NewEmptyResumeRecord()
	record.PersonalInfo = types.PersonalInfo{Name: "Jane Doe", Email: "Not found", Phone: "+1 555 123 4567"}
	record.Skills[types.SkillTechnical] = []string{"Go", "SQL"}
	record.WorkExperience = []types.ExperienceEntry{{Title: "Engineer"}}

	outcome := &processor.ParseOutcome{
		Record:     record,
		FileMD5:    "0cc175b9c0f1b6a831c399e269772661",
		FileSize:   1234,
		TextLength: 99,
		States: []processor.ParseState{
			processor.StateStart, processor.StateTextExtracted, processor.StateFieldsExtracted, processor.StateDone,
		},
		Anomalies: []string{"name"},
	}

	msg := buildParsedMessage("sid", "tika", config.DefaultConfig().Parser.Fallback, outcome, true, 42*time.Millisecond)
	assert.Equal(t, "resume.parsed", msg.EventType)
	assert.Len(t, msg.EventID, 36)
	assert.Equal(t, "sid", msg.SessionID)
	assert.Equal(t, "tika", msg.Extractor)
	assert.True(t, msg.Succeeded)
	assert.True(t, msg.Duplicate)
	assert.Equal(t, []string{"start", "text_extracted", "fields_extracted", "done"}, msg.States)
	assert.Equal(t, []string{"name"}, msg.Anomalies)
	assert.False(t, msg.HasEmail, "占位值不算提取到邮箱")
	assert.True(t, msg.HasPhone)
	assert.Equal(t, 2, msg.Skills)
	assert.Equal(t, 1, msg.Experiences)
	assert.Equal(t, int64(42), msg.DurationMS)
	assert.Empty(t, msg.Error)

	outcome.ExtractionErr = errors.New(strings.Repeat("x", 2000))
	outcome.States = []processor.ParseState{processor.StateStart, processor.StateTextExtractionFailed}
	failed := buildParsedMessage("sid", "tika", config.DefaultConfig().Parser.Fallback, outcome, false, 0)
	assert.LessOrEqual(t, len(failed.Error), 1003, "错误信息应被截断")
}
