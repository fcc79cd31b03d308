package handler

import (
	"embed"
	"html/template"
	"strings"

	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/types"

	"github.com/microcosm-cc/bluemonday"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates 解析内嵌的页面模板，供 router 注册到 Hertz
func Templates() (*template.Template, error) {
	return template.ParseFS(templateFS, "templates/*.html")
}

// MustTemplates 同 Templates，解析失败时panic
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// 页面模板名
const (
	tmplIndex  = "index.html"
	tmplResult = "result.html"
	tmplError  = "error.html"
)

var skillLabels = map[string]string{
	types.SkillTechnical:      "Technical",
	types.SkillSoft:           "Soft skills",
	types.SkillLanguages:      "Languages",
	types.SkillCertifications: "Certifications",
}

// PageData 所有页面共用的模板数据
type PageData struct {
	Title       string
	Flashes     []storage.Flash
	MaxUploadMB int
	HasResult   bool
	Message     string
	Resume      *ResumeView
}

// ResumeView 展示用的解析结果，PDF中提取出的文本都经过清理
type ResumeView struct {
	Name       template.HTML
	Email      template.HTML
	Phone      template.HTML
	Address    template.HTML
	Education  []EducationView
	Skills     []SkillGroup
	Experience []ExperienceView
}

type EducationView struct {
	Degree      template.HTML
	Institution template.HTML
	Year        template.HTML
	GPA         template.HTML
	Details     []template.HTML
}

type SkillGroup struct {
	Category string
	Label    string
	Items    []template.HTML
}

type ExperienceView struct {
	Title            template.HTML
	Company          template.HTML
	Duration         template.HTML
	Responsibilities []template.HTML
}

// viewBuilder 使用 bluemonday 严格策略清理文本：去掉所有标签，其余字符转义
type viewBuilder struct {
	policy *bluemonday.Policy
}

func newViewBuilder() *viewBuilder {
	return &viewBuilder{policy: bluemonday.StrictPolicy()}
}

func (v *viewBuilder) clean(s string) template.HTML {
	// StrictPolicy 的输出不含任何标签，可以直接作为HTML输出
	return template.HTML(v.policy.Sanitize(strings.TrimSpace(s)))
}

func (v *viewBuilder) cleanAll(items []string) []template.HTML {
	out := make([]template.HTML, 0, len(items))
	for _, item := range items {
		if c := v.clean(item); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Build 将解析结果转换为展示模型，技能分类按固定顺序输出
func (v *viewBuilder) Build(record *types.ResumeRecord) *ResumeView {
	record = record.Normalize()
	view := &ResumeView{
		Name:    v.clean(record.PersonalInfo.Name),
		Email:   v.clean(record.PersonalInfo.Email),
		Phone:   v.clean(record.PersonalInfo.Phone),
		Address: v.clean(record.PersonalInfo.Address),
	}

	for _, edu := range record.Education {
		view.Education = append(view.Education, EducationView{
			Degree:      v.clean(edu.Degree),
			Institution: v.clean(edu.Institution),
			Year:        v.clean(edu.Year),
			GPA:         v.clean(edu.GPA),
			Details:     v.cleanAll(edu.Details),
		})
	}

	for _, category := range types.SkillCategories {
		view.Skills = append(view.Skills, SkillGroup{
			Category: category,
			Label:    skillLabels[category],
			Items:    v.cleanAll(record.Skills[category]),
		})
	}

	for _, exp := range record.WorkExperience {
		view.Experience = append(view.Experience, ExperienceView{
			Title:            v.clean(exp.Title),
			Company:          v.clean(exp.Company),
			Duration:         v.clean(exp.Duration),
			Responsibilities: v.cleanAll(exp.Responsibilities),
		})
	}
	return view
}
