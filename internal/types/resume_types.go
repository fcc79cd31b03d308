package types

// SectionType 表示简历章节类型
type SectionType string

const (
	// SectionHeader 简历头部（姓名、联系方式所在的首个章节之前的内容）
	SectionHeader SectionType = "HEADER"
	// SectionSummary 个人简介章节
	SectionSummary SectionType = "SUMMARY"
	// SectionEducation 教育经历章节
	SectionEducation SectionType = "EDUCATION"
	// SectionWorkExperience 工作经历章节
	SectionWorkExperience SectionType = "WORK_EXPERIENCE"
	// SectionSkills 技能章节
	SectionSkills SectionType = "SKILLS"
	// SectionLanguages 语言能力章节
	SectionLanguages SectionType = "LANGUAGES"
	// SectionCertifications 证书章节
	SectionCertifications SectionType = "CERTIFICATIONS"
	// SectionProjects 项目经历章节
	SectionProjects SectionType = "PROJECTS"
	// SectionAwards 获奖经历章节
	SectionAwards SectionType = "AWARDS"
	// SectionUnknown 未分类内容章节
	SectionUnknown SectionType = "UNKNOWN"
)

// ResumeSection 简历章节结构
type ResumeSection struct {
	Type  SectionType // 章节类型
	Title string      // 实际的章节标题
	Lines []string    // 章节内容（已去除首尾空白的非空行）
}

// 技能分类
const (
	SkillTechnical      = "technical"
	SkillSoft           = "soft"
	SkillLanguages      = "languages"
	SkillCertifications = "certifications"
)

// SkillCategories 技能分类的固定顺序
var SkillCategories = []string{SkillTechnical, SkillSoft, SkillLanguages, SkillCertifications}

// PersonalInfo 个人信息
type PersonalInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// EducationEntry 教育经历条目
type EducationEntry struct {
	Degree      string   `json:"degree"`
	Institution string   `json:"institution"`
	Year        string   `json:"year"`
	GPA         string   `json:"gpa,omitempty"`
	Details     []string `json:"details,omitempty"`
}

// ExperienceEntry 工作经历条目
type ExperienceEntry struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// ResumeRecord 一次解析的完整结果，所有字段始终存在（只可能为空，不会缺失）
type ResumeRecord struct {
	PersonalInfo   PersonalInfo        `json:"personal_info"`
	Education      []EducationEntry    `json:"education"`
	Skills         map[string][]string `json:"skills"`
	WorkExperience []ExperienceEntry   `json:"work_experience"`
}

// NewEmptyResumeRecord 返回规范的空结构
func NewEmptyResumeRecord() *ResumeRecord {
	return &ResumeRecord{
		Education:      []EducationEntry{},
		Skills:         NewEmptySkills(),
		WorkExperience: []ExperienceEntry{},
	}
}

// NewEmptySkills 返回包含全部分类的空技能表
func NewEmptySkills() map[string][]string {
	skills := make(map[string][]string, len(SkillCategories))
	for _, category := range SkillCategories {
		skills[category] = []string{}
	}
	return skills
}

// Normalize 补齐缺失的字段，保证记录的完整性（JSON反序列化之后或展示之前调用）
func (r *ResumeRecord) Normalize() *ResumeRecord {
	if r == nil {
		return NewEmptyResumeRecord()
	}
	if r.Education == nil {
		r.Education = []EducationEntry{}
	}
	if r.WorkExperience == nil {
		r.WorkExperience = []ExperienceEntry{}
	}
	for i := range r.WorkExperience {
		if r.WorkExperience[i].Responsibilities == nil {
			r.WorkExperience[i].Responsibilities = []string{}
		}
	}
	if r.Skills == nil {
		r.Skills = NewEmptySkills()
	}
	for _, category := range SkillCategories {
		if r.Skills[category] == nil {
			r.Skills[category] = []string{}
		}
	}
	return r
}

// IsEmpty 判断记录是否为规范的空结构
func (r *ResumeRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	if r.PersonalInfo != (PersonalInfo{}) || len(r.Education) > 0 || len(r.WorkExperience) > 0 {
		return false
	}
	for _, values := range r.Skills {
		if len(values) > 0 {
			return false
		}
	}
	return true
}

// SkillCount 返回所有分类的技能总数
func (r *ResumeRecord) SkillCount() int {
	total := 0
	for _, values := range r.Skills {
		total += len(values)
	}
	return total
}
