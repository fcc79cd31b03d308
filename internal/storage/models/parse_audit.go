package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// ParseAudit 每次上传解析的审计记录，只保存统计信息，不保存简历内容
type ParseAudit struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement"`
	EventID         string         `gorm:"type:char(36);uniqueIndex:idx_parse_audits_event_id"`
	SessionID       string         `gorm:"type:char(36);index:idx_parse_audits_session_id"`
	FileMD5         string         `gorm:"type:char(32);index:idx_parse_audits_file_md5"`
	FileSize        int64          `gorm:"type:bigint"`
	Extractor       string         `gorm:"type:varchar(32)"`
	Succeeded       bool           `gorm:"type:tinyint(1);index:idx_parse_audits_succeeded"`
	Cached          bool           `gorm:"type:tinyint(1)"`
	Duplicate       bool           `gorm:"type:tinyint(1)"`
	StatesJSON      datatypes.JSON `gorm:"type:json"`
	AnomaliesJSON   datatypes.JSON `gorm:"type:json"`
	TextLength      int            `gorm:"type:int"`
	EducationCount  int            `gorm:"type:int"`
	ExperienceCount int            `gorm:"type:int"`
	SkillCount      int            `gorm:"type:int"`
	DurationMS      int64          `gorm:"type:bigint"`
	ErrorMessage    string         `gorm:"type:varchar(1024)"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_parse_audits_created_at"`
}

func (ParseAudit) TableName() string {
	return "resume_parse_audits"
}

// States 解析状态序列
func (a *ParseAudit) States() []string {
	return decodeStrings(a.StatesJSON)
}

// Anomalies 字段提取异常列表
func (a *ParseAudit) Anomalies() []string {
	return decodeStrings(a.AnomaliesJSON)
}

func decodeStrings(raw datatypes.JSON) []string {
	var out []string
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	if out == nil {
		out = []string{}
	}
	return out
}
