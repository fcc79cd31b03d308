package storage

import "time"

// ResumeParsedMessage 解析完成事件，不包含姓名、邮箱等个人信息
type ResumeParsedMessage struct {
	EventType   string    `json:"event_type"`          // resume.parsed
	EventID     string    `json:"event_id"`            // 事件唯一ID
	SessionID   string    `json:"session_id"`          // 浏览器会话ID
	FileMD5     string    `json:"file_md5"`            // 原始文件的MD5
	FileSize    int64     `json:"file_size"`           // 字节数
	Extractor   string    `json:"extractor"`           // 使用的文本提取后端
	Succeeded   bool      `json:"succeeded"`           // 是否成功提取出文本
	Cached      bool      `json:"cached"`              // 是否命中解析结果缓存
	Duplicate   bool      `json:"duplicate"`           // 同一文件此前是否解析过
	States      []string  `json:"states"`              // 流程状态序列
	Anomalies   []string  `json:"anomalies,omitempty"` // 字段提取异常（仅字段名）
	TextLength  int       `json:"text_length"`         // 提取文本长度
	Educations  int       `json:"education_count"`     // 教育经历条数
	Experiences int       `json:"experience_count"`    // 工作经历条数
	Skills      int       `json:"skill_count"`         // 技能总数
	HasEmail    bool      `json:"has_email"`           // 是否提取到邮箱
	HasPhone    bool      `json:"has_phone"`           // 是否提取到电话
	DurationMS  int64     `json:"duration_ms"`         // 解析总耗时
	Error       string    `json:"error,omitempty"`     // 文本提取失败原因
	Timestamp   time.Time `json:"timestamp"`           // 事件时间
}
