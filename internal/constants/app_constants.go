package constants

const (
	// FormFieldResume 上传表单中的文件字段名
	FormFieldResume = "resume"

	// DownloadFileName 下载JSON时使用的文件名
	DownloadFileName = "resume_data.json"

	// JSONIndent 下载JSON的缩进
	JSONIndent = "    "

	// Flash 消息分类
	FlashDanger  = "danger"
	FlashWarning = "warning"

	// ParsedEventType 解析完成事件类型
	ParsedEventType = "resume.parsed"
)
