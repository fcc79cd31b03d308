package tracing

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxLength 默认最大属性长度
	DefaultMaxLength = 200

	// MaxFileNameLength 上传文件名最大长度
	MaxFileNameLength = 120

	// MaxRedisKeyLength Redis键最大长度
	MaxRedisKeyLength = 100
)

// TruncateString 按字符截断，截断时以 "..." 结尾，结果不超过 maxLength 个字符
func TruncateString(s string, maxLength int) string {
	if maxLength <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	runes := []rune(s)
	if maxLength <= 3 {
		return string(runes[:maxLength])
	}
	return string(runes[:maxLength-3]) + "..."
}

// MaskPII 掩码个人信息：邮箱保留本地部分首字符和域名，其余保留首尾各一个字符
//
//	"john@example.com" -> "j***@example.com"
//	"+1 555 123 4567"  -> "+*************7"
func MaskPII(value string) string {
	if value == "" {
		return ""
	}
	if at := strings.LastIndex(value, "@"); at > 0 && at < len(value)-1 {
		local := []rune(value[:at])
		return string(local[0]) + strings.Repeat("*", max(len(local)-1, 1)) + value[at:]
	}

	runes := []rune(value)
	switch len(runes) {
	case 1:
		return "*"
	case 2:
		return string(runes[0]) + "*"
	}
	return string(runes[0]) + strings.Repeat("*", len(runes)-2) + string(runes[len(runes)-1])
}

// SafeFileName 上传文件名常含候选人姓名，只保留扩展名并掩码主体部分
func SafeFileName(name string) string {
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if stem == "" {
		return TruncateString(base, MaxFileNameLength)
	}
	return TruncateString(MaskPII(stem)+strings.ToLower(ext), MaxFileNameLength)
}

// SafeRedisKey 截断过长的Redis键
func SafeRedisKey(key string) string {
	return TruncateString(key, MaxRedisKeyLength)
}
