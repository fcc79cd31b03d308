package processor

import (
	"log"
	"time"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// ----- 组件选项 -----

// WithcompTextextractor 设置文本提取器组件
func WithcompTextextractor(extractor TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = extractor
	}
}

// WithcompFields 设置字段提取器组件
func WithcompFields(fields FieldExtractors) ComponentOpt {
	return func(c *Components) {
		c.Fields = fields
	}
}

// WithcompInspector 设置文档预检组件，为nil时跳过预检
func WithcompInspector(inspector DocumentInspector) ComponentOpt {
	return func(c *Components) {
		c.Inspector = inspector
	}
}

// WithcompResultcache 设置解析结果缓存组件
func WithcompResultcache(cache ResultCache) ComponentOpt {
	return func(c *Components) {
		c.Cache = cache
	}
}

// ----- 设置选项 -----

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *log.Logger) SettingOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		} else {
			s.Logger = log.New(log.Writer(), "[NilLoggerFallback] ", log.LstdFlags)
		}
	}
}

// WithsetConcurrent 设置字段提取器是否并发执行
func WithsetConcurrent(concurrent bool) SettingOpt {
	return func(s *Settings) {
		s.Concurrent = concurrent
	}
}

// WithsetExtractionTimeout 设置单次文本提取的超时时间
func WithsetExtractionTimeout(timeout time.Duration) SettingOpt {
	return func(s *Settings) {
		if timeout > 0 {
			s.ExtractionTimeout = timeout
		}
	}
}

// ----- 日志包装 -----

// logDebug 记录调试级别日志
func (rp *ResumeParser) logDebug(format string, args ...interface{}) {
	if rp.settings.Debug && rp.settings.Logger != nil {
		rp.settings.Logger.Printf(format, args...)
	}
}

// logInfo 记录信息级别日志
func (rp *ResumeParser) logInfo(format string, args ...interface{}) {
	if rp.settings.Logger != nil {
		rp.settings.Logger.Printf(format, args...)
	}
}

// logWarn 记录警告级别日志
func (rp *ResumeParser) logWarn(format string, args ...interface{}) {
	if rp.settings.Logger != nil {
		rp.settings.Logger.Printf("[WARN] "+format, args...)
	}
}
