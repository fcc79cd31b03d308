package handler

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"resume-parser-go/internal/config"
	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/processor"
	"resume-parser-go/internal/storage"
	"resume-parser-go/internal/tracing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("handler")

// Parser 简历解析器，由 processor.ResumeParser 实现
type Parser interface {
	ParseFileWithOutcome(ctx context.Context, path string) (*processor.ParseOutcome, error)
	ParseBytesWithOutcome(ctx context.Context, data []byte, uri string) *processor.ParseOutcome
}

var _ Parser = (*processor.ResumeParser)(nil)

// ResumeHandler 简历上传处理器，负责协调暂存、解析、会话与事件
type ResumeHandler struct {
	cfg     *config.Config
	storage *storage.Storage
	parser  Parser
	views   *viewBuilder
}

// NewResumeHandler 创建一个新的简历处理器
func NewResumeHandler(cfg *config.Config, store *storage.Storage, parser Parser) *ResumeHandler {
	return &ResumeHandler{
		cfg:     cfg,
		storage: store,
		parser:  parser,
		views:   newViewBuilder(),
	}
}

// uploadError 上传校验失败，Message 直接展示给用户
type uploadError struct {
	Status  int
	Message string
}

func (e *uploadError) Error() string {
	return e.Message
}

var (
	errNoFilePart     = &uploadError{Status: http.StatusBadRequest, Message: "No file part"}
	errNoSelectedFile = &uploadError{Status: http.StatusBadRequest, Message: "No selected file"}
	errInvalidFormat  = &uploadError{Status: http.StatusBadRequest, Message: "Invalid file format. Please upload a PDF file."}
)

func errTooLarge(maxMB int) *uploadError {
	return &uploadError{
		Status:  http.StatusRequestEntityTooLarge,
		Message: fmt.Sprintf("File is too large. Maximum upload size is %d MB.", maxMB),
	}
}

// receiveUpload 从multipart表单中取出简历文件并校验
func (h *ResumeHandler) receiveUpload(c *app.RequestContext) (*multipart.FileHeader, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errNoFilePart
	}

	files := form.File[constants.FormFieldResume]
	if len(files) == 0 {
		// 浏览器未选择文件时会提交一个文件名为空的部分，multipart解析后落在普通字段中
		if _, ok := form.Value[constants.FormFieldResume]; ok {
			return nil, errNoSelectedFile
		}
		return nil, errNoFilePart
	}

	fh := files[0]
	if fh.Filename == "" {
		return nil, errNoSelectedFile
	}
	if !storage.HasAllowedExtension(fh.Filename, h.cfg.Server.AllowedExtensions) {
		return nil, errInvalidFormat
	}
	if fh.Size > int64(h.cfg.MaxUploadBytes()) {
		return nil, errTooLarge(h.cfg.Server.MaxUploadMB)
	}
	return fh, nil
}

// parseUpload 暂存上传文件并解析，暂存副本无论结果如何都会被删除
func (h *ResumeHandler) parseUpload(ctx context.Context, session *storage.Session, fh *multipart.FileHeader) (*processor.ParseOutcome, *storage.StagedFile, error) {
	ctx, span := tracer.Start(ctx, "ResumeHandler.parseUpload")
	defer span.End()
	span.SetAttributes(
		attribute.String("file.name", tracing.SafeFileName(fh.Filename)),
		attribute.Int64("file.size", fh.Size),
	)

	f, err := fh.Open()
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()

	staged, err := h.storage.Staging.Stage(ctx, fh.Filename, f, fh.Size)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
		return nil, nil, fmt.Errorf("暂存上传文件失败: %w", err)
	}
	defer func() {
		if err := h.storage.Staging.Remove(context.WithoutCancel(ctx), staged); err != nil {
			logger.Ctx(ctx).Error().Err(err).Str("file", staged.SafeName).Msg("删除暂存文件失败")
		} else {
			logger.Ctx(ctx).Debug().Str("file", staged.SafeName).Msg("暂存文件已删除")
		}
	}()

	start := time.Now()
	var outcome *processor.ParseOutcome
	if staged.LocalPath != "" {
		outcome, err = h.parser.ParseFileWithOutcome(ctx, staged.LocalPath)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeExtraction)
			return nil, staged, err
		}
	} else {
		data, err := h.readStaged(ctx, staged)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeObjectStore)
			return nil, staged, err
		}
		outcome = h.parser.ParseBytesWithOutcome(ctx, data, staged.SafeName)
	}

	h.recordParse(ctx, session, staged, outcome, time.Since(start))
	return outcome, staged, nil
}

func (h *ResumeHandler) readStaged(ctx context.Context, staged *storage.StagedFile) ([]byte, error) {
	rc, err := h.storage.Staging.Open(ctx, staged)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	limit := int64(h.cfg.MaxUploadBytes())
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, fmt.Errorf("读取暂存文件失败: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, errTooLarge(h.cfg.Server.MaxUploadMB)
	}
	return data, nil
}

// recordParse 发布解析事件并写入审计，任何失败只记录日志
func (h *ResumeHandler) recordParse(ctx context.Context, session *storage.Session, staged *storage.StagedFile, outcome *processor.ParseOutcome, elapsed time.Duration) {
	log := logger.Ctx(ctx)

	duplicate := false
	if h.storage.Redis != nil && outcome.FileMD5 != "" {
		seen, err := h.storage.Redis.MarkParsedFile(ctx, outcome.FileMD5, h.cfg.ResultCacheTTL())
		if err != nil {
			log.Warn().Err(err).Msg("记录文件MD5失败")
		}
		duplicate = seen
	}

	msg := buildParsedMessage(session.ID, h.cfg.Parser.TextExtractor, h.cfg.Parser.Fallback, outcome, duplicate, elapsed)
	log.Info().
		Str("session_id", session.ID).
		Str("file", tracing.SafeFileName(staged.SafeName)).
		Str("md5", msg.FileMD5).
		Bool("succeeded", msg.Succeeded).
		Bool("cached", msg.Cached).
		Bool("duplicate", msg.Duplicate).
		Strs("anomalies", msg.Anomalies).
		Int64("duration_ms", msg.DurationMS).
		Msg("简历解析完成")

	if h.storage.Events != nil {
		if err := h.storage.Events.PublishParsed(ctx, msg); err != nil {
			log.Error().Err(err).Str("event_id", msg.EventID).Msg("发布解析事件失败")
		}
	}
	if h.storage.Audits != nil {
		if err := h.storage.Audits.SaveParseAudit(ctx, storage.ParseAuditFromMessage(msg)); err != nil {
			log.Error().Err(err).Str("event_id", msg.EventID).Msg("写入解析审计失败")
		}
	}
}

// buildParsedMessage 由解析结果生成事件，只包含统计信息
func buildParsedMessage(sessionID, extractor string, fallback config.FallbackConfig, outcome *processor.ParseOutcome, duplicate bool, elapsed time.Duration) *storage.ResumeParsedMessage {
	eventID, err := uuid.NewV7()
	if err != nil {
		eventID = uuid.Must(uuid.NewV4())
	}

	states := make([]string, 0, len(outcome.States))
	for _, s := range outcome.States {
		states = append(states, string(s))
	}

	record := outcome.Record.Normalize()
	msg := &storage.ResumeParsedMessage{
		EventType:   constants.ParsedEventType,
		EventID:     eventID.String(),
		SessionID:   sessionID,
		FileMD5:     outcome.FileMD5,
		FileSize:    int64(outcome.FileSize),
		Extractor:   extractor,
		Succeeded:   outcome.Succeeded(),
		Cached:      outcome.Cached,
		Duplicate:   duplicate,
		States:      states,
		Anomalies:   outcome.Anomalies,
		TextLength:  outcome.TextLength,
		Educations:  len(record.Education),
		Experiences: len(record.WorkExperience),
		Skills:      record.SkillCount(),
		HasEmail:    isFound(record.PersonalInfo.Email, fallback.Email),
		HasPhone:    isFound(record.PersonalInfo.Phone, fallback.Phone),
		DurationMS:  elapsed.Milliseconds(),
		Timestamp:   time.Now(),
	}
	if outcome.ExtractionErr != nil {
		msg.Error = tracing.TruncateString(outcome.ExtractionErr.Error(), 1000)
	}
	return msg
}

// isFound 字段是否真正提取到值（排除空值和占位值）
func isFound(value, fallback string) bool {
	return value != "" && value != fallback
}
