package handler

import (
	"context"
	"errors"
	"net/http"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// ParseResponse POST /api/v1/resume/parse 的响应
type ParseResponse struct {
	SessionID  string              `json:"session_id"`
	FileMD5    string              `json:"file_md5"`
	Succeeded  bool                `json:"succeeded"`
	Cached     bool                `json:"cached"`
	Anomalies  []string            `json:"anomalies"`
	ResumeData *types.ResumeRecord `json:"resume_data"`
}

// APIParse 解析上传的简历并以JSON返回，结果同时写入会话
func (h *ResumeHandler) APIParse(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)

	fh, err := h.receiveUpload(c)
	if err != nil {
		writeUploadError(c, err)
		return
	}

	outcome, staged, err := h.parseUpload(ctx, session, fh)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("API解析简历失败")
		var upErr *uploadError
		if errors.As(err, &upErr) {
			writeUploadError(c, upErr)
			return
		}
		c.JSON(consts.StatusInternalServerError, utils.H{"error": "Error parsing resume: " + err.Error()})
		return
	}

	session.Record = outcome.Record
	session.FileName = staged.SafeName
	session.FileMD5 = outcome.FileMD5
	session.ParseCount++
	h.saveSession(ctx, c, session)

	anomalies := outcome.Anomalies
	if anomalies == nil {
		anomalies = []string{}
	}
	c.JSON(consts.StatusOK, ParseResponse{
		SessionID:  session.ID,
		FileMD5:    outcome.FileMD5,
		Succeeded:  outcome.Succeeded(),
		Cached:     outcome.Cached,
		Anomalies:  anomalies,
		ResumeData: outcome.Record,
	})
}

// APISession 返回当前会话中的解析结果
func (h *ResumeHandler) APISession(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)
	if !session.HasRecord() {
		c.JSON(consts.StatusNotFound, utils.H{"error": msgNoResumeData})
		return
	}
	c.JSON(consts.StatusOK, utils.H{
		"session_id":  session.ID,
		"file_name":   session.FileName,
		"resume_data": session.Record.Normalize(),
	})
}

// Health 健康检查，列出已启用的可选组件
func (h *ResumeHandler) Health(ctx context.Context, c *app.RequestContext) {
	components := utils.H{
		"redis":    h.storage.Redis != nil,
		"minio":    h.storage.MinIO != nil,
		"rabbitmq": h.storage.RabbitMQ != nil,
		"mysql":    h.storage.MySQL != nil,
	}
	status := "ok"
	if h.storage.Redis != nil {
		if err := h.storage.Redis.Ping(ctx); err != nil {
			status = "degraded"
			components["redis_error"] = err.Error()
		}
	}
	c.JSON(consts.StatusOK, utils.H{
		"status":     status,
		"extractor":  h.cfg.Parser.TextExtractor,
		"components": components,
	})
}

func writeUploadError(c *app.RequestContext, err error) {
	var upErr *uploadError
	if errors.As(err, &upErr) {
		c.JSON(upErr.Status, utils.H{"error": upErr.Message})
		return
	}
	c.JSON(http.StatusBadRequest, utils.H{"error": err.Error()})
}
