package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"resume-parser-go/internal/constants"
	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const (
	msgNoResumeData  = "No resume data found. Please upload a resume first."
	msgNoTextWarning = "No text could be extracted from the PDF. It may be scanned or image-based."
)

func redirect(c *app.RequestContext, location string) {
	c.Redirect(consts.StatusFound, []byte(location))
}

// renderPage 渲染页面，渲染前消费会话中的flash消息
func (h *ResumeHandler) renderPage(ctx context.Context, c *app.RequestContext, status int, name string, session *storage.Session, data PageData) {
	data.Flashes = session.PopFlashes()
	data.MaxUploadMB = h.cfg.Server.MaxUploadMB
	data.HasResult = session.HasRecord()
	if len(data.Flashes) > 0 {
		h.saveSession(ctx, c, session)
	}
	c.HTML(status, name, data)
}

// Index GET / 上传页面
func (h *ResumeHandler) Index(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)
	h.renderPage(ctx, c, consts.StatusOK, tmplIndex, session, PageData{Title: "Upload"})
}

// Upload POST /upload 上传并解析简历，结果保存到会话后跳转到结果页
func (h *ResumeHandler) Upload(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)

	fh, err := h.receiveUpload(c)
	if err != nil {
		h.flashAndRedirect(ctx, c, session, constants.FlashDanger, err.Error(), "/")
		return
	}

	outcome, staged, err := h.parseUpload(ctx, session, fh)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Error parsing resume")
		var upErr *uploadError
		if errors.As(err, &upErr) {
			h.flashAndRedirect(ctx, c, session, constants.FlashDanger, upErr.Message, "/")
			return
		}
		h.flashAndRedirect(ctx, c, session, constants.FlashDanger, fmt.Sprintf("Error parsing resume: %v", err), "/")
		return
	}

	session.Record = outcome.Record
	session.FileName = staged.SafeName
	session.FileMD5 = outcome.FileMD5
	session.ParseCount++
	if !outcome.Succeeded() {
		session.AddFlash(constants.FlashWarning, msgNoTextWarning)
	}
	h.saveSession(ctx, c, session)
	redirect(c, "/result")
}

// Result GET /result 展示会话中的解析结果
func (h *ResumeHandler) Result(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)
	if !session.HasRecord() {
		h.flashAndRedirect(ctx, c, session, constants.FlashWarning, msgNoResumeData, "/")
		return
	}
	h.renderPage(ctx, c, consts.StatusOK, tmplResult, session, PageData{
		Title:  "Parsed resume",
		Resume: h.views.Build(session.Record),
	})
}

// DownloadJSON GET /download-json 以附件形式下载解析结果
func (h *ResumeHandler) DownloadJSON(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)
	if !session.HasRecord() {
		h.flashAndRedirect(ctx, c, session, constants.FlashWarning, msgNoResumeData, "/")
		return
	}

	data, err := json.MarshalIndent(session.Record.Normalize(), "", constants.JSONIndent)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("序列化解析结果失败")
		redirect(c, "/error")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, constants.DownloadFileName))
	c.Data(consts.StatusOK, "application/json", data)
}

// ErrorPage GET /error 错误页面
func (h *ResumeHandler) ErrorPage(ctx context.Context, c *app.RequestContext) {
	session := h.loadSession(ctx, c)
	h.renderPage(ctx, c, http.StatusOK, tmplError, session, PageData{Title: "Error"})
}
