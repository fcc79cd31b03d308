package handler

import (
	"context"
	"errors"

	"resume-parser-go/internal/logger"
	"resume-parser-go/internal/storage"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/gofrs/uuid/v5"
)

// loadSession 读取请求对应的会话，cookie缺失、无效或会话已过期时创建新会话
func (h *ResumeHandler) loadSession(ctx context.Context, c *app.RequestContext) *storage.Session {
	raw := string(c.Cookie(h.cfg.Session.CookieName))
	if id, err := uuid.FromString(raw); err == nil && !id.IsNil() {
		session, err := h.storage.Sessions.Get(ctx, id.String())
		if err == nil {
			return session
		}
		if !errors.Is(err, storage.ErrSessionNotFound) {
			logger.Ctx(ctx).Warn().Err(err).Msg("读取会话失败，创建新会话")
		}
	}
	return storage.NewSession(newSessionID())
}

// saveSession 保存会话并下发cookie，保存失败只记录日志
func (h *ResumeHandler) saveSession(ctx context.Context, c *app.RequestContext, session *storage.Session) {
	ttl := h.cfg.SessionTTL()
	if err := h.storage.Sessions.Save(ctx, session, ttl); err != nil {
		logger.Ctx(ctx).Error().Err(err).Str("session_id", session.ID).Msg("保存会话失败")
		return
	}
	c.SetCookie(h.cfg.Session.CookieName, session.ID, int(ttl.Seconds()), "/", "",
		protocol.CookieSameSiteLaxMode, h.cfg.Session.Secure, true)
}

// flashAndRedirect 追加一条提示消息后重定向
func (h *ResumeHandler) flashAndRedirect(ctx context.Context, c *app.RequestContext, session *storage.Session, category, message, location string) {
	session.AddFlash(category, message)
	h.saveSession(ctx, c, session)
	redirect(c, location)
}

func newSessionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Must(uuid.NewV4()).String()
	}
	return id.String()
}
