package router

import (
	"context"
	"math"
	"strconv"
	"time"

	"resume-parser-go/internal/api/handler"
	"resume-parser-go/internal/config"
	"resume-parser-go/internal/logger"
	"resume-parser-go/pkg/ratelimit"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册页面与 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler, cfg config.ServerConfig) {
	h.SetHTMLTemplate(handler.MustTemplates())

	if cfg.RequestLogEnabled {
		h.Use(RequestLogger())
	}

	// 上传接口按客户端限流，页面和API共享同一组令牌桶
	var uploadMiddleware []app.HandlerFunc
	if cfg.UploadRatePerMin > 0 {
		uploadMiddleware = append(uploadMiddleware, UploadRateLimit(ratelimit.NewKeyedLimiter(cfg.UploadRatePerMin, cfg.UploadBurst)))
	}

	// 页面路由
	h.GET("/", resumeHandler.Index)
	h.POST("/upload", append(uploadMiddleware, resumeHandler.Upload)...)
	h.GET("/result", resumeHandler.Result)
	h.GET("/download-json", resumeHandler.DownloadJSON)
	h.GET("/error", resumeHandler.ErrorPage)

	api := h.Group("/api/v1")
	api.POST("/resume/parse", append(uploadMiddleware, resumeHandler.APIParse)...)
	api.GET("/resume/session", resumeHandler.APISession)

	// 添加健康检查
	api.GET("/health", resumeHandler.Health)
}

// RequestLogger 记录每个请求的方法、路径、状态码和耗时
func RequestLogger() app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		start := time.Now()
		c.Next(ctx)
		logger.Ctx(ctx).Info().
			Str("method", string(c.Method())).
			Str("path", string(c.Path())).
			Int("status", c.Response.StatusCode()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

// UploadRateLimit 超出限额时返回 429 并设置 Retry-After
func UploadRateLimit(limiter *ratelimit.KeyedLimiter) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		ip := c.ClientIP()
		if limiter.Allow(ip) {
			c.Next(ctx)
			return
		}

		retry := int(math.Ceil(limiter.RetryAfter(ip).Seconds()))
		if retry < 1 {
			retry = 1
		}
		logger.Ctx(ctx).Warn().Str("client_ip", ip).Int("retry_after", retry).Msg("上传请求被限流")
		c.Header("Retry-After", strconv.Itoa(retry))
		c.AbortWithStatusJSON(consts.StatusTooManyRequests, utils.H{
			"error": "Too many uploads. Please try again later.",
		})
	}
}
