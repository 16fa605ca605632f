package controllers

import (
	"context"
	"net/http"

	"github.com/SberTube/sbertube-api/internal/controllers/dto"
	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// UploadLimits 约束上传请求体大小。
type UploadLimits struct {
	MaxUploadBytes int64
}

// VideoHandler 处理视频资源的全部 HTTP 入口。
type VideoHandler struct {
	base      *BaseHandler
	lifecycle services.LifecycleServiceInterface
	query     services.QueryServiceInterface
	reactions services.ReactionServiceInterface
	watch     services.WatchServiceInterface
	limits    UploadLimits
	log       *log.Helper
}

// NewVideoHandler 构造 VideoHandler（供 Wire 注入使用）。
func NewVideoHandler(
	base *BaseHandler,
	lifecycle services.LifecycleServiceInterface,
	query services.QueryServiceInterface,
	reactions services.ReactionServiceInterface,
	watch services.WatchServiceInterface,
	limits UploadLimits,
	logger log.Logger,
) *VideoHandler {
	return &VideoHandler{
		base:      base,
		lifecycle: lifecycle,
		query:     query,
		reactions: reactions,
		watch:     watch,
		limits:    limits,
		log:       log.NewHelper(logger),
	}
}

// RegisterRoutes 将视频路由挂载到指定路由组。
func (h *VideoHandler) RegisterRoutes(r *khttp.Router) {
	r.POST("/videos", h.Upload)
	r.GET("/videos", h.GetAll)
	r.GET("/videos/{title}", h.GetByTitle)
	r.PUT("/videos/{title}", h.Update)
	r.DELETE("/videos/{title}", h.Delete)
	r.POST("/videos/{title}/reactions", h.MutateReaction)
	r.PATCH("/videos/{title}/progress", h.MarkProgress)
}

// Upload 处理 multipart 上传：表单字段 title/body/shortBody，文件字段 video。
func (h *VideoHandler) Upload(ctx khttp.Context) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}

	req := ctx.Request()
	if h.limits.MaxUploadBytes > 0 {
		req.Body = http.MaxBytesReader(ctx.Response(), req.Body, h.limits.MaxUploadBytes)
	}
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid multipart form")
	}
	file, header, err := req.FormFile("video")
	if err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "video file is required")
	}
	defer file.Close()

	input := services.UploadVideoInput{
		Title:     req.FormValue("title"),
		Body:      req.FormValue("body"),
		ShortBody: req.FormValue("shortBody"),
		Filename:  header.Filename,
		File:      file,
	}

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeUpload)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.lifecycle.Upload(c, h.base.Identity(meta), input)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusCreated, dto.VideoEnvelope{Video: out.(*vo.VideoView)})
}

// GetAll 返回视频列表，可选 search 参数按标题精确过滤。
func (h *VideoHandler) GetAll(ctx khttp.Context) error {
	var search *string
	if v := ctx.Query().Get("search"); v != "" {
		search = &v
	}

	reqCtx, cancel := h.base.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.query.GetAll(c, search)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.VideoListEnvelope{Videos: out.([]vo.VideoView)})
}

// GetByTitle 返回单个视频的完整详情。
func (h *VideoHandler) GetByTitle(ctx khttp.Context) error {
	title := ctx.Vars().Get("title")

	reqCtx, cancel := h.base.WithTimeout(ctx, HandlerTypeQuery)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.query.GetByTitle(c, title)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.VideoEnvelope{Video: out.(*vo.VideoView)})
}

// Update 编辑视频内容，仅作者可操作。
func (h *VideoHandler) Update(ctx khttp.Context) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}
	title := ctx.Vars().Get("title")

	var body dto.UpdateVideoRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input := services.UpdateVideoInput{
		Title:     title,
		NewTitle:  body.Title,
		Body:      body.Body,
		ShortBody: body.ShortBody,
	}

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.lifecycle.Update(c, h.base.Identity(meta), input)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.VideoEnvelope{Video: out.(*vo.VideoView)})
}

// Delete 删除视频，仅作者可操作。
func (h *VideoHandler) Delete(ctx khttp.Context) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}
	title := ctx.Vars().Get("title")

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.lifecycle.Delete(c, h.base.Identity(meta), title)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.VideoDeletedEnvelope{Video: out.(*vo.VideoDeleted)})
}

// MutateReaction 新增或撤销点赞/点踩。
func (h *VideoHandler) MutateReaction(ctx khttp.Context) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}
	title := ctx.Vars().Get("title")

	var body dto.ReactionRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input := services.MutateReactionInput{
		Title:  title,
		Kind:   po.ReactionKind(body.Kind),
		Action: services.ReactionAction(body.Action),
	}
	if input.Action == "" {
		input.Action = services.ReactionActionAdd
	}

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.reactions.Mutate(c, h.base.Identity(meta), input)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.VideoEnvelope{Video: out.(*vo.VideoView)})
}

// MarkProgress 上报观看进度。
func (h *VideoHandler) MarkProgress(ctx khttp.Context) error {
	title := ctx.Vars().Get("title")

	var body dto.ProgressRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}

	reqCtx, cancel := h.base.WithTimeout(ctx, HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.watch.MarkProgress(c, title, body.WatchedTime)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.VideoEnvelope{Video: out.(*vo.VideoView)})
}
