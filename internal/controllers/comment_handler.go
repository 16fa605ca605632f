package controllers

import (
	"context"
	"net/http"

	"github.com/SberTube/sbertube-api/internal/controllers/dto"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/services"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/uuid"
)

// CommentHandler 处理评论资源的 HTTP 入口。
type CommentHandler struct {
	base     *BaseHandler
	comments services.CommentServiceInterface
	log      *log.Helper
}

// NewCommentHandler 构造 CommentHandler（供 Wire 注入使用）。
func NewCommentHandler(base *BaseHandler, comments services.CommentServiceInterface, logger log.Logger) *CommentHandler {
	return &CommentHandler{
		base:     base,
		comments: comments,
		log:      log.NewHelper(logger),
	}
}

// RegisterRoutes 将评论路由挂载到指定路由组。
func (h *CommentHandler) RegisterRoutes(r *khttp.Router) {
	r.POST("/videos/{title}/comments", h.Add)
	r.PUT("/comments/{id}", h.Edit)
	r.POST("/comments/{id}/likes", h.Like)
	r.DELETE("/comments/{id}/likes", h.Unlike)
}

// Add 在指定视频下创建评论。
func (h *CommentHandler) Add(ctx khttp.Context) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}
	videoTitle := ctx.Vars().Get("title")

	var body dto.AddCommentRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input := services.AddCommentInput{
		VideoTitle: videoTitle,
		Title:      body.Title,
		Body:       body.Body,
	}

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.comments.Add(c, h.base.Identity(meta), input)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusCreated, dto.CommentEnvelope{Comment: out.(*vo.CommentView)})
}

// Edit 编辑评论，仅评论作者可操作。
func (h *CommentHandler) Edit(ctx khttp.Context) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}
	commentID, err := uuid.Parse(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid comment id")
	}

	var body dto.EditCommentRequest
	if err := ctx.Bind(&body); err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid request body")
	}
	input := services.EditCommentInput{
		CommentID: commentID,
		Title:     body.Title,
		Body:      body.Body,
	}

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		return h.comments.Edit(c, h.base.Identity(meta), input)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.CommentEnvelope{Comment: out.(*vo.CommentView)})
}

// Like 点赞评论。
func (h *CommentHandler) Like(ctx khttp.Context) error {
	return h.mutateLike(ctx, true)
}

// Unlike 撤销评论点赞。
func (h *CommentHandler) Unlike(ctx khttp.Context) error {
	return h.mutateLike(ctx, false)
}

func (h *CommentHandler) mutateLike(ctx khttp.Context, add bool) error {
	meta := h.base.ExtractMetadata(ctx.Header())
	if meta.InvalidUserInfo {
		return errors.Unauthorized(services.ReasonInvalidArgument, "invalid user info header")
	}
	commentID, err := uuid.Parse(ctx.Vars().Get("id"))
	if err != nil {
		return errors.BadRequest(services.ReasonInvalidArgument, "invalid comment id")
	}

	reqCtx, cancel := h.base.WithTimeout(InjectHandlerMetadata(ctx, meta), HandlerTypeCommand)
	defer cancel()

	next := ctx.Middleware(func(c context.Context, _ any) (any, error) {
		if add {
			return h.comments.Like(c, h.base.Identity(meta), commentID)
		}
		return h.comments.Unlike(c, h.base.Identity(meta), commentID)
	})
	out, err := next(reqCtx, nil)
	if err != nil {
		return err
	}
	return ctx.Result(http.StatusOK, dto.CommentEnvelope{Comment: out.(*vo.CommentView)})
}
