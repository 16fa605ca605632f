// Package dto 定义 HTTP 层的请求与响应载体。
// 响应统一使用信封结构，保持客户端字段路径稳定。
package dto

import "github.com/SberTube/sbertube-api/internal/models/vo"

// UpdateVideoRequest 表示编辑视频的请求体，缺失字段保持原值。
type UpdateVideoRequest struct {
	Title     *string `json:"title"`
	Body      *string `json:"body"`
	ShortBody *string `json:"shortBody"`
}

// ReactionRequest 表示表态变更请求体。
type ReactionRequest struct {
	Kind   string `json:"kind"`   // like | dislike
	Action string `json:"action"` // add | remove
}

// AddCommentRequest 表示创建评论的请求体。
type AddCommentRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// EditCommentRequest 表示编辑评论的请求体。
type EditCommentRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// ProgressRequest 表示观看进度上报请求体。
type ProgressRequest struct {
	WatchedTime int64 `json:"watchedTime"`
}

// VideoEnvelope 封装单个视频响应。
type VideoEnvelope struct {
	Video *vo.VideoView `json:"video"`
}

// VideoListEnvelope 封装视频列表响应。
type VideoListEnvelope struct {
	Videos []vo.VideoView `json:"videos"`
}

// VideoDeletedEnvelope 封装删除响应。
type VideoDeletedEnvelope struct {
	Video *vo.VideoDeleted `json:"video"`
}

// CommentEnvelope 封装单条评论响应。
type CommentEnvelope struct {
	Comment *vo.CommentView `json:"comment"`
}
