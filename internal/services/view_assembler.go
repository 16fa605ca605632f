package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/models/vo"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
)

// viewAssembler 负责装配视频详情视图：作者、评论与表态关联在同一会话内读取，
// 保证视图与冗余计数来自一致性快照。
type viewAssembler struct {
	users     UserRepo
	comments  CommentRepo
	reactions ReactionRepo
}

func newViewAssembler(users UserRepo, comments CommentRepo, reactions ReactionRepo) *viewAssembler {
	return &viewAssembler{
		users:     users,
		comments:  comments,
		reactions: reactions,
	}
}

// assemble 装配单个视频的完整视图。作者缺失时视图仍完整返回，author 为 null。
func (a *viewAssembler) assemble(ctx context.Context, sess txmanager.Session, video *po.Video) (*vo.VideoView, error) {
	author, err := a.users.GetByID(ctx, sess, video.AuthorID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("load video author: %w", err)
	}
	comments, err := a.comments.ListByVideo(ctx, sess, video.VideoID)
	if err != nil {
		return nil, fmt.Errorf("load video comments: %w", err)
	}
	reactions, err := a.reactions.ListByVideo(ctx, sess, video.VideoID)
	if err != nil {
		return nil, fmt.Errorf("load video reactions: %w", err)
	}
	return vo.NewVideoView(video, author, comments, reactions), nil
}

// assembleAll 批量装配视频视图，关联数据按视频分组一次性读取。
func (a *viewAssembler) assembleAll(ctx context.Context, sess txmanager.Session, videos []po.Video) ([]vo.VideoView, error) {
	views := make([]vo.VideoView, 0, len(videos))
	if len(videos) == 0 {
		return views, nil
	}

	videoIDs := make([]uuid.UUID, 0, len(videos))
	authorIDs := make([]uuid.UUID, 0, len(videos))
	seen := make(map[uuid.UUID]struct{}, len(videos))
	for _, v := range videos {
		videoIDs = append(videoIDs, v.VideoID)
		if _, ok := seen[v.AuthorID]; !ok {
			seen[v.AuthorID] = struct{}{}
			authorIDs = append(authorIDs, v.AuthorID)
		}
	}

	authors, err := a.users.ListByIDs(ctx, sess, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("load video authors: %w", err)
	}
	commentsByVideo, err := a.comments.ListByVideos(ctx, sess, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("load video comments: %w", err)
	}
	reactionsByVideo, err := a.reactions.ListByVideos(ctx, sess, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("load video reactions: %w", err)
	}

	for i := range videos {
		var author *po.User
		if entry, ok := authors[videos[i].AuthorID]; ok {
			author = &entry
		}
		view := vo.NewVideoView(&videos[i], author, commentsByVideo[videos[i].VideoID], reactionsByVideo[videos[i].VideoID])
		views = append(views, *view)
	}
	return views, nil
}
