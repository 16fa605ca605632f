package services_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/repositories"
	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type noopTxManager struct{}

type noopSession struct{}

func (noopSession) Tx() pgx.Tx               { return nil }
func (noopSession) Context() context.Context { return context.Background() }

func (noopTxManager) WithinTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

func (noopTxManager) WithinReadOnlyTx(ctx context.Context, _ txmanager.TxOptions, fn func(context.Context, txmanager.Session) error) error {
	return fn(ctx, noopSession{})
}

// videoRepoStub 以内存 map 模拟视频表，保留标题唯一约束与计数语义。
type videoRepoStub struct {
	videos map[uuid.UUID]*po.Video
	err    error
}

func newVideoRepoStub(videos ...*po.Video) *videoRepoStub {
	stub := &videoRepoStub{videos: map[uuid.UUID]*po.Video{}}
	for _, v := range videos {
		cp := *v
		stub.videos[v.VideoID] = &cp
	}
	return stub
}

func (s *videoRepoStub) findByTitle(title string) *po.Video {
	for _, v := range s.videos {
		if v.Title == title {
			return v
		}
	}
	return nil
}

func (s *videoRepoStub) Create(_ context.Context, _ txmanager.Session, input repositories.CreateVideoInput) (*po.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.findByTitle(input.Title) != nil {
		return nil, repositories.ErrVideoTitleTaken
	}
	now := time.Now().UTC()
	v := &po.Video{
		VideoID:            uuid.New(),
		Title:              input.Title,
		Body:               input.Body,
		ShortBody:          input.ShortBody,
		Path:               input.Path,
		TimeToWatchSeconds: input.TimeToWatchSeconds,
		AuthorID:           input.AuthorID,
		Version:            1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.videos[v.VideoID] = v
	cp := *v
	return &cp, nil
}

func (s *videoRepoStub) GetByTitle(_ context.Context, _ txmanager.Session, title string) (*po.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v := s.findByTitle(title); v != nil {
		cp := *v
		return &cp, nil
	}
	return nil, repositories.ErrVideoNotFound
}

func (s *videoRepoStub) GetByID(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	if v, ok := s.videos[videoID]; ok {
		cp := *v
		return &cp, nil
	}
	return nil, repositories.ErrVideoNotFound
}

func (s *videoRepoStub) List(_ context.Context, _ txmanager.Session, title *string) ([]po.Video, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]po.Video, 0)
	for _, v := range s.videos {
		if title != nil && v.Title != *title {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *videoRepoStub) UpdateContent(_ context.Context, _ txmanager.Session, input repositories.UpdateVideoContentInput) (*po.Video, error) {
	v, ok := s.videos[input.VideoID]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	if input.Title != nil {
		if existing := s.findByTitle(*input.Title); existing != nil && existing.VideoID != v.VideoID {
			return nil, repositories.ErrVideoTitleTaken
		}
		v.Title = *input.Title
	}
	if input.Body != nil {
		v.Body = *input.Body
	}
	if input.ShortBody != nil {
		v.ShortBody = *input.ShortBody
	}
	v.Version++
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	return &cp, nil
}

func (s *videoRepoStub) Delete(_ context.Context, _ txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	v, ok := s.videos[videoID]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	delete(s.videos, videoID)
	return v, nil
}

func (s *videoRepoStub) UpdateWatchProgress(_ context.Context, _ txmanager.Session, videoID uuid.UUID, watchedSeconds int64) (*po.Video, error) {
	v, ok := s.videos[videoID]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	if watchedSeconds > v.WatchedTimeSeconds {
		v.WatchedTimeSeconds = watchedSeconds
	}
	if v.WatchedTimeSeconds > v.TimeToWatchSeconds {
		v.WatchedTimeSeconds = v.TimeToWatchSeconds
	}
	v.IsViewed = true
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	return &cp, nil
}

func (s *videoRepoStub) AdjustReactionCount(_ context.Context, _ txmanager.Session, videoID uuid.UUID, likesDelta, dislikesDelta int64) (*po.Video, error) {
	v, ok := s.videos[videoID]
	if !ok {
		return nil, repositories.ErrVideoNotFound
	}
	v.LikesCount += likesDelta
	v.DislikesCount += dislikesDelta
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	return &cp, nil
}

// userRepoStub 以邮箱索引模拟用户表。
type userRepoStub struct {
	users map[string]*po.User
}

func newUserRepoStub(users ...*po.User) *userRepoStub {
	stub := &userRepoStub{users: map[string]*po.User{}}
	for _, u := range users {
		cp := *u
		stub.users[u.Email] = &cp
	}
	return stub
}

func (s *userRepoStub) GetByEmail(_ context.Context, _ txmanager.Session, email string) (*po.User, error) {
	if u, ok := s.users[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (s *userRepoStub) GetByID(_ context.Context, _ txmanager.Session, userID uuid.UUID) (*po.User, error) {
	for _, u := range s.users {
		if u.UserID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (s *userRepoStub) ListByIDs(_ context.Context, _ txmanager.Session, userIDs []uuid.UUID) (map[uuid.UUID]po.User, error) {
	out := map[uuid.UUID]po.User{}
	for _, id := range userIDs {
		for _, u := range s.users {
			if u.UserID == id {
				out[id] = *u
			}
		}
	}
	return out, nil
}

func (s *userRepoStub) Touch(_ context.Context, _ txmanager.Session, userID uuid.UUID) (*po.User, error) {
	for _, u := range s.users {
		if u.UserID == userID {
			u.UpdatedAt = time.Now().UTC()
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

// reactionRepoStub 以组合键模拟表态表，Insert/Delete 返回是否实际变更。
type reactionRepoStub struct {
	rows map[string]po.Reaction
}

func newReactionRepoStub() *reactionRepoStub {
	return &reactionRepoStub{rows: map[string]po.Reaction{}}
}

func reactionKey(userID, videoID uuid.UUID, kind po.ReactionKind) string {
	return fmt.Sprintf("%s|%s|%s", userID, videoID, kind)
}

func (s *reactionRepoStub) Insert(_ context.Context, _ txmanager.Session, userID, videoID uuid.UUID, kind po.ReactionKind) (bool, error) {
	key := reactionKey(userID, videoID, kind)
	if _, ok := s.rows[key]; ok {
		return false, nil
	}
	s.rows[key] = po.Reaction{UserID: userID, VideoID: videoID, Kind: kind, CreatedAt: time.Now().UTC()}
	return true, nil
}

func (s *reactionRepoStub) Delete(_ context.Context, _ txmanager.Session, userID, videoID uuid.UUID, kind po.ReactionKind) (bool, error) {
	key := reactionKey(userID, videoID, kind)
	if _, ok := s.rows[key]; !ok {
		return false, nil
	}
	delete(s.rows, key)
	return true, nil
}

func (s *reactionRepoStub) ListByVideo(_ context.Context, _ txmanager.Session, videoID uuid.UUID) ([]po.ReactionWithUser, error) {
	out := make([]po.ReactionWithUser, 0)
	for _, r := range s.rows {
		if r.VideoID == videoID {
			out = append(out, po.ReactionWithUser{Reaction: r})
		}
	}
	return out, nil
}

func (s *reactionRepoStub) ListByVideos(_ context.Context, _ txmanager.Session, videoIDs []uuid.UUID) (map[uuid.UUID][]po.ReactionWithUser, error) {
	out := map[uuid.UUID][]po.ReactionWithUser{}
	for _, id := range videoIDs {
		items, _ := s.ListByVideo(context.Background(), nil, id)
		if len(items) > 0 {
			out[id] = items
		}
	}
	return out, nil
}

// commentRepoStub 模拟评论与评论点赞。
type commentRepoStub struct {
	comments map[uuid.UUID]*po.Comment
	likes    map[string]struct{}
}

func newCommentRepoStub(comments ...*po.Comment) *commentRepoStub {
	stub := &commentRepoStub{comments: map[uuid.UUID]*po.Comment{}, likes: map[string]struct{}{}}
	for _, c := range comments {
		cp := *c
		stub.comments[c.CommentID] = &cp
	}
	return stub
}

func (s *commentRepoStub) Create(_ context.Context, _ txmanager.Session, input repositories.CreateCommentInput) (*po.Comment, error) {
	c := &po.Comment{
		CommentID: uuid.New(),
		VideoID:   input.VideoID,
		AuthorID:  input.AuthorID,
		Title:     input.Title,
		Body:      input.Body,
		CreatedAt: time.Now().UTC(),
	}
	s.comments[c.CommentID] = c
	cp := *c
	return &cp, nil
}

func (s *commentRepoStub) GetByID(_ context.Context, _ txmanager.Session, commentID uuid.UUID) (*po.Comment, error) {
	if c, ok := s.comments[commentID]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repositories.ErrCommentNotFound
}

func (s *commentRepoStub) UpdateContent(_ context.Context, _ txmanager.Session, commentID uuid.UUID, title, body *string) (*po.Comment, error) {
	c, ok := s.comments[commentID]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	if title != nil {
		c.Title = *title
	}
	if body != nil {
		c.Body = *body
	}
	now := time.Now().UTC()
	c.IsEdited = true
	c.EditedAt = &now
	cp := *c
	return &cp, nil
}

func (s *commentRepoStub) ListByVideo(_ context.Context, _ txmanager.Session, videoID uuid.UUID) ([]po.CommentWithAuthor, error) {
	out := make([]po.CommentWithAuthor, 0)
	for _, c := range s.comments {
		if c.VideoID == videoID {
			out = append(out, po.CommentWithAuthor{Comment: *c})
		}
	}
	return out, nil
}

func (s *commentRepoStub) ListByVideos(_ context.Context, _ txmanager.Session, videoIDs []uuid.UUID) (map[uuid.UUID][]po.CommentWithAuthor, error) {
	out := map[uuid.UUID][]po.CommentWithAuthor{}
	for _, id := range videoIDs {
		items, _ := s.ListByVideo(context.Background(), nil, id)
		if len(items) > 0 {
			out[id] = items
		}
	}
	return out, nil
}

func (s *commentRepoStub) InsertLike(_ context.Context, _ txmanager.Session, userID, commentID uuid.UUID) (bool, error) {
	key := userID.String() + "|" + commentID.String()
	if _, ok := s.likes[key]; ok {
		return false, nil
	}
	s.likes[key] = struct{}{}
	return true, nil
}

func (s *commentRepoStub) DeleteLike(_ context.Context, _ txmanager.Session, userID, commentID uuid.UUID) (bool, error) {
	key := userID.String() + "|" + commentID.String()
	if _, ok := s.likes[key]; !ok {
		return false, nil
	}
	delete(s.likes, key)
	return true, nil
}

func (s *commentRepoStub) AdjustLikesCount(_ context.Context, _ txmanager.Session, commentID uuid.UUID, delta int64) (*po.Comment, error) {
	c, ok := s.comments[commentID]
	if !ok {
		return nil, repositories.ErrCommentNotFound
	}
	c.LikesCount += delta
	cp := *c
	return &cp, nil
}

// outboxStub 记录写入的 Outbox 消息。
type outboxStub struct {
	messages []repositories.OutboxMessage
	err      error
}

func (s *outboxStub) Enqueue(_ context.Context, _ txmanager.Session, msg repositories.OutboxMessage) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

// storeStub 模拟媒体落盘，记录保存与删除的路径。
type storeStub struct {
	saved   []string
	removed []string
	saveErr error
}

func (s *storeStub) Save(_ context.Context, filename string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	path := "/media/" + filename
	s.saved = append(s.saved, path)
	return path, nil
}

func (s *storeStub) Remove(_ context.Context, path string) error {
	s.removed = append(s.removed, path)
	return nil
}

// proberStub 返回固定时长或错误。
type proberStub struct {
	duration time.Duration
	err      error
}

func (s *proberStub) Probe(context.Context, string) (time.Duration, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.duration, nil
}
