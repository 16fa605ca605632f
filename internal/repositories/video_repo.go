package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/SberTube/sbertube-api/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrVideoNotFound 表示请求的视频不存在。
var ErrVideoNotFound = errors.New("video not found")

// ErrVideoTitleTaken 表示标题已被其他视频占用。
var ErrVideoTitleTaken = errors.New("video title already taken")

const videoColumns = `video_id, title, body, short_body, path,
	time_to_watch_seconds, watched_time_seconds, is_viewed,
	author_id, likes_count, dislikes_count, version, created_at, updated_at`

// VideoRepository 提供视频相关的持久化访问能力。
type VideoRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewVideoRepository 构造 VideoRepository 实例（供 Wire 注入使用）。
func NewVideoRepository(db *pgxpool.Pool, logger log.Logger) *VideoRepository {
	return &VideoRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// CreateVideoInput 表示创建视频的输入参数。
type CreateVideoInput struct {
	Title              string
	Body               string
	ShortBody          string
	Path               string
	TimeToWatchSeconds int64
	AuthorID           uuid.UUID
}

// UpdateVideoContentInput 表示可选更新字段的集合。
// 仅标题与描述可变，路径、作者与计数字段不受本操作影响。
type UpdateVideoContentInput struct {
	VideoID   uuid.UUID
	Title     *string
	Body      *string
	ShortBody *string
}

func scanVideo(row pgx.Row) (*po.Video, error) {
	var v po.Video
	err := row.Scan(
		&v.VideoID, &v.Title, &v.Body, &v.ShortBody, &v.Path,
		&v.TimeToWatchSeconds, &v.WatchedTimeSeconds, &v.IsViewed,
		&v.AuthorID, &v.LikesCount, &v.DislikesCount, &v.Version,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Create 创建新视频记录，video_id 由数据库自动生成。
// 标题唯一约束冲突映射为 ErrVideoTitleTaken。
func (r *VideoRepository) Create(ctx context.Context, sess txmanager.Session, input CreateVideoInput) (*po.Video, error) {
	query := `INSERT INTO tube.videos (title, body, short_body, path, time_to_watch_seconds, author_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + videoColumns

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query,
		input.Title, input.Body, input.ShortBody, input.Path,
		input.TimeToWatchSeconds, input.AuthorID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrVideoTitleTaken
		}
		r.log.WithContext(ctx).Errorf("create video failed: title=%s err=%v", input.Title, err)
		return nil, fmt.Errorf("create video: %w", err)
	}

	r.log.WithContext(ctx).Infof("video created: video_id=%s title=%s", video.VideoID, video.Title)
	return video, nil
}

// GetByTitle 按标题精确查找视频。
func (r *VideoRepository) GetByTitle(ctx context.Context, sess txmanager.Session, title string) (*po.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM tube.videos WHERE title = $1`

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query, title))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("get video by title failed: title=%s err=%v", title, err)
		return nil, fmt.Errorf("get video by title: %w", err)
	}
	return video, nil
}

// GetByID 按主键查找视频。
func (r *VideoRepository) GetByID(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM tube.videos WHERE video_id = $1`

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("get video failed: video_id=%s err=%v", videoID, err)
		return nil, fmt.Errorf("get video: %w", err)
	}
	return video, nil
}

// List 返回视频列表，title 非空时按标题精确过滤。
// 无匹配结果返回空切片而非错误。
func (r *VideoRepository) List(ctx context.Context, sess txmanager.Session, title *string) ([]po.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM tube.videos
		WHERE $1::text IS NULL OR title = $1
		ORDER BY created_at DESC, video_id DESC`

	rows, err := conn(r.db, sess).Query(ctx, query, title)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	defer rows.Close()

	items := make([]po.Video, 0)
	for rows.Next() {
		video, scanErr := scanVideo(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan video row: %w", scanErr)
		}
		items = append(items, *video)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return items, nil
}

// UpdateContent 对视频的可变字段执行部分更新，并递增版本号。
// 新标题与既有视频冲突时映射为 ErrVideoTitleTaken。
func (r *VideoRepository) UpdateContent(ctx context.Context, sess txmanager.Session, input UpdateVideoContentInput) (*po.Video, error) {
	query := `UPDATE tube.videos SET
			title = COALESCE($2, title),
			body = COALESCE($3, body),
			short_body = COALESCE($4, short_body),
			version = version + 1,
			updated_at = now()
		WHERE video_id = $1
		RETURNING ` + videoColumns

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query,
		input.VideoID, input.Title, input.Body, input.ShortBody,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrVideoTitleTaken
		}
		r.log.WithContext(ctx).Errorf("update video failed: video_id=%s err=%v", input.VideoID, err)
		return nil, fmt.Errorf("update video: %w", err)
	}

	r.log.WithContext(ctx).Infof("video updated: video_id=%s", video.VideoID)
	return video, nil
}

// Delete 删除视频记录并返回被删除的实体快照。
// 评论与表态由外键级联一并清除。
func (r *VideoRepository) Delete(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) (*po.Video, error) {
	query := `DELETE FROM tube.videos WHERE video_id = $1 RETURNING ` + videoColumns

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query, videoID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("delete video failed: video_id=%s err=%v", videoID, err)
		return nil, fmt.Errorf("delete video: %w", err)
	}

	r.log.WithContext(ctx).Infof("video deleted: video_id=%s", video.VideoID)
	return video, nil
}

// UpdateWatchProgress 推进观看进度。
// 进度单调不减且不超过视频总时长，首次写入时置位 is_viewed。
func (r *VideoRepository) UpdateWatchProgress(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, watchedSeconds int64) (*po.Video, error) {
	query := `UPDATE tube.videos SET
			watched_time_seconds = LEAST(time_to_watch_seconds, GREATEST(watched_time_seconds, $2)),
			is_viewed = TRUE,
			updated_at = now()
		WHERE video_id = $1
		RETURNING ` + videoColumns

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query, videoID, watchedSeconds))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("update watch progress failed: video_id=%s err=%v", videoID, err)
		return nil, fmt.Errorf("update watch progress: %w", err)
	}
	return video, nil
}

// AdjustReactionCount 调整冗余表态计数，必须与 tube.reactions 的写入处于同一事务。
func (r *VideoRepository) AdjustReactionCount(ctx context.Context, sess txmanager.Session, videoID uuid.UUID, likesDelta, dislikesDelta int64) (*po.Video, error) {
	query := `UPDATE tube.videos SET
			likes_count = likes_count + $2,
			dislikes_count = dislikes_count + $3,
			updated_at = now()
		WHERE video_id = $1
		RETURNING ` + videoColumns

	video, err := scanVideo(conn(r.db, sess).QueryRow(ctx, query, videoID, likesDelta, dislikesDelta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVideoNotFound
		}
		r.log.WithContext(ctx).Errorf("adjust reaction count failed: video_id=%s err=%v", videoID, err)
		return nil, fmt.Errorf("adjust reaction count: %w", err)
	}
	return video, nil
}
