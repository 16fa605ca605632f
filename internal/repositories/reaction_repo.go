package repositories

import (
	"context"
	"fmt"

	"github.com/SberTube/sbertube-api/internal/models/po"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReactionRepository 维护用户对视频的表态记录。
// 主键 (user_id, video_id, kind) 保证同类表态幂等，写入方法通过返回值告知是否实际变更。
type ReactionRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewReactionRepository 构造 ReactionRepository 实例（供 Wire 注入使用）。
func NewReactionRepository(db *pgxpool.Pool, logger log.Logger) *ReactionRepository {
	return &ReactionRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// Insert 写入表态记录。重复表态不报错，返回 false 表示未产生新行。
// 调用方仅在返回 true 时调整冗余计数。
func (r *ReactionRepository) Insert(ctx context.Context, sess txmanager.Session, userID, videoID uuid.UUID, kind po.ReactionKind) (bool, error) {
	query := `INSERT INTO tube.reactions (user_id, video_id, kind)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, video_id, kind) DO NOTHING`

	tag, err := conn(r.db, sess).Exec(ctx, query, userID, videoID, kind)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert reaction failed: user_id=%s video_id=%s kind=%s err=%v", userID, videoID, kind, err)
		return false, fmt.Errorf("insert reaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete 删除表态记录。记录不存在不报错，返回 false 表示无行被删除。
func (r *ReactionRepository) Delete(ctx context.Context, sess txmanager.Session, userID, videoID uuid.UUID, kind po.ReactionKind) (bool, error) {
	query := `DELETE FROM tube.reactions WHERE user_id = $1 AND video_id = $2 AND kind = $3`

	tag, err := conn(r.db, sess).Exec(ctx, query, userID, videoID, kind)
	if err != nil {
		r.log.WithContext(ctx).Errorf("delete reaction failed: user_id=%s video_id=%s kind=%s err=%v", userID, videoID, kind, err)
		return false, fmt.Errorf("delete reaction: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ListByVideo 返回指定视频下的全部表态及其用户信息。
func (r *ReactionRepository) ListByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) ([]po.ReactionWithUser, error) {
	query := `SELECT r.user_id, r.video_id, r.kind, r.created_at, u.email, u.username
		FROM tube.reactions r
		JOIN tube.users u ON u.user_id = r.user_id
		WHERE r.video_id = $1
		ORDER BY r.created_at ASC`

	rows, err := conn(r.db, sess).Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	defer rows.Close()

	items := make([]po.ReactionWithUser, 0)
	for rows.Next() {
		var item po.ReactionWithUser
		if err := rows.Scan(&item.UserID, &item.VideoID, &item.Kind, &item.CreatedAt, &item.UserEmail, &item.UserUsername); err != nil {
			return nil, fmt.Errorf("scan reaction row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reactions: %w", err)
	}
	return items, nil
}

// ListByVideos 批量返回多个视频的表态，按视频分组。
func (r *ReactionRepository) ListByVideos(ctx context.Context, sess txmanager.Session, videoIDs []uuid.UUID) (map[uuid.UUID][]po.ReactionWithUser, error) {
	result := make(map[uuid.UUID][]po.ReactionWithUser, len(videoIDs))
	if len(videoIDs) == 0 {
		return result, nil
	}

	query := `SELECT r.user_id, r.video_id, r.kind, r.created_at, u.email, u.username
		FROM tube.reactions r
		JOIN tube.users u ON u.user_id = r.user_id
		WHERE r.video_id = ANY($1)
		ORDER BY r.created_at ASC`

	rows, err := conn(r.db, sess).Query(ctx, query, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("list reactions by videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item po.ReactionWithUser
		if err := rows.Scan(&item.UserID, &item.VideoID, &item.Kind, &item.CreatedAt, &item.UserEmail, &item.UserUsername); err != nil {
			return nil, fmt.Errorf("scan reaction row: %w", err)
		}
		result[item.VideoID] = append(result[item.VideoID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reactions by videos: %w", err)
	}
	return result, nil
}
