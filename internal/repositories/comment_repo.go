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

// ErrCommentNotFound 表示请求的评论不存在。
var ErrCommentNotFound = errors.New("comment not found")

const commentColumns = `comment_id, video_id, author_id, title, body, likes_count, is_edited, created_at, edited_at`

// CommentRepository 维护视频评论及其点赞计数。
type CommentRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewCommentRepository 构造 CommentRepository 实例（供 Wire 注入使用）。
func NewCommentRepository(db *pgxpool.Pool, logger log.Logger) *CommentRepository {
	return &CommentRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

// CreateCommentInput 表示创建评论的输入参数。
type CreateCommentInput struct {
	VideoID  uuid.UUID
	AuthorID uuid.UUID
	Title    string
	Body     string
}

func scanComment(row pgx.Row) (*po.Comment, error) {
	var c po.Comment
	err := row.Scan(
		&c.CommentID, &c.VideoID, &c.AuthorID, &c.Title, &c.Body,
		&c.LikesCount, &c.IsEdited, &c.CreatedAt, &c.EditedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create 创建评论记录。
func (r *CommentRepository) Create(ctx context.Context, sess txmanager.Session, input CreateCommentInput) (*po.Comment, error) {
	query := `INSERT INTO tube.comments (video_id, author_id, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + commentColumns

	comment, err := scanComment(conn(r.db, sess).QueryRow(ctx, query,
		input.VideoID, input.AuthorID, input.Title, input.Body,
	))
	if err != nil {
		r.log.WithContext(ctx).Errorf("create comment failed: video_id=%s err=%v", input.VideoID, err)
		return nil, fmt.Errorf("create comment: %w", err)
	}

	r.log.WithContext(ctx).Infof("comment created: comment_id=%s video_id=%s", comment.CommentID, comment.VideoID)
	return comment, nil
}

// GetByID 按主键查找评论。
func (r *CommentRepository) GetByID(ctx context.Context, sess txmanager.Session, commentID uuid.UUID) (*po.Comment, error) {
	query := `SELECT ` + commentColumns + ` FROM tube.comments WHERE comment_id = $1`

	comment, err := scanComment(conn(r.db, sess).QueryRow(ctx, query, commentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		r.log.WithContext(ctx).Errorf("get comment failed: comment_id=%s err=%v", commentID, err)
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return comment, nil
}

// UpdateContent 更新评论内容并标记编辑状态。
func (r *CommentRepository) UpdateContent(ctx context.Context, sess txmanager.Session, commentID uuid.UUID, title, body *string) (*po.Comment, error) {
	query := `UPDATE tube.comments SET
			title = COALESCE($2, title),
			body = COALESCE($3, body),
			is_edited = TRUE,
			edited_at = now()
		WHERE comment_id = $1
		RETURNING ` + commentColumns

	comment, err := scanComment(conn(r.db, sess).QueryRow(ctx, query, commentID, title, body))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		r.log.WithContext(ctx).Errorf("update comment failed: comment_id=%s err=%v", commentID, err)
		return nil, fmt.Errorf("update comment: %w", err)
	}

	r.log.WithContext(ctx).Infof("comment updated: comment_id=%s", comment.CommentID)
	return comment, nil
}

// ListByVideo 返回指定视频下的全部评论及其作者信息。
func (r *CommentRepository) ListByVideo(ctx context.Context, sess txmanager.Session, videoID uuid.UUID) ([]po.CommentWithAuthor, error) {
	query := `SELECT c.comment_id, c.video_id, c.author_id, c.title, c.body,
			c.likes_count, c.is_edited, c.created_at, c.edited_at,
			u.email, u.username
		FROM tube.comments c
		JOIN tube.users u ON u.user_id = c.author_id
		WHERE c.video_id = $1
		ORDER BY c.created_at ASC`

	rows, err := conn(r.db, sess).Query(ctx, query, videoID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]po.CommentWithAuthor, 0)
	for rows.Next() {
		var item po.CommentWithAuthor
		err := rows.Scan(
			&item.CommentID, &item.VideoID, &item.AuthorID, &item.Title, &item.Body,
			&item.LikesCount, &item.IsEdited, &item.CreatedAt, &item.EditedAt,
			&item.AuthorEmail, &item.AuthorUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return items, nil
}

// ListByVideos 批量返回多个视频的评论，按视频分组。
func (r *CommentRepository) ListByVideos(ctx context.Context, sess txmanager.Session, videoIDs []uuid.UUID) (map[uuid.UUID][]po.CommentWithAuthor, error) {
	result := make(map[uuid.UUID][]po.CommentWithAuthor, len(videoIDs))
	if len(videoIDs) == 0 {
		return result, nil
	}

	query := `SELECT c.comment_id, c.video_id, c.author_id, c.title, c.body,
			c.likes_count, c.is_edited, c.created_at, c.edited_at,
			u.email, u.username
		FROM tube.comments c
		JOIN tube.users u ON u.user_id = c.author_id
		WHERE c.video_id = ANY($1)
		ORDER BY c.created_at ASC`

	rows, err := conn(r.db, sess).Query(ctx, query, videoIDs)
	if err != nil {
		return nil, fmt.Errorf("list comments by videos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item po.CommentWithAuthor
		err := rows.Scan(
			&item.CommentID, &item.VideoID, &item.AuthorID, &item.Title, &item.Body,
			&item.LikesCount, &item.IsEdited, &item.CreatedAt, &item.EditedAt,
			&item.AuthorEmail, &item.AuthorUsername,
		)
		if err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		result[item.VideoID] = append(result[item.VideoID], item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list comments by videos: %w", err)
	}
	return result, nil
}

// InsertLike 写入评论点赞记录。重复点赞返回 false。
func (r *CommentRepository) InsertLike(ctx context.Context, sess txmanager.Session, userID, commentID uuid.UUID) (bool, error) {
	query := `INSERT INTO tube.comment_likes (user_id, comment_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, comment_id) DO NOTHING`

	tag, err := conn(r.db, sess).Exec(ctx, query, userID, commentID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("insert comment like failed: comment_id=%s err=%v", commentID, err)
		return false, fmt.Errorf("insert comment like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteLike 删除评论点赞记录。记录不存在返回 false。
func (r *CommentRepository) DeleteLike(ctx context.Context, sess txmanager.Session, userID, commentID uuid.UUID) (bool, error) {
	query := `DELETE FROM tube.comment_likes WHERE user_id = $1 AND comment_id = $2`

	tag, err := conn(r.db, sess).Exec(ctx, query, userID, commentID)
	if err != nil {
		r.log.WithContext(ctx).Errorf("delete comment like failed: comment_id=%s err=%v", commentID, err)
		return false, fmt.Errorf("delete comment like: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AdjustLikesCount 调整评论冗余点赞计数，与 comment_likes 写入同事务。
func (r *CommentRepository) AdjustLikesCount(ctx context.Context, sess txmanager.Session, commentID uuid.UUID, delta int64) (*po.Comment, error) {
	query := `UPDATE tube.comments SET likes_count = likes_count + $2
		WHERE comment_id = $1
		RETURNING ` + commentColumns

	comment, err := scanComment(conn(r.db, sess).QueryRow(ctx, query, commentID, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCommentNotFound
		}
		r.log.WithContext(ctx).Errorf("adjust comment likes failed: comment_id=%s err=%v", commentID, err)
		return nil, fmt.Errorf("adjust comment likes: %w", err)
	}
	return comment, nil
}
