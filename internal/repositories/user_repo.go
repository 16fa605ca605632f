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

// ErrUserNotFound 表示请求的用户不存在。
var ErrUserNotFound = errors.New("user not found")

const userColumns = `user_id, email, username, created_at, updated_at`

// UserRepository 提供用户档案的只读访问与触达时间刷新。
// 账户的创建与认证由网关侧系统负责，本服务不写入档案字段。
type UserRepository struct {
	db  *pgxpool.Pool
	log *log.Helper
}

// NewUserRepository 构造 UserRepository 实例（供 Wire 注入使用）。
func NewUserRepository(db *pgxpool.Pool, logger log.Logger) *UserRepository {
	return &UserRepository{
		db:  db,
		log: log.NewHelper(logger),
	}
}

func scanUser(row pgx.Row) (*po.User, error) {
	var u po.User
	if err := row.Scan(&u.UserID, &u.Email, &u.Username, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail 按邮箱精确查找用户。
func (r *UserRepository) GetByEmail(ctx context.Context, sess txmanager.Session, email string) (*po.User, error) {
	query := `SELECT ` + userColumns + ` FROM tube.users WHERE email = $1`

	user, err := scanUser(conn(r.db, sess).QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.WithContext(ctx).Errorf("get user by email failed: email=%s err=%v", email, err)
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

// GetByID 按主键查找用户。
func (r *UserRepository) GetByID(ctx context.Context, sess txmanager.Session, userID uuid.UUID) (*po.User, error) {
	query := `SELECT ` + userColumns + ` FROM tube.users WHERE user_id = $1`

	user, err := scanUser(conn(r.db, sess).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.WithContext(ctx).Errorf("get user failed: user_id=%s err=%v", userID, err)
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListByIDs 批量查找用户，返回 user_id 到实体的映射，缺失的 ID 不报错。
func (r *UserRepository) ListByIDs(ctx context.Context, sess txmanager.Session, userIDs []uuid.UUID) (map[uuid.UUID]po.User, error) {
	result := make(map[uuid.UUID]po.User, len(userIDs))
	if len(userIDs) == 0 {
		return result, nil
	}

	query := `SELECT ` + userColumns + ` FROM tube.users WHERE user_id = ANY($1)`

	rows, err := conn(r.db, sess).Query(ctx, query, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		user, scanErr := scanUser(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("scan user row: %w", scanErr)
		}
		result[user.UserID] = *user
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return result, nil
}

// Touch 刷新用户的最近活跃时间并返回最新实体。
func (r *UserRepository) Touch(ctx context.Context, sess txmanager.Session, userID uuid.UUID) (*po.User, error) {
	query := `UPDATE tube.users SET updated_at = now() WHERE user_id = $1 RETURNING ` + userColumns

	user, err := scanUser(conn(r.db, sess).QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		r.log.WithContext(ctx).Errorf("touch user failed: user_id=%s err=%v", userID, err)
		return nil, fmt.Errorf("touch user: %w", err)
	}
	return user, nil
}
