// Package repositories 实现数据访问层，基于 pgx 手写 SQL 查询。
package repositories

import (
	"context"

	"github.com/bionicotaku/lingo-utils/txmanager"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// querier 抽象连接池与事务的最小执行接口。
// *pgxpool.Pool 与 pgx.Tx 均满足该接口，仓储方法据此在事务内外复用同一套 SQL。
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn 返回当前应使用的执行端：事务会话优先，否则回落到连接池。
func conn(db *pgxpool.Pool, sess txmanager.Session) querier {
	if sess != nil {
		return sess.Tx()
	}
	return db
}
