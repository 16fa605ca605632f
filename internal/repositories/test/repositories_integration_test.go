package repositories_test

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/repositories"

	"github.com/docker/go-connections/nat"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestVideoRepository_CreateAndLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	videos := repositories.NewVideoRepository(pool, logger)
	authorID := seedUser(ctx, t, pool, "author@example.com", "author")

	created, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:              "go concurrency patterns",
		Body:               "full description",
		ShortBody:          "short",
		Path:               "/media/demo.mp4",
		TimeToWatchSeconds: 120,
		AuthorID:           authorID,
	})
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.VideoID)
	require.EqualValues(t, 1, created.Version)
	require.EqualValues(t, 0, created.LikesCount)
	require.False(t, created.IsViewed)

	_, err = videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "go concurrency patterns",
		Path:     "/media/other.mp4",
		AuthorID: authorID,
	})
	require.ErrorIs(t, err, repositories.ErrVideoTitleTaken)

	byTitle, err := videos.GetByTitle(ctx, nil, "go concurrency patterns")
	require.NoError(t, err)
	require.Equal(t, created.VideoID, byTitle.VideoID)

	_, err = videos.GetByTitle(ctx, nil, "missing title")
	require.ErrorIs(t, err, repositories.ErrVideoNotFound)

	_, err = videos.GetByID(ctx, nil, uuid.New())
	require.ErrorIs(t, err, repositories.ErrVideoNotFound)

	second, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "another upload",
		Path:     "/media/second.mp4",
		AuthorID: authorID,
	})
	require.NoError(t, err)

	all, err := videos.List(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)

	title := "another upload"
	filtered, err := videos.List(ctx, nil, &title)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, second.VideoID, filtered[0].VideoID)

	missing := "no such video"
	empty, err := videos.List(ctx, nil, &missing)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestVideoRepository_UpdateContent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	videos := repositories.NewVideoRepository(pool, logger)
	authorID := seedUser(ctx, t, pool, "author@example.com", "author")

	created, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "original title",
		Body:     "original body",
		Path:     "/media/demo.mp4",
		AuthorID: authorID,
	})
	require.NoError(t, err)

	newBody := "revised body"
	updated, err := videos.UpdateContent(ctx, nil, repositories.UpdateVideoContentInput{
		VideoID: created.VideoID,
		Body:    &newBody,
	})
	require.NoError(t, err)
	require.Equal(t, "original title", updated.Title)
	require.Equal(t, "revised body", updated.Body)
	require.EqualValues(t, 2, updated.Version)

	_, err = videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "occupied title",
		Path:     "/media/other.mp4",
		AuthorID: authorID,
	})
	require.NoError(t, err)

	conflict := "occupied title"
	_, err = videos.UpdateContent(ctx, nil, repositories.UpdateVideoContentInput{
		VideoID: created.VideoID,
		Title:   &conflict,
	})
	require.ErrorIs(t, err, repositories.ErrVideoTitleTaken)

	_, err = videos.UpdateContent(ctx, nil, repositories.UpdateVideoContentInput{
		VideoID: uuid.New(),
		Body:    &newBody,
	})
	require.ErrorIs(t, err, repositories.ErrVideoNotFound)
}

func TestVideoRepository_WatchProgress(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	videos := repositories.NewVideoRepository(pool, logger)
	authorID := seedUser(ctx, t, pool, "author@example.com", "author")

	created, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:              "progress target",
		Path:               "/media/demo.mp4",
		TimeToWatchSeconds: 120,
		AuthorID:           authorID,
	})
	require.NoError(t, err)

	updated, err := videos.UpdateWatchProgress(ctx, nil, created.VideoID, 50)
	require.NoError(t, err)
	require.EqualValues(t, 50, updated.WatchedTimeSeconds)
	require.True(t, updated.IsViewed)

	updated, err = videos.UpdateWatchProgress(ctx, nil, created.VideoID, 30)
	require.NoError(t, err)
	require.EqualValues(t, 50, updated.WatchedTimeSeconds)

	updated, err = videos.UpdateWatchProgress(ctx, nil, created.VideoID, 999)
	require.NoError(t, err)
	require.EqualValues(t, 120, updated.WatchedTimeSeconds)

	_, err = videos.UpdateWatchProgress(ctx, nil, uuid.New(), 10)
	require.ErrorIs(t, err, repositories.ErrVideoNotFound)
}

func TestReactionRepository_IdempotentWrites(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	videos := repositories.NewVideoRepository(pool, logger)
	reactions := repositories.NewReactionRepository(pool, logger)

	authorID := seedUser(ctx, t, pool, "author@example.com", "author")
	viewerID := seedUser(ctx, t, pool, "viewer@example.com", "viewer")

	video, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "reaction target",
		Path:     "/media/demo.mp4",
		AuthorID: authorID,
	})
	require.NoError(t, err)

	changed, err := reactions.Insert(ctx, nil, viewerID, video.VideoID, po.ReactionLike)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = reactions.Insert(ctx, nil, viewerID, video.VideoID, po.ReactionLike)
	require.NoError(t, err)
	require.False(t, changed)

	adjusted, err := videos.AdjustReactionCount(ctx, nil, video.VideoID, 1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, adjusted.LikesCount)

	listed, err := reactions.ListByVideo(ctx, nil, video.VideoID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, po.ReactionLike, listed[0].Kind)
	require.Equal(t, "viewer@example.com", listed[0].UserEmail)

	changed, err = reactions.Delete(ctx, nil, viewerID, video.VideoID, po.ReactionLike)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = reactions.Delete(ctx, nil, viewerID, video.VideoID, po.ReactionLike)
	require.NoError(t, err)
	require.False(t, changed)

	adjusted, err = videos.AdjustReactionCount(ctx, nil, video.VideoID, -1, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0, adjusted.LikesCount)
}

func TestCommentRepository_LifecycleAndLikes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	videos := repositories.NewVideoRepository(pool, logger)
	comments := repositories.NewCommentRepository(pool, logger)

	authorID := seedUser(ctx, t, pool, "author@example.com", "author")
	viewerID := seedUser(ctx, t, pool, "viewer@example.com", "viewer")

	video, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "comment target",
		Path:     "/media/demo.mp4",
		AuthorID: authorID,
	})
	require.NoError(t, err)

	comment, err := comments.Create(ctx, nil, repositories.CreateCommentInput{
		VideoID:  video.VideoID,
		AuthorID: viewerID,
		Title:    "first",
		Body:     "nice video",
	})
	require.NoError(t, err)
	require.False(t, comment.IsEdited)
	require.Nil(t, comment.EditedAt)

	newBody := "even better on rewatch"
	edited, err := comments.UpdateContent(ctx, nil, comment.CommentID, nil, &newBody)
	require.NoError(t, err)
	require.Equal(t, "first", edited.Title)
	require.Equal(t, newBody, edited.Body)
	require.True(t, edited.IsEdited)
	require.NotNil(t, edited.EditedAt)

	_, err = comments.GetByID(ctx, nil, uuid.New())
	require.ErrorIs(t, err, repositories.ErrCommentNotFound)

	changed, err := comments.InsertLike(ctx, nil, viewerID, comment.CommentID)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = comments.InsertLike(ctx, nil, viewerID, comment.CommentID)
	require.NoError(t, err)
	require.False(t, changed)

	adjusted, err := comments.AdjustLikesCount(ctx, nil, comment.CommentID, 1)
	require.NoError(t, err)
	require.EqualValues(t, 1, adjusted.LikesCount)

	changed, err = comments.DeleteLike(ctx, nil, viewerID, comment.CommentID)
	require.NoError(t, err)
	require.True(t, changed)

	listed, err := comments.ListByVideo(ctx, nil, video.VideoID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	require.Equal(t, "viewer@example.com", listed[0].AuthorEmail)
	require.Equal(t, "viewer", listed[0].AuthorUsername)
}

func TestVideoRepository_DeleteCascades(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	videos := repositories.NewVideoRepository(pool, logger)
	comments := repositories.NewCommentRepository(pool, logger)
	reactions := repositories.NewReactionRepository(pool, logger)

	authorID := seedUser(ctx, t, pool, "author@example.com", "author")
	viewerID := seedUser(ctx, t, pool, "viewer@example.com", "viewer")

	video, err := videos.Create(ctx, nil, repositories.CreateVideoInput{
		Title:    "cascade target",
		Path:     "/media/demo.mp4",
		AuthorID: authorID,
	})
	require.NoError(t, err)

	comment, err := comments.Create(ctx, nil, repositories.CreateCommentInput{
		VideoID:  video.VideoID,
		AuthorID: viewerID,
		Title:    "first",
		Body:     "nice video",
	})
	require.NoError(t, err)

	_, err = comments.InsertLike(ctx, nil, viewerID, comment.CommentID)
	require.NoError(t, err)

	_, err = reactions.Insert(ctx, nil, viewerID, video.VideoID, po.ReactionDislike)
	require.NoError(t, err)

	deleted, err := videos.Delete(ctx, nil, video.VideoID)
	require.NoError(t, err)
	require.Equal(t, "/media/demo.mp4", deleted.Path)

	_, err = videos.Delete(ctx, nil, video.VideoID)
	require.ErrorIs(t, err, repositories.ErrVideoNotFound)

	requireCount(ctx, t, pool, "SELECT count(*) FROM tube.comments WHERE video_id = $1", 0, video.VideoID)
	requireCount(ctx, t, pool, "SELECT count(*) FROM tube.reactions WHERE video_id = $1", 0, video.VideoID)
	requireCount(ctx, t, pool, "SELECT count(*) FROM tube.comment_likes WHERE comment_id = $1", 0, comment.CommentID)
}

func TestUserRepository_Lookups(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pool := newTestPool(ctx, t)
	logger := log.NewStdLogger(io.Discard)

	users := repositories.NewUserRepository(pool, logger)
	firstID := seedUser(ctx, t, pool, "first@example.com", "first")
	secondID := seedUser(ctx, t, pool, "second@example.com", "second")

	byEmail, err := users.GetByEmail(ctx, nil, "first@example.com")
	require.NoError(t, err)
	require.Equal(t, firstID, byEmail.UserID)

	_, err = users.GetByEmail(ctx, nil, "unknown@example.com")
	require.ErrorIs(t, err, repositories.ErrUserNotFound)

	byID, err := users.GetByID(ctx, nil, secondID)
	require.NoError(t, err)
	require.Equal(t, "second", byID.Username)

	batch, err := users.ListByIDs(ctx, nil, []uuid.UUID{firstID, secondID, uuid.New()})
	require.NoError(t, err)
	require.Len(t, batch, 2)
	require.Equal(t, "first@example.com", batch[firstID].Email)
}

func newTestPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn, terminate := startPostgres(ctx, t)
	t.Cleanup(terminate)

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	applyMigrations(ctx, t, pool)
	return pool
}

func seedUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email, username string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO tube.users (email, username) VALUES ($1, $2) RETURNING user_id`,
		email, username,
	).Scan(&id)
	require.NoError(t, err)
	return id
}

func requireCount(ctx context.Context, t *testing.T, pool *pgxpool.Pool, query string, want int64, args ...any) {
	t.Helper()

	var got int64
	require.NoError(t, pool.QueryRow(ctx, query, args...).Scan(&got))
	require.Equal(t, want, got)
}

func startPostgres(ctx context.Context, t *testing.T) (string, func()) {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "postgres",
			"POSTGRES_USER":     "postgres",
			"POSTGRES_DB":       "tube",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://postgres:postgres@%s:%s/tube?sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip repository integration tests: cannot start postgres container: %v", err)
	}

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://postgres:postgres@%s:%s/tube?sslmode=disable", host, port.Port())
	cleanup := func() {
		termCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = container.Terminate(termCtx)
	}
	return dsn, cleanup
}

func applyMigrations(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	files, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".sql" {
			continue
		}
		paths = append(paths, filepath.Join(migrationsDir, f.Name()))
	}
	sort.Strings(paths)

	for _, path := range paths {
		sqlBytes, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		_, execErr := pool.Exec(ctx, string(sqlBytes))
		require.NoErrorf(t, execErr, "apply migration %s", filepath.Base(path))
	}
}
