package services_test

import (
	"context"
	"io"
	"testing"

	"github.com/SberTube/sbertube-api/internal/models/events"
	"github.com/SberTube/sbertube-api/internal/models/po"
	"github.com/SberTube/sbertube-api/internal/services"
	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/uuid"
)

func newCommentFixture(videos *videoRepoStub, users *userRepoStub, comments *commentRepoStub, outbox *outboxStub) *services.CommentService {
	logger := log.NewStdLogger(io.Discard)
	return services.NewCommentService(videos, users, comments, outbox, noopTxManager{}, logger)
}

func TestAddCommentEnqueuesEvent(t *testing.T) {
	author := &po.User{UserID: uuid.New(), Email: "viewer@example.com", Username: "viewer"}
	video := &po.Video{VideoID: uuid.New(), Title: "demo", AuthorID: uuid.New()}
	outbox := &outboxStub{}
	svc := newCommentFixture(newVideoRepoStub(video), newUserRepoStub(author), newCommentRepoStub(), outbox)

	view, err := svc.Add(context.Background(), services.Identity{Email: author.Email}, services.AddCommentInput{
		VideoTitle: "demo",
		Title:      "nice",
		Body:       "great video",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Body != "great video" || view.Author == nil || view.Author.Email != author.Email {
		t.Fatalf("comment view incomplete: %+v", view)
	}
	if len(outbox.messages) != 1 || outbox.messages[0].EventType != events.KindCommentCreated {
		t.Fatalf("expected comment created event, got %+v", outbox.messages)
	}
}

func TestAddCommentEmptyBodyRejected(t *testing.T) {
	author := &po.User{UserID: uuid.New(), Email: "viewer@example.com"}
	svc := newCommentFixture(newVideoRepoStub(), newUserRepoStub(author), newCommentRepoStub(), &outboxStub{})

	_, err := svc.Add(context.Background(), services.Identity{Email: author.Email}, services.AddCommentInput{VideoTitle: "demo", Body: "   "})
	e := errors.FromError(err)
	if e == nil || e.Code != 400 {
		t.Fatalf("expected 400 for empty body, got %v", err)
	}
}

func TestAddCommentUnknownVideo(t *testing.T) {
	author := &po.User{UserID: uuid.New(), Email: "viewer@example.com"}
	svc := newCommentFixture(newVideoRepoStub(), newUserRepoStub(author), newCommentRepoStub(), &outboxStub{})

	_, err := svc.Add(context.Background(), services.Identity{Email: author.Email}, services.AddCommentInput{VideoTitle: "missing", Body: "text"})
	e := errors.FromError(err)
	if e == nil || e.Code != 404 || e.Reason != "VIDEO_NOT_FOUND" {
		t.Fatalf("expected 404 VIDEO_NOT_FOUND, got %v", err)
	}
}

func TestEditCommentRejectsNonOwner(t *testing.T) {
	owner := &po.User{UserID: uuid.New(), Email: "owner@example.com"}
	intruder := &po.User{UserID: uuid.New(), Email: "other@example.com"}
	comment := &po.Comment{CommentID: uuid.New(), VideoID: uuid.New(), AuthorID: owner.UserID, Body: "original"}
	svc := newCommentFixture(newVideoRepoStub(), newUserRepoStub(owner, intruder), newCommentRepoStub(comment), &outboxStub{})

	body := "tampered"
	_, err := svc.Edit(context.Background(), services.Identity{Email: intruder.Email}, services.EditCommentInput{CommentID: comment.CommentID, Body: &body})
	e := errors.FromError(err)
	if e == nil || e.Code != 403 || e.Reason != "NOT_COMMENT_OWNER" {
		t.Fatalf("expected 403 NOT_COMMENT_OWNER, got %v", err)
	}
}

func TestEditCommentMarksEdited(t *testing.T) {
	owner := &po.User{UserID: uuid.New(), Email: "owner@example.com"}
	comment := &po.Comment{CommentID: uuid.New(), VideoID: uuid.New(), AuthorID: owner.UserID, Body: "original"}
	svc := newCommentFixture(newVideoRepoStub(), newUserRepoStub(owner), newCommentRepoStub(comment), &outboxStub{})

	body := "revised"
	view, err := svc.Edit(context.Background(), services.Identity{Email: owner.Email}, services.EditCommentInput{CommentID: comment.CommentID, Body: &body})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Body != "revised" || !view.IsEdited || view.EditedAt == nil {
		t.Fatalf("edit flags not set: %+v", view)
	}
}

func TestEditCommentMissingNotFound(t *testing.T) {
	owner := &po.User{UserID: uuid.New(), Email: "owner@example.com"}
	svc := newCommentFixture(newVideoRepoStub(), newUserRepoStub(owner), newCommentRepoStub(), &outboxStub{})

	body := "text"
	_, err := svc.Edit(context.Background(), services.Identity{Email: owner.Email}, services.EditCommentInput{CommentID: uuid.New(), Body: &body})
	e := errors.FromError(err)
	if e == nil || e.Code != 404 || e.Reason != "COMMENT_NOT_FOUND" {
		t.Fatalf("expected 404 COMMENT_NOT_FOUND, got %v", err)
	}
}

func TestCommentLikeIsIdempotent(t *testing.T) {
	owner := &po.User{UserID: uuid.New(), Email: "owner@example.com"}
	liker := &po.User{UserID: uuid.New(), Email: "liker@example.com"}
	comment := &po.Comment{CommentID: uuid.New(), VideoID: uuid.New(), AuthorID: owner.UserID, Body: "text"}
	svc := newCommentFixture(newVideoRepoStub(), newUserRepoStub(owner, liker), newCommentRepoStub(comment), &outboxStub{})

	identity := services.Identity{Email: liker.Email}
	view, err := svc.Like(context.Background(), identity, comment.CommentID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.LikesCount != 1 {
		t.Fatalf("expected 1 like, got %d", view.LikesCount)
	}

	view, err = svc.Like(context.Background(), identity, comment.CommentID)
	if err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}
	if view.LikesCount != 1 {
		t.Fatalf("repeat like must not change count, got %d", view.LikesCount)
	}

	view, err = svc.Unlike(context.Background(), identity, comment.CommentID)
	if err != nil {
		t.Fatalf("unexpected error on unlike: %v", err)
	}
	if view.LikesCount != 0 {
		t.Fatalf("expected 0 likes after unlike, got %d", view.LikesCount)
	}
}
