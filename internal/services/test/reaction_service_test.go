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

func newReactionFixture(videos *videoRepoStub, users *userRepoStub, outbox *outboxStub) *services.ReactionService {
	logger := log.NewStdLogger(io.Discard)
	return services.NewReactionService(videos, users, newCommentRepoStub(), newReactionRepoStub(), outbox, noopTxManager{}, logger)
}

func TestMutateReactionAddIsIdempotent(t *testing.T) {
	user := &po.User{UserID: uuid.New(), Email: "viewer@example.com", Username: "viewer"}
	video := &po.Video{VideoID: uuid.New(), Title: "demo", AuthorID: uuid.New()}
	videos := newVideoRepoStub(video)
	outbox := &outboxStub{}
	svc := newReactionFixture(videos, newUserRepoStub(user), outbox)

	input := services.MutateReactionInput{Title: "demo", Kind: po.ReactionLike, Action: services.ReactionActionAdd}

	view, err := svc.Mutate(context.Background(), services.Identity{Email: user.Email}, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.LikesCount != 1 {
		t.Fatalf("expected likes 1, got %d", view.LikesCount)
	}
	if len(outbox.messages) != 1 || outbox.messages[0].EventType != events.KindReactionAdded {
		t.Fatalf("expected one reaction_added event, got %+v", outbox.messages)
	}

	view, err = svc.Mutate(context.Background(), services.Identity{Email: user.Email}, input)
	if err != nil {
		t.Fatalf("unexpected error on repeat: %v", err)
	}
	if view.LikesCount != 1 {
		t.Fatalf("repeat like must not change count, got %d", view.LikesCount)
	}
	if len(outbox.messages) != 1 {
		t.Fatalf("repeat like must not emit events, got %d", len(outbox.messages))
	}
}

func TestMutateReactionRemoveMissingIsNoop(t *testing.T) {
	user := &po.User{UserID: uuid.New(), Email: "viewer@example.com"}
	video := &po.Video{VideoID: uuid.New(), Title: "demo", AuthorID: uuid.New(), DislikesCount: 0}
	outbox := &outboxStub{}
	svc := newReactionFixture(newVideoRepoStub(video), newUserRepoStub(user), outbox)

	view, err := svc.Mutate(context.Background(), services.Identity{Email: user.Email}, services.MutateReactionInput{
		Title: "demo", Kind: po.ReactionDislike, Action: services.ReactionActionRemove,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.DislikesCount != 0 {
		t.Fatalf("removing absent reaction must not change count, got %d", view.DislikesCount)
	}
	if len(outbox.messages) != 0 {
		t.Fatal("noop removal must not emit events")
	}
}

func TestMutateReactionAddThenRemove(t *testing.T) {
	user := &po.User{UserID: uuid.New(), Email: "viewer@example.com"}
	video := &po.Video{VideoID: uuid.New(), Title: "demo", AuthorID: uuid.New()}
	outbox := &outboxStub{}
	svc := newReactionFixture(newVideoRepoStub(video), newUserRepoStub(user), outbox)

	identity := services.Identity{Email: user.Email}
	if _, err := svc.Mutate(context.Background(), identity, services.MutateReactionInput{Title: "demo", Kind: po.ReactionDislike, Action: services.ReactionActionAdd}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	view, err := svc.Mutate(context.Background(), identity, services.MutateReactionInput{Title: "demo", Kind: po.ReactionDislike, Action: services.ReactionActionRemove})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if view.DislikesCount != 0 {
		t.Fatalf("expected dislikes back to 0, got %d", view.DislikesCount)
	}
	if len(outbox.messages) != 2 || outbox.messages[1].EventType != events.KindReactionRemoved {
		t.Fatalf("expected add+remove events, got %+v", outbox.messages)
	}
}

func TestMutateReactionInvalidKind(t *testing.T) {
	user := &po.User{UserID: uuid.New(), Email: "viewer@example.com"}
	svc := newReactionFixture(newVideoRepoStub(), newUserRepoStub(user), &outboxStub{})

	_, err := svc.Mutate(context.Background(), services.Identity{Email: user.Email}, services.MutateReactionInput{
		Title: "demo", Kind: po.ReactionKind("meh"), Action: services.ReactionActionAdd,
	})
	e := errors.FromError(err)
	if e == nil || e.Code != 400 {
		t.Fatalf("expected 400 for invalid kind, got %v", err)
	}
}

func TestMutateReactionUnknownVideo(t *testing.T) {
	user := &po.User{UserID: uuid.New(), Email: "viewer@example.com"}
	svc := newReactionFixture(newVideoRepoStub(), newUserRepoStub(user), &outboxStub{})

	_, err := svc.Mutate(context.Background(), services.Identity{Email: user.Email}, services.MutateReactionInput{
		Title: "missing", Kind: po.ReactionLike, Action: services.ReactionActionAdd,
	})
	e := errors.FromError(err)
	if e == nil || e.Code != 404 || e.Reason != "VIDEO_NOT_FOUND" {
		t.Fatalf("expected 404 VIDEO_NOT_FOUND, got %v", err)
	}
}
