package seed

import (
	"testing"
	"time"

	"tangerine/internal/models"
)

func TestCreateUserDryRun(t *testing.T) {
	f := NewFactory(nil, FactoryOptions{DryRun: true, SkipBcrypt: true})

	user, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == 0 {
		t.Fatal("expected a synthetic ID in dry-run mode")
	}
	if user.Username == "" || user.Email == "" {
		t.Fatalf("expected generated identity, got %q / %q", user.Username, user.Email)
	}
	if user.Password != "password123" {
		t.Fatal("expected plaintext password with SkipBcrypt")
	}

	second, err := f.CreateUser()
	if err != nil {
		t.Fatalf("create second user: %v", err)
	}
	if second.ID == user.ID {
		t.Fatal("synthetic IDs must be unique")
	}
}

func TestBuildPostSpreadsCreatedAt(t *testing.T) {
	f := NewFactory(nil, FactoryOptions{DryRun: true, MaxDays: 30})
	user := &models.User{ID: 1}

	post := f.BuildPost(user)
	if post.UserID != 1 {
		t.Fatalf("expected post bound to user 1, got %d", post.UserID)
	}
	if post.CreatedAt.After(time.Now()) {
		t.Fatal("created_at must not be in the future")
	}
	if post.CreatedAt.Before(time.Now().Add(-31 * 24 * time.Hour)) {
		t.Fatalf("created_at %v exceeds the 30 day spread", post.CreatedAt)
	}
	if !post.LastActivityAt.Equal(post.CreatedAt) {
		t.Fatal("fresh posts start with last_activity_at == created_at")
	}
}

func TestBuildCommentThreading(t *testing.T) {
	f := NewFactory(nil, FactoryOptions{DryRun: true})
	user := &models.User{ID: 1}
	post := &models.Post{ID: 2}

	top := f.BuildComment(user, post, nil, 4)
	if top.IsReply() {
		t.Fatal("comment without a parent must be top-level")
	}
	if top.GroupNumber != 4 {
		t.Fatalf("expected group 4, got %d", top.GroupNumber)
	}

	top.ID = 10
	reply := f.BuildComment(user, post, top, 99)
	if !reply.IsReply() {
		t.Fatal("comment with a parent must be a reply")
	}
	if reply.GroupNumber != 4 {
		t.Fatalf("replies inherit the parent group, got %d", reply.GroupNumber)
	}
	if reply.ParentID == nil || *reply.ParentID != 10 {
		t.Fatal("reply must point at its parent")
	}
}
