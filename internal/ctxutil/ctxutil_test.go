package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestValues(t *testing.T) {
	ctx := WithChatID(context.Background(), 42)
	ctx = WithOp(ctx, "courses.list")
	ctx = WithRequestID(ctx, "rid-1")

	if id, ok := ChatID(ctx); !ok || id != 42 {
		t.Fatalf("ChatID = %d, %v", id, ok)
	}
	if op, ok := Op(ctx); !ok || op != "courses.list" {
		t.Fatalf("Op = %q, %v", op, ok)
	}
	if rid, ok := RequestID(ctx); !ok || rid != "rid-1" {
		t.Fatalf("RequestID = %q, %v", rid, ok)
	}
	if _, ok := ChatID(context.Background()); ok {
		t.Fatal("пустой контекст не должен содержать chatID")
	}
}

func TestWithAPITimeout_RespectsParentDeadline(t *testing.T) {
	parent, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	ctx, cancel2 := WithAPITimeout(parent, time.Hour)
	defer cancel2()

	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("ожидали дедлайн")
	}
	if time.Until(dl) > time.Second {
		t.Fatalf("дедлайн должен наследоваться от родителя, осталось %v", time.Until(dl))
	}
}

func TestWithAPITimeout_Default(t *testing.T) {
	ctx, cancel := WithAPITimeout(context.Background(), 0)
	defer cancel()
	dl, ok := ctx.Deadline()
	if !ok {
		t.Fatal("ожидали дедлайн")
	}
	if left := time.Until(dl); left <= 0 || left > DefaultAPITimeout {
		t.Fatalf("осталось %v", left)
	}
}
