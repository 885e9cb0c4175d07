package chat

import (
	"context"
	"fmt"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestJournalSaveLoad(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	j := newJournal(client, nil)
	ctx := context.Background()

	turns := []Message{
		{Role: RoleUser, Content: "What are your hours?"},
		{Role: RoleAssistant, Content: "We open at 9am."},
	}
	if err := j.Save(ctx, "tenant-1", "visitor-1", turns); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := j.Load(ctx, "tenant-1", "visitor-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got) != 2 || got[1].Content != "We open at 9am." {
		t.Fatalf("unexpected turns: %#v", got)
	}

	if mr.TTL(journalKey("tenant-1", "visitor-1")) != journalTTL {
		t.Errorf("journal TTL not set")
	}
}

func TestJournalLoadMissing(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	j := newJournal(client, nil)

	got, err := j.Load(context.Background(), "tenant-1", "nobody")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil turns, got %#v", got)
	}
}

func TestJournalTrimsOldTurns(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	j := newJournal(client, nil)
	ctx := context.Background()

	var turns []Message
	for i := 0; i < journalMaxTurns+6; i++ {
		turns = append(turns, Message{Role: RoleUser, Content: fmt.Sprintf("turn %d", i)})
	}
	if err := j.Save(ctx, "tenant-1", "visitor-1", turns); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	got, err := j.Load(ctx, "tenant-1", "visitor-1")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(got) != journalMaxTurns {
		t.Fatalf("expected %d turns, got %d", journalMaxTurns, len(got))
	}
	if got[0].Content != "turn 6" {
		t.Errorf("oldest kept turn = %q", got[0].Content)
	}
}

func TestLastAssistantReply(t *testing.T) {
	turns := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "first"},
		{Role: RoleUser, Content: "again"},
		{Role: RoleAssistant, Content: "second"},
		{Role: RoleUser, Content: "latest"},
	}
	if got := lastAssistantReply(turns); got != "second" {
		t.Errorf("lastAssistantReply = %q", got)
	}
	if got := lastAssistantReply(nil); got != "" {
		t.Errorf("expected empty reply for no turns, got %q", got)
	}
}
