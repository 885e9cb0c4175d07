package chat

import (
	"strings"
	"testing"

	"github.com/sitechat/widget-ai-platform/internal/tenant"
)

func testSeedProfile() tenant.Profile {
	return SanitizeProfile(tenant.Profile{
		TenantID:      "t-1",
		DisplayName:   "Acme Plumbing",
		AgentName:     "Alex",
		KnowledgeText: "Open 9-5 weekdays. Emergency call-outs cost extra.",
	})
}

func TestBuildSeedDeterministic(t *testing.T) {
	profile := testSeedProfile()
	policy := DefaultPolicy()

	a := BuildSeed(profile, policy)
	b := BuildSeed(profile, policy)

	if len(a.Turns) != 2 || len(b.Turns) != 2 {
		t.Fatalf("expected two turns, got %d and %d", len(a.Turns), len(b.Turns))
	}
	for i := range a.Turns {
		if a.Turns[i] != b.Turns[i] {
			t.Fatalf("seed turn %d differs across builds:\n%q\n%q", i, a.Turns[i], b.Turns[i])
		}
	}
}

func TestBuildSeedShape(t *testing.T) {
	seed := BuildSeed(testSeedProfile(), DefaultPolicy())

	if seed.PolicyVersion != 1 {
		t.Errorf("expected policy version 1, got %d", seed.PolicyVersion)
	}
	if seed.Turns[0].Role != RoleSystem {
		t.Errorf("first turn should be the instruction, got role %s", seed.Turns[0].Role)
	}
	if seed.Turns[1].Role != RoleAssistant {
		t.Errorf("second turn should be the acknowledgement, got role %s", seed.Turns[1].Role)
	}

	instruction := seed.Turns[0].Content
	for _, want := range []string{"Acme Plumbing", "Alex", "Open 9-5 weekdays", "policy v1", "150"} {
		if !strings.Contains(instruction, want) {
			t.Errorf("instruction missing %q", want)
		}
	}
}

func TestBuildSeedUsesPlaceholderForEmptyKnowledge(t *testing.T) {
	profile := SanitizeProfile(tenant.Profile{
		TenantID:    "t-1",
		DisplayName: "Acme",
		AgentName:   "Alex",
	})

	seed := BuildSeed(profile, DefaultPolicy())
	if !strings.Contains(seed.Turns[0].Content, KnowledgePlaceholder) {
		t.Fatal("instruction should carry the knowledge placeholder for an empty knowledge text")
	}
}

func TestBuildSeedChangesWithPolicyVersion(t *testing.T) {
	profile := testSeedProfile()
	v1 := DefaultPolicy()
	v2 := v1
	v2.Version = 2

	if BuildSeed(profile, v1).Turns[0] == BuildSeed(profile, v2).Turns[0] {
		t.Fatal("seeds for different policy versions should differ")
	}
}
