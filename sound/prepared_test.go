package sound_test

import (
	"testing"

	"github.com/dgnsrekt/soundstage/internal/host"
	"github.com/dgnsrekt/soundstage/sound"
)

func TestPrepareAttachesAndAppends(t *testing.T) {
	mock := host.NewMockHost()
	pool := sound.NewPreparedPool(mock)

	first := pool.Prepare("step")
	second := pool.Prepare("step")

	nodes := pool.Lookup("step")
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	if nodes[0] != first || nodes[1] != second {
		t.Error("lookup must preserve insertion order")
	}
	for _, node := range nodes {
		if node.ID() != "step" {
			t.Errorf("node ID %q does not match pool key", node.ID())
		}
		if !mock.IsAttached(node) {
			t.Error("prepared node should be attached")
		}
		if node.IsPlaying() || node.IsPaused() {
			t.Error("fresh node must be neither playing nor paused")
		}
	}
}

func TestPrepareAllAppliesInOrder(t *testing.T) {
	pool := sound.NewPreparedPool(host.NewMockHost())

	pool.PrepareAll([]string{"a", "b", "a"})

	if got := len(pool.Lookup("a")); got != 2 {
		t.Errorf("expected 2 nodes for a, got %d", got)
	}
	if got := len(pool.Lookup("b")); got != 1 {
		t.Errorf("expected 1 node for b, got %d", got)
	}
	if got := pool.Len(); got != 3 {
		t.Errorf("expected 3 nodes total, got %d", got)
	}
}

func TestSetMaxConcurrentReplacesNodes(t *testing.T) {
	mock := host.NewMockHost()
	pool := sound.NewPreparedPool(mock)
	old := pool.Prepare("shot")

	pool.SetMaxConcurrent("shot", 4)

	if mock.IsAttached(old) {
		t.Error("replaced node should be detached")
	}
	if got := len(pool.Lookup("shot")); got != 4 {
		t.Errorf("expected 4 nodes, got %d", got)
	}
}

func TestRemoveAllEmptiesEveryList(t *testing.T) {
	mock := host.NewMockHost()
	pool := sound.NewPreparedPool(mock)
	pool.PrepareAll([]string{"a", "b", "c"})

	pool.RemoveAll()

	if got := pool.Len(); got != 0 {
		t.Errorf("expected empty pool, got %d", got)
	}
	if got := mock.AttachedCount(); got != 0 {
		t.Errorf("expected all nodes detached, got %d", got)
	}
}

func TestLookupUnknownNameIsEmpty(t *testing.T) {
	pool := sound.NewPreparedPool(host.NewMockHost())
	if got := pool.Lookup("missing"); got != nil {
		t.Errorf("expected nil lookup, got %v", got)
	}
}

func TestContainsTracksOwnership(t *testing.T) {
	pool := sound.NewPreparedPool(host.NewMockHost())
	node := pool.Prepare("owned")
	stray := sound.NewNode("owned")

	if !pool.Contains(node) {
		t.Error("pool should contain its own node")
	}
	if pool.Contains(stray) {
		t.Error("pool must not claim a node it never created")
	}

	pool.Remove("owned")
	if pool.Contains(node) {
		t.Error("removed node must leave the pool")
	}
}
