package bom

import (
	"errors"
	"testing"
)

func TestFromRepositoryBuildsRootsAndEdges(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50), testComponent("C", 30)},
		[]BomItem{testBomItem("A", "B", 2), testBomItem("A", "C", 1)},
	)

	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := g.Stats().RootCount; got != 1 {
		t.Fatalf("expected 1 root, got %d", got)
	}
	if got := g.Stats().NodeCount; got != 3 {
		t.Fatalf("expected 3 nodes, got %d", got)
	}
}

// Inserting A->B, then B->A fails with CircularDependency: after the
// first insert A reaches B, so the builder's reachability check rejects
// B->A.
func TestCycleRejectionOnInsert(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 100), testComponent("B", 50)},
		[]BomItem{testBomItem("A", "B", 1), testBomItem("B", "A", 1)},
	)

	_, err := FromRepository(testCtx, repo)
	if err == nil {
		t.Fatalf("expected CircularDependency error")
	}

	var bomErr *BomError
	if !errors.As(err, &bomErr) {
		t.Fatalf("expected *BomError, got %T", err)
	}
	if bomErr.Kind != ErrCircularDependencyKind {
		t.Fatalf("expected CircularDependency, got %v", bomErr.Kind)
	}
}

func TestGraphRejectsSelfReference(t *testing.T) {
	g := NewGraph()
	err := g.addBomItem(testBomItem("A", "A", 1))
	if err == nil {
		t.Fatalf("expected self-reference to be rejected")
	}
}
