package bom

import "testing"

// A->B->D, C->D: where_used(D).used_in contains both B and C, and
// find_root_assemblies(D) == {A, C}.
func TestSharedComponentWhereUsed(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 0), testComponent("B", 0), testComponent("C", 0), testComponent("D", 0)},
		[]BomItem{
			testBomItem("A", "B", 1),
			testBomItem("B", "D", 1),
			testBomItem("C", "D", 1),
		},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	analyzer := NewWhereUsedAnalyzer(g)

	result, err := analyzer.Analyze("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parents := make(map[ComponentId]bool)
	for _, item := range result.UsedIn {
		parents[item.ParentID] = true
	}
	if !parents["B"] || !parents["C"] {
		t.Fatalf("expected D used in both B and C, got %v", result.UsedIn)
	}

	roots, err := analyzer.FindRootAssemblies("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rootSet := make(map[ComponentId]bool, len(roots))
	for _, r := range roots {
		rootSet[r] = true
	}
	if len(rootSet) != 2 || !rootSet["A"] || !rootSet["C"] {
		t.Fatalf("expected root assemblies {A, C}, got %v", roots)
	}
}

// A->B->D, A->C: analyze_change_impact(D).affected_components == {B, A},
// and does not contain C.
func TestChangeImpactAnalysis(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 0), testComponent("B", 0), testComponent("C", 0), testComponent("D", 0)},
		[]BomItem{
			testBomItem("A", "B", 1),
			testBomItem("B", "D", 1),
			testBomItem("A", "C", 1),
		},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	impact, err := NewWhereUsedAnalyzer(g).AnalyzeChangeImpact("D")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	affected := make(map[ComponentId]bool, len(impact.AffectedComponents))
	for _, cid := range impact.AffectedComponents {
		affected[cid] = true
	}
	if !affected["B"] || !affected["A"] {
		t.Fatalf("expected B and A affected, got %v", impact.AffectedComponents)
	}
	if affected["C"] {
		t.Fatalf("did not expect C in affected set, got %v", impact.AffectedComponents)
	}
}

// c is a descendant of a iff a is an ancestor of c.
func TestWhereUsedSymmetry(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 0), testComponent("B", 0), testComponent("C", 0), testComponent("D", 0)},
		[]BomItem{
			testBomItem("A", "B", 1),
			testBomItem("B", "D", 1),
			testBomItem("A", "C", 1),
		},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	analyzer := NewWhereUsedAnalyzer(g)

	flat, err := NewExplosionCalculator(g).Flatten("A")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for descendant := range flat {
		impact, err := analyzer.AnalyzeChangeImpact(descendant)
		if err != nil {
			t.Fatalf("unexpected error analyzing impact of %s: %v", descendant, err)
		}
		found := false
		for _, ancestor := range impact.AffectedComponents {
			if ancestor == "A" {
				found = true
			}
		}
		if !found {
			t.Fatalf("expected A to be an ancestor of descendant %s", descendant)
		}
	}
}

func TestFindSharedComponents(t *testing.T) {
	repo := buildRepo(
		[]Component{testComponent("A", 0), testComponent("B", 0), testComponent("C", 0), testComponent("D", 0)},
		[]BomItem{
			testBomItem("A", "D", 1),
			testBomItem("B", "D", 1),
			testBomItem("C", "D", 1),
		},
	)
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shared, err := NewWhereUsedAnalyzer(g).FindSharedComponents([]ComponentId{"A", "B", "C"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(shared) != 1 {
		t.Fatalf("expected 1 shared component, got %d", len(shared))
	}
	if shared[0].ComponentID != "D" || shared[0].UsedInCount != 3 {
		t.Fatalf("expected D shared across 3 assemblies, got %+v", shared[0])
	}
}

func TestWhereUsedComponentNotFound(t *testing.T) {
	repo := NewMemoryRepository()
	g, err := FromRepository(testCtx, repo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := NewWhereUsedAnalyzer(g).Analyze("missing"); err == nil {
		t.Fatalf("expected ComponentNotFound error")
	}
}
