package utl

import "testing"

type testId uint32

func TestVectorPushGetSet(t *testing.T) {
	var vector Vector[testId, string]

	a := vector.Push("a")
	b := vector.Push("b")
	if a == b {
		t.Fatal("distinct pushes must produce distinct ids")
	}
	if *vector.Get(a) != "a" || *vector.Get(b) != "b" {
		t.Fatal("Get returned wrong values")
	}

	vector.Set(a, "c")
	if *vector.Get(a) != "c" {
		t.Fatal("Set did not overwrite the slot")
	}

	vector.Kill(b)
	if *vector.Get(b) != "" {
		t.Fatal("Kill must reset the slot to the zero value")
	}
	if vector.Len() != 2 {
		t.Fatalf("Len = %d, want 2", vector.Len())
	}
}

func TestStringPoolBijection(t *testing.T) {
	pool := NewStringPool()

	hello := pool.Intern("hello")
	world := pool.Intern("world")
	again := pool.Intern("hello")

	if hello != again {
		t.Fatal("equal contents must intern to equal ids")
	}
	if hello == world {
		t.Fatal("distinct contents must intern to distinct ids")
	}
	if pool.Get(hello) != "hello" || pool.Get(world) != "world" {
		t.Fatal("Get must return the original content")
	}
	if pool.Len() != 2 {
		t.Fatalf("Len = %d, want 2", pool.Len())
	}
}

// Find must be idempotent, and transitively unified elements must
// share a representative.
func TestDisjointSetInvariants(t *testing.T) {
	var set DisjointSet
	for range 5 {
		set.Add()
	}

	set.Union(0, 1)
	set.Union(1, 2)
	set.Union(3, 4)

	if set.Find(2) != set.Find(0) {
		t.Fatal("transitive union must share a representative")
	}
	if set.Find(0) != set.Find(set.Find(0)) {
		t.Fatal("Find must be idempotent")
	}
	if set.Find(3) == set.Find(0) {
		t.Fatal("separate classes must not share a representative")
	}
	if set.Find(4) != set.Find(3) {
		t.Fatal("union of 3 and 4 must share a representative")
	}

	// Union keeps the left class's representative.
	set.Union(0, 3)
	if set.Find(4) != set.Find(1) {
		t.Fatal("merged classes must share a representative")
	}
}
