package syncx

import (
	"sync"
	"testing"
)

func TestGuardGetSet(t *testing.T) {
	g := NewGuard(42)

	if got := g.Get(); got != 42 {
		t.Errorf("Get() = %d, want 42", got)
	}

	g.Set(100)
	if got := g.Get(); got != 100 {
		t.Errorf("Get() after Set = %d, want 100", got)
	}
}

func TestGuardSwap(t *testing.T) {
	g := NewGuard("hello")

	old := g.Swap("world")
	if old != "hello" {
		t.Errorf("Swap returned %q, want %q", old, "hello")
	}
	if got := g.Get(); got != "world" {
		t.Errorf("Get() after Swap = %q, want %q", got, "world")
	}
}

func TestGuardWith(t *testing.T) {
	g := NewGuard([]int{1, 2, 3})

	var n int
	g.With(func(v []int) { n = len(v) })

	if n != 3 {
		t.Errorf("With() saw len %d, want 3", n)
	}
}

func TestGuardUpdate(t *testing.T) {
	type size struct{ w, h int }
	g := NewGuard(size{w: 1, h: 1})

	g.Update(func(s *size) {
		s.w = 800
		s.h = 600
	})

	if got := g.Get(); got.w != 800 || got.h != 600 {
		t.Errorf("Get() = %+v, want {800 600}", got)
	}
}

func TestGuardCompareAndClear(t *testing.T) {
	a, b := new(int), new(int)
	g := NewGuard(a)

	if g.CompareAndClear(func(v *int) bool { return v == b }) {
		t.Error("CompareAndClear should not clear a different value")
	}
	if g.Get() != a {
		t.Error("value should be unchanged after failed CompareAndClear")
	}

	if !g.CompareAndClear(func(v *int) bool { return v == a }) {
		t.Error("CompareAndClear should clear a matching value")
	}
	if g.Get() != nil {
		t.Error("value should be nil after CompareAndClear")
	}
}

func TestGuardConcurrentSafety(t *testing.T) {
	g := NewGuard(0)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.Update(func(v *int) {
				*v++
			})
		}()
	}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Get()
		}()
	}

	wg.Wait()

	if got := g.Get(); got != 100 {
		t.Errorf("Get() = %d, want 100", got)
	}
}
