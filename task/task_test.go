//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

package task

import (
	"testing"
)

func TestAllocator(t *testing.T) {
	a := NewAllocator(32)
	seen := make(map[uint64]bool)
	for i := 0; i < 1000; i++ {
		tsk := a.Next()
		if tsk.ID < Reserved {
			t.Fatalf("task %v in reserved range", tsk)
		}
		if seen[tsk.ID] {
			t.Fatalf("duplicate task %v", tsk)
		}
		seen[tsk.ID] = true
		if tsk.ID != tsk.Wire {
			t.Errorf("unexpected wire tag %v", tsk)
		}
	}
	if a.Issued() != 1000 {
		t.Errorf("Issued=%v, expected 1000", a.Issued())
	}
}

func TestAllocatorWrap(t *testing.T) {
	a := NewAllocator(8)
	space := uint64(256 - Reserved)

	var first Task
	for i := uint64(0); i <= space; i++ {
		tsk := a.Next()
		if tsk.Wire < Reserved || tsk.Wire > 255 {
			t.Fatalf("wire tag %v out of range", tsk)
		}
		if i == 0 {
			first = tsk
		}
		if i == space {
			if tsk.Wire != first.Wire {
				t.Errorf("wrap: got %v, expected wire %v", tsk, first.Wire)
			}
			if tsk.ID == first.ID {
				t.Errorf("wrap reused ID %v", tsk.ID)
			}
		}
	}
}

func TestReservedTask(t *testing.T) {
	tsk := ReservedTask(3)
	tag := tsk.Tag(7)
	if tag.Task != 3 || tag.Msg != 7 {
		t.Errorf("unexpected tag %v", tag)
	}
	defer func() {
		if recover() == nil {
			t.Errorf("ReservedTask(Reserved) did not panic")
		}
	}()
	ReservedTask(Reserved)
}

func TestAllocators(t *testing.T) {
	allocs := NewAllocators(8, 2)
	wires := make(map[uint64]int)
	for i := 0; i < 50; i++ {
		for class, a := range allocs {
			tsk := a.Next()
			if int(tsk.ID-Reserved)%2 != class {
				t.Fatalf("allocator %d issued %v", class, tsk)
			}
			if prev, ok := wires[tsk.Wire]; ok && prev != class {
				t.Fatalf("wire tag %v shared by allocators %d and %d",
					tsk.Wire, prev, class)
			}
			wires[tsk.Wire] = class
		}
	}
	for class, a := range allocs {
		if a.Issued() != 50 {
			t.Errorf("allocator %d: Issued=%v, expected 50", class, a.Issued())
		}
	}
}
