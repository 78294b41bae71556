//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package task implements task identifiers and message tags that
// keep concurrently running protocol instances apart on the wire.
package task

import (
	"fmt"
	"sync/atomic"
)

// Reserved defines the size of the reserved task prefix. The
// reserved tasks are owned by singleton background components: task
// 0 is used for the party setup and tasks 1...Reserved-1 by the
// triple supplier lanes.
const Reserved = 64

// Tag is the wire routing key of a message: the task tag and the
// message offset within the task.
type Tag struct {
	Task uint64
	Msg  uint32
}

func (t Tag) String() string {
	return fmt.Sprintf("%d.%d", t.Task, t.Msg)
}

// Task identifies one logical secure operation. The ID is unique
// for the process lifetime. The Wire value is the ID folded into the
// configured number of task tag bits.
type Task struct {
	ID   uint64
	Wire uint64
}

// Tag creates the message tag for the message offset msg.
func (t Task) Tag(msg uint32) Tag {
	return Tag{
		Task: t.Wire,
		Msg:  msg,
	}
}

func (t Task) String() string {
	if t.ID == t.Wire {
		return fmt.Sprintf("task%d", t.ID)
	}
	return fmt.Sprintf("task%d/%d", t.ID, t.Wire)
}

// ReservedTask returns the reserved task i. The function panics if i
// is outside the reserved prefix.
func ReservedTask(i int) Task {
	if i < 0 || i >= Reserved {
		panic(fmt.Sprintf("reserved task %d out of range", i))
	}
	return Task{
		ID:   uint64(i),
		Wire: uint64(i),
	}
}

// Allocator issues fresh task identifiers above the reserved
// prefix. Both compute parties must call Next in the same order; the
// allocator must therefore be used from sequential control flow
// only.
type Allocator struct {
	count  atomic.Uint64
	offset uint64
	stride uint64
	space  uint64
}

// NewAllocator creates a new allocator for wire tags of the
// argument bit width. The function panics if bits is not in the
// range [8...64].
func NewAllocator(bits int) *Allocator {
	return NewAllocators(bits, 1)[0]
}

// NewAllocators creates n allocators that issue disjoint task
// identifiers and wire tags from the same tag space. The allocator i
// issues the identifiers Reserved+i, Reserved+i+n, and so on.
func NewAllocators(bits, n int) []*Allocator {
	if bits < 8 || bits > 64 {
		panic(fmt.Sprintf("invalid task tag bits: %d", bits))
	}
	var space uint64
	if bits < 64 {
		space = (uint64(1) << bits) - Reserved
		space -= space % uint64(n)
		if space == 0 {
			panic(fmt.Sprintf("no tag space for %d allocators", n))
		}
	}
	result := make([]*Allocator, n)
	for i := range result {
		result[i] = &Allocator{
			offset: uint64(i),
			stride: uint64(n),
			space:  space,
		}
	}
	return result
}

// Next returns a fresh task.
func (a *Allocator) Next() Task {
	id := Reserved + a.offset + (a.count.Add(1)-1)*a.stride
	wire := id
	if a.space != 0 {
		wire = Reserved + (id-Reserved)%a.space
	}
	return Task{
		ID:   id,
		Wire: wire,
	}
}

// Issued returns the number of tasks issued so far.
func (a *Allocator) Issued() uint64 {
	return a.count.Load()
}
