// Package queueing provides the FIFO buffers used by simulation objects to
// hold pending work.
package queueing

import (
	"log"

	"github.com/sarchlab/vtolsim/sim/hooking"
	"github.com/sarchlab/vtolsim/sim/naming"
)

// Unlimited is the capacity of a buffer that never refuses a push.
const Unlimited = -1

// HookPosBufPush marks when an element is pushed into the buffer.
var HookPosBufPush = &hooking.HookPos{Name: "Buffer Push"}

// HookPosBufPop marks when an element is popped from the buffer.
var HookPosBufPop = &hooking.HookPos{Name: "Buffer Pop"}

// A Buffer is a fifo queue for anything
type Buffer interface {
	naming.Named
	hooking.Hookable

	CanPush() bool
	Push(e interface{})
	Pop() interface{}
	Peek() interface{}
	Capacity() int
	Size() int
	Clear()

	// Elements returns a copy of the buffered elements, head first.
	Elements() []interface{}
}

// BufferBuilder is a builder for Buffer.
type BufferBuilder struct {
	capacity int
}

// MakeBufferBuilder creates a BufferBuilder with unlimited capacity.
func MakeBufferBuilder() BufferBuilder {
	return BufferBuilder{capacity: Unlimited}
}

// WithCapacity defines the capacity of the buffer.
func (b BufferBuilder) WithCapacity(capacity int) BufferBuilder {
	b.capacity = capacity
	return b
}

// Build builds a new Buffer.
func (b BufferBuilder) Build(name string) Buffer {
	if b.capacity == 0 || b.capacity < Unlimited {
		log.Panicf("invalid buffer capacity %d", b.capacity)
	}

	buffer := &bufferImpl{
		NamedBase: naming.MakeNamedBase(name),
		capacity:  b.capacity,
	}

	return buffer
}

type bufferImpl struct {
	naming.NamedBase
	hooking.HookableBase

	capacity int
	elements []interface{}
}

func (b *bufferImpl) CanPush() bool {
	if b.capacity == Unlimited {
		return true
	}

	return len(b.elements) < b.capacity
}

func (b *bufferImpl) Push(e interface{}) {
	if !b.CanPush() {
		log.Panic("buffer overflow")
	}

	b.elements = append(b.elements, e)

	if b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosBufPush,
			Item:   e,
		})
	}
}

func (b *bufferImpl) Pop() interface{} {
	if len(b.elements) == 0 {
		return nil
	}

	e := b.elements[0]
	b.elements[0] = nil
	b.elements = b.elements[1:]

	if b.NumHooks() > 0 {
		b.InvokeHook(hooking.HookCtx{
			Domain: b,
			Pos:    HookPosBufPop,
			Item:   e,
		})
	}

	return e
}

func (b *bufferImpl) Peek() interface{} {
	if len(b.elements) == 0 {
		return nil
	}

	return b.elements[0]
}

func (b *bufferImpl) Capacity() int {
	return b.capacity
}

func (b *bufferImpl) Size() int {
	return len(b.elements)
}

func (b *bufferImpl) Clear() {
	b.elements = nil
}

func (b *bufferImpl) Elements() []interface{} {
	elements := make([]interface{}, len(b.elements))
	copy(elements, b.elements)

	return elements
}
