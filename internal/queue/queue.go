// Package queue provides the fixed-capacity byte FIFO behind the transmit queue
// and receive buffers.
package queue

import "io"

// DefaultCapacity matches the buffer size used on the reference hardware.
const DefaultCapacity = 512

// Buffer is a fixed-capacity FIFO of bytes. Storage is allocated once by New
// and never grows. Queued bytes are kept contiguous so they can be scanned in
// place; a push may move them to the front of the storage, so slices returned
// by Bytes are only valid until the next push or fill.
type Buffer struct {
	buf  []byte
	head int
	tail int
}

func New(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{buf: make([]byte, capacity)}
}

func (b *Buffer) Len() int    { return b.tail - b.head }
func (b *Buffer) Cap() int    { return len(b.buf) }
func (b *Buffer) Free() int   { return len(b.buf) - b.Len() }
func (b *Buffer) Empty() bool { return b.head == b.tail }
func (b *Buffer) Full() bool  { return b.Len() == len(b.buf) }

// Bytes returns the queued bytes, oldest first.
func (b *Buffer) Bytes() []byte { return b.buf[b.head:b.tail] }

// Push appends c. It reports false, leaving the buffer unchanged, when full.
func (b *Buffer) Push(c byte) bool {
	if b.tail == len(b.buf) {
		if b.head == 0 {
			return false
		}
		b.compact()
	}
	b.buf[b.tail] = c
	b.tail++
	return true
}

// Peek returns the oldest byte without removing it.
func (b *Buffer) Peek() (byte, bool) {
	if b.Empty() {
		return 0, false
	}
	return b.buf[b.head], true
}

// Pop removes and returns the oldest byte.
func (b *Buffer) Pop() (byte, bool) {
	c, ok := b.Peek()
	if ok {
		b.Discard(1)
	}
	return c, ok
}

// Discard drops the n oldest bytes, or everything if fewer are queued.
func (b *Buffer) Discard(n int) {
	if n >= b.Len() {
		b.Reset()
		return
	}
	b.head += n
}

func (b *Buffer) Reset() {
	b.head, b.tail = 0, 0
}

// Fill performs a single Read from r into the free space. It returns 0 without
// reading when the buffer is full.
func (b *Buffer) Fill(r io.Reader) (int, error) {
	if b.Full() {
		return 0, nil
	}
	b.compact()
	n, err := r.Read(b.buf[b.tail:])
	b.tail += n
	return n, err
}

func (b *Buffer) compact() {
	if b.head == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.head:b.tail])
	b.head, b.tail = 0, n
}
