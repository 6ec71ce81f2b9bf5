package stream

import (
	"bytes"
	"io"
	"sync"
)

// Mock is an in-memory Stream. Reads drain the scripted input and return
// io.EOF when it is exhausted, so a test never blocks on a missing reply.
// Writes are captured.
type Mock struct {
	mu       sync.Mutex
	in       bytes.Buffer
	out      bytes.Buffer
	consumed int
	closed   bool
}

// NewMock returns a Mock whose reads yield input.
func NewMock(input []byte) *Mock {
	m := &Mock{}
	m.in.Write(input)
	return m
}

// Feed appends more device output.
func (m *Mock) Feed(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.in.Write(p)
}

// Read implements io.Reader.
func (m *Mock) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	if m.in.Len() == 0 {
		return 0, io.EOF
	}
	n, _ := m.in.Read(p)
	m.consumed += n
	return n, nil
}

// Write implements io.Writer.
func (m *Mock) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, io.ErrClosedPipe
	}
	return m.out.Write(p)
}

// Close makes further reads and writes fail.
func (m *Mock) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Written returns a copy of everything written so far.
func (m *Mock) Written() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return bytes.Clone(m.out.Bytes())
}

// Consumed returns how many input bytes have been read.
func (m *Mock) Consumed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consumed
}

// Remaining returns how many input bytes are still unread.
func (m *Mock) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.in.Len()
}

// Compile-time interface satisfaction check.
var _ Conn = (*Mock)(nil)
