package command

import (
	"fmt"
	"io"
	"reflect"
	"sync"

	"github.com/serialcmd/serialcmd-go/pkg/codec"
	"github.com/serialcmd/serialcmd-go/pkg/status"
	"github.com/serialcmd/serialcmd-go/pkg/stream"
)

// DefaultCacheEntries is the memo size used when NewCached gets limit <= 0.
const DefaultCacheEntries = 256

// Cached wraps a Command and memoizes encoded requests per argument value.
// Replies are never cached; only the request encoding is reused.
type Cached[A comparable, R any, E status.Code] struct {
	cmd   Command[A, R, E]
	limit int

	mu     sync.Mutex
	memo   map[A][]byte
	hits   int
	misses int
}

// NewCached wraps cmd, keeping at most limit encoded requests. Once full,
// further argument values are encoded on every call.
func NewCached[A comparable, R any, E status.Code](cmd Command[A, R, E], limit int) *Cached[A, R, E] {
	if limit <= 0 {
		limit = DefaultCacheEntries
	}
	return &Cached[A, R, E]{
		cmd:   cmd,
		limit: limit,
		memo:  make(map[A][]byte),
	}
}

// Command returns the wrapped command.
func (c *Cached[A, R, E]) Command() Command[A, R, E] { return c.cmd }

// Instruction returns the request half of the wrapped command.
func (c *Cached[A, R, E]) Instruction() Instruction[A] { return c.cmd.instr }

// Encode returns the request bytes for v, from the memo when possible.
// The returned slice is shared and must not be modified.
func (c *Cached[A, R, E]) Encode(v A) ([]byte, error) {
	// A may be an interface type whose dynamic value cannot key a map.
	if !hashable(v) {
		return nil, fmt.Errorf("command %s: %w: %T is not comparable", c.cmd.instr.name, codec.ErrUnsupportedType, v)
	}

	c.mu.Lock()
	if b, ok := c.memo[v]; ok {
		c.hits++
		c.mu.Unlock()
		return b, nil
	}
	c.misses++
	c.mu.Unlock()

	b, err := c.cmd.Encode(v)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.memo) < c.limit {
		c.memo[v] = b
	}
	c.mu.Unlock()
	return b, nil
}

func hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

// Send writes the (possibly memoized) request and blocks for the reply.
func (c *Cached[A, R, E]) Send(rw io.ReadWriter, v A) (Result[R, E], error) {
	b, err := c.Encode(v)
	if err != nil {
		return Result[R, E]{}, err
	}
	if err := stream.WriteAll(rw, b); err != nil {
		return Result[R, E]{}, fmt.Errorf("command %s: write request: %w", c.cmd.instr.name, err)
	}
	return Respond(rw, c.cmd.policy, c.cmd.returns)
}

// Stats returns memo hits, misses and current size.
func (c *Cached[A, R, E]) Stats() (hits, misses, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses, len(c.memo)
}

// String describes the wrapped command.
func (c *Cached[A, R, E]) String() string {
	return "cached " + c.cmd.String()
}

// Compile-time interface satisfaction checks.
var (
	_ Sender[uint8, uint8, uint8] = Command[uint8, uint8, uint8]{}
	_ Sender[uint8, uint8, uint8] = (*Cached[uint8, uint8, uint8])(nil)
)
