// Package limiter trims the top-level records of a value before rendering.
package limiter

import (
	"fmt"

	"github.com/oakwood-commons/jvx/pkg/value"
)

// Config holds the record-limiting parameters.
type Config struct {
	Limit  int // Show only this many records (0 = unlimited)
	Offset int // Skip the first N records (0 = no skip)
	Tail   int // Show only the last N records (0 = disabled); mutually exclusive with Limit
}

// Validate checks for conflicting flag combinations and returns an error if invalid.
// Rules:
// - Limit and Tail are mutually exclusive
// - If Tail is set, Offset is ignored
// - All numeric values must be non-negative
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be non-negative, got %d", c.Limit)
	}
	if c.Offset < 0 {
		return fmt.Errorf("--offset must be non-negative, got %d", c.Offset)
	}
	if c.Tail < 0 {
		return fmt.Errorf("--tail must be non-negative, got %d", c.Tail)
	}
	if c.Limit > 0 && c.Tail > 0 {
		return fmt.Errorf("--limit and --tail are mutually exclusive")
	}
	return nil
}

// IsActive returns true if any limiting is configured.
func (c Config) IsActive() bool {
	return c.Limit > 0 || c.Offset > 0 || c.Tail > 0
}

// Apply returns v with its items or members cut to the configured window.
// Objects keep their member order. Scalars are returned unchanged. Array
// indexes of the result restart at 0.
func (c Config) Apply(v value.Value) value.Value {
	if !c.IsActive() {
		return v
	}
	switch v.Kind() {
	case value.KindArray:
		items := v.Items()
		start, end := c.window(len(items))
		return value.Array(items[start:end]...)
	case value.KindObject:
		members := v.Members()
		start, end := c.window(len(members))
		return value.Object(members[start:end]...)
	default:
		return v
	}
}

// window returns the [start, end) range of n records to keep.
func (c Config) window(n int) (int, int) {
	if c.Tail > 0 {
		return max(0, n-c.Tail), n
	}
	start := min(c.Offset, n)
	end := n
	if c.Limit > 0 {
		end = min(start+c.Limit, n)
	}
	return start, end
}
