package client

import (
	"context"
	"sync"
	"time"
)

// ResultSet[T] is a forward-only cursor over rows of type T: bounded
// FIFO cache, on-demand batch fetch, exhaustion detection, release on
// disposal (spec.md §3, §4.4.2).
type ResultSet[T any] struct {
	client *Client

	mu        sync.Mutex
	handle    *int64
	exhausted bool
	disposed  bool
	cache     []T
	current   T
	hasCurrent bool

	rowLimit int
	timeout  time.Duration
}

// newResultSet builds a ResultSet from an ExecuteQueryResult payload
// (from execute-query, create-resultset, or the constructor batch of
// a PreparedQuery.Execute). restriction, if given, fixes the row limit
// and timeout later MoveNext fetches use; otherwise the client's
// defaults apply.
func newResultSet[T any](c *Client, result *ExecuteQueryResult[T], restriction *Restriction) *ResultSet[T] {
	rs := &ResultSet[T]{
		client:    c,
		handle:    result.Handle,
		exhausted: result.Handle == nil || result.Exhausted,
		cache:     append([]T(nil), result.Tuples...),
		rowLimit:  c.DefaultFetchSize(),
		timeout:   c.DefaultTimeout(),
	}
	if restriction != nil {
		if restriction.Limit != nil {
			rs.rowLimit = *restriction.Limit
		}
		if restriction.TimeLimit != nil {
			rs.timeout = *restriction.TimeLimit
		}
	}
	return rs
}

// MoveNext advances the cursor. It returns false once the result set
// is exhausted and the cache is drained; after that point it never
// issues network I/O again (spec.md §8's no-I/O-after-exhaustion
// invariant). No concurrent call to MoveNext on the same ResultSet is
// permitted; the internal mutex enforces mutual exclusion rather than
// detecting the violation.
func (r *ResultSet[T]) MoveNext(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return false, wrapError(ErrDisposed, nil)
	}
	if len(r.cache) > 0 {
		r.current, r.cache = r.cache[0], r.cache[1:]
		r.hasCurrent = true
		return true, nil
	}
	if r.exhausted {
		r.hasCurrent = false
		return false, nil
	}

	var batch ExecuteQueryResult[T]
	err := r.client.engine.Call(ctx, "next-resultset-batch",
		[]interface{}{*r.handle, r.rowLimit, r.timeout.Seconds()}, &batch)
	if err != nil {
		r.disposeLocked(ctx)
		return false, wrapError(ErrResultSetError, err)
	}

	r.exhausted = batch.Exhausted
	r.cache = append([]T(nil), batch.Tuples...)
	if len(r.cache) == 0 {
		r.exhausted = true
		r.hasCurrent = false
		r.disposeLocked(ctx)
		return false, nil
	}
	r.current, r.cache = r.cache[0], r.cache[1:]
	r.hasCurrent = true
	return true, nil
}

// Current returns the last row MoveNext produced. Its second return
// value is false before the first successful MoveNext or after the
// cursor has run past the end.
func (r *ResultSet[T]) Current() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.hasCurrent
}

// Pull advances the cursor up to n times, returning every row produced.
// It stops early (with a shorter slice) once MoveNext returns false.
func (r *ResultSet[T]) Pull(ctx context.Context, n int) ([]T, error) {
	rows := make([]T, 0, n)
	for i := 0; i < n; i++ {
		ok, err := r.MoveNext(ctx)
		if err != nil {
			return rows, err
		}
		if !ok {
			break
		}
		row, _ := r.Current()
		rows = append(rows, row)
	}
	return rows, nil
}

// CacheSnapshot returns a copy of the rows currently buffered ahead of
// the cursor, without advancing it.
func (r *ResultSet[T]) CacheSnapshot() []T {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]T(nil), r.cache...)
}

// Dispose releases the server-side handle, if any, with a single
// close-resultset call. Idempotent: a second Dispose is a no-op. Once
// disposed, every other operation fails with ErrDisposed; there is no
// reset path (spec.md §4.4.2 calls this "fatal-to-reset").
func (r *ResultSet[T]) Dispose(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposeLocked(ctx)
	return nil
}

func (r *ResultSet[T]) disposeLocked(ctx context.Context) {
	if r.disposed {
		return
	}
	r.disposed = true
	if r.handle != nil {
		if err := r.client.engine.Call(ctx, "close-resultset", []interface{}{*r.handle}, nil); err != nil {
			r.client.log.Warn("client: close-resultset failed during disposal", "handle", *r.handle, "error", err)
		}
	}
}
