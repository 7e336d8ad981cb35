package eval

import "github.com/kestrel-lang/kestrel/value"

// valStack is an append-growth value stack with a cached top element,
// mirroring vm/core.go's Instance.data/Tos pairing (Push/Pop/Drop without
// the fixed-size preallocated array, since the evaluator has no equivalent
// of a fixed memory image to size it against up front).
type valStack struct {
	data []*value.Value
	tos  *value.Value
	has  bool
}

func (s *valStack) push(v *value.Value) {
	if s.has {
		s.data = append(s.data, s.tos)
	}
	s.tos = v
	s.has = true
}

func (s *valStack) pop() *value.Value {
	if !s.has {
		return nil
	}
	v := s.tos
	n := len(s.data)
	if n == 0 {
		s.has = false
		s.tos = nil
		return v
	}
	s.tos = s.data[n-1]
	s.data = s.data[:n-1]
	return v
}

func (s *valStack) len() int {
	if !s.has {
		return 0
	}
	return len(s.data) + 1
}

// truncate discards down to length n (n <= len()), dropping each removed
// value back to the pool.
func (s *valStack) truncate(pool *value.Pool, n int) {
	for s.len() > n {
		value.Drop(pool, s.pop())
	}
}

// restFrame holds the current call's vararg/rest storage (spec §4.8): a
// clone of every argument value the lambda call received, read back by
// arg/argc/shift.
type restFrame struct {
	vals []*value.Value
	cap  int
}
