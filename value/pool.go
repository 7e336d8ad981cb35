package value

// Pool is a set of per-kind slab allocators (spec §4.1: POOL). The spec
// describes a single union-backed slab shared by every refcounted kind;
// splitting it into one typed slab per kind (Cons/Variable/Fat) avoids the
// unsafe.Pointer reinterpretation that a single Go slab would otherwise
// need, while keeping the same O(1) take/release and chunk-growth
// contract (see DESIGN.md). The three slab implementations below are
// intentionally near-identical, the same way the teacher's vm/mem.go
// duplicates load32/load64 rather than abstracting over cell width.
type Pool struct {
	cons consPool
	vars varPool
	fats fatPool
}

// NewPool returns an empty Pool. Chunks are appended lazily on first use.
func NewPool() *Pool { return &Pool{} }

const poolChunkSize = 4096

// --- Cons slab ---

type consPool struct {
	free   *Cons
	chunks [][]Cons
}

func (p *consPool) grow() {
	chunk := make([]Cons, poolChunkSize)
	for i := range chunk[:len(chunk)-1] {
		chunk[i].poolNext = &chunk[i+1]
	}
	chunk[len(chunk)-1].poolNext = p.free
	p.free = &chunk[0]
	p.chunks = append(p.chunks, chunk)
}

// TakeCons returns a zeroed Cons with rc == 1, ready to be wrapped in a
// Value.
func (p *Pool) TakeCons() *Cons {
	if p.cons.free == nil {
		p.cons.grow()
	}
	c := p.cons.free
	p.cons.free = c.poolNext
	*c = Cons{rc: 1}
	return c
}

// ReleaseCons returns c to the freelist. Callers must have already dropped
// c's owned Car/Cdr.
func (p *Pool) ReleaseCons(c *Cons) {
	c.Car, c.Cdr = nil, nil
	c.poolNext = p.cons.free
	p.cons.free = c
}

// --- Variable slab ---

type varPool struct {
	free   *Variable
	chunks [][]Variable
}

func (p *varPool) grow() {
	chunk := make([]Variable, poolChunkSize)
	for i := range chunk[:len(chunk)-1] {
		chunk[i].poolNext = &chunk[i+1]
	}
	chunk[len(chunk)-1].poolNext = p.free
	p.free = &chunk[0]
	p.chunks = append(p.chunks, chunk)
}

// TakeVariable returns a zeroed Variable with rc == 1.
func (p *Pool) TakeVariable() *Variable {
	if p.vars.free == nil {
		p.vars.grow()
	}
	v := p.vars.free
	p.vars.free = v.poolNext
	*v = Variable{rc: 1}
	return v
}

// ReleaseVariable returns v to the freelist. Callers must have already
// dropped v's owned Val/Func.
func (p *Pool) ReleaseVariable(v *Variable) {
	v.Val, v.Func = nil, nil
	v.Name, v.IsStr = "", false
	v.poolNext = p.vars.free
	p.vars.free = v
}

// --- Fat slab ---

type fatPool struct {
	free   *Fat
	chunks [][]Fat
}

func (p *fatPool) grow() {
	chunk := make([]Fat, poolChunkSize)
	for i := range chunk[:len(chunk)-1] {
		chunk[i].poolNext = &chunk[i+1]
	}
	chunk[len(chunk)-1].poolNext = p.free
	p.free = &chunk[0]
	p.chunks = append(p.chunks, chunk)
}

// TakeFat returns a zeroed Fat with rc == 1 and the given Kind set.
func (p *Pool) TakeFat(kind FatKind) *Fat {
	if p.fats.free == nil {
		p.fats.grow()
	}
	f := p.fats.free
	p.fats.free = f.poolNext
	*f = Fat{rc: 1, Kind: kind}
	return f
}

// ReleaseFat returns f to the freelist. Callers must have already released
// any OS handles/owned values held by f.
func (p *Pool) ReleaseFat(f *Fat) {
	*f = Fat{}
	f.poolNext = p.fats.free
	p.fats.free = f
}
