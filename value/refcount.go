package value

import "os"

// Clone increments v's embedded reference count, if any, and returns v
// unchanged (spec §3: "cloned by incrementing its refcount"). Immortal
// values (rc == 0: symbols, global bindings, Nil) and by-value kinds
// (integers, primitives) are returned as-is.
func Clone(v *Value) *Value {
	if v == nil {
		return nil
	}
	switch v.Kind {
	case KindVar:
		if v.Var.rc > 0 {
			v.Var.rc++
		}
	case KindCons:
		if v.Cons.rc > 0 {
			v.Cons.rc++
		}
	case KindFat:
		if v.Fat.rc > 0 {
			v.Fat.rc++
		}
	}
	return v
}

// Drop decrements v's embedded reference count, if any; when it reaches
// zero, v's owned sub-values are dropped first and the cell is returned to
// pool (spec §3/§4.1). Immortal and by-value kinds are no-ops.
func Drop(pool *Pool, v *Value) {
	if v == nil {
		return
	}
	switch v.Kind {
	case KindVar:
		vr := v.Var
		if vr.rc <= 0 {
			return
		}
		vr.rc--
		if vr.rc == 0 {
			Drop(pool, vr.Val)
			Drop(pool, vr.Func)
			pool.ReleaseVariable(vr)
		}
	case KindCons:
		c := v.Cons
		if c.rc <= 0 {
			return
		}
		c.rc--
		if c.rc == 0 {
			Drop(pool, c.Car)
			Drop(pool, c.Cdr)
			pool.ReleaseCons(c)
		}
	case KindFat:
		f := v.Fat
		if f.rc <= 0 {
			return
		}
		f.rc--
		if f.rc == 0 {
			closeFat(f)
			if f.Kind == FatCaptured {
				Drop(pool, f.Box)
			}
			pool.ReleaseFat(f)
		}
	}
}

// closeFat releases any OS handle owned by f. Called once, right before f
// returns to its pool.
func closeFat(f *Fat) {
	switch f.Kind {
	case FatFile, FatPipeR, FatPipeW:
		if f.File != nil {
			f.File.Close()
		}
	case FatBuf:
		if f.Buf != nil {
			f.Buf.Close()
		}
	case FatChars:
		if f.Chars != nil {
			f.Chars.Close()
		}
	}
}

// NewCons allocates a refcounted cons cell owning car and cdr (each
// consumed, i.e. the new cell takes ownership of the caller's reference).
func NewCons(pool *Pool, car, cdr *Value) *Value {
	c := pool.TakeCons()
	c.Car, c.Cdr = car, cdr
	return &Value{Kind: KindCons, Cons: c}
}

// NewString allocates a refcounted string value (a Variable with IsStr
// set, per spec §3).
func NewString(pool *Pool, s string) *Value {
	v := pool.TakeVariable()
	v.IsStr = true
	v.Name = s
	return &Value{Kind: KindVar, Var: v}
}

// NewVar allocates a refcounted, unbound local variable cell.
func NewVar(pool *Pool, name string) *Value {
	v := pool.TakeVariable()
	v.Name = name
	v.Val = Nil
	return &Value{Kind: KindVar, Var: v}
}

// NewFloat allocates a refcounted float fat value.
func NewFloat(pool *Pool, f float64) *Value {
	fv := pool.TakeFat(FatFloat)
	fv.Float = f
	return &Value{Kind: KindFat, Fat: fv}
}

// NewCaptured allocates a refcounted capture box sharing inner (consumed).
func NewCaptured(pool *Pool, inner *Value) *Value {
	fv := pool.TakeFat(FatCaptured)
	fv.Box = inner
	return &Value{Kind: KindFat, Fat: fv}
}

// NewFatDict allocates a refcounted dict fat value wrapping d.
func NewFatDict(pool *Pool, d *Dict) *Value {
	fv := pool.TakeFat(FatDict)
	fv.Dict = d
	return &Value{Kind: KindFat, Fat: fv}
}

// NewFatBuf allocates a refcounted buffered byte-stream fat value wrapping
// b (spec §3's "buf" kind), used by the buf/read-line/readc family.
func NewFatBuf(pool *Pool, b *ByteBuf) *Value {
	fv := pool.TakeFat(FatBuf)
	fv.Buf = b
	return &Value{Kind: KindFat, Fat: fv}
}

// NewFatChars allocates a refcounted character-stream fat value wrapping c
// (spec §3's "chars" kind), used by the chars/readc/parse family.
func NewFatChars(pool *Pool, c *CharSource) *Value {
	fv := pool.TakeFat(FatChars)
	fv.Chars = c
	return &Value{Kind: KindFat, Fat: fv}
}

// NewFile allocates a refcounted open-file fat value of the given kind
// (FatFile, FatPipeR or FatPipeW), taking ownership of f: Drop closes it
// once the last reference goes away (refcount.go's closeFat).
func NewFile(pool *Pool, kind FatKind, f *os.File) *Value {
	fv := pool.TakeFat(kind)
	fv.File = f
	return &Value{Kind: KindFat, Fat: fv}
}
