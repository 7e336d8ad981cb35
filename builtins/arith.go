package builtins

import (
	"regexp"

	"github.com/kestrel-lang/kestrel/symtab"
	"github.com/kestrel-lang/kestrel/value"
)

// registerArith installs the numeric and equality built-ins: the four basic
// operators, modulo, the five comparisons, identity/value equality (is/=),
// membership (in), regex match (~), negation (not) and the int/float
// conversions. Grounded on original_source's calc_fn1 (+ - * /), calc_fn2
// (the comparisons), same (=), is, in_, re (~) and mod_/int/float.
func registerArith(tab *symtab.Table) {
	tab.BindPrimitive("+", addBuiltin)
	tab.BindPrimitive("-", subBuiltin)
	tab.BindPrimitive("*", mulBuiltin)
	tab.BindPrimitive("/", divBuiltin)
	tab.BindPrimitive("%", modBuiltin)
	tab.BindPrimitive(">", cmpBuiltin(">"))
	tab.BindPrimitive(">=", cmpBuiltin(">="))
	tab.BindPrimitive("<", cmpBuiltin("<"))
	tab.BindPrimitive("<=", cmpBuiltin("<="))
	tab.BindPrimitive("==", cmpBuiltin("=="))
	tab.BindPrimitive("not", notBuiltin)
	tab.BindPrimitive("=", sameBuiltin)
	tab.BindPrimitive("is", isBuiltin)
	tab.BindPrimitive("in", inBuiltin)
	tab.BindPrimitive("~", matchBuiltin)
	tab.BindPrimitive("int", intBuiltin)
	tab.BindPrimitive("float", floatBuiltin)
}

// numOf reports whether v is numeric, and its value as a float64 alongside
// whether it was natively a float (so a caller can tell an all-integer
// operand set from one that needed promotion).
func numOf(v *value.Value) (f float64, isFloat, ok bool) {
	if v == nil {
		return 0, false, false
	}
	if v.Kind == value.KindInt {
		return float64(v.Int), false, true
	}
	if v.Kind == value.KindFat && v.Fat.Kind == value.FatFloat {
		return v.Fat.Float, true, true
	}
	return 0, false, false
}

// numArgs evaluates forms and converts each to a float64, reporting whether
// every one of them was a native integer (so the caller can push an integer
// result rather than a float one when no operand forced promotion).
func numArgs(m value.Machine, name string, forms []*value.Value) ([]float64, bool, error) {
	vals, err := evalArgs(m, forms)
	if err != nil {
		return nil, false, err
	}
	defer dropAll(m.Pool(), vals)
	nums := make([]float64, len(vals))
	allInt := true
	for idx, v := range vals {
		f, isFloat, ok := numOf(v)
		if !ok {
			return nil, false, m.Raise(string(value.ErrType), "%s: argument %d is not a number", name, idx+1)
		}
		if isFloat {
			allInt = false
		}
		nums[idx] = f
	}
	return nums, allInt, nil
}

func pushNum(m value.Machine, f float64, allInt bool) {
	if allInt {
		m.PushArg(value.Int(int64(f)))
		return
	}
	m.PushArg(value.NewFloat(m.Pool(), f))
}

func addBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	nums, allInt, err := numArgs(m, "+", listElems(args))
	if err != nil {
		return err
	}
	sum := 0.0
	for _, n := range nums {
		sum += n
	}
	pushNum(m, sum, allInt)
	return nil
}

func mulBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	nums, allInt, err := numArgs(m, "*", listElems(args))
	if err != nil {
		return err
	}
	prod := 1.0
	for _, n := range nums {
		prod *= n
	}
	pushNum(m, prod, allInt)
	return nil
}

// subBuiltin: no args is 0; one arg negates it; more than one subtracts the
// sum of the rest from the first (original_source's fold_fn1/apply2 pairing
// for SubOp, expressed directly rather than through generic operator traits).
func subBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	nums, allInt, err := numArgs(m, "-", listElems(args))
	if err != nil {
		return err
	}
	switch len(nums) {
	case 0:
		m.PushArg(value.Int(0))
	case 1:
		pushNum(m, -nums[0], allInt)
	default:
		rest := 0.0
		for _, n := range nums[1:] {
			rest += n
		}
		pushNum(m, nums[0]-rest, allInt)
	}
	return nil
}

// divBuiltin: no args is 1; one arg reciprocates it; more than one divides
// the first by the product of the rest.
func divBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	nums, allInt, err := numArgs(m, "/", listElems(args))
	if err != nil {
		return err
	}
	switch len(nums) {
	case 0:
		m.PushArg(value.Int(1))
	case 1:
		if nums[0] == 0 {
			return m.Raise(string(value.ErrZeroDivision), "/: division by zero")
		}
		pushNum(m, 1/nums[0], allInt)
	default:
		prod := 1.0
		for _, n := range nums[1:] {
			prod *= n
		}
		if prod == 0 {
			return m.Raise(string(value.ErrZeroDivision), "/: division by zero")
		}
		pushNum(m, nums[0]/prod, allInt)
	}
	return nil
}

func modBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 2 {
		return m.Raise(string(value.ErrArgument), "%%: requires 2 arguments, got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	defer dropAll(m.Pool(), vals)
	n, ok1 := intOf(vals[0])
	d, ok2 := intOf(vals[1])
	if !ok1 || !ok2 {
		return m.Raise(string(value.ErrType), "%%: both arguments must be integers")
	}
	if d == 0 {
		return m.Raise(string(value.ErrZeroDivision), "%%: division by zero")
	}
	m.PushArg(value.Int(n % d))
	return nil
}

// cmpBuiltin builds a chained comparison (spec: each adjacent pair of
// evaluated arguments must satisfy op). Grounded on calc_fn2; since this
// module's Eval has a single error/value channel rather than the original's
// separate truthiness bool, the chain's result is the last argument's value
// when every pair holds, or Nil as soon as one pair fails.
func cmpBuiltin(op string) value.Primitive {
	return func(m value.Machine, mode value.Mode, args *value.Value) error {
		forms := listElems(args)
		vals, err := evalArgs(m, forms)
		if err != nil {
			return err
		}
		if len(vals) == 0 {
			m.PushArg(value.Nil)
			return nil
		}
		ok := true
		for i := 0; i < len(vals)-1 && ok; i++ {
			a, _, aok := numOf(vals[i])
			b, _, bok := numOf(vals[i+1])
			if !aok || !bok {
				dropAll(m.Pool(), vals)
				return m.Raise(string(value.ErrType), "%s: arguments must be numbers", op)
			}
			switch op {
			case ">":
				ok = a > b
			case ">=":
				ok = a >= b
			case "<":
				ok = a < b
			case "<=":
				ok = a <= b
			case "==":
				ok = a == b
			}
		}
		last := vals[len(vals)-1]
		dropAll(m.Pool(), vals[:len(vals)-1])
		if !ok {
			value.Drop(m.Pool(), last)
			m.PushArg(value.Nil)
			return nil
		}
		m.PushArg(last)
		return nil
	}
}

// sameBuiltin (`=`) compares the textual rendering of every evaluated
// argument for equality, grounded on original_source's same() (to_path
// comparison). Pushes the last argument's value when all match, Nil
// otherwise.
func sameBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	vals, err := evalArgs(m, listElems(args))
	if err != nil {
		return err
	}
	if len(vals) < 2 {
		if len(vals) == 1 {
			m.PushArg(vals[0])
		} else {
			m.PushArg(value.Nil)
		}
		return nil
	}
	want := textOf(vals[len(vals)-1])
	ok := true
	for _, v := range vals[:len(vals)-1] {
		if textOf(v) != want {
			ok = false
			break
		}
	}
	last := vals[len(vals)-1]
	dropAll(m.Pool(), vals[:len(vals)-1])
	if !ok {
		value.Drop(m.Pool(), last)
		m.PushArg(value.Nil)
		return nil
	}
	m.PushArg(last)
	return nil
}

// isBuiltin (`is`) compares every evaluated argument by identity/value
// equality (spec §3's equality column), not textual rendering, grounded on
// original_source's is().
func isBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	vals, err := evalArgs(m, listElems(args))
	if err != nil {
		return err
	}
	if len(vals) < 2 {
		if len(vals) == 1 {
			m.PushArg(vals[0])
		} else {
			m.PushArg(value.Nil)
		}
		return nil
	}
	last := vals[len(vals)-1]
	ok := true
	for _, v := range vals[:len(vals)-1] {
		if !value.Identical(v, last) {
			ok = false
			break
		}
	}
	dropAll(m.Pool(), vals[:len(vals)-1])
	if !ok {
		value.Drop(m.Pool(), last)
		m.PushArg(value.Nil)
		return nil
	}
	m.PushArg(last)
	return nil
}

// inBuiltin (`in v coll1 coll2 …`) requires v to equal (or, when a coll
// argument is itself a list, to be a member of) every coll argument.
// Grounded on original_source's in_.
func inBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) < 1 {
		m.PushArg(value.Nil)
		return nil
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	needle := vals[0]
	ok := true
	for _, coll := range vals[1:] {
		if coll.Kind == value.KindCons || value.IsNil(coll) {
			found := false
			for _, elem := range listElems(coll) {
				if value.Identical(elem, needle) {
					found = true
					break
				}
			}
			if !found {
				ok = false
			}
		} else if !value.Identical(coll, needle) {
			ok = false
		}
		if !ok {
			break
		}
	}
	dropAll(m.Pool(), vals[1:])
	if !ok {
		value.Drop(m.Pool(), needle)
		m.PushArg(value.Nil)
		return nil
	}
	m.PushArg(needle)
	return nil
}

// matchBuiltin (`~ pattern text`) reports whether text matches the regular
// expression pattern, grounded on original_source's re; pushes text on a
// match, Nil otherwise.
func matchBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 2 {
		return m.Raise(string(value.ErrArgument), "~ requires 2 arguments, got %d", len(forms))
	}
	vals, err := evalArgs(m, forms)
	if err != nil {
		return err
	}
	pattern := textOf(vals[0])
	text := textOf(vals[1])
	re, rerr := regexp.Compile(pattern)
	if rerr != nil {
		dropAll(m.Pool(), vals)
		return m.Raise(string(value.ErrRegex), "~: %v", rerr)
	}
	value.Drop(m.Pool(), vals[0])
	if re.MatchString(text) {
		m.PushArg(vals[1])
		return nil
	}
	value.Drop(m.Pool(), vals[1])
	m.PushArg(value.Nil)
	return nil
}

// notBuiltin evaluates its arguments as an implicit do and negates the
// truthiness of the final result.
func notBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	v, err := runProgn(m, value.ModeSingle, listElems(args))
	if err != nil {
		return err
	}
	result := !value.Truthy(v)
	value.Drop(m.Pool(), v)
	m.PushArg(value.Bool(result))
	return nil
}

func intBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "int requires 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	v := m.PopArg()
	f, _, ok := numOf(v)
	value.Drop(m.Pool(), v)
	if !ok {
		return m.Raise(string(value.ErrType), "int: argument is not a number")
	}
	m.PushArg(value.Int(int64(f)))
	return nil
}

func floatBuiltin(m value.Machine, mode value.Mode, args *value.Value) error {
	forms := listElems(args)
	if len(forms) != 1 {
		return m.Raise(string(value.ErrArgument), "float requires 1 argument, got %d", len(forms))
	}
	if err := m.Eval(value.ModeSingle, forms[0]); err != nil {
		return err
	}
	v := m.PopArg()
	f, _, ok := numOf(v)
	value.Drop(m.Pool(), v)
	if !ok {
		return m.Raise(string(value.ErrType), "float: argument is not a number")
	}
	m.PushArg(value.NewFloat(m.Pool(), f))
	return nil
}
