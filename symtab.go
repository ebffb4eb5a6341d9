package main

import "strings"

//
// The variable store.  A name's type rides on its suffix: '%' is a
// 32 bit integer, '$' a string, anything else a float.  Scalars and
// arrays may share a name, so there are two maps, as in classic
// BASICs.  Arrays are one or two dimensional with inclusive bounds
// 0..N, which is why the backing slices are one longer than the
// declared dimension
//

func initSymbolTable() {

	g.symtabMap[0] = make(map[string]*symtabNode)
	g.symtabMap[1] = make(map[string]*symtabNode)
}

func varTypeOf(name string) int {

	if strings.HasSuffix(name, "%") {
		return IVAR
	} else if strings.HasSuffix(name, "$") {
		return SVAR
	}

	return FVAR
}

func decodeVarToken(token any) (int, string) {

	switch token := token.(type) {
	default:
		internalError("Bad variable token")
		panic(nil) // not reached

	case fvarToken:
		return FVAR, string(token)

	case ivarToken:
		return IVAR, string(token)

	case svarToken:
		return SVAR, string(token)
	}
}

func makeVarToken(name string) any {

	switch varTypeOf(name) {
	default:
		panic(nil) // not reached

	case FVAR:
		return fvarToken(name)

	case IVAR:
		return ivarToken(name)

	case SVAR:
		return svarToken(name)
	}
}

//
// Look up a symbol, creating it with zero contents on first reference.
// Subscripted references address the array map; an array referenced
// before any DIM gets implicit bounds of 10 per dimension
//

func lookupSymbolRef(token any, subs ...int32) *symtabNode {

	sym := lookupSymbol(token, subs...)
	if sym == nil {
		var dims []int32

		for range subs {
			dims = append(dims, 10)
		}

		sym = createSymbol(token, dims...)
	}

	return sym
}

func lookupSymbol(token any, subs ...int32) *symtabNode {

	_, name := decodeVarToken(token)

	mapIdx := 0
	if len(subs) != 0 {
		mapIdx = 1
	}

	return g.symtabMap[mapIdx][name]
}

func createSymbol(token any, dims ...int32) *symtabNode {

	var bounds [2]int

	vType, name := decodeVarToken(token)

	mapIdx := 0
	if len(dims) != 0 {
		mapIdx = 1
	}

	basicAssert(g.symtabMap[mapIdx][name] == nil, "Symbol already defined")

	sym := &symtabNode{name: name, vType: vType, dims: dims}

	switch len(dims) {
	default:
		internalError("Too many dimensions")

	case 0:
		bounds[0], bounds[1] = 1, 1

	case 1:
		bounds[0], bounds[1] = 1, int(dims[0])+1

	case 2:
		bounds[0], bounds[1] = int(dims[0])+1, int(dims[1])+1
	}

	sym.value = newSymValue(vType, bounds)

	g.symtabMap[mapIdx][name] = sym

	return sym
}

func newSymValue(vType int, bounds [2]int) symValue {

	var v symValue

	switch vType {
	case FVAR:
		v.f = make([][]float64, bounds[0])
		for i := range v.f {
			v.f[i] = make([]float64, bounds[1])
		}

	case IVAR:
		v.i = make([][]int32, bounds[0])
		for i := range v.i {
			v.i[i] = make([]int32, bounds[1])
		}

	case SVAR:
		v.s = make([][]string, bounds[0])
		for i := range v.s {
			v.s[i] = make([]string, bounds[1])
		}
	}

	return v
}

func symBounds(sym *symtabNode) [2]int {

	switch len(sym.dims) {
	default:
		return [2]int{int(sym.dims[0]) + 1, int(sym.dims[1]) + 1}

	case 0:
		return [2]int{1, 1}

	case 1:
		return [2]int{1, int(sym.dims[0]) + 1}
	}
}

func computeSubs(sym *symtabNode, subs []int32) (int, int) {

	var sub1, sub2 int32

	switch len(subs) {
	default:
		internalError("Subscript botch")

	case 0:

	case 1:
		sub2 = subs[0]

	case 2:
		sub1, sub2 = subs[0], subs[1]
	}

	b := symBounds(sym)

	runtimeCheck(int(sub1) >= 0 && int(sub1) < b[0] &&
		int(sub2) >= 0 && int(sub2) < b[1], errBadSubscript, sym.name)

	return int(sub1), int(sub2)
}

//
// Typed fetch and store.  These are the lvalue primitives every
// construct goes through; the FOR loop fast path calls them too
//

func fetchFloatVar(sym *symtabNode, subs ...int32) float64 {

	sub1, sub2 := computeSubs(sym, subs)

	return sym.value.f[sub1][sub2]
}

func fetchIntVar(sym *symtabNode, subs ...int32) int32 {

	sub1, sub2 := computeSubs(sym, subs)

	return sym.value.i[sub1][sub2]
}

func fetchStringVar(sym *symtabNode, subs ...int32) string {

	sub1, sub2 := computeSubs(sym, subs)

	return sym.value.s[sub1][sub2]
}

func storeFloatVar(sym *symtabNode, val float64, subs ...int32) {

	sub1, sub2 := computeSubs(sym, subs)

	sym.value.f[sub1][sub2] = val
}

func storeIntVar(sym *symtabNode, val int32, subs ...int32) {

	sub1, sub2 := computeSubs(sym, subs)

	sym.value.i[sub1][sub2] = val
}

func storeStringVar(sym *symtabNode, val string, subs ...int32) {

	sub1, sub2 := computeSubs(sym, subs)

	sym.value.s[sub1][sub2] = val
}

func fetchSymValue(sym *symtabNode, subs ...int32) any {

	switch sym.vType {
	default:
		panic(nil) // not reached

	case FVAR:
		return fetchFloatVar(sym, subs...)

	case IVAR:
		return fetchIntVar(sym, subs...)

	case SVAR:
		return fetchStringVar(sym, subs...)
	}
}

//
// Shadowing primitives used by LOCAL and by PROC/FN parameter binding.
// Saving swaps in a fresh zeroed value block; restoring puts the old
// block back.  Whole arrays shadow the same way scalars do
//

func shadowVar(sym *symtabNode) savedVar {

	saved := savedVar{sym: sym, val: sym.value}

	sym.value = newSymValue(sym.vType, symBounds(sym))

	return saved
}

func restoreShadows(shadows []savedVar) {

	//
	// Restore in reverse push order so a variable shadowed twice in
	// one frame ends up with its outermost value
	//

	for i := len(shadows) - 1; i >= 0; i-- {
		shadows[i].sym.value = shadows[i].val
	}
}

//
// Store an evaluated rvalue into an lvalue, coercing between the
// numeric kinds and faulting on a numeric/string mismatch
//

func processLhs(lval lhsRetVal, rval any) {

	sym := lval.sym

	switch sym.vType {
	default:
		internalError("Bad symbol type")

	case FVAR:
		switch rv := rval.(type) {
		default:
			raiseError(errTypeMismatch)

		case int32:
			storeFloatVar(sym, float64(rv), lval.subs...)

		case float64:
			storeFloatVar(sym, rv, lval.subs...)
		}

	case IVAR:
		switch rv := rval.(type) {
		default:
			raiseError(errTypeMismatch)

		case int32:
			storeIntVar(sym, rv, lval.subs...)

		case float64:
			storeIntVar(sym, floatToInt32(rv), lval.subs...)
		}

	case SVAR:
		sv, ok := rval.(string)
		if !ok {
			raiseError(errTypeMismatch)
		}

		storeStringVar(sym, sv, lval.subs...)
	}
}
