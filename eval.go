package main

import (
	"math"
	"math/rand"
	"strconv"
	"strings"
)

//
// The expression evaluator.  Expressions are RPN token lists: typed Go
// values are literals, the var token types are variable references,
// and plain Go ints are operators.  Variable tokens are pushed raw and
// resolved when an operator consumes them, so the token below a
// subscript operator is still a reference when the subscript pops it
//

func (sp *rpnStack) push(item any) {

	sp.entries = append(sp.entries, item)
}

func (sp *rpnStack) popRaw() any {

	basicAssert(len(sp.entries) > 0, "RPN stack underflow")

	item := sp.entries[len(sp.entries)-1]
	sp.entries = sp.entries[:len(sp.entries)-1]

	return item
}

//
// Pop an operand, resolving a variable reference to its value
//

func (sp *rpnStack) pop() any {

	return resolveOperand(sp.popRaw())
}

func resolveOperand(item any) any {

	switch item.(type) {
	default:
		return item

	case fvarToken, ivarToken, svarToken:
		return fetchSymValue(lookupSymbolRef(item))
	}
}

func (sp *rpnStack) popNumber() any {

	v := sp.pop()

	switch v.(type) {
	default:
		raiseError(errTypeMismatch)
		panic(nil) // not reached

	case int32, float64:
		return v
	}
}

func (sp *rpnStack) popFloat() float64 {

	return toFloat(sp.popNumber())
}

func (sp *rpnStack) popInt32() int32 {

	return toInt32(sp.popNumber())
}

func (sp *rpnStack) popString() string {

	v, ok := sp.pop().(string)
	if !ok {
		raiseError(errTypeMismatch)
	}

	return v
}

//
// Numeric coercions.  Floats convert to integers by truncation toward
// zero, faulting when the value cannot fit
//

func toFloat(v any) float64 {

	switch v := v.(type) {
	default:
		raiseError(errTypeMismatch)
		panic(nil) // not reached

	case int32:
		return float64(v)

	case float64:
		return v
	}
}

func toInt32(v any) int32 {

	switch v := v.(type) {
	default:
		raiseError(errTypeMismatch)
		panic(nil) // not reached

	case int32:
		return v

	case float64:
		return floatToInt32(v)
	}
}

func floatToInt32(f float64) int32 {

	runtimeCheck(!math.IsNaN(f) && f >= math.MinInt32 && f <= math.MaxInt32,
		errArith)

	return int32(f)
}

func boolToInt32(b bool) int32 {

	if b {
		return boolInt32True
	}

	return boolInt32False
}

func isTrue(v any) bool {

	switch v := v.(type) {
	default:
		raiseError(errTypeMismatch)
		panic(nil) // not reached

	case int32:
		return v != 0

	case float64:
		return v != 0
	}
}

//
// Evaluate the expression at pool index idx
//

func evalExpr(idx int) any {

	return evalTokenList(g.prog.exprs[idx])
}

func evalTokenList(tl tokenList) any {

	var stack rpnStack

	for _, item := range tl {
		switch item := item.(type) {
		default:
			internalError("Bad RPN token")

		case int32, float64, string, fvarToken, ivarToken, svarToken:
			stack.push(item)

		case fnCallToken:
			stack.push(runFn(item))

		case int:
			applyOperator(&stack, item)
		}
	}

	basicAssert(len(stack.entries) == 1, "RPN stack imbalance")

	return stack.pop()
}

//
// Resolve an lvalue pool entry to a symbol plus evaluated subscripts
//

func evalLhs(idx int) lhsRetVal {

	tl := g.prog.exprs[idx]

	basicAssert(len(tl) == 1, "Lvalue botch")

	lhs, ok := tl[0].(lhsToken)
	basicAssert(ok, "Lvalue botch")

	var subs []int32

	for _, subIdx := range lhs.subs {
		subs = append(subs, toInt32(evalExpr(subIdx)))
	}

	token := makeVarToken(lhs.name)

	return lhsRetVal{sym: lookupSymbolRef(token, subs...), subs: subs}
}

func applyOperator(stack *rpnStack, op int) {

	switch op {
	default:
		internalError("Bad RPN operator")

	case PLUS:
		applyAdd(stack)

	case MINUS, STAR, SLASH, MODOP, DIVOP, POW:
		applyArith(stack, op)

	case EQ, NE, LT, GT, LE, GE:
		applyCompare(stack, op)

	case ANDOP:
		rhs, lhs := stack.popInt32(), stack.popInt32()
		stack.push(lhs & rhs)

	case OROP:
		rhs, lhs := stack.popInt32(), stack.popInt32()
		stack.push(lhs | rhs)

	case EOROP:
		rhs, lhs := stack.popInt32(), stack.popInt32()
		stack.push(lhs ^ rhs)

	case NOTOP:
		stack.push(^stack.popInt32())

	case UNEG:
		switch v := stack.popNumber().(type) {
		case int32:
			stack.push(-v)
		case float64:
			stack.push(-v)
		}

	case ABSF:
		switch v := stack.popNumber().(type) {
		case int32:
			if v < 0 {
				v = -v
			}
			stack.push(v)
		case float64:
			stack.push(math.Abs(v))
		}

	case INTF:
		stack.push(floatToInt32(math.Floor(stack.popFloat())))

	case SGNF:
		f := stack.popFloat()
		switch {
		case f < 0:
			stack.push(int32(-1))
		case f > 0:
			stack.push(int32(1))
		default:
			stack.push(int32(0))
		}

	case SQRF:
		f := stack.popFloat()
		runtimeCheck(f >= 0, errArith)
		stack.push(math.Sqrt(f))

	case SINF:
		stack.push(math.Sin(stack.popFloat()))

	case COSF:
		stack.push(math.Cos(stack.popFloat()))

	case TANF:
		stack.push(math.Tan(stack.popFloat()))

	case LNF:
		f := stack.popFloat()
		runtimeCheck(f > 0, errArith)
		stack.push(math.Log(f))

	case EXPF:
		f := math.Exp(stack.popFloat())
		runtimeCheck(!math.IsInf(f, 0), errArith)
		stack.push(f)

	case LENF:
		stack.push(int32(len(stack.popString())))

	case CHRSF:
		stack.push(string(rune(stack.popInt32() & 0xFF)))

	case STRSF:
		stack.push(basicFormat(stack.popNumber()))

	case VALF:
		str := strings.TrimSpace(stack.popString())
		f, err := strconv.ParseFloat(str, 64)
		if err != nil {
			f = 0
		}
		stack.push(f)

	case ASCF:
		str := stack.popString()
		if str == "" {
			stack.push(int32(-1))
		} else {
			stack.push(int32(str[0]))
		}

	case LEFTSF:
		n := int(stack.popInt32())
		str := stack.popString()
		if n < 0 {
			n = 0
		}
		if n > len(str) {
			n = len(str)
		}
		stack.push(str[:n])

	case RIGHTSF:
		n := int(stack.popInt32())
		str := stack.popString()
		if n < 0 {
			n = 0
		}
		if n > len(str) {
			n = len(str)
		}
		stack.push(str[len(str)-n:])

	case MIDSF:
		n := int(stack.popInt32())
		at := int(stack.popInt32())
		str := stack.popString()

		// MID$ positions are 1-based

		at--
		if at < 0 {
			at = 0
		}
		if at > len(str) {
			at = len(str)
		}
		if n < 0 || at+n > len(str) {
			n = len(str) - at
		}
		stack.push(str[at : at+n])

	case RNDF:
		stack.push(rand.Float64())

	case PIF:
		stack.push(math.Pi)

	case TRUEF:
		stack.push(boolInt32True)

	case FALSEF:
		stack.push(boolInt32False)

	case ERRF:
		if r.lastFault != nil {
			stack.push(int32(r.lastFault.code))
		} else {
			stack.push(int32(0))
		}

	case ERLF:
		if r.lastFault != nil {
			stack.push(int32(r.lastFault.line))
		} else {
			stack.push(int32(-1))
		}

	case SUBSCR1:
		sub := stack.popInt32()
		sym := lookupSymbolRef(stack.popRaw(), sub)
		stack.push(fetchSymValue(sym, sub))

	case SUBSCR2:
		sub2 := stack.popInt32()
		sub1 := stack.popInt32()
		sym := lookupSymbolRef(stack.popRaw(), sub1, sub2)
		stack.push(fetchSymValue(sym, sub1, sub2))
	}
}

//
// '+' concatenates when both operands are strings and adds otherwise,
// with the usual numeric promotion.  Mixing a string with a number is
// a type mismatch
//

func applyAdd(stack *rpnStack) {

	rhs := stack.pop()
	lhs := stack.pop()

	ls, lok := lhs.(string)
	rs, rok := rhs.(string)

	switch {
	case lok && rok:
		stack.push(ls + rs)

	case lok || rok:
		raiseError(errTypeMismatch)

	default:
		if li, ok := lhs.(int32); ok {
			if ri, ok := rhs.(int32); ok {
				stack.push(li + ri)
				return
			}
		}

		stack.push(toFloat(lhs) + toFloat(rhs))
	}
}

//
// The remaining arithmetic.  int32 pairs stay integral except for '/',
// which always divides as floats; MOD and DIV are integer-only and let
// the hardware trap on a zero divisor, which the fault translator maps
// to the division fault
//

func applyArith(stack *rpnStack, op int) {

	rhs := stack.popNumber()
	lhs := stack.popNumber()

	li, lok := lhs.(int32)
	ri, rok := rhs.(int32)
	bothInt := lok && rok

	switch op {
	case MINUS:
		if bothInt {
			stack.push(li - ri)
		} else {
			stack.push(toFloat(lhs) - toFloat(rhs))
		}

	case STAR:
		if bothInt {
			stack.push(li * ri)
		} else {
			stack.push(toFloat(lhs) * toFloat(rhs))
		}

	case SLASH:
		divisor := toFloat(rhs)
		runtimeCheck(divisor != 0, errDivByZero)
		stack.push(toFloat(lhs) / divisor)

	case MODOP:
		stack.push(toInt32(lhs) % toInt32(rhs))

	case DIVOP:
		stack.push(toInt32(lhs) / toInt32(rhs))

	case POW:
		f := math.Pow(toFloat(lhs), toFloat(rhs))
		runtimeCheck(!math.IsNaN(f) && !math.IsInf(f, 0), errArith)
		stack.push(f)
	}
}

//
// Comparisons work on two numbers or two strings; the result is a
// BASIC boolean either way.  Strings order by length first and then
// bytewise, matching the CASE arm matcher
//

func applyCompare(stack *rpnStack, op int) {

	rhs := stack.pop()
	lhs := stack.pop()

	var cmp int

	ls, lok := lhs.(string)
	rs, rok := rhs.(string)

	switch {
	case lok && rok:
		cmp = compareStrings(ls, rs)

	case lok || rok:
		raiseError(errTypeMismatch)

	default:
		lf, rf := toFloat(lhs), toFloat(rhs)
		switch {
		case lf < rf:
			cmp = -1
		case lf > rf:
			cmp = 1
		}
	}

	var result bool

	switch op {
	case EQ:
		result = cmp == 0
	case NE:
		result = cmp != 0
	case LT:
		result = cmp < 0
	case GT:
		result = cmp > 0
	case LE:
		result = cmp <= 0
	case GE:
		result = cmp >= 0
	}

	stack.push(boolToInt32(result))
}

func compareStrings(lhs, rhs string) int {

	if len(lhs) != len(rhs) {
		if len(lhs) < len(rhs) {
			return -1
		}
		return 1
	}

	return strings.Compare(lhs, rhs)
}
