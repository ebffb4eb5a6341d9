package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evalString(t *testing.T, expr string) any {

	t.Helper()

	tl, err := tokenizeScratchExpr(expr)
	require.NoError(t, err)

	return evalTokenList(tl)
}

func TestExpressionPrecedence(t *testing.T) {

	initInterpreter()

	assert.Equal(t, int32(14), evalString(t, "2 + 3 * 4"))
	assert.Equal(t, int32(20), evalString(t, "(2 + 3) * 4"))
	assert.Equal(t, float64(8), evalString(t, "2 ^ 3"))
	assert.Equal(t, int32(1), evalString(t, "7 MOD 3"))
	assert.Equal(t, int32(2), evalString(t, "7 DIV 3"))
	assert.Equal(t, float64(3.5), evalString(t, "7 / 2"))
}

func TestComparisonAndLogic(t *testing.T) {

	initInterpreter()

	assert.Equal(t, boolInt32True, evalString(t, "2 < 3"))
	assert.Equal(t, boolInt32False, evalString(t, "2 > 3"))
	assert.Equal(t, boolInt32True, evalString(t, "2 < 3 AND 5 > 4"))
	assert.Equal(t, boolInt32True, evalString(t, "FALSE OR TRUE"))
	assert.Equal(t, boolInt32False, evalString(t, "NOT TRUE"))
	assert.Equal(t, boolInt32True, evalString(t, "\"abc\" = \"abc\""))
	assert.Equal(t, boolInt32True, evalString(t, "\"ab\" < \"abc\""))
}

func TestStringFunctions(t *testing.T) {

	initInterpreter()

	assert.Equal(t, int32(5), evalString(t, "LEN(\"hello\")"))
	assert.Equal(t, "he", evalString(t, "LEFT$(\"hello\", 2)"))
	assert.Equal(t, "lo", evalString(t, "RIGHT$(\"hello\", 2)"))
	assert.Equal(t, "ell", evalString(t, "MID$(\"hello\", 2, 3)"))
	assert.Equal(t, "A", evalString(t, "CHR$(65)"))
	assert.Equal(t, int32(65), evalString(t, "ASC(\"ABC\")"))
	assert.Equal(t, "ab", evalString(t, "\"a\" + \"b\""))
	assert.Equal(t, float64(2.5), evalString(t, "VAL(\"2.5\")"))
	assert.Equal(t, "42", evalString(t, "STR$(42)"))
}

func TestNumericLiteralTyping(t *testing.T) {

	initInterpreter()

	assert.IsType(t, int32(0), evalString(t, "42"))
	assert.IsType(t, float64(0), evalString(t, "42.0"))
	assert.IsType(t, float64(0), evalString(t, "1E3"))
	assert.Equal(t, int32(-5), evalString(t, "-5"))
}

func TestStringOrderingLengthFirst(t *testing.T) {

	assert.Equal(t, -1, compareStrings("b", "aa"))
	assert.Equal(t, 1, compareStrings("aa", "b"))
	assert.Equal(t, 0, compareStrings("ab", "ab"))
	assert.Equal(t, -1, compareStrings("ab", "ac"))
}

func TestFloatToInt32Truncation(t *testing.T) {

	initInterpreter()

	assert.Equal(t, int32(2), floatToInt32(2.9))
	assert.Equal(t, int32(-2), floatToInt32(-2.9))
}

func TestShadowRestoreOrder(t *testing.T) {

	initInterpreter()

	sym := lookupSymbolRef(makeVarToken("X%"))
	storeIntVar(sym, 1)

	var shadows []savedVar

	shadows = append(shadows, shadowVar(sym))
	storeIntVar(sym, 2)

	// the same symbol shadowed twice in one frame

	shadows = append(shadows, shadowVar(sym))
	storeIntVar(sym, 3)

	restoreShadows(shadows)

	assert.Equal(t, int32(1), fetchIntVar(sym))
}

func TestLiftFrameLeavesUpperFramesIntact(t *testing.T) {

	initInterpreter()

	pushFrame(ctlFrame{kind: frameError})
	pushFrame(ctlFrame{kind: frameFor})

	f := liftFrame(frameError)

	assert.NotNil(t, f)
	assert.Equal(t, 1, frameDepth())
	assert.Equal(t, frameFor, topFrame().kind)
}

func TestLiftFrameStopsAtCallBoundary(t *testing.T) {

	initInterpreter()

	pushFrame(ctlFrame{kind: frameError})
	pushFrame(ctlFrame{kind: frameGosub})

	assert.Nil(t, liftFrame(frameError))
}
