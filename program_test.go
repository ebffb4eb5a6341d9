package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBranchResolutionCachedAcrossRuns(t *testing.T) {

	setupTestRun(t,
		"10 X% = X% + 1",
		"20 IF X% < 3 THEN GOTO 10",
		"30 END")

	startRun(t)

	// the GOTO executed twice but hit the line index only once

	assert.Equal(t, 1, g.lookupCount)

	//
	// A second run over the unedited program reuses the cache and
	// never consults the index again
	//

	initSymbolTable()
	startRun(t)

	assert.Equal(t, 1, g.lookupCount)
}

func TestEditInvalidatesBranchCache(t *testing.T) {

	setupTestRun(t,
		"10 GOTO 30",
		"30 END")

	startRun(t)
	assert.Equal(t, 1, g.lookupCount)

	// edit, retokenize, rerun: the resolution is paid for again

	setSourceLine(20, "PRINT \"ignored\"")
	require.True(t, retokenize())

	startRun(t)
	assert.Equal(t, 2, g.lookupCount)
}

func TestGotoNoSuchLine(t *testing.T) {

	out := runSource(t,
		"10 GOTO 500",
		"20 END")

	assert.Contains(t, out, "No such line 500 at line 10")
}

func TestOnGotoLineNumberOutOfRange(t *testing.T) {

	// 65500 fits the operand but lies past the last valid line number

	out := runSource(t,
		"10 ON 1 GOTO 65500",
		"20 END")

	assert.Contains(t, out, "Line number 65500 out of range at line 10")
}

func TestLineReplaceAndDelete(t *testing.T) {

	buf := setupTestRun(t,
		"10 PRINT \"old\"",
		"20 END")

	setSourceLine(10, "PRINT \"new\"")
	require.True(t, retokenize())

	startRun(t)
	assert.Equal(t, "new\n", buf.String())

	buf.Reset()

	setSourceLine(10, "")
	require.True(t, retokenize())

	startRun(t)
	assert.Equal(t, "", buf.String())
}

func TestReadDataRestore(t *testing.T) {

	out := runSource(t,
		"10 DATA 1, 2, 3",
		"20 READ A%, B%",
		"30 RESTORE",
		"40 READ C%",
		"50 PRINT A%; B%; C%",
		"60 END")

	assert.Equal(t, "121\n", out)
}

func TestRestoreToLine(t *testing.T) {

	out := runSource(t,
		"10 DATA 10",
		"20 DATA 20",
		"30 RESTORE 20",
		"40 READ A%",
		"50 PRINT A%",
		"60 END")

	assert.Equal(t, "20\n", out)
}

func TestReadStringData(t *testing.T) {

	out := runSource(t,
		"10 DATA hello, \"quoted, comma\"",
		"20 READ A$, B$",
		"30 PRINT A$",
		"40 PRINT B$",
		"50 END")

	assert.Equal(t, "hello\nquoted, comma\n", out)
}

func TestOutOfData(t *testing.T) {

	out := runSource(t,
		"10 DATA 1",
		"20 READ A%, B%",
		"30 END")

	assert.Contains(t, out, "Out of DATA at line 20")
}

func TestLocalDataSaveRestore(t *testing.T) {

	out := runSource(t,
		"10 DATA 1, 2, 3",
		"20 READ A%",
		"30 GOSUB 100",
		"40 READ B%",
		"50 PRINT A%; B%",
		"60 END",
		"100 LOCAL DATA",
		"110 RESTORE",
		"120 READ X%",
		"130 RESTORE DATA",
		"140 RETURN")

	assert.Equal(t, "12\n", out)
}

func TestDimAndSubscripts(t *testing.T) {

	out := runSource(t,
		"10 DIM A%(5), B(2, 2)",
		"20 A%(5) = 42",
		"30 B(2, 2) = 7",
		"40 PRINT A%(5); B(2, 2)",
		"50 END")

	assert.Equal(t, "427\n", out)
}

func TestSubscriptOutOfRange(t *testing.T) {

	out := runSource(t,
		"10 DIM A%(5)",
		"20 A%(6) = 1",
		"30 END")

	assert.Contains(t, out, "Subscript out of range in A% at line 20")
}

func TestRedimFaults(t *testing.T) {

	out := runSource(t,
		"10 DIM A%(5)",
		"20 DIM A%(9)",
		"30 END")

	assert.Contains(t, out, "Array A% already dimensioned at line 20")
}

func TestClearProgramEmptiesSource(t *testing.T) {

	setupTestRun(t,
		"10 PRINT \"x\"",
		"20 END")

	clearProgram()

	assert.Nil(t, srcFirstInOrder())

	// the emptied tree accepts new lines

	setSourceLine(10, "END")
	require.True(t, retokenize())

	assert.NotNil(t, srcLookup(10))
}

func TestFnCallInDataRejected(t *testing.T) {

	// a DATA item cannot carry a user-function call: its argument
	// expressions would have no pool to live in

	out := runSource(t,
		"10 DEF FNd(x) = x * 2",
		"20 DATA FNd(21)",
		"30 READ A%",
		"40 END")

	assert.Contains(t, out, "Type mismatch at line 30")
}

func TestScratchLineNeverStored(t *testing.T) {

	setupTestRun(t,
		"10 PRINT \"x\"",
		"20 END")

	executeImmediate("PRINT 1 + 2")

	assert.Nil(t, srcLookup(scratchLineNo))
}
