package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

//
// Load numbered source lines, tokenize, and run to completion,
// returning everything the program printed.  Faults that reach the
// top level are printed into the same buffer, so tests can assert on
// diagnostics too
//

func setupTestRun(t *testing.T, lines ...string) *bytes.Buffer {

	t.Helper()

	buf := &bytes.Buffer{}

	g.out = buf
	g.escape = false
	g.traceExec = false
	g.traceStack = false
	g.traceDump = false
	g.printStats = false
	p.cursorPos = 0

	initInterpreter()

	for _, src := range lines {
		lineNo, rest, ok := parseNumberedLine(src)
		require.True(t, ok, "bad test line %q", src)
		setSourceLine(lineNo, rest)
	}

	require.True(t, retokenize(), "tokenize failed")

	return buf
}

func startRun(t *testing.T) {

	t.Helper()

	initializeRun()

	first := srcFirstInOrder()
	require.NotNil(t, first)

	call(func() {
		executeProgram(firstStmtOf(g.prog.code, first.off))
	})
}

func runSource(t *testing.T, lines ...string) string {

	t.Helper()

	buf := setupTestRun(t, lines...)
	startRun(t)

	return buf.String()
}

func TestForLoopStepTwo(t *testing.T) {

	out := runSource(t,
		"10 FOR I% = 1 TO 5 STEP 2",
		"20 PRINT I%",
		"30 NEXT",
		"40 END")

	assert.Equal(t, "1\n3\n5\n", out)
}

func TestForLoopDescending(t *testing.T) {

	out := runSource(t,
		"10 FOR I% = 5 TO 1 STEP -1",
		"20 PRINT I%",
		"30 NEXT",
		"40 END")

	assert.Equal(t, "5\n4\n3\n2\n1\n", out)
}

func TestForBodyRunsAtLeastOnce(t *testing.T) {

	out := runSource(t,
		"10 FOR I% = 5 TO 1",
		"20 PRINT I%",
		"30 NEXT",
		"40 END")

	assert.Equal(t, "5\n", out)
}

func TestNextNamedVariableTerminatesInnerLoops(t *testing.T) {

	out := runSource(t,
		"10 FOR I% = 1 TO 2",
		"20 FOR J% = 1 TO 9",
		"30 PRINT I%",
		"40 NEXT I%",
		"50 END")

	assert.Equal(t, "1\n2\n", out)
}

func TestNextWithoutFor(t *testing.T) {

	out := runSource(t,
		"10 NEXT",
		"20 END")

	assert.Contains(t, out, "Not in a FOR loop at line 10")
}

func TestWhileLoop(t *testing.T) {

	out := runSource(t,
		"10 I% = 0",
		"20 WHILE I% < 3",
		"30 I% = I% + 1",
		"40 ENDWHILE",
		"50 PRINT I%",
		"60 END")

	assert.Equal(t, "3\n", out)
}

func TestWhileFalseGuardSkipsBody(t *testing.T) {

	out := runSource(t,
		"10 WHILE FALSE",
		"20 PRINT \"unreached\"",
		"30 ENDWHILE",
		"40 PRINT \"done\"",
		"50 END")

	assert.Equal(t, "done\n", out)
}

func TestWhileFalseGuardSkipsNestedWhile(t *testing.T) {

	// the skip scan must pair the outer WHILE with the outer ENDWHILE

	out := runSource(t,
		"10 WHILE FALSE",
		"20 WHILE TRUE",
		"30 PRINT \"inner\"",
		"40 ENDWHILE",
		"50 ENDWHILE",
		"60 PRINT \"done\"",
		"70 END")

	assert.Equal(t, "done\n", out)
}

func TestRepeatUntilRunsAtLeastOnce(t *testing.T) {

	out := runSource(t,
		"10 I% = 9",
		"20 REPEAT",
		"30 I% = I% + 1",
		"40 UNTIL I% > 0",
		"50 PRINT I%",
		"60 END")

	assert.Equal(t, "10\n", out)
}

func TestGosubReturn(t *testing.T) {

	out := runSource(t,
		"10 GOSUB 100",
		"20 PRINT \"back\"",
		"30 END",
		"100 PRINT \"sub\"",
		"110 RETURN")

	assert.Equal(t, "sub\nback\n", out)
}

func TestReturnWithoutGosub(t *testing.T) {

	out := runSource(t,
		"10 RETURN",
		"20 END")

	assert.Contains(t, out, "Not in a subroutine at line 10")
}

func TestInlineIfElse(t *testing.T) {

	out := runSource(t,
		"10 X% = 5",
		"20 IF X% > 3 THEN PRINT \"big\" ELSE PRINT \"small\"",
		"30 IF X% > 9 THEN PRINT \"big\" ELSE PRINT \"small\"",
		"40 END")

	assert.Equal(t, "big\nsmall\n", out)
}

func TestBlockIfElse(t *testing.T) {

	program := []string{
		"10 IF X% = 1 THEN",
		"20 PRINT \"one\"",
		"30 ELSE",
		"40 PRINT \"other\"",
		"50 ENDIF",
		"60 PRINT \"after\"",
		"70 END",
	}

	out := runSource(t, append([]string{"5 X% = 2"}, program...)...)
	assert.Equal(t, "other\nafter\n", out)

	out = runSource(t, append([]string{"5 X% = 1"}, program...)...)
	assert.Equal(t, "one\nafter\n", out)
}

func TestNestedBlockIf(t *testing.T) {

	out := runSource(t,
		"10 X% = 2",
		"20 IF X% > 0 THEN",
		"30 IF X% > 5 THEN",
		"40 PRINT \"huge\"",
		"50 ELSE",
		"60 PRINT \"modest\"",
		"70 ENDIF",
		"80 ELSE",
		"90 PRINT \"negative\"",
		"100 ENDIF",
		"110 END")

	assert.Equal(t, "modest\n", out)
}

func TestOnGotoDispatch(t *testing.T) {

	out := runSource(t,
		"10 ON 2 GOTO 100,200,300",
		"100 PRINT \"first\"",
		"110 END",
		"200 PRINT \"second\"",
		"210 END",
		"300 PRINT \"third\"",
		"310 END")

	assert.Equal(t, "second\n", out)
}

func TestOnGotoIndexOutOfRange(t *testing.T) {

	out := runSource(t,
		"10 ON 5 GOTO 100,200,300",
		"100 END",
		"200 END",
		"300 END")

	assert.Contains(t, out, "ON index 5 out of range at line 10")
}

func TestOnGotoElseClause(t *testing.T) {

	out := runSource(t,
		"10 ON 9 GOTO 100 ELSE PRINT \"else\"",
		"20 END",
		"100 PRINT \"taken\"",
		"110 END")

	assert.Equal(t, "else\n", out)
}

func TestOnProcDispatch(t *testing.T) {

	out := runSource(t,
		"10 ON 2 PROCa, PROCb",
		"20 END",
		"30 DEF PROCa",
		"40 PRINT \"a\"",
		"50 ENDPROC",
		"60 DEF PROCb",
		"70 PRINT \"b\"",
		"80 ENDPROC")

	assert.Equal(t, "b\n", out)
}

func TestProcParameterShadowing(t *testing.T) {

	out := runSource(t,
		"10 X = 5",
		"20 PROCshow(3)",
		"30 PRINT X",
		"40 END",
		"50 DEF PROCshow(X)",
		"60 PRINT X",
		"70 ENDPROC")

	assert.Equal(t, "3\n5\n", out)
}

func TestProcLocalVariable(t *testing.T) {

	out := runSource(t,
		"10 Y% = 7",
		"20 PROCtouch",
		"30 PRINT Y%",
		"40 END",
		"50 DEF PROCtouch",
		"60 LOCAL Y%",
		"70 Y% = 99",
		"80 ENDPROC")

	assert.Equal(t, "7\n", out)
}

func TestNoSuchProc(t *testing.T) {

	out := runSource(t,
		"10 PROCmissing",
		"20 END")

	assert.Contains(t, out, "No such procedure PROCmissing at line 10")
}

func TestFnSingleLine(t *testing.T) {

	out := runSource(t,
		"10 DEF FNdouble(x) = x * 2",
		"20 PRINT FNdouble(21)",
		"30 END")

	assert.Equal(t, "42\n", out)
}

func TestFnMultiLine(t *testing.T) {

	out := runSource(t,
		"10 GOTO 100",
		"20 DEF FNclamp(v)",
		"30 IF v > 10 THEN = 10",
		"40 = v",
		"100 PRINT FNclamp(25)",
		"110 PRINT FNclamp(4)",
		"120 END")

	assert.Equal(t, "10\n4\n", out)
}

func TestStopAndCont(t *testing.T) {

	buf := setupTestRun(t,
		"10 PRINT \"a\"",
		"20 STOP",
		"30 PRINT \"b\"",
		"40 END")

	startRun(t)

	assert.Contains(t, buf.String(), "a\nStopped at line 20\n")

	buf.Reset()

	call(func() {
		cmdCont()
	})

	assert.Equal(t, "b\n", buf.String())
}

func TestPrintZonesAndSeparators(t *testing.T) {

	out := runSource(t,
		"10 PRINT 1;2",
		"20 PRINT \"a\", \"b\"",
		"30 PRINT \"n\";",
		"40 PRINT \"ext\"",
		"50 END")

	assert.Equal(t, "12\na         b\nnext\n", out)
}

func TestTraceExec(t *testing.T) {

	out := runSource(t,
		"10 TRACE ON",
		"20 PRINT \"x\"",
		"30 END")

	assert.Contains(t, out, "[20] ")
	assert.Contains(t, out, "x\n")
}
