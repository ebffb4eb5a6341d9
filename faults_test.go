package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserErrorUnhandled(t *testing.T) {

	out := runSource(t,
		"10 ERROR 99, \"boom\"",
		"20 END")

	assert.Contains(t, out, "boom at line 10")
}

func TestOrdinaryHandlerClearsCallFrames(t *testing.T) {

	//
	// The handler is installed inside the procedure; the fault clears
	// the procedure's call frame and resumes at the handler body, so
	// ENDPROC is never reached and ERR carries the user code
	//

	out := runSource(t,
		"10 PROCrisky",
		"20 PRINT \"unreached\"",
		"30 END",
		"40 DEF PROCrisky",
		"50 ON ERROR PRINT \"caught\": PRINT ERR: END",
		"60 ERROR 99, \"boom\"",
		"70 ENDPROC")

	assert.Equal(t, "caught\n99\n", out)
}

func TestHandlerUnwindRestoresOutermostShadows(t *testing.T) {

	//
	// The same variable is shadowed in two call frames below the
	// handler; clearing them must restore the newest shadow first so
	// the original value survives
	//

	out := runSource(t,
		"10 X% = 1",
		"20 PROCouter",
		"30 END",
		"40 DEF PROCouter",
		"50 LOCAL X%",
		"60 X% = 2",
		"70 GOSUB 100",
		"80 ENDPROC",
		"100 LOCAL X%",
		"110 X% = 3",
		"120 ON ERROR PRINT X%: END",
		"130 ERROR 99, \"boom\"")

	assert.Equal(t, "1\n", out)
}

func TestLocalHandlerInvokedAtShallowerDepth(t *testing.T) {

	// the loop entered and exited after the install; the stack is back
	// at install depth when the fault arrives

	out := runSource(t,
		"10 ON ERROR LOCAL PRINT \"caught\": END",
		"20 FOR I% = 1 TO 3",
		"30 NEXT",
		"40 ERROR 99, \"later\"",
		"50 END")

	assert.Equal(t, "caught\n", out)
}

func TestLocalHandlerRefusedAtDeeperDepth(t *testing.T) {

	// a still-live construct deeper than the install depth makes the
	// handler unsafe; the fault falls through to the top level

	out := runSource(t,
		"10 ON ERROR LOCAL PRINT \"caught\": END",
		"20 FOR I% = 1 TO 3",
		"30 ERROR 99, \"inside\"",
		"40 NEXT",
		"50 END")

	assert.NotContains(t, out, "caught")
	assert.Contains(t, out, "inside at line 30")
}

func TestFatalFaultIgnoresHandler(t *testing.T) {

	out := runSource(t,
		"10 ON ERROR PRINT \"caught\": END",
		"20 GOSUB 20")

	assert.NotContains(t, out, "caught")
	assert.Contains(t, out, "Control stack overflow")
}

func TestOnErrorOff(t *testing.T) {

	out := runSource(t,
		"10 ON ERROR PRINT \"caught\": END",
		"20 ON ERROR OFF",
		"30 ERROR 99, \"boom\"",
		"40 END")

	assert.NotContains(t, out, "caught")
	assert.Contains(t, out, "boom at line 30")
}

func TestReportReprintsLastFault(t *testing.T) {

	out := runSource(t,
		"10 ON ERROR GOTO 30",
		"20 ERROR 42, \"custom boom\"",
		"30 REPORT",
		"40 END")

	assert.Equal(t, "custom boom\n", out)
}

func TestLocalErrorSaveRestore(t *testing.T) {

	out := runSource(t,
		"10 ON ERROR PRINT \"outer\": END",
		"20 GOSUB 100",
		"30 ERROR 1, \"after restore\"",
		"40 END",
		"100 LOCAL ERROR",
		"110 ON ERROR LOCAL PRINT \"inner\": GOTO 130",
		"120 ERROR 1, \"in sub\"",
		"130 RESTORE ERROR",
		"140 RETURN")

	assert.Equal(t, "inner\nouter\n", out)
}

func TestRestoreErrorWithoutLocalError(t *testing.T) {

	out := runSource(t,
		"10 RESTORE ERROR",
		"20 END")

	assert.Contains(t, out, "RESTORE ERROR without LOCAL ERROR at line 10")
}

func TestDivisionByZero(t *testing.T) {

	out := runSource(t,
		"10 X% = 0",
		"20 PRINT 1 / X%",
		"30 END")

	assert.Contains(t, out, "Division by zero at line 20")
}

func TestIntegerDivisionByZeroTranslated(t *testing.T) {

	// integer DIV traps in hardware; the panic is translated into the
	// same catalog fault an explicit check would raise

	out := runSource(t,
		"10 ON ERROR PRINT \"caught \"; ERR: END",
		"20 X% = 0",
		"30 PRINT 10 DIV X%",
		"40 END")

	assert.Equal(t, "caught 18\n", out)
}

func TestEscapeRaisesCatchableFault(t *testing.T) {

	go func() {
		time.Sleep(20 * time.Millisecond)
		g.escape = true
	}()

	out := runSource(t,
		"10 GOTO 10")

	assert.Contains(t, out, "Escape at line 10")
}

func TestFaultNamesEnclosingRoutine(t *testing.T) {

	out := runSource(t,
		"10 PROCboom",
		"20 END",
		"30 DEF PROCboom",
		"40 ERROR 7, \"inner fault\"",
		"50 ENDPROC")

	assert.Contains(t, out, "inner fault at line 40 in PROCboom")
}

func TestWarningDoesNotStopExecution(t *testing.T) {

	// a program without END runs off the end, warns, and still counts
	// as a completed run

	out := runSource(t,
		"10 PRINT \"done\"")

	assert.Contains(t, out, "done\n")
	assert.Contains(t, out, "Program has no END")
}
