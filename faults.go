package main

import (
	"fmt"
	"runtime"
	"strings"
)

//
// Raising and recovering faults.  A fault below the recoverable
// threshold is printed and execution carries on.  Anything else
// propagates by panic to the nearest dispatch boundary; there is no
// per-call error-return threading anywhere in the engine
//

func raiseError(no int, args ...any) {

	fi := &faultInfo{
		no:   no,
		code: faultCode(no),
		sev:  faultSeverity(no),
		msg:  renderFault(no, args...),
		line: r.pc.line,
	}

	raiseFault(fi)
}

//
// The ERROR statement raises a fault with a user-chosen code and
// message.  It participates in handler dispatch like any recoverable
// catalog fault
//

func raiseUserError(code int, msg string) {

	fi := &faultInfo{
		no:   errUserError,
		code: code,
		sev:  sevRecoverable,
		msg:  msg,
		line: r.pc.line,
	}

	raiseFault(fi)
}

func raiseFault(fi *faultInfo) {

	if !g.running {
		fi.line = -1
	}

	if fi.sev < sevRecoverable {

		//
		// A warning, not an error: report and keep going
		//

		flushOutput()
		printFaultMessage(fi)
		return
	}

	panic(&runtimeFault{fi: fi})
}

//
// Assertion helpers.  runtimeCheck raises a user-visible fault;
// basicAssert flags an interpreter bug
//

func runtimeCheck(chk bool, no int, args ...any) {

	if !chk {
		raiseError(no, args...)
	}
}

func basicAssert(chk bool, msg string) {

	if !chk {
		internalError(msg)
	}
}

func internalError(msg string) {

	_, file, line, ok := runtime.Caller(2)
	if !ok {
		file, line = "?", 0
	}

	panic(&internalErrorInfo{msg: msg, file: file, line: line})
}

//
// Escape is posted asynchronously by the signal goroutine and polled
// here, at statement boundaries and inside loop guard evaluation.
// Cancellation is always "raise a catchable fault", never a silent stop
//

func checkEscape() {

	if g.escape {
		g.escape = false
		raiseError(errEscape)
	}
}

//
// Decide whether the installed handler may intercept the fault.  The
// stack-safety invariant: the live control-flow-stack depth must be no
// deeper than it was when the handler was installed, otherwise the
// frames in between are of unknown content and the handler would
// operate on garbage.  This is checked before any control transfer
//

func handlerIsSafe(h *errHandler, fi *faultInfo) bool {

	if h == nil || fi.sev >= sevFatal {
		return false
	}

	return len(r.stack) <= h.depth
}

//
// Transfer control to the installed handler.  Frames above the depth
// recorded at install time are discarded first.  An ordinary handler
// additionally clears every subroutine-call frame and resumes at the
// statement after its install point; a local handler re-enters the
// dispatch loop at the resumption point captured at install time and
// restores the previously installed descriptor
//

func invokeHandler(h *errHandler, fi *faultInfo) {

	r.lastFault = fi

	trimFrames(h.depth)

	if h.local {
		r.handler = h.prev
	} else {
		clearCallFrames()
	}

	r.pc = h.addr
}

//
// Recovery at the dispatch boundary.  Returns true if the fault was
// handed to a user handler and r.pc now points at it; false re-raises
// to the top-level loop, after forcibly resetting shared mutable state
// so a crashed program cannot leave stale frames behind
//

func recoverFault(e any) bool {

	rf := translatePanic(e)
	if rf == nil {
		panic(e)
	}

	fi := rf.fi

	if handlerIsSafe(r.handler, fi) {
		invokeHandler(r.handler, fi)
		return true
	}

	//
	// Unrecoverable: diagnose, then unwind to the command loop
	//

	flushOutput()
	printFaultMessage(fi)

	if g.traceStack && fi.sev > sevWarning {
		printTraceback()
	}

	r.lastFault = fi

	clearFrames()
	r.pc = position{off: -1, line: -1}
	g.running = false

	panic(&crawloutException{continuable: false})
}

//
// Boundary translation for hardware-trap style faults.  The Go runtime
// delivers integer division by zero and the like as runtime.Error
// panics; convert those into the corresponding catalog fault so they
// travel the same handler path as ordinary faults.  Anything we cannot
// safely classify is passed upstream untouched
//

func translatePanic(e any) *runtimeFault {

	switch e := e.(type) {
	default:
		return nil

	case *runtimeFault:
		return e

	case runtime.Error:
		if strings.Contains(e.Error(), "divide by zero") {
			return &runtimeFault{fi: &faultInfo{
				no:   errDivByZero,
				code: faultCode(errDivByZero),
				sev:  sevRecoverable,
				msg:  renderFault(errDivByZero),
				line: r.pc.line,
			}}
		}

		return nil
	}
}

//
// Diagnostic text.  One line: the message, the source line if we were
// executing a program, and the enclosing routine if any
//

func printFaultMessage(fi *faultInfo) {

	msg := fi.msg

	if fi.line >= 0 {
		msg += fmt.Sprintf(" at line %d", fi.line)
	}

	if name := enclosingRoutine(); name != "" {
		msg += " in " + name
	}

	myPrintln(msg)
}

func enclosingRoutine() string {

	for i := len(r.stack) - 1; i >= 0; i-- {
		f := &r.stack[i]
		if f.kind == frameProc || f.kind == frameFn {
			return f.name
		}
	}

	return ""
}

//
// Call traceback, newest frame first, capped at a fixed depth
//

func printTraceback() {

	printed := 0

	for i := len(r.stack) - 1; i >= 0 && printed < maxTracebackDepth; i-- {
		f := &r.stack[i]

		switch f.kind {
		default:
			continue

		case frameProc, frameFn:
			myPrintf("  in %s (called from line %d)\n", f.name, f.ret.line)

		case frameGosub:
			myPrintf("  in GOSUB (called from line %d)\n", f.ret.line)
		}

		printed++
	}
}

//
// REPORT reprints the message of the most recent fault
//

func executeReport() {

	if r.lastFault != nil {
		myPrintln(r.lastFault.msg)
	} else {
		myPrintln("")
	}
}

//
// Top-level wrapper: run f, decoding any panic that crawls out.  This
// is the recovery re-entry point the command loop goes through after
// every unrecoverable fault
//

func call(f func()) {

	defer func() {
		if e := recover(); e != nil {
			decodePanic(e)
		}
	}()

	f()
}

func decodePanic(e any) {

	switch e := e.(type) {
	default:

		//
		// An unclassified panic is an interpreter bug.  Clean up the
		// terminal and exit rather than corrupt further state
		//

		crash(fmt.Sprintf("internal panic: %v", e))

	case *crawloutException:
		if !e.continuable {
			r.resumePc = position{off: -1, line: -1}
		}

		g.running = false

	case *internalErrorInfo:
		myPrintf("%q at %s line %d\n", e.msg, e.file, e.line)
		initializeRun()
		g.running = false

	case *runtimeFault:

		//
		// A fault raised outside the dispatch loop (immediate mode,
		// declaration processing).  No handler can be in force here
		//

		flushOutput()
		printFaultMessage(e.fi)
		r.lastFault = e.fi
		clearFrames()
		g.running = false
	}
}
