package main

import (
	"strconv"
	"strings"

	"github.com/danswartzendruber/liner"
)

//
// The dispatch loop.  r.pc always addresses a statement opcode; every
// handler leaves it on the next statement to run.  Statement execution
// is wrapped in a recover so a fault raised anywhere below lands at
// this boundary, where the error engine decides between a user handler
// and unwinding to the command loop
//

//
// Thrown when a fault was already delivered to a user handler while a
// nested function dispatch was on the Go stack; the outer statement
// must abandon itself without touching r.pc
//

type handledTransfer struct{}

func executeRunInternal() {

	for g.running && r.pc.off >= 0 {
		executeStmt()
	}
}

func executeProgram(start position) {

	g.running = true
	r.traceLine = -1

	initClock()

	r.pc = start

	executeRunInternal()

	//
	// Falling off the end of the stored program without an END is
	// legal but worth a remark
	//

	if g.running && r.pc.off < 0 {
		g.running = false
		raiseError(errNoEndWarning)
	}

	g.running = false

	if g.printStats {
		printStatistics()
	}
}

func executeStmt() {

	defer func() {
		if e := recover(); e != nil {
			if _, ok := e.(*handledTransfer); ok {
				return
			}

			//
			// recoverFault either transfers to a user handler, leaving
			// r.pc set, or panics onward to the command loop
			//

			recoverFault(e)
		}
	}()

	checkEscape()

	s.numStatements++

	code := g.prog.code
	off := r.pc.off
	line := r.pc.line

	if g.traceExec && line != r.traceLine {
		myPrintf("[%d] ", line)
		r.traceLine = line
	}

	switch code[off] {
	default:
		internalError("Bad opcode " + strconv.Itoa(int(code[off])))

	case tokLet:
		val := evalExpr(readU16(code, off+3))
		processLhs(evalLhs(readU16(code, off+1)), val)
		r.pc = advanceFrom(off+5, line)

	case tokPrint:
		executePrint(code, off, line)

	case tokIf:
		rec := scanIfRecord(off, line)

		if isTrue(evalExpr(readU16(code, off+1))) {
			r.pc = rec.thenAddr
		} else {
			r.pc = rec.elseAddr
		}

	case tokElse:

		//
		// Reached by falling off the end of a THEN arm: jump to the
		// join point.  The IF scan normally pre-caches this; a cold
		// lookup means control arrived without executing the IF, and
		// the block-structure scan recovers the join
		//

		if pos, ok := g.prog.skipCache[off]; ok {
			r.pc = pos
		} else {
			r.pc = elseJoinScan(off, line)
		}

	case tokEndif, tokEndcase:
		r.pc = advanceFrom(off+1, line)

	case tokFor:
		executeFor(code, off, line)

	case tokNext:
		executeNext(code, off, line)

	case tokWhile:
		executeWhile(code, off, line)

	case tokEndwhile:
		f := unwindToFrameLocal(frameWhile)
		runtimeCheck(f != nil, errNotInWhile)
		r.pc = f.stmt

	case tokRepeat:
		body := advanceFrom(off+1, line)
		pushFrame(ctlFrame{kind: frameRepeat, stmt: body})
		r.pc = body

	case tokUntil:
		f := unwindToFrameLocal(frameRepeat)
		runtimeCheck(f != nil, errNotInRepeat)

		if isTrue(evalExpr(readU16(code, off+1))) {
			popFrame()
			r.pc = advanceFrom(off+3, line)
		} else {
			r.pc = f.stmt
		}

	case tokCase:
		r.pc = dispatchCase(off, line)

	case tokWhen, tokOtherwise:

		//
		// Falling into the next arm from the arm above: the arm is
		// finished, so control leaves the whole construct
		//

		r.pc = skipLoop(off, line, tokCase, tokEndcase, errMissingEndcase)

	case tokGoto:
		r.pc = resolveBranch(off+1, readU16(code, off+1))

	case tokGosub:
		pushFrame(ctlFrame{kind: frameGosub, ret: advanceFrom(off+3, line)})
		r.pc = resolveBranch(off+1, readU16(code, off+1))

	case tokReturn:
		f := unwindToFrameLocal(frameGosub)
		runtimeCheck(f != nil, errNotInGosub)
		popFrame()
		r.pc = f.ret

	case tokOn:
		executeOn(code, off, line)

	case tokDefProc, tokDefFn:

		// a definition reached in normal flow is stepped over

		r.pc = skipDef(off, line)

	case tokProc:
		nameIdx := readU16(code, off+1)
		argc := int(code[off+3])

		args := make([]any, argc)
		for i := range args {
			args[i] = evalExpr(readU16(code, off+4+2*i))
		}

		callProc(g.prog.names[nameIdx], args, advanceFrom(off+4+2*argc, line))

	case tokEndproc:
		executeEndproc()

	case tokFnReturn:
		executeFnReturn(code, off)

	case tokLocal:
		executeLocal(code, off, line)

	case tokLocalError:
		pushFrame(ctlFrame{kind: frameError, saved: r.handler})
		r.pc = advanceFrom(off+1, line)

	case tokRestoreError:
		f := liftFrame(frameError)
		runtimeCheck(f != nil, errNoLocalError)
		r.handler = f.saved
		r.pc = advanceFrom(off+1, line)

	case tokLocalData:
		pushFrame(ctlFrame{kind: frameData, dataIndex: r.dataIndex})
		r.pc = advanceFrom(off+1, line)

	case tokRestoreData:
		f := liftFrame(frameData)
		runtimeCheck(f != nil, errNoLocalData)
		r.dataIndex = f.dataIndex
		r.pc = advanceFrom(off+1, line)

	case tokOnError:
		executeOnError(code, off, line)

	case tokData:

		// declarations were collected before the run; skip over

		r.pc = advanceFrom(off+1+tokenOperandLen(code, off), line)

	case tokRead:
		executeRead(code, off, line, false)

	case tokInput:
		executeRead(code, off, line, true)

	case tokRestore:
		executeRestore(code, off, line)

	case tokDim:
		executeDim(code, off, line)

	case tokEnd:
		r.pc = position{off: -1, line: -1}
		g.running = false

	case tokStop:
		myPrintf("Stopped at line %d\n", line)
		r.resumePc = advanceFrom(off+1, line)
		panic(&crawloutException{continuable: true})

	case tokError:
		msgIdx := readU16(code, off+3)
		msg := "Error"
		if msgIdx != noOperand {
			msg = g.prog.names[msgIdx]
		}
		raiseUserError(readU16(code, off+1), msg)

	case tokReport:
		executeReport()
		r.pc = advanceFrom(off+1, line)

	case tokTrace:
		executeTrace(code[off+1])
		r.pc = advanceFrom(off+2, line)
	}
}

//
// Position plumbing over the byte code.  advanceFrom normalizes a raw
// offset to the next statement opcode, stepping over separators, line
// headers and the trailing EOF
//

func advanceFrom(off, line int) position {

	code := g.prog.code

	for {
		switch code[off] {
		default:
			return position{off: off, line: line}

		case tokColon, tokEOL:
			off++

		case tokLine:
			line = readU16(code, off+1)
			off += 4

		case tokEOF:
			return position{off: -1, line: -1}
		}
	}
}

//
// Step from one statement to the next, returning (-1, -1) at the end
// of the program
//

func nextStmt(code []byte, off, line int) (int, int) {

	off += 1 + tokenOperandLen(code, off)

	for {
		switch code[off] {
		default:
			return off, line

		case tokColon, tokEOL:
			off++

		case tokLine:
			line = readU16(code, off+1)
			off += 4

		case tokEOF:
			return -1, -1
		}
	}
}

//
// Like nextStmt, but steps over single-line IF statements entirely:
// their THEN and ELSE markers bind to the line, not to the block
// structure a multi-line scan is walking
//

func nextBlockStmt(code []byte, off, line int) (int, int) {

	for {
		off, line = nextStmt(code, off, line)

		if off >= 0 && code[off] == tokIf && code[off+4] != tokEOL {
			for code[off] != tokEOL {
				off += 1 + tokenOperandLen(code, off)
			}

			continue
		}

		return off, line
	}
}

//
// Position of the first statement on the line after off's line
//

func nextLinePos(off, line int) position {

	code := g.prog.code

	for code[off] != tokEOL {
		off += 1 + tokenOperandLen(code, off)
	}

	return advanceFrom(off, line)
}

//
// Generic matched-pair skip: from the opening statement at off, find
// the matching close token and return the position after it.  The
// result is cached, so each site pays for the scan once per tokenized
// program
//

func skipLoop(off, line int, openTok, closeTok byte, missErr int) position {

	if pos, ok := g.prog.skipCache[off]; ok {
		return pos
	}

	code := g.prog.code
	depth := 1
	o, l := off, line

	for {
		o, l = nextStmt(code, o, l)
		runtimeCheck(o >= 0, missErr)

		switch code[o] {
		case openTok:
			depth++

		case closeTok:
			depth--
			if depth == 0 {
				pos := advanceFrom(o+1+tokenOperandLen(code, o), l)
				g.prog.skipCache[off] = pos
				return pos
			}
		}
	}
}

//
// The one-time IF scan.  Decides between the single-line and block
// forms, locates both arms, and caches the outcome against the IF's
// own offset
//

func scanIfRecord(off, line int) *ifRecord {

	if rec, ok := g.prog.ifCache[off]; ok {
		return rec
	}

	code := g.prog.code

	basicAssert(code[off+3] == tokThen, "IF token botch")

	rec := &ifRecord{}

	if code[off+4] == tokEOL {
		rec.blockForm = true
		rec.thenAddr = advanceFrom(off+4, line)
		scanBlockIf(off, line, rec)
	} else {
		rec.thenAddr = position{off: off + 4, line: line}
		scanInlineIf(off, line, rec)
	}

	g.prog.ifCache[off] = rec

	return rec
}

func scanInlineIf(off, line int, rec *ifRecord) {

	code := g.prog.code
	o := off + 4

	for {
		switch code[o] {
		default:
			o += 1 + tokenOperandLen(code, o)

		case tokEOL:

			// no ELSE: the false arm is simply the next line

			rec.elseAddr = advanceFrom(o, line)
			return

		case tokIf:

			//
			// A nested single-line IF owns the rest of the line, so
			// the outer IF cannot have an ELSE of its own
			//

			for code[o] != tokEOL {
				o += 1 + tokenOperandLen(code, o)
			}

		case tokElse:
			elseOff := o
			rec.elseAddr = advanceFrom(o+1, line)

			for code[o] != tokEOL {
				o += 1 + tokenOperandLen(code, o)
			}

			g.prog.skipCache[elseOff] = advanceFrom(o, line)
			return
		}
	}
}

func scanBlockIf(off, line int, rec *ifRecord) {

	code := g.prog.code
	depth := 0
	elseOff := -1
	o, l := off, line

	for {
		o, l = nextBlockStmt(code, o, l)
		runtimeCheck(o >= 0, errMissingEndif)

		switch code[o] {
		case tokIf:
			depth++

		case tokElse:
			if depth == 0 && elseOff < 0 {
				elseOff = o
				rec.elseAddr = advanceFrom(o+1, l)
			}

		case tokEndif:
			if depth > 0 {
				depth--
				continue
			}

			join := advanceFrom(o+1, l)

			if elseOff >= 0 {
				g.prog.skipCache[elseOff] = join
			} else {
				rec.elseAddr = join
			}

			return
		}
	}
}

//
// Join recovery for an ELSE reached without its IF ever executing
// (a jump straight into the arm).  Treat it as block structure and
// find the matching ENDIF
//

func elseJoinScan(off, line int) position {

	code := g.prog.code
	depth := 0
	o, l := off, line

	for {
		o, l = nextBlockStmt(code, o, l)
		runtimeCheck(o >= 0, errMissingEndif)

		switch code[o] {
		case tokIf:
			depth++

		case tokEndif:
			if depth > 0 {
				depth--
				continue
			}

			pos := advanceFrom(o+1, l)
			g.prog.skipCache[off] = pos
			return pos
		}
	}
}

//
// Skip a PROC or FN definition reached in normal flow: everything up
// to and including the ENDPROC, or the result statement for an FN
//

func skipDef(off, line int) position {

	if pos, ok := g.prog.skipCache[off]; ok {
		return pos
	}

	code := g.prog.code
	o, l := off, line

	for {
		o, l = nextStmt(code, o, l)
		runtimeCheck(o >= 0, errMissingEndproc)

		if code[o] == tokEndproc || code[o] == tokFnReturn {
			pos := advanceFrom(o+1+tokenOperandLen(code, o), l)
			g.prog.skipCache[off] = pos
			return pos
		}
	}
}

//
// FOR.  The body always runs once; NEXT does the increment and the
// limit test.  An all-integer loop with the default step takes a fast
// path that skips the generic numeric promotion
//

func executeFor(code []byte, off, line int) {

	initVal := evalExpr(readU16(code, off+3))
	limit := evalExpr(readU16(code, off+5))

	stepIdx := readU16(code, off+7)
	var step any = int32(1)
	if stepIdx != noOperand {
		step = evalExpr(stepIdx)
	}

	lval := evalLhs(readU16(code, off+1))
	runtimeCheck(len(lval.subs) == 0 && lval.sym.vType != SVAR, errTypeMismatch)

	_ = toFloat(limit) // both must be numeric
	runtimeCheck(toFloat(step) != 0, errBadStep)

	processLhs(lval, initVal)

	stepInt, stepIsInt := step.(int32)
	_, limitIsInt := limit.(int32)

	simple := lval.sym.vType == IVAR && stepIsInt && stepInt == 1 && limitIsInt

	body := advanceFrom(off+9, line)

	pushFrame(ctlFrame{
		kind:    frameFor,
		sym:     lval.sym,
		body:    body,
		limit:   limit,
		step:    step,
		simple:  simple,
		started: true,
	})

	r.pc = body
}

func executeNext(code []byte, off, line int) {

	nameIdx := readU16(code, off+1)

	want := ""
	if nameIdx != noOperand {
		want = g.prog.names[nameIdx]
	}

	//
	// A named NEXT terminates inner anonymous loops until the frame
	// for its own variable surfaces
	//

	var f *ctlFrame

	for {
		f = unwindToFrameLocal(frameFor)
		runtimeCheck(f != nil, errNotInFor)

		if want == "" || f.sym.name == want {
			break
		}

		popFrame()
	}

	var cont bool

	if f.simple {
		v := fetchIntVar(f.sym) + 1
		storeIntVar(f.sym, v)
		cont = v <= f.limit.(int32)
	} else {
		step := toFloat(f.step)
		next := toFloat(fetchSymValue(f.sym)) + step

		if f.sym.vType == IVAR {
			storeIntVar(f.sym, floatToInt32(next))
		} else {
			storeFloatVar(f.sym, next)
		}

		if step >= 0 {
			cont = next <= toFloat(f.limit)
		} else {
			cont = next >= toFloat(f.limit)
		}
	}

	if cont {
		r.pc = f.body
	} else {
		popFrame()
		r.pc = advanceFrom(off+3, line)
	}
}

//
// WHILE re-executes its own statement every iteration, so the guard
// is evaluated exactly here.  The frame is pushed on first entry only,
// which the top-of-stack check detects
//

func executeWhile(code []byte, off, line int) {

	guardIdx := readU16(code, off+1)

	top := topFrame()
	mine := top != nil && top.kind == frameWhile && top.stmt.off == off

	if isTrue(evalExpr(guardIdx)) {
		if !mine {
			pushFrame(ctlFrame{
				kind:  frameWhile,
				stmt:  position{off: off, line: line},
				guard: guardIdx,
			})
		}

		r.pc = advanceFrom(off+3, line)
		return
	}

	if mine {
		popFrame()
	}

	r.pc = skipLoop(off, line, tokWhile, tokEndwhile, errMissingEndwhile)
}

func executeOn(code []byte, off, line int) {

	kind := code[off+1]
	count := int(code[off+4])
	hasElse := code[off+5+2*count] != 0
	after := off + 5 + 2*count + 1

	idx := int(toInt32(evalExpr(readU16(code, off+2))))

	//
	// With an ELSE arm the rest of the line belongs to that arm, so a
	// taken GOSUB or PROC resumes on the next line
	//

	var ret position
	if hasElse {
		ret = nextLinePos(off, line)
	} else {
		ret = advanceFrom(after, line)
	}

	if idx < 1 || idx > count {
		runtimeCheck(hasElse, errOnRange, idx)
		r.pc = advanceFrom(after, line)
		return
	}

	tOff := off + 5 + 2*(idx-1)
	tVal := readU16(code, tOff)

	switch kind {
	default:
		internalError("Bad ON dispatch kind")

	case onKindGoto:
		r.pc = resolveBranch(tOff, tVal)

	case onKindGosub:
		pushFrame(ctlFrame{kind: frameGosub, ret: ret})
		r.pc = resolveBranch(tOff, tVal)

	case onKindProc:
		callProc(g.prog.names[tVal], nil, ret)
	}
}

//
// PROC call: arguments are evaluated against the caller's bindings,
// then the parameters are shadowed and bound.  The frame is pushed
// before shadowing so a stack-full fault cannot strand shadows
//

func callProc(name string, args []any, ret position) {

	def, ok := g.procMap[name]
	runtimeCheck(ok, errNoSuchProc, "PROC"+name)

	code := g.prog.code
	np := int(code[def.off+3])

	runtimeCheck(len(args) == np, errWrongArgs, "PROC"+name)

	pushFrame(ctlFrame{kind: frameProc, ret: ret, name: "PROC" + name, nparams: np})
	f := topFrame()

	for i := 0; i < np; i++ {
		pname := g.prog.names[readU16(code, def.off+4+2*i)]
		sym := lookupSymbolRef(makeVarToken(pname))

		f.shadows = append(f.shadows, shadowVar(sym))
		processLhs(lhsRetVal{sym: sym}, args[i])
	}

	r.pc = advanceFrom(def.off+1+tokenOperandLen(code, def.off), def.line)
}

func executeEndproc() {

	for {
		top := topFrame()
		runtimeCheck(top != nil && top.kind != frameFn, errNotInProc)

		if top.kind == frameProc {
			f := popFrame()
			restoreShadows(f.shadows)
			r.pc = f.ret
			return
		}

		discardFrame(popFrame())
	}
}

//
// User functions evaluate by running a nested dispatch loop until the
// function's own frame leaves the stack.  A result statement pops it
// and posts the value; a fault delivered to a handler outside the
// function trims it away instead, and the nested loop reports that
// with a handledTransfer so the suspended outer statement abandons
// itself
//

func runFn(fc fnCallToken) any {

	def, ok := g.fnMap[fc.name]
	runtimeCheck(ok, errNoSuchFn, "FN"+fc.name)

	code := g.prog.code
	np := int(code[def.off+3])

	runtimeCheck(len(fc.args) == np, errWrongArgs, "FN"+fc.name)

	args := make([]any, np)
	for i, idx := range fc.args {
		args[i] = evalExpr(idx)
	}

	savedPc := r.pc

	pushFrame(ctlFrame{kind: frameFn, ret: savedPc, name: "FN" + fc.name, nparams: np})
	f := topFrame()

	for i := 0; i < np; i++ {
		pname := g.prog.names[readU16(code, def.off+4+2*i)]
		sym := lookupSymbolRef(makeVarToken(pname))

		f.shadows = append(f.shadows, shadowVar(sym))
		processLhs(lhsRetVal{sym: sym}, args[i])
	}

	depth := len(r.stack)

	r.pc = advanceFrom(def.off+1+tokenOperandLen(code, def.off), def.line)
	r.fnDone = false

	for len(r.stack) >= depth && r.pc.off >= 0 {
		executeStmt()
	}

	if r.pc.off < 0 {
		raiseError(errNotInFn) // ran off the program without a result
	}

	if !r.fnDone {
		panic(&handledTransfer{})
	}

	r.fnDone = false

	return r.fnVal
}

func executeFnReturn(code []byte, off int) {

	val := evalExpr(readU16(code, off+1))

	for {
		top := topFrame()
		runtimeCheck(top != nil && top.kind != frameProc, errNotInFn)

		if top.kind == frameFn {
			f := popFrame()
			restoreShadows(f.shadows)

			r.fnVal = val
			r.fnDone = true
			r.pc = f.ret
			return
		}

		discardFrame(popFrame())
	}
}

//
// LOCAL shadows its variables into the innermost call frame, whose
// exit restores them
//

func executeLocal(code []byte, off, line int) {

	var f *ctlFrame

	for i := len(r.stack) - 1; i >= 0; i-- {
		k := r.stack[i].kind
		if k == frameProc || k == frameFn || k == frameGosub {
			f = &r.stack[i]
			break
		}
	}

	runtimeCheck(f != nil, errNotInProc)

	n := int(code[off+1])

	for i := 0; i < n; i++ {
		name := g.prog.names[readU16(code, off+2+2*i)]
		sym := lookupSymbolRef(makeVarToken(name))

		f.shadows = append(f.shadows, shadowVar(sym))
	}

	r.pc = advanceFrom(off+2+2*n, line)
}

//
// ON ERROR installs (or clears) the handler and skips the inline
// handler body; the body only ever runs when a fault transfers here
//

func executeOnError(code []byte, off, line int) {

	mode := code[off+1]
	addr := advanceFrom(off+2, line)

	switch mode {
	default:
		internalError("Bad ON ERROR mode")

	case onErrorOff:
		r.handler = nil
		r.pc = addr
		return

	case onErrorOrdinary:
		r.handler = &errHandler{addr: addr, depth: len(r.stack)}

	case onErrorLocal:
		r.handler = &errHandler{
			addr:  addr,
			depth: len(r.stack),
			local: true,
			prev:  r.handler,
		}
	}

	r.pc = nextLinePos(off, line)
}

//
// READ and INPUT share their shape: a list of lvalues filled from the
// DATA stream or the terminal
//

func executeRead(code []byte, off, line int, fromTerminal bool) {

	n := int(code[off+1])

	for i := 0; i < n; i++ {
		lval := evalLhs(readU16(code, off+2+2*i))

		var val any
		if fromTerminal {
			val = inputValue(lval)
		} else {
			val = nextDataValue(lval)
		}

		processLhs(lval, val)
	}

	r.pc = advanceFrom(off+2+2*n, line)
}

//
// A DATA item is raw text: for a string target an unquoted item is
// taken verbatim, otherwise the item is tokenized and evaluated as an
// expression on a throwaway buffer
//

func nextDataValue(lval lhsRetVal) any {

	runtimeCheck(r.dataIndex < len(g.dataItems), errOutOfData)

	item := g.dataItems[r.dataIndex]
	r.dataIndex++

	if lval.sym.vType == SVAR && !strings.HasPrefix(item.text, `"`) {
		return item.text
	}

	tl, err := tokenizeScratchExpr(item.text)
	if err != nil {
		raiseError(errTypeMismatch)
	}

	return evalTokenList(tl)
}

func inputValue(lval lhsRetVal) any {

	text, err := g.inputLiner.Prompt("? ")
	if err != nil {
		if err == liner.ErrPromptAborted {
			raiseError(errEscape)
		}

		raiseError(errOutOfData)
	}

	if lval.sym.vType == SVAR {
		return text
	}

	f, perr := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if perr != nil {
		f = 0
	}

	return f
}

//
// DIM allocates arrays with the evaluated inclusive bounds.  An array
// referenced before its DIM already exists with the implicit bounds,
// and redimensioning either kind is an error
//

func executeDim(code []byte, off, line int) {

	n := int(code[off+1])
	o := off + 2

	for i := 0; i < n; i++ {
		name := g.prog.names[readU16(code, o)]
		nd := int(code[o+2])

		var dims []int32

		for j := 0; j < nd; j++ {
			d := toInt32(evalExpr(readU16(code, o+3+2*j)))
			runtimeCheck(d >= 0, errBadSubscript, name)
			dims = append(dims, d)
		}

		o += 3 + 2*nd

		token := makeVarToken(name)

		runtimeCheck(lookupSymbol(token, dims...) == nil, errReDim, name)

		createSymbol(token, dims...)
	}

	r.pc = advanceFrom(o, line)
}

func executeRestore(code []byte, off, line int) {

	target := readU16(code, off+1)

	if target == noOperand {
		r.dataIndex = 0
	} else {
		runtimeCheck(target <= maxLineNo, errBadLineNo, target)

		idx := len(g.dataItems)

		for i, item := range g.dataItems {
			if item.line >= target {
				idx = i
				break
			}
		}

		r.dataIndex = idx
	}

	r.pc = advanceFrom(off+3, line)
}

func executeTrace(what byte) {

	switch what {
	default:
		internalError("Bad TRACE operand")

	case 0:
		g.traceExec = false
		g.traceStack = false
		g.traceDump = false
		g.printStats = false

	case 1:
		g.traceExec = true

	case 2:
		g.traceStack = true

	case 3:
		g.printStats = true

	case 4:
		g.traceDump = true
	}
}
