package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

//
// The line tokenizer: turns one source line into byte-coded statements
// plus entries in the expression and name pools.  This is the loader
// collaborator the engine consumes; it reports problems as plain
// errors so the command loop can print them without involving the
// fault machinery
//

type lexer struct {
	s   string
	pos int
}

type tokenizeError struct {
	msg string
}

func (e *tokenizeError) Error() string { return e.msg }

func syntaxError(f string, args ...any) error {

	return &tokenizeError{msg: fmt.Sprintf(f, args...)}
}

//
// An assignment target inside an expression pool entry: the variable
// name plus the pool indices of its subscript expressions, if any
//

type lhsToken struct {
	name string
	subs []int
}

func (lx *lexer) skipSpace() {

	for lx.pos < len(lx.s) && (lx.s[lx.pos] == ' ' || lx.s[lx.pos] == '\t') {
		lx.pos++
	}
}

func (lx *lexer) atEnd() bool {

	lx.skipSpace()

	return lx.pos >= len(lx.s)
}

func (lx *lexer) peek() byte {

	lx.skipSpace()

	if lx.pos >= len(lx.s) {
		return 0
	}

	return lx.s[lx.pos]
}

func (lx *lexer) take(ch byte) bool {

	if lx.peek() == ch {
		lx.pos++
		return true
	}

	return false
}

func isWordChar(ch byte) bool {

	return ch == '_' || unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch))
}

//
// Match a keyword, case-insensitively, as a whole word.  The cursor
// only moves on a match
//

func (lx *lexer) matchKeyword(kw string) bool {

	lx.skipSpace()

	end := lx.pos + len(kw)
	if end > len(lx.s) {
		return false
	}

	if !strings.EqualFold(lx.s[lx.pos:end], kw) {
		return false
	}

	if end < len(lx.s) && isWordChar(lx.s[end]) {
		return false
	}

	lx.pos = end

	return true
}

//
// Match a keyword that is glued to what follows it.  PROC and FN
// names attach directly to their keyword, BBC style (PROCfoo,
// FNbar), so the whole-word check of matchKeyword would never let
// them match
//

func (lx *lexer) matchPrefix(kw string) bool {

	lx.skipSpace()

	end := lx.pos + len(kw)
	if end > len(lx.s) {
		return false
	}

	if !strings.EqualFold(lx.s[lx.pos:end], kw) {
		return false
	}

	lx.pos = end

	return true
}

func (lx *lexer) routineName() (string, error) {

	start := lx.pos

	for lx.pos < len(lx.s) && isWordChar(lx.s[lx.pos]) {
		lx.pos++
	}

	if lx.pos == start {
		return "", syntaxError("missing routine name")
	}

	return lx.s[start:lx.pos], nil
}

func (lx *lexer) ident() string {

	lx.skipSpace()

	start := lx.pos

	if lx.pos >= len(lx.s) || !unicode.IsLetter(rune(lx.s[lx.pos])) {
		return ""
	}

	for lx.pos < len(lx.s) && isWordChar(lx.s[lx.pos]) {
		lx.pos++
	}

	if lx.pos < len(lx.s) && (lx.s[lx.pos] == '%' || lx.s[lx.pos] == '$') {
		lx.pos++
	}

	return lx.s[start:lx.pos]
}

func (lx *lexer) lineNumber() (int, error) {

	lx.skipSpace()

	start := lx.pos

	for lx.pos < len(lx.s) && unicode.IsDigit(rune(lx.s[lx.pos])) {
		lx.pos++
	}

	if lx.pos == start {
		return 0, syntaxError("line number expected")
	}

	n, err := strconv.Atoi(lx.s[start:lx.pos])
	if err != nil {
		return 0, syntaxError("bad line number %q", lx.s[start:lx.pos])
	}

	return n, nil
}

func (lx *lexer) stringLit() (string, error) {

	basicAssert(lx.peek() == '"', "stringLit botch")
	lx.pos++

	var sb strings.Builder

	for lx.pos < len(lx.s) {
		ch := lx.s[lx.pos]
		lx.pos++

		if ch == '"' {

			// doubled quote is a literal quote

			if lx.pos < len(lx.s) && lx.s[lx.pos] == '"' {
				sb.WriteByte('"')
				lx.pos++
				continue
			}

			return sb.String(), nil
		}

		sb.WriteByte(ch)
	}

	return "", syntaxError("unterminated string")
}

//
// Pool helpers
//

func addExpr(prog *program, tl tokenList) int {

	prog.exprs = append(prog.exprs, tl)

	return len(prog.exprs) - 1
}

func addName(prog *program, name string) int {

	for i, n := range prog.names {
		if n == name {
			return i
		}
	}

	prog.names = append(prog.names, name)

	return len(prog.names) - 1
}

//
// Tokenize one source line into prog.code.  Returns false (after
// printing a diagnostic) on a syntax error
//

func tokenizeLine(prog *program, ln *lineNode) bool {

	lx := &lexer{s: ln.text}

	start := len(prog.code)

	prog.code = append(prog.code, tokLine)
	prog.code = putU16(prog.code, ln.lineNo)
	prog.code = append(prog.code, 0) // length patched below

	if err := tokenizeStmts(prog, lx); err != nil {
		myPrintf("Syntax error at line %d: %s\n", ln.lineNo, err.Error())
		prog.code = prog.code[:start]
		return false
	}

	prog.code = append(prog.code, tokEOL)

	recLen := len(prog.code) - start
	if recLen > maxSrcLineLen+4 {
		myPrintf("Line %d too long\n", ln.lineNo)
		prog.code = prog.code[:start]
		return false
	}

	prog.code[start+3] = byte(recLen)

	return true
}

func tokenizeStmts(prog *program, lx *lexer) error {

	first := true

	for !lx.atEnd() {
		if !first {
			prog.code = append(prog.code, tokColon)
		}

		first = false

		if err := tokenizeStmt(prog, lx); err != nil {
			return err
		}

		if !lx.atEnd() && !lx.take(':') {
			return syntaxError("unexpected text %q", lx.s[lx.pos:])
		}
	}

	return nil
}

func tokenizeStmt(prog *program, lx *lexer) error {

	switch {
	case lx.atEnd():
		return nil

	case lx.matchKeyword("REM"):
		lx.pos = len(lx.s)
		return nil

	case lx.matchKeyword("IF"):
		return tokenizeIf(prog, lx)

	case lx.matchKeyword("ELSE"):
		prog.code = append(prog.code, tokElse)
		return nil

	case lx.matchKeyword("ENDIF"):
		prog.code = append(prog.code, tokEndif)
		return nil

	case lx.matchKeyword("FOR"):
		return tokenizeFor(prog, lx)

	case lx.matchKeyword("NEXT"):
		prog.code = append(prog.code, tokNext)
		if !lx.atEnd() && lx.peek() != ':' {
			name := lx.ident()
			if name == "" {
				return syntaxError("bad NEXT variable")
			}
			prog.code = putU16(prog.code, addName(prog, name))
		} else {
			prog.code = putU16(prog.code, noOperand)
		}
		return nil

	case lx.matchKeyword("WHILE"):
		idx, err := tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}
		prog.code = append(prog.code, tokWhile)
		prog.code = putU16(prog.code, idx)
		return nil

	case lx.matchKeyword("ENDWHILE"):
		prog.code = append(prog.code, tokEndwhile)
		return nil

	case lx.matchKeyword("REPEAT"):
		prog.code = append(prog.code, tokRepeat)
		return nil

	case lx.matchKeyword("UNTIL"):
		idx, err := tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}
		prog.code = append(prog.code, tokUntil)
		prog.code = putU16(prog.code, idx)
		return nil

	case lx.matchKeyword("CASE"):
		idx, err := tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}
		if !lx.matchKeyword("OF") {
			return syntaxError("CASE without OF")
		}
		prog.code = append(prog.code, tokCase)
		prog.code = putU16(prog.code, idx)
		return nil

	case lx.matchKeyword("WHEN"):
		return tokenizeWhen(prog, lx)

	case lx.matchKeyword("OTHERWISE"):
		prog.code = append(prog.code, tokOtherwise)
		return nil

	case lx.matchKeyword("ENDCASE"):
		prog.code = append(prog.code, tokEndcase)
		return nil

	case lx.matchKeyword("GOTO"):
		return tokenizeBranch(prog, lx, tokGoto)

	case lx.matchKeyword("GOSUB"):
		return tokenizeBranch(prog, lx, tokGosub)

	case lx.matchKeyword("RETURN"):
		prog.code = append(prog.code, tokReturn)
		return nil

	case lx.matchKeyword("ON"):
		return tokenizeOn(prog, lx)

	case lx.matchKeyword("DEF"):
		return tokenizeDef(prog, lx)

	case lx.matchPrefix("PROC"):
		return tokenizeProcCall(prog, lx)

	case lx.matchKeyword("ENDPROC"):
		prog.code = append(prog.code, tokEndproc)
		return nil

	case lx.matchKeyword("LOCAL"):
		return tokenizeLocal(prog, lx)

	case lx.matchKeyword("RESTORE"):
		return tokenizeRestore(prog, lx)

	case lx.matchKeyword("DATA"):
		return tokenizeData(prog, lx)

	case lx.matchKeyword("READ"):
		return tokenizeReadLike(prog, lx, tokRead)

	case lx.matchKeyword("INPUT"):
		return tokenizeReadLike(prog, lx, tokInput)

	case lx.matchKeyword("PRINT"):
		return tokenizePrint(prog, lx)

	case lx.matchKeyword("DIM"):
		return tokenizeDim(prog, lx)

	case lx.matchKeyword("END"):
		prog.code = append(prog.code, tokEnd)
		return nil

	case lx.matchKeyword("STOP"):
		prog.code = append(prog.code, tokStop)
		return nil

	case lx.matchKeyword("REPORT"):
		prog.code = append(prog.code, tokReport)
		return nil

	case lx.matchKeyword("ERROR"):
		return tokenizeErrorStmt(prog, lx)

	case lx.matchKeyword("TRACE"):
		return tokenizeTrace(prog, lx)

	case lx.matchKeyword("LET"):
		return tokenizeLet(prog, lx)

	case lx.peek() == '=':
		lx.pos++
		idx, err := tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}
		prog.code = append(prog.code, tokFnReturn)
		prog.code = putU16(prog.code, idx)
		return nil

	default:
		return tokenizeLet(prog, lx)
	}
}

//
// IF <expr> THEN is a block IF when nothing else follows on the line;
// otherwise the THEN and optional ELSE arms are inline.  Either way
// the byte code just records the guard and the THEN marker: the two
// branch targets are found by the dispatcher's one-time forward scan
//

func tokenizeIf(prog *program, lx *lexer) error {

	idx, err := tokenizeExprIdx(prog, lx)
	if err != nil {
		return err
	}

	if !lx.matchKeyword("THEN") {
		return syntaxError("IF without THEN")
	}

	prog.code = append(prog.code, tokIf)
	prog.code = putU16(prog.code, idx)
	prog.code = append(prog.code, tokThen)

	if lx.atEnd() {
		// block form: arms live on the following lines
		return nil
	}

	//
	// Single-line form: THEN arm statements, optionally split by ELSE
	//

	for {
		if lx.matchKeyword("ELSE") {
			prog.code = append(prog.code, tokElse)
			continue
		}

		if err := tokenizeStmt(prog, lx); err != nil {
			return err
		}

		if lx.atEnd() {
			return nil
		}

		if lx.take(':') {
			prog.code = append(prog.code, tokColon)
			continue
		}

		if !strings.EqualFold(peekWord(lx), "ELSE") {
			return syntaxError("unexpected text %q", lx.s[lx.pos:])
		}
	}
}

func peekWord(lx *lexer) string {

	save := lx.pos
	w := lx.ident()
	lx.pos = save

	return w
}

func tokenizeFor(prog *program, lx *lexer) error {

	lhsIdx, err := tokenizeLhsIdx(prog, lx)
	if err != nil {
		return err
	}

	if !lx.take('=') {
		return syntaxError("FOR without =")
	}

	initIdx, err := tokenizeExprIdx(prog, lx)
	if err != nil {
		return err
	}

	if !lx.matchKeyword("TO") {
		return syntaxError("FOR without TO")
	}

	limitIdx, err := tokenizeExprIdx(prog, lx)
	if err != nil {
		return err
	}

	stepIdx := noOperand

	if lx.matchKeyword("STEP") {
		stepIdx, err = tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}
	}

	prog.code = append(prog.code, tokFor)
	prog.code = putU16(prog.code, lhsIdx)
	prog.code = putU16(prog.code, initIdx)
	prog.code = putU16(prog.code, limitIdx)
	prog.code = putU16(prog.code, stepIdx)

	return nil
}

func tokenizeWhen(prog *program, lx *lexer) error {

	var guards []int

	for {
		idx, err := tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}

		guards = append(guards, idx)

		if !lx.take(',') {
			break
		}
	}

	if len(guards) > 255 {
		return syntaxError("too many WHEN guards")
	}

	prog.code = append(prog.code, tokWhen, byte(len(guards)))
	for _, idx := range guards {
		prog.code = putU16(prog.code, idx)
	}

	return nil
}

func tokenizeBranch(prog *program, lx *lexer, opcode byte) error {

	n, err := lx.lineNumber()
	if err != nil {
		return err
	}

	if n > maxLineNo {
		return syntaxError("line number %d out of range", n)
	}

	prog.code = append(prog.code, opcode)
	prog.code = putU16(prog.code, n)

	return nil
}

//
// ON <expr> GOTO/GOSUB/PROC target-list [ELSE statements], and the
// unrelated ON ERROR family which shares the leading keyword
//

func tokenizeOn(prog *program, lx *lexer) error {

	if lx.matchKeyword("ERROR") {
		mode := byte(onErrorOrdinary)

		if lx.matchKeyword("OFF") {
			prog.code = append(prog.code, tokOnError, byte(onErrorOff))
			return nil
		}

		if lx.matchKeyword("LOCAL") {
			mode = onErrorLocal
		}

		prog.code = append(prog.code, tokOnError, mode)

		//
		// The rest of the line is the handler body, tokenized in
		// place; installing the handler skips over it
		//

		for !lx.atEnd() {
			if err := tokenizeStmt(prog, lx); err != nil {
				return err
			}

			if lx.take(':') {
				prog.code = append(prog.code, tokColon)
			}
		}

		return nil
	}

	exprIdx, err := tokenizeExprIdx(prog, lx)
	if err != nil {
		return err
	}

	var kind byte
	var targets []int

	switch {
	default:
		return syntaxError("ON without GOTO, GOSUB or PROC")

	case lx.matchKeyword("GOTO"):
		kind = onKindGoto

	case lx.matchKeyword("GOSUB"):
		kind = onKindGosub

	case lx.matchPrefix("PROC"):
		kind = onKindProc

		name, err := lx.routineName()
		if err != nil {
			return err
		}

		targets = append(targets, addName(prog, name))
	}

	for kind != onKindProc || lx.take(',') {
		if kind == onKindProc {
			if !lx.matchPrefix("PROC") {
				return syntaxError("PROC expected in ON ... PROC list")
			}

			name, err := lx.routineName()
			if err != nil {
				return err
			}

			targets = append(targets, addName(prog, name))
			continue
		}

		n, err := lx.lineNumber()
		if err != nil {
			return err
		}

		targets = append(targets, n)

		if !lx.take(',') {
			break
		}
	}

	if len(targets) == 0 || len(targets) > 255 {
		return syntaxError("bad ON target list")
	}

	hasElse := byte(0)

	save := lx.pos
	if lx.matchKeyword("ELSE") {
		hasElse = 1
	} else {
		lx.pos = save
	}

	prog.code = append(prog.code, tokOn, kind)
	prog.code = putU16(prog.code, exprIdx)
	prog.code = append(prog.code, byte(len(targets)))
	for _, t := range targets {
		prog.code = putU16(prog.code, t)
	}
	prog.code = append(prog.code, hasElse)

	if hasElse == 1 {
		for !lx.atEnd() {
			if err := tokenizeStmt(prog, lx); err != nil {
				return err
			}

			if lx.take(':') {
				prog.code = append(prog.code, tokColon)
			}
		}
	}

	return nil
}

func tokenizeDef(prog *program, lx *lexer) error {

	var opcode byte

	switch {
	default:
		return syntaxError("DEF without PROC or FN")

	case lx.matchPrefix("PROC"):
		opcode = tokDefProc

	case lx.matchPrefix("FN"):
		opcode = tokDefFn
	}

	name, err := lx.routineName()
	if err != nil {
		return err
	}

	var params []int

	if lx.take('(') {
		for {
			pname := lx.ident()
			if pname == "" {
				return syntaxError("bad parameter name")
			}

			params = append(params, addName(prog, pname))

			if !lx.take(',') {
				break
			}
		}

		if !lx.take(')') {
			return syntaxError("missing ) in DEF")
		}
	}

	if len(params) > 255 {
		return syntaxError("too many parameters")
	}

	prog.code = append(prog.code, opcode)
	prog.code = putU16(prog.code, addName(prog, name))
	prog.code = append(prog.code, byte(len(params)))
	for _, pidx := range params {
		prog.code = putU16(prog.code, pidx)
	}

	//
	// Single-line function: DEF FNd(x) = x*2
	//

	if opcode == tokDefFn && lx.take('=') {
		idx, err := tokenizeExprIdx(prog, lx)
		if err != nil {
			return err
		}

		prog.code = append(prog.code, tokColon, tokFnReturn)
		prog.code = putU16(prog.code, idx)
	}

	return nil
}

func tokenizeProcCall(prog *program, lx *lexer) error {

	name, err := lx.routineName()
	if err != nil {
		return err
	}

	var args []int

	if lx.take('(') {
		for {
			idx, err := tokenizeExprIdx(prog, lx)
			if err != nil {
				return err
			}

			args = append(args, idx)

			if !lx.take(',') {
				break
			}
		}

		if !lx.take(')') {
			return syntaxError("missing ) in PROC call")
		}
	}

	if len(args) > 255 {
		return syntaxError("too many arguments")
	}

	prog.code = append(prog.code, tokProc)
	prog.code = putU16(prog.code, addName(prog, name))
	prog.code = append(prog.code, byte(len(args)))
	for _, aidx := range args {
		prog.code = putU16(prog.code, aidx)
	}

	return nil
}

func tokenizeLocal(prog *program, lx *lexer) error {

	if lx.matchKeyword("ERROR") {
		prog.code = append(prog.code, tokLocalError)
		return nil
	}

	if lx.matchKeyword("DATA") {
		prog.code = append(prog.code, tokLocalData)
		return nil
	}

	var vars []int

	for {
		name := lx.ident()
		if name == "" {
			return syntaxError("bad LOCAL variable")
		}

		vars = append(vars, addName(prog, name))

		if !lx.take(',') {
			break
		}
	}

	prog.code = append(prog.code, tokLocal, byte(len(vars)))
	for _, vidx := range vars {
		prog.code = putU16(prog.code, vidx)
	}

	return nil
}

func tokenizeRestore(prog *program, lx *lexer) error {

	if lx.matchKeyword("ERROR") {
		prog.code = append(prog.code, tokRestoreError)
		return nil
	}

	if lx.matchKeyword("DATA") {
		prog.code = append(prog.code, tokRestoreData)
		return nil
	}

	target := noOperand

	if !lx.atEnd() && lx.peek() != ':' {
		n, err := lx.lineNumber()
		if err != nil {
			return err
		}

		target = n
	}

	prog.code = append(prog.code, tokRestore)
	prog.code = putU16(prog.code, target)

	return nil
}

//
// DATA items are kept as raw text and handed to the expression
// tokenizer one at a time when READ consumes them
//

func tokenizeData(prog *program, lx *lexer) error {

	var items []int

	lx.skipSpace()

	for {
		var item string

		if lx.peek() == '"' {
			str, err := lx.stringLit()
			if err != nil {
				return err
			}

			item = `"` + strings.ReplaceAll(str, `"`, `""`) + `"`
		} else {
			start := lx.pos
			for lx.pos < len(lx.s) && lx.s[lx.pos] != ',' {
				lx.pos++
			}

			item = strings.TrimSpace(lx.s[start:lx.pos])
		}

		items = append(items, addName(prog, item))

		if !lx.take(',') {
			break
		}
	}

	if len(items) == 0 || len(items) > 255 {
		return syntaxError("bad DATA list")
	}

	prog.code = append(prog.code, tokData, byte(len(items)))
	for _, idx := range items {
		prog.code = putU16(prog.code, idx)
	}

	lx.pos = len(lx.s)

	return nil
}

func tokenizeReadLike(prog *program, lx *lexer, opcode byte) error {

	var lvals []int

	for {
		idx, err := tokenizeLhsIdx(prog, lx)
		if err != nil {
			return err
		}

		lvals = append(lvals, idx)

		if !lx.take(',') {
			break
		}
	}

	if len(lvals) > 255 {
		return syntaxError("too many READ items")
	}

	prog.code = append(prog.code, opcode, byte(len(lvals)))
	for _, idx := range lvals {
		prog.code = putU16(prog.code, idx)
	}

	return nil
}

func tokenizePrint(prog *program, lx *lexer) error {

	var items []byte

	n := 0

	for !lx.atEnd() && lx.peek() != ':' {

		// inside a single-line IF the ELSE ends the item list

		if strings.EqualFold(peekWord(lx), "ELSE") {
			break
		}

		switch lx.peek() {
		case ',':
			lx.pos++
			items = append(items, ',')

		case ';':
			lx.pos++
			items = append(items, ';')

		default:
			idx, err := tokenizeExprIdx(prog, lx)
			if err != nil {
				return err
			}

			items = append(items, 'E')
			items = putU16(items, idx)
		}

		n++
	}

	if n > 255 {
		return syntaxError("PRINT list too long")
	}

	prog.code = append(prog.code, tokPrint, byte(n))
	prog.code = append(prog.code, items...)

	return nil
}

//
// DIM name(d1[,d2])[, ...].  Each declaration carries its bound
// expressions; the store allocates at execution time
//

func tokenizeDim(prog *program, lx *lexer) error {

	var buf []byte
	count := 0

	for {
		name := lx.ident()
		if name == "" {
			return syntaxError("bad DIM variable")
		}

		if !lx.take('(') {
			return syntaxError("DIM without bounds")
		}

		var dims []int
		for {
			idx, err := tokenizeExprIdx(prog, lx)
			if err != nil {
				return err
			}

			dims = append(dims, idx)

			if !lx.take(',') {
				break
			}
		}

		if !lx.take(')') {
			return syntaxError("missing ) in DIM")
		}

		if len(dims) > 2 {
			return syntaxError("too many dimensions")
		}

		buf = putU16(buf, addName(prog, name))
		buf = append(buf, byte(len(dims)))
		for _, idx := range dims {
			buf = putU16(buf, idx)
		}

		count++

		if !lx.take(',') {
			break
		}
	}

	if count > 255 {
		return syntaxError("DIM list too long")
	}

	prog.code = append(prog.code, tokDim, byte(count))
	prog.code = append(prog.code, buf...)

	return nil
}

func tokenizeErrorStmt(prog *program, lx *lexer) error {

	n, err := lx.lineNumber() // the error code, lexically a number
	if err != nil {
		return err
	}

	msgIdx := noOperand

	if lx.take(',') {
		if lx.peek() != '"' {
			return syntaxError("ERROR message must be a string literal")
		}

		str, err := lx.stringLit()
		if err != nil {
			return err
		}

		msgIdx = addName(prog, str)
	}

	prog.code = append(prog.code, tokError)
	prog.code = putU16(prog.code, n)
	prog.code = putU16(prog.code, msgIdx)

	return nil
}

func tokenizeTrace(prog *program, lx *lexer) error {

	var what byte

	switch {
	default:
		return syntaxError("bad TRACE option")

	case lx.matchKeyword("ON"):
		what = 1

	case lx.matchKeyword("OFF"):
		what = 0

	case lx.matchKeyword("STACK"):
		what = 2

	case lx.matchKeyword("STATS"):
		what = 3

	case lx.matchKeyword("DUMP"):
		what = 4
	}

	prog.code = append(prog.code, tokTrace, what)

	return nil
}

func tokenizeLet(prog *program, lx *lexer) error {

	lhsIdx, err := tokenizeLhsIdx(prog, lx)
	if err != nil {
		return err
	}

	if !lx.take('=') {
		return syntaxError("assignment without =")
	}

	rhsIdx, err := tokenizeExprIdx(prog, lx)
	if err != nil {
		return err
	}

	prog.code = append(prog.code, tokLet)
	prog.code = putU16(prog.code, lhsIdx)
	prog.code = putU16(prog.code, rhsIdx)

	return nil
}

//
// An lvalue pool entry: variable name plus subscript expressions
//

func tokenizeLhsIdx(prog *program, lx *lexer) (int, error) {

	name := lx.ident()
	if name == "" {
		return 0, syntaxError("variable expected")
	}

	lhs := lhsToken{name: name}

	if lx.take('(') {
		for {
			idx, err := tokenizeExprIdx(prog, lx)
			if err != nil {
				return 0, err
			}

			lhs.subs = append(lhs.subs, idx)

			if !lx.take(',') {
				break
			}
		}

		if !lx.take(')') {
			return 0, syntaxError("missing ) in subscript")
		}

		if len(lhs.subs) > 2 {
			return 0, syntaxError("too many subscripts")
		}
	}

	return addExpr(prog, tokenList{lhs}), nil
}

//
// Expression tokenizing: precedence climbing straight into the RPN
// token list shape the evaluator consumes
//

func tokenizeExprIdx(prog *program, lx *lexer) (int, error) {

	tl, err := parseExpr(prog, lx, 0)
	if err != nil {
		return 0, err
	}

	return addExpr(prog, tl), nil
}

//
// The "tokenize one expression into a throwaway buffer" service that
// READ uses to parse a DATA item as a full expression
//

func tokenizeScratchExpr(text string) (tokenList, error) {

	lx := &lexer{s: text}

	scratch := &program{}

	tl, err := parseExpr(scratch, lx, 0)
	if err != nil {
		return nil, err
	}

	if !lx.atEnd() {
		return nil, syntaxError("unexpected text %q", lx.s[lx.pos:])
	}

	//
	// FN call sites hold argument indices into the pool they were
	// tokenized against, and the scratch pool is discarded here
	//

	for _, item := range tl {
		if _, ok := item.(fnCallToken); ok {
			return nil, syntaxError("FN call not allowed here")
		}
	}

	return tl, nil
}

type opInfo struct {
	op   int
	prec int
}

func binaryOp(lx *lexer) (opInfo, bool) {

	lx.skipSpace()

	switch {
	case lx.matchKeyword("OR"):
		return opInfo{OROP, 1}, true
	case lx.matchKeyword("EOR"):
		return opInfo{EOROP, 1}, true
	case lx.matchKeyword("AND"):
		return opInfo{ANDOP, 2}, true
	case lx.matchKeyword("MOD"):
		return opInfo{MODOP, 5}, true
	case lx.matchKeyword("DIV"):
		return opInfo{DIVOP, 5}, true
	}

	if lx.pos >= len(lx.s) {
		return opInfo{}, false
	}

	two := ""
	if lx.pos+1 < len(lx.s) {
		two = lx.s[lx.pos : lx.pos+2]
	}

	switch two {
	case "<>":
		lx.pos += 2
		return opInfo{NE, 3}, true
	case "<=":
		lx.pos += 2
		return opInfo{LE, 3}, true
	case ">=":
		lx.pos += 2
		return opInfo{GE, 3}, true
	}

	switch lx.s[lx.pos] {
	case '=':
		lx.pos++
		return opInfo{EQ, 3}, true
	case '<':
		lx.pos++
		return opInfo{LT, 3}, true
	case '>':
		lx.pos++
		return opInfo{GT, 3}, true
	case '+':
		lx.pos++
		return opInfo{PLUS, 4}, true
	case '-':
		lx.pos++
		return opInfo{MINUS, 4}, true
	case '*':
		lx.pos++
		return opInfo{STAR, 5}, true
	case '/':
		lx.pos++
		return opInfo{SLASH, 5}, true
	case '^':
		lx.pos++
		return opInfo{POW, 6}, true
	}

	return opInfo{}, false
}

func parseExpr(prog *program, lx *lexer, minPrec int) (tokenList, error) {

	tl, err := parsePrimary(prog, lx)
	if err != nil {
		return nil, err
	}

	for {
		save := lx.pos

		oi, ok := binaryOp(lx)
		if !ok || oi.prec < minPrec {
			lx.pos = save
			return tl, nil
		}

		//
		// All binary operators associate left, so the right operand
		// is parsed one level tighter
		//

		right, err := parseExpr(prog, lx, oi.prec+1)
		if err != nil {
			return nil, err
		}

		tl = append(tl, right...)
		tl = append(tl, oi.op)
	}
}

var builtinFuncs = []struct {
	kw    string
	op    int
	nargs int
}{
	{"LEFT$", LEFTSF, 2},
	{"RIGHT$", RIGHTSF, 2},
	{"MID$", MIDSF, 3},
	{"CHR$", CHRSF, 1},
	{"STR$", STRSF, 1},
	{"LEN", LENF, 1},
	{"VAL", VALF, 1},
	{"ASC", ASCF, 1},
	{"ABS", ABSF, 1},
	{"INT", INTF, 1},
	{"SGN", SGNF, 1},
	{"SQR", SQRF, 1},
	{"SIN", SINF, 1},
	{"COS", COSF, 1},
	{"TAN", TANF, 1},
	{"LN", LNF, 1},
	{"EXP", EXPF, 1},
}

func parsePrimary(prog *program, lx *lexer) (tokenList, error) {

	lx.skipSpace()

	if lx.pos >= len(lx.s) {
		return nil, syntaxError("expression expected")
	}

	switch {
	case lx.take('('):
		tl, err := parseExpr(prog, lx, 0)
		if err != nil {
			return nil, err
		}

		if !lx.take(')') {
			return nil, syntaxError("missing )")
		}

		return tl, nil

	case lx.peek() == '-':
		lx.pos++

		tl, err := parseExpr(prog, lx, 7)
		if err != nil {
			return nil, err
		}

		return append(tl, UNEG), nil

	case lx.matchKeyword("NOT"):
		tl, err := parseExpr(prog, lx, 7)
		if err != nil {
			return nil, err
		}

		return append(tl, NOTOP), nil

	case lx.peek() == '"':
		str, err := lx.stringLit()
		if err != nil {
			return nil, err
		}

		return tokenList{str}, nil

	case unicode.IsDigit(rune(lx.peek())) || lx.peek() == '.':
		return parseNumber(lx)

	case lx.matchKeyword("TRUE"):
		return tokenList{TRUEF}, nil

	case lx.matchKeyword("FALSE"):
		return tokenList{FALSEF}, nil

	case lx.matchKeyword("PI"):
		return tokenList{PIF}, nil

	case lx.matchKeyword("RND"):
		return tokenList{RNDF}, nil

	case lx.matchKeyword("ERL"):
		return tokenList{ERLF}, nil

	case lx.matchKeyword("ERR"):
		return tokenList{ERRF}, nil

	case lx.matchPrefix("FN"):
		return parseFnCall(prog, lx)
	}

	for _, bf := range builtinFuncs {
		if lx.matchKeyword(bf.kw) {
			return parseBuiltin(prog, lx, bf.op, bf.nargs)
		}
	}

	return parseVariable(prog, lx)
}

func parseNumber(lx *lexer) (tokenList, error) {

	start := lx.pos
	isFloat := false

	for lx.pos < len(lx.s) {
		ch := lx.s[lx.pos]

		if unicode.IsDigit(rune(ch)) {
			lx.pos++
		} else if ch == '.' {
			isFloat = true
			lx.pos++
		} else if ch == 'E' || ch == 'e' {
			next := lx.pos + 1
			if next < len(lx.s) && (lx.s[next] == '+' || lx.s[next] == '-' ||
				unicode.IsDigit(rune(lx.s[next]))) {
				isFloat = true
				lx.pos += 2
			} else {
				break
			}
		} else {
			break
		}
	}

	text := lx.s[start:lx.pos]

	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 32); err == nil {
			return tokenList{int32(n)}, nil
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, syntaxError("bad number %q", text)
	}

	return tokenList{f}, nil
}

func parseBuiltin(prog *program, lx *lexer, op int, nargs int) (tokenList, error) {

	if !lx.take('(') {
		return nil, syntaxError("missing ( after function")
	}

	var tl tokenList

	for i := 0; i < nargs; i++ {
		if i > 0 && !lx.take(',') {
			return nil, syntaxError("missing , in function call")
		}

		arg, err := parseExpr(prog, lx, 0)
		if err != nil {
			return nil, err
		}

		tl = append(tl, arg...)
	}

	if !lx.take(')') {
		return nil, syntaxError("missing ) in function call")
	}

	return append(tl, op), nil
}

func parseFnCall(prog *program, lx *lexer) (tokenList, error) {

	name, err := lx.routineName()
	if err != nil {
		return nil, err
	}

	fc := fnCallToken{name: name}

	if lx.take('(') {
		for {
			idx, err := tokenizeExprIdx(prog, lx)
			if err != nil {
				return nil, err
			}

			fc.args = append(fc.args, idx)

			if !lx.take(',') {
				break
			}
		}

		if !lx.take(')') {
			return nil, syntaxError("missing ) in FN call")
		}
	}

	return tokenList{fc}, nil
}

func parseVariable(prog *program, lx *lexer) (tokenList, error) {

	name := lx.ident()
	if name == "" {
		return nil, syntaxError("unexpected character %q", string(lx.peek()))
	}

	vtok := makeVarToken(name)

	if !lx.take('(') {
		return tokenList{vtok}, nil
	}

	tl := tokenList{vtok}
	nsubs := 0

	for {
		sub, err := parseExpr(prog, lx, 0)
		if err != nil {
			return nil, err
		}

		tl = append(tl, sub...)
		nsubs++

		if !lx.take(',') {
			break
		}
	}

	if !lx.take(')') {
		return nil, syntaxError("missing ) in subscript")
	}

	switch nsubs {
	default:
		return nil, syntaxError("too many subscripts")

	case 1:
		tl = append(tl, SUBSCR1)

	case 2:
		tl = append(tl, SUBSCR2)
	}

	return tl, nil
}
