package main

import (
	"github.com/danswartzendruber/avl"
	"github.com/goforj/godump"
)

//
// Program Store.  Source lines live in an AVL tree ordered by line
// number; tokenizing flattens them, in order, into one byte-coded
// array.  The store is immutable in length while a program runs; any
// source edit marks it dirty and the next run rebuilds it from
// scratch, which also drops every resolution cache
//

//
// AVL wrappers, with the comparison glue the avl package wants
//

func cmpIntKey(key any, node any) int {

	return cmpIntItems(key.(int), node.(*lineNode).lineNo)
}

func cmpIntNode(node1, node2 any) int {

	return cmpIntItems(node1.(*lineNode).lineNo, node2.(*lineNode).lineNo)
}

func cmpIntItems(item1, item2 int) int {

	if item1 < item2 {
		return -1
	} else if item1 > item2 {
		return 1
	} else {
		return 0
	}
}

func srcFirstInOrder() *lineNode {

	if n := avl.AvlTreeFirstInOrder(g.src); n != nil {
		return n.(*lineNode)
	}

	return nil
}

func srcNextInOrder(ln *lineNode) *lineNode {

	if n := avl.AvlTreeNextInOrder(&ln.avl); n != nil {
		return n.(*lineNode)
	}

	return nil
}

func srcLookup(lineNo int) *lineNode {

	if n := avl.AvlTreeLookup(g.src, lineNo, cmpIntKey); n != nil {
		return n.(*lineNode)
	}

	return nil
}

//
// Source edits.  Entering a line replaces any previous line with the
// same number; an empty body deletes.  Every edit invalidates the
// tokenized program and everything cached from it
//

func setSourceLine(lineNo int, text string) {

	if old := srcLookup(lineNo); old != nil {
		avl.AvlTreeRemove(&g.src, &old.avl)
	}

	if text != "" {
		ln := &lineNode{lineNo: lineNo, text: text, off: -1}
		avl.AvlTreeInsert(&g.src, &ln.avl, ln, cmpIntNode)
	}

	g.dirty = true
	g.modified = true

	//
	// An edited program cannot be resumed: the cached positions in
	// the old byte code are meaningless now
	//

	initializeRun()
}

func clearProgram() {

	g.src = nil
	g.prog = nil
	g.dirty = true
	g.modified = false
	g.programName = ""

	initSymbolTable()

	initializeRun()
}

//
// Byte-order helpers.  All u16 operands are big-endian, like the line
// number bytes in the line header
//

func putU16(code []byte, val int) []byte {

	return append(code, byte(val>>8), byte(val&0xFF))
}

func readU16(code []byte, off int) int {

	return int(code[off])<<8 | int(code[off+1])
}

//
// Rebuild the byte-coded program from the source tree.  Offsets are
// recorded back into the line nodes, so the line index doubles as the
// symbolic-branch index.  Also rebuilds the declaration maps and the
// DATA item list
//

func retokenize() bool {

	prog := &program{
		branchCache: make(map[int]position),
		ifCache:     make(map[int]*ifRecord),
		caseCache:   make(map[int]*caseTable),
		skipCache:   make(map[int]position),
	}

	ok := true

	for ln := srcFirstInOrder(); ln != nil; ln = srcNextInOrder(ln) {
		ln.off = len(prog.code)

		if !tokenizeLine(prog, ln) {
			ok = false
			ln.off = -1
		}
	}

	prog.code = append(prog.code, tokEOF)

	if !ok {
		return false
	}

	g.prog = prog
	g.dirty = false

	if g.traceDump {
		godump.Dump(prog.exprs)
	}

	scanDeclarations()

	return true
}

//
// Walk the finished byte code recording PROC/FN definition sites and
// DATA items in program order
//

func scanDeclarations() {

	g.procMap = make(map[string]position)
	g.fnMap = make(map[string]position)
	g.dataItems = nil

	code := g.prog.code

	for off := 0; code[off] != tokEOF; {
		basicAssert(code[off] == tokLine, "Program store corrupt")

		lineNo := readU16(code, off+1)
		lineEnd := off + int(code[off+3])

		for i := off + 4; i < lineEnd-1; {
			op := code[i]

			switch op {
			case tokDefProc:
				name := g.prog.names[readU16(code, i+1)]
				g.procMap[name] = position{off: i, line: lineNo}

			case tokDefFn:
				name := g.prog.names[readU16(code, i+1)]
				g.fnMap[name] = position{off: i, line: lineNo}

			case tokData:
				n := int(code[i+1])
				for j := 0; j < n; j++ {
					idx := readU16(code, i+2+2*j)
					g.dataItems = append(g.dataItems,
						dataItem{line: lineNo, text: g.prog.names[idx]})
				}
			}

			i += 1 + tokenOperandLen(code, i)
		}

		off = lineEnd
	}
}

//
// Per-opcode operand widths, used by every forward scan.  The handful
// of count-prefixed layouts are computed from their count byte
//

func tokenOperandLen(code []byte, off int) int {

	switch code[off] {
	default:
		return 0

	case tokLet:
		return 4

	case tokPrint:
		n := int(code[off+1])
		l := 1
		for i, pos := 0, off+2; i < n; i++ {
			if code[pos] == 'E' {
				l += 3
				pos += 3
			} else {
				l++
				pos++
			}
		}
		return l

	case tokIf, tokNext, tokWhile, tokUntil, tokCase, tokGoto,
		tokGosub, tokRestore, tokFnReturn:
		return 2

	case tokFor:
		return 8

	case tokWhen:
		return 1 + 2*int(code[off+1])

	case tokOn:
		return 5 + 2*int(code[off+4])

	case tokDefProc, tokDefFn:
		return 3 + 2*int(code[off+3])

	case tokProc:
		return 3 + 2*int(code[off+3])

	case tokLocal, tokRead, tokInput, tokData:
		return 1 + 2*int(code[off+1])

	case tokDim:
		n := int(code[off+1])
		l := 1
		pos := off + 2
		for i := 0; i < n; i++ {
			step := 3 + 2*int(code[pos+2])
			l += step
			pos += step
		}
		return l

	case tokOnError, tokTrace:
		return 1

	case tokError:
		return 4
	}
}

//
// Line-structure helpers over the byte code
//

func lineNoAt(code []byte, lineStart int) int {

	return readU16(code, lineStart+1)
}

func lineEndOf(code []byte, lineStart int) int {

	return lineStart + int(code[lineStart+3])
}

//
// Position of the line's first statement.  A line holding only a REM
// tokenizes to an empty record, so the result is normalized onto the
// next real statement
//

func firstStmtOf(code []byte, lineStart int) position {

	return advanceFrom(lineStart+4, lineNoAt(code, lineStart))
}

//
// Branch Resolver.  resolve() maps a symbolic line-number reference to
// the address of that line's first statement.  The first visit pays
// for an index lookup and caches the result keyed by the reference's
// own program offset; later visits are a map hit.  Resolution is
// idempotent by construction: the cache entry never changes for the
// lifetime of the tokenized program, and a program edit throws the
// whole cache away with the program
//

func resolveBranch(operandOff int, lineNo int) position {

	if pos, ok := g.prog.branchCache[operandOff]; ok {
		return pos
	}

	pos := lookupLine(lineNo)

	g.prog.branchCache[operandOff] = pos

	return pos
}

//
// The actual index lookup, counted so tests can observe that cached
// resolutions never come back here
//

func lookupLine(lineNo int) position {

	runtimeCheck(lineNo >= 0 && lineNo <= maxLineNo, errBadLineNo, lineNo)

	g.lookupCount++

	ln := srcLookup(lineNo)

	runtimeCheck(ln != nil && ln.off >= 0, errNoSuchLine, lineNo)

	return firstStmtOf(g.prog.code, ln.off)
}
