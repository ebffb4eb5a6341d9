package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

//
// Output plumbing.  Everything user-visible funnels through writeOut
// so the cursor column stays known; PRINT's comma zones are laid out
// against that column
//

func writeOut(text string) {

	io.WriteString(g.out, text)

	if nl := strings.LastIndexByte(text, '\n'); nl >= 0 {
		p.cursorPos = len(text) - nl - 1
	} else {
		p.cursorPos += len(text)
	}
}

func myPrintf(format string, args ...any) {

	writeOut(fmt.Sprintf(format, args...))
}

func myPrintln(text string) {

	writeOut(text + "\n")
}

//
// Finish any partial output line before a diagnostic, so the message
// starts in column zero
//

func flushOutput() {

	if p.cursorPos != 0 {
		writeOut("\n")
	}
}

//
// The PRINT statement.  'E' items print an expression, ',' advances to
// the next print zone, ';' prints nothing; a trailing separator of
// either kind suppresses the newline
//

func executePrint(code []byte, off, line int) {

	n := int(code[off+1])
	o := off + 2

	newline := true

	for i := 0; i < n; i++ {
		switch code[o] {
		default:
			internalError("Bad PRINT item")

		case 'E':
			printValue(evalExpr(readU16(code, o+1)))
			o += 3
			newline = true

		case ',':
			tabToNextZone()
			o++
			newline = false

		case ';':
			o++
			newline = false
		}
	}

	if newline {
		writeOut("\n")
	}

	r.pc = advanceFrom(o, line)
}

func printValue(val any) {

	switch val := val.(type) {
	default:
		internalError("Bad print value")

	case string:
		writeOut(val)

	case int32, float64:
		writeOut(basicFormat(val))
	}
}

func tabToNextZone() {

	pad := zoneWidth - p.cursorPos%zoneWidth

	writeOut(strings.Repeat(" ", pad))
}

//
// Number rendering, shared by PRINT and STR$.  Integers render plainly;
// floats render to nine significant digits, with integral values kept
// free of a decimal point
//

func basicFormat(val any) string {

	switch val := val.(type) {
	default:
		internalError("Bad numeric value")
		panic(nil) // not reached

	case int32:
		return strconv.FormatInt(int64(val), 10)

	case float64:
		return strconv.FormatFloat(val, 'g', 9, 64)
	}
}
