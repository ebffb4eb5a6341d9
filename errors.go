package main

import "fmt"

//
// Fault taxonomy.  Info and Warning are reported and execution carries
// on; Recoverable faults may be intercepted by a user handler subject
// to the stack-safety rule in faults.go; Fatal faults always halt to
// the command loop, handler or not
//

type severity int

const (
	sevInfo severity = iota
	sevWarning
	sevRecoverable
	sevFatal
)

//
// Parameter shape of a catalog entry: what the raise site must supply
// to render the message template
//

type paramShape int

const (
	paramNone paramShape = iota
	paramInt
	paramIntString
	paramString
	paramName // name arrives with its punctuation already attached
)

type catalogEntry struct {
	sev      severity
	shape    paramShape
	code     int // externally visible error number (ERR)
	template string
}

//
// Catalog indices.  Index 0 and the final sentinel are reserved
//

const (
	errNone = iota
	errEscape
	errNoSuchLine
	errBadLineNo
	errOnRange
	errNotInFor
	errNotInWhile
	errNotInRepeat
	errNotInGosub
	errNotInProc
	errNotInFn
	errWrongArgs
	errBadStep
	errMissingEndif
	errMissingEndwhile
	errMissingEndcase
	errTooManyWhens
	errMissingEndproc
	errTypeMismatch
	errNoSuchProc
	errNoSuchFn
	errDivByZero
	errArith
	errOutOfData
	errNoLocalError
	errNoLocalData
	errBadSubscript
	errReDim
	errStackFull
	errBadCall
	errUserError
	errNoEndWarning
	errListNote
	errLastEntry // sentinel, must be last
)

//
// The static fault catalog.  External codes follow the classic BBC
// BASIC numbering where one exists
//

var errorCatalog = [errLastEntry + 1]catalogEntry{
	errNone:            {sevFatal, paramNone, 0, "Unclassified error"},
	errEscape:          {sevRecoverable, paramNone, 17, "Escape"},
	errNoSuchLine:      {sevRecoverable, paramInt, 41, "No such line %d"},
	errBadLineNo:       {sevRecoverable, paramInt, 41, "Line number %d out of range"},
	errOnRange:         {sevRecoverable, paramInt, 40, "ON index %d out of range"},
	errNotInFor:        {sevRecoverable, paramNone, 32, "Not in a FOR loop"},
	errNotInWhile:      {sevRecoverable, paramNone, 46, "Not in a WHILE loop"},
	errNotInRepeat:     {sevRecoverable, paramNone, 43, "Not in a REPEAT loop"},
	errNotInGosub:      {sevRecoverable, paramNone, 38, "Not in a subroutine"},
	errNotInProc:       {sevRecoverable, paramNone, 13, "Not in a procedure"},
	errNotInFn:         {sevRecoverable, paramNone, 7, "Not in a function"},
	errWrongArgs:       {sevRecoverable, paramName, 31, "Wrong number of arguments to %s"},
	errBadStep:         {sevRecoverable, paramNone, 35, "STEP cannot be zero"},
	errMissingEndif:    {sevRecoverable, paramNone, 49, "Missing ENDIF"},
	errMissingEndwhile: {sevRecoverable, paramNone, 46, "Missing ENDWHILE"},
	errMissingEndcase:  {sevRecoverable, paramNone, 47, "Missing ENDCASE"},
	errTooManyWhens:    {sevRecoverable, paramNone, 48, "Too many WHEN clauses"},
	errMissingEndproc:  {sevRecoverable, paramNone, 13, "Missing ENDPROC"},
	errTypeMismatch:    {sevRecoverable, paramNone, 6, "Type mismatch"},
	errNoSuchProc:      {sevRecoverable, paramName, 29, "No such procedure %s"},
	errNoSuchFn:        {sevRecoverable, paramName, 29, "No such function %s"},
	errDivByZero:       {sevRecoverable, paramNone, 18, "Division by zero"},
	errArith:           {sevRecoverable, paramNone, 20, "Number too big"},
	errOutOfData:       {sevRecoverable, paramNone, 42, "Out of DATA"},
	errNoLocalError:    {sevRecoverable, paramNone, 31, "RESTORE ERROR without LOCAL ERROR"},
	errNoLocalData:     {sevRecoverable, paramNone, 31, "RESTORE DATA without LOCAL DATA"},
	errBadSubscript:    {sevRecoverable, paramName, 15, "Subscript out of range in %s"},
	errReDim:           {sevRecoverable, paramName, 10, "Array %s already dimensioned"},
	errStackFull:       {sevFatal, paramNone, 0, "Control stack overflow"},
	errBadCall:         {sevFatal, paramIntString, 0, "Bad call (%d) in %s"},
	errUserError:       {sevRecoverable, paramIntString, 0, "Error %d: %s"},
	errNoEndWarning:    {sevWarning, paramNone, 0, "Program has no END"},
	errListNote:        {sevInfo, paramInt, 0, "%d lines listed"},
	errLastEntry:       {sevFatal, paramNone, 0, "Catalog overrun"},
}

//
// Render a catalog entry's message.  The shape tells us how to apply
// the arguments; a mismatched raise site is an interpreter bug, not a
// user fault
//

func renderFault(no int, args ...any) string {

	if no <= errNone || no >= errLastEntry {
		no = errNone
	}

	ent := &errorCatalog[no]

	switch ent.shape {
	default:
		internalError(fmt.Sprintf("Bad parameter shape %d", ent.shape))
		panic(nil) // not reached

	case paramNone:
		basicAssert(len(args) == 0, "Fault args botch")
		return ent.template

	case paramInt:
		basicAssert(len(args) == 1, "Fault args botch")
		return fmt.Sprintf(ent.template, args[0])

	case paramIntString:
		basicAssert(len(args) == 2, "Fault args botch")
		return fmt.Sprintf(ent.template, args[0], args[1])

	case paramString, paramName:
		basicAssert(len(args) == 1, "Fault args botch")
		return fmt.Sprintf(ent.template, args[0])
	}
}

func faultSeverity(no int) severity {

	if no <= errNone || no >= errLastEntry {
		return sevFatal
	}

	return errorCatalog[no].sev
}

func faultCode(no int) int {

	if no <= errNone || no >= errLastEntry {
		return 0
	}

	return errorCatalog[no].code
}
