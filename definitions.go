package main

import (
	"io"
	"os"
	"time"

	"github.com/danswartzendruber/avl"
	"github.com/danswartzendruber/liner"
)

//
// Constants
//

const VERSION = "1.0.3"

const basFileSuffix = ".bas"

const myPrompt = "> "

const zoneWidth = 10

const minWindowCols = 40

// Line numbers 0..65279 are valid branch targets.  65280 and up are
// reserved; the scratch line used for immediate mode lives just past
// the valid range so it can never be a GOTO target

const maxLineNo = 65279
const scratchLineNo = maxLineNo + 1

const maxSrcLineLen = 251

const ctlStackMax = 256
const maxWhenClauses = 256
const maxTracebackDepth = 10

// BASIC truth values are all-ones and all-zeroes 32 bit integers

const boolInt32False int32 = 0
const boolInt32True int32 = -1

//
// Byte-code token values.  A tokenized line is
//
//	tokLine hi lo len <statements> tokEOL
//
// where len is the full record length including the header and the
// tokEOL, and statements on one line are separated by tokColon.  The
// program ends with a single tokEOF byte
//

const (
	tokEOF   byte = 0x00
	tokLine  byte = 0x01
	tokColon byte = 0x02
	tokEOL   byte = 0x0D
)

//
// Statement opcodes.  Operand layouts are described next to each
// dispatcher handler; u16 operands are big-endian, matching the line
// number bytes in the line header
//

const (
	tokLet byte = 0x80 + iota
	tokPrint
	tokIf
	tokThen
	tokElse
	tokEndif
	tokFor
	tokNext
	tokWhile
	tokEndwhile
	tokRepeat
	tokUntil
	tokCase
	tokWhen
	tokOtherwise
	tokEndcase
	tokGoto
	tokGosub
	tokReturn
	tokOn
	tokDefProc
	tokDefFn
	tokProc
	tokEndproc
	tokFnReturn
	tokLocal
	tokLocalError
	tokRestoreError
	tokLocalData
	tokRestoreData
	tokOnError
	tokData
	tokRead
	tokInput
	tokRestore
	tokDim
	tokEnd
	tokStop
	tokError
	tokReport
	tokRem
	tokTrace
	tokLastOpcode // sentinel, must be last
)

// ON dispatch kinds (operand byte of tokOn)

const (
	onKindGoto = iota
	onKindGosub
	onKindProc
)

// ON ERROR modes (operand byte of tokOnError)

const (
	onErrorOff = iota
	onErrorOrdinary
	onErrorLocal
)

// The u16 value meaning "operand absent"

const noOperand = 0xFFFF

//
// Expression operators.  These appear as plain Go 'int' values in an
// RPN token list, which keeps them distinct from int32 literals
//

const (
	PLUS = 1000 + iota
	MINUS
	STAR
	SLASH
	MODOP
	DIVOP
	POW
	UNEG
	EQ
	NE
	LT
	GT
	LE
	GE
	ANDOP
	OROP
	EOROP
	NOTOP
	ABSF
	INTF
	SGNF
	SQRF
	LENF
	CHRSF
	STRSF
	VALF
	ASCF
	LEFTSF
	RIGHTSF
	MIDSF
	RNDF
	PIF
	TRUEF
	FALSEF
	ERRF
	ERLF
	SINF
	COSF
	TANF
	LNF
	EXPF
	SUBSCR1
	SUBSCR2
)

//
// Type definitions
//

// Variable reference tokens in an RPN list.  The wrapped string is the
// variable name including its type suffix ('%' integer, '$' string)

type fvarToken string

type ivarToken string

type svarToken string

// A user function call site inside an expression

type fnCallToken struct {
	name string
	args []int // expression pool indices
}

type tokenList []any

type rpnStack struct {
	entries []any
}

// A position in the byte-coded program.  The line number rides along
// purely for diagnostics; off is the authoritative address

type position struct {
	off  int
	line int
}

//
// The tokenized program: byte-coded lines plus the pools the byte
// stream indexes into.  The index AVL tree maps a line number to the
// lineNode carrying both the source text and the tokenized offset
//

type program struct {
	code  []byte
	exprs []tokenList
	names []string

	// lazily populated caches keyed by program offset; dropped
	// wholesale whenever the program is retokenized

	branchCache map[int]position
	ifCache     map[int]*ifRecord
	caseCache   map[int]*caseTable
	skipCache   map[int]position
}

type lineNode struct {
	avl    avl.AvlNode
	lineNo int
	text   string
	off    int // offset of the tokLine header, -1 until tokenized
}

// Cached outcome of the one-time IF scan: which syntactic form the
// statement has, and where its two arms start

type ifRecord struct {
	blockForm bool
	thenAddr  position
	elseAddr  position
}

type caseEntry struct {
	guard  int // expression pool index
	target position
}

type caseTable struct {
	entries    []caseEntry
	defaultPos position
}

//
// Control-flow frames: one tagged struct per active construct, held in
// a growable slice acting as the stack
//

type frameKind int

const (
	frameFor frameKind = 1 + iota
	frameWhile
	frameRepeat
	frameGosub
	frameProc
	frameFn
	frameError
	frameData
)

type savedVar struct {
	sym *symtabNode
	val symValue
}

type ctlFrame struct {
	kind frameKind

	// frameFor
	sym     *symtabNode
	body    position
	limit   any
	step    any
	simple  bool // int32 loop with STEP exactly +1
	started bool

	// frameWhile: stmt is the WHILE token itself, guard its expression

	stmt  position
	guard int

	// frameGosub/frameProc/frameFn

	ret     position
	name    string
	nparams int
	shadows []savedVar

	// frameError

	saved *errHandler

	// frameData

	dataIndex int
}

//
// The installed error-handler descriptor.  prev is the descriptor that
// was current when a local handler was installed; invoking the local
// handler restores it
//

type errHandler struct {
	addr  position
	depth int
	local bool
	prev  *errHandler
}

//
// A classified fault in flight.  Carried inside the panic value from
// the raise site to whoever recovers it
//

type faultInfo struct {
	no   int // catalog index
	code int // externally visible error code
	sev  severity
	msg  string
	line int // -1 when not executing a program
}

type runtimeFault struct {
	fi *faultInfo
}

// Interpreter bugs, as opposed to user program faults

type internalErrorInfo struct {
	msg  string
	file string
	line int
}

// Quiet unwind back to the command prompt (STOP, END of immediate mode)

type crawloutException struct {
	continuable bool
}

type dataItem struct {
	line int
	text string
}

//
// Symbol table
//

type symtabNode struct {
	name  string
	vType int // one of FVAR/IVAR/SVAR
	dims  []int32
	value symValue
}

type symValue struct {
	f [][]float64
	i [][]int32
	s [][]string
}

const (
	FVAR = iota + 1
	IVAR
	SVAR
)

type lhsRetVal struct {
	sym  *symtabNode
	subs []int32
}

type window struct {
	rows int
	cols int
}

//
// Global variables
//

//
// Non-persistent per-run state
//

type run struct {
	pc        position
	stack     []ctlFrame
	handler   *errHandler
	dataIndex int
	lastFault *faultInfo
	resumePc  position

	// user-function result relay between the dispatch loop and the
	// expression evaluator

	fnVal  any
	fnDone bool

	traceLine int
}

var r run

//
// Persistent state
//

var g struct {
	src         *avl.AvlNode // lineNode tree ordered by line number
	prog        *program
	procMap     map[string]position
	fnMap       map[string]position
	dataItems   []dataItem
	symtabMap   [2]map[string]*symtabNode
	out         io.Writer
	parserLiner *liner.State
	inputLiner  *liner.State
	programName string
	window      window
	numZones    int
	loginTime   time.Time
	lookupCount int // line index lookups, observable by tests
	caseBuilds  int // CASE tables built, observable by tests
	dirty       bool // source edited since last tokenize
	modified    bool // source edited since last save
	escape      bool // set by the signal goroutine
	running     bool
	exiting     bool
	traceExec   bool
	traceStack  bool
	traceDump   bool
	printStats  bool
}

//
// Print zone state
//

var p struct {
	cursorPos  int
	outputZone int
}

//
// Runtime statistics for the executing program
//

var s struct {
	elapsed       time.Time
	utime         int64
	stime         int64
	numStatements int64
}

func initInterpreter() {

	// an empty AVL tree is a nil root

	g.src = nil
	g.prog = nil
	g.procMap = nil
	g.fnMap = nil
	g.dataItems = nil
	g.dirty = true
	g.lookupCount = 0
	g.caseBuilds = 0

	if g.out == nil {
		g.out = os.Stdout
	}

	initSymbolTable()

	initializeRun()
}

//
// Reset everything a fresh (or crashed) program must not inherit.
// The fault path calls this after an unrecoverable fault, so stale
// frames can never leak into the next run
//

func initializeRun() {

	r = run{}
	r.pc = position{off: -1, line: -1}
	r.resumePc = position{off: -1, line: -1}
}
