package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
	"unicode"

	"github.com/danswartzendruber/liner"
	"golang.org/x/term"
)

func main() {

	initInterpreter()

	g.loginTime = time.Now()

	checkTerminal()
	setupLiners()
	defer cleanupLiners()

	go sigHdlr()

	printVersionInfo()

	switch len(os.Args) {
	default:
		crash("Usage: bbcbasic [program]")

	case 1:
		// nothing to do

	case 2:
		call(func() {
			cmdLoad(os.Args[1])
		})
	}

	for !g.exiting {
		text, err := readLine(myPrompt)
		if err != nil {
			break
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		g.parserLiner.AppendHistory(text)

		call(func() {
			processCommandLine(text)
		})
	}
}

//
// One command-loop line: a numbered line edits the program, anything
// else is either a command or an immediate statement
//

func processCommandLine(text string) {

	if unicode.IsDigit(rune(text[0])) {
		lineNo, rest, ok := parseNumberedLine(text)
		if !ok {
			myPrintln("Bad line number")
			return
		}

		setSourceLine(lineNo, rest)
		return
	}

	word, arg := splitCommand(text)

	switch strings.ToUpper(word) {
	default:
		executeImmediate(text)

	case "RUN":
		cmdRun(arg)

	case "LIST":
		cmdList()

	case "NEW":
		clearProgram()

	case "LOAD":
		cmdLoad(arg)

	case "SAVE":
		cmdSave(arg)

	case "CHAIN":
		cmdChain(arg)

	case "CONT":
		cmdCont()

	case "HELP":
		cmdHelp()

	case "BYE", "QUIT", "EXIT":
		g.exiting = true
	}
}

func splitCommand(text string) (string, string) {

	word := text
	arg := ""

	if sp := strings.IndexByte(text, ' '); sp >= 0 {
		word = text[:sp]
		arg = strings.TrimSpace(text[sp+1:])
	}

	return word, arg
}

func parseNumberedLine(text string) (int, string, bool) {

	i := 0
	for i < len(text) && unicode.IsDigit(rune(text[i])) {
		i++
	}

	lineNo, err := strconv.Atoi(text[:i])
	if err != nil || lineNo > maxLineNo {
		return 0, "", false
	}

	return lineNo, strings.TrimSpace(text[i:]), true
}

func ensureTokenized() bool {

	if g.dirty || g.prog == nil {
		return retokenize()
	}

	return true
}

//
// RUN [line].  Variables and run state are cleared; an argument picks
// the starting line through the branch index
//

func cmdRun(arg string) {

	if !ensureTokenized() {
		return
	}

	initSymbolTable()
	initializeRun()

	var start position

	if arg != "" {
		lineNo, err := strconv.Atoi(arg)
		if err != nil {
			myPrintln("Bad line number")
			return
		}

		start = lookupLine(lineNo)
	} else {
		first := srcFirstInOrder()
		if first == nil {
			return
		}

		start = firstStmtOf(g.prog.code, first.off)
	}

	executeProgram(start)
}

func cmdList() {

	count := 0

	for ln := srcFirstInOrder(); ln != nil; ln = srcNextInOrder(ln) {
		myPrintf("%5d %s\n", ln.lineNo, ln.text)
		count++
	}

	raiseError(errListNote, count)
}

func cmdLoad(arg string) {

	if arg == "" {
		myPrintln("Load what?")
		return
	}

	name := arg
	if !strings.HasSuffix(name, basFileSuffix) {
		name += basFileSuffix
	}

	buf, err := os.ReadFile(name)
	if err != nil {
		myPrintln(err.Error())
		return
	}

	clearProgram()

	text := strings.ReplaceAll(string(buf), "\r", "")

	for _, src := range strings.Split(text, "\n") {
		src = strings.TrimSpace(src)
		if src == "" {
			continue
		}

		lineNo, rest, ok := parseNumberedLine(src)
		if !ok || rest == "" {
			myPrintf("Skipping malformed line %q\n", src)
			continue
		}

		setSourceLine(lineNo, rest)
	}

	g.programName = strings.TrimSuffix(arg, basFileSuffix)
	g.modified = false
}

func cmdSave(arg string) {

	name := arg
	if name == "" {
		name = g.programName
	}

	if name == "" {
		myPrintln("Save as what?")
		return
	}

	if !strings.HasSuffix(name, basFileSuffix) {
		name += basFileSuffix
	}

	var sb strings.Builder

	for ln := srcFirstInOrder(); ln != nil; ln = srcNextInOrder(ln) {
		fmt.Fprintf(&sb, "%d %s\n", ln.lineNo, ln.text)
	}

	if err := os.WriteFile(name, []byte(sb.String()), 0644); err != nil {
		myPrintln(err.Error())
		return
	}

	g.programName = strings.TrimSuffix(name, basFileSuffix)
	g.modified = false
}

func cmdChain(arg string) {

	cmdLoad(arg)

	if srcFirstInOrder() != nil {
		cmdRun("")
	}
}

func cmdCont() {

	if r.resumePc.off < 0 || g.dirty {
		myPrintln("Can't continue")
		return
	}

	g.running = true
	r.pc = r.resumePc
	r.resumePc = position{off: -1, line: -1}

	executeRunInternal()

	g.running = false
}

func cmdHelp() {

	myPrintln("Commands: RUN [line], LIST, NEW, LOAD name, SAVE [name],")
	myPrintln("          CHAIN name, CONT, HELP, BYE")
	myPrintln("Anything else is executed immediately")
}

//
// Immediate mode: the text becomes a scratch line just past the valid
// line-number range, the program is retokenized with it in place, and
// execution starts there.  The scratch line sorts after every real
// line, so real-line offsets are identical with and without it and the
// saved run state stays valid
//

func executeImmediate(text string) {

	saved := r

	setSourceLine(scratchLineNo, text)

	if !retokenize() {
		setSourceLine(scratchLineNo, "")
		r = saved
		return
	}

	ln := srcLookup(scratchLineNo)

	r = saved
	r.pc = firstStmtOf(g.prog.code, ln.off)

	g.running = true

	defer func() {
		g.running = false
		setSourceLine(scratchLineNo, "")
		r = saved
	}()

	executeRunInternal()
}

//
// Terminal plumbing
//

func checkTerminal() {

	setupWindow()
}

func setupWindow() {

	cols, rows := 80, 24

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
			cols, rows = w, h
		}
	}

	if cols < minWindowCols {
		cols = minWindowCols
	}

	g.window = window{rows: rows, cols: cols}
	g.numZones = cols / zoneWidth
}

func setupLiners() {

	g.parserLiner = setupLiner(false)
	g.inputLiner = setupLiner(true)
}

func setupLiner(multiLine bool) *liner.State {

	l := liner.NewLiner()
	l.SetMultiLineMode(multiLine)

	return l
}

//
// Close in reverse creation order so the terminal lands back in
// cooked mode
//

func cleanupLiners() {

	cleanupLiner(&g.inputLiner)
	cleanupLiner(&g.parserLiner)
}

func cleanupLiner(linerState **liner.State) {

	if *linerState != nil {
		(*linerState).Close()
		*linerState = nil
	}
}

func readLine(prompt string) (string, error) {

	text, err := g.parserLiner.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", nil
	}

	return text, err
}

//
// The signal goroutine.  Interrupt posts the escape flag for the
// dispatch loop to notice at the next statement boundary; a window
// size change refreshes the zone layout
//

func sigHdlr() {

	sigChan := make(chan os.Signal, 8)

	signal.Notify(sigChan, os.Interrupt, syscall.SIGWINCH)

	for sig := range sigChan {
		switch sig {
		case os.Interrupt:
			g.escape = true

		case syscall.SIGWINCH:
			setupWindow()
		}
	}
}

//
// Last-resort exit: restore the terminal before dying so the shell is
// usable afterward
//

func crash(msg string) {

	cleanupLiners()

	fmt.Fprintln(os.Stderr, msg)

	os.Exit(1)
}

func printVersionInfo() {

	myPrintf("BBC BASIC interpreter version %s\n", VERSION)
	myPrintf("Session started %s\n", g.loginTime.Format("Mon Jan 2 15:04:05 2006"))
}
