package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tklauser/go-sysconf"
)

//
// Per-run statistics, reported when TRACE STATS is in force.  CPU time
// comes from /proc/self/stat in clock ticks; the tick rate is whatever
// the platform says it is
//

func initClock() {

	s.elapsed = time.Now()
	s.utime, s.stime = cpuTicks()
	s.numStatements = 0
}

func printStatistics() {

	elapsed := time.Since(s.elapsed)
	utime, stime := cpuTicks()

	clkTck, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || clkTck <= 0 {
		clkTck = 100
	}

	cpuSecs := float64(utime-s.utime+stime-s.stime) / float64(clkTck)

	myPrintf("%d statements in %.3fs elapsed, %.3fs cpu",
		s.numStatements, elapsed.Seconds(), cpuSecs)

	if secs := elapsed.Seconds(); secs > 0 {
		myPrintf(" (%.0f statements/sec)", float64(s.numStatements)/secs)
	}

	writeOut("\n")
}

//
// Read utime and stime for this process, in ticks.  The command name
// field can contain anything, so fields are counted from the last ')'
//

func cpuTicks() (int64, int64) {

	buf, err := os.ReadFile("/proc/self/stat")
	if err != nil {
		return 0, 0
	}

	text := string(buf)

	paren := strings.LastIndexByte(text, ')')
	if paren < 0 {
		return 0, 0
	}

	fields := strings.Fields(text[paren+1:])

	// utime and stime are the 12th and 13th fields after the comm

	if len(fields) < 13 {
		return 0, 0
	}

	utime, _ := strconv.ParseInt(fields[11], 10, 64)
	stime, _ := strconv.ParseInt(fields[12], 10, 64)

	return utime, stime
}
