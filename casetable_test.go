package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCaseDispatchNumeric(t *testing.T) {

	out := runSource(t,
		"10 X% = 2",
		"20 CASE X% OF",
		"30 WHEN 1: PRINT \"one\"",
		"40 WHEN 2, 3: PRINT \"few\"",
		"50 OTHERWISE",
		"60 PRINT \"many\"",
		"70 ENDCASE",
		"80 END")

	assert.Equal(t, "few\n", out)
}

func TestCaseNumericPromotion(t *testing.T) {

	// float subject must match an integer guard of equal value

	out := runSource(t,
		"10 X = 1",
		"20 CASE X OF",
		"30 WHEN 1: PRINT \"one\"",
		"40 ENDCASE",
		"50 END")

	assert.Equal(t, "one\n", out)
}

func TestCaseEmptyStringGuard(t *testing.T) {

	program := []string{
		"20 CASE A$ OF",
		"30 WHEN \"\": PRINT \"empty\"",
		"40 OTHERWISE",
		"50 PRINT \"nonempty\"",
		"60 ENDCASE",
		"70 END",
	}

	out := runSource(t, append([]string{"10 A$ = \"\""}, program...)...)
	assert.Equal(t, "empty\n", out)

	out = runSource(t, append([]string{"10 A$ = \"x\""}, program...)...)
	assert.Equal(t, "nonempty\n", out)
}

func TestCaseFallsPastEndcaseWithoutOtherwise(t *testing.T) {

	out := runSource(t,
		"10 X% = 9",
		"20 CASE X% OF",
		"30 WHEN 1: PRINT \"one\"",
		"40 ENDCASE",
		"50 PRINT \"after\"",
		"60 END")

	assert.Equal(t, "after\n", out)
}

func TestCaseTypeMismatchFaults(t *testing.T) {

	out := runSource(t,
		"10 X% = 1",
		"20 CASE X% OF",
		"30 WHEN \"one\": PRINT \"bad\"",
		"40 ENDCASE",
		"50 END")

	assert.Contains(t, out, "Type mismatch at line 20")
}

func TestCaseTableBuiltOnce(t *testing.T) {

	setupTestRun(t,
		"10 FOR I% = 1 TO 5",
		"20 CASE I% OF",
		"30 WHEN 2: PRINT \"two\"",
		"40 WHEN 4: PRINT \"four\"",
		"50 ENDCASE",
		"60 NEXT",
		"70 END")

	startRun(t)

	assert.Equal(t, 1, g.caseBuilds)
}

func TestNestedCase(t *testing.T) {

	out := runSource(t,
		"10 X% = 1",
		"20 Y% = 2",
		"30 CASE X% OF",
		"40 WHEN 1",
		"50 CASE Y% OF",
		"60 WHEN 2: PRINT \"inner\"",
		"70 ENDCASE",
		"80 PRINT \"outer\"",
		"90 ENDCASE",
		"100 END")

	assert.Equal(t, "inner\nouter\n", out)
}
