package main

//
// CASE dispatch.  The first execution of a CASE statement scans its
// whole construct once, building a flat guard table; the scan result
// is cached against the statement's offset and reused on every later
// execution, so a CASE in a loop pays for structure discovery exactly
// once per tokenized program
//

func buildCaseTable(off, line int) *caseTable {

	if t, ok := g.prog.caseCache[off]; ok {
		return t
	}

	code := g.prog.code
	t := &caseTable{defaultPos: position{off: -1, line: -1}}

	depth := 0
	haveOtherwise := false
	o, l := off, line

	for {
		o, l = nextBlockStmt(code, o, l)
		runtimeCheck(o >= 0, errMissingEndcase)

		switch code[o] {
		case tokCase:
			depth++

		case tokEndcase:
			if depth > 0 {
				depth--
				continue
			}

			//
			// Without an OTHERWISE the non-matching subject falls
			// through to the statement after the construct
			//

			if !haveOtherwise {
				t.defaultPos = advanceFrom(o+1, l)
			}

			g.caseBuilds++
			g.prog.caseCache[off] = t

			return t

		case tokWhen:
			if depth > 0 {
				continue
			}

			n := int(code[o+1])

			runtimeCheck(len(t.entries)+n <= maxWhenClauses, errTooManyWhens)

			target := advanceFrom(o+2+2*n, l)

			for j := 0; j < n; j++ {
				t.entries = append(t.entries, caseEntry{
					guard:  readU16(code, o+2+2*j),
					target: target,
				})
			}

		case tokOtherwise:
			if depth == 0 && !haveOtherwise {
				haveOtherwise = true
				t.defaultPos = advanceFrom(o+1, l)
			}
		}
	}
}

//
// Evaluate the subject, then try each guard in declaration order.
// Guards are evaluated lazily: a match stops the walk, so guards after
// the winning one never run
//

func dispatchCase(off, line int) position {

	t := buildCaseTable(off, line)

	subject := evalExpr(readU16(g.prog.code, off+1))

	for i := range t.entries {
		if caseMatches(subject, evalExpr(t.entries[i].guard)) {
			return t.entries[i].target
		}
	}

	return t.defaultPos
}

//
// Subject/guard agreement: numbers match numbers under the usual
// promotion, strings match strings exactly.  A kind mismatch is a
// fault, not a non-match
//

func caseMatches(subject, guard any) bool {

	_, sIsStr := subject.(string)
	_, gIsStr := guard.(string)

	if sIsStr != gIsStr {
		raiseError(errTypeMismatch)
	}

	if sIsStr {
		return subject.(string) == guard.(string)
	}

	return toFloat(subject) == toFloat(guard)
}
