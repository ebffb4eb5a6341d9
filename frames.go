package main

//
// The control-flow stack: tagged frames in a growable slice.  Frames
// are pushed by FOR/WHILE/REPEAT/GOSUB/PROC/FN and by the LOCAL ERROR
// and LOCAL DATA save statements, and only ever popped from the top.
// A construct's terminator discards unrelated frames above its own by
// scanning downward; not finding the expected frame at all is a user
// error, never an engine fault
//

func pushFrame(f ctlFrame) {

	if len(r.stack) >= ctlStackMax {
		raiseError(errStackFull)
	}

	r.stack = append(r.stack, f)
}

func popFrame() ctlFrame {

	basicAssert(len(r.stack) > 0, "Control stack underflow")

	f := r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]

	return f
}

func topFrame() *ctlFrame {

	if len(r.stack) == 0 {
		return nil
	}

	return &r.stack[len(r.stack)-1]
}

//
// Search downward for a frame of the wanted kind, discarding every
// frame above it.  Discarded call frames get their shadowed values
// restored and discarded save frames are unwound, so the store is
// never left in a half-shadowed state.  Returns nil if no frame of
// that kind exists
//

func unwindToFrame(kind frameKind) *ctlFrame {

	for i := len(r.stack) - 1; i >= 0; i-- {
		if r.stack[i].kind == kind {
			for len(r.stack)-1 > i {
				discardFrame(popFrame())
			}

			return &r.stack[i]
		}
	}

	return nil
}

//
// Like unwindToFrame but stops at call-frame boundaries: a RETURN must
// not unwind out of the PROC that contains it, and a NEXT must not eat
// its enclosing GOSUB frame
//

func unwindToFrameLocal(kind frameKind) *ctlFrame {

	for i := len(r.stack) - 1; i >= 0; i-- {
		k := r.stack[i].kind

		if k == kind {
			for len(r.stack)-1 > i {
				discardFrame(popFrame())
			}

			return &r.stack[i]
		}

		if k == frameProc || k == frameFn || k == frameGosub {
			return nil
		}
	}

	return nil
}

//
// Releasing a frame without executing its construct's normal exit
// path.  Save frames are restored (their whole point is surviving an
// abnormal exit); loop frames have nothing to release
//

func discardFrame(f ctlFrame) {

	switch f.kind {
	default:
		// loop frames carry no external state

	case frameProc, frameFn, frameGosub:
		restoreShadows(f.shadows)

	case frameError:
		r.handler = f.saved

	case frameData:
		r.dataIndex = f.dataIndex
	}
}

//
// Remove the nearest frame of the wanted kind without disturbing the
// frames above it.  RESTORE ERROR and RESTORE DATA must not tear down
// loops entered after the matching save.  Stops at call boundaries;
// returns nil when no frame qualifies
//

func liftFrame(kind frameKind) *ctlFrame {

	for i := len(r.stack) - 1; i >= 0; i-- {
		k := r.stack[i].kind

		if k == kind {
			f := r.stack[i]
			r.stack = append(r.stack[:i], r.stack[i+1:]...)

			return &f
		}

		if k == frameProc || k == frameFn || k == frameGosub {
			return nil
		}
	}

	return nil
}

//
// Discard frames until only depth remain.  Used by the error engine
// when transferring to a handler
//

func trimFrames(depth int) {

	for len(r.stack) > depth {
		discardFrame(popFrame())
	}
}

//
// An ordinary error handler clears the subroutine-call and GOSUB
// frame sets entirely; loop and save frames below the install depth
// survive.  Shadows are restored newest frame first, so a variable
// shadowed in more than one call frame ends up with its outermost
// value, matching the in-frame reversal in restoreShadows
//

func clearCallFrames() {

	for i := len(r.stack) - 1; i >= 0; i-- {
		f := &r.stack[i]

		switch f.kind {
		case frameGosub, frameProc, frameFn:
			restoreShadows(f.shadows)
			f.shadows = nil
		}
	}

	kept := r.stack[:0]

	for _, f := range r.stack {
		switch f.kind {
		default:
			kept = append(kept, f)

		case frameGosub, frameProc, frameFn:
		}
	}

	r.stack = kept
}

//
// Forcibly empty the stack.  Used on unrecoverable faults and on
// program load/clear
//

func clearFrames() {

	trimFrames(0)
}

func frameDepth() int {

	return len(r.stack)
}
