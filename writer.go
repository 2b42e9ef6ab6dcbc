package ebml

// writeFrame is the write-side counterpart of frame, accumulating a
// master's child bytes in memory so its header's length VINT can be
// emitted with a minimal width once the payload size is known — the
// "buffer then prepend" strategy from §9's writer width planning note.
// A master opened with explicit unknown length instead writes its
// header immediately; its child bytes are still collected in buf and
// passed to its parent at ExitMaster, with no length computed for it.
type writeFrame struct {
	def            *Def
	buf            []byte
	unknownStream  bool
	requestedWidth int
	occurrences    map[uint32]uint32
	crc32Seen      bool
	anyChildSeen   bool
}

// Writer is the mirror of Cursor: it accepts the same event sequence
// (EnterMaster/Scalar/ExitMaster) and produces the corresponding byte
// stream (§4.5 "Write side").
type Writer struct {
	schema         Schema
	out            ByteWriter
	stack          []*writeFrame
	docTypeVersion uint64
}

// NewWriter creates a writer over out, driven by schema.
func NewWriter(schema Schema, out ByteWriter, docTypeVersion uint64) *Writer {
	root := &writeFrame{occurrences: make(map[uint32]uint32)}
	return &Writer{schema: schema, out: out, stack: []*writeFrame{root}, docTypeVersion: docTypeVersion}
}

func childrenForSchema(s Schema, def *Def) []ChildRef {
	if def == nil {
		return s.RootChildren()
	}
	return s.ChildrenOf(def)
}

func (w *Writer) resolveChild(parent *writeFrame, id uint32) (*Def, ChildRef, bool) {
	if g, ok := globalDef(id); ok {
		return g, childRefFromDef(g), true
	}
	for _, ch := range childrenForSchema(w.schema, parent.def) {
		if ch.Def.ID == id {
			return ch.Def, ch, true
		}
	}
	return nil, ChildRef{}, false
}

func (w *Writer) checkVersion(def *Def) error {
	if def.MinVersion > 0 && w.docTypeVersion > 0 && w.docTypeVersion < def.MinVersion {
		return newErr(KindConstraintViolation, "element requires a newer docTypeVersion")
	}
	if def.MaxVersion > 0 && w.docTypeVersion > def.MaxVersion {
		return newErr(KindConstraintViolation, "element forbidden at this docTypeVersion")
	}
	return nil
}

// sinkWrite appends b to whatever is currently receiving bytes: the
// buffer of the active (top-of-stack) frame, or the underlying
// ByteWriter when the active frame is the synthetic root.
func (w *Writer) sinkWrite(b []byte) error {
	top := w.stack[len(w.stack)-1]
	if top.def == nil {
		dst, err := w.out.Reserve(len(b))
		if err != nil {
			return err
		}
		copy(dst, b)
		w.out.Commit(len(b))
		return nil
	}
	top.buf = append(top.buf, b...)
	return nil
}

func markSeen(f *writeFrame, id uint32) error {
	if id == CRC32ID {
		if f.anyChildSeen {
			return newErr(KindStructuralViolation, "crc32 must be the first child of its master")
		}
		f.crc32Seen = true
		return nil
	}
	if id != VoidID {
		f.anyChildSeen = true
	}
	return nil
}

// EnterMaster opens a new master element under the currently active
// frame. unknown requests the reserved "unknown length" sentinel;
// ref.UnknownSizeAllowed must permit it.
func (w *Writer) EnterMaster(def *Def, unknown bool) error {
	top := w.stack[len(w.stack)-1]
	d, ref, ok := w.resolveChild(top, def.ID)
	if !ok {
		return newErr(KindStructuralViolation, "element not legal here")
	}
	if err := w.checkVersion(d); err != nil {
		return err
	}
	if err := markSeen(top, d.ID); err != nil {
		return err
	}
	if unknown {
		if !ref.UnknownSizeAllowed {
			return newErr(KindStructuralViolation, "unknown length forbidden for this master")
		}
		hdr, err := WriteHeader(d.ID, UnknownLength)
		if err != nil {
			return err
		}
		if err := w.sinkWrite(hdr); err != nil {
			return err
		}
	}
	if d.ID != VoidID && d.ID != CRC32ID {
		top.occurrences[d.ID]++
	}
	w.stack = append(w.stack, &writeFrame{def: d, unknownStream: unknown, occurrences: make(map[uint32]uint32)})
	return nil
}

// ExitMaster closes the active master, computing and emitting its
// header (for buffered, known-length masters) before flushing its
// accumulated bytes into the parent.
func (w *Writer) ExitMaster() error {
	top := w.stack[len(w.stack)-1]
	if top.def == nil {
		return newErr(KindStructuralViolation, "cannot exit the root frame")
	}
	if err := checkOccurrenceCounts(top.occurrences, childrenForSchema(w.schema, top.def)); err != nil {
		return err
	}
	w.stack = w.stack[:len(w.stack)-1]
	if top.unknownStream {
		return w.sinkWrite(top.buf)
	}
	hdr, err := WriteHeader(top.def.ID, KnownLength(uint64(len(top.buf))))
	if err != nil {
		return err
	}
	if err := w.sinkWrite(hdr); err != nil {
		return err
	}
	return w.sinkWrite(top.buf)
}

// Scalar writes a single typed scalar element under the active frame.
func (w *Writer) Scalar(def *Def, value Value) error {
	top := w.stack[len(w.stack)-1]
	d, _, ok := w.resolveChild(top, def.ID)
	if !ok {
		return newErr(KindStructuralViolation, "element not legal here")
	}
	if err := w.checkVersion(d); err != nil {
		return err
	}
	if err := markSeen(top, d.ID); err != nil {
		return err
	}
	payload, err := encodeScalarPayload(d, value)
	if err != nil {
		return err
	}
	if d.ValueRange.Kind != RangeUnbounded {
		if !valueInRange(d, value) {
			return newErr(KindConstraintViolation, "scalar value outside declared range")
		}
	}
	if err := checkLength(d, uint64(len(payload))); err != nil {
		return err
	}
	hdr, err := WriteHeader(d.ID, KnownLength(uint64(len(payload))))
	if err != nil {
		return err
	}
	if err := w.sinkWrite(hdr); err != nil {
		return err
	}
	if err := w.sinkWrite(payload); err != nil {
		return err
	}
	if d.ID != VoidID && d.ID != CRC32ID {
		top.occurrences[d.ID]++
	}
	return nil
}

// Finish validates the root frame's occurrence bounds and reports an
// error if any master was left open.
func (w *Writer) Finish() error {
	if len(w.stack) != 1 {
		return newErr(KindStructuralViolation, "writer finished with unclosed master elements")
	}
	root := w.stack[0]
	return checkOccurrenceCounts(root.occurrences, w.schema.RootChildren())
}

func valueInRange(def *Def, v Value) bool {
	switch def.Kind {
	case KindUint:
		return def.ValueRange.Contains(v.UInt)
	case KindInt:
		return def.ValueRange.Contains(uint64(v.Int))
	default:
		return true
	}
}

// encodeScalarPayload produces the payload bytes for value according
// to def.Kind, choosing the minimal byte width for integer kinds and
// an explicit declared width (from def.LengthRange, when exact) for
// fixed-size kinds.
func encodeScalarPayload(def *Def, value Value) ([]byte, error) {
	switch def.Kind {
	case KindUint:
		return EmitUint(value.UInt, minUintWidth(value.UInt)), nil
	case KindInt:
		return EmitInt(value.Int, minIntWidth(value.Int)), nil
	case KindFloat:
		if def.LengthRange.Kind == RangeIsExactly && def.LengthRange.Exact == 4 {
			return EmitFloat32(float32(value.Float)), nil
		}
		return EmitFloat64(value.Float), nil
	case KindDate:
		return EmitDate(value.Date), nil
	case KindASCII:
		buf := make([]byte, len(value.String))
		if err := EmitASCII(buf, value.String); err != nil {
			return nil, err
		}
		return buf, nil
	case KindUTF8:
		buf := make([]byte, len(value.String))
		if err := EmitUTF8(buf, value.String); err != nil {
			return nil, err
		}
		return buf, nil
	case KindBinary:
		out := make([]byte, len(value.Binary))
		copy(out, value.Binary)
		return out, nil
	default:
		return nil, newErr(KindInternal, "unknown scalar kind")
	}
}

func minUintWidth(v uint64) int {
	w := naturalByteWidth(v)
	return w
}

func minIntWidth(v int64) int {
	if v >= 0 {
		// The top bit of the leading byte must stay clear so the value
		// does not read back as negative.
		for w := 1; w < 8; w++ {
			if v <= (int64(1)<<uint(w*8-1))-1 {
				return w
			}
		}
		return 8
	}
	// Two's complement: find the smallest byte width whose sign bit
	// correctly represents a negative value.
	for w := 1; w <= 8; w++ {
		if w == 8 {
			return 8
		}
		min := int64(-1) << uint(w*8-1)
		if v >= min {
			return w
		}
	}
	return 8
}

func naturalByteWidth(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 8
	}
	if n == 0 {
		n = 1
	}
	return n
}
