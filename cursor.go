package ebml

import "github.com/rs/zerolog"

// EventKind tags the four observable cursor events (§4.5).
type EventKind int

const (
	EventEnterMaster EventKind = iota
	EventScalar
	EventExitMaster
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventEnterMaster:
		return "EnterMaster"
	case EventScalar:
		return "Scalar"
	case EventExitMaster:
		return "ExitMaster"
	case EventEnd:
		return "End"
	default:
		return "?"
	}
}

// Event is one item of the cursor's lazy event sequence.
type Event struct {
	Kind   EventKind
	Def    *Def
	Length Length // only meaningful for EnterMaster
	Value  Value  // only meaningful for Scalar
}

// Cursor is the schema-driven, streaming element state machine (§4.5).
// It owns a stack of open master frames and advances one event at a
// time via Next, never materializing the document tree.
type Cursor struct {
	schema         Schema
	r              ByteReader
	stack          []*frame
	pending        *Header
	docTypeVersion uint64
	ended          bool
	log            zerolog.Logger
}

// NewCursor creates a cursor over r, driven by schema, gating
// per-element version ranges against docTypeVersion (pass 1 if the
// schema does not use version gating).
func NewCursor(schema Schema, r ByteReader, docTypeVersion uint64) *Cursor {
	root := &frame{occurrences: make(map[uint32]uint32)}
	return &Cursor{
		schema:         schema,
		r:              r,
		stack:          []*frame{root},
		docTypeVersion: docTypeVersion,
		log:            zerolog.Nop(),
	}
}

// SetLogger attaches a zerolog.Logger the cursor uses for structural
// tracing (frame pushes/pops, unknown-size closures). Debug level only
// — this is never on the per-byte payload path.
func (c *Cursor) SetLogger(l zerolog.Logger) { c.log = l }

// Depth returns the number of currently open master frames, including
// the synthetic root.
func (c *Cursor) Depth() int { return len(c.stack) }

// CRC32 returns the raw 4-byte payload of the active master's CRC32
// child, if one has been seen since that master was entered. It never
// validates the checksum value itself (a declared Non-goal); callers
// that need the checksum verified must do so themselves.
func (c *Cursor) CRC32() ([]byte, bool) {
	active := c.stack[len(c.stack)-1]
	if active.crc32 == nil {
		return nil, false
	}
	return active.crc32, true
}

type atLeastFiller interface {
	FillAtLeast(n int) ([]byte, error)
}

func (c *Cursor) fillAtLeast(n int) ([]byte, error) {
	if al, ok := c.r.(atLeastFiller); ok {
		return al.FillAtLeast(n)
	}
	buf, err := c.r.Fill()
	if err != nil {
		return nil, err
	}
	if len(buf) < n {
		return buf, incomplete(n-len(buf), "need more buffered input")
	}
	return buf, nil
}

func (c *Cursor) readHeaderFromStream() (Header, error) {
	const maxHeaderWidth = 4 + 8
	buf, err := c.fillAtLeast(maxHeaderWidth)
	if err != nil {
		if _, ok := IsIncomplete(err); !ok {
			return Header{}, err
		}
		if len(buf) == 0 {
			return Header{}, err
		}
		// Fewer than maxHeaderWidth bytes remain buffered (likely
		// end of stream); try to parse a header from what we have.
		// ReadHeader itself reports Incomplete if that's genuinely
		// not enough for the VINTs present.
	}
	hdr, err := ReadHeader(buf)
	if err != nil {
		return Header{}, err
	}
	c.r.Consume(hdr.Width)
	return hdr, nil
}

func (c *Cursor) readPayload(l uint64) ([]byte, error) {
	buf, err := c.fillAtLeast(int(l))
	if err != nil {
		if _, ok := IsIncomplete(err); !ok {
			return nil, err
		}
	}
	if uint64(len(buf)) < l {
		return nil, incomplete(int(l)-len(buf), "element payload truncated")
	}
	data := buf[:l]
	c.r.Consume(int(l))
	return data, nil
}

// chargeAll decrements every currently open frame's byte budget by n,
// since all frames on the stack share the same underlying byte range
// (§3.3's bytes_left accounting, §9's parent-pointer-free stack note).
func (c *Cursor) chargeAll(n uint64) error {
	for _, f := range c.stack {
		if f.bytesLeft != nil && n > *f.bytesLeft {
			return newErr(KindStructuralViolation, "element extends past the end of an enclosing master")
		}
	}
	for _, f := range c.stack {
		if err := f.charge(n); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cursor) childrenFor(f *frame) []ChildRef {
	if f.def == nil {
		return c.schema.RootChildren()
	}
	return c.schema.ChildrenOf(f.def)
}

// resolveChild reports whether id names a legal child of f: one of
// f's schema children, or the always-legal Void/CRC32 globals.
func (c *Cursor) resolveChild(f *frame, id uint32) (*Def, ChildRef, bool) {
	if g, ok := globalDef(id); ok {
		return g, childRefFromDef(g), true
	}
	for _, ch := range c.childrenFor(f) {
		if ch.Def.ID == id {
			return ch.Def, ch, true
		}
	}
	return nil, ChildRef{}, false
}

func (c *Cursor) checkVersion(def *Def) error {
	if def.MinVersion > 0 && c.docTypeVersion > 0 && c.docTypeVersion < def.MinVersion {
		return newErr(KindConstraintViolation, "element requires a newer docTypeVersion")
	}
	if def.MaxVersion > 0 && c.docTypeVersion > def.MaxVersion {
		return newErr(KindConstraintViolation, "element forbidden at this docTypeVersion")
	}
	return nil
}

func checkLength(def *Def, l uint64) error {
	if def.LengthRange.Kind != RangeUnbounded {
		if !def.LengthRange.Contains(l) {
			return newErr(KindConstraintViolation, "length outside declared range")
		}
		return nil
	}
	switch def.Kind {
	case KindFloat:
		if l != 4 && l != 8 {
			return newErr(KindConstraintViolation, "float length must be 4 or 8 bytes")
		}
	case KindDate:
		if l != 8 && l != 0 {
			return newErr(KindConstraintViolation, "date length must be 8 bytes")
		}
	case KindUint, KindInt:
		if l > 8 {
			return newErr(KindConstraintViolation, "integer length must be at most 8 bytes")
		}
	}
	return nil
}

func decodeScalarValue(def *Def, data []byte) (Value, error) {
	switch def.Kind {
	case KindUint:
		v, err := ParseUint(data)
		if err != nil {
			return Value{}, err
		}
		if def.ValueRange.Kind != RangeUnbounded && !def.ValueRange.Contains(v) {
			return Value{}, newErr(KindConstraintViolation, "uint value outside declared range")
		}
		return Value{Kind: KindUint, UInt: v}, nil
	case KindInt:
		v, err := ParseInt(data)
		if err != nil {
			return Value{}, err
		}
		if def.ValueRange.Kind != RangeUnbounded && !def.ValueRange.Contains(uint64(v)) {
			return Value{}, newErr(KindConstraintViolation, "int value outside declared range")
		}
		return Value{Kind: KindInt, Int: v}, nil
	case KindFloat:
		v, err := ParseFloat(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindFloat, Float: v}, nil
	case KindDate:
		t, err := ParseDate(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindDate, Date: t}, nil
	case KindASCII:
		s, err := ParseASCII(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindASCII, String: s}, nil
	case KindUTF8:
		s, err := ParseUTF8(data)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindUTF8, String: s}, nil
	case KindBinary:
		return Value{Kind: KindBinary, Binary: data}, nil
	default:
		return Value{}, newErr(KindInternal, "unknown scalar kind")
	}
}

// Next advances the state machine by one event (§4.5, §6.4).
func (c *Cursor) Next() (Event, error) {
	if c.ended {
		return Event{Kind: EventEnd}, nil
	}

	active := c.stack[len(c.stack)-1]
	if active.exhausted() {
		return c.closeFrame(active)
	}

	if c.pending == nil && len(c.stack) == 1 {
		buf, err := c.r.Fill()
		if err != nil {
			return Event{}, err
		}
		if len(buf) == 0 {
			c.ended = true
			c.log.Debug().Msg("root exhausted, emitting End")
			return Event{Kind: EventEnd}, nil
		}
	}

	var hdr Header
	if c.pending != nil {
		hdr = *c.pending
		c.pending = nil
	} else {
		h, err := c.readHeaderFromStream()
		if err != nil {
			return Event{}, err
		}
		if err := c.chargeAll(uint64(h.Width)); err != nil {
			return Event{}, err
		}
		hdr = h
	}

	def, ref, legal := c.resolveChild(active, hdr.ID)
	if !legal {
		if active.bytesLeft == nil {
			for i := len(c.stack) - 2; i >= 0; i-- {
				if _, _, ok := c.resolveChild(c.stack[i], hdr.ID); ok {
					c.log.Debug().Uint32("id", hdr.ID).Int("closeDepth", len(c.stack)-1).Msg("unknown-size master closed by ancestor lookahead")
					c.pending = &hdr
					return c.closeFrame(active)
				}
			}
		}
		return Event{}, newErr(KindStructuralViolation, "unexpected child element id")
	}

	if err := c.checkVersion(def); err != nil {
		return Event{}, err
	}
	return c.enterOrScalar(active, hdr, def, ref)
}

func (c *Cursor) enterOrScalar(f *frame, hdr Header, def *Def, ref ChildRef) (Event, error) {
	if def.ID == CRC32ID {
		if f.anyChildSeen {
			return Event{}, newErr(KindStructuralViolation, "crc32 must be the first child of its master")
		}
		f.crc32Seen = true
	} else if def.ID != VoidID {
		f.anyChildSeen = true
	}

	if def.Kind == KindMaster {
		if !hdr.Length.Known && !ref.UnknownSizeAllowed {
			return Event{}, newErr(KindStructuralViolation, "unknown length forbidden for this master")
		}
		if def.ID != VoidID && def.ID != CRC32ID {
			f.recordOccurrence(def.ID)
		}
		child := newFrame(def, hdr.Length)
		c.stack = append(c.stack, child)
		c.log.Debug().Uint32("id", def.ID).Str("path", def.Path).Msg("EnterMaster")
		return Event{Kind: EventEnterMaster, Def: def, Length: hdr.Length}, nil
	}

	if !hdr.Length.Known {
		return Event{}, newErr(KindStructuralViolation, "scalar elements cannot have unknown length")
	}
	l := hdr.Length.Value
	if err := checkLength(def, l); err != nil {
		return Event{}, err
	}
	data, err := c.readPayload(l)
	if err != nil {
		return Event{}, err
	}
	if err := c.chargeAll(l); err != nil {
		return Event{}, err
	}
	val, err := decodeScalarValue(def, data)
	if err != nil {
		return Event{}, err
	}
	switch def.ID {
	case CRC32ID:
		f.crc32 = append([]byte(nil), data...)
	case VoidID:
	default:
		f.recordOccurrence(def.ID)
	}
	return Event{Kind: EventScalar, Def: def, Value: val}, nil
}

func (c *Cursor) closeFrame(f *frame) (Event, error) {
	if err := checkOccurs(f, c.childrenFor(f)); err != nil {
		return Event{}, err
	}
	c.stack = c.stack[:len(c.stack)-1]
	c.log.Debug().Msg("ExitMaster")
	return Event{Kind: EventExitMaster, Def: f.def}, nil
}

// Skip advances past the active frame's entire remaining payload
// without parsing its children, emitting ExitMaster directly. It
// requires the active frame to have a known remaining length.
func (c *Cursor) Skip() (Event, error) {
	active := c.stack[len(c.stack)-1]
	if active.bytesLeft == nil {
		return Event{}, newErr(KindStructuralViolation, "skip requires a frame with known length")
	}
	n := *active.bytesLeft
	if n > 0 {
		buf, err := c.fillAtLeast(int(n))
		if err != nil {
			if _, ok := IsIncomplete(err); !ok {
				return Event{}, err
			}
		}
		if uint64(len(buf)) < n {
			return Event{}, incomplete(int(n)-len(buf), "skip payload truncated")
		}
		c.r.Consume(int(n))
		if err := c.chargeAll(n); err != nil {
			return Event{}, err
		}
	}
	return c.closeFrame(active)
}
