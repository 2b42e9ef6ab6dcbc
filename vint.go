package ebml

import "math/bits"

// Length represents a parsed or to-be-emitted element length, which may
// be the EBML "unknown length" sentinel (all-ones VINT_DATA).
type Length struct {
	Known bool
	Value uint64
}

// UnknownLength is the canonical "unknown" Length value.
var UnknownLength = Length{Known: false}

// KnownLength wraps a concrete byte count.
func KnownLength(v uint64) Length { return Length{Known: true, Value: v} }

// parseVINTRaw decodes a generic VINT (§3.1/§4.2 step 1-4) and returns
// its VINT_DATA (marker and leading zeros stripped) together with its
// byte width. It fails with KindIncomplete if buf is too short and
// KindMalformedPrimitive if the width would exceed 8 bytes.
func parseVINTRaw(buf []byte) (data uint64, width int, err error) {
	br := newBitReader(buf)
	k, err := br.takeLeadingZeros(8)
	if err != nil {
		return 0, 0, err
	}
	if k >= 8 {
		return 0, 0, newErr(KindMalformedPrimitive, "vint width exceeds 8 bytes")
	}
	w := k + 1
	if _, err := br.takeBits(1); err != nil {
		return 0, 0, err
	}
	value, err := br.takeBits(7 * w)
	if err != nil {
		return 0, 0, err
	}
	return value, w, nil
}

// markedValue reconstructs the full w-byte wire value (leading zeros,
// marker bit, and data bits together) from a stripped VINT_DATA value.
// This is the conventional "ID including marker" numeric form used
// throughout the Matroska/EBML ecosystem (e.g. Segment = 0x18538067).
func markedValue(data uint64, width int) uint64 {
	return data | (uint64(1) << uint(7*width))
}

// ParseVInt parses a generic length-style VINT, stripping the marker.
// It is exposed for callers (e.g. writers reusing width planning) that
// need the raw decode without ID-specific validation.
func ParseVInt(buf []byte) (data uint64, width int, err error) {
	return parseVINTRaw(buf)
}

// ParseElementID parses buf as an EBML element ID VINT (§4.2 "Parse as
// element ID"), returning the conventional marked numeric form.
func ParseElementID(buf []byte) (id uint32, width int, err error) {
	data, w, err := parseVINTRaw(buf)
	if err != nil {
		return 0, 0, err
	}
	if w > 4 {
		return 0, 0, newErr(KindMalformedPrimitive, "element id width must be 1-4 bytes")
	}
	allOnes := data == (uint64(1)<<uint(7*w))-1
	if data == 0 || allOnes {
		return 0, 0, newErr(KindMalformedPrimitive, "reserved element id value")
	}
	// A value that is all-ones at the next shorter width is reserved
	// there, so this longer form is its minimal encoding.
	shorterAllOnes := (uint64(1) << uint(7*(w-1))) - 1
	sigBits := bits.Len64(data)
	if sigBits <= 7*(w-1) && data != shorterAllOnes {
		return 0, 0, newErr(KindMalformedPrimitive, "non-minimal element id encoding")
	}
	return uint32(markedValue(data, w)), w, nil
}

// ParseElementLength parses buf as an EBML element length VINT (§4.2
// "Parse as element length"), returning UnknownLength for the reserved
// all-ones sentinel.
func ParseElementLength(buf []byte) (Length, int, error) {
	data, w, err := parseVINTRaw(buf)
	if err != nil {
		return Length{}, 0, err
	}
	if data == (uint64(1)<<uint(7*w))-1 {
		return UnknownLength, w, nil
	}
	return KnownLength(data), w, nil
}

// naturalWidth returns ceil(bit_length(value)/7), clamped to at least 1.
func naturalWidth(value uint64) int {
	n := bits.Len64(value)
	w := (n + 6) / 7
	if w < 1 {
		w = 1
	}
	return w
}

// EmitVInt emits value as a VINT using the smallest width that is at
// least minWidth and at least its natural width, failing if that
// exceeds maxWidth (or 8, whichever is smaller). maxWidth <= 0 means
// "no explicit cap beyond 8".
func EmitVInt(value uint64, minWidth, maxWidth int) ([]byte, error) {
	w := naturalWidth(value)
	if minWidth > w {
		w = minWidth
	}
	cap := 8
	if maxWidth > 0 && maxWidth < cap {
		cap = maxWidth
	}
	if w > cap {
		return nil, newErr(KindResourceExhausted, "vint value does not fit in requested width")
	}
	out := make([]byte, w)
	bw := newBitWriter(out)
	if err := bw.putBits(0, w-1); err != nil {
		return nil, err
	}
	if err := bw.putBits(1, 1); err != nil {
		return nil, err
	}
	if err := bw.putBits(value, 7*w); err != nil {
		return nil, err
	}
	return out, nil
}

// EmitElementID emits id (in the conventional "marked" numeric form,
// e.g. 0x18538067) to its canonical width, per the byte-footprint
// ranges in §4.2.
func EmitElementID(id uint32) ([]byte, error) {
	v := uint64(id)
	var w int
	switch {
	case v >= 0x81 && v <= 0xFE:
		w = 1
	case v >= 0x407F && v <= 0x7FFE:
		w = 2
	case v >= 0x203FFF && v <= 0x3FFFFE:
		w = 3
	case v >= 0x101FFFFF && v <= 0x1FFFFFFE:
		w = 4
	default:
		return nil, newErr(KindMalformedPrimitive, "element id out of canonical range")
	}
	out := make([]byte, w)
	for i := w - 1; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out, nil
}

// EmitElementLength emits length, honoring the "unknown length" case
// (reserved all-ones VINT of width requestedWidth, default 1) and the
// collision-avoidance rule for known lengths: the emitted VINT_DATA
// must never itself equal the all-ones sentinel at its chosen width,
// so the width is bumped by one whenever the natural-width encoding
// would collide (§4.2, grounded on the original's
// serialize::element_len collision check).
func EmitElementLength(length Length, requestedWidth int) ([]byte, error) {
	if !length.Known {
		w := requestedWidth
		if w <= 0 {
			w = 1
		}
		allOnes := (uint64(1) << uint(7*w)) - 1
		return EmitVInt(allOnes, w, w)
	}
	w := naturalWidth(length.Value)
	if (uint64(1)<<uint(7*w))-1 == length.Value {
		w++
	}
	if requestedWidth > w {
		w = requestedWidth
	}
	return EmitVInt(length.Value, w, 8)
}
