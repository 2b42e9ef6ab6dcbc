package ebml

import "testing"

func TestHeaderRoundtrip(t *testing.T) {
	cases := []struct {
		name   string
		id     uint32
		length Length
	}{
		{"short id, known length", 0x86, KnownLength(5)},
		{"4-byte id, zero length", 0x1946696C, KnownLength(0)},
		{"unknown length master", 0x18538067, UnknownLength},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			wire, err := WriteHeader(tc.id, tc.length)
			if err != nil {
				t.Fatalf("WriteHeader: %v", err)
			}
			hdr, err := ReadHeader(wire)
			if err != nil {
				t.Fatalf("ReadHeader: %v", err)
			}
			if hdr.ID != tc.id || hdr.Length != tc.length || hdr.Width != len(wire) {
				t.Fatalf("got %+v, want id=0x%X length=%+v width=%d", hdr, tc.id, tc.length, len(wire))
			}
		})
	}
}

func TestReadHeaderIncompleteLength(t *testing.T) {
	idBytes, _ := EmitElementID(0x86)
	_, err := ReadHeader(idBytes)
	needed, ok := IsIncomplete(err)
	if !ok || needed <= 0 {
		t.Fatalf("expected Incomplete(n>0), got %v", err)
	}
}
