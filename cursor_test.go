package ebml_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ebml "github.com/ebmlgo/ebmlcore"
	"github.com/ebmlgo/ebmlcore/demoschema"
)

func TestCursorSkipAdvancesPastMasterPayload(t *testing.T) {
	schema := demoschema.New()
	input := []byte{
		0x19, 0x46, 0x69, 0x6C, 0x82, // Files, length 2
		0xAA, 0xBB, // opaque payload bytes, never parsed as children
	}
	cur := ebml.NewCursor(schema, ebml.NewSliceReader(input), 1)

	ev, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventEnterMaster, ev.Kind)

	ev, err = cur.Skip()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventExitMaster, ev.Kind)

	ev, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventEnd, ev.Kind)
}

func TestCursorIncompleteInputOverStreamReader(t *testing.T) {
	// A complete Files ID but a truncated length VINT: 0x02
	// announces a 7-byte width VINT but no further bytes follow.
	partial := []byte{0x19, 0x46, 0x69, 0x6C, 0x02}
	r := ebml.NewStreamReader(bytes.NewReader(partial), 16)
	cur := ebml.NewCursor(demoschema.New(), r, 1)

	_, err := cur.Next()
	needed, ok := ebml.IsIncomplete(err)
	assert.True(t, ok)
	assert.Greater(t, needed, 0)
}

func TestCursorCRC32MustBeFirstChild(t *testing.T) {
	schema := demoschema.New()
	input := []byte{
		0x1A, 0x45, 0xDF, 0xA3, 0xFF, // EBML, unknown length
		0x42, 0x86, 0x81, 0x01, // EBMLVersion = 1 (first child)
		0xBF, 0x84, 0x00, 0x00, 0x00, 0x00, // CRC32 arriving second: illegal
	}
	cur := ebml.NewCursor(schema, ebml.NewSliceReader(input), 1)

	_, err := cur.Next() // EnterMaster(EBML)
	require.NoError(t, err)
	_, err = cur.Next() // Scalar(EBMLVersion)
	require.NoError(t, err)

	_, err = cur.Next() // CRC32 as a non-first child
	assert.Error(t, err)
}

func TestCursorVoidDoesNotCountTowardOccurrences(t *testing.T) {
	schema := demoschema.New()
	// EBML, length 12: EBMLDocType="demo" (satisfies the one required
	// child) followed by a Void element that must not itself need to
	// satisfy, or count against, any occurrence bound.
	input := []byte{
		0x1A, 0x45, 0xDF, 0xA3, 0x8C,
		0x42, 0x82, 0x84, 0x64, 0x65, 0x6D, 0x6F, // EBMLDocType = "demo"
		0xEC, 0x83, 0x00, 0x00, 0x00, // Void
	}
	cur := ebml.NewCursor(schema, ebml.NewSliceReader(input), 1)

	ev, err := cur.Next()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventEnterMaster, ev.Kind)

	ev, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventScalar, ev.Kind)
	assert.Equal(t, demoschema.IDEBMLDocType, ev.Def.ID)

	ev, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventScalar, ev.Kind)
	assert.Equal(t, ebml.VoidID, ev.Def.ID)

	ev, err = cur.Next()
	require.NoError(t, err)
	assert.Equal(t, ebml.EventExitMaster, ev.Kind)
}

func TestCursorCRC32Accessor(t *testing.T) {
	schema := demoschema.New()
	input := []byte{
		0x1A, 0x45, 0xDF, 0xA3, 0xFF, // EBML, unknown length
		0xBF, 0x84, 0xDE, 0xAD, 0xBE, 0xEF, // CRC32, first child
		0x42, 0x86, 0x81, 0x01, // EBMLVersion = 1, second child
	}
	cur := ebml.NewCursor(schema, ebml.NewSliceReader(input), 1)

	_, err := cur.Next() // EnterMaster(EBML)
	require.NoError(t, err)
	if _, ok := cur.CRC32(); ok {
		t.Fatal("CRC32() should report false before any CRC32 child is seen")
	}

	ev, err := cur.Next() // Scalar(CRC32)
	require.NoError(t, err)
	assert.Equal(t, ebml.CRC32ID, ev.Def.ID)

	got, ok := cur.CRC32()
	require.True(t, ok)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, got)

	_, err = cur.Next() // Scalar(EBMLVersion)
	require.NoError(t, err)
	got, ok = cur.CRC32()
	require.True(t, ok)
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, got)
}

func TestCursorRejectsUnknownLengthWhereForbidden(t *testing.T) {
	schema := demoschema.New()
	// EBMLVersion is a scalar uint; it can never legally carry an
	// unknown length.
	input := []byte{
		0x1A, 0x45, 0xDF, 0xA3, 0xFF, // EBML, unknown length
		0x42, 0x86, 0xFF, // EBMLVersion with the all-ones length sentinel
	}
	cur := ebml.NewCursor(schema, ebml.NewSliceReader(input), 1)

	_, err := cur.Next() // EnterMaster(EBML)
	require.NoError(t, err)

	_, err = cur.Next()
	assert.Error(t, err)
}
