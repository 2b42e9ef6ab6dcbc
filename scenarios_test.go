package ebml_test

import (
	"testing"

	ebml "github.com/ebmlgo/ebmlcore"
	"github.com/ebmlgo/ebmlcore/demoschema"
)

// TestScenarioFilesMasterThenGarbage is S1: a Files master of length 2
// followed by two 0xFF bytes that are not a legal child of Files.
func TestScenarioFilesMasterThenGarbage(t *testing.T) {
	input := []byte{0x19, 0x46, 0x69, 0x6C, 0x82, 0xFF, 0xFF}
	cur := ebml.NewCursor(demoschema.New(), ebml.NewSliceReader(input), 1)

	ev, err := cur.Next()
	if err != nil {
		t.Fatalf("unexpected error entering Files: %v", err)
	}
	if ev.Kind != ebml.EventEnterMaster || ev.Def.ID != demoschema.IDFiles || ev.Length.Value != 2 {
		t.Fatalf("got %+v, want EnterMaster(Files, 2)", ev)
	}

	if _, err := cur.Next(); err == nil {
		t.Fatal("expected an error decoding the 0xFF bytes as a child header")
	}
}

// TestScenarioFileInsideFiles is S2: a File master nested in an
// already-open Files frame.
func TestScenarioFileInsideFiles(t *testing.T) {
	input := []byte{0x19, 0x46, 0x69, 0x6C, 0xFF, 0x61, 0x46, 0x82, 0x00, 0x00}
	cur := ebml.NewCursor(demoschema.New(), ebml.NewSliceReader(input), 1)

	ev, err := cur.Next()
	if err != nil || ev.Kind != ebml.EventEnterMaster || ev.Def.ID != demoschema.IDFiles {
		t.Fatalf("got %+v, err=%v; want EnterMaster(Files)", ev, err)
	}

	ev, err = cur.Next()
	if err != nil {
		t.Fatalf("unexpected error entering File: %v", err)
	}
	if ev.Kind != ebml.EventEnterMaster || ev.Def.ID != demoschema.IDFile || ev.Length.Value != 2 {
		t.Fatalf("got %+v, want EnterMaster(File, 2)", ev)
	}
}

// TestScenarioEBMLVersionScalar is S3: an EBMLVersion scalar with
// payload 0x02 nested in an open EBML frame.
func TestScenarioEBMLVersionScalar(t *testing.T) {
	input := []byte{0x1A, 0x45, 0xDF, 0xA3, 0xFF, 0x42, 0x86, 0x81, 0x02}
	cur := ebml.NewCursor(demoschema.New(), ebml.NewSliceReader(input), 1)

	if ev, err := cur.Next(); err != nil || ev.Kind != ebml.EventEnterMaster || ev.Def.ID != demoschema.IDEBML {
		t.Fatalf("got %+v, err=%v; want EnterMaster(EBML)", ev, err)
	}

	ev, err := cur.Next()
	if err != nil {
		t.Fatalf("unexpected error reading EBMLVersion: %v", err)
	}
	if ev.Kind != ebml.EventScalar || ev.Def.ID != demoschema.IDEBMLVersion || ev.Value.UInt != 2 {
		t.Fatalf("got %+v, want Scalar(EBMLVersion, uint(2))", ev)
	}
}

// TestScenarioEBMLReadVersionRangeViolation is S4: writing
// EBMLReadVersion (declared RANGE IsExactly(1)) with value 2 must be
// rejected as a constraint violation.
func TestScenarioEBMLReadVersionRangeViolation(t *testing.T) {
	schema := demoschema.New()
	def, ok := schema.Def(demoschema.IDEBMLReadVersion)
	if !ok {
		t.Fatal("schema missing EBMLReadVersion")
	}

	out := ebml.NewSliceWriter()
	w := ebml.NewWriter(schema, out, 1)
	if err := w.EnterMaster(&ebml.Def{ID: demoschema.IDEBML}, false); err != nil {
		t.Fatalf("unexpected error entering EBML: %v", err)
	}

	err := w.Scalar(def, ebml.Value{Kind: ebml.KindUint, UInt: 2})
	if err == nil {
		t.Fatal("expected a constraint violation writing EBMLReadVersion=2")
	}
	var ee *ebml.Error
	if !asEbmlError(err, &ee) || ee.Kind != ebml.KindConstraintViolation {
		t.Fatalf("got %v, want KindConstraintViolation", err)
	}
}

// TestScenarioUnknownSizeMasterClosedByAncestorLookahead is S5: a
// Files master of unknown length containing one File child of known
// length 0, followed by a sibling EBML header legal at the root but
// not inside Files — the cursor must close File then Files before
// dispatching the buffered EBML header.
func TestScenarioUnknownSizeMasterClosedByAncestorLookahead(t *testing.T) {
	input := []byte{
		0x19, 0x46, 0x69, 0x6C, 0xFF, // Files, unknown length
		0x61, 0x46, 0x80, // File, length 0
		0x1A, 0x45, 0xDF, 0xA3, 0xFF, // EBML, unknown length
	}
	cur := ebml.NewCursor(demoschema.New(), ebml.NewSliceReader(input), 1)

	want := []struct {
		kind ebml.EventKind
		id   uint32
	}{
		{ebml.EventEnterMaster, demoschema.IDFiles},
		{ebml.EventEnterMaster, demoschema.IDFile},
		{ebml.EventExitMaster, demoschema.IDFile},
		{ebml.EventExitMaster, demoschema.IDFiles},
		{ebml.EventEnterMaster, demoschema.IDEBML},
	}
	for i, w := range want {
		ev, err := cur.Next()
		if err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
		if ev.Kind != w.kind {
			t.Fatalf("step %d: got kind %v, want %v", i, ev.Kind, w.kind)
		}
		if ev.Def == nil || ev.Def.ID != w.id {
			t.Fatalf("step %d: got def %+v, want id 0x%X", i, ev.Def, w.id)
		}
	}
}

func asEbmlError(err error, target **ebml.Error) bool {
	e, ok := err.(*ebml.Error)
	if !ok {
		return false
	}
	*target = e
	return true
}
