// Package demoschema implements the "files-in-ebml-demo" schema named
// in the GLOSSARY: a minimal EBML header plus a root master Files
// containing zero or more File masters, each holding a FileName,
// MimeType, ModificationTimestamp and Data. It exists to give
// package ebml's schema-driven cursor a concrete, external collaborator
// schema to walk — the core itself contains no hard-coded element
// catalog, by design.
package demoschema

import "github.com/ebmlgo/ebmlcore"

// Element IDs, in the conventional "marked" numeric form (the
// encoding including its width prefix and marker bit, e.g. Files'
// 4-byte wire form 19 46 69 6C reads back as 0x1946696C).
const (
	IDEBML                   uint32 = 0x1A45DFA3
	IDEBMLVersion            uint32 = 0x4286
	IDEBMLReadVersion        uint32 = 0x42F7
	IDEBMLMaxIDLength        uint32 = 0x42F2
	IDEBMLMaxSizeLength      uint32 = 0x42F3
	IDEBMLDocType            uint32 = 0x4282
	IDEBMLDocTypeVersion     uint32 = 0x4287
	IDEBMLDocTypeReadVersion uint32 = 0x4285

	IDFiles                 uint32 = 0x1946696C
	IDFile                  uint32 = 0x6146
	IDFileName              uint32 = 0x85
	IDMimeType              uint32 = 0x86
	IDModificationTimestamp uint32 = 0x4461
	IDData                  uint32 = 0x88
)

// Schema implements ebml.Schema for the files-in-ebml-demo element
// catalog.
type Schema struct {
	defs     map[uint32]*ebml.Def
	children map[uint32][]ebml.ChildRef
	root     []ebml.ChildRef
}

// New builds the demo schema. It is cheap to call and holds no
// mutable shared state, so callers may build one per Cursor/Writer or
// share a single instance across many.
func New() *Schema {
	s := &Schema{defs: make(map[uint32]*ebml.Def), children: make(map[uint32][]ebml.ChildRef)}

	def := func(id uint32, path string, kind ebml.Kind) *ebml.Def {
		d := &ebml.Def{ID: id, Path: path, Kind: kind, MaxOccurs: ebml.MaxOccursUnbounded}
		s.defs[id] = d
		return d
	}

	ebmlHeader := def(IDEBML, "\\EBML", ebml.KindMaster)
	ebmlHeader.MaxOccurs = 1
	ebmlHeader.UnknownSizeAllowed = true

	version := def(IDEBMLVersion, "\\EBML\\EBMLVersion", ebml.KindUint)
	version.MinOccurs, version.MaxOccurs = 0, 1

	readVersion := def(IDEBMLReadVersion, "\\EBML\\EBMLReadVersion", ebml.KindUint)
	readVersion.MinOccurs, readVersion.MaxOccurs = 0, 1
	readVersion.ValueRange = ebml.Exactly(1)

	maxIDLength := def(IDEBMLMaxIDLength, "\\EBML\\EBMLMaxIDLength", ebml.KindUint)
	maxIDLength.MinOccurs, maxIDLength.MaxOccurs = 0, 1

	maxSizeLength := def(IDEBMLMaxSizeLength, "\\EBML\\EBMLMaxSizeLength", ebml.KindUint)
	maxSizeLength.MinOccurs, maxSizeLength.MaxOccurs = 0, 1

	docType := def(IDEBMLDocType, "\\EBML\\EBMLDocType", ebml.KindASCII)
	docType.MinOccurs, docType.MaxOccurs = 1, 1

	docTypeVersion := def(IDEBMLDocTypeVersion, "\\EBML\\EBMLDocTypeVersion", ebml.KindUint)
	docTypeVersion.MinOccurs, docTypeVersion.MaxOccurs = 0, 1

	docTypeReadVersion := def(IDEBMLDocTypeReadVersion, "\\EBML\\EBMLDocTypeReadVersion", ebml.KindUint)
	docTypeReadVersion.MinOccurs, docTypeReadVersion.MaxOccurs = 0, 1

	s.children[IDEBML] = refs(version, readVersion, maxIDLength, maxSizeLength, docType, docTypeVersion, docTypeReadVersion)

	files := def(IDFiles, "\\Files", ebml.KindMaster)
	files.MinOccurs, files.MaxOccurs = 0, 1
	files.UnknownSizeAllowed = true

	file := def(IDFile, "\\Files\\File", ebml.KindMaster)
	file.Recurring = true
	file.UnknownSizeAllowed = true
	s.children[IDFiles] = refs(file)

	fileName := def(IDFileName, "\\Files\\File\\FileName", ebml.KindUTF8)
	fileName.MinOccurs, fileName.MaxOccurs = 0, 1

	mimeType := def(IDMimeType, "\\Files\\File\\MimeType", ebml.KindASCII)
	mimeType.MinOccurs, mimeType.MaxOccurs = 0, 1

	modTime := def(IDModificationTimestamp, "\\Files\\File\\ModificationTimestamp", ebml.KindDate)
	modTime.MinOccurs, modTime.MaxOccurs = 0, 1

	data := def(IDData, "\\Files\\File\\Data", ebml.KindBinary)
	data.MinOccurs, data.MaxOccurs = 0, 1

	s.children[IDFile] = refs(fileName, mimeType, modTime, data)

	s.root = refs(ebmlHeader, files)
	return s
}

func refs(defs ...*ebml.Def) []ebml.ChildRef {
	out := make([]ebml.ChildRef, 0, len(defs))
	for _, d := range defs {
		out = append(out, ebml.ChildRef{
			Def:                d,
			MinOccurs:          d.MinOccurs,
			MaxOccurs:          d.MaxOccurs,
			UnknownSizeAllowed: d.UnknownSizeAllowed,
			Recursive:          d.Recursive,
		})
	}
	return out
}

// RootChildren implements ebml.Schema.
func (s *Schema) RootChildren() []ebml.ChildRef { return s.root }

// Def implements ebml.Schema.
func (s *Schema) Def(id uint32) (*ebml.Def, bool) {
	d, ok := s.defs[id]
	return d, ok
}

// ChildrenOf implements ebml.Schema.
func (s *Schema) ChildrenOf(master *ebml.Def) []ebml.ChildRef {
	if master == nil {
		return s.root
	}
	return s.children[master.ID]
}
