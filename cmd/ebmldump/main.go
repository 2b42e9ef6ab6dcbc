// Command ebmldump streams an EBML document against a known schema
// and prints its typed event trace, one line per event indented by
// stack depth. It is grounded on the teacher's example/extracter tool
// (a hardcoded Matroska track extractor) and on
// go-fil-commp-hashhash's cmd/stream-commp flag/TTY idiom, generalized
// into a schema-agnostic dump utility.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	ebml "github.com/ebmlgo/ebmlcore"
	"github.com/ebmlgo/ebmlcore/demoschema"
	"github.com/mattn/go-isatty"
	varint "github.com/multiformats/go-varint"
	"github.com/pborman/options"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type flags struct {
	Input  string       `getopt:"-i --input    path to read (defaults to stdin)"`
	Schema string       `getopt:"-s --schema   schema to use: demo or matroska"`
	Frame  bool         `getopt:"-f --frame    emit varint-length-prefixed frames instead of a human trace"`
	Help   options.Help `getopt:"-h --help     show this help"`
}

func main() {
	f := flags{Schema: "demo"}
	options.RegisterAndParse(&f)

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	logger := log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: !isatty.IsTerminal(os.Stderr.Fd())})

	in := os.Stdin
	if f.Input != "" {
		file, err := os.Open(f.Input)
		if err != nil {
			logger.Error().Err(errors.Wrap(err, "open input")).Msg("fatal")
			os.Exit(1)
		}
		defer file.Close()
		in = file
	}

	var schema ebml.Schema
	switch f.Schema {
	case "demo":
		schema = demoschema.New()
	case "matroska":
		schema = demoschema.NewMatroska()
	default:
		logger.Error().Str("schema", f.Schema).Msg("unknown schema")
		os.Exit(1)
	}

	reader := ebml.NewStreamReader(in, 8192)
	cursor := ebml.NewCursor(schema, reader, 1)
	cursor.SetLogger(logger)

	useColor := !f.Frame && isatty.IsTerminal(os.Stdout.Fd())
	depth := 0
	for {
		ev, err := cursor.Next()
		if err != nil {
			if needed, ok := ebml.IsIncomplete(err); ok {
				logger.Warn().Int("needed", needed).Msg("incomplete input")
				os.Exit(2)
			}
			logger.Error().Err(errors.WithStack(err)).Msg("parse failed")
			os.Exit(1)
		}

		if f.Frame {
			if err := writeFrame(os.Stdout, ev); err != nil {
				logger.Error().Err(err).Msg("frame write failed")
				os.Exit(1)
			}
		} else {
			printEvent(os.Stdout, ev, depth, useColor)
		}

		switch ev.Kind {
		case ebml.EventEnterMaster:
			depth++
		case ebml.EventExitMaster:
			if depth > 0 {
				depth--
			}
		case ebml.EventEnd:
			return
		}
	}
}

func printEvent(w io.Writer, ev ebml.Event, depth int, color bool) {
	indent := strings.Repeat("  ", depth)
	switch ev.Kind {
	case ebml.EventEnterMaster:
		fmt.Fprintf(w, "%s%s %s\n", indent, sgr(color, "32", "+"), ev.Def.Path)
	case ebml.EventScalar:
		fmt.Fprintf(w, "%s%s %s = %v\n", indent, sgr(color, "36", "="), ev.Def.Path, scalarString(ev.Value))
	case ebml.EventExitMaster:
		fmt.Fprintf(w, "%s%s\n", strings.Repeat("  ", maxInt(depth-1, 0)), sgr(color, "31", "-"))
	case ebml.EventEnd:
		fmt.Fprintln(w, sgr(color, "90", "(end)"))
	}
}

func sgr(color bool, code, s string) string {
	if !color {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

func scalarString(v ebml.Value) string {
	switch v.Kind {
	case ebml.KindUint:
		return fmt.Sprintf("%d", v.UInt)
	case ebml.KindInt:
		return fmt.Sprintf("%d", v.Int)
	case ebml.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case ebml.KindDate:
		return v.Date.Format("2006-01-02T15:04:05Z")
	case ebml.KindASCII, ebml.KindUTF8:
		return v.String
	case ebml.KindBinary:
		return fmt.Sprintf("<%d bytes>", len(v.Binary))
	default:
		return "?"
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// jsonFrame is the wire shape of a single --frame line: just enough
// to reconstruct what printEvent would have shown, not a full Event
// (ev.Def carries schema-internal pointers that don't belong on the wire).
type jsonFrame struct {
	Kind   string `json:"kind"`
	Path   string `json:"path,omitempty"`
	Scalar string `json:"scalar,omitempty"`
}

// writeFrame emits ev as a single varint-length-prefixed JSON frame.
// This framing is a cmd/ebmldump convenience, not part of the core's
// byte-stream contract: it lets a pipeline of ebmldump processes
// exchange event batches without re-parsing the original document.
func writeFrame(w io.Writer, ev ebml.Event) error {
	body, err := json.Marshal(jsonFrame{Kind: ev.Kind.String(), Path: pathOf(ev), Scalar: scalarOf(ev)})
	if err != nil {
		return errors.Wrap(err, "marshal frame")
	}
	lenBuf := make([]byte, varint.UvarintSize(uint64(len(body))))
	n := varint.PutUvarint(lenBuf, uint64(len(body)))
	if _, err := w.Write(lenBuf[:n]); err != nil {
		return errors.Wrap(err, "write frame length")
	}
	_, err = w.Write(body)
	return errors.Wrap(err, "write frame body")
}

func pathOf(ev ebml.Event) string {
	if ev.Def == nil {
		return ""
	}
	return ev.Def.Path
}

func scalarOf(ev ebml.Event) string {
	if ev.Kind != ebml.EventScalar {
		return ""
	}
	return scalarString(ev.Value)
}
