// Package ldraw parses LDraw 1.0.2 text into typed commands and named models.
package ldraw

import (
	"errors"
	"fmt"
	gomath "math"
	"strconv"
	"strings"

	"github.com/Faultbox/brickyard/pkg/math"
)

// Parse errors.
var (
	ErrMalformedLine       = errors.New("malformed LDraw line")
	ErrDuplicateDescriptor = errors.New("duplicate !LDRAW_ORG descriptor")
)

// Kind is the LDraw line type. The values match the leading code on the line.
type Kind int

const (
	KindPartDescriptor Kind = 0 // 0 !LDRAW_ORG <type>
	KindSubFile        Kind = 1 // 1 colour x y z a b c d e f g h i file
	KindLine           Kind = 2 // 2 colour x1 y1 z1 x2 y2 z2
	KindTriangle       Kind = 3 // 3 colour + 3 points
	KindQuad           Kind = 4 // 4 colour + 4 points
	KindOptionalLine   Kind = 5 // 5 colour + 2 points + 2 control points
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindPartDescriptor:
		return "PartDescriptor"
	case KindSubFile:
		return "SubFile"
	case KindLine:
		return "Line"
	case KindTriangle:
		return "Triangle"
	case KindQuad:
		return "Quad"
	case KindOptionalLine:
		return "OptionalLine"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// PointCount returns how many vertices a command of this kind carries.
func (k Kind) PointCount() int {
	switch k {
	case KindLine, KindOptionalLine:
		return 2
	case KindTriangle:
		return 3
	case KindQuad:
		return 4
	default:
		return 0
	}
}

// IsLine reports whether the kind contributes to polylines.
func (k Kind) IsLine() bool {
	return k == KindLine || k == KindOptionalLine
}

// PartType is the !LDRAW_ORG category that marks a file as a leaf part.
type PartType int

const (
	PartTypeNone PartType = iota
	PartTypePart
	PartTypeSubpart
	PartTypePrimitive // Primitive, 8_Primitive and 48_Primitive
	PartTypeShortcut
)

// String returns a human-readable part type name.
func (p PartType) String() string {
	switch p {
	case PartTypeNone:
		return "None"
	case PartTypePart:
		return "Part"
	case PartTypeSubpart:
		return "Subpart"
	case PartTypePrimitive:
		return "Primitive"
	case PartTypeShortcut:
		return "Shortcut"
	default:
		return fmt.Sprintf("Unknown(%d)", int(p))
	}
}

func parsePartType(s string) PartType {
	s = strings.TrimPrefix(s, "Unofficial_")
	switch s {
	case "Part":
		return PartTypePart
	case "Subpart":
		return PartTypeSubpart
	case "Primitive", "8_Primitive", "48_Primitive":
		return PartTypePrimitive
	case "Shortcut":
		return PartTypeShortcut
	default:
		return PartTypeNone
	}
}

// Well-known colour codes.
const (
	MainColor = 16 // inherit the colour of the referencing command
	EdgeColor = 24 // complement edge colour of the current colour
)

// ColorRef is a colour reference as written on a line: either a numeric code
// or a raw name (direct colours such as 0x2FF0000 or #FF0000 also land here).
type ColorRef struct {
	Code  int
	Name  string
	Named bool
}

// ColorCode returns a numeric colour reference.
func ColorCode(code int) ColorRef {
	return ColorRef{Code: code}
}

// ColorName returns a named colour reference.
func ColorName(name string) ColorRef {
	return ColorRef{Name: name, Named: true}
}

// IsMain reports whether the reference inherits the parent colour.
func (c ColorRef) IsMain() bool {
	return !c.Named && c.Code == MainColor
}

// String returns the reference as it would be written in a file.
func (c ColorRef) String() string {
	if c.Named {
		return c.Name
	}
	return strconv.Itoa(c.Code)
}

func parseColorRef(s string) ColorRef {
	if code, err := strconv.Atoi(s); err == nil {
		return ColorCode(code)
	}
	return ColorName(s)
}

// Command is one parsed LDraw line. Commands are immutable once parsed.
type Command struct {
	Kind  Kind
	Color ColorRef

	// Points holds the vertices of line, triangle and quad commands.
	// Optional lines keep only their two endpoints.
	Points []math.Vec3

	PartType PartType // KindPartDescriptor

	File      string    // KindSubFile: normalized referenced name
	Transform math.Mat4 // KindSubFile: local placement of File

	Model *Model // owning model, not owned
}

// LineError reports numeric fields that could not be parsed and were
// replaced with 0.
type LineError struct {
	Model  string // owning model name, empty when parsed standalone
	Number int    // 1-based line number, 0 when unknown
	Text   string
	Fields []int // token positions that were defaulted
	Err    error
}

func (e *LineError) Error() string {
	where := e.Model
	if e.Number > 0 {
		where = fmt.Sprintf("%s:%d", e.Model, e.Number)
	}
	if where != "" {
		where += ": "
	}
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s%v: %q", where, e.Err, e.Text)
	}
	return fmt.Sprintf("%s%v (fields %v): %q", where, e.Err, e.Fields, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// ParseLine parses one LDraw line.
//
// Blank lines, comments, meta commands other than !LDRAW_ORG and unknown line
// types yield a nil command and a nil error. When a numeric field is missing
// or malformed the command is still returned, with that field set to 0, along
// with a *LineError wrapping ErrMalformedLine. A sub-file reference without a
// file name cannot be used and yields a nil command plus the error.
func ParseLine(line string, owner *Model) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}
	code, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, nil
	}

	kind := Kind(code)
	switch kind {
	case KindPartDescriptor:
		if len(fields) < 3 || fields[1] != "!LDRAW_ORG" {
			return nil, nil
		}
		pt := parsePartType(fields[2])
		if pt == PartTypeNone {
			return nil, nil
		}
		return &Command{Kind: kind, PartType: pt, Model: owner}, nil
	case KindSubFile, KindLine, KindTriangle, KindQuad, KindOptionalLine:
	default:
		return nil, nil
	}

	cmd := &Command{Kind: kind, Color: ColorCode(MainColor), Model: owner}
	var bad []int
	if len(fields) > 1 {
		cmd.Color = parseColorRef(fields[1])
	} else {
		bad = append(bad, 1)
	}

	numbers := 3 * kind.PointCount()
	if kind == KindSubFile {
		numbers = 12
	}
	values := make([]float64, numbers)
	for i := range values {
		pos := 2 + i
		if pos >= len(fields) {
			bad = append(bad, pos)
			continue
		}
		v, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil || gomath.IsNaN(v) || gomath.IsInf(v, 0) {
			bad = append(bad, pos)
			continue
		}
		values[i] = v
	}

	if kind == KindSubFile {
		v := values
		cmd.Transform = math.FromLDraw(v[0], v[1], v[2], v[3], v[4], v[5], v[6], v[7], v[8], v[9], v[10], v[11])
		if len(fields) > 14 {
			cmd.File = NormalizeName(strings.Join(fields[14:], " "))
		}
		if cmd.File == "" {
			return nil, newLineError(owner, line, append(bad, 14))
		}
	} else {
		cmd.Points = make([]math.Vec3, kind.PointCount())
		for i := range cmd.Points {
			cmd.Points[i] = math.Vec3{X: values[3*i], Y: values[3*i+1], Z: values[3*i+2]}
		}
	}

	if len(bad) > 0 {
		return cmd, newLineError(owner, line, bad)
	}
	return cmd, nil
}

func newLineError(owner *Model, line string, fields []int) *LineError {
	e := &LineError{Text: strings.TrimSpace(line), Fields: fields, Err: ErrMalformedLine}
	if owner != nil {
		e.Model = owner.Name
	}
	return e
}
