package ldraw

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"image/color"
	"io"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownColor is returned when a numeric colour code is not in the table.
var ErrUnknownColor = errors.New("unknown colour code")

// Color is one resolved LDraw colour.
type Color struct {
	Name  string
	Code  int
	Value color.NRGBA
	Edge  color.NRGBA
}

// Transparent reports whether the colour has an alpha below 255.
func (c Color) Transparent() bool {
	return c.Value.A < 255
}

// ColorTable maps colour codes to colours.
type ColorTable struct {
	byCode map[int]Color
}

// NewColorTable creates an empty table.
func NewColorTable() *ColorTable {
	return &ColorTable{byCode: make(map[int]Color)}
}

// Add registers c under its code, replacing any previous entry.
func (t *ColorTable) Add(c Color) {
	t.byCode[c.Code] = c
}

// Len returns the number of colours.
func (t *ColorTable) Len() int {
	return len(t.byCode)
}

// Codes returns the registered codes in ascending order.
func (t *ColorTable) Codes() []int {
	codes := make([]int, 0, len(t.byCode))
	for c := range t.byCode {
		codes = append(codes, c)
	}
	sort.Ints(codes)
	return codes
}

// Resolve returns the colour a reference denotes.
//
// Numeric codes must be in the table. Named references are tried as direct
// colours (#RRGGBB or 0x2RRGGBB); anything else gets a generated colour
// derived from the name, so the same name always looks the same.
func (t *ColorTable) Resolve(ref ColorRef) (Color, error) {
	if !ref.Named {
		c, ok := t.byCode[ref.Code]
		if !ok {
			return Color{}, fmt.Errorf("%w: %d", ErrUnknownColor, ref.Code)
		}
		return c, nil
	}
	if v, ok := parseDirectColor(ref.Name); ok {
		return Color{Name: ref.Name, Code: -1, Value: v, Edge: edgeFor(v)}, nil
	}
	v := generatedColor(ref.Name)
	return Color{Name: ref.Name, Code: -1, Value: v, Edge: edgeFor(v)}, nil
}

// FallbackColor stands in for codes missing from a table.
var FallbackColor = Color{
	Name:  "Unknown",
	Code:  MainColor,
	Value: color.NRGBA{R: 0x7F, G: 0x7F, B: 0x7F, A: 255},
	Edge:  color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255},
}

// Lookup is Resolve with FallbackColor for unknown codes.
func (t *ColorTable) Lookup(ref ColorRef) Color {
	c, err := t.Resolve(ref)
	if err != nil {
		return FallbackColor
	}
	return c
}

// Surface returns the colour geometry of colour c is drawn with on an
// instance of colour inherit. Code 16 takes inherit and code 24 the edge of
// inherit.
func (t *ColorTable) Surface(c, inherit ColorRef) color.NRGBA {
	switch {
	case c.IsMain():
		return t.Lookup(inherit).Value
	case !c.Named && c.Code == EdgeColor:
		return t.Lookup(inherit).Edge
	default:
		return t.Lookup(c).Value
	}
}

// ParseColorConfig reads "0 !COLOUR" definitions from an LDConfig.ldr file:
//
//	0 !COLOUR Black CODE 0 VALUE #1B2A34 EDGE #808080 [ALPHA 128] ...
//
// EDGE may also name another colour code, resolved after the whole file is
// read. Lines that are not colour definitions are skipped.
func ParseColorConfig(r io.Reader) (*ColorTable, error) {
	t := NewColorTable()
	edgeRefs := make(map[int]int) // colour code -> edge colour code

	scanner := bufio.NewScanner(r)
	number := 0
	for scanner.Scan() {
		number++
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 || fields[0] != "0" || fields[1] != "!COLOUR" {
			continue
		}

		c := Color{Name: fields[2]}
		c.Value.A = 255
		hasCode, hasValue := false, false
		edgeRef := -1
		for i := 3; i+1 < len(fields); i++ {
			arg := fields[i+1]
			switch fields[i] {
			case "CODE":
				code, err := strconv.Atoi(arg)
				if err != nil {
					return nil, fmt.Errorf("line %d: colour %s: bad CODE %q", number, c.Name, arg)
				}
				c.Code, hasCode = code, true
			case "VALUE":
				v, ok := parseDirectColor(arg)
				if !ok {
					return nil, fmt.Errorf("line %d: colour %s: bad VALUE %q", number, c.Name, arg)
				}
				c.Value.R, c.Value.G, c.Value.B = v.R, v.G, v.B
				hasValue = true
			case "EDGE":
				if v, ok := parseDirectColor(arg); ok {
					c.Edge = v
				} else if code, err := strconv.Atoi(arg); err == nil {
					edgeRef = code
				}
			case "ALPHA":
				a, err := strconv.Atoi(arg)
				if err != nil || a < 0 || a > 255 {
					return nil, fmt.Errorf("line %d: colour %s: bad ALPHA %q", number, c.Name, arg)
				}
				c.Value.A = uint8(a)
			}
		}
		if !hasCode || !hasValue {
			return nil, fmt.Errorf("line %d: colour %s: missing CODE or VALUE", number, c.Name)
		}
		if c.Edge.A == 0 && edgeRef < 0 {
			c.Edge = edgeFor(c.Value)
		}
		if edgeRef >= 0 {
			edgeRefs[c.Code] = edgeRef
		}
		t.Add(c)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	for code, ref := range edgeRefs {
		c := t.byCode[code]
		if e, ok := t.byCode[ref]; ok {
			c.Edge = e.Value
			c.Edge.A = 255
		} else {
			c.Edge = edgeFor(c.Value)
		}
		t.byCode[code] = c
	}
	return t, nil
}

// parseDirectColor parses #RRGGBB and the LDraw direct colour form 0x2RRGGBB.
func parseDirectColor(s string) (color.NRGBA, bool) {
	var hex string
	switch {
	case strings.HasPrefix(s, "#") && len(s) == 7:
		hex = s[1:]
	case (strings.HasPrefix(s, "0x2") || strings.HasPrefix(s, "0X2")) && len(s) == 9:
		hex = s[3:]
	default:
		return color.NRGBA{}, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, false
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
}

// edgeFor picks a contrasting edge: dark colours get grey, light ones black.
func edgeFor(v color.NRGBA) color.NRGBA {
	luma := (299*int(v.R) + 587*int(v.G) + 114*int(v.B)) / 1000
	if luma < 64 {
		return color.NRGBA{R: 0x59, G: 0x59, B: 0x59, A: 255}
	}
	return color.NRGBA{A: 255}
}

func generatedColor(name string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(name)))
	sum := h.Sum32()
	// Keep generated colours in the mid range so edges stay visible.
	return color.NRGBA{
		R: 64 + uint8(sum>>16)%128,
		G: 64 + uint8(sum>>8)%128,
		B: 64 + uint8(sum)%128,
		A: 255,
	}
}

// defaultConfig is a subset of the official LDConfig.ldr.
const defaultConfig = `0 LDraw colour subset
0 !COLOUR Black                CODE   0 VALUE #1B2A34 EDGE #808080
0 !COLOUR Blue                 CODE   1 VALUE #1E5AA8 EDGE #333333
0 !COLOUR Green                CODE   2 VALUE #00852B EDGE #333333
0 !COLOUR Dark_Turquoise       CODE   3 VALUE #069D9F EDGE #333333
0 !COLOUR Red                  CODE   4 VALUE #B40000 EDGE #333333
0 !COLOUR Dark_Pink            CODE   5 VALUE #D3359D EDGE #333333
0 !COLOUR Brown                CODE   6 VALUE #543324 EDGE #1E1E1E
0 !COLOUR Light_Grey           CODE   7 VALUE #8A928D EDGE #333333
0 !COLOUR Dark_Grey            CODE   8 VALUE #545955 EDGE #333333
0 !COLOUR Light_Blue           CODE   9 VALUE #97CBD9 EDGE #333333
0 !COLOUR Bright_Green         CODE  10 VALUE #58AB41 EDGE #333333
0 !COLOUR Light_Turquoise      CODE  11 VALUE #00AAA4 EDGE #333333
0 !COLOUR Salmon               CODE  12 VALUE #F06D61 EDGE #333333
0 !COLOUR Pink                 CODE  13 VALUE #F6A9BB EDGE #333333
0 !COLOUR Yellow               CODE  14 VALUE #FAC80A EDGE #333333
0 !COLOUR White                CODE  15 VALUE #F4F4F4 EDGE #333333
0 !COLOUR Main_Colour          CODE  16 VALUE #7F7F7F EDGE #333333
0 !COLOUR Tan                  CODE  19 VALUE #E4CD9E EDGE #333333
0 !COLOUR Edge_Colour          CODE  24 VALUE #7F7F7F EDGE #333333
0 !COLOUR Orange               CODE  25 VALUE #D67923 EDGE #333333
0 !COLOUR Dark_Tan             CODE  28 VALUE #AA7D55 EDGE #333333
0 !COLOUR Trans_Clear          CODE  47 VALUE #FCFCFC EDGE #C3C3C3 ALPHA 128
0 !COLOUR Reddish_Brown        CODE  70 VALUE #5F3109 EDGE #333333
0 !COLOUR Light_Bluish_Grey    CODE  71 VALUE #969696 EDGE #333333
0 !COLOUR Dark_Bluish_Grey     CODE  72 VALUE #646464 EDGE #333333
`

// DefaultColors returns the built-in colour table, used when no LDConfig.ldr
// is configured.
func DefaultColors() *ColorTable {
	t, err := ParseColorConfig(strings.NewReader(defaultConfig))
	if err != nil {
		panic("ldraw: built-in colour table: " + err.Error())
	}
	return t
}
