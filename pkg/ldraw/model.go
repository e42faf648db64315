package ldraw

import (
	"bufio"
	"bytes"
	"errors"

	"github.com/Faultbox/brickyard/pkg/encoding"
)

// Model is a named LDraw file: its commands in file order plus the optional
// part descriptor that marks it as a leaf part.
type Model struct {
	Name       string
	Commands   []*Command
	Descriptor *Command
}

// IsPart reports whether the model is a leaf part (welded into one mesh)
// rather than an assembly of sub-models.
func (m *Model) IsPart() bool {
	return m.Descriptor != nil
}

// References returns the distinct sub-file names in first-use order.
func (m *Model) References() []string {
	seen := make(map[string]bool)
	var names []string
	for _, c := range m.Commands {
		if c.Kind != KindSubFile || seen[c.File] {
			continue
		}
		seen[c.File] = true
		names = append(names, c.File)
	}
	return names
}

// Count returns the number of commands of the given kind.
func (m *Model) Count(kind Kind) int {
	n := 0
	for _, c := range m.Commands {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

// ParseModel parses LDraw text into a model.
//
// Lines with defaulted fields are kept and reported through the returned
// errors, each a *LineError. Only the first part descriptor counts; later ones
// are reported too.
func ParseModel(name string, data []byte) (*Model, []error) {
	m := &Model{Name: NormalizeName(name)}
	var problems []error

	scanner := bufio.NewScanner(bytes.NewReader(encoding.ToUTF8(data)))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	number := 0
	for scanner.Scan() {
		number++
		cmd, err := ParseLine(scanner.Text(), m)
		if err != nil {
			var le *LineError
			if errors.As(err, &le) {
				le.Number = number
			}
			problems = append(problems, err)
		}
		if cmd == nil {
			continue
		}
		if cmd.Kind == KindPartDescriptor {
			if m.Descriptor != nil {
				problems = append(problems, &LineError{
					Model:  m.Name,
					Number: number,
					Text:   scanner.Text(),
					Err:    ErrDuplicateDescriptor,
				})
				continue
			}
			m.Descriptor = cmd
		}
		m.Commands = append(m.Commands, cmd)
	}
	if err := scanner.Err(); err != nil {
		problems = append(problems, err)
	}
	return m, problems
}
