package gcode

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/philipparndt/gotoolpath/pkg/toolpath"
)

// order is the canonical letter order of the words in a block
var order = [...]byte{'N', 'G', 'M', 'X', 'Y', 'Z', 'I', 'J', 'K', 'R', 'P', 'S', 'T', 'F'}

func rank(letter byte) int {
	if i := slices.Index(order[:], letter); i >= 0 {
		return i
	}
	return len(order)
}

// Word is a single address such as X8.562 or F100
type Word struct {
	Letter byte
	Value  float64
}

// Block is one line of a program: either words or a raw line copied from
// the configuration (header and footer)
type Block struct {
	Words []Word
	Raw   string
}

// NewBlock creates a block with its words in canonical order
func NewBlock(words ...Word) Block {
	slices.SortStableFunc(words, func(a, b Word) int {
		return rank(a.Letter) - rank(b.Letter)
	})
	return Block{Words: words}
}

// Format renders the block with numbers rounded to decimals places
func (b Block) Format(decimals int) string {
	if b.Raw != "" {
		return b.Raw
	}
	parts := make([]string, len(b.Words))
	for i, w := range b.Words {
		parts[i] = string(w.Letter) + formatNumber(w.Value, decimals)
	}
	return strings.Join(parts, " ")
}

// formatNumber trims trailing zeros: 1.500 -> 1.5, 2.000 -> 2, -0.000 -> 0
func formatNumber(v float64, decimals int) string {
	s := strconv.FormatFloat(v, 'f', decimals, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}

// Params control program generation. Coordinates are written as they come
// from the toolpaths; Z levels are absolute.
type Params struct {
	SafeZ      float64
	CutZ       float64
	Feed       float64
	PlungeFeed float64
	Decimals   int
	Header     []string
	Footer     []string
}

// DefaultParams returns conservative settings for a small router
func DefaultParams() Params {
	return Params{
		SafeZ:      5,
		CutZ:       -1,
		Feed:       600,
		PlungeFeed: 200,
		Decimals:   3,
		Header:     []string{"G21", "G90"},
		Footer:     []string{"M2"},
	}
}

// Program is a generated G-code program
type Program struct {
	Blocks   []Block
	Decimals int
}

// FromPaths translates ordered toolpaths into a program. Each path is
// entered at safe height, plunged, cut segment by segment and left again.
// Arc centres are written as I/J offsets from the arc start.
func FromPaths(paths []*toolpath.Path, params Params) *Program {
	prog := &Program{Decimals: params.Decimals}
	for _, line := range params.Header {
		prog.Blocks = append(prog.Blocks, Block{Raw: line})
	}

	for _, p := range paths {
		if p.Len() == 0 {
			continue
		}
		start := p.At(0).Start
		prog.add(Word{'G', 0}, Word{'Z', params.SafeZ})
		prog.add(Word{'G', 0}, Word{'X', start.X}, Word{'Y', start.Y})
		prog.add(Word{'G', 1}, Word{'Z', params.CutZ}, Word{'F', params.PlungeFeed})

		for _, s := range p.Segments() {
			switch s.Kind {
			case toolpath.Line:
				prog.add(Word{'G', 1}, Word{'X', s.End.X}, Word{'Y', s.End.Y}, Word{'F', params.Feed})
			case toolpath.ArcCW, toolpath.ArcCCW:
				g := 2.0
				if s.Kind == toolpath.ArcCCW {
					g = 3
				}
				ij := s.Center.Sub(s.Start)
				prog.add(Word{'G', g}, Word{'X', s.End.X}, Word{'Y', s.End.Y},
					Word{'I', ij.X}, Word{'J', ij.Y}, Word{'F', params.Feed})
			}
		}

		prog.add(Word{'G', 0}, Word{'Z', params.SafeZ})
	}

	for _, line := range params.Footer {
		prog.Blocks = append(prog.Blocks, Block{Raw: line})
	}
	return prog
}

func (p *Program) add(words ...Word) {
	p.Blocks = append(p.Blocks, NewBlock(words...))
}

// Lines returns the formatted blocks
func (p *Program) Lines() []string {
	lines := make([]string, len(p.Blocks))
	for i, b := range p.Blocks {
		lines[i] = b.Format(p.Decimals)
	}
	return lines
}

// WriteTo writes the program, one block per line
func (p *Program) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var total int64
	for _, line := range p.Lines() {
		n, err := bw.WriteString(line + "\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, bw.Flush()
}

// ReadLines reads a program for streaming. Comments (";" to end of line and
// parenthesised) and blank lines are dropped.
func ReadLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for n := 1; scanner.Scan(); n++ {
		line, err := stripComments(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read program: %w", err)
	}
	return lines, nil
}

func stripComments(line string) (string, error) {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		line = line[:i]
	}
	var b strings.Builder
	depth := 0
	for _, r := range line {
		switch {
		case r == '(':
			depth++
		case r == ')':
			if depth == 0 {
				return "", fmt.Errorf("unbalanced ')'")
			}
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	if depth != 0 {
		return "", fmt.Errorf("unterminated comment")
	}
	return strings.Join(strings.Fields(b.String()), " "), nil
}
