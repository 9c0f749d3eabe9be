// Package cli plays tic-tac-toe in a terminal.
package cli

import (
	"strconv"
	"strings"

	"github.com/muesli/termenv"

	"github.com/jaminalder/tic-tac-toe-ai/internal/domain"
)

// Palette colors the marks of a rendered board.
type Palette struct {
	X, O, Hint termenv.Color
}

// DefaultPalette uses red X, blue O and grey cell numbers.
func DefaultPalette(o *termenv.Output) Palette {
	return Palette{X: o.Color("9"), O: o.Color("12"), Hint: o.Color("8")}
}

// RenderBoard draws b; empty cells show their 1-based number.
func RenderBoard(o *termenv.Output, p Palette, b domain.Board) string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		if r > 0 {
			sb.WriteString("---+---+---\n")
		}
		for c := 0; c < 3; c++ {
			if c > 0 {
				sb.WriteString("|")
			}
			i := r*3 + c
			sb.WriteString(" ")
			sb.WriteString(cell(o, p, b[i], i))
			sb.WriteString(" ")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func cell(o *termenv.Output, p Palette, c domain.Cell, i int) string {
	switch c {
	case domain.X:
		return o.String("X").Foreground(p.X).Bold().String()
	case domain.O:
		return o.String("O").Foreground(p.O).Bold().String()
	default:
		return o.String(strconv.Itoa(i + 1)).Foreground(p.Hint).Faint().String()
	}
}
