package smiles

import (
	"fmt"
	"html"
	"math"
	"strings"

	"github.com/scienceol/chemdash/pkg/core/render"
)

const (
	bondLength = 36.0
	margin     = 24.0
	lineGap    = 3.5
	fontSize   = 14
)

type point struct{ x, y float64 }

type svgRenderer struct{}

// New returns the built-in depiction renderer: a SMILES parse followed by a
// ring-per-component 2D layout drawn as SVG.
func New() render.Renderer {
	return svgRenderer{}
}

func (svgRenderer) Render(structure string) (render.Markup, error) {
	mol, err := Parse(structure)
	if err != nil {
		return "", err
	}
	return render.Markup(Depict(mol)), nil
}

// components groups atom indexes by connectivity, in order of first appearance.
func components(mol *Molecule) [][]int {
	adj := make([][]int, len(mol.Atoms))
	for _, b := range mol.Bonds {
		adj[b.From] = append(adj[b.From], b.To)
		adj[b.To] = append(adj[b.To], b.From)
	}
	seen := make([]bool, len(mol.Atoms))
	var out [][]int
	for start := range mol.Atoms {
		if seen[start] {
			continue
		}
		comp := []int{}
		queue := []int{start}
		seen[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			comp = append(comp, cur)
			for _, n := range adj[cur] {
				if !seen[n] {
					seen[n] = true
					queue = append(queue, n)
				}
			}
		}
		out = append(out, comp)
	}
	return out
}

// layout places each component's atoms evenly on a circle sized so that
// neighbouring positions sit one bond length apart, components left to right.
func layout(mol *Molecule) (pos []point, width, height float64) {
	pos = make([]point, len(mol.Atoms))
	x := margin
	height = 2 * margin
	for _, comp := range components(mol) {
		n := len(comp)
		radius := 0.0
		switch {
		case n == 2:
			radius = bondLength / 2
		case n > 2:
			radius = bondLength / (2 * math.Sin(math.Pi/float64(n)))
		}
		cx := x + radius
		cy := margin + radius
		for i, atom := range comp {
			if n == 1 {
				pos[atom] = point{cx, cy}
				continue
			}
			angle := math.Pi + 2*math.Pi*float64(i)/float64(n)
			pos[atom] = point{cx + radius*math.Cos(angle), cy + radius*math.Sin(angle)}
		}
		x += 2*radius + margin
		height = math.Max(height, 2*radius+2*margin)
	}
	return pos, math.Max(x, 2*margin), height
}

func label(a Atom, isolated bool) string {
	if a.Symbol == "C" && a.Charge == 0 && !a.Bracket && !isolated {
		return ""
	}
	var b strings.Builder
	b.WriteString(a.Symbol)
	if a.HCount == 1 {
		b.WriteString("H")
	} else if a.HCount > 1 {
		fmt.Fprintf(&b, "H%d", a.HCount)
	}
	switch {
	case a.Charge == 1:
		b.WriteString("+")
	case a.Charge == -1:
		b.WriteString("-")
	case a.Charge > 1:
		fmt.Fprintf(&b, "%d+", a.Charge)
	case a.Charge < -1:
		fmt.Fprintf(&b, "%d-", -a.Charge)
	}
	return b.String()
}

func line(b *strings.Builder, p, q point, dashed bool) {
	dash := ""
	if dashed {
		dash = ` stroke-dasharray="4,3"`
	}
	fmt.Fprintf(b, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#222" stroke-width="1.5"%s/>`,
		p.x, p.y, q.x, q.y, dash)
}

func offset(p, q point, d float64) (point, point) {
	dx, dy := q.x-p.x, q.y-p.y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return p, q
	}
	nx, ny := -dy/l*d, dx/l*d
	return point{p.x + nx, p.y + ny}, point{q.x + nx, q.y + ny}
}

// Depict draws mol as a standalone SVG document.
func Depict(mol *Molecule) string {
	pos, width, height := layout(mol)
	degree := make([]int, len(mol.Atoms))
	for _, bd := range mol.Bonds {
		degree[bd.From]++
		degree[bd.To]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" class="molecule" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">`,
		width, height, width, height)

	for _, bd := range mol.Bonds {
		p, q := pos[bd.From], pos[bd.To]
		switch bd.Order {
		case Double:
			p1, q1 := offset(p, q, lineGap)
			p2, q2 := offset(p, q, -lineGap)
			line(&b, p1, q1, false)
			line(&b, p2, q2, false)
		case Triple, Quadruple:
			line(&b, p, q, false)
			for k := 1; k < int(bd.Order); k++ {
				d := lineGap * 2 * float64((k+1)/2)
				if k%2 == 0 {
					d = -d
				}
				pk, qk := offset(p, q, d)
				line(&b, pk, qk, false)
			}
		case Aromatic:
			line(&b, p, q, false)
			pa, qa := offset(p, q, 2*lineGap)
			line(&b, pa, qa, true)
		default:
			line(&b, p, q, false)
		}
	}

	for i, a := range mol.Atoms {
		text := label(a, degree[i] == 0)
		if text == "" {
			continue
		}
		p := pos[i]
		fmt.Fprintf(&b, `<circle cx="%.1f" cy="%.1f" r="%d" fill="#fff"/>`, p.x, p.y, fontSize-5)
		fmt.Fprintf(&b, `<text x="%.1f" y="%.1f" font-size="%d" text-anchor="middle" dominant-baseline="central" fill="%s">%s</text>`,
			p.x, p.y, fontSize, atomColor(a.Symbol), html.EscapeString(text))
	}

	b.WriteString("</svg>")
	return b.String()
}

func atomColor(symbol string) string {
	switch symbol {
	case "O":
		return "#d22"
	case "N":
		return "#22d"
	case "S":
		return "#b90"
	case "F", "Cl":
		return "#1a1"
	case "Br":
		return "#a22"
	case "P":
		return "#e70"
	}
	return "#222"
}
