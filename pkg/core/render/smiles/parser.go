package smiles

import (
	"strings"

	"github.com/scienceol/chemdash/pkg/common/code"
)

type BondOrder int

const (
	Single BondOrder = iota + 1
	Double
	Triple
	Quadruple
	Aromatic
)

type Atom struct {
	Symbol   string
	Aromatic bool
	Charge   int
	HCount   int
	Bracket  bool
}

type Bond struct {
	From  int
	To    int
	Order BondOrder
}

type Molecule struct {
	Atoms []Atom
	Bonds []Bond
}

var elements = func() map[string]bool {
	m := map[string]bool{}
	for _, s := range strings.Fields(`H He Li Be B C N O F Ne Na Mg Al Si P S Cl Ar K Ca
		Sc Ti V Cr Mn Fe Co Ni Cu Zn Ga Ge As Se Br Kr Rb Sr Y Zr Nb Mo Tc Ru Rh Pd Ag Cd
		In Sn Sb Te I Xe Cs Ba La Ce Pr Nd Pm Sm Eu Gd Tb Dy Ho Er Tm Yb Lu Hf Ta W Re Os
		Ir Pt Au Hg Tl Pb Bi Po At Rn Fr Ra Ac Th Pa U Np Pu Am Cm Bk Cf Es Fm Md No Lr
		Rf Db Sg Bh Hs Mt Ds Rg Cn Nh Fl Mc Lv Ts Og`) {
		m[s] = true
	}
	return m
}()

var aromaticBracket = map[string]bool{
	"b": true, "c": true, "n": true, "o": true, "p": true, "s": true, "se": true, "as": true, "te": true,
}

type ringOpen struct {
	atom  int
	order BondOrder
}

type parser struct {
	src     string
	pos     int
	mol     *Molecule
	prev    int
	pending BondOrder
	branch  []int
	rings   map[int]ringOpen
}

// Parse reads a SMILES string into a molecule graph. It covers the organic
// subset, bracket atoms, bonds, branches, ring closures (including %nn) and
// dot-separated components. Stereo marks are accepted and ignored.
func Parse(s string) (*Molecule, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, code.RenderErr.WithMsg("empty structure")
	}
	p := &parser{src: s, mol: &Molecule{}, prev: -1, rings: map[int]ringOpen{}}
	if err := p.run(); err != nil {
		return nil, err
	}
	return p.mol, nil
}

func (p *parser) fail(format string, args ...any) error {
	return code.RenderErr.WithMsgf("at %d: "+format, append([]any{p.pos}, args...)...)
}

func (p *parser) run() error {
	for p.pos < len(p.src) {
		ch := p.src[p.pos]
		switch {
		case ch == '(':
			if p.prev < 0 {
				return p.fail("branch without a preceding atom")
			}
			p.branch = append(p.branch, p.prev)
			p.pos++
		case ch == ')':
			if len(p.branch) == 0 {
				return p.fail("unbalanced ')'")
			}
			if p.pending != 0 {
				return p.fail("dangling bond before ')'")
			}
			p.prev = p.branch[len(p.branch)-1]
			p.branch = p.branch[:len(p.branch)-1]
			p.pos++
		case strings.IndexByte(`-=#$:/\`, ch) >= 0:
			if p.prev < 0 {
				return p.fail("bond without a preceding atom")
			}
			if p.pending != 0 {
				return p.fail("two bond symbols in a row")
			}
			p.pending = bondOrder(ch)
			p.pos++
		case ch == '.':
			if p.prev < 0 || p.pending != 0 {
				return p.fail("misplaced '.'")
			}
			p.prev = -1
			p.pos++
		case ch >= '0' && ch <= '9':
			if err := p.ring(int(ch - '0')); err != nil {
				return err
			}
			p.pos++
		case ch == '%':
			if p.pos+2 >= len(p.src) {
				return p.fail("truncated ring number")
			}
			d1, d2 := p.src[p.pos+1], p.src[p.pos+2]
			if d1 < '0' || d1 > '9' || d2 < '0' || d2 > '9' {
				return p.fail("bad ring number")
			}
			if err := p.ring(int(d1-'0')*10 + int(d2-'0')); err != nil {
				return err
			}
			p.pos += 3
		case ch == '[':
			if err := p.bracketAtom(); err != nil {
				return err
			}
		default:
			if err := p.organicAtom(); err != nil {
				return err
			}
		}
	}

	switch {
	case len(p.branch) > 0:
		return p.fail("unclosed branch")
	case len(p.rings) > 0:
		return p.fail("unclosed ring bond")
	case p.pending != 0:
		return p.fail("dangling bond")
	case len(p.mol.Atoms) == 0:
		return p.fail("no atoms")
	}
	return nil
}

func bondOrder(ch byte) BondOrder {
	switch ch {
	case '=':
		return Double
	case '#':
		return Triple
	case '$':
		return Quadruple
	case ':':
		return Aromatic
	}
	return Single
}

func (p *parser) ring(n int) error {
	if p.prev < 0 {
		return p.fail("ring bond without a preceding atom")
	}
	open, ok := p.rings[n]
	if !ok {
		p.rings[n] = ringOpen{atom: p.prev, order: p.pending}
		p.pending = 0
		return nil
	}
	if open.atom == p.prev {
		return p.fail("ring bond %d closes on itself", n)
	}
	order := open.order
	if p.pending != 0 {
		if order != 0 && order != p.pending {
			return p.fail("conflicting ring bond %d orders", n)
		}
		order = p.pending
	}
	p.bond(open.atom, p.prev, order)
	delete(p.rings, n)
	p.pending = 0
	return nil
}

func (p *parser) organicAtom() error {
	rest := p.src[p.pos:]
	var a Atom
	switch {
	case strings.HasPrefix(rest, "Cl"):
		a = Atom{Symbol: "Cl"}
	case strings.HasPrefix(rest, "Br"):
		a = Atom{Symbol: "Br"}
	default:
		switch ch := rest[0]; ch {
		case 'B', 'C', 'N', 'O', 'P', 'S', 'F', 'I', '*':
			a = Atom{Symbol: string(ch)}
		case 'b', 'c', 'n', 'o', 'p', 's':
			a = Atom{Symbol: strings.ToUpper(string(ch)), Aromatic: true}
		default:
			return p.fail("unexpected character %q", ch)
		}
	}
	p.pos += len(a.Symbol)
	p.add(a)
	return nil
}

func (p *parser) bracketAtom() error {
	end := strings.IndexByte(p.src[p.pos:], ']')
	if end < 0 {
		return p.fail("unclosed '['")
	}
	body := p.src[p.pos+1 : p.pos+end]
	a, err := parseBracket(body)
	if err != nil {
		return p.fail("%v", err)
	}
	p.pos += end + 1
	p.add(a)
	return nil
}

func parseBracket(body string) (Atom, error) {
	a := Atom{Bracket: true}
	i := 0
	for i < len(body) && body[i] >= '0' && body[i] <= '9' {
		i++
	}

	switch {
	case i < len(body) && body[i] == '*':
		a.Symbol = "*"
		i++
	case i+1 < len(body) && aromaticBracket[body[i:i+2]]:
		a.Symbol = strings.ToUpper(body[i:i+1]) + body[i+1:i+2]
		a.Aromatic = true
		i += 2
	case i < len(body) && aromaticBracket[body[i:i+1]]:
		a.Symbol = strings.ToUpper(body[i : i+1])
		a.Aromatic = true
		i++
	case i < len(body) && body[i] >= 'A' && body[i] <= 'Z':
		sym := body[i : i+1]
		if i+1 < len(body) && body[i+1] >= 'a' && body[i+1] <= 'z' && elements[body[i:i+2]] {
			sym = body[i : i+2]
		}
		if !elements[sym] {
			return a, code.RenderErr.WithMsgf("unknown element %q", sym)
		}
		a.Symbol = sym
		i += len(sym)
	default:
		return a, code.RenderErr.WithMsgf("bad bracket atom %q", body)
	}

	for i < len(body) && body[i] == '@' {
		i++
	}

	if i < len(body) && body[i] == 'H' {
		i++
		a.HCount = 1
		if i < len(body) && body[i] >= '0' && body[i] <= '9' {
			a.HCount = int(body[i] - '0')
			i++
		}
	}

	for i < len(body) && (body[i] == '+' || body[i] == '-') {
		sign := 1
		if body[i] == '-' {
			sign = -1
		}
		i++
		n := 1
		if i < len(body) && body[i] >= '0' && body[i] <= '9' {
			n = int(body[i] - '0')
			i++
		}
		a.Charge += sign * n
	}

	if i < len(body) && body[i] == ':' {
		i++
		for i < len(body) && body[i] >= '0' && body[i] <= '9' {
			i++
		}
	}

	if i != len(body) {
		return a, code.RenderErr.WithMsgf("trailing characters in [%s]", body)
	}
	return a, nil
}

func (p *parser) add(a Atom) {
	idx := len(p.mol.Atoms)
	p.mol.Atoms = append(p.mol.Atoms, a)
	if p.prev >= 0 {
		p.bond(p.prev, idx, p.pending)
	}
	p.pending = 0
	p.prev = idx
}

func (p *parser) bond(from, to int, order BondOrder) {
	if order == 0 {
		order = Single
		if p.mol.Atoms[from].Aromatic && p.mol.Atoms[to].Aromatic {
			order = Aromatic
		}
	}
	p.mol.Bonds = append(p.mol.Bonds, Bond{From: from, To: to, Order: order})
}
