// Package cigar holds the run-length alignment operations shared by the
// encoder and the deletion fill.
package cigar

import (
	"fmt"
	"log"
	"strings"

	"github.com/biogo/hts/sam"
)

type OpKind uint8

const (
	Match OpKind = iota
	Ins          // query bases absent from the reference
	Del          // reference bases absent from the query
)

func (k OpKind) String() string {
	switch k {
	case Match:
		return "M"
	case Ins:
		return "I"
	case Del:
		return "D"
	}
	return "?"
}

type Op struct {
	Kind OpKind
	Len  int
}

func (op Op) String() string {
	return fmt.Sprintf("%d%v", op.Len, op.Kind)
}

type Cigar []Op

func (cg Cigar) String() string {
	var sb strings.Builder
	for _, op := range cg {
		sb.WriteString(op.String())
	}
	return sb.String()
}

// Push append op, merge into the last op if the kind is the same
func (cg Cigar) Push(op Op) Cigar {
	if op.Len <= 0 {
		return cg
	}
	if n := len(cg); n > 0 && cg[n-1].Kind == op.Kind {
		cg[n-1].Len += op.Len
		return cg
	}
	return append(cg, op)
}

// Coalesce return a new Cigar in which no two adjacent ops share a kind,
// zero length ops are dropped.
func Coalesce(ops []Op) Cigar {
	cg := make(Cigar, 0, len(ops))
	for _, op := range ops {
		cg = cg.Push(op)
	}
	return cg
}

// RefLen return the number of reference bases consumed
func (cg Cigar) RefLen() (l int) {
	for _, op := range cg {
		if op.Kind == Match || op.Kind == Del {
			l += op.Len
		}
	}
	return
}

// QueryLen return the number of query bases consumed
func (cg Cigar) QueryLen() (l int) {
	for _, op := range cg {
		if op.Kind == Match || op.Kind == Ins {
			l += op.Len
		}
	}
	return
}

func (cg Cigar) MatchLen() (l int) {
	for _, op := range cg {
		if op.Kind == Match {
			l += op.Len
		}
	}
	return
}

// MaxIndel return the longest Ins or Del run
func (cg Cigar) MaxIndel() (max int) {
	for _, op := range cg {
		if op.Kind != Match && op.Len > max {
			max = op.Len
		}
	}
	return
}

func (cg Cigar) Equal(o Cigar) bool {
	if len(cg) != len(o) {
		return false
	}
	for i := range cg {
		if cg[i] != o[i] {
			return false
		}
	}
	return true
}

// FromSam convert a sam.Cigar, clipping ops are skipped and the leading clip
// length is returned so the caller can locate the query start.
func FromSam(sc sam.Cigar) (cg Cigar, leadClip int) {
	for _, co := range sc {
		switch co.Type() {
		case sam.CigarMatch, sam.CigarEqual, sam.CigarMismatch:
			cg = cg.Push(Op{Match, co.Len()})
		case sam.CigarInsertion:
			cg = cg.Push(Op{Ins, co.Len()})
		case sam.CigarDeletion, sam.CigarSkipped:
			cg = cg.Push(Op{Del, co.Len()})
		case sam.CigarSoftClipped, sam.CigarHardClipped:
			if len(cg) == 0 {
				leadClip += co.Len()
			}
		case sam.CigarPadded:
		default:
			log.Panicf("[FromSam] unsupported cigar op: %v\n", co)
		}
	}
	return
}

func (cg Cigar) ToSam() sam.Cigar {
	sc := make(sam.Cigar, len(cg))
	for i, op := range cg {
		var t sam.CigarOpType
		switch op.Kind {
		case Match:
			t = sam.CigarMatch
		case Ins:
			t = sam.CigarInsertion
		case Del:
			t = sam.CigarDeletion
		}
		sc[i] = sam.NewCigarOp(t, op.Len)
	}
	return sc
}

// Parse decode a text CIGAR such as the minimap2 cg:Z tag
func Parse(s string) (Cigar, error) {
	if s == "" || s == "*" {
		return nil, nil
	}
	sc, err := sam.ParseCigar([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("parse cigar %q: %w", s, err)
	}
	cg, _ := FromSam(sc)
	return cg, nil
}

// Recover return the three line text view of an alignment: query, the match
// line ('|' identical, 'X' substitution, ' ' gap) and reference.
func Recover(query, refr []byte, cg Cigar) (q, al, r []byte) {
	qPos, rPos := 0, 0
	for _, op := range cg {
		switch op.Kind {
		case Match:
			for i := 0; i < op.Len; i++ {
				if query[qPos+i] == refr[rPos+i] {
					al = append(al, '|')
				} else {
					al = append(al, 'X')
				}
			}
			q = append(q, query[qPos:qPos+op.Len]...)
			r = append(r, refr[rPos:rPos+op.Len]...)
			qPos += op.Len
			rPos += op.Len
		case Del:
			al = append(al, strings.Repeat(" ", op.Len)...)
			q = append(q, strings.Repeat(" ", op.Len)...)
			r = append(r, refr[rPos:rPos+op.Len]...)
			rPos += op.Len
		case Ins:
			al = append(al, strings.Repeat(" ", op.Len)...)
			q = append(q, query[qPos:qPos+op.Len]...)
			r = append(r, strings.Repeat(" ", op.Len)...)
			qPos += op.Len
		}
	}
	return
}
