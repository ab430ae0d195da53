// Package ast declares the types used to represent syntax trees for object
// queries.  A tree is produced by the parser in this module or decoded from
// the JSON form emitted by an external parser.
package ast

// Node is anything with a location in the query text.  Positions are byte
// offsets and are -1 for a node with no source location.
type Node interface {
	Pos() int // Offset of the first byte of the node.
	End() int // Offset of the last byte of the node.
}

// Loc is embedded by every node.
type Loc struct {
	First int `json:"first"`
	Last  int `json:"last"`
}

func NewLoc(pos, end int) Loc {
	return Loc{pos, end}
}

func (l Loc) Pos() int { return l.First }
func (l Loc) End() int { return l.Last }
