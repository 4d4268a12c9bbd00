// Package hierarchy backfills missing administrative codes (kabupaten/kota, kecamatan,
// kelurahan/desa) by picking deterministically from the children of a known parent code.
package hierarchy

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownLevel = errors.New("unknown hierarchy level")

// Level is an assignable tier below the province.
type Level int

const (
	Regency Level = iota + 1
	District
	Village
)

var levelNames = map[Level]string{
	Regency:  "kabkota",
	District: "kecamatan",
	Village:  "keldes",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Valid reports whether l is one of Regency, District, Village.
func (l Level) Valid() bool {
	_, ok := levelNames[l]
	return ok
}

// Depth is the position in the full chain where provinsi is 1. It matches the number of dotted
// segments in a Kemendagri code and is what the wilayah table stores.
func (l Level) Depth() int { return int(l) + 1 }

// CodeLen is the normalized code length at this level.
func (l Level) CodeLen() int {
	switch l {
	case Regency:
		return 4
	case District:
		return 6
	case Village:
		return 10
	}
	return 0
}

// tag is appended to the entity key so one record maps to unrelated candidates per level.
func (l Level) tag() string { return "_" + levelNames[l] }

// ParseLevel accepts the level names plus the English aliases regency, district, village.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kabkota", "kab_kota", "regency":
		return Regency, nil
	case "kecamatan", "district":
		return District, nil
	case "keldes", "kel_des", "village":
		return Village, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// LevelForDepth maps a wilayah depth back to an assignable level.
func LevelForDepth(depth int) (Level, error) {
	l := Level(depth - 1)
	if !l.Valid() {
		return 0, fmt.Errorf("%w: depth %d", ErrUnknownLevel, depth)
	}
	return l, nil
}
