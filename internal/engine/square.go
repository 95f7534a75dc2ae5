package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidSquare = errors.New("invalid square")

// Square addresses a cell by rank and file. Rank 0 is the eighth rank and
// file 0 is the a-file, matching the order the board is drawn in.
type Square struct {
	Rank int
	File int
}

func (s Square) Valid() bool {
	return s.Rank >= 0 && s.Rank < 8 && s.File >= 0 && s.File < 8
}

func (s Square) offset(dr, df int) Square {
	return Square{Rank: s.Rank + dr, File: s.File + df}
}

func (s Square) String() string {
	if !s.Valid() {
		return "??"
	}
	return fmt.Sprintf("%c%d", 'a'+s.File, 8-s.Rank)
}

// ParseSquare converts algebraic notation such as "e2" into a Square.
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	sq := Square{Rank: int('8' - s[1]), File: int(s[0] - 'a')}
	if !sq.Valid() {
		return Square{}, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return sq, nil
}

// MarshalText lets squares travel as "e2" in JSON.
func (s Square) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d,%d", ErrInvalidSquare, s.Rank, s.File)
	}
	return []byte(s.String()), nil
}

func (s *Square) UnmarshalText(text []byte) error {
	sq, err := ParseSquare(string(text))
	if err != nil {
		return err
	}
	*s = sq
	return nil
}
