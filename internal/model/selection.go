package model

import "github.com/benbeisheim/chessbot-backend/internal/engine"

// Selection turns square clicks into move candidates. The first click picks
// a square, clicking it again clears it, and a second click on another
// square completes a candidate. A rejected candidate keeps the second click
// as the new first click.
type Selection struct {
	clicks []engine.Square
}

// Click records sq and reports a (from, to) candidate once two distinct
// squares have been clicked.
func (s *Selection) Click(sq engine.Square) (from, to engine.Square, complete bool) {
	if len(s.clicks) == 1 && s.clicks[0] == sq {
		s.clicks = nil
		return from, to, false
	}
	s.clicks = append(s.clicks, sq)
	if len(s.clicks) < 2 {
		return from, to, false
	}
	return s.clicks[0], s.clicks[1], true
}

// Reject drops the first click of a completed candidate.
func (s *Selection) Reject() {
	if len(s.clicks) == 2 {
		s.clicks = s.clicks[1:]
	}
}

func (s *Selection) Clear() {
	s.clicks = nil
}

func (s *Selection) Selected() (engine.Square, bool) {
	if len(s.clicks) == 0 {
		return engine.Square{}, false
	}
	return s.clicks[len(s.clicks)-1], true
}

// Targets returns the end squares of the moves starting on the selected square.
func (s *Selection) Targets(legal []engine.Move) []engine.Square {
	from, ok := s.Selected()
	if !ok {
		return nil
	}
	var out []engine.Square
	for _, m := range legal {
		if m.From == from {
			out = append(out, m.To)
		}
	}
	return out
}
