package engine

import "golang.org/x/exp/slices"

// ValidMoves returns the pseudo-legal moves that do not leave the mover's
// king attacked, in generation order. Each candidate is played and taken
// back on the receiver.
func (gs *GameState) ValidMoves() []Move {
	moves := gs.AllPossibleMoves()
	for i := len(moves) - 1; i >= 0; i-- {
		gs.MakeMove(moves[i])
		gs.ToMove = gs.ToMove.Opponent()
		if gs.InCheck() {
			moves = slices.Delete(moves, i, i+1)
		}
		gs.ToMove = gs.ToMove.Opponent()
		gs.UndoMove()
	}
	return moves
}

// InCheck reports whether the king of the side to move is attacked.
func (gs *GameState) InCheck() bool {
	return gs.SquareUnderAttack(gs.KingSquare(gs.ToMove))
}

// SquareUnderAttack reports whether any pseudo-legal move of the opponent
// ends on sq.
func (gs *GameState) SquareUnderAttack(sq Square) bool {
	gs.ToMove = gs.ToMove.Opponent()
	opponent := gs.AllPossibleMoves()
	gs.ToMove = gs.ToMove.Opponent()
	for _, m := range opponent {
		if m.To == sq {
			return true
		}
	}
	return false
}

// NoLegalMoves reports whether the side to move has no legal move. Whether
// that is mate or stalemate is left to the caller.
func (gs *GameState) NoLegalMoves() bool {
	return len(gs.ValidMoves()) == 0
}
