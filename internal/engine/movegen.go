package engine

type direction struct {
	dr, df int
}

var (
	rookDirs   = []direction{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopDirs = []direction{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
	queenDirs  = append(append([]direction{}, rookDirs...), bishopDirs...)
	knightDirs = []direction{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
)

type generator func(gs *GameState, from Square, moves []Move) []Move

var generators = [...]generator{
	Pawn:   pawnMoves,
	Rook:   rookMoves,
	Knight: knightMoves,
	Bishop: bishopMoves,
	Queen:  queenMoves,
	King:   kingMoves,
}

// AllPossibleMoves returns the pseudo-legal moves of the side to move,
// scanning squares rank by rank and file by file.
func (gs *GameState) AllPossibleMoves() []Move {
	moves := make([]Move, 0, 64)
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			p := gs.Board[rank][file]
			if p.IsEmpty() || p.Color != gs.ToMove {
				continue
			}
			moves = generators[p.Type](gs, Square{Rank: rank, File: file}, moves)
		}
	}
	return moves
}

// PieceMoves returns the pseudo-legal moves of the piece on from, or nil if
// the square is empty or holds a piece of the side not to move.
func (gs *GameState) PieceMoves(from Square) []Move {
	p := gs.Board.At(from)
	if p.IsEmpty() || p.Color != gs.ToMove {
		return nil
	}
	return generators[p.Type](gs, from, nil)
}

func pawnMoves(gs *GameState, from Square, moves []Move) []Move {
	forward, home := -1, 6
	if gs.ToMove == Black {
		forward, home = 1, 1
	}
	enemy := gs.ToMove.Opponent()

	one := from.offset(forward, 0)
	if !one.Valid() {
		return moves
	}
	if gs.Board.At(one).IsEmpty() {
		moves = append(moves, NewMove(from, one, &gs.Board))
		two := from.offset(2*forward, 0)
		if from.Rank == home && gs.Board.At(two).IsEmpty() {
			moves = append(moves, NewMove(from, two, &gs.Board))
		}
	}
	for _, df := range [2]int{-1, 1} {
		to := from.offset(forward, df)
		if !to.Valid() {
			continue
		}
		if target := gs.Board.At(to); !target.IsEmpty() && target.Color == enemy {
			moves = append(moves, NewMove(from, to, &gs.Board))
		}
	}
	return moves
}

// slide walks each ray until the edge or the first occupied square, which is
// included only when it holds an enemy piece.
func slide(gs *GameState, from Square, dirs []direction, moves []Move) []Move {
	for _, d := range dirs {
		for to := from.offset(d.dr, d.df); to.Valid(); to = to.offset(d.dr, d.df) {
			target := gs.Board.At(to)
			if target.IsEmpty() {
				moves = append(moves, NewMove(from, to, &gs.Board))
				continue
			}
			if target.Color != gs.ToMove {
				moves = append(moves, NewMove(from, to, &gs.Board))
			}
			break
		}
	}
	return moves
}

// step tries each offset once.
func step(gs *GameState, from Square, dirs []direction, moves []Move) []Move {
	for _, d := range dirs {
		to := from.offset(d.dr, d.df)
		if !to.Valid() {
			continue
		}
		if target := gs.Board.At(to); target.IsEmpty() || target.Color != gs.ToMove {
			moves = append(moves, NewMove(from, to, &gs.Board))
		}
	}
	return moves
}

func rookMoves(gs *GameState, from Square, moves []Move) []Move {
	return slide(gs, from, rookDirs, moves)
}

func bishopMoves(gs *GameState, from Square, moves []Move) []Move {
	return slide(gs, from, bishopDirs, moves)
}

func queenMoves(gs *GameState, from Square, moves []Move) []Move {
	return slide(gs, from, queenDirs, moves)
}

func knightMoves(gs *GameState, from Square, moves []Move) []Move {
	return step(gs, from, knightDirs, moves)
}

func kingMoves(gs *GameState, from Square, moves []Move) []Move {
	return step(gs, from, queenDirs, moves)
}
