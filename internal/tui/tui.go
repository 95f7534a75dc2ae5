// Package tui plays a local two-player game in the terminal. Squares are
// picked with the mouse, 'z' takes back a move and 'q' or Esc quits.
package tui

import (
	"fmt"

	"github.com/benbeisheim/chessbot-backend/internal/engine"
	"github.com/benbeisheim/chessbot-backend/internal/model"
	"github.com/gdamore/tcell/v2"
	"github.com/gofiber/fiber/v2/log"
)

const (
	boardX    = 2 // rank labels sit left of the board
	cellWidth = 3
	statusY   = 10
)

var (
	lightSquare = tcell.StyleDefault.Background(tcell.NewRGBColor(0xee, 0xee, 0xd2))
	darkSquare  = tcell.StyleDefault.Background(tcell.NewRGBColor(0x76, 0x96, 0x56))
	selected    = tcell.StyleDefault.Background(tcell.ColorYellow)
	target      = tcell.StyleDefault.Background(tcell.ColorLightSkyBlue)
	lastMove    = tcell.StyleDefault.Background(tcell.NewRGBColor(0xba, 0xca, 0x44))
)

// UI holds the screen and the position being played on it.
type UI struct {
	screen    tcell.Screen
	state     *engine.GameState
	legal     []engine.Move
	playable  []engine.Move
	inCheck   bool
	selection model.Selection
	buttons   tcell.ButtonMask
	message   string
}

func New(screen tcell.Screen, state *engine.GameState) *UI {
	u := &UI{screen: screen, state: state}
	u.refresh()
	return u
}

// Run draws the board and handles input until the player quits. The caller
// owns Init and Fini on the screen.
func (u *UI) Run() error {
	u.screen.EnableMouse()
	u.draw()
	for {
		ev := u.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if u.HandleEvent(ev) {
			return nil
		}
		u.draw()
	}
}

// HandleEvent applies one input event and reports whether to quit.
func (u *UI) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		u.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return true
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return true
			case 'z':
				u.undo()
			}
		}
	case *tcell.EventMouse:
		buttons := ev.Buttons()
		pressed := buttons&tcell.Button1 != 0 && u.buttons&tcell.Button1 == 0
		u.buttons = buttons
		if !pressed {
			break
		}
		if sq, ok := squareAt(ev.Position()); ok {
			u.click(sq)
		}
	}
	return false
}

// squareAt maps a screen cell to the board square drawn there.
func squareAt(x, y int) (engine.Square, bool) {
	if x < boardX || y < 0 || y >= 8 {
		return engine.Square{}, false
	}
	file := (x - boardX) / cellWidth
	if file >= 8 {
		return engine.Square{}, false
	}
	return engine.Square{Rank: y, File: file}, true
}

func (u *UI) click(sq engine.Square) {
	from, to, complete := u.selection.Click(sq)
	if !complete {
		return
	}
	m, ok := engine.FindMove(u.legal, from, to)
	switch {
	case !ok:
		u.selection.Reject()
	case m.IsPromotion():
		u.message = model.ErrPromotionUnsupported.Error()
		u.selection.Clear()
	default:
		u.state.MakeMove(m)
		u.refresh()
		u.selection.Clear()
		u.message = ""
		log.Debugf("%s played %s", m.Moved.Color, m.Notation())
	}
}

func (u *UI) undo() {
	last, ok := u.state.LastMove()
	if !ok {
		return
	}
	u.state.UndoMove()
	u.refresh()
	u.selection.Clear()
	u.message = ""
	log.Debugf("took back %s", last.Notation())
}

// refresh recomputes the legal moves after the position changes.
func (u *UI) refresh() {
	u.legal = u.state.ValidMoves()
	u.playable = model.PlayableMoves(u.legal)
	u.inCheck = u.state.InCheck()
}

func (u *UI) draw() {
	u.screen.Clear()

	sel, hasSel := u.selection.Selected()
	targets := make(map[engine.Square]bool)
	for _, sq := range u.selection.Targets(u.playable) {
		targets[sq] = true
	}
	last, hasLast := u.state.LastMove()

	for rank := 0; rank < 8; rank++ {
		u.screen.SetContent(0, rank, rune('8'-rank), nil, tcell.StyleDefault)
		for file := 0; file < 8; file++ {
			sq := engine.Square{Rank: rank, File: file}
			style := lightSquare
			if (rank+file)%2 == 1 {
				style = darkSquare
			}
			switch {
			case hasSel && sq == sel:
				style = selected
			case targets[sq]:
				style = target
			case hasLast && (sq == last.From || sq == last.To):
				style = lastMove
			}
			u.drawSquare(sq, style)
		}
	}
	for file := 0; file < 8; file++ {
		u.screen.SetContent(boardX+file*cellWidth+1, 8, rune('a'+file), nil, tcell.StyleDefault)
	}
	u.drawText(0, statusY, u.status())
	u.drawText(0, statusY+1, u.message)
	u.screen.Show()
}

func (u *UI) drawSquare(sq engine.Square, style tcell.Style) {
	p := u.state.Board.At(sq)
	glyph := ' '
	if !p.IsEmpty() {
		glyph = rune(p.Letter())
		if p.Color == engine.White {
			style = style.Foreground(tcell.ColorWhite).Bold(true)
		} else {
			style = style.Foreground(tcell.ColorBlack)
		}
	}
	x := boardX + sq.File*cellWidth
	u.screen.SetContent(x, sq.Rank, ' ', nil, style)
	u.screen.SetContent(x+1, sq.Rank, glyph, nil, style)
	u.screen.SetContent(x+2, sq.Rank, ' ', nil, style)
}

func (u *UI) drawText(x, y int, s string) {
	for i, r := range []rune(s) {
		u.screen.SetContent(x+i, y, r, nil, tcell.StyleDefault)
	}
}

func (u *UI) status() string {
	s := fmt.Sprintf("%s to move", u.state.ToMove)
	if u.inCheck {
		s += ", in check"
	}
	if len(u.playable) == 0 {
		s += ", no legal moves"
	}
	return s
}
