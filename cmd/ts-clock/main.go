// ts-clock renders a large terminal clock with millisecond precision, so
// a camera pointed at the lab bench captures a wall-clock reference
// alongside the devices under test.
package main

import (
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// Each glyph is 5 lines high; rendering doubles it in both directions.
var digitArt = map[rune][]string{
	'0': {" AAA ", "A   A", "A   A", "A   A", " AAA "},
	'1': {"  A  ", " AA  ", "  A  ", "  A  ", " AAA "},
	'2': {" AAA ", "    A", " AAA ", "A    ", " AAA "},
	'3': {" AAA ", "    A", "  AA ", "    A", " AAA "},
	'4': {"A   A", "A   A", " AAA ", "    A", "    A"},
	'5': {" AAA ", "A    ", " AAA ", "    A", " AAA "},
	'6': {" AAA ", "A    ", " AAA ", "A   A", " AAA "},
	'7': {"AAAAA", "    A", "   A ", "  A  ", " A   "},
	'8': {" AAA ", "A   A", " AAA ", "A   A", " AAA "},
	'9': {" AAA ", "A   A", " AAA ", "    A", " AAA "},
	'.': {"     ", "  .  ", "     ", "  .  ", "     "},
	'-': {"     ", " --- ", "     ", " --- ", "     "},
}

var blankArt = []string{"     ", "     ", "     ", "     ", "     "}

// scale doubles a glyph horizontally and vertically.
func scale(art []string) []string {
	out := make([]string, 0, 2*len(art))
	for _, line := range art {
		var b strings.Builder
		for _, c := range line {
			b.WriteRune(c)
			b.WriteRune(c)
		}
		out = append(out, b.String(), b.String())
	}
	return out
}

// renderTime lays the scaled glyphs of a time string side by side.
func renderTime(s string) string {
	const height = 10
	lines := make([]string, height)
	for _, c := range s {
		art, ok := digitArt[c]
		if !ok {
			art = blankArt
		}
		for i, line := range scale(art) {
			lines[i] += line + "  "
		}
	}
	return strings.Join(lines, "\n")
}

func main() {
	app := tview.NewApplication()

	view := tview.NewTextView().SetTextAlign(tview.AlignCenter)
	view.SetBackgroundColor(tcell.ColorBlack)
	view.SetTextColor(tcell.ColorGreen)

	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return ev
	})

	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for now := range ticker.C {
			text := renderTime(now.Format("15-04-05.000"))
			app.QueueUpdateDraw(func() {
				view.SetText(text)
			})
		}
	}()

	if err := app.SetRoot(view, true).Run(); err != nil {
		panic(err)
	}
}
