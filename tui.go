package main

import (
	"fmt"
	"math"
	"time"

	"github.com/nsf/termbox-go"
)

const (
	colDef    = termbox.ColorDefault
	colWhite  = termbox.ColorWhite
	colRed    = termbox.ColorRed
	colGreen  = termbox.ColorGreen
	colYellow = termbox.ColorYellow
	colBlue   = termbox.ColorBlue
	colCyan   = termbox.ColorCyan
)

// ratioStep is the amount each arrow-key press nudges the live ratio by.
const ratioStep = 0.001

// TUIState holds the interactive monitor's view of a running Engine.
type TUIState struct {
	engine *Engine
	exit   bool
}

func runTUI(engine *Engine) {
	err := termbox.Init()
	if err != nil {
		//nolint:forbidigo // TUI initialization error requires direct output
		fmt.Printf("Failed to initialize TUI: %v\n", err)
		return
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	state := &TUIState{engine: engine}

	eventQueue := make(chan termbox.Event)

	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	draw(state)

	for !state.exit {
		select {
		case ev := <-eventQueue:
			switch ev.Type {
			case termbox.EventKey:
				handleKey(ev, state)
				draw(state)
			case termbox.EventResize:
				draw(state)
			}
		case <-ticker.C:
			draw(state)
		}
	}
}

func handleKey(ev termbox.Event, s *TUIState) {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		s.exit = true
		return
	}

	change := 0.0
	switch ev.Key {
	case termbox.KeyArrowUp:
		change = ratioStep
	case termbox.KeyArrowDown:
		change = -ratioStep
	}
	if change == 0 {
		return
	}

	if err := s.engine.SetRatio(s.engine.TargetRatio() + change); err != nil {
		// Out of bounds or otherwise rejected; leave ratio unchanged.
		return
	}
}

func draw(state *TUIState) {
	_ = termbox.Clear(colDef, colDef)

	stats := state.engine.Snapshot()

	printTB(0, 0, colCyan, colDef, "Async Sinc Resampler Monitor")
	printTB(0, 1, colWhite, colDef,
		fmt.Sprintf("Channels: %d   Mode: %s   Interpolation: %s",
			state.engine.NbrChannels(), state.engine.Mode(), state.engine.Interpolation()))
	printTB(0, 2, colDef, colDef, "Up/Down to nudge ratio. 'q' or Esc to quit.")
	printTB(0, 3, colDef, colDef, "----------------------------------------------------")

	printTB(0, 5, colWhite, colDef, fmt.Sprintf("Ratio:           %.6f", stats.Ratio))
	printTB(0, 6, colWhite, colDef, fmt.Sprintf("Target ratio:    %.6f", stats.TargetRatio))
	printTB(0, 7, colWhite, colDef, fmt.Sprintf("Input frames:    %d (next read)", stats.InputFramesNext))
	printTB(0, 8, colWhite, colDef, fmt.Sprintf("Output frames:   %d (next write)", stats.OutputFramesNext))
	printTB(0, 9, colWhite, colDef, fmt.Sprintf("Output delay:    %d frames", stats.OutputDelay))
	printTB(0, 10, colWhite, colDef, fmt.Sprintf("Buffer fill:     %.1f%%", stats.BufferFillFraction*100))
	printTB(0, 11, colWhite, colDef, fmt.Sprintf("Frames total:    %d", stats.FramesTotal))

	meterY := 13
	printTB(0, meterY, colYellow, colDef, "Meters:")

	for ch := range stats.InPeak {
		drawMeter(meterY+2+ch*2, fmt.Sprintf("In  %d", ch), linToDBTUI(stats.InPeak[ch]), colGreen)
		drawMeter(meterY+3+ch*2, fmt.Sprintf("Out %d", ch), linToDBTUI(stats.OutPeak[ch]), colBlue)
	}

	termbox.Flush()
}

func linToDBTUI(l float64) float64 {
	if l <= 1e-9 {
		return -96.0
	}
	return 20 * math.Log10(l)
}

func drawMeter(yPos int, label string, db float64, color termbox.Attribute) {
	const (
		barWidth = 60
		xPos     = 2
		minDB    = -96.0
		maxDB    = 6.0
	)

	if db < minDB {
		db = minDB
	}

	if db > maxDB {
		db = maxDB
	}

	ratio := (db - minDB) / (maxDB - minDB)
	filled := int(ratio * float64(barWidth))

	printTB(xPos, yPos, colDef, colDef, fmt.Sprintf("%s [%-6.1f dB] ", label, db))

	startX := xPos + 15

	for i := range barWidth {
		var barChar rune
		bgCol := colDef

		if i < filled {
			barChar = '█'
		} else {
			barChar = '░'
		}

		termbox.SetCell(startX+i, yPos, barChar, color, bgCol)
	}
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
