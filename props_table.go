package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/chalskim/adSTTS/extra"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	CellTypeCheckbox  = "checkbox"
	CellTypeInput     = "input"
	CellTypeListPopup = "listpopup"
)

// CellData holds what a selectable value cell does when chosen.
type CellData struct {
	Type     string
	Options  []string
	OnChange interface{}
}

var (
	sttBackends   = []string{"WHISPER_BINARY", "WHISPER_SERVER", "OPENAI"}
	whisperModels = []string{"tiny", "base", "small", "medium", "large"}
	logLevels     = []string{"debug", "info", "warn", "error"}
)

func currentLogLevel() string {
	return strings.ToLower(logLevel.Level().String())
}

func setLogLevel(name string) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(name)); err != nil {
		logger.Warn("bad log level", "level", name, "error", err)
		return
	}
	logLevel.Set(l)
}

// makePropsTable shows the session settings that can be changed without
// editing config.toml, followed by the external tool status.
func makePropsTable() *tview.Table {
	table := tview.NewTable().
		SetBorders(true).
		SetSelectable(true, false).
		SetSelectedStyle(tcell.StyleDefault.Background(tcell.ColorGray).Foreground(tcell.ColorWhite))
	table.SetTitle(" settings (press 'x' to exit) ").
		SetTitleAlign(tview.AlignLeft)
	row := 0
	table.SetCell(row, 0, tview.NewTableCell("Settings for this session").
		SetTextColor(tcell.ColorYellow).
		SetSelectable(false))
	table.SetCell(row, 1, tview.NewTableCell("press 'x' to exit").
		SetTextColor(tcell.ColorYellow).
		SetSelectable(false))
	row++
	cellData := make(map[string]*CellData)
	addRow := func(kind, label, value string, options []string, onChange interface{}) {
		table.SetCell(row, 0, tview.NewTableCell(label).
			SetTextColor(tcell.ColorWhite).
			SetSelectable(false))
		table.SetCell(row, 1, tview.NewTableCell(value).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter))
		cellData[fmt.Sprintf("%s_%d", kind, row)] = &CellData{
			Type:     kind,
			Options:  options,
			OnChange: onChange,
		}
		row++
	}
	yesNo := "No"
	if cfg.Notify() {
		yesNo = "Yes"
	}
	addRow(CellTypeCheckbox, "Desktop notifications", yesNo, nil, func(checked bool) {
		cfg.NotifyEnabled = &checked
	})
	addRow(CellTypeListPopup, "Log level", currentLogLevel(), logLevels, setLogLevel)
	addRow(CellTypeListPopup, "STT backend", cfg.STT_TYPE, sttBackends, func(option string) {
		cfg.STT_TYPE = option
	})
	addRow(CellTypeListPopup, "Whisper model", cfg.WhisperModel, whisperModels, func(option string) {
		cfg.WhisperModel = option
	})
	addRow(CellTypeInput, "STT language (empty = auto)", cfg.STT_LANG, nil, func(text string) error {
		cfg.STT_LANG = strings.TrimSpace(text)
		return nil
	})
	addRow(CellTypeListPopup, "TTS language", cfg.TTS_LANGUAGE, extra.LanguageNames(), func(option string) {
		cfg.TTS_LANGUAGE = option
	})
	addRow(CellTypeInput, "TTS speaker", cfg.TTS_SPEAKER, nil, func(text string) error {
		cfg.TTS_SPEAKER = strings.TrimSpace(text)
		return nil
	})
	addRow(CellTypeInput, "TTS speed (0.5-2.0)", strconv.FormatFloat(float64(cfg.TTS_SPEED), 'f', 2, 32), nil, func(text string) error {
		v, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil || v < 0.5 || v > 2 {
			return extra.ErrInvalidSpeed
		}
		cfg.TTS_SPEED = float32(v)
		return nil
	})
	table.SetCell(row, 0, tview.NewTableCell("External tools").
		SetTextColor(tcell.ColorYellow).
		SetSelectable(false))
	row++
	toolsRow := row
	for _, c := range toolChecks() {
		table.SetCell(row, 0, tview.NewTableCell(c.name+" ("+c.neededFor+")").SetSelectable(false))
		table.SetCell(row, 1, tview.NewTableCell("checking...").SetSelectable(false))
		row++
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		results := runChecks(ctx)
		app.QueueUpdateDraw(func() {
			for i, r := range results {
				status, color := "missing", tcell.ColorRed
				switch {
				case r.ok:
					status, color = "ok "+r.found, tcell.ColorGreen
				case r.found != "":
					status, color = "broken "+r.found, tcell.ColorOrange
				}
				table.GetCell(toolsRow+i, 1).SetText(status).SetTextColor(color)
			}
		})
	}()
	table.SetSelectedFunc(func(selectedRow, selectedCol int) {
		if selectedCol != 1 {
			if table.GetRowCount() > selectedRow && table.GetColumnCount() > 1 {
				table.Select(selectedRow, 1)
			}
			return
		}
		cell := table.GetCell(selectedRow, selectedCol)
		if data := cellData[fmt.Sprintf("%s_%d", CellTypeCheckbox, selectedRow)]; data != nil {
			if onChange, ok := data.OnChange.(func(bool)); ok {
				checked := cell.Text == "No"
				onChange(checked)
				if checked {
					cell.SetText("Yes")
				} else {
					cell.SetText("No")
				}
			}
			return
		}
		if data := cellData[fmt.Sprintf("%s_%d", CellTypeListPopup, selectedRow)]; data != nil {
			onChange, ok := data.OnChange.(func(string))
			if !ok || data.Options == nil {
				return
			}
			list := tview.NewList().ShowSecondaryText(false).
				SetSelectedBackgroundColor(tcell.ColorGray)
			list.SetTitle(" select ").SetBorder(true)
			for i, opt := range data.Options {
				list.AddItem(opt, "", 0, nil)
				if opt == cell.Text {
					list.SetCurrentItem(i)
				}
			}
			list.SetSelectedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
				onChange(mainText)
				cell.SetText(mainText)
				pages.RemovePage(listPopupPage)
			})
			list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
				if event.Key() == tcell.KeyEscape {
					pages.RemovePage(listPopupPage)
					return nil
				}
				return event
			})
			pages.AddPage(listPopupPage, modal(list, 40, len(data.Options)+2), true, true)
			app.SetFocus(list)
			return
		}
		if data := cellData[fmt.Sprintf("%s_%d", CellTypeInput, selectedRow)]; data != nil {
			onChange, ok := data.OnChange.(func(string) error)
			if !ok {
				return
			}
			inputFld := tview.NewInputField().
				SetLabel("Edit value: ").
				SetText(cell.Text)
			inputFld.SetDoneFunc(func(key tcell.Key) {
				pages.RemovePage(editPage)
				if key == tcell.KeyEnter {
					text := inputFld.GetText()
					if err := onChange(text); err != nil {
						showErrorPopup(err.Error())
						return
					}
					cell.SetText(text)
				}
			})
			inputFld.SetBorder(true)
			pages.AddPage(editPage, modal(inputFld, 50, 3), true, true)
			app.SetFocus(inputFld)
		}
	})
	table.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyRune && event.Rune() == 'x' {
			pages.RemovePage(propsPage)
			return nil
		}
		return event
	})
	return table
}

func showPropsPopup() {
	table := makePropsTable()
	table.SetBorder(true)
	pages.AddPage(propsPage, modal(table, 100, 25), true, true)
	app.SetFocus(table)
}
