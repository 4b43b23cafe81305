package main

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// modal centers p in a width x height box over the current page.
func modal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func showErrorPopup(message string) {
	popup := tview.NewModal().
		SetText(message).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			pages.RemovePage(errorPage)
		})
	pages.AddPage(errorPage, popup, true, true)
}

func showHistoryPopup() {
	jobs, err := store.ListJobs(50)
	if err != nil {
		logger.Error("failed to list jobs", "error", err)
		showErrorPopup("Failed to load history: " + err.Error())
		return
	}
	table := makeJobTable(jobs)
	table.SetBorder(true).SetTitle(" history (Esc to close) ")
	table.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEsc || key == tcell.KeyF2 {
			pages.RemovePage(historyPage)
		}
	})
	pages.AddPage(historyPage, modal(table, 120, 25), true, true)
}
