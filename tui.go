package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/chalskim/adSTTS/extra"
	"github.com/chalskim/adSTTS/extract"
	"github.com/chalskim/adSTTS/models"
	"github.com/chalskim/adSTTS/recorder"
	"github.com/chalskim/adSTTS/youtube"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

const (
	modeRecordAudio  = "Record audio"
	modeRecordScreen = "Record screen"
	modeYoutube      = "YouTube audio"
	modeTranscribe   = "Transcribe file"
	modeTTS          = "Text to speech"

	mainPage      = "main"
	historyPage   = "history"
	errorPage     = "error"
	propsPage     = "props"
	listPopupPage = "listPopup"
	editPage      = "editModal"
)

var (
	app        *tview.Application
	pages      *tview.Pages
	form       *tview.Form
	statusView *tview.TextView
	logView    *tview.TextView
	helpText   = "[yellow]Tab[white]: next field  [yellow]F2[white]: history  [yellow]F3[white]: stt/tts settings  [yellow]F10[white]/[yellow]Ctrl+C[white]: quit"
)

// worker holds the single background operation the ui allows.
type worker struct {
	mu     sync.Mutex
	busy   bool
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func (w *worker) start(parent context.Context) (context.Context, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy {
		return nil, false
	}
	ctx, cancel := context.WithCancel(parent)
	w.wg.Add(1)
	w.busy = true
	w.cancel = cancel
	return ctx, true
}

func (w *worker) stop() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.busy {
		return false
	}
	w.cancel()
	return true
}

func (w *worker) done() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cancel != nil {
		w.cancel()
	}
	w.busy = false
	w.cancel = nil
	w.wg.Done()
}

// shutdown stops the running operation and waits for it, so a recording
// is finalized before the process exits.
func (w *worker) shutdown() {
	w.stop()
	w.wg.Wait()
}

var uiWorker = &worker{}

func setStatus(color, format string, args ...any) {
	app.QueueUpdateDraw(func() {
		statusView.SetText(fmt.Sprintf("[%s]%s[-]", color, fmt.Sprintf(format, args...)))
	})
}

// startSelected launches the operation chosen in the dropdown on the one
// background worker.
func startSelected(ctx context.Context) {
	_, mode := form.GetFormItemByLabel("Mode").(*tview.DropDown).GetCurrentOption()
	url := strings.TrimSpace(form.GetFormItemByLabel("YouTube URL").(*tview.InputField).GetText())
	file := strings.TrimSpace(form.GetFormItemByLabel("Input file").(*tview.InputField).GetText())
	if msg := validateInput(mode, url, file); msg != "" {
		showErrorPopup(msg)
		return
	}
	wctx, ok := uiWorker.start(ctx)
	if !ok {
		showErrorPopup("An operation is already running. Press Stop first.")
		return
	}
	go func() {
		defer uiWorker.done()
		switch mode {
		case modeRecordAudio, modeRecordScreen:
			rmode, kind := recorder.ModeAudio, models.JobRecordAudio
			if mode == modeRecordScreen {
				rmode, kind = recorder.ModeScreen, models.JobRecordScreen
			}
			out := recorder.DefaultOutput(cfg.OutputDir, rmode, time.Now())
			setStatus("red", "Recording %s... press Stop to finish", rmode)
			path, err := runJob(wctx, kind, string(rmode), func(ctx context.Context) (string, string, error) {
				p, err := recordUntil(ctx, logView, rmode, out, 0)
				return p, "ffmpeg", err
			})
			finish("Recording saved", path, err)
		case modeYoutube:
			setStatus("yellow", "Extracting audio...")
			path, err := downloadAudio(wctx, url, "")
			finish("Audio saved", path, err)
		case modeTranscribe:
			setStatus("yellow", "Transcribing %s...", filepath.Base(file))
			text, saved, err := transcribeFile(wctx, logView, file, true)
			if err == nil {
				fmt.Fprintf(logView, "%s\n%s\n%s\n", rule, text, rule)
			}
			finish("Transcription saved", saved, err)
		case modeTTS:
			setStatus("yellow", "Converting %s to speech...", filepath.Base(file))
			path, err := speakFile(wctx, logView, file)
			finish("Audio saved", path, err)
		}
	}()
}

// validateInput returns the message to show when mode cannot start with
// the given fields, or "".
func validateInput(mode, url, file string) string {
	switch mode {
	case modeYoutube:
		return validateURL(url)
	case modeTranscribe, modeTTS:
		if file == "" {
			return "Please enter an input file"
		}
		if !fileExists(file) {
			return "File not found: " + file
		}
	}
	return ""
}

// speakFile reads a document and speaks it with the session tts settings
// into VoiceDir.
func speakFile(ctx context.Context, w io.Writer, file string) (string, error) {
	text, err := extract.ExtractText(file)
	if err != nil {
		return "", err
	}
	req := extra.Request{Text: text, Output: voiceOutput(cfg.VoiceDir, file, ".wav")}
	if _, err := synthesize(ctx, w, file, req); err != nil {
		return "", err
	}
	return req.Output, nil
}

// validateURL returns the message to show for a bad url, or "".
func validateURL(url string) string {
	if url == "" {
		return "Please enter a YouTube URL"
	}
	if !youtube.ValidURL(url) {
		return "Please enter a valid YouTube URL"
	}
	return ""
}

func finish(okMsg, path string, err error) {
	if err != nil {
		setStatus("red", "Failed: %v", err)
		app.QueueUpdateDraw(func() {
			showErrorPopup(err.Error())
		})
		return
	}
	setStatus("green", "%s: %s", okMsg, path)
	fmt.Fprintf(logView, "%s %s: %s\n", time.Now().Format("15:04:05"), okMsg, path)
}

func stopSelected() {
	if !uiWorker.stop() {
		setStatus("white", "Nothing to stop")
		return
	}
	setStatus("yellow", "Stopping...")
}

func buildUI(ctx context.Context) {
	app = tview.NewApplication()
	pages = tview.NewPages()
	statusView = tview.NewTextView().
		SetDynamicColors(true).
		SetText("Ready")
	statusView.SetBorder(true).SetTitle("status")
	logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			app.Draw()
		})
	logView.SetBorder(true).SetTitle("log")
	form = tview.NewForm().
		AddDropDown("Mode", []string{modeRecordAudio, modeRecordScreen, modeYoutube, modeTranscribe, modeTTS}, 0, nil).
		AddInputField("YouTube URL", "", 60, nil, nil).
		AddInputField("Input file", "", 60, nil, nil).
		AddButton("Start", func() { startSelected(ctx) }).
		AddButton("Stop", stopSelected).
		AddButton("History", showHistoryPopup).
		AddButton("Settings", showPropsPopup).
		AddButton("Quit", func() {
			uiWorker.stop()
			app.Stop()
		})
	form.SetBorder(true).SetTitle(" adSTTS ")
	help := tview.NewTextView().SetDynamicColors(true).SetText(helpText)
	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 11, 0, true).
		AddItem(statusView, 3, 0, false).
		AddItem(logView, 0, 1, false).
		AddItem(help, 1, 0, false)
	pages.AddPage(mainPage, flex, true, true)
	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF2:
			showHistoryPopup()
			return nil
		case tcell.KeyF3:
			if !pages.HasPage(propsPage) {
				showPropsPopup()
			}
			return nil
		case tcell.KeyF10:
			uiWorker.stop()
			app.Stop()
			return nil
		}
		return event
	})
}

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Terminal front-end for recording, YouTube extraction, transcription and tts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		theme, _ := cmd.Flags().GetString("theme")
		if t, ok := colorschemes[theme]; ok {
			tview.Styles = t
		}
		ctx, stop := signalContext()
		defer stop()
		buildUI(ctx)
		go func() {
			<-ctx.Done()
			uiWorker.stop()
			app.Stop()
		}()
		err := app.SetRoot(pages, true).EnableMouse(true).Run()
		uiWorker.shutdown()
		if err != nil {
			logger.Error("failed to start tview app", "error", err)
		}
		return err
	},
}

func init() {
	uiCmd.Flags().String("theme", "default", "color scheme: default, gruvbox, solarized, dracula")
	rootCmd.AddCommand(uiCmd)
}
