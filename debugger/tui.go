package debugger

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TUI is the text console front end over a Session: a registers panel, a
// call-stack panel, a scrolling memory dump, and a command line.
type TUI struct {
	Session *Session
	App     *tview.Application

	registerView  *tview.TextView
	callStackView *tview.TextView
	memoryView    *tview.TextView
	outputView    *tview.TextView
	commandInput  *tview.InputField
}

// NewTUI builds the widget tree over session.
func NewTUI(session *Session) *TUI {
	t := &TUI{
		Session: session,
		App:     tview.NewApplication(),
	}
	t.build()
	return t
}

func (t *TUI) build() {
	t.registerView = tview.NewTextView().SetDynamicColors(true)
	t.registerView.SetBorder(true).SetTitle(" Registers ")

	t.callStackView = tview.NewTextView().SetDynamicColors(true)
	t.callStackView.SetBorder(true).SetTitle(" Call Stack / Breakpoints ")

	t.memoryView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true).SetWrap(false)
	t.memoryView.SetBorder(true).SetTitle(" Memory ")

	t.outputView = tview.NewTextView().SetDynamicColors(true).SetScrollable(true)
	t.outputView.SetBorder(true).SetTitle(" Output ")

	t.commandInput = tview.NewInputField().SetLabel("> ")
	t.commandInput.SetBorder(true).SetTitle(" Command ")
	t.commandInput.SetDoneFunc(t.handleCommand)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.registerView, 6, 0, false).
		AddItem(t.callStackView, 0, 1, false)

	top := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(t.memoryView, 0, 2, false).
		AddItem(right, 0, 1, false)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, false).
		AddItem(t.outputView, 8, 0, false).
		AddItem(t.commandInput, 3, 0, true)

	t.App.SetRoot(layout, true).SetFocus(t.commandInput)

	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF11:
			t.run("step")
			return nil
		case tcell.KeyF5:
			t.run("continue")
			return nil
		case tcell.KeyCtrlC:
			t.App.Stop()
			return nil
		}
		return event
	})

	t.refresh()
}

func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}
	cmd := t.commandInput.GetText()
	t.commandInput.SetText("")
	if cmd != "" {
		t.run(cmd)
	}
}

func (t *TUI) run(cmd string) {
	t.Session.Output.Reset()
	if err := t.Session.Execute(cmd); err != nil {
		fmt.Fprintf(&t.Session.Output, "error: %v\n", err)
	}
	t.refresh()
}

func (t *TUI) refresh() {
	t.registerView.SetText(t.Session.RegistersText())
	t.callStackView.SetText(t.callStackText())
	t.memoryView.SetText(t.Session.Machine.DumpState())
	if out := t.Session.Output.String(); out != "" {
		fmt.Fprint(t.outputView, out)
		t.outputView.ScrollToEnd()
	}
}

func (t *TUI) callStackText() string {
	m := t.Session.Machine
	text := ""
	for i := int(m.CallStackPointer) - 1; i >= 0; i-- {
		text += fmt.Sprintf("%04X: %04X\n", i, m.CallStack[i])
	}
	text += "\n" + t.Session.BreakpointsText()
	return text
}

// Run starts the TUI event loop, blocking until the user quits.
func (t *TUI) Run() error {
	return t.App.Run()
}
