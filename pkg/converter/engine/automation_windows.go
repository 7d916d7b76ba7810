//go:build windows

package engine

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
)

// PowerPoint enumeration values used by the export call.
const (
	msoTrue                  = -1
	msoFalse                 = 0
	ppFixedFormatTypePDF     = 2
	ppFixedFormatIntentPrint = 2
	powerPointProgID         = "PowerPoint.Application"
)

var errAppQuit = errors.New("presentation application already quit")

// DefaultLauncher returns a launcher for Microsoft PowerPoint over COM.
func DefaultLauncher() AppLauncher { return oleLauncher{} }

type oleLauncher struct{}

type oleCall struct {
	in, out string
	reply   chan error
}

// oleApp owns one OS thread for its whole life: COM objects created in a
// single-threaded apartment must be called from the thread that created them.
type oleApp struct {
	calls chan oleCall
	done  chan struct{}
	quit  bool
}

func (oleLauncher) Launch(ctx context.Context) (App, error) {
	a := &oleApp{calls: make(chan oleCall), done: make(chan struct{})}
	ready := make(chan error, 1)
	go a.loop(ready)
	select {
	case err := <-ready:
		if err != nil {
			return nil, err
		}
		return a, nil
	case <-ctx.Done():
		// The loop still reports on ready; shut it down once it does.
		go func() {
			if err := <-ready; err == nil {
				close(a.calls)
			}
		}()
		return nil, ctx.Err()
	}
}

func (a *oleApp) loop(ready chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(a.done)

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		ready <- fmt.Errorf("CoInitializeEx: %w", err)
		return
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject(powerPointProgID)
	if err != nil {
		ready <- fmt.Errorf("create %s: %w", powerPointProgID, err)
		return
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ready <- fmt.Errorf("query IDispatch: %w", err)
		return
	}
	defer app.Release()

	// PowerPoint refuses to run hidden; presentations are opened windowless instead.
	if v, err := oleutil.PutProperty(app, "Visible", msoTrue); err == nil {
		_ = v.Clear()
	}
	ready <- nil

	for call := range a.calls {
		call.reply <- exportPDF(app, call.in, call.out)
	}
	if v, err := oleutil.CallMethod(app, "Quit"); err == nil {
		_ = v.Clear()
	}
}

func exportPDF(app *ole.IDispatch, in, out string) error {
	presV, err := oleutil.GetProperty(app, "Presentations")
	if err != nil {
		return fmt.Errorf("get Presentations: %w", err)
	}
	defer presV.Clear()

	deckV, err := oleutil.CallMethod(presV.ToIDispatch(), "Open", in, msoTrue, msoFalse, msoFalse)
	if err != nil {
		return fmt.Errorf("open %s: %w", in, err)
	}
	defer deckV.Clear()
	deck := deckV.ToIDispatch()

	_, exportErr := oleutil.CallMethod(deck, "ExportAsFixedFormat", out, ppFixedFormatTypePDF, ppFixedFormatIntentPrint)
	if v, err := oleutil.CallMethod(deck, "Close"); err == nil {
		_ = v.Clear()
	}
	if exportErr != nil {
		return fmt.Errorf("export %s: %w", out, exportErr)
	}
	return nil
}

// Convert implements App.
func (a *oleApp) Convert(inputPath, outputPath string) error {
	if a.quit {
		return errAppQuit
	}
	reply := make(chan error, 1)
	a.calls <- oleCall{in: inputPath, out: outputPath, reply: reply}
	return <-reply
}

// Quit implements App.
func (a *oleApp) Quit() error {
	if a.quit {
		return nil
	}
	a.quit = true
	close(a.calls)
	<-a.done
	return nil
}
