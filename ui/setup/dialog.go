package setup

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/soocke/score-ocr-go/config"
	"github.com/soocke/score-ocr-go/domain/capture"
	"github.com/soocke/score-ocr-go/ui/prompt"
	"github.com/soocke/score-ocr-go/ui/theme"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"
)

var (
	intervalLabels = []string{"1 second", "5 seconds", "10 seconds"}
	sourceLabels   = []string{
		"Default webcam (index 0)",
		"Specify webcam index",
		"Blackmagic device (DeckLink/WebPresenter)",
		"Screen capture",
		"Video or image file",
	}
	connectionLabels = []string{"0 SDI", "1 HDMI", "2 Optical SDI", "3 Component", "4 Composite", "5 S-Video"}
)

// Dialog is a small Tk form that replaces the console prompts.
type Dialog struct {
	cfg    *config.Config
	logger *slog.Logger

	interval   *TComboboxWidget
	source     *TComboboxWidget
	connection *TComboboxWidget
	texts      map[string]*TextWidget

	result    prompt.Result
	confirmed bool
}

func NewDialog(cfg *config.Config, logger *slog.Logger) *Dialog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dialog{cfg: cfg, logger: logger, texts: make(map[string]*TextWidget)}
}

// Run shows the dialog and blocks until Start or Cancel. ok is false when the
// operator cancelled or closed the window.
func (d *Dialog) Run() (prompt.Result, bool) {
	theme.InitStyles()
	App.WmTitle("Open Score OCR setup")
	WmProtocol(App, "WM_DELETE_WINDOW", d.cancel)

	row := 0
	addLabel := func(text string) {
		Grid(Label(Txt(text), Anchor("w")), Row(row), Column(0), Sticky("w"), Padx("0.4m"), Pady("0.15m"))
	}
	addCombo := func(text string, values []string, current int) *TComboboxWidget {
		addLabel(text)
		w := TCombobox(Values(values), Width(34))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Current(current)
		row++
		return w
	}
	addText := func(id, text, value string) {
		addLabel(text)
		w := Text(Height(1), Width(34))
		Grid(w, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.15m"))
		w.Delete("1.0", END)
		w.Insert("1.0", value)
		d.texts[id] = w
		row++
	}

	desc, err := capture.ParseDescriptor(d.cfg.Source)
	if err != nil {
		desc = capture.DefaultCamera()
	}
	f := prompt.FormFor(desc, time.Duration(d.cfg.IntervalSeconds)*time.Second, d.cfg.OutputDir)

	d.interval = addCombo("Refresh rate", intervalLabels, f.IntervalIndex)
	d.source = addCombo("Video source", sourceLabels, f.SourceIndex)
	addText("cameraIndex", "Camera index", f.CameraIndex)
	addText("device", "DeckLink device number", f.Device)
	d.connection = addCombo("DeckLink connection", connectionLabels, f.ConnectionIndex)
	addText("screenRect", "Screen area x,y,w,h (empty = full)", f.ScreenRect)
	addText("filePath", "Video or image file", f.FilePath)
	addText("outputDir", "Output folder", f.OutputDir)

	hint := TLabel(Txt("Draw boxes in the video window, then press 'd'. Press 'q' to quit."), Style(theme.StyleHintLabel))
	Grid(hint, Row(row), Column(0), Columnspan(2), Sticky("w"), Padx("0.4m"), Pady("0.3m"))
	row++

	start := TButton(Txt("Start"), Style(theme.StylePrimaryButton), Command(d.start))
	Grid(start, Row(row), Column(0), Sticky("we"), Padx("0.4m"), Pady("0.3m"))
	cancel := TButton(Txt("Cancel"), Style(theme.StyleDangerButton), Command(d.cancel))
	Grid(cancel, Row(row), Column(1), Sticky("we"), Padx("0.4m"), Pady("0.3m"))

	App.Wait()
	return d.result, d.confirmed
}

func (d *Dialog) start() {
	form := prompt.Form{
		IntervalIndex:   comboIndex(d.interval),
		SourceIndex:     comboIndex(d.source),
		CameraIndex:     d.text("cameraIndex"),
		Device:          d.text("device"),
		ConnectionIndex: comboIndex(d.connection),
		ScreenRect:      d.text("screenRect"),
		FilePath:        d.text("filePath"),
		OutputDir:       d.text("outputDir"),
	}
	d.result = form.Resolve()
	for _, w := range d.result.Warnings {
		d.logger.Warn("setup fallback", "detail", w)
	}
	d.confirmed = true
	Destroy(App)
}

func (d *Dialog) cancel() {
	d.confirmed = false
	Destroy(App)
}

func (d *Dialog) text(id string) string {
	w := d.texts[id]
	if w == nil {
		return ""
	}
	return strings.TrimSpace(strings.Join(w.Get("1.0", END), ""))
}

// comboIndex returns the selected index, or -1 when nothing is selected.
func comboIndex(w *TComboboxWidget) int {
	if w == nil {
		return -1
	}
	idx, err := strconv.Atoi(w.Current(nil))
	if err != nil {
		return -1
	}
	return idx
}

