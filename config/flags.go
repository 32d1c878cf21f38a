package config

import (
	"flag"
	"fmt"
	"io"
)

// Setup modes for the startup questions.
const (
	SetupConsole = "console"
	SetupGUI     = "gui"
	SetupNone    = "none"
)

// Flags are the command-line options. Only flags that were given override
// values from the config file.
type Flags struct {
	ConfigPath string
	Setup      string
	SaveConfig bool

	set       map[string]bool
	debug     bool
	interval  int
	policy    string
	source    string
	outputDir string
	excel     string
	dialect   string
	dsn       string
	language  string
	psm       int
	whitelist string
	tessdata  string
	upscale   float64
	invert    bool
	threshold int
}

// ParseFlags reads args (without the program name). Usage and errors are
// written to stderr.
func ParseFlags(args []string, stderr io.Writer) (*Flags, error) {
	f := &Flags{set: make(map[string]bool)}
	d := DefaultConfig()
	fs := flag.NewFlagSet("score-ocr", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&f.ConfigPath, "config", "config.json", "Path to the JSON config file")
	fs.StringVar(&f.Setup, "setup", SetupConsole, "Startup questions: console, gui or none. The console skips questions answered by -source or -interval; the gui starts from them")
	fs.BoolVar(&f.SaveConfig, "save-config", false, "Write the effective config back to -config")
	fs.BoolVar(&f.debug, "debug", d.Debug, "Enable debug logging and runtime stats")
	fs.IntVar(&f.interval, "interval", d.IntervalSeconds, "Seconds between extraction batches (1, 5 or 10)")
	fs.StringVar(&f.policy, "policy", d.SchedulePolicy, "Batch schedule: fixed-delay or aligned")
	fs.StringVar(&f.source, "source", d.Source, "Video source: camera[:i], decklink[:dev[:conn]], screen[:x,y,w,h], file:path")
	fs.StringVar(&f.outputDir, "out", d.OutputDir, "Directory for box<N>.txt files")
	fs.StringVar(&f.excel, "excel", d.ExcelPath, "Also write an xlsx workbook with one row per box")
	fs.StringVar(&f.dialect, "history-dialect", d.HistoryDialect, "Publish history database: sqlite or postgres")
	fs.StringVar(&f.dsn, "history", d.HistoryDSN, "Publish history DSN; empty disables history")
	fs.StringVar(&f.language, "lang", d.OCRLanguage, "Tesseract language")
	fs.IntVar(&f.psm, "psm", d.OCRPageSegMode, "Tesseract page segmentation mode (0 keeps default)")
	fs.StringVar(&f.whitelist, "whitelist", d.OCRWhitelist, "Characters Tesseract may return")
	fs.StringVar(&f.tessdata, "tessdata", d.TessdataPrefix, "Tessdata directory")
	fs.Float64Var(&f.upscale, "upscale", d.OCRUpscale, "Scale crops before OCR")
	fs.BoolVar(&f.invert, "invert", d.OCRInvert, "Invert crops before OCR (light text on dark)")
	fs.IntVar(&f.threshold, "threshold", d.OCRThreshold, "Binarize crops at this level (0 disables)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	switch f.Setup {
	case SetupConsole, SetupGUI, SetupNone:
	default:
		return nil, fmt.Errorf("unknown setup mode %q", f.Setup)
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// Given reports whether the named flag was on the command line.
func (f *Flags) Given(name string) bool { return f.set[name] }

// Apply overrides cfg with the flags that were given and revalidates it.
func (f *Flags) Apply(cfg *Config) {
	if f.set["debug"] {
		cfg.Debug = f.debug
	}
	if f.set["interval"] {
		cfg.IntervalSeconds = f.interval
	}
	if f.set["policy"] {
		cfg.SchedulePolicy = f.policy
	}
	if f.set["source"] {
		cfg.Source = f.source
	}
	if f.set["out"] {
		cfg.OutputDir = f.outputDir
	}
	if f.set["excel"] {
		cfg.ExcelPath = f.excel
	}
	if f.set["history-dialect"] {
		cfg.HistoryDialect = f.dialect
	}
	if f.set["history"] {
		cfg.HistoryDSN = f.dsn
	}
	if f.set["lang"] {
		cfg.OCRLanguage = f.language
	}
	if f.set["psm"] {
		cfg.OCRPageSegMode = f.psm
	}
	if f.set["whitelist"] {
		cfg.OCRWhitelist = f.whitelist
	}
	if f.set["tessdata"] {
		cfg.TessdataPrefix = f.tessdata
	}
	if f.set["upscale"] {
		cfg.OCRUpscale = f.upscale
	}
	if f.set["invert"] {
		cfg.OCRInvert = f.invert
	}
	if f.set["threshold"] {
		cfg.OCRThreshold = f.threshold
	}
	_ = cfg.Validate()
}
