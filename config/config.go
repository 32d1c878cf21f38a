package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/soocke/score-ocr-go/assets"
)

// Config holds runtime configuration for a capture session.
// Fields may be loaded from a JSON file and overridden by command-line flags.
// Once a session starts the values are treated as read-only.
type Config struct {
	Debug bool `json:"debug"`

	// Extraction cadence
	IntervalSeconds int    `json:"interval_seconds"`
	SchedulePolicy  string `json:"schedule_policy"`

	// Source descriptor, e.g. "camera:0", "decklink:0:1", "screen", "file:clip.mp4"
	Source string `json:"source"`

	// Output
	OutputDir      string `json:"output_dir"`
	OutputPrefix   string `json:"output_prefix"`
	Snapshot       bool   `json:"snapshot"`
	ExcelPath      string `json:"excel_path"`
	HistoryDialect string `json:"history_dialect"`
	HistoryDSN     string `json:"history_dsn"`

	// OCR
	OCRLanguage    string  `json:"ocr_language"`
	OCRPageSegMode int     `json:"ocr_psm"`
	OCRWhitelist   string  `json:"ocr_whitelist"`
	TessdataPrefix string  `json:"tessdata_prefix"`
	OCRUpscale     float64 `json:"ocr_upscale"`
	OCRGrayscale   bool    `json:"ocr_grayscale"`
	OCRInvert      bool    `json:"ocr_invert"`
	OCRThreshold   int     `json:"ocr_threshold"`

	// Display
	BoxColor     string `json:"box_color"`
	PreviewColor string `json:"preview_color"`
	BoxThickness int    `json:"box_thickness"`
	PollMillis   int    `json:"poll_millis"`
	WindowTitle  string `json:"window_title"`
}

// Allowed batch intervals in seconds.
var allowedIntervals = map[int]bool{1: true, 5: true, 10: true}

// DefaultConfig returns a Config populated with standard defaults.
func DefaultConfig() *Config {
	return &Config{
		Debug:           false,
		IntervalSeconds: 1,
		SchedulePolicy:  "fixed-delay",
		Source:          "camera:0",
		OutputDir:       "outputs",
		OutputPrefix:    "box",
		Snapshot:        true,
		HistoryDialect:  "sqlite",
		OCRLanguage:     "eng",
		OCRUpscale:      1,
		BoxColor:        "#00ff00",
		BoxThickness:    2,
		PollMillis:      30,
		WindowTitle:     "Open Score OCR",
	}
}

// Validate clamps/normalizes values to safe ranges.
func (c *Config) Validate() error {
	if !allowedIntervals[c.IntervalSeconds] {
		c.IntervalSeconds = 1
	}
	if c.SchedulePolicy != "aligned" {
		c.SchedulePolicy = "fixed-delay"
	}
	if c.Source == "" {
		c.Source = "camera:0"
	}
	if c.OutputDir == "" {
		c.OutputDir = "outputs"
	}
	if c.OutputPrefix == "" {
		c.OutputPrefix = "box"
	}
	if c.HistoryDialect == "" {
		c.HistoryDialect = "sqlite"
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.OCRPageSegMode < 0 || c.OCRPageSegMode > 13 {
		c.OCRPageSegMode = 0
	}
	if c.OCRUpscale < 1 {
		c.OCRUpscale = 1
	}
	if c.OCRUpscale > 8 {
		c.OCRUpscale = 8
	}
	if c.OCRThreshold < 0 || c.OCRThreshold > 255 {
		c.OCRThreshold = 0
	}
	if c.BoxColor == "" {
		c.BoxColor = "#00ff00"
	}
	if c.BoxThickness <= 0 || c.BoxThickness > 10 {
		c.BoxThickness = 2
	}
	if c.PollMillis <= 0 || c.PollMillis > 1000 {
		c.PollMillis = 30
	}
	if c.WindowTitle == "" {
		c.WindowTitle = "Open Score OCR"
	}
	return nil
}

// ValidateSchema checks raw JSON against the embedded config schema.
func ValidateSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("config.schema.json", bytes.NewReader(assets.ConfigSchema)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("config.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("config does not match schema: %w", err)
	}
	return nil
}

// Load attempts to read configuration from the given JSON file path. If the file does not
// exist it returns DefaultConfig(). On schema or JSON error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := ValidateSchema(data); err != nil {
		return DefaultConfig(), err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), err
	}
	_ = cfg.Validate()
	return cfg, nil
}

// Save writes the configuration to the given path in JSON format.
func (c *Config) Save(path string) error {
	_ = c.Validate()
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}
