package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/otiai10/gosseract/v2"
)

// Options configure the Tesseract engine.
type Options struct {
	Language string
	// PageSegMode is a Tesseract PSM value; 0 keeps the engine default.
	PageSegMode int
	// Whitelist restricts recognized characters, e.g. "0123456789:".
	Whitelist      string
	TessdataPrefix string
	Preprocess     PreprocessOptions
}

// Tesseract recognizes text with a single gosseract client owned by the
// session. It is not safe for concurrent use.
type Tesseract struct {
	client *gosseract.Client
	opts   Options
	logger *slog.Logger
}

func NewTesseract(opts Options, logger *slog.Logger) (*Tesseract, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Language == "" {
		opts.Language = "eng"
	}
	client := gosseract.NewClient()
	if opts.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := client.SetLanguage(opts.Language); err != nil {
		client.Close()
		return nil, fmt.Errorf("set language: %w", err)
	}
	if opts.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
			client.Close()
			return nil, fmt.Errorf("set page seg mode: %w", err)
		}
	}
	if opts.Whitelist != "" {
		if err := client.SetWhitelist(opts.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("set whitelist: %w", err)
		}
	}
	logger.Debug("tesseract ready", "version", gosseract.Version(), "language", opts.Language, "psm", opts.PageSegMode)
	return &Tesseract{client: client, opts: opts, logger: logger}, nil
}

// Recognize returns the raw engine text for img. Trimming is left to the caller.
func (t *Tesseract) Recognize(ctx context.Context, img image.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := EncodePNG(Preprocess(img, t.opts.Preprocess))
	if err != nil {
		return "", err
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return "", fmt.Errorf("set image: %w", err)
	}
	text, err := t.client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract: %w", err)
	}
	return text, nil
}

func (t *Tesseract) Close() error {
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

// EncodePNG serializes img for engines that take encoded bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, fmt.Errorf("encode png: nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
