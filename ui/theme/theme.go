// Package theme configures the ttk styles used by the setup dialog.
package theme

import (
	tk "modernc.org/tk9.0"
)

// Palette holds the semantic colors for one mode.
type Palette struct {
	AppBg     string
	Surface   string
	Primary   string
	Danger    string
	TextMuted string
}

// Light is the palette of the setup dialog.
var Light = Palette{
	AppBg:     "#f7f9fb",
	Surface:   "#ffffff",
	Primary:   "#2563eb",
	Danger:    "#dc2626",
	TextMuted: "#64748b",
}

// style names used with Style("primary.TButton") etc.
const (
	StylePrimaryButton = "primary.TButton"
	StyleDangerButton  = "danger.TButton"
	StyleHintLabel     = "hint.TLabel"
)

// InitStyles activates the base theme and configures the semantic styles.
func InitStyles() { Apply(Light) }

// Apply configures the semantic styles for p.
func Apply(p Palette) {
	_ = tk.ActivateTheme("azure light")
	tk.App.Configure(tk.Background(p.AppBg))
	tk.StyleConfigure(StylePrimaryButton,
		tk.Background(p.Primary),
		tk.Foreground("white"),
		tk.Padding("4p 3p"),
		tk.Borderwidth(1),
		tk.Relief("ridge"),
	)
	tk.StyleConfigure(StyleDangerButton,
		tk.Background(p.Danger),
		tk.Foreground("white"),
		tk.Padding("4p 3p"),
		tk.Borderwidth(1),
		tk.Relief("ridge"),
	)
	tk.StyleConfigure(StyleHintLabel,
		tk.Foreground(p.TextMuted),
		tk.Background(p.Surface),
		tk.Padding("2p 1p"),
	)
}
