package types

// Color is a tab-group color from the fixed host palette.
type Color string

const (
	ColorRed    Color = "red"
	ColorBlue   Color = "blue"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorPink   Color = "pink"
	ColorPurple Color = "purple"
	ColorCyan   Color = "cyan"
	ColorOrange Color = "orange"
	ColorGrey   Color = "grey"
)

// Palette returns the full group color palette. Random assignment draws
// uniformly from this list.
func Palette() []Color {
	return []Color{
		ColorRed, ColorBlue, ColorYellow, ColorGreen, ColorPink,
		ColorPurple, ColorCyan, ColorOrange, ColorGrey,
	}
}

// Valid reports whether c is a palette color.
func (c Color) Valid() bool {
	for _, p := range Palette() {
		if c == p {
			return true
		}
	}
	return false
}
