package layout

// Viewport is the device context a layout is computed for. A nil viewport
// means desktop.
type Viewport struct {
	IsMobile bool    `json:"isMobile"`
	Width    float64 `json:"viewportWidth,omitempty"`
	Height   float64 `json:"viewportHeight,omitempty"`
}

// Mobile reports whether mobile sizing applies.
func (v *Viewport) Mobile() bool {
	return v != nil && v.IsMobile
}
