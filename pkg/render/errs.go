package render

import "errors"

var (
	// ErrNoPanels indicates a dataset without any metallicity group to draw.
	ErrNoPanels = errors.New("render: no panels")

	// ErrInvalidOptions indicates display ranges that cannot be drawn.
	ErrInvalidOptions = errors.New("render: invalid options")
)
