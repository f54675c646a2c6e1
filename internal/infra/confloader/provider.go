package confloader

import "errors"

// ErrReadBytesNotSupported is returned by mapProvider.ReadBytes.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider serves an in-memory map to koanf. Dotted keys are expanded
// by koanf into nested paths.
type mapProvider map[string]any

// ReadBytes implements koanf.Provider.
func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

// Read implements koanf.Provider.
func (m mapProvider) Read() (map[string]any, error) {
	return m, nil
}
