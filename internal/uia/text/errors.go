package text

import "errors"

var errClosed = errors.New("text: session cache closed")
