//go:build !linux || (!arm && !arm64)

package arrival

import "fmt"

func openLine(chip string, pin int) (Line, error) {
	return nil, fmt.Errorf("arrival: gpio unsupported on this platform")
}

var openLineFn = openLine
