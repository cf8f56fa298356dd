package location

import "strings"

// DMSToDecimal converts degrees, minutes and seconds to decimal degrees.
// A ref of S or W negates the result.
func DMSToDecimal(degrees, minutes, seconds float64, ref string) float64 {
	decimal := degrees + minutes/60 + seconds/3600
	switch strings.ToUpper(strings.TrimSpace(ref)) {
	case "S", "W":
		return -decimal
	}
	return decimal
}
