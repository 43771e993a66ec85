package encounter

import (
	"fmt"
	"strings"
)

var statusNames = map[string]string{
	"0": "Undefined",
	"1": "Draft",
	"2": "Review",
	"3": "Approved",
	"4": "Rejected",
	"5": "Billed",
	"6": "Unpayable",
	"7": "Pending",
}

// StatusName maps a raw encounter status code to its display name.
func StatusName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Status N/A"
	}
	if name, ok := statusNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Unknown Code (%s)", code)
}
