package encounter

import (
	"strings"

	"github.com/gyeh/chargeflow/internal/normalize"
	"github.com/gyeh/chargeflow/internal/tebra"
)

// Place of service codes the engine sends verbatim.
const (
	POSTelehealthOther = "02"
	POSTelehealthHome  = "10"
	POSOffice          = "11"
	POSHome            = "12"
	POSInpatient       = "21"
	POSOutpatient      = "22"
	POSEmergencyRoom   = "23"
	POSSurgicalCenter  = "24"
)

var posNames = map[string]string{
	POSTelehealthOther: "Telehealth Provided Other than in Patient’s Home",
	POSTelehealthHome:  "Telehealth Provided in Patient’s Home",
	POSOffice:          "Office",
	POSHome:            "Home",
	POSInpatient:       "Inpatient Hospital",
	POSOutpatient:      "Outpatient Hospital",
	POSEmergencyRoom:   "Emergency Room - Hospital",
	POSSurgicalCenter:  "Ambulatory Surgical Center",
}

// POSSource says how a place of service was chosen.
type POSSource int

const (
	POSFromCode POSSource = iota
	POSFromMode
	POSDefault
)

// PlaceOfService picks the POS for an encounter. A known code is used as
// is; otherwise the encounter mode decides between telehealth and office;
// otherwise the encounter is billed as Office.
func PlaceOfService(code, mode string) (tebra.PlaceOfService, POSSource) {
	code = canonicalPOSCode(code)
	if name, ok := posNames[code]; ok {
		return tebra.PlaceOfService{Code: code, Name: name}, POSFromCode
	}

	m := strings.ToLower(strings.TrimSpace(mode))
	switch {
	case strings.Contains(m, "telehealth") || strings.Contains(m, "tele health"):
		c := POSTelehealthHome
		if code == POSTelehealthOther {
			c = POSTelehealthOther
		}
		return tebra.PlaceOfService{Code: c, Name: posNames[c]}, POSFromMode
	case strings.Contains(m, "office") || strings.Contains(m, "inoffice"):
		return tebra.PlaceOfService{Code: POSOffice, Name: posNames[POSOffice]}, POSFromMode
	}
	return tebra.PlaceOfService{Code: POSOffice, Name: posNames[POSOffice]}, POSDefault
}

// canonicalPOSCode undoes spreadsheet number formatting: "11.0" -> "11",
// "2" -> "02".
func canonicalPOSCode(code string) string {
	code = normalize.TrimFloatSuffix(code)
	if len(code) == 1 && code[0] >= '0' && code[0] <= '9' {
		code = "0" + code
	}
	return code
}
