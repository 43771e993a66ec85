package payment

import "strings"

// Method is the remote service's payment method code.
type Method int

const (
	MethodCheck      Method = 1
	MethodCreditCard Method = 3
	MethodEFT        Method = 4
	MethodCash       Method = 5
)

var methodAliases = map[string]Method{
	"CHECK":                     MethodCheck,
	"CREDIT CARD":               MethodCreditCard,
	"CC":                        MethodCreditCard,
	"ELECTRONIC FUNDS TRANSFER": MethodEFT,
	"EFT":                       MethodEFT,
	"CASH":                      MethodCash,
}

// ParseMethod maps a payment source as written in the sheet to a Method.
func ParseMethod(source string) (Method, bool) {
	key := strings.Join(strings.Fields(strings.ToUpper(source)), " ")
	m, ok := methodAliases[key]
	return m, ok
}

func (m Method) String() string {
	switch m {
	case MethodCheck:
		return "Check"
	case MethodCreditCard:
		return "Credit Card"
	case MethodEFT:
		return "Electronic Funds Transfer"
	case MethodCash:
		return "Cash"
	default:
		return "Unknown"
	}
}
