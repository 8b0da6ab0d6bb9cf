// Package brokers maps venue broker designators to house names for
// log and report output.
package brokers

var names = map[string]string{
	"085": "Canaccord",
	"080": "RBC",
}

// Name resolves a broker designator to a house name.
func Name(code string) (string, bool) {
	n, ok := names[code]
	return n, ok
}

// Annotate renders a designator with its house name when known.
func Annotate(code string) string {
	if n, ok := names[code]; ok {
		return code + " (" + n + ")"
	}
	return code
}
