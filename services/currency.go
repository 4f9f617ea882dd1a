package services

import "strings"

// ResolveCurrency returns requested in lowercase when it belongs to supported,
// otherwise def.
func ResolveCurrency(requested string, supported []string, def string) string {
	code := strings.ToLower(strings.TrimSpace(requested))
	if code == "" {
		return strings.ToLower(def)
	}
	for _, s := range supported {
		if strings.EqualFold(s, code) {
			return code
		}
	}
	return strings.ToLower(def)
}

// CurrencyPolicy binds ResolveCurrency to the configured default and whitelist.
type CurrencyPolicy struct {
	Default   string
	Supported []string
}

func (p CurrencyPolicy) Resolve(requested string) string {
	return ResolveCurrency(requested, p.Supported, p.Default)
}
