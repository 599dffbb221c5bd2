package probe

import (
	"net/url"
	"strings"

	"github.com/hamed0406/channelchecker/internal/domain"
)

var defaultSchemes = []string{"http", "https"}

// Validator is a pure syntactic classifier; it never touches the network.
type Validator struct {
	Schemes []string // allow-list, defaults to http and https
}

func ValidateAddress(address string) domain.Result {
	return Validator{}.Validate(address)
}

func (v Validator) Validate(address string) domain.Result {
	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Failed(domain.ReasonMalformed, "empty address")
	}
	u, err := url.Parse(address)
	if err != nil {
		return domain.Failed(domain.ReasonMalformed, err.Error())
	}
	if !v.allowed(u.Scheme) {
		if u.Scheme == "" {
			return domain.Failed(domain.ReasonMalformed, "missing scheme")
		}
		return domain.Failed(domain.ReasonMalformed, "scheme "+u.Scheme+" not supported")
	}
	if u.Host == "" {
		return domain.Failed(domain.ReasonMalformed, "missing host")
	}
	return domain.Passed()
}

func (v Validator) allowed(scheme string) bool {
	schemes := v.Schemes
	if len(schemes) == 0 {
		schemes = defaultSchemes
	}
	for _, s := range schemes {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}
