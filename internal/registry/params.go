// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

// SearchParameters is a registry search as the user typed it.
type SearchParameters struct {
	Keyword     string
	Waveband    string
	ServiceType string
}

// Normalized is a registry search in the registry's own vocabulary.
type Normalized struct {
	Keywords    string
	Waveband    string // empty means no waveband filter
	ServiceType string
}

// Normalize maps the user's values onto the registry vocabulary. It never
// fails: an unknown waveband drops the waveband filter, and an unknown or
// unsupported service type becomes TAP.
func (p SearchParameters) Normalize() Normalized {
	n := Normalized{Keywords: p.Keyword}

	if w, ok := Waveband(p.Waveband).Wire(); ok {
		n.Waveband = w
	}

	if IsServiceSupported(p.ServiceType) {
		n.ServiceType, _ = ServiceType(p.ServiceType).Wire()
	} else {
		n.ServiceType, _ = ServiceTAP.Wire()
	}
	return n
}
