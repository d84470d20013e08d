// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package registry

// ServiceType is a VO service type label as accepted on the command line.
type ServiceType string

// Known service types. Only TAP can be executed.
const (
	ServiceTAP      ServiceType = "TAP"
	ServiceSIA      ServiceType = "SIA"
	ServiceSIA2     ServiceType = "SIA2"
	ServiceSpectrum ServiceType = "SPECTRUM"
	ServiceSCS      ServiceType = "SCS"
	ServiceLine     ServiceType = "LINE"
)

// Wire returns the registry vocabulary value for s and whether s is a known
// service type.
func (s ServiceType) Wire() (string, bool) {
	switch s {
	case ServiceTAP:
		return "tap", true
	case ServiceSIA:
		return "sia", true
	case ServiceSIA2:
		return "sia2", true
	case ServiceSpectrum:
		return "spectrum", true
	case ServiceSCS:
		return "scs", true
	case ServiceLine:
		return "line", true
	default:
		return "", false
	}
}

// supported reports whether tapfetch can run queries against s.
func (s ServiceType) supported() bool {
	return s == ServiceTAP
}

// IsServiceSupported reports whether value is a known service type that
// tapfetch can execute.
func IsServiceSupported(value string) bool {
	s := ServiceType(value)
	_, known := s.Wire()
	return known && s.supported()
}

// Waveband is an IVOA messenger label as accepted on the command line.
// See https://www.ivoa.net/rdf/messenger/.
type Waveband string

const (
	WavebandEUV        Waveband = "Extreme UV"
	WavebandGammaRay   Waveband = "Gamma ray"
	WavebandInfrared   Waveband = "Infrared"
	WavebandMillimeter Waveband = "Millimeter"
	WavebandNeutrino   Waveband = "Neutrino"
	WavebandOptical    Waveband = "Optical"
	WavebandPhoton     Waveband = "Photon"
	WavebandRadio      Waveband = "Radio"
	WavebandUV         Waveband = "Ultra violet"
	WavebandXRay       Waveband = "X-ray"
)

// Wire returns the messenger vocabulary term for w and whether w is known.
func (w Waveband) Wire() (string, bool) {
	switch w {
	case WavebandEUV:
		return "EUV", true
	case WavebandGammaRay:
		return "Gamma-ray", true
	case WavebandInfrared:
		return "Infrared", true
	case WavebandMillimeter:
		return "Millimeter", true
	case WavebandNeutrino:
		return "Neutrino", true
	case WavebandOptical:
		return "Optical", true
	case WavebandPhoton:
		return "Photon", true
	case WavebandRadio:
		return "Radio", true
	case WavebandUV:
		return "UV", true
	case WavebandXRay:
		return "X-ray", true
	default:
		return "", false
	}
}

// IsWavebandSupported reports whether value is a known waveband label.
func IsWavebandSupported(value string) bool {
	_, ok := Waveband(value).Wire()
	return ok
}
