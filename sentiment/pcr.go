package sentiment

import "github.com/brokeberg/gexengine/options"

// PCRResult is the put/call open-interest and volume balance of a chain.
// HasOIRatio / HasVolumeRatio are false when the respective denominator is
// zero; the ratio fields are meaningless in that case.
type PCRResult struct {
	OIRatio     float64 `json:"pcr_oi"`
	HasOIRatio  bool    `json:"has_pcr_oi"`
	VolumeRatio float64 `json:"pcr_volume"`
	HasVolRatio bool    `json:"has_pcr_volume"`

	TotalCallOI     int `json:"total_call_oi"`
	TotalPutOI      int `json:"total_put_oi"`
	TotalCallVolume int `json:"total_call_volume"`
	TotalPutVolume  int `json:"total_put_volume"`

	Interpretation string `json:"interpretation"`
}

// PutCallRatio computes total put OI over total call OI, plus the
// volume-weighted analog when volume data is present. A zero denominator
// yields an explicit "no ratio" result rather than dividing.
func PutCallRatio(chain options.Chain) PCRResult {
	var res PCRResult
	for _, c := range chain {
		switch c.Type {
		case options.Call:
			res.TotalCallOI += c.OpenInterest
			res.TotalCallVolume += c.Volume
		case options.Put:
			res.TotalPutOI += c.OpenInterest
			res.TotalPutVolume += c.Volume
		}
	}

	if res.TotalCallOI > 0 {
		res.OIRatio = float64(res.TotalPutOI) / float64(res.TotalCallOI)
		res.HasOIRatio = true
	}
	if res.TotalCallVolume > 0 {
		res.VolumeRatio = float64(res.TotalPutVolume) / float64(res.TotalCallVolume)
		res.HasVolRatio = true
	}

	if res.HasOIRatio {
		res.Interpretation = InterpretPCR(res.OIRatio)
	} else {
		res.Interpretation = "Sem dados"
	}
	return res
}

// InterpretPCR maps a put/call ratio onto the dashboard's sentiment bands.
func InterpretPCR(pcr float64) string {
	switch {
	case pcr > 1.5:
		return "Medo Extremo (possível fundo)"
	case pcr > 1.2:
		return "Medo Elevado"
	case pcr > 1.0:
		return "Cautela / Hedge"
	case pcr > 0.7:
		return "Neutro"
	case pcr > 0.5:
		return "Otimismo Elevado"
	default:
		return "Euforia Extrema (possível topo)"
	}
}
