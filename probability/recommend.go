package probability

import (
	"github.com/brokeberg/gexengine/fractal"
)

// Recommendation is the put-selling classification derived from the
// fractal read of the underlying.
type Recommendation string

const (
	VendaForte   Recommendation = "VENDA FORTE"
	Oportunidade Recommendation = "OPORTUNIDADE"
	Neutro       Recommendation = "NEUTRO"
	Cautela      Recommendation = "CAUTELA"
	RiscoAlto    Recommendation = "RISCO ALTO"
)

// Risk levels attached to each recommendation.
const (
	RiskLow      = "BAIXO"
	RiskModerate = "MODERADO"
	RiskElevated = "ELEVADO"
	RiskHigh     = "ALTO"
)

// ClassifierConfig is the externally tunable threshold table of the
// recommendation mapping.
type ClassifierConfig struct {
	// Hurst band bounds.
	PersistentMin     float64
	AntiPersistentMax float64
	// Moneyness (strike vs spot, percent) above which a put is considered
	// deep in the money and the signal is capped at CAUTELA.
	DeepITMPct float64
}

// DefaultClassifierConfig mirrors the dashboard's bands.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		PersistentMin:     fractal.PersistentMin,
		AntiPersistentMax: fractal.AntiPersistentMax,
		DeepITMPct:        5.0,
	}
}

// Advice is the classifier output.
type Advice struct {
	Classification Recommendation `json:"classification"`
	RiskLevel      string         `json:"risk_level"`
	Rationale      string         `json:"rationale"`
}

// Classify maps (Hurst exponent, trend filters, moneyness) onto exactly one
// of the five recommendations. moneynessPct is (strike-spot)/spot*100, so
// positive values are in-the-money puts. The mapping is total: every input
// combination lands on one label.
//
// The poles: a persistent uptrend with all three filters bullish is the
// strongest put-selling setup; a persistent downtrend with no bullish
// filter is the highest risk. Everything else interpolates.
func Classify(hurst float64, filters fractal.TrendFilters, moneynessPct float64, cfg ClassifierConfig) Advice {
	bullish := filters.BullishCount()

	var adv Advice
	switch {
	case hurst > cfg.PersistentMin:
		switch {
		case bullish == 3:
			adv = Advice{VendaForte, RiskLow, "tendência de alta persistente com todos os filtros bullish"}
		case bullish == 0:
			adv = Advice{RiscoAlto, RiskHigh, "queda persistente sem nenhum suporte de tendência"}
		case bullish == 1:
			adv = Advice{Cautela, RiskElevated, "persistência com maioria dos filtros bearish"}
		default:
			adv = Advice{Neutro, RiskModerate, "persistência com sinais de tendência mistos"}
		}
	case hurst < cfg.AntiPersistentMax:
		switch {
		case bullish == 0:
			adv = Advice{Oportunidade, RiskModerate, "ativo esticado para baixo com perfil de reversão à média"}
		case bullish == 3:
			adv = Advice{Cautela, RiskElevated, "possível exaustão de topo em regime de reversão à média"}
		default:
			adv = Advice{Neutro, RiskModerate, "reversão à média com sinais de tendência mistos"}
		}
	default:
		adv = Advice{Neutro, RiskModerate, "passeio aleatório: siga as probabilidades Black-Scholes"}
	}

	// Deep ITM caps anything better than CAUTELA.
	if moneynessPct >= cfg.DeepITMPct {
		switch adv.Classification {
		case VendaForte, Oportunidade, Neutro:
			adv = Advice{Cautela, RiskElevated, "strike profundamente dentro do dinheiro"}
		}
	}
	return adv
}
