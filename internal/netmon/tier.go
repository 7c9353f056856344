package netmon

// Tier is the coarse network-quality classification the attachment
// engine keys its decisions on.
type Tier int

const (
	TierOffline Tier = iota
	TierPoor
	TierGood
	TierExcellent
)

func (t Tier) String() string {
	switch t {
	case TierPoor:
		return "poor"
	case TierGood:
		return "good"
	case TierExcellent:
		return "excellent"
	default:
		return "offline"
	}
}

// Classify maps a connectivity observation to a tier. Wired and wifi
// links are treated as effectively free; 4G/5G as good; slower or
// unknown-generation cellular as poor, since uploading full-size
// photos over it would starve everything else.
func Classify(s State) Tier {
	if !s.Online() {
		return TierOffline
	}
	switch s.Technology {
	case TechWifi, TechEthernet:
		return TierExcellent
	case TechCell5G, TechCell4G:
		return TierGood
	case TechCell3G, TechCell2G, TechCellular:
		return TierPoor
	default:
		return TierPoor
	}
}
