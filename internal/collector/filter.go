package collector

import "strings"

// UniverseFilter narrows the raw exchange listing down to screenable codes.
// The zero value keeps everything.
type UniverseFilter struct {
	ExcludeSpecial bool // ST and delisting-warning names
	MainBoardsOnly bool // keep main board 60/00 and ChiNext 30, drop STAR and Beijing
	RequireBullish bool // keep only instruments that closed above today's open
	MaxInstruments int  // 0 = unlimited
}

// Keep reports whether a spot-listing row survives the filter. latest and
// open are today's last price and opening price; they are 0 for suspended
// instruments.
func (f UniverseFilter) Keep(code, name string, latest, open float64) bool {
	if f.ExcludeSpecial {
		if strings.Contains(name, "ST") || strings.Contains(name, "退") {
			return false
		}
	}
	if f.MainBoardsOnly {
		if len(code) != 6 {
			return false
		}
		switch code[0] {
		case '6', '0', '3':
		default:
			return false
		}
		if strings.HasPrefix(code, "688") || strings.HasPrefix(code, "689") {
			return false
		}
	}
	if f.RequireBullish {
		if latest <= 0 || open <= 0 || latest <= open {
			return false
		}
	}
	return true
}
