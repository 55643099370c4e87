package game

import "mathking/models"

// Band maps a slice [Lower, Upper) of the unit interval onto an element.
type Band struct {
	Element models.Element
	Lower   float64
	Upper   float64
}

// Width is the probability mass of the band.
func (b Band) Width() float64 {
	return b.Upper - b.Lower
}

// normalBands partitions [0,1): four common elements at 22.5% each and the
// two rare ones at 5% each.
var normalBands = []Band{
	{models.ElementWater, 0, 0.225},
	{models.ElementWind, 0.225, 0.45},
	{models.ElementRock, 0.45, 0.675},
	{models.ElementGrass, 0.675, 0.9},
	{models.ElementFire, 0.9, 0.95},
	{models.ElementThunder, 0.95, 1},
}

var challengeBands = []Band{
	{models.ElementThunder, 0, 0.5},
	{models.ElementFire, 0.5, 1},
}

// DropTable returns the reward bands for mode. The returned slice is a copy.
func DropTable(mode Mode) []Band {
	src := normalBands
	if mode == ModeChallenge {
		src = challengeBands
	}
	out := make([]Band, len(src))
	copy(out, src)
	return out
}

// ElementFor maps a sample u in [0,1) onto the band that contains it.
func ElementFor(mode Mode, u float64) models.Element {
	bands := normalBands
	if mode == ModeChallenge {
		bands = challengeBands
	}
	for _, b := range bands {
		if u < b.Upper {
			return b.Element
		}
	}
	return bands[len(bands)-1].Element
}

// DrawElement takes a single uniform sample and returns the rewarded element.
func DrawElement(mode Mode, rnd Source) models.Element {
	return ElementFor(mode, rnd.Float64())
}
