// models/elements.go - Element currency counters
package models

// Element is one of the seven typed currency counters earned by correct answers.
type Element string

const (
	ElementFire    Element = "fire"
	ElementWater   Element = "water"
	ElementWind    Element = "wind"
	ElementRock    Element = "rock"
	ElementGrass   Element = "grass"
	ElementThunder Element = "thunder"
	ElementIce     Element = "ice"
)

// AllElements lists every element key in display order.
var AllElements = []Element{
	ElementFire,
	ElementWater,
	ElementWind,
	ElementRock,
	ElementGrass,
	ElementThunder,
	ElementIce,
}

// ParseElement validates a client supplied element key.
func ParseElement(s string) (Element, bool) {
	for _, e := range AllElements {
		if string(e) == s {
			return e, true
		}
	}
	return "", false
}

// Elements holds the per-user element counts. Stored as plain columns
// (element_fire, element_water, ...) through gorm's embedded struct support.
type Elements struct {
	Fire    int `gorm:"default:0" json:"fire"`
	Water   int `gorm:"default:0" json:"water"`
	Wind    int `gorm:"default:0" json:"wind"`
	Rock    int `gorm:"default:0" json:"rock"`
	Grass   int `gorm:"default:0" json:"grass"`
	Thunder int `gorm:"default:0" json:"thunder"`
	Ice     int `gorm:"default:0" json:"ice"`
}

func (e *Elements) slot(el Element) *int {
	switch el {
	case ElementFire:
		return &e.Fire
	case ElementWater:
		return &e.Water
	case ElementWind:
		return &e.Wind
	case ElementRock:
		return &e.Rock
	case ElementGrass:
		return &e.Grass
	case ElementThunder:
		return &e.Thunder
	case ElementIce:
		return &e.Ice
	}
	return nil
}

// Get returns the count for el, or 0 for an unknown key.
func (e Elements) Get(el Element) int {
	if p := e.slot(el); p != nil {
		return *p
	}
	return 0
}

// Add adjusts the count for el by n. Callers check sufficiency before debiting.
func (e *Elements) Add(el Element, n int) {
	if p := e.slot(el); p != nil {
		*p += n
	}
}

// Set overwrites the count for el.
func (e *Elements) Set(el Element, n int) {
	if p := e.slot(el); p != nil {
		*p = n
	}
}

// Total sums the counts of the given elements.
func (e Elements) Total(els ...Element) int {
	sum := 0
	for _, el := range els {
		sum += e.Get(el)
	}
	return sum
}
