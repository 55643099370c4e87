package game

import "mathking/models"

const UpgradeOtherCost = 10

// upgradeOtherOrder is the greedy debit order for the non-rare elements.
var upgradeOtherOrder = []models.Element{
	models.ElementWater,
	models.ElementWind,
	models.ElementRock,
	models.ElementGrass,
	models.ElementIce,
}

// CanUpgrade reports the reason u cannot level up, or nil.
func CanUpgrade(u *models.User) error {
	if u.Elements.Thunder < 1 || u.Elements.Fire < 1 {
		return ErrInsufficientRare
	}
	if u.Elements.Total(upgradeOtherOrder...) < UpgradeOtherCost {
		return ErrInsufficientOther
	}
	return nil
}

// Upgrade spends one thunder, one fire and ten other elements to raise u's
// level by one.
func Upgrade(u *models.User) error {
	if err := CanUpgrade(u); err != nil {
		return err
	}

	u.Elements.Thunder--
	u.Elements.Fire--

	remaining := UpgradeOtherCost
	for _, el := range upgradeOtherOrder {
		take := min(u.Elements.Get(el), remaining)
		u.Elements.Add(el, -take)
		remaining -= take
		if remaining == 0 {
			break
		}
	}

	u.Level++
	return nil
}
