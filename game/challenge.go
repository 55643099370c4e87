package game

import "mathking/models"

// ChallengeToll is debited on entering challenge mode.
var ChallengeToll = map[models.Element]int{
	models.ElementWater: 1,
	models.ElementWind:  1,
	models.ElementRock:  1,
	models.ElementGrass: 1,
}

// StartChallenge debits the toll from u. Either every element is debited or,
// when any is short, nothing is.
func StartChallenge(u *models.User) error {
	for el, n := range ChallengeToll {
		if u.Elements.Get(el) < n {
			return ErrInsufficientElements
		}
	}
	for el, n := range ChallengeToll {
		u.Elements.Add(el, -n)
	}
	return nil
}
