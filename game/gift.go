package game

import "mathking/models"

// Gift moves amount of el from sender to receiver. Nothing changes on error.
func Gift(sender, receiver *models.User, el models.Element, amount int) error {
	if _, ok := models.ParseElement(string(el)); !ok {
		return ErrUnknownElement
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if sender.ID == receiver.ID {
		return ErrSelfGift
	}
	if sender.Elements.Get(el) < amount {
		return ErrInsufficientElements
	}

	sender.Elements.Add(el, -amount)
	receiver.Elements.Add(el, amount)
	return nil
}
