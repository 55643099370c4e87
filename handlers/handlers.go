// handlers/handlers.go - Shared state and error mapping for the game API
package handlers

import (
	"errors"

	"mathking/game"
	"mathking/services"
	"mathking/utils"

	"github.com/gofiber/fiber/v2"
)

var (
	gameService  *services.GameService
	broadcastHub *services.BroadcastHub
)

// InitGameHandlers wires the services the game endpoints use.
func InitGameHandlers(gs *services.GameService, hub *services.BroadcastHub) {
	if gs == nil {
		panic("game service not initialized before InitGameHandlers")
	}
	gameService = gs
	broadcastHub = hub
}

// failureMessages maps domain errors to the message shown to players.
var failureMessages = []struct {
	err     error
	message string
}{
	{services.ErrUserNotFound, "User not found"},
	{services.ErrQuestionNotFound, "Question not found"},
	{services.ErrStudentNotFound, "Student not found in roster"},
	{services.ErrAccountMismatch, "Account does not match the roster"},
	{services.ErrReceiverNotFound, "Target user not found"},
	{game.ErrInsufficientRare, "Not enough rare elements"},
	{game.ErrInsufficientOther, "Not enough other elements"},
	{game.ErrInsufficientElements, "Not enough elements"},
	{game.ErrUnknownElement, "Unknown element"},
	{game.ErrInvalidAmount, "Gift amount must be a positive integer"},
	{game.ErrSelfGift, "Cannot gift elements to yourself"},
}

// respondError answers domain failures with success=false and hands anything
// else to the app's error handler.
func respondError(c *fiber.Ctx, err error) error {
	for _, f := range failureMessages {
		if errors.Is(err, f.err) {
			return utils.Fail(c, f.message)
		}
	}
	return err
}
