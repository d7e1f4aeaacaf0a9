package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"velora_back_end/internal/models"
)

func validInput() CheckoutInput {
	return CheckoutInput{
		UserID:        "u-1",
		Phone:         "+32470000000",
		City:          "Bruxelles",
		Address:       "Rue du Marché 12",
		PaymentMethod: "stripe",
		Items: []models.CartItem{
			{ProductID: "p-1", Name: "Lampe", Price: 500, Quantity: 2},
		},
	}
}

func TestCheckoutInputValidate(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		in := validInput()
		assert.NoError(t, in.Validate())
	})

	t.Run("panier vide", func(t *testing.T) {
		in := validInput()
		in.Items = nil
		assert.ErrorIs(t, in.Validate(), ErrEmptyCart)
	})

	t.Run("quantité nulle", func(t *testing.T) {
		in := validInput()
		in.Items[0].Quantity = 0
		assert.Error(t, in.Validate())
	})

	t.Run("adresse manquante", func(t *testing.T) {
		in := validInput()
		in.Address = ""
		assert.Error(t, in.Validate())
	})

	t.Run("invité sans email", func(t *testing.T) {
		in := validInput()
		in.UserID = ""
		in.CustomerName = "Alice"
		assert.Error(t, in.Validate())

		in.CustomerEmail = "alice@example.com"
		assert.NoError(t, in.Validate())
	})

	t.Run("champs optionnels acceptés", func(t *testing.T) {
		in := validInput()
		in.House = "3B"
		in.Floor = "2"
		in.Notes = "sonner deux fois"
		assert.NoError(t, in.Validate())
	})
}
