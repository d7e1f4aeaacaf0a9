package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCartItem_SameLine(t *testing.T) {
	rouge := CartItem{ProductID: "p1", SelectedOptions: map[string]string{"Couleur": "Rouge"}}

	t.Run("même produit, mêmes options", func(t *testing.T) {
		other := CartItem{ProductID: "p1", SelectedOptions: map[string]string{"Couleur": "Rouge"}}
		assert.True(t, rouge.SameLine(other))
	})

	t.Run("même produit, option différente", func(t *testing.T) {
		bleu := CartItem{ProductID: "p1", SelectedOptions: map[string]string{"Couleur": "Bleu"}}
		assert.False(t, rouge.SameLine(bleu))
	})

	t.Run("même produit, options en plus", func(t *testing.T) {
		taille := CartItem{ProductID: "p1", SelectedOptions: map[string]string{"Couleur": "Rouge", "Taille": "M"}}
		assert.False(t, rouge.SameLine(taille))
	})

	t.Run("produit différent", func(t *testing.T) {
		other := CartItem{ProductID: "p2", SelectedOptions: map[string]string{"Couleur": "Rouge"}}
		assert.False(t, rouge.SameLine(other))
	})

	t.Run("sans options des deux côtés", func(t *testing.T) {
		a := CartItem{ProductID: "p1"}
		b := CartItem{ProductID: "p1"}
		assert.True(t, a.SameLine(b))
	})
}
