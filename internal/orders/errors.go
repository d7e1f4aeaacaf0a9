package orders

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCart : checkout sans ligne de panier
	ErrEmptyCart = errors.New("panier vide")
	// ErrNotFound : commande inexistante
	ErrNotFound = errors.New("commande introuvable")
	// ErrNotDeletable : suppression hors état COMPLETED/CANCELLED
	ErrNotDeletable = errors.New("suppression autorisée uniquement pour les commandes terminées ou annulées")
	// ErrAlreadyProcessed : la commande a déjà quitté PENDING (paiement rejoué)
	ErrAlreadyProcessed = errors.New("paiement déjà pris en compte")
)

// ProductNotFoundError : une ligne du panier référence un produit inconnu.
// Tout le checkout échoue, aucune réservation partielle.
type ProductNotFoundError struct {
	ProductID string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("produit introuvable: %s", e.ProductID)
}

// StockError : stock insuffisant pour une ligne. Nomme le produit et les
// deux quantités pour que le front puisse afficher un message utile.
type StockError struct {
	ProductID   string
	ProductName string
	Available   int
	Requested   int
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuffisant pour %s: %d disponible(s), %d demandé(s)",
		e.ProductName, e.Available, e.Requested)
}
