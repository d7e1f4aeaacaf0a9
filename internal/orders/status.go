package orders

import "fmt"

// Status : cycle de vie d'une commande.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipping   Status = "SHIPPING"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// StockEffect : effet d'une transition de statut sur le stock des produits.
type StockEffect int

const (
	// EffectNone : transitions entre PENDING/PROCESSING/SHIPPING/COMPLETED
	EffectNone StockEffect = iota
	// EffectRestore : passage vers CANCELLED — le stock réservé est rendu
	EffectRestore
	// EffectDeduct : sortie de CANCELLED — le stock est re-déduit (symétrique)
	EffectDeduct
)

// AllStatuses, dans l'ordre du cycle de vie nominal.
var AllStatuses = []Status{StatusPending, StatusProcessing, StatusShipping, StatusCompleted, StatusCancelled}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipping, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// CanDelete : la suppression n'est permise que depuis un état terminal.
func (s Status) CanDelete() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transition de statut invalide: %s → %s", e.From, e.To)
}

// TransitionEffect calcule l'effet stock d'une transition. C'est le SEUL
// endroit où les effets de bord stock sont décidés : l'annulation rend le
// stock, la dé-annulation le re-déduit, tout le reste est neutre.
func TransitionEffect(from, to Status) (StockEffect, error) {
	if !from.Valid() || !to.Valid() {
		return EffectNone, &InvalidTransitionError{From: from, To: to}
	}
	if from == to {
		return EffectNone, &InvalidTransitionError{From: from, To: to}
	}

	switch {
	case to == StatusCancelled:
		return EffectRestore, nil
	case from == StatusCancelled:
		return EffectDeduct, nil
	default:
		return EffectNone, nil
	}
}
