//go:build integration

package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"velora_back_end/internal/models"
)

func checkoutInput(items ...models.CartItem) CheckoutInput {
	return CheckoutInput{
		CustomerName:  "Alice Dupont",
		CustomerEmail: "alice@example.com",
		Phone:         "+32470000000",
		City:          "Bruxelles",
		Address:       "Rue du Marché 12",
		PaymentMethod: "manual",
		Items:         items,
	}
}

// Propriété 1 : conservation du stock + total = somme des lignes.
func TestCreateOrder_DecrementsStockAndSnapshotsPrices(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)
	tapis := seedProduct(t, db, "Tapis", 120, 10)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
		models.CartItem{ProductID: tapis, Name: "Tapis", Price: 120, Quantity: 3},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if got := productStock(t, db, lampe); got != 3 {
		t.Errorf("stock lampe = %d, attendu 3", got)
	}
	if got := productStock(t, db, tapis); got != 7 {
		t.Errorf("stock tapis = %d, attendu 7", got)
	}
	if order.Status != string(StatusPending) {
		t.Errorf("statut = %s, attendu PENDING", order.Status)
	}
	if order.TotalPrice != 2*500+3*120 {
		t.Errorf("total = %.2f, attendu %.2f", order.TotalPrice, float64(2*500+3*120))
	}

	fetched, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("relecture commande: %v", err)
	}
	var sum float64
	for _, item := range fetched.Items {
		sum += item.Price * float64(item.Quantity)
	}
	if sum != fetched.TotalPrice {
		t.Errorf("somme des snapshots %.2f != total %.2f", sum, fetched.TotalPrice)
	}
}

// Propriété 2 : tout ou rien quand une seule ligne manque de stock.
func TestCreateOrder_AllOrNothingOnInsufficientStock(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)
	tapis := seedProduct(t, db, "Tapis", 120, 1)

	_, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
		models.CartItem{ProductID: tapis, Name: "Tapis", Price: 120, Quantity: 3},
	))

	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("attendu StockError, obtenu %v", err)
	}
	if stockErr.Available != 1 || stockErr.Requested != 3 {
		t.Errorf("StockError = %+v", stockErr)
	}

	// aucune ligne ne doit avoir bougé, aucune commande créée
	if got := productStock(t, db, lampe); got != 5 {
		t.Errorf("stock lampe = %d, attendu 5 (inchangé)", got)
	}
	if got := productStock(t, db, tapis); got != 1 {
		t.Errorf("stock tapis = %d, attendu 1 (inchangé)", got)
	}
	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM orders`).Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("%d commande(s) en base, attendu 0", count)
	}
}

func TestCreateOrder_UnknownProductFailsWhole(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)

	_, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 1},
		models.CartItem{ProductID: "11111111-2222-3333-4444-555555555555", Name: "?", Price: 10, Quantity: 1},
	))

	var notFound *ProductNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("attendu ProductNotFoundError, obtenu %v", err)
	}
	if got := productStock(t, db, lampe); got != 5 {
		t.Errorf("stock lampe = %d, attendu 5 (inchangé)", got)
	}
}

// Propriété 3 : rollback après échec du prestataire de paiement.
func TestRollback_RestoresStockAndDeletesOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if got := productStock(t, db, lampe); got != 3 {
		t.Fatalf("stock après checkout = %d, attendu 3", got)
	}

	if err := repo.Rollback(ctx, order.ID); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	if got := productStock(t, db, lampe); got != 5 {
		t.Errorf("stock après rollback = %d, attendu 5", got)
	}
	if _, err := repo.GetByID(ctx, order.ID); err != ErrNotFound {
		t.Errorf("commande toujours présente après rollback: %v", err)
	}
}

// Propriétés 4 et 5 : annulation rend le stock, dé-annulation le re-déduit.
// Une confirmation de paiement rejouée tardivement (la fenêtre de retry du
// PSP se compte en jours) ne doit jamais faire reculer une commande que
// l'admin a déjà fait avancer.
func TestMarkPaid_NeverRegressesAdvancedOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	paid, err := repo.MarkPaid(ctx, order.ID)
	if err != nil {
		t.Fatalf("première confirmation: %v", err)
	}
	if paid.Status != string(StatusProcessing) {
		t.Errorf("statut = %s, attendu PROCESSING", paid.Status)
	}

	// relivraison immédiate : refusée, statut inchangé
	if _, err := repo.MarkPaid(ctx, order.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("attendu ErrAlreadyProcessed à la relivraison, obtenu %v", err)
	}

	// l'admin fait avancer la commande, puis la confirmation est rejouée
	if _, err := repo.UpdateStatus(ctx, order.ID, StatusShipping); err != nil {
		t.Fatalf("PROCESSING → SHIPPING: %v", err)
	}
	if _, err := repo.MarkPaid(ctx, order.ID); !errors.Is(err, ErrAlreadyProcessed) {
		t.Fatalf("attendu ErrAlreadyProcessed après SHIPPING, obtenu %v", err)
	}

	fetched, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Status != string(StatusShipping) {
		t.Errorf("statut = %s, attendu SHIPPING (aucune régression)", fetched.Status)
	}
}

func TestMarkPaid_UnknownOrder(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	if _, err := repo.MarkPaid(ctx, "00000000-0000-0000-0000-000000000000"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("attendu ErrNotFound, obtenu %v", err)
	}
}

func TestUpdateStatus_CancelAndUncancelAreSymmetric(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	if _, err := repo.UpdateStatus(ctx, order.ID, StatusProcessing); err != nil {
		t.Fatalf("PENDING → PROCESSING: %v", err)
	}
	if got := productStock(t, db, lampe); got != 3 {
		t.Errorf("stock après PROCESSING = %d, attendu 3 (aucun effet)", got)
	}

	if _, err := repo.UpdateStatus(ctx, order.ID, StatusCancelled); err != nil {
		t.Fatalf("PROCESSING → CANCELLED: %v", err)
	}
	if got := productStock(t, db, lampe); got != 5 {
		t.Errorf("stock après annulation = %d, attendu 5", got)
	}

	if _, err := repo.UpdateStatus(ctx, order.ID, StatusProcessing); err != nil {
		t.Fatalf("CANCELLED → PROCESSING: %v", err)
	}
	if got := productStock(t, db, lampe); got != 3 {
		t.Errorf("stock après dé-annulation = %d, attendu 3 (net zéro)", got)
	}
}

// Question ouverte du design tranchée : dé-annuler sans stock disponible est refusé.
func TestUpdateStatus_UncancelRejectedWhenStockGone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 2)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, order.ID, StatusCancelled); err != nil {
		t.Fatalf("annulation: %v", err)
	}

	// le stock rendu part chez quelqu'un d'autre
	if _, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
	)); err != nil {
		t.Fatalf("second checkout: %v", err)
	}

	_, err = repo.UpdateStatus(ctx, order.ID, StatusProcessing)
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("attendu StockError à la dé-annulation, obtenu %v", err)
	}
	if got := productStock(t, db, lampe); got != 0 {
		t.Errorf("stock = %d, attendu 0 (jamais négatif)", got)
	}
	fetched, err := repo.GetByID(ctx, order.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Status != string(StatusCancelled) {
		t.Errorf("statut = %s, attendu CANCELLED (transition refusée)", fetched.Status)
	}
}

// Propriété 6 : le sweep annule les PENDING trop vieux, une seule fois.
func TestCancelAbandoned_IsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 2},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	// antidater la commande au-delà du seuil
	if _, err := db.Exec(
		`UPDATE orders SET created_at = NOW() - INTERVAL '45 minutes' WHERE order_id = $1`,
		order.ID); err != nil {
		t.Fatal(err)
	}

	n, err := repo.CancelAbandoned(ctx, DefaultAbandonedAge)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if n != 1 {
		t.Errorf("sweep a annulé %d commande(s), attendu 1", n)
	}
	if got := productStock(t, db, lampe); got != 5 {
		t.Errorf("stock après sweep = %d, attendu 5", got)
	}

	// second passage : rien à faire, le stock ne bouge plus
	n, err = repo.CancelAbandoned(ctx, DefaultAbandonedAge)
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if n != 0 {
		t.Errorf("second sweep a annulé %d commande(s), attendu 0", n)
	}
	if got := productStock(t, db, lampe); got != 5 {
		t.Errorf("stock après second sweep = %d, attendu 5 (idempotent)", got)
	}

	// une PENDING récente n'est pas touchée
	recent, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 1},
	))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.CancelAbandoned(ctx, DefaultAbandonedAge); err != nil {
		t.Fatal(err)
	}
	fetched, err := repo.GetByID(ctx, recent.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fetched.Status != string(StatusPending) {
		t.Errorf("commande récente passée à %s", fetched.Status)
	}
}

// Propriété 7 : garde de suppression.
func TestDelete_OnlyFromTerminalStates(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 5)

	order, err := repo.CreateOrder(ctx, checkoutInput(
		models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 1},
	))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	for _, status := range []Status{StatusPending, StatusProcessing, StatusShipping} {
		if order.Status != string(status) {
			if _, err := repo.UpdateStatus(ctx, order.ID, status); err != nil {
				t.Fatalf("passage à %s: %v", status, err)
			}
		}
		if err := repo.Delete(ctx, order.ID); err != ErrNotDeletable {
			t.Errorf("suppression depuis %s: attendu ErrNotDeletable, obtenu %v", status, err)
		}
	}

	if _, err := repo.UpdateStatus(ctx, order.ID, StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Errorf("suppression depuis COMPLETED refusée: %v", err)
	}
	if _, err := repo.GetByID(ctx, order.ID); err != ErrNotFound {
		t.Errorf("commande toujours présente après suppression: %v", err)
	}
}

// Course du dernier exemplaire : deux checkouts simultanés, un seul passe.
func TestCreateOrder_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db := setupPostgres(ctx, t)
	repo := NewRepository(db)

	lampe := seedProduct(t, db, "Lampe", 500, 1)

	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := repo.CreateOrder(ctx, checkoutInput(
				models.CartItem{ProductID: lampe, Name: "Lampe", Price: 500, Quantity: 1},
			))
			results <- err
		}()
	}

	var failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			failures++
		}
	}

	if failures != 1 {
		t.Errorf("%d checkout(s) en échec, attendu exactement 1", failures)
	}
	if got := productStock(t, db, lampe); got != 0 {
		t.Errorf("stock final = %d, attendu 0", got)
	}
}
