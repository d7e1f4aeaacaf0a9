package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"velora_back_end/internal/models"
)

// Repository : accès commandes + réservation de stock. Toute la séquence
// réservation + création de commande tient dans UNE transaction : deux
// checkouts concurrents sur la même dernière unité ne peuvent pas passer
// tous les deux, le décrément conditionnel tranche.
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CheckoutInput : panier + coordonnées de livraison.
// UserID vide = commande invité (email + nom obligatoires).
type CheckoutInput struct {
	UserID         string
	CustomerName   string
	CustomerEmail  string
	Phone          string
	City           string
	Address        string
	House          string
	Floor          string
	Notes          string
	PaymentMethod  string // "stripe" ou "manual"
	PayerPhone     string
	TransactionRef string
	Items          []models.CartItem
}

func (in *CheckoutInput) Validate() error {
	if len(in.Items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range in.Items {
		if item.ProductID == "" {
			return fmt.Errorf("ligne de panier sans produit")
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("quantité invalide pour %s", item.ProductID)
		}
	}
	if in.Phone == "" || in.City == "" || in.Address == "" {
		return fmt.Errorf("téléphone, ville et adresse sont obligatoires")
	}
	if in.UserID == "" && (in.CustomerEmail == "" || in.CustomerName == "") {
		return fmt.Errorf("email et nom obligatoires pour une commande invité")
	}
	return nil
}

// CreateOrder réserve le stock et crée la commande PENDING, le tout dans une
// transaction sérialisable. Décrément conditionnel par ligne :
// rows affected = 0 → soit produit inconnu, soit stock insuffisant, et dans
// les deux cas toute la transaction est annulée (tout ou rien).
func (r *Repository) CreateOrder(ctx context.Context, in CheckoutInput) (*models.Order, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	order := &models.Order{
		ID:             uuid.New().String(),
		UserID:         in.UserID,
		Status:         string(StatusPending),
		PaymentMethod:  in.PaymentMethod,
		PayerPhone:     in.PayerPhone,
		TransactionRef: in.TransactionRef,
		CustomerName:   in.CustomerName,
		CustomerEmail:  in.CustomerEmail,
		Phone:          in.Phone,
		City:           in.City,
		Address:        in.Address,
		House:          in.House,
		Floor:          in.Floor,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	for _, item := range in.Items {
		if err := reserveStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			return nil, err
		}
		order.TotalPrice += item.Price * float64(item.Quantity)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (order_id, user_id, status, total_price, payment_method,
			payment_id, transaction_ref, payer_phone,
			customer_name, customer_email, phone, city, address, house, floor, notes,
			created_at, updated_at)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, '', $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
	`, order.ID, order.UserID, order.Status, order.TotalPrice, order.PaymentMethod,
		order.TransactionRef, order.PayerPhone,
		order.CustomerName, order.CustomerEmail, order.Phone, order.City, order.Address,
		order.House, order.Floor, order.Notes, now)
	if err != nil {
		return nil, err
	}

	for _, item := range in.Items {
		optsJSON, err := json.Marshal(item.SelectedOptions)
		if err != nil {
			return nil, err
		}
		snapshot := models.OrderItem{
			ID:              uuid.New().String(),
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			ProductName:     item.Name,
			Quantity:        item.Quantity,
			Price:           item.Price,
			SelectedOptions: item.SelectedOptions,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO order_items (item_id, order_id, product_id, product_name, quantity, price, selected_options)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, snapshot.ID, snapshot.OrderID, snapshot.ProductID, snapshot.ProductName,
			snapshot.Quantity, snapshot.Price, optsJSON)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, snapshot)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return order, nil
}

// reserveStock : décrément conditionnel atomique d'une ligne. C'est la
// garde contre la course du "dernier exemplaire".
func reserveStock(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	result, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock - $2, updated_at = NOW()
		WHERE product_id = $1 AND stock >= $2
	`, productID, quantity)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected > 0 {
		return nil
	}

	// Distinguer "produit inconnu" de "stock insuffisant"
	var name string
	var stock int
	err = tx.QueryRowContext(ctx,
		`SELECT name, stock FROM products WHERE product_id = $1`, productID).
		Scan(&name, &stock)
	if err == sql.ErrNoRows {
		return &ProductNotFoundError{ProductID: productID}
	}
	if err != nil {
		return err
	}
	return &StockError{ProductID: productID, ProductName: name, Available: stock, Requested: quantity}
}

func releaseStock(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE products
		SET stock = stock + $2, updated_at = NOW()
		WHERE product_id = $1
	`, productID, quantity)
	return err
}

// Rollback : transaction de compensation après échec du prestataire de
// paiement. Rend le stock de chaque ligne puis supprime la commande.
func (r *Repository) Rollback(ctx context.Context, orderID string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}

	type line struct {
		productID string
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, l := range lines {
		if err := releaseStock(ctx, tx, l.productID, l.quantity); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

// SetPaymentID enregistre l'identifiant de session du prestataire.
func (r *Repository) SetPaymentID(ctx context.Context, orderID, paymentID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_id = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, paymentID)
	return err
}

// UpdateStatus applique une transition de statut et son effet stock dans une
// transaction. Le SELECT ... FOR UPDATE verrouille la ligne : deux
// transitions concurrentes sur la même commande sont sérialisées, et la
// seconde échoue proprement (from == to) au lieu de doubler l'effet stock.
// MarkPaid passe une commande PENDING en PROCESSING. Un webhook de paiement
// peut être rejoué des jours après coup : si la commande a déjà quitté
// PENDING (relivraison, ou admin passé avant), elle est laissée telle
// quelle et ErrAlreadyProcessed est retourné — le statut ne recule jamais.
func (r *Repository) MarkPaid(ctx context.Context, orderID string) (*models.Order, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW()
		 WHERE order_id = $1 AND status = $3`,
		orderID, string(StatusProcessing), string(StatusPending))
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		var current string
		err := r.db.QueryRowContext(ctx,
			`SELECT status FROM orders WHERE order_id = $1`, orderID).Scan(&current)
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("commande %s en %s: %w", orderID, current, ErrAlreadyProcessed)
	}
	return r.GetByID(ctx, orderID)
}

func (r *Repository) UpdateStatus(ctx context.Context, orderID string, to Status) (*models.Order, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var from Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).
		Scan(&from)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	effect, err := TransitionEffect(from, to)
	if err != nil {
		return nil, err
	}

	if effect != EffectNone {
		if err := applyStockEffect(ctx, tx, orderID, effect); err != nil {
			return nil, err
		}
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, string(to))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, orderID)
}

// applyStockEffect rejoue l'effet stock sur chaque ligne de la commande.
// La re-déduction (sortie de CANCELLED) passe par le décrément conditionnel :
// si le stock a été vendu entre-temps, la dé-annulation est refusée au lieu
// de laisser le stock devenir négatif.
func applyStockEffect(ctx context.Context, tx *sql.Tx, orderID string, effect StockEffect) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT product_id, quantity FROM order_items WHERE order_id = $1`, orderID)
	if err != nil {
		return err
	}

	type line struct {
		productID string
		quantity  int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.productID, &l.quantity); err != nil {
			rows.Close()
			return err
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, l := range lines {
		switch effect {
		case EffectRestore:
			if err := releaseStock(ctx, tx, l.productID, l.quantity); err != nil {
				return err
			}
		case EffectDeduct:
			if err := reserveStock(ctx, tx, l.productID, l.quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete supprime une commande, uniquement depuis COMPLETED ou CANCELLED.
func (r *Repository) Delete(ctx context.Context, orderID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).
		Scan(&status)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if !status.CanDelete() {
		return ErrNotDeletable
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE order_id = $1`, orderID); err != nil {
		return err
	}

	return tx.Commit()
}

const orderColumns = `order_id, COALESCE(user_id::text, ''), status, total_price, payment_method,
	payment_id, transaction_ref, payer_phone,
	customer_name, customer_email, phone, city, address, house, floor, notes,
	created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }) (*models.Order, error) {
	o := &models.Order{}
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.PaymentMethod,
		&o.PaymentID, &o.TransactionRef, &o.PayerPhone,
		&o.CustomerName, &o.CustomerEmail, &o.Phone, &o.City, &o.Address,
		&o.House, &o.Floor, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *Repository) GetByID(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE order_id = $1`, orderID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.loadItems(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *Repository) loadItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT item_id, order_id, product_id, product_name, quantity, price, selected_options
		FROM order_items WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var optsJSON []byte
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.Price, &optsJSON); err != nil {
			return nil, err
		}
		if len(optsJSON) > 0 {
			_ = json.Unmarshal(optsJSON, &item.SelectedOptions)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListByUser : commandes d'un utilisateur, les plus récentes d'abord.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = $1 ORDER BY created_at DESC
	`, userID)
}

// List : vue admin, filtre statut optionnel, pagination.
func (r *Repository) List(ctx context.Context, status string, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if status != "" {
		return r.list(ctx, `
			SELECT `+orderColumns+` FROM orders
			WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
		`, status, limit, offset)
	}
	return r.list(ctx, `
		SELECT `+orderColumns+` FROM orders
		ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
}

func (r *Repository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.loadItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}
