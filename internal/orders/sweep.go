package orders

import (
	"context"
	"database/sql"
	"log"
	"time"
)

// DefaultAbandonedAge : une commande PENDING plus vieille que ça est
// considérée comme un checkout abandonné.
const DefaultAbandonedAge = 30 * time.Minute

// CancelAbandoned annule les commandes PENDING plus vieilles que maxAge et
// rend leur stock. Chaque commande est traitée dans sa propre transaction,
// re-vérifiée sous verrou : un second passage (ou un sweep concurrent) voit
// CANCELLED et passe son chemin — l'opération est idempotente.
func (r *Repository) CancelAbandoned(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)

	rows, err := r.db.QueryContext(ctx, `
		SELECT order_id FROM orders
		WHERE status = $1 AND created_at < $2
	`, string(StatusPending), cutoff)
	if err != nil {
		return 0, err
	}

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()

	cancelled := 0
	for _, id := range ids {
		ok, err := r.cancelIfStillPending(ctx, id)
		if err != nil {
			log.Printf("⚠️ Sweep: annulation de %s échouée: %v", id, err)
			continue
		}
		if ok {
			cancelled++
		}
	}
	return cancelled, nil
}

func (r *Repository) cancelIfStillPending(ctx context.Context, orderID string) (bool, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	var status Status
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM orders WHERE order_id = $1 FOR UPDATE`, orderID).
		Scan(&status)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if status != StatusPending {
		// quelqu'un est passé avant nous (paiement, admin, autre sweep)
		return false, nil
	}

	if err := applyStockEffect(ctx, tx, orderID, EffectRestore); err != nil {
		return false, err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = NOW() WHERE order_id = $1`,
		orderID, string(StatusCancelled))
	if err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// StartSweeper lance le balayage périodique des checkouts abandonnés.
// S'arrête quand le contexte est annulé.
func StartSweeper(ctx context.Context, r *Repository, interval, maxAge time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := r.CancelAbandoned(ctx, maxAge)
				if err != nil {
					log.Printf("❌ Sweep commandes abandonnées: %v", err)
					continue
				}
				if n > 0 {
					log.Printf("🧹 %d commande(s) abandonnée(s) annulée(s), stock restauré", n)
				}
			}
		}
	}()
}
