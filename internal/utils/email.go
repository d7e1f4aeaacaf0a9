package utils

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/wneessen/go-mail"

	"velora_back_end/internal/models"
)

func SendConfirmationEmail(to, subject, htmlBody string, pdfAttachment []byte) error {
	msg := mail.NewMsg()

	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = "noreply@velora.shop"
	}
	if err := msg.From(from); err != nil {
		return err
	}
	if err := msg.To(to); err != nil {
		return err
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if pdfAttachment != nil {
		msg.AttachReader("facture_velora.pdf", bytes.NewReader(pdfAttachment))
	}

	client, err := mail.NewClient(os.Getenv("SMTP_HOST"),
		mail.WithPort(587),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(os.Getenv("SMTP_USERNAME")),
		mail.WithPassword(os.Getenv("SMTP_PASSWORD")),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return err
	}

	log.Println("📤 Envoi de l'e-mail à", to)
	return client.DialAndSend(msg)
}

// SendOrderStatusEmail envoie un email de notification de changement de statut
func SendOrderStatusEmail(order models.Order, userEmail string, newStatus string) error {
	subject := getStatusEmailSubject(newStatus)
	html := generateStatusEmailHTML(order, newStatus)

	err := SendConfirmationEmail(userEmail, subject, html, nil)
	if err != nil {
		log.Printf("❌ Erreur envoi email statut: %v", err)
		return err
	}

	log.Printf("📧 Email de statut envoyé: %s → %s", newStatus, userEmail)
	return nil
}

func getStatusEmailSubject(status string) string {
	switch status {
	case "PROCESSING":
		return "✅ Paiement confirmé - Velora"
	case "SHIPPING":
		return "📦 Votre commande a été expédiée - Velora"
	case "COMPLETED":
		return "🎉 Votre commande a été livrée - Velora"
	case "CANCELLED":
		return "❌ Commande annulée - Velora"
	default:
		return "📋 Mise à jour de votre commande - Velora"
	}
}

func getStatusMessage(status string) string {
	switch status {
	case "PROCESSING":
		return "Votre paiement a été confirmé avec succès. Nous préparons votre commande."
	case "SHIPPING":
		return "Bonne nouvelle ! Votre commande a été expédiée et est en route vers vous."
	case "COMPLETED":
		return "Votre commande a été livrée avec succès. Nous espérons que vous en êtes satisfait !"
	case "CANCELLED":
		return "Votre commande a été annulée. Si vous avez des questions, n'hésitez pas à nous contacter."
	default:
		return "Le statut de votre commande a été mis à jour."
	}
}

func generateStatusEmailHTML(order models.Order, status string) string {
	tracking := ""
	if status == "SHIPPING" {
		tracking = fmt.Sprintf(`<p><a href="%s" style="color: #2d6a4f;">Suivre ma commande</a></p>`, TrackingURL(order.ID))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2d6a4f;">Velora</h1>
		<p>%s</p>
		<div style="background: #f8f9fa; padding: 20px; border-radius: 8px;">
			<p><strong>Numéro de commande:</strong> #%s</p>
			<p><strong>Montant total:</strong> %.2f€</p>
			<p><strong>Statut:</strong> %s</p>
		</div>
		%s
		<p style="color: #999; font-size: 12px;">Cet email a été envoyé automatiquement, merci de ne pas y répondre.</p>
	</div>
</body>
</html>
`, getStatusMessage(status), shortID(order.ID), order.TotalPrice, status, tracking)
}

// GenerateOrderConfirmationHTML génère le HTML de confirmation de commande
func GenerateOrderConfirmationHTML(order models.Order, userEmail string) string {
	itemsHTML := ""
	for _, item := range order.Items {
		itemsHTML += fmt.Sprintf(`
			<tr>
				<td>%s</td>
				<td>%d</td>
				<td>%.2f€</td>
				<td>%.2f€</td>
			</tr>`, item.ProductName, item.Quantity, item.Price, item.Price*float64(item.Quantity))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="fr">
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; color: #333;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px;">
		<h1 style="color: #2d6a4f;">Merci pour votre commande !</h1>
		<p>Commande <strong>#%s</strong> confirmée pour %s.</p>
		<table style="width: 100%%; border-collapse: collapse;">
			<tr><th>Produit</th><th>Qté</th><th>Prix</th><th>Total</th></tr>
			%s
		</table>
		<p style="text-align: right; font-size: 18px;"><strong>Total : %.2f€</strong></p>
	</div>
</body>
</html>
`, shortID(order.ID), userEmail, itemsHTML, order.TotalPrice)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
