package gateway

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"scentstore/internal/models"
)

// Notification is the webhook payload delivered by the gateway
type Notification struct {
	OrderID           string `json:"order_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
	TransactionTime   string `json:"transaction_time"`
	FraudStatus       string `json:"fraud_status"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	PaymentType       string `json:"payment_type"`
}

// Signature computes the expected notification signature:
// sha512(order_id + status_code + gross_amount + server_key).
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature checks the webhook's signature_key against the
// server key in constant time.
func (n *Notification) VerifySignature(serverKey string) bool {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(strings.ToLower(n.SignatureKey))) == 1
}

// GrossAmountValue parses the gateway's "884000.00"-style amount into
// whole rupiah.
func (n *Notification) GrossAmountValue() (int64, error) {
	amount := n.GrossAmount
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		amount = amount[:i]
	}
	return strconv.ParseInt(amount, 10, 64)
}

// MapTransactionStatus translates the gateway's transaction_status
// (with fraud_status) into the stored transaction status. Empty result
// means the status is not actionable (e.g. "pending") and the webhook
// should be ignored.
func MapTransactionStatus(transactionStatus, fraudStatus string) string {
	switch transactionStatus {
	case "settlement", "capture":
		if fraudStatus == "challenge" || fraudStatus == "deny" {
			return models.TxStatusFailed
		}
		return models.TxStatusSettled
	case "expire":
		return models.TxStatusExpire
	case "cancel", "deny", "failure":
		return models.TxStatusFailed
	default:
		return ""
	}
}
