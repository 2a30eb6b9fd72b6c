package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"scentstore/internal/gateway"
	"scentstore/internal/models"
	"scentstore/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	resp *gateway.ChargeResponse
	err  error
	got  *gateway.ChargeRequest
}

func (g *stubGateway) ChargeQRIS(req *gateway.ChargeRequest) (*gateway.ChargeResponse, error) {
	g.got = req
	return g.resp, g.err
}

func newMockPaymentService(t *testing.T, gw gateway.Gateway, serverKey string) (*PaymentService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := store.NewStoreWithDB(sqlx.NewDb(db, "postgres"))
	return NewPaymentService(st, gw, nil, serverKey, 15), mock
}

func TestChargeQRISWrapsGatewayError(t *testing.T) {
	gw := &stubGateway{err: errors.New("midtrans: 500")}
	ps := NewPaymentService(nil, gw, nil, "server-key", 15)

	order := &models.Order{ID: 42, Total: 884000}
	user := &models.User{Name: "Dewi", Email: "dewi@example.com"}

	_, err := ps.ChargeQRIS(order, nil, user)
	assert.ErrorIs(t, err, ErrGateway)
}

func TestChargeQRISBuildsPendingTransaction(t *testing.T) {
	expiry := time.Now().Add(15 * time.Minute)
	gw := &stubGateway{resp: &gateway.ChargeResponse{
		TransactionID: "tx-123",
		QRURL:         "https://api.sandbox.midtrans.com/v2/qris/tx-123/qr-code",
		ExpiresAt:     expiry,
	}}
	ps := NewPaymentService(nil, gw, nil, "server-key", 15)

	order := &models.Order{ID: 42, Total: 884000}
	user := &models.User{Name: "Dewi"}

	ptx, err := ps.ChargeQRIS(order, nil, user)
	require.NoError(t, err)

	assert.Equal(t, int64(42), ptx.OrderID)
	assert.Equal(t, "tx-123", ptx.GatewayTxID)
	assert.Equal(t, models.TxStatusPending, ptx.Status)
	assert.Equal(t, int64(884000), ptx.GrossAmount)
	assert.Equal(t, expiry, ptx.ExpiresAt)
	assert.Contains(t, ptx.GatewayOrderID, "ORD-42-")
	assert.Equal(t, 15, gw.got.ExpiryMinutes)
}

func TestHandleWebhookDropsBadSignature(t *testing.T) {
	ps, mock := newMockPaymentService(t, nil, "server-key")

	n := &gateway.Notification{
		OrderID:           "ORD-42-abcd1234",
		StatusCode:        "200",
		GrossAmount:       "884000.00",
		TransactionStatus: "settlement",
		SignatureKey:      "not-the-right-signature",
	}

	err := ps.HandleWebhook(context.Background(), n)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookDropsUnknownOrder(t *testing.T) {
	ps, mock := newMockPaymentService(t, nil, "server-key")

	n := &gateway.Notification{
		OrderID:           "ORD-99-deadbeef",
		StatusCode:        "200",
		GrossAmount:       "884000.00",
		TransactionStatus: "settlement",
	}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")

	mock.ExpectQuery("SELECT \\* FROM payment_transactions WHERE gateway_order_id").
		WithArgs(n.OrderID).
		WillReturnError(store.ErrNotFound)

	err := ps.HandleWebhook(context.Background(), n)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandleWebhookDropsAmountMismatch(t *testing.T) {
	ps, mock := newMockPaymentService(t, nil, "server-key")

	n := &gateway.Notification{
		OrderID:           "ORD-42-abcd1234",
		StatusCode:        "200",
		GrossAmount:       "10000.00",
		TransactionStatus: "settlement",
	}
	n.SignatureKey = gateway.Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key")

	rows := sqlmock.NewRows([]string{"id", "order_id", "gateway_order_id", "gross_amount", "status"}).
		AddRow(1, 42, n.OrderID, 884000, models.TxStatusPending)
	mock.ExpectQuery("SELECT \\* FROM payment_transactions WHERE gateway_order_id").
		WithArgs(n.OrderID).
		WillReturnRows(rows)

	err := ps.HandleWebhook(context.Background(), n)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
