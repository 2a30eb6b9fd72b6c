package gateway

import (
	"testing"

	"scentstore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	n := &Notification{
		OrderID:     "ORD-25-abc",
		StatusCode:  "200",
		GrossAmount: "884000.00",
	}
	n.SignatureKey = Signature(n.OrderID, n.StatusCode, n.GrossAmount, "server-key-1")

	assert.True(t, n.VerifySignature("server-key-1"))
	assert.False(t, n.VerifySignature("server-key-2"))

	n.SignatureKey = "deadbeef"
	assert.False(t, n.VerifySignature("server-key-1"))
}

func TestGrossAmountValue(t *testing.T) {
	n := &Notification{GrossAmount: "884000.00"}
	v, err := n.GrossAmountValue()
	require.NoError(t, err)
	assert.Equal(t, int64(884000), v)

	n.GrossAmount = "15000"
	v, err = n.GrossAmountValue()
	require.NoError(t, err)
	assert.Equal(t, int64(15000), v)

	n.GrossAmount = "abc"
	_, err = n.GrossAmountValue()
	assert.Error(t, err)
}

func TestMapTransactionStatus(t *testing.T) {
	assert.Equal(t, models.TxStatusSettled, MapTransactionStatus("settlement", ""))
	assert.Equal(t, models.TxStatusSettled, MapTransactionStatus("capture", "accept"))
	assert.Equal(t, models.TxStatusFailed, MapTransactionStatus("capture", "deny"))
	assert.Equal(t, models.TxStatusExpire, MapTransactionStatus("expire", ""))
	assert.Equal(t, models.TxStatusFailed, MapTransactionStatus("cancel", ""))
	assert.Equal(t, models.TxStatusFailed, MapTransactionStatus("deny", ""))

	// pending and unknown statuses are not actionable
	assert.Equal(t, "", MapTransactionStatus("pending", ""))
	assert.Equal(t, "", MapTransactionStatus("authorize", ""))
}
