package gateway

import (
	"fmt"
	"time"

	"scentstore/internal/models"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"
)

// ChargeRequest carries everything the gateway needs to create a QRIS
// transaction.
type ChargeRequest struct {
	GatewayOrderID string
	GrossAmount    int64
	ExpiryMinutes  int
	CustomerName   string
	CustomerEmail  string
	CustomerPhone  string
	Items          []models.OrderItem
}

// ChargeResponse is the subset of the gateway reply the storefront keeps
type ChargeResponse struct {
	TransactionID string
	QRURL         string
	ExpiresAt     time.Time
	RawPayload    []byte
}

// Gateway creates QRIS transactions. Implemented by the Midtrans Core
// API client; tests substitute a fake.
type Gateway interface {
	ChargeQRIS(req *ChargeRequest) (*ChargeResponse, error)
}

// The gateway reports timestamps as zone-less Jakarta local time.
var jakarta = time.FixedZone("WIB", 7*60*60)

// ParseGatewayTime interprets a gateway timestamp ("2006-01-02
// 15:04:05", no offset) in the gateway's Jakarta zone.
func ParseGatewayTime(value string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02 15:04:05", value, jakarta)
}

// MidtransGateway calls the Midtrans Core API
type MidtransGateway struct {
	client    coreapi.Client
	serverKey string
}

// NewMidtransGateway creates a configured Core API client
func NewMidtransGateway(serverKey string, production bool) *MidtransGateway {
	env := midtrans.Sandbox
	if production {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(serverKey, env)

	return &MidtransGateway{client: client, serverKey: serverKey}
}

// ChargeQRIS creates a QRIS transaction with a custom expiry window
func (g *MidtransGateway) ChargeQRIS(req *ChargeRequest) (*ChargeResponse, error) {
	items := make([]midtrans.ItemDetails, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    fmt.Sprintf("%d-%d", item.ProductID, item.SizeID),
			Name:  fmt.Sprintf("%s %s", item.ProductName, item.Size),
			Price: item.UnitPrice,
			Qty:   int32(item.Quantity),
		})
	}

	chargeReq := &coreapi.ChargeReq{
		PaymentType: coreapi.PaymentTypeQris,
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  req.GatewayOrderID,
			GrossAmt: req.GrossAmount,
		},
		Items: &items,
		CustomerDetails: &midtrans.CustomerDetails{
			FName: req.CustomerName,
			Email: req.CustomerEmail,
			Phone: req.CustomerPhone,
		},
		Qris: &coreapi.QrisDetails{Acquirer: "gopay"},
		CustomExpiry: &coreapi.CustomExpiry{
			ExpiryDuration: req.ExpiryMinutes,
			Unit:           "minute",
		},
	}

	resp, mErr := g.client.ChargeTransaction(chargeReq)
	if mErr != nil {
		return nil, fmt.Errorf("gateway charge failed: %w", mErr)
	}

	var qrURL string
	for _, action := range resp.Actions {
		if action.Name == "generate-qr-code" {
			qrURL = action.URL
			break
		}
	}

	expiresAt := time.Now().Add(time.Duration(req.ExpiryMinutes) * time.Minute)
	if resp.ExpiryTime != "" {
		if parsed, err := ParseGatewayTime(resp.ExpiryTime); err == nil {
			expiresAt = parsed
		}
	}

	raw := []byte(fmt.Sprintf(
		`{"transaction_id":%q,"order_id":%q,"transaction_status":%q,"qr_url":%q}`,
		resp.TransactionID, resp.OrderID, resp.TransactionStatus, qrURL))

	return &ChargeResponse{
		TransactionID: resp.TransactionID,
		QRURL:         qrURL,
		ExpiresAt:     expiresAt,
		RawPayload:    raw,
	}, nil
}
