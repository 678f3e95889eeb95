package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/model"
	"github.com/rutlandfarmpark/booking-api/internal/service"
)

// ShopCheckout starts a hosted payment session for a shop order.
type ShopCheckout interface {
	InitiateShopOrder(ctx context.Context, req service.ShopOrderRequest) (service.ShopCheckoutResult, error)
}

// ShopHandler serves the shop checkout endpoint.
type ShopHandler struct {
	checkout ShopCheckout
	logger   *zap.Logger
}

// NewShopHandler constructs a ShopHandler.
func NewShopHandler(checkout ShopCheckout, logger *zap.Logger) *ShopHandler {
	return &ShopHandler{checkout: checkout, logger: logger}
}

type shopItemRequest struct {
	Type              string `json:"type"`
	ProductID         uint64 `json:"product_id"`
	Name              string `json:"name"`
	Variant           string `json:"variant"`
	Quantity          int    `json:"quantity"`
	Price             int64  `json:"price"`
	RecipientName     string `json:"recipient_name"`
	RecipientEmail    string `json:"recipient_email"`
	PersonalMessage   string `json:"personal_message"`
	AnimalID          uint64 `json:"animal_id"`
	TierID            uint64 `json:"tier_id"`
	IsGift            bool   `json:"is_gift"`
	GiftRecipientName string `json:"gift_recipient_name"`
}

type shopCheckoutRequest struct {
	Items           []shopItemRequest `json:"items"`
	DeliveryMethod  string            `json:"delivery_method"`
	ShippingAddress *model.Address    `json:"shipping_address"`
	CustomerName    string            `json:"customer_name"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerPhone   string            `json:"customer_phone"`
}

// Checkout handles POST /v1/shop/checkout.  The cart may mix products, gift
// vouchers and animal adoptions; one pending order and its child records are
// created before the hosted payment session opens.
func (h *ShopHandler) Checkout(c echo.Context) error {
	var body shopCheckoutRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request body."})
	}

	items := make([]service.ShopItem, 0, len(body.Items))
	for _, it := range body.Items {
		items = append(items, service.ShopItem{
			Type:              it.Type,
			ProductID:         it.ProductID,
			Name:              it.Name,
			Variant:           it.Variant,
			Quantity:          it.Quantity,
			Price:             it.Price,
			RecipientName:     it.RecipientName,
			RecipientEmail:    it.RecipientEmail,
			PersonalMessage:   it.PersonalMessage,
			AnimalID:          it.AnimalID,
			TierID:            it.TierID,
			IsGift:            it.IsGift,
			GiftRecipientName: it.GiftRecipientName,
		})
	}

	res, err := h.checkout.InitiateShopOrder(c.Request().Context(), service.ShopOrderRequest{
		Items:           items,
		DeliveryMethod:  body.DeliveryMethod,
		ShippingAddress: body.ShippingAddress,
		CustomerName:    body.CustomerName,
		CustomerEmail:   body.CustomerEmail,
		CustomerPhone:   body.CustomerPhone,
	})
	if err != nil {
		return respondCheckoutError(c, h.logger, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"checkout_url": res.URL,
		"reference":    res.Reference,
	})
}
