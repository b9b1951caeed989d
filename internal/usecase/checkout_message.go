package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/domain/entity"
	"storefront/pkg/errors"
	"storefront/pkg/utils"
)

const orderLinkBase = "https://wa.me/"

var paymentLabels = map[string]string{
	"pix":  "Pix",
	"card": "Cartão",
	"cash": "Dinheiro",
}

type CheckoutInput struct {
	CustomerName  string `json:"customer_name" validate:"required"`
	PostalCode    string `json:"postal_code" validate:"required"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=pix card cash"`
	Notes         string `json:"notes"`
}

type Order struct {
	Message string          `json:"message"`
	Link    string          `json:"link"`
	Total   decimal.Decimal `json:"total"`
}

// CheckoutMessage builds the pre-filled order text handed to the external
// chat link. Delivering it is up to the shopper's browser.
type CheckoutMessage struct {
	validate *validator.Validate
	currency string
	country  string
	phone    string
}

func NewCheckoutMessage(currency, country, phone string) *CheckoutMessage {
	return &CheckoutMessage{
		validate: validator.New(),
		currency: currency,
		country:  strings.ToUpper(country),
		phone:    phone,
	}
}

func (c *CheckoutMessage) Validate(input CheckoutInput) error {
	if err := c.validate.Struct(input); err != nil {
		if invalid, ok := err.(validator.ValidationErrors); ok && len(invalid) > 0 {
			return errors.Validation(checkoutFieldMessage(invalid[0].Field()))
		}
		return errors.Validation("Invalid checkout details")
	}

	if c.country != "" {
		if err := c.validate.Var(strings.TrimSpace(input.PostalCode), "postcode_iso3166_alpha2="+c.country); err != nil {
			return errors.Validation("Postal code is not valid")
		}
	}
	return nil
}

// BuildOrderMessage itemises lines with their subtotals and appends the
// total, payment method and customer details.
func (c *CheckoutMessage) BuildOrderMessage(lines []entity.CartLine, total decimal.Decimal, input CheckoutInput) (string, error) {
	if len(lines) == 0 {
		return "", errors.Validation("Your cart is empty")
	}
	if err := c.Validate(input); err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("Olá! Gostaria de fazer um pedido:\n\n")
	for _, line := range lines {
		fmt.Fprintf(&b, "%dx %s (Tam: %s, Cor: %s) - %s\n",
			line.Quantity, line.Name, line.Size, line.Color,
			utils.FormatMoney(c.currency, line.Subtotal()))
	}
	fmt.Fprintf(&b, "\nTotal: %s\n", utils.FormatMoney(c.currency, total))
	fmt.Fprintf(&b, "Pagamento: %s\n", paymentLabels[input.PaymentMethod])
	fmt.Fprintf(&b, "Nome: %s\n", strings.TrimSpace(input.CustomerName))
	fmt.Fprintf(&b, "CEP: %s", strings.TrimSpace(input.PostalCode))
	if notes := strings.TrimSpace(input.Notes); notes != "" {
		fmt.Fprintf(&b, "\nObs: %s", notes)
	}
	return b.String(), nil
}

// OrderLink builds the chat deep link for phone with message pre-filled.
func OrderLink(phone, message string) string {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	return orderLinkBase + digits + "?text=" + strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
}

// Checkout builds the order from ledger and empties it in the same step.
func (c *CheckoutMessage) Checkout(ledger *CartLedger, input CheckoutInput) (*Order, error) {
	var order *Order
	err := ledger.Settle(func(lines []entity.CartLine, total decimal.Decimal) error {
		message, err := c.BuildOrderMessage(lines, total, input)
		if err != nil {
			return err
		}
		if c.phone == "" {
			return errors.Internal("Order phone is not configured", nil)
		}
		order = &Order{
			Message: message,
			Link:    OrderLink(c.phone, message),
			Total:   total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func checkoutFieldMessage(field string) string {
	switch field {
	case "CustomerName":
		return "Enter your name"
	case "PostalCode":
		return "Enter your postal code"
	case "PaymentMethod":
		return "Choose a payment method: pix, card or cash"
	default:
		return "Invalid checkout details"
	}
}
