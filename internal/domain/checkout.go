package domain

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	purchaseEventName = "Purchase"
	defaultCurrency   = "EUR"
	contentIDPrefix   = "tc_"
)

// amountPrefix matches the leading decimal of values like "49.90 EUR".
var amountPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// PurchaseFromCheckout maps a checkout provider's order webhook to a Purchase
// event. Identity values it finds go to user_data; the request-derived ones
// are added later by Enrich.
func PurchaseFromCheckout(p Payload, now time.Time) Event {
	custom := map[string]any{
		"value":    parseAmount(firstSet(p, "order_total", "charge_total")),
		"currency": defaultCurrency,
	}
	if currency := stringValue(p["currency"]); currency != "" {
		custom["currency"] = strings.ToUpper(currency)
	}
	if orderID := firstSet(p, "order_id", "invoice_id", "transaction_id"); orderID != nil {
		custom["order_id"] = orderID
	}
	if productID := stringValue(p["product_id"]); productID != "" {
		custom["content_ids"] = []any{contentIDPrefix + productID}
	}

	user := map[string]any{}
	if fbp := stringValue(p["fbp"]); fbp != "" {
		user[UserFBP] = fbp
	}
	if fbc := stringValue(p["fbc"]); fbc != "" {
		user[UserFBC] = fbc
	}
	if customer, ok := p["customer"].(map[string]any); ok {
		if hash := stringValue(customer["email_hash"]); hash != "" {
			user[UserExternalID] = hash
		}
		if email := stringValue(customer["email"]); email != "" {
			user[UserEmail] = email
		}
	}

	ev := Event{
		FieldEventName:    purchaseEventName,
		FieldEventTime:    now.Unix(),
		FieldActionSource: defaultActionSource,
		FieldUserData:     user,
		FieldCustomData:   custom,
	}
	if eventID := firstSet(p, "event_id", "eid"); eventID != nil {
		ev[FieldEventID] = eventID
	}
	return ev
}

func firstSet(p Payload, keys ...string) any {
	for _, key := range keys {
		if isSet(p[key]) {
			return p[key]
		}
	}
	return nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func parseAmount(v any) float64 {
	amount, err := strconv.ParseFloat(amountPrefix.FindString(stringValue(v)), 64)
	if err != nil {
		return 0
	}
	return amount
}
