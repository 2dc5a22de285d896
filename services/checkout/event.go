package checkout

import "encoding/json"

// Event kinds that entitle the purchaser to a license. Everything else
// is acknowledged and ignored.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventInvoicePaid       = "invoice.paid"
)

// Event is the payment provider's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object Object `json:"object"`
	} `json:"data"`
}

// Object is the checkout session or invoice the event wraps. The
// purchaser's address may live in any of several optional fields
// depending on how the purchase was made.
type Object struct {
	Customer        string           `json:"customer"`
	CustomerEmail   string           `json:"customer_email"`
	CustomerDetails *CustomerDetails `json:"customer_details"`
}

type CustomerDetails struct {
	Email string `json:"email"`
}

func ParseEvent(body []byte) (Event, error) {
	var evt Event
	err := json.Unmarshal(body, &evt)
	return evt, err
}

// Qualifies reports whether the event kind produces a license.
func (e Event) Qualifies() bool {
	return e.Type == EventCheckoutCompleted || e.Type == EventInvoicePaid
}

// InlineEmail walks the ordered fallback chain of inline address
// fields and returns the first non-empty one. The remote customer
// lookup is the caller's last resort.
func (e Event) InlineEmail() string {
	if d := e.Data.Object.CustomerDetails; d != nil && d.Email != "" {
		return d.Email
	}
	return e.Data.Object.CustomerEmail
}
