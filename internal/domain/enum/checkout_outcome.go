package enum

import (
	"database/sql/driver"
	"encoding/json"
)

// CheckoutOutcome is how a checkout attempt ended
type CheckoutOutcome int

const (
	OutcomeSuccess        CheckoutOutcome = 0
	OutcomePartialSuccess CheckoutOutcome = 1
	OutcomeFailure        CheckoutOutcome = 2
)

func (o CheckoutOutcome) String() string {
	names := [...]string{"Success", "PartialSuccess", "Failure"}
	if int(o) < 0 || int(o) >= len(names) {
		return "Failure"
	}
	return names[o]
}

// OrderCreated reports whether an order exists for this outcome
func (o CheckoutOutcome) OrderCreated() bool {
	return o == OutcomeSuccess || o == OutcomePartialSuccess
}

func (o CheckoutOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

func (o *CheckoutOutcome) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*o = CheckoutOutcome(i)
		return nil
	}
	switch str {
	case "Success":
		*o = OutcomeSuccess
	case "PartialSuccess":
		*o = OutcomePartialSuccess
	case "Failure":
		*o = OutcomeFailure
	}
	return nil
}

func (o CheckoutOutcome) Value() (driver.Value, error) {
	return int64(o), nil
}

func (o *CheckoutOutcome) Scan(value interface{}) error {
	if value == nil {
		*o = OutcomeFailure
		return nil
	}
	switch v := value.(type) {
	case int64:
		*o = CheckoutOutcome(v)
	case int:
		*o = CheckoutOutcome(v)
	}
	return nil
}
