package rules

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Condition is a node of a rule's condition tree. A node with And or Or
// children is a logical node; otherwise Field, Op and Value form a leaf.
type Condition struct {
	Field string      `json:"field,omitempty"`
	Op    string      `json:"op,omitempty"`
	Value interface{} `json:"value,omitempty"`
	And   []Condition `json:"and,omitempty"`
	Or    []Condition `json:"or,omitempty"`
}

// Candidate is the view of a transaction that conditions are evaluated on.
type Candidate struct {
	Description string
	Amount      decimal.Decimal
	Account     string
	Type        string
}

var (
	stringFields = map[string]bool{"description": true, "account": true, "type": true}
	ops          = map[string]bool{"equals": true, "contains": true, "gte": true, "lte": true, "gt": true, "lt": true, "in": true}
)

func ParseConditions(raw json.RawMessage) (Condition, error) {
	var cond Condition
	if len(raw) == 0 {
		return cond, fmt.Errorf("conditions are required")
	}
	if err := json.Unmarshal(raw, &cond); err != nil {
		return cond, fmt.Errorf("malformed conditions: %w", err)
	}
	return cond, cond.validate()
}

func (c Condition) validate() error {
	if len(c.And) > 0 && len(c.Or) > 0 {
		return fmt.Errorf("a condition cannot combine and with or")
	}
	children := c.And
	if len(c.Or) > 0 {
		children = c.Or
	}
	if len(children) > 0 {
		for _, child := range children {
			if err := child.validate(); err != nil {
				return err
			}
		}
		return nil
	}
	if !stringFields[c.Field] && c.Field != "amount" {
		return fmt.Errorf("unknown field %q", c.Field)
	}
	if !ops[c.Op] {
		return fmt.Errorf("unknown op %q", c.Op)
	}
	if c.Value == nil {
		return fmt.Errorf("condition on %q has no value", c.Field)
	}
	return nil
}

// Evaluate reports whether the candidate satisfies the condition tree.
func Evaluate(cond Condition, c Candidate) bool {
	if len(cond.And) > 0 {
		for _, child := range cond.And {
			if !Evaluate(child, c) {
				return false
			}
		}
		return true
	}
	if len(cond.Or) > 0 {
		for _, child := range cond.Or {
			if Evaluate(child, c) {
				return true
			}
		}
		return false
	}

	if cond.Field == "amount" {
		return compareAmount(cond.Op, c.Amount, cond.Value)
	}

	var s string
	switch cond.Field {
	case "description":
		s = c.Description
	case "account":
		s = c.Account
	case "type":
		s = c.Type
	default:
		return false
	}
	switch cond.Op {
	case "equals":
		val, ok := cond.Value.(string)
		return ok && strings.EqualFold(s, val)
	case "contains":
		val, ok := cond.Value.(string)
		return ok && strings.Contains(strings.ToLower(s), strings.ToLower(val))
	case "in":
		arr, ok := cond.Value.([]interface{})
		if !ok {
			return false
		}
		for _, v := range arr {
			if str, ok := v.(string); ok && strings.EqualFold(s, str) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func compareAmount(op string, amount decimal.Decimal, value interface{}) bool {
	if op == "in" {
		arr, ok := value.([]interface{})
		if !ok {
			return false
		}
		for _, v := range arr {
			if d, ok := toDecimal(v); ok && amount.Equal(d) {
				return true
			}
		}
		return false
	}
	d, ok := toDecimal(value)
	if !ok {
		return false
	}
	switch op {
	case "equals":
		return amount.Equal(d)
	case "gte":
		return amount.GreaterThanOrEqual(d)
	case "lte":
		return amount.LessThanOrEqual(d)
	case "gt":
		return amount.GreaterThan(d)
	case "lt":
		return amount.LessThan(d)
	default:
		return false
	}
}

// toDecimal accepts JSON numbers and numeric strings.
func toDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}
