package model

import "time"

// Direction tells whether a ledger transaction brings cash in or takes it out.
type Direction string

const (
	Inflow  Direction = "inflow"
	Outflow Direction = "outflow"
)

// FlowType is the cash flow statement section a transaction reports under.
type FlowType string

const (
	Operating FlowType = "operating"
	Investing FlowType = "investing"
	Financing FlowType = "financing"
)

// FlowTypes lists the statement sections in reporting order.
var FlowTypes = []FlowType{Operating, Investing, Financing}

// Transaction is one ledger entry used to build historical series.
type Transaction struct {
	ID          string
	Date        time.Time
	Category    string
	Subcategory string
	Amount      float64 // always positive, sign carried by Direction
	Direction   Direction
	FlowType    FlowType // empty reads as Operating
	Description string
	SourceFile  string
}

// Signed returns the amount with inflows positive and outflows negative.
func (t Transaction) Signed() float64 {
	if t.Direction == Outflow {
		return -t.Amount
	}
	return t.Amount
}

// Flow returns the statement section, defaulting to Operating.
func (t Transaction) Flow() FlowType {
	if t.FlowType == "" {
		return Operating
	}
	return t.FlowType
}
