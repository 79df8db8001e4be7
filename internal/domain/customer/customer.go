package customer

// RawRecord is a customer row exactly as loaded from a source, every field an
// uninterpreted string. Cleaning owns interpretation.
type RawRecord struct {
	CustomerID   string
	CustomerName string
	MobileNumber string
	Region       string
}

// Customer is a cleaned customer record: deduplicated by CustomerID within a
// pipeline run and immutable thereafter. MobileNumber is the join key to order
// line items.
type Customer struct {
	CustomerID   string `json:"customer_id"`
	CustomerName string `json:"customer_name"`
	MobileNumber string `json:"mobile_number"`
	Region       string `json:"region"`
}
