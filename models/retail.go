package models

import "encoding/json"

// SaleResponse is the body of the retail Sale.json search. Sale is an object
// for one match and an array for several.
type SaleResponse struct {
	Sale json.RawMessage `json:"Sale"`
}

// SaleID returns the first sale's saleID, or "" when nothing matched.
func (r *SaleResponse) SaleID() string {
	var sales List[struct {
		SaleID FlexString `json:"saleID"`
	}]
	if isObject(r.Sale) {
		var one struct {
			SaleID FlexString `json:"saleID"`
		}
		if err := json.Unmarshal(r.Sale, &one); err != nil {
			return ""
		}
		return string(one.SaleID)
	}
	if err := json.Unmarshal(r.Sale, &sales); err != nil || len(sales) == 0 {
		return ""
	}
	return string(sales[0].SaleID)
}

// SaleLookup is the outcome for one order reference.
type SaleLookup struct {
	Reference string
	SaleID    string
	Missing   bool
	Err       error
}
