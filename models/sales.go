package models

import "encoding/json"

type Order struct {
	ID                        FlexString            `json:"id"`
	Number                    FlexString            `json:"number"`
	Status                    FlexString            `json:"status"`
	PaymentProviderKey        FlexString            `json:"payment_provider_key"`
	ShippingAddressRegionName FlexString            `json:"shipping_address_region_name"`
	GiftCardPayments          List[json.RawMessage] `json:"gift_card_payments"`
	OrderProducts             List[OrderProduct]    `json:"order_products"`
}

type OrderProduct struct {
	ProductTitle FlexString `json:"product_title"`
}

type OrderList struct {
	Orders List[Order] `json:"orders"`
	Links  Links       `json:"links"`
}

type Customer struct {
	ID                        FlexString `json:"id"`
	Email                     FlexString `json:"email"`
	BillingAddressRegionID    FlexString `json:"billing_address_region_id"`
	BillingAddressRegionName  FlexString `json:"billing_address_region_name"`
	BillingAddressZipcode     FlexString `json:"billing_address_zipcode"`
	ShippingAddressRegionID   FlexString `json:"shipping_address_region_id"`
	ShippingAddressRegionName FlexString `json:"shipping_address_region_name"`
	ShippingAddressZipcode    FlexString `json:"shipping_address_zipcode"`
}

type CustomerList struct {
	Customers List[Customer] `json:"customers"`
}

type Invoice struct {
	ID     FlexString `json:"id"`
	Number FlexString `json:"number"`
}

type InvoiceList struct {
	Invoices List[Invoice] `json:"invoices"`
}

// CheckoutDetails is the storefront /checkout/onestep/details/?format=json body.
type CheckoutDetails struct {
	Checkout struct {
		Quote struct {
			Products List[CheckoutProduct] `json:"products"`
		} `json:"quote"`
		Discount struct {
			Rules List[DiscountRule] `json:"rules"`
		} `json:"discount"`
		ShipmentMethod json.RawMessage `json:"shipment_method"`
	} `json:"checkout"`
}

// Shipment returns the selected shipment method, if any.
func (c *CheckoutDetails) Shipment() (*ShipmentMethod, bool) {
	raw := c.Checkout.ShipmentMethod
	if !isObject(raw) {
		return nil, false
	}
	var m ShipmentMethod
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return &m, true
}

type CheckoutProduct struct {
	ProductID                FlexString `json:"product_id"`
	VariantID                FlexString `json:"variant_id"`
	Title                    FlexString `json:"title"`
	Quantity                 FlexString `json:"quantity"`
	AdditionalCostPriceIncl  FlexString `json:"additional_cost_price_incl"`
	AdditionalCostPriceExcl  FlexString `json:"additional_cost_price_excl"`
	DiscountExcl             FlexString `json:"discount_excl"`
	DiscountIncl             FlexString `json:"discount_incl"`
	TaxRate                  FlexString `json:"tax_rate"`
	PriceExcl                FlexString `json:"price_excl"`
	PriceIncl                FlexString `json:"price_incl"`
	StockLevel               FlexString `json:"stock_level"`
	SizeX                    FlexString `json:"size_x"`
	SizeY                    FlexString `json:"size_y"`
	SizeZ                    FlexString `json:"size_z"`
	Weight                   FlexString `json:"weight"`
	QuantityDiscountMessages FlexString `json:"quantity_discount_messages"`
}

type DiscountRule struct {
	ID       FlexString       `json:"id"`
	Type     FlexString       `json:"type"`
	Title    FlexString       `json:"title"`
	IsActive FlexString       `json:"is_active"`
	IsStop   FlexString       `json:"is_stop"`
	Data     DiscountRuleData `json:"data"`
}

type DiscountRuleData struct {
	MinCatAmount    FlexString       `json:"min_cat_amount"`
	DiscountAmount  FlexString       `json:"discount_amount"`
	CategoriesNames List[FlexString] `json:"categories_names"`
}

func (d *DiscountRuleData) UnmarshalJSON(data []byte) error {
	*d = DiscountRuleData{}
	if !isObject(data) {
		return nil
	}
	type plain DiscountRuleData
	return json.Unmarshal(data, (*plain)(d))
}

type ShipmentMethod struct {
	ID             FlexString `json:"id"`
	TaxRate        FlexString `json:"tax_rate"`
	Title          FlexString `json:"title"`
	Discount       FlexString `json:"discount"`
	IsServicePoint FlexString `json:"is_service_point"`
	Data           struct {
		Method     FlexString `json:"method"`
		ShipmentID FlexString `json:"shipment_id"`
	} `json:"data"`
}
