package models

import "encoding/json"

// ProductSummary is one entry of /admin/products.json.
type ProductSummary struct {
	ID     FlexString `json:"id"`
	ShopID FlexString `json:"shop_id"`
}

type ProductList struct {
	Products List[ProductSummary] `json:"products"`
}

// CountResponse is the body of the */count.json endpoints.
type CountResponse struct {
	Count int `json:"count"`
}

type ProductEnvelope struct {
	Product *ProductDetail `json:"product"`
}

// ProductDetail is the subset of /admin/products/{id}.json the exports read.
type ProductDetail struct {
	ID           FlexString            `json:"id"`
	BrandID      FlexValue             `json:"brand_id"`
	SupplierID   FlexValue             `json:"supplier_id"`
	Categories   List[ProductCategory] `json:"product_categories"`
	CustomFields List[CustomField]     `json:"custom_fields"`
	Discounts    List[ProductDiscount] `json:"product_discounts"`
	Relations    List[ProductRelation] `json:"product_relations"`
}

// CategoryIDs lists category_id of every product category.
func (p *ProductDetail) CategoryIDs() []string {
	ids := make([]string, 0, len(p.Categories))
	for _, c := range p.Categories {
		ids = append(ids, string(c.CategoryID))
	}
	return ids
}

type ProductCategory struct {
	CategoryID FlexString  `json:"category_id"`
	Category   CategoryRef `json:"category"`
}

// CategoryRef is the category embedded in a product category, with its
// language blocks.
type CategoryRef struct {
	ID    FlexString `json:"id"`
	Langs LangMap    `json:"-"`
}

func (c *CategoryRef) UnmarshalJSON(data []byte) error {
	if !isObject(data) {
		*c = CategoryRef{}
		return nil
	}
	type plain CategoryRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	langs, err := ParseLangMap(data)
	if err != nil {
		return err
	}
	*c = CategoryRef(p)
	c.Langs = langs
	return nil
}

type CustomField struct {
	ID            FlexString `json:"id"`
	Type          FlexString `json:"type"`
	IsRequired    FlexString `json:"is_required"`
	MaxCharacters FlexString `json:"max_characters"`
	CreatedAt     FlexString `json:"created_at"`
	Langs         LangMap    `json:"-"`
}

func (f *CustomField) UnmarshalJSON(data []byte) error {
	type plain CustomField
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	langs, err := ParseLangMap(data)
	if err != nil {
		return err
	}
	*f = CustomField(p)
	f.Langs = langs
	return nil
}

type ProductDiscount struct {
	ID              FlexString      `json:"id"`
	ProductID       FlexString      `json:"product_id"`
	VariantID       FlexString      `json:"variant_id"`
	StartsAt        FlexString      `json:"starts_at"`
	EndsAt          FlexString      `json:"ends_at"`
	IsEndless       FlexString      `json:"is_endless"`
	Percentage      FlexString      `json:"percentage"`
	Price           FlexString      `json:"price"`
	Quantity        FlexValue       `json:"quantity"`
	Type            FlexString      `json:"type"`
	CustomerGroupID FlexString      `json:"customer_group_id"`
	CustomerGroup   json.RawMessage `json:"customer_group"`
}

// CustomerGroupTitle returns customer_group.title, or "" when the group is
// missing or not an object.
func (d ProductDiscount) CustomerGroupTitle() string {
	if !isObject(d.CustomerGroup) {
		return ""
	}
	var g struct {
		Title FlexString `json:"title"`
	}
	if err := json.Unmarshal(d.CustomerGroup, &g); err != nil {
		return ""
	}
	return string(g.Title)
}

type ProductRelation struct {
	RelatedProductID FlexString `json:"related_product_id"`
	Position         FlexString `json:"position"`
}
