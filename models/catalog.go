package models

import "encoding/json"

// Category is one node of /admin/categories.json. Children nest two levels.
type Category struct {
	ID               FlexString     `json:"id"`
	Position         FlexString     `json:"position"`
	Depth            FlexString     `json:"depth"`
	Type             FlexString     `json:"type"`
	ParentCategoryID FlexString     `json:"parent_category_id"`
	ParentTitles     FlexString     `json:"parent_titles"`
	Children         List[Category] `json:"children_categories"`
	Langs            LangMap        `json:"-"`
}

func (c *Category) UnmarshalJSON(data []byte) error {
	type plain Category
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	langs, err := ParseLangMap(data)
	if err != nil {
		return err
	}
	*c = Category(p)
	c.Langs = langs
	return nil
}

type CategoryList struct {
	Categories List[Category] `json:"categories"`
}

// Links is the paging block of list endpoints.
type Links struct {
	Count int `json:"count"`
	Pages int `json:"pages"`
}

type DiscountCode struct {
	ID        FlexString `json:"id"`
	Code      FlexString `json:"code"`
	Status    FlexString `json:"status"`
	Type      FlexString `json:"type"`
	Value     FlexString `json:"value"`
	StartDate FlexString `json:"start_date"`
	EndDate   FlexString `json:"end_date"`
}

type DiscountCodeList struct {
	DiscountCodes List[DiscountCode] `json:"discount_codes"`
	Links         Links              `json:"links"`
}

type Review struct {
	ID        FlexString    `json:"id"`
	ShopID    FlexString    `json:"shop_id"`
	CreatedAt FlexString    `json:"created_at"`
	UpdatedAt FlexString    `json:"updated_at"`
	Author    FlexString    `json:"author"`
	Email     FlexString    `json:"email"`
	Content   FlexString    `json:"content"`
	Score     FlexString    `json:"score"`
	IsVisible FlexString    `json:"is_visible"`
	ProductID FlexString    `json:"product_id"`
	Product   ReviewProduct `json:"product"`
}

// ReviewProduct carries only the language titles of the reviewed product.
type ReviewProduct struct {
	Langs LangMap
}

func (p *ReviewProduct) UnmarshalJSON(data []byte) error {
	langs, err := ParseLangMap(data)
	if err != nil {
		return err
	}
	p.Langs = langs
	return nil
}

type ReviewList struct {
	Reviews List[Review] `json:"reviews"`
	Links   Links        `json:"links"`
}

// Collection is a tax class as returned by /admin/collections/{id}.json.
type Collection struct {
	ID                       FlexString       `json:"id"`
	SmartTaxExcludedProducts List[FlexString] `json:"smart_tax_excluded_products"`
	Data                     CollectionData   `json:"data"`
	SmartTaxFilters          SmartTaxFilters  `json:"smart_tax_filters"`
}

type CollectionData struct {
	ExcludedProducts List[FlexString] `json:"excluded_products"`
}

func (d *CollectionData) UnmarshalJSON(data []byte) error {
	*d = CollectionData{}
	if !isObject(data) {
		return nil
	}
	type plain CollectionData
	return json.Unmarshal(data, (*plain)(d))
}

type SmartTaxFilters struct {
	Categories List[FlexString] `json:"categories"`
	Suppliers  List[FlexString] `json:"suppliers"`
	Brands     List[FlexString] `json:"brands"`
}

func (f *SmartTaxFilters) UnmarshalJSON(data []byte) error {
	*f = SmartTaxFilters{}
	if !isObject(data) {
		return nil
	}
	type plain SmartTaxFilters
	return json.Unmarshal(data, (*plain)(f))
}

type CollectionEnvelope struct {
	Collection *Collection `json:"collection"`
}

type CollectionProduct struct {
	ProductID FlexString `json:"product_id"`
}

type CollectionProductList struct {
	CollectionProducts List[CollectionProduct] `json:"collection_products"`
}
