package resource

// Product is a catalog product. Its offers arrive nested inside the product
// payload and are attached at ingestion time through [Store.Link], not
// derived by scanning.
type Product struct {
	entity
	offers *Related
}

func newProduct(store lookup) *Product {
	p := &Product{offers: newMany("offers", nil)}
	p.init(KindProduct, store)
	return p
}

// Offers returns the offers nested under this product, in payload order.
func (p *Product) Offers() []*Offer { return typed[*Offer](p.offers.All()) }

// Category returns the product's category, or a [*Dummy] if it is missing.
func (p *Product) Category() Resource { return p.category().One() }

// Brand returns the product's brand, or a [*Dummy] if it is missing.
func (p *Product) Brand() Resource { return p.brand().One() }

func (p *Product) category() *Related { return p.ref("category", KindCategory, "category") }
func (p *Product) brand() *Related    { return p.ref("brand", KindBrand, "brand") }

// Resolve implements [Resource].
func (p *Product) Resolve(name string) (*Related, error) {
	switch name {
	case "offers":
		return p.offers, nil
	case "category":
		return p.category(), nil
	case "brand":
		return p.brand(), nil
	}
	return nil, p.unknown(name)
}

// Offer is one merchant's listing of a product.
type Offer struct {
	entity
	product *Related
}

func newOffer(store lookup) *Offer {
	o := &Offer{}
	o.init(KindOffer, store)
	return o
}

// Product returns the product this offer was nested in, or nil if the offer
// was not internalized from a product payload.
func (o *Offer) Product() *Product {
	if o.product == nil {
		return nil
	}
	p, _ := o.product.One().(*Product)
	return p
}

// Merchant returns the offering merchant, or a [*Dummy] if it is missing.
func (o *Offer) Merchant() Resource { return o.merchant().One() }

func (o *Offer) merchant() *Related { return o.ref("merchant", KindMerchant, "merchant") }

// Resolve implements [Resource].
func (o *Offer) Resolve(name string) (*Related, error) {
	switch name {
	case "product":
		if o.product == nil {
			return o.memoize(name, func() *Related {
				return newOne(name, newDummy(KindProduct, ""))
			}), nil
		}
		return o.product, nil
	case "merchant":
		return o.merchant(), nil
	}
	return nil, o.unknown(name)
}

// link sets the bidirectional product/offer association.
func link(p *Product, o *Offer) {
	p.offers.items = append(p.offers.items, o)
	o.product = newOne("product", p)
}
