package resource

// Merchant is a store selling offers and publishing deals.
type Merchant struct {
	entity
}

func newMerchant(store lookup) *Merchant {
	m := &Merchant{}
	m.init(KindMerchant, store)
	return m
}

// Offers returns every offer whose merchant attribute names this merchant.
func (m *Merchant) Offers() []*Offer { return typed[*Offer](m.offers().All()) }

// Deals returns every deal whose merchant attribute names this merchant.
func (m *Merchant) Deals() []*Deal { return typed[*Deal](m.deals().All()) }

// Country returns the merchant's country, or a [*Dummy].
func (m *Merchant) Country() Resource { return m.country().One() }

// MerchantType returns the merchant's type, or a [*Dummy].
func (m *Merchant) MerchantType() Resource { return m.merchantType().One() }

// Category returns the merchant's category, or a [*Dummy].
func (m *Merchant) Category() Resource { return m.category().One() }

func (m *Merchant) offers() *Related  { return m.scan("offers", KindOffer, "merchant") }
func (m *Merchant) deals() *Related   { return m.scan("deals", KindDeal, "merchant") }
func (m *Merchant) country() *Related { return m.ref("country", KindCountry, "country") }
func (m *Merchant) merchantType() *Related {
	return m.ref("merchant_type", KindMerchantType, "merchant_type")
}
func (m *Merchant) category() *Related { return m.ref("category", KindCategory, "category") }

// Resolve implements [Resource].
func (m *Merchant) Resolve(name string) (*Related, error) {
	switch name {
	case "offers":
		return m.offers(), nil
	case "deals":
		return m.deals(), nil
	case "country":
		return m.country(), nil
	case "merchant_type":
		return m.merchantType(), nil
	case "category":
		return m.category(), nil
	}
	return nil, m.unknown(name)
}

// Country groups merchants by the country they operate in.
type Country struct {
	entity
}

func newCountry(store lookup) *Country {
	c := &Country{}
	c.init(KindCountry, store)
	return c
}

// Merchants returns every merchant located in this country.
func (c *Country) Merchants() []*Merchant { return typed[*Merchant](c.merchants().All()) }

func (c *Country) merchants() *Related { return c.scan("merchants", KindMerchant, "country") }

// Resolve implements [Resource].
func (c *Country) Resolve(name string) (*Related, error) {
	if name == "merchants" {
		return c.merchants(), nil
	}
	return nil, c.unknown(name)
}

// MerchantType classifies merchants (for example online-only or retail).
type MerchantType struct {
	entity
}

func newMerchantType(store lookup) *MerchantType {
	t := &MerchantType{}
	t.init(KindMerchantType, store)
	return t
}

// Merchants returns every merchant of this type.
func (t *MerchantType) Merchants() []*Merchant { return typed[*Merchant](t.merchants().All()) }

func (t *MerchantType) merchants() *Related {
	return t.scan("merchants", KindMerchant, "merchant_type")
}

// Resolve implements [Resource].
func (t *MerchantType) Resolve(name string) (*Related, error) {
	if name == "merchants" {
		return t.merchants(), nil
	}
	return nil, t.unknown(name)
}
