package resource

// Category is a product category. The API reports categories in two
// buckets (matches and context); both end up in the same collection.
type Category struct {
	entity
}

func newCategory(store lookup) *Category {
	c := &Category{}
	c.init(KindCategory, store)
	return c
}

// Products returns every product filed under this category.
func (c *Category) Products() []*Product { return typed[*Product](c.products().All()) }

func (c *Category) products() *Related { return c.scan("products", KindProduct, "category") }

// Resolve implements [Resource].
func (c *Category) Resolve(name string) (*Related, error) {
	if name == "products" {
		return c.products(), nil
	}
	return nil, c.unknown(name)
}

// Brand is a product brand.
type Brand struct {
	entity
}

func newBrand(store lookup) *Brand {
	b := &Brand{}
	b.init(KindBrand, store)
	return b
}

// Products returns every product of this brand.
func (b *Brand) Products() []*Product { return typed[*Product](b.products().All()) }

func (b *Brand) products() *Related { return b.scan("products", KindProduct, "brand") }

// Resolve implements [Resource].
func (b *Brand) Resolve(name string) (*Related, error) {
	if name == "products" {
		return b.products(), nil
	}
	return nil, b.unknown(name)
}
