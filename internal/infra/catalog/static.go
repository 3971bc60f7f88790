package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"os"

	"pos-checkout/internal/domain/catalog"
	"pos-checkout/internal/pkg/errs"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type catalogFile struct {
	Products []catalog.Product `yaml:"products"`
}

// StaticCatalog is an immutable, in-memory product list loaded at startup.
type StaticCatalog struct {
	byID     map[string]*catalog.Product
	products []catalog.Product
}

func NewStaticCatalog(products []catalog.Product) (*StaticCatalog, error) {
	c := &StaticCatalog{
		byID:     make(map[string]*catalog.Product, len(products)),
		products: make([]catalog.Product, 0, len(products)),
	}
	for i := range products {
		p := products[i]
		if err := p.Validate(); err != nil {
			return nil, errs.Wrapf(err, "product %q", p.ID)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, errs.Newf("duplicate product id %q", p.ID)
		}
		c.products = append(c.products, p)
		c.byID[p.ID] = &c.products[len(c.products)-1]
	}
	return c, nil
}

// LoadYAML reads a catalog file; an empty path selects the embedded default catalog.
func LoadYAML(path string) (*StaticCatalog, error) {
	data := defaultCatalog
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(err, "failed to read catalog file")
		}
		data = b
	}
	return ParseYAML(data)
}

func ParseYAML(data []byte) (*StaticCatalog, error) {
	var f catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errs.Wrap(err, "failed to parse catalog")
	}
	return NewStaticCatalog(f.Products)
}

func (c *StaticCatalog) FindByID(_ context.Context, id string) (*catalog.Product, error) {
	p, ok := c.byID[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (c *StaticCatalog) List(_ context.Context) ([]catalog.Product, error) {
	out := make([]catalog.Product, len(c.products))
	copy(out, c.products)
	return out, nil
}

func (c *StaticCatalog) Len() int {
	return len(c.products)
}
