package catalog

import (
	"github.com/buccaneer33/spectr-cars-claude/internal/dictionary"
	"github.com/buccaneer33/spectr-cars-claude/internal/extract"
	"github.com/buccaneer33/spectr-cars-claude/internal/types"
)

// Enricher derives the attributes the export does not carry.
type Enricher interface {
	Country(brand string) string
	IsPopular(brand string) bool
	Synthesize(brand string, engine types.Engine) types.Figures
}

// Collection is the output of the collect stage: the catalog records and the
// dictionary builder populated with every value they reference.
type Collection struct {
	Catalog    types.Catalog
	Dictionary *dictionary.Builder
}

// Collect extracts and enriches every walked node and gathers the results.
func Collect(brands []BrandNode, years *extract.YearParser, enricher Enricher) *Collection {
	c := &Collection{Dictionary: dictionary.NewBuilder()}

	for _, bn := range brands {
		brand := types.Brand{
			ID:      bn.ID,
			Name:    bn.Name,
			Code:    bn.Code,
			Country: enricher.Country(bn.Name),
			Popular: enricher.IsPopular(bn.Name),
		}
		c.Catalog.Brands = append(c.Catalog.Brands, brand)
		c.Dictionary.AddCountry(brand.Country)

		for _, mn := range bn.Models {
			c.Catalog.Models = append(c.Catalog.Models, types.Model{
				ID:           mn.ID,
				BrandID:      brand.ID,
				Name:         mn.Name,
				Code:         mn.Code,
				GenerationID: mn.GenerationID,
			})

			for _, mod := range mn.Modifications {
				c.Catalog.Specifications = append(c.Catalog.Specifications, c.specification(brand, mn.ID, mod, years, enricher))
			}
		}
	}

	return c
}

func (c *Collection) specification(brand types.Brand, modelID int, mod ModificationNode, years *extract.YearParser, enricher Enricher) types.Specification {
	engine := extract.ParseModificationName(mod.Name)
	from, to := years.Parse(mod.Years)

	c.Dictionary.AddBodyType(mod.BodyType)
	c.Dictionary.AddFuelType(engine.FuelType)
	c.Dictionary.AddTransmission(engine.Transmission)
	c.Dictionary.AddDriveType(engine.DriveType)

	return types.Specification{
		ID:         mod.ID,
		ModelID:    modelID,
		BrandID:    brand.ID,
		Name:       mod.Name,
		ExternalID: mod.ExternalID,
		BodyType:   mod.BodyType,
		Engine:     engine,
		YearFrom:   from,
		YearTo:     to,
		Figures:    enricher.Synthesize(brand.Name, engine),
	}
}
