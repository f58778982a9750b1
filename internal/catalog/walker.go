package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Element and attribute names of the catalog export.
const (
	brandElement        = "mark"
	modelElement        = "folder"
	modificationElement = "modification"

	brandCodeElement = "code"
	modelCodeElement = "model"
	bodyTypeElement  = "body_type"
	yearsElement     = "years"
)

// ErrMissingName is returned when a brand, model or modification has no
// name attribute.
var ErrMissingName = errors.New("missing name attribute")

// WalkOptions holds the defaults applied to missing optional elements.
type WalkOptions struct {
	// DefaultBodyType is used for modifications without a <body_type>.
	DefaultBodyType string
}

// BrandNode is a brand read from the document, with its models.
type BrandNode struct {
	ID     int
	Name   string
	Code   string
	Models []ModelNode
}

// ModelNode is a model read from the document, with its modifications.
type ModelNode struct {
	ID            int
	Name          string
	Code          string
	GenerationID  string
	Modifications []ModificationNode
}

// ModificationNode is a modification read from the document. Years holds the
// raw range text and is empty when the document has none.
type ModificationNode struct {
	ID         int
	Name       string
	ExternalID string
	BodyType   string
	Years      string
}

// Walk reads every brand below root, the models nested under each brand and
// the modifications nested under each model. Brands, models and modifications
// are numbered from 1 in document order, each in its own sequence.
func Walk(root *Node, opts WalkOptions) ([]BrandNode, error) {
	var (
		brands         []BrandNode
		modelID        int
		modificationID int
	)

	for bi, mark := range root.Descendants(brandElement) {
		name, ok := mark.Attr("name")
		if !ok {
			return nil, fmt.Errorf("%s #%d: %w", brandElement, bi+1, ErrMissingName)
		}

		brand := BrandNode{
			ID:   bi + 1,
			Name: name,
			Code: strings.ToUpper(name),
		}
		if code, ok := mark.ChildText(brandCodeElement); ok {
			brand.Code = code
		}

		for _, folder := range mark.Descendants(modelElement) {
			modelName, ok := folder.Attr("name")
			if !ok {
				return nil, fmt.Errorf("%s %q: %s #%d: %w", brandElement, name, modelElement, modelID+1, ErrMissingName)
			}
			modelID++

			model := ModelNode{
				ID:   modelID,
				Name: modelName,
				Code: modelName,
			}
			model.GenerationID, _ = folder.Attr("id")
			if code, ok := folder.ChildText(modelCodeElement); ok {
				model.Code = code
			}

			for _, mod := range folder.Descendants(modificationElement) {
				modName, ok := mod.Attr("name")
				if !ok {
					return nil, fmt.Errorf("%s %q: %s #%d: %w", modelElement, modelName, modificationElement, modificationID+1, ErrMissingName)
				}
				modificationID++

				modification := ModificationNode{
					ID:       modificationID,
					Name:     modName,
					BodyType: opts.DefaultBodyType,
				}
				modification.ExternalID, _ = mod.Attr("id")
				if bodyType, ok := mod.ChildText(bodyTypeElement); ok {
					modification.BodyType = bodyType
				}
				modification.Years, _ = mod.ChildText(yearsElement)

				model.Modifications = append(model.Modifications, modification)
			}

			brand.Models = append(brand.Models, model)
		}

		brands = append(brands, brand)
	}

	return brands, nil
}
