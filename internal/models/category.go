package models

import (
	"encoding/json"
	"strings"
)

// CategoryKind enumerates the catalog categories. The zero value is CategoryOther.
type CategoryKind int

const (
	CategoryOther CategoryKind = iota
	CategoryFilters
	CategoryTools
)

var categoryKinds = []CategoryKind{CategoryFilters, CategoryTools, CategoryOther}

// Value is the label persisted in the store.
func (k CategoryKind) Value() string {
	switch k {
	case CategoryFilters:
		return "Filtros"
	case CategoryTools:
		return "Herramientas"
	default:
		return "Otros"
	}
}

// Name is the symbolic name of the kind.
func (k CategoryKind) Name() string {
	switch k {
	case CategoryFilters:
		return "FILTERS"
	case CategoryTools:
		return "TOOLS"
	default:
		return "OTHER"
	}
}

// Category is a parsed category. Input that named no known category parses to
// CategoryOther and keeps the original text in Raw.
type Category struct {
	Kind CategoryKind
	Raw  string
}

// ParseCategory matches s against the stored labels and the symbolic names,
// ignoring case and surrounding space. ok is false when s matched nothing.
func ParseCategory(s string) (Category, bool) {
	v := strings.TrimSpace(s)
	for _, k := range categoryKinds {
		if strings.EqualFold(v, k.Value()) || strings.EqualFold(v, k.Name()) {
			return Category{Kind: k}, true
		}
	}
	return Category{Kind: CategoryOther, Raw: s}, false
}

// Unparsed reports whether the category came from unrecognized input.
func (c Category) Unparsed() bool {
	return c.Raw != ""
}

func (c Category) String() string {
	return c.Kind.Value()
}

func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Kind.Value())
}

func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c, _ = ParseCategory(s)
	return nil
}
