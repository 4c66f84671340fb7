// Package catalog holds the named identifier categories offered for generation.
// A category is plain configuration: a display name and a fixed digit length.
package catalog

import (
	_ "embed"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const MaxLength = 64

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrDuplicate       = errors.New("duplicate category")
)

//go:embed catalog.yaml
var defaultCatalog []byte

type Category struct {
	Selector int    `json:"selector" validate:"gte=1"      yaml:"selector"`
	Group    string `json:"group"    validate:"required"   yaml:"-"`
	Name     string `json:"name"     validate:"required"   yaml:"name"`
	Length   int    `json:"length"   validate:"gte=1,lte=64" yaml:"length"`
}

type group struct {
	Name       string     `yaml:"name"`
	Categories []Category `yaml:"categories"`
}

type file struct {
	Groups []group `yaml:"groups"`
}

// Catalog is an immutable, ordered set of categories. Safe for concurrent reads.
type Catalog struct {
	categories []Category
	groups     []string
	bySelector map[int]int
	byName     map[string]int
}

// Default returns the built-in catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a YAML catalog from path.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read catalog %s", path)
	}

	return Parse(data)
}

// LoadOrDefault loads path, or the built-in catalog when path is empty.
func LoadOrDefault(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	return Load(path)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog")
	}

	var categories []Category
	for _, g := range doc.Groups {
		for _, category := range g.Categories {
			category.Group = g.Name
			categories = append(categories, category)
		}
	}

	return New(categories)
}

// New validates categories and indexes them. Group order follows first appearance.
func New(categories []Category) (*Catalog, error) {
	validate := validator.New()
	cat := &Catalog{
		categories: make([]Category, 0, len(categories)),
		groups:     nil,
		bySelector: make(map[int]int),
		byName:     make(map[string]int),
	}

	seenGroups := make(map[string]struct{})
	for _, category := range categories {
		if err := validate.Struct(category); err != nil {
			return nil, errors.Wrapf(err, "invalid category %q", category.Name)
		}

		if _, found := cat.bySelector[category.Selector]; found {
			return nil, errors.Wrapf(ErrDuplicate, "selector %d", category.Selector)
		}

		key := normalize(category.Name)
		if _, found := cat.byName[key]; found {
			return nil, errors.Wrapf(ErrDuplicate, "name %q", category.Name)
		}

		if _, found := seenGroups[category.Group]; !found {
			seenGroups[category.Group] = struct{}{}
			cat.groups = append(cat.groups, category.Group)
		}

		cat.bySelector[category.Selector] = len(cat.categories)
		cat.byName[key] = len(cat.categories)
		cat.categories = append(cat.categories, category)
	}

	return cat, nil
}

// All returns the categories in declaration order.
func (c *Catalog) All() []Category {
	result := make([]Category, len(c.categories))
	copy(result, c.categories)

	return result
}

// Groups returns group names in declaration order.
func (c *Catalog) Groups() []string {
	result := make([]string, len(c.groups))
	copy(result, c.groups)

	return result
}

// InGroup returns the categories of one group.
func (c *Catalog) InGroup(name string) []Category {
	var result []Category
	for _, category := range c.categories {
		if category.Group == name {
			result = append(result, category)
		}
	}

	return result
}

func (c *Catalog) BySelector(selector int) (Category, bool) {
	idx, found := c.bySelector[selector]
	if !found {
		return Category{}, false
	}

	return c.categories[idx], true
}

// ByName looks a category up by name, ignoring case and surrounding spaces.
func (c *Catalog) ByName(name string) (Category, bool) {
	idx, found := c.byName[normalize(name)]
	if !found {
		return Category{}, false
	}

	return c.categories[idx], true
}

// Resolve accepts either a selector number or a category name.
func (c *Catalog) Resolve(ref string) (Category, error) {
	ref = strings.TrimSpace(ref)

	if selector, err := strconv.Atoi(ref); err == nil {
		if category, found := c.BySelector(selector); found {
			return category, nil
		}
	}

	if category, found := c.ByName(ref); found {
		return category, nil
	}

	return Category{}, errors.Wrapf(ErrUnknownCategory, "%q", ref)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
