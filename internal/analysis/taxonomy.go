package analysis

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed taxonomy.yaml
var taxonomyYAML []byte

// Category is one of the fixed supply-chain problem domains.
type Category string

const (
	CategoryInventory       Category = "inventory"
	CategoryLogistics       Category = "logistics"
	CategoryFulfillment     Category = "fulfillment"
	CategoryPayment         Category = "payment"
	CategoryQuality         Category = "quality"
	CategoryCustomerService Category = "customer_service"
	CategoryTechnology      Category = "technology"

	// CategoryGeneral is returned by single-ticket triage when nothing matches.
	// It never owns a bucket.
	CategoryGeneral Category = "general"
)

// Categories is the closed category set in evaluation order.
var Categories = []Category{
	CategoryInventory,
	CategoryLogistics,
	CategoryFulfillment,
	CategoryPayment,
	CategoryQuality,
	CategoryCustomerService,
	CategoryTechnology,
}

// DisplayName turns customer_service into "Customer Service".
func (c Category) DisplayName() string {
	parts := strings.Split(string(c), "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// rank is the category's position in Categories, or len(Categories) if unknown.
func (c Category) rank() int {
	for i, cat := range Categories {
		if cat == c {
			return i
		}
	}
	return len(Categories)
}

type Subcategory struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

type CategoryDef struct {
	Name          Category      `yaml:"name"`
	Keywords      []string      `yaml:"keywords"`
	Subcategories []Subcategory `yaml:"subcategories"`
	Actions       []string      `yaml:"actions"`
}

type Lexicon struct {
	Positive []string `yaml:"positive"`
	Negative []string `yaml:"negative"`
}

// Taxonomy holds the keyword tables shared by every analysis run. It is
// read-only after loading.
type Taxonomy struct {
	Categories []CategoryDef `yaml:"categories"`
	Sentiment  Lexicon       `yaml:"sentiment"`

	byName map[Category]*CategoryDef
}

// DefaultTaxonomy is parsed from the embedded taxonomy.yaml.
var DefaultTaxonomy = mustLoadTaxonomy(taxonomyYAML)

func mustLoadTaxonomy(data []byte) *Taxonomy {
	t, err := LoadTaxonomy(data)
	if err != nil {
		panic(fmt.Sprintf("load taxonomy.yaml: %v", err))
	}
	return t
}

// LoadTaxonomy parses a taxonomy document. The document must list exactly the
// closed category set, in order, and every subcategory keyword must belong to
// its category.
func LoadTaxonomy(data []byte) (*Taxonomy, error) {
	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if len(t.Categories) != len(Categories) {
		return nil, fmt.Errorf("expected %d categories, got %d", len(Categories), len(t.Categories))
	}
	t.byName = make(map[Category]*CategoryDef, len(t.Categories))
	for i := range t.Categories {
		def := &t.Categories[i]
		if def.Name != Categories[i] {
			return nil, fmt.Errorf("category %d: expected %q, got %q", i, Categories[i], def.Name)
		}
		if len(def.Keywords) == 0 {
			return nil, fmt.Errorf("category %q has no keywords", def.Name)
		}
		if len(def.Actions) == 0 {
			return nil, fmt.Errorf("category %q has no actions", def.Name)
		}
		for j, kw := range def.Keywords {
			def.Keywords[j] = strings.ToLower(strings.TrimSpace(kw))
		}
		for _, sub := range def.Subcategories {
			for k, kw := range sub.Keywords {
				kw = strings.ToLower(strings.TrimSpace(kw))
				if !containsString(def.Keywords, kw) {
					return nil, fmt.Errorf("category %q subcategory %q: keyword %q not in category", def.Name, sub.Name, kw)
				}
				sub.Keywords[k] = kw
			}
		}
		t.byName[def.Name] = def
	}
	if len(t.Sentiment.Positive) == 0 || len(t.Sentiment.Negative) == 0 {
		return nil, fmt.Errorf("sentiment lexicon is empty")
	}
	return &t, nil
}

// Def returns the definition for c, or nil for CategoryGeneral and unknown names.
func (t *Taxonomy) Def(c Category) *CategoryDef {
	return t.byName[c]
}

// Actions returns the fixed action list for c.
func (t *Taxonomy) Actions(c Category) []string {
	if def := t.Def(c); def != nil {
		return def.Actions
	}
	return nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
