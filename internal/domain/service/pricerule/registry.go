package pricerule

import (
	"fmt"
	"os"
	"sort"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"mm_scanner/internal/domain"
	"mm_scanner/internal/domain/value"
	"mm_scanner/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// Codes артикулы правила: в файле это строка или список строк.
type Codes []string

func (c *Codes) UnmarshalJSON(b []byte) error {
	var single string
	if err := json.Unmarshal(b, &single); err == nil {
		if single == "" {
			*c = nil
		} else {
			*c = Codes{single}
		}

		return nil
	}

	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}

	*c = list

	return nil
}

// Rule одна позиция прайса скупки.
type Rule struct {
	Description string  `json:"description"`
	Name        string  `json:"name"`
	Code        Codes   `json:"code"`
	Memory      string  `json:"memory"`
	Price       float64 `json:"price"`
	Sim         string  `json:"sim"`
	PriceSim    float64 `json:"priceSim"`
	Result      string  `json:"result"`
}

type category struct {
	prefix string
	rules  []Rule
}

// Registry таблица цен перекупа: префикс категории из названия товара -> правила.
type Registry struct {
	categories []category
}

func NewRegistry(raw map[string][]Rule) *Registry {
	categories := make([]category, 0, len(raw))
	for prefix, rules := range raw {
		categories = append(categories, category{prefix: strings.ToLower(strings.TrimSpace(prefix)), rules: rules})
	}

	// длинный префикс точнее
	sort.Slice(categories, func(i, j int) bool {
		if len(categories[i].prefix) != len(categories[j].prefix) {
			return len(categories[i].prefix) > len(categories[j].prefix)
		}

		return categories[i].prefix < categories[j].prefix
	})

	return &Registry{categories: categories}
}

// Load читает categories.json.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapError(err, errcodes.ConfigError, "read categories file")
	}

	var raw map[string][]Rule
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, domain.WrapError(err, errcodes.ConfigError, fmt.Sprintf("parse categories file %s", path))
	}

	return NewRegistry(raw), nil
}

func (r *Registry) Len() int {
	return len(r.categories)
}

// Evaluate возвращает цену перекупа и статус закупки для товара.
func (r *Registry) Evaluate(title string, attributes value.Attributes) (*float64, string) {
	title = strings.ToLower(title)
	values := attributes.Values()

	for _, c := range r.categories {
		if !strings.HasPrefix(title, c.prefix) {
			continue
		}

		for _, rule := range c.rules {
			if !rule.matches(title, values) {
				continue
			}

			price := rule.Price
			if rule.Sim != "" && strings.Contains(title, strings.ToLower(rule.Sim)) {
				price = rule.PriceSim
			}

			if price <= 0 {
				return nil, ""
			}

			return &price, rule.Result
		}
	}

	return nil, ""
}

func (rule Rule) matches(title string, attrValues []string) bool {
	if rule.Description != "" && !strings.Contains(title, strings.ToLower(rule.Description)) {
		return false
	}

	if rule.Name != "" && !strings.Contains(title, strings.ToLower(rule.Name)) {
		return false
	}

	codeMatched := false

	for _, code := range rule.Code {
		if code != "" && strings.Contains(title, strings.ToLower(code)) {
			codeMatched = true
			break
		}
	}

	memoryMatched := rule.Memory != "" && memoryIn(strings.ToLower(rule.Memory), title, attrValues)

	switch {
	case len(rule.Code) > 0 && rule.Memory != "":
		return codeMatched || memoryMatched
	case len(rule.Code) > 0:
		return codeMatched
	case rule.Memory != "":
		return memoryMatched
	default:
		return rule.Description != "" || rule.Name != ""
	}
}

func memoryIn(memory, title string, attrValues []string) bool {
	if strings.Contains(title, memory) {
		return true
	}

	for _, v := range attrValues {
		if strings.Contains(v, memory) {
			return true
		}
	}

	return false
}

// Nop используется, когда файл категорий не задан.
type Nop struct{}

func (Nop) Evaluate(string, value.Attributes) (*float64, string) {
	return nil, ""
}
