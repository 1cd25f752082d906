package value

import (
	"strings"

	"github.com/samber/lo"
)

// Attribute характеристика товара из карточки каталога.
type Attribute struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

type Attributes []Attribute

// Values возвращает все значения в нижнем регистре.
func (a Attributes) Values() []string {
	return lo.Map(a, func(attr Attribute, _ int) string {
		return strings.ToLower(attr.Value)
	})
}
