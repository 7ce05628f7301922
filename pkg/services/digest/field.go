package digest

import "github.com/de-tools/site-digest/pkg/models/domain"

const descriptionKeyPrefix = "descriptions."

// newField wraps a current value and its previous-period counterpart into a
// comparison field. It is a structural wrapper only: values arrive already
// derived and rounded.
func newField(key string, value, compare float64, withDescription bool) domain.ComparisonField {
	field := domain.ComparisonField{
		Key:     key,
		Value:   value,
		Compare: &compare,
	}
	if withDescription {
		field.DescriptionKey = descriptionKeyPrefix + key
	}
	return field
}
