package domain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
)

// DefaultValueType is preselected on a new configuration.
const DefaultValueType = "string"

// ValueTypeSet is the list of value_type options offered by the form.
type ValueTypeSet struct {
	Name    string
	Options []string
}

var (
	// IntegerValueTypes is the canonical set, matching the backend model.
	IntegerValueTypes = ValueTypeSet{Name: "integer", Options: []string{"string", "json", "integer", "boolean"}}

	// NumberValueTypes replaces integer with number.
	NumberValueTypes = ValueTypeSet{Name: "number", Options: []string{"string", "json", "number", "boolean"}}
)

// ValueTypeSetByName resolves the configured variant.
func ValueTypeSetByName(name string) (ValueTypeSet, error) {
	switch name {
	case "", IntegerValueTypes.Name:
		return IntegerValueTypes, nil
	case NumberValueTypes.Name:
		return NumberValueTypes, nil
	default:
		return ValueTypeSet{}, fmt.Errorf("domain: unknown value type set %q", name)
	}
}

// Contains reports whether vt is an offered option.
func (s ValueTypeSet) Contains(vt string) bool {
	return slices.Contains(s.Options, vt)
}

// OptionsWith returns the options plus stored when the set lacks it, so a
// row saved under another variant keeps its type in the form.
func (s ValueTypeSet) OptionsWith(stored string) []string {
	if stored == "" || s.Contains(stored) {
		return s.Options
	}
	return append(slices.Clone(s.Options), stored)
}

// ConfigurationDraft is the configuration form as typed.
type ConfigurationDraft struct {
	Key         string `label:"Chave" validate:"required"`
	Value       string `label:"Valor" validate:"required"`
	ValueType   string `label:"Tipo" validate:"required"`
	Description string `label:"Descrição"`

	// StoredValueType is the value_type of the row being edited. It is not
	// a form field.
	StoredValueType string
}

// NewConfigurationDraft returns the defaults of a new entry.
func NewConfigurationDraft() ConfigurationDraft {
	return ConfigurationDraft{ValueType: DefaultValueType}
}

// ConfigurationDraftFrom fills a draft from a listed configuration.
func ConfigurationDraftFrom(c forgesdk.Configuration) ConfigurationDraft {
	return ConfigurationDraft{
		Key:             c.Key,
		Value:           c.Value,
		ValueType:       c.ValueType,
		Description:     deref(c.Description),
		StoredValueType: c.ValueType,
	}
}

// Validate checks the required fields and that the value type is offered by
// set. An edited row may keep the type it was stored with.
func (d ConfigurationDraft) Validate(set ValueTypeSet) error {
	err := validateStruct(d)
	if err != nil || d.ValueType == "" || set.Contains(d.ValueType) || d.ValueType == d.StoredValueType {
		return err
	}
	return &ValidationError{Fields: []FieldError{{
		Field:   "Tipo",
		Message: "deve ser um de: " + strings.Join(set.Options, " "),
	}}}
}

// CreateRequest is the full record sent on creation.
func (d ConfigurationDraft) CreateRequest() forgesdk.ConfigurationCreate {
	return forgesdk.ConfigurationCreate{
		Key:         d.Key,
		Value:       d.Value,
		ValueType:   d.ValueType,
		Description: nullable(d.Description),
	}
}

// UpdateRequest carries value, value_type and description; never the key.
func (d ConfigurationDraft) UpdateRequest() forgesdk.ConfigurationUpdate {
	return forgesdk.ConfigurationUpdate{
		Value:       d.Value,
		ValueType:   d.ValueType,
		Description: nullable(d.Description),
	}
}

// FreezeConfigurationDraft keeps the key and the stored type while editing.
func FreezeConfigurationDraft(current, next ConfigurationDraft) ConfigurationDraft {
	next.Key = current.Key
	next.StoredValueType = current.StoredValueType
	return next
}
