package domain

import (
	"strings"

	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
)

// ClientDraft is the client form as typed. Optional fields use "" for
// absent; CreateRequest and UpdateRequest turn "" back into null.
type ClientDraft struct {
	Name            string `label:"Nome" validate:"required"`
	Code            string `label:"Código" validate:"required"`
	Email           string `label:"Email"`
	NamespacePrefix string `label:"Prefixo de namespace"`
	Domain          string `label:"Domínio"`
}

// ClientDraftFrom fills a draft from a listed client.
func ClientDraftFrom(c forgesdk.Client) ClientDraft {
	return ClientDraft{
		Name:            c.Name,
		Code:            c.Code,
		Email:           deref(c.Email),
		NamespacePrefix: c.NamespacePrefix,
		Domain:          deref(c.Domain),
	}
}

// Validate checks the required fields.
func (d ClientDraft) Validate() error {
	return validateStruct(d)
}

// CreateRequest is the full record sent on creation.
func (d ClientDraft) CreateRequest() forgesdk.ClientCreate {
	return forgesdk.ClientCreate{
		Name:            d.Name,
		Code:            d.Code,
		Email:           nullable(d.Email),
		NamespacePrefix: d.NamespacePrefix,
		Domain:          nullable(d.Domain),
	}
}

// UpdateRequest carries the mutable fields only.
func (d ClientDraft) UpdateRequest() forgesdk.ClientUpdate {
	return forgesdk.ClientUpdate{
		Name:   d.Name,
		Email:  nullable(d.Email),
		Domain: nullable(d.Domain),
	}
}

// FreezeClientDraft applies next on top of current while editing: the code
// and namespace prefix are creation-only and keep their current values.
func FreezeClientDraft(current, next ClientDraft) ClientDraft {
	next.Code = current.Code
	next.NamespacePrefix = current.NamespacePrefix
	return next
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
