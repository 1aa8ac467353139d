package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/forgeconsole/internal/console/domain"
	"github.com/aussiebroadwan/forgeconsole/pkg/forgesdk"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestClientDraft(t *testing.T) {
	t.Parallel()

	t.Run("nulls become empty strings and back", func(t *testing.T) {
		draft := domain.ClientDraftFrom(forgesdk.Client{ID: 1, Name: "Acme", Code: "acme", IsActive: true})
		require.Equal(t, domain.ClientDraft{Name: "Acme", Code: "acme"}, draft)

		req := draft.CreateRequest()
		require.Nil(t, req.Email)
		require.Nil(t, req.Domain)
		require.Equal(t, "", req.NamespacePrefix)
	})

	t.Run("update request has no identity", func(t *testing.T) {
		draft := domain.ClientDraft{Name: "Acme Corp", Code: "acme", Email: "ops@acme.test"}
		req := draft.UpdateRequest()
		require.Equal(t, "Acme Corp", req.Name)
		require.Equal(t, "ops@acme.test", *req.Email)
		require.Nil(t, req.Domain)
	})

	t.Run("freeze keeps creation-only fields", func(t *testing.T) {
		current := domain.ClientDraft{Name: "Acme", Code: "acme", NamespacePrefix: "acme_"}
		next := domain.ClientDraft{Name: "Acme Corp", Code: "hijack", NamespacePrefix: "x_", Domain: "acme.test"}

		got := domain.FreezeClientDraft(current, next)
		require.Equal(t, domain.ClientDraft{Name: "Acme Corp", Code: "acme", NamespacePrefix: "acme_", Domain: "acme.test"}, got)
	})

	t.Run("name and code are required", func(t *testing.T) {
		err := domain.ClientDraft{}.Validate()
		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		require.Len(t, verr.Fields, 2)
		require.Equal(t, "Nome: campo obrigatório; Código: campo obrigatório", err.Error())

		require.NoError(t, domain.ClientDraft{Name: "Acme", Code: "acme"}.Validate())
	})
}

func TestConfigurationDraft(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		draft := domain.NewConfigurationDraft()
		require.Equal(t, "string", draft.ValueType)
		require.Nil(t, draft.CreateRequest().Description)
	})

	t.Run("description round trip", func(t *testing.T) {
		draft := domain.ConfigurationDraftFrom(forgesdk.Configuration{Key: "k", Value: "v", ValueType: "json", Description: ptr("d")})
		require.Equal(t, "d", draft.Description)
		require.Equal(t, "d", *draft.UpdateRequest().Description)
	})

	t.Run("freeze keeps key", func(t *testing.T) {
		got := domain.FreezeConfigurationDraft(
			domain.ConfigurationDraft{Key: "max_users"},
			domain.ConfigurationDraft{Key: "other", Value: "5", ValueType: "integer"},
		)
		require.Equal(t, "max_users", got.Key)
		require.Equal(t, "5", got.Value)
	})

	t.Run("value type follows the active set", func(t *testing.T) {
		withNumber := domain.ConfigurationDraft{Key: "k", Value: "1.5", ValueType: "number"}
		withInteger := domain.ConfigurationDraft{Key: "k", Value: "1", ValueType: "integer"}

		require.Error(t, withNumber.Validate(domain.IntegerValueTypes))
		require.NoError(t, withInteger.Validate(domain.IntegerValueTypes))

		require.Error(t, withInteger.Validate(domain.NumberValueTypes))
		require.NoError(t, withNumber.Validate(domain.NumberValueTypes))
	})

	t.Run("edited rows keep their stored type", func(t *testing.T) {
		loaded := domain.ConfigurationDraftFrom(forgesdk.Configuration{Key: "rate", Value: "1.5", ValueType: "number"})
		require.Equal(t, "number", loaded.StoredValueType)

		next := domain.FreezeConfigurationDraft(loaded, domain.ConfigurationDraft{Value: "2.5", ValueType: "number"})
		require.Equal(t, "rate", next.Key)
		require.NoError(t, next.Validate(domain.IntegerValueTypes))

		next.ValueType = "float"
		require.Error(t, next.Validate(domain.IntegerValueTypes))

		require.Equal(t, []string{"string", "json", "integer", "boolean", "number"}, domain.IntegerValueTypes.OptionsWith("number"))
		require.Equal(t, domain.IntegerValueTypes.Options, domain.IntegerValueTypes.OptionsWith("json"))
		require.Equal(t, domain.IntegerValueTypes.Options, domain.IntegerValueTypes.OptionsWith(""))
		require.Len(t, domain.IntegerValueTypes.Options, 4)
	})

	t.Run("key and value are required", func(t *testing.T) {
		err := domain.NewConfigurationDraft().Validate(domain.IntegerValueTypes)
		require.EqualError(t, err, "Chave: campo obrigatório; Valor: campo obrigatório")
	})
}

func TestValueTypeSetByName(t *testing.T) {
	t.Parallel()

	set, err := domain.ValueTypeSetByName("")
	require.NoError(t, err)
	require.Equal(t, domain.IntegerValueTypes, set)

	set, err = domain.ValueTypeSetByName("number")
	require.NoError(t, err)
	require.True(t, set.Contains("number"))
	require.False(t, set.Contains("integer"))

	_, err = domain.ValueTypeSetByName("float")
	require.Error(t, err)
}

func TestSessionExpired(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := domain.Session{ExpiresAt: now}
	require.True(t, s.Expired(now))
	require.False(t, s.Expired(now.Add(-time.Second)))
}
