package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubRule(id string, category Category) Rule {
	return Rule{
		ID:       id,
		Name:     "stub " + id,
		Category: category,
		Severity: SeverityLow,
		Check:    func(Context) Result { return pass("ok") },
	}
}

func TestRegistryPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	ids := []string{"R-003", "R-001", "R-002"}
	for _, id := range ids {
		require.NoError(t, r.Register(stubRule(id, CategoryPricing)))
	}

	all := r.All()
	require.Len(t, all, 3)
	for i, id := range ids {
		assert.Equal(t, id, all[i].ID)
	}
}

func TestRegistryRejectsDuplicateID(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubRule("R-001", CategoryPricing)))

	err := r.Register(stubRule("R-001", CategoryCrossSystem))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateRule)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryByCategory(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubRule("P-001", CategoryPricing)))
	require.NoError(t, r.Register(stubRule("C-001", CategoryCrossSystem)))
	require.NoError(t, r.Register(stubRule("P-002", CategoryPricing)))

	pricing := r.ByCategory(CategoryPricing)
	require.Len(t, pricing, 2)
	assert.Equal(t, "P-001", pricing[0].ID)
	assert.Equal(t, "P-002", pricing[1].ID)

	assert.Empty(t, r.ByCategory(CategoryOrderInvoice))
}

func TestRegistryAllReturnsCopy(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(stubRule("R-001", CategoryPricing)))

	all := r.All()
	all[0].ID = "mutated"

	assert.Equal(t, "R-001", r.All()[0].ID)
}

func TestDefaultRegistryCatalogOrder(t *testing.T) {
	r := DefaultRegistry()
	require.Equal(t, 12, r.Len())

	want := []string{
		"PRC-001", "PRC-002", "PRC-003", "PRC-004",
		"OIC-001", "OIC-002", "OIC-003", "OIC-004", "OIC-005",
		"CSI-001", "CSI-002", "CSI-003",
	}
	all := r.All()
	for i, id := range want {
		assert.Equal(t, id, all[i].ID)
	}
}
