package catalog

import (
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munchmtxi/realtime-gateway/internal/core/domain"
)

func TestKnown(t *testing.T) {
	assert.True(t, Known(RideUpdated))
	assert.True(t, Known(WalletFundsAdded))
	assert.True(t, Known(DriverWalletBalanceUpdated))
	assert.True(t, Known(CancellationRefundProcessed))

	assert.False(t, Known("ride:teleported"))
	assert.False(t, Known(""))
	assert.False(t, Known("RIDE:UPDATED"))
}

func TestLookup(t *testing.T) {
	def, ok := Lookup(MerchantReservationPoliciesUpdated)
	require.True(t, ok)
	assert.Equal(t, MerchantReservationPoliciesUpdated, def.Name)
	assert.Equal(t, domain.RoleMerchant, def.Namespace.Role)
	assert.Equal(t, "mtables", def.Namespace.Feature)
	assert.NotEmpty(t, def.Description)

	_, ok = Lookup("merchant:mtables:unregistered")
	assert.False(t, ok)
}

func TestNamespacePrefix(t *testing.T) {
	shared := Namespace{Feature: "wallet"}
	assert.Equal(t, "wallet", shared.Prefix())

	scoped := Namespace{Role: domain.RoleDriver, Feature: "wallet"}
	assert.Equal(t, "driver:wallet", scoped.Prefix())
}

func TestSharedAndRoleScopedNamespacesCoexist(t *testing.T) {
	// "wallet:funds_added" and "driver:wallet:balance_updated" live in
	// different namespaces and must not shadow one another.
	shared, ok := Lookup(WalletFundsAdded)
	require.True(t, ok)
	assert.Equal(t, domain.Role(""), shared.Namespace.Role)

	scoped, ok := Lookup(DriverWalletBalanceUpdated)
	require.True(t, ok)
	assert.Equal(t, domain.RoleDriver, scoped.Namespace.Role)
}

func TestRegister_PanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		Register(Namespace{Feature: "ride"}, Spec{Short: "updated"})
	})
}

func TestRegister_PanicsOnEmptyShortName(t *testing.T) {
	assert.Panics(t, func() {
		Register(Namespace{Feature: "wallet"}, Spec{Short: ""})
	})
}

func TestRegister_PanicsOnEmptyFeature(t *testing.T) {
	assert.Panics(t, func() {
		Register(Namespace{}, Spec{Short: "orphaned"})
	})
}

func TestRegister_PanicsOnUnknownRole(t *testing.T) {
	assert.Panics(t, func() {
		Register(Namespace{Role: domain.Role("superuser"), Feature: "wallet"}, Spec{Short: "x"})
	})
}

func TestMustEvent(t *testing.T) {
	assert.Equal(t, RideUpdated, MustEvent(RideUpdated))
	assert.Panics(t, func() { MustEvent("ride:never_registered") })
}

func TestNames_SortedAndComplete(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, RideRequested)
	assert.Contains(t, names, AdminPlatformAnnouncement)
}

func TestNamesFor(t *testing.T) {
	names := NamesFor(Namespace{Role: domain.RoleCustomer, Feature: "subscriptions"})
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	for _, name := range names {
		assert.True(t, strings.HasPrefix(name, "customer:subscriptions:"), "unexpected name %q", name)
	}

	assert.Empty(t, NamesFor(Namespace{Role: domain.RoleCustomer, Feature: "nonexistent"}))
}
