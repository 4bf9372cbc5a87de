package custody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kardexlabs/kardex/pkg/errors"
	"github.com/kardexlabs/kardex/pkg/inventory"
	"github.com/kardexlabs/kardex/pkg/logging"
)

func newTestStore(t *testing.T) *inventory.Store {
	t.Helper()
	store := inventory.NewStore()
	store.EnsureArea("DG-01", "DIRECCION GENERAL")
	store.EnsureArea("DG-02", "RECURSOS HUMANOS")
	errs := store.AddItems([]*inventory.Item{
		{Key: "51001", Description: "MESA", OriginArea: "DG-01"},
		{Key: "51002", Description: "SILLA", OriginArea: "DG-01"},
		{Key: "61001", Description: "ARCHIVERO", OriginArea: "DG-02"},
	})
	require.Empty(t, errs)
	require.NoError(t, store.SetCustodian(inventory.Custodian{
		ID: "c1", Name: "JUAN PEREZ", Area: "DG-01", Locations: []string{"OF-101"},
	}))
	require.NoError(t, store.SetCustodian(inventory.Custodian{
		ID: "c2", Name: "MARIA LOPEZ", Area: "DG-02", Locations: []string{"OF-201"},
	}))
	return store
}

func newTestEngine(t *testing.T) (*Engine, *inventory.Store) {
	t.Helper()
	store := newTestStore(t)
	return NewEngine(store, WithLogger(logging.Nop())), store
}

func TestAssignRequiresActiveCustodian(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Assign([]string{"51001"}, "")
	assert.ErrorIs(t, err, errors.ErrActiveCustodianRequired)
}

func TestAssign(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))

	result, err := engine.Assign([]string{"51001", "99999"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"51001"}, result.Assigned)
	assert.Equal(t, []string{"99999"}, result.Missing)
	assert.Empty(t, result.Conflicts)

	item, _ := store.Item("51001")
	assert.Equal(t, "JUAN PEREZ", item.Custodian)
	assert.True(t, item.Located)
	assert.Equal(t, "OF-101", item.PreciseLocation) // custodian primary location
	assert.NotNil(t, item.AssignedAt)
	assert.False(t, item.AreaMismatch)

	// Area incomplete while 51002 remains unlocated.
	assert.False(t, store.IsAreaCompleted("DG-01"))

	result, err = engine.Assign([]string{"51002"}, "BODEGA")
	require.NoError(t, err)
	assert.Len(t, result.Assigned, 1)

	item, _ = store.Item("51002")
	assert.Equal(t, "BODEGA", item.PreciseLocation)
	assert.True(t, store.IsAreaCompleted("DG-01"))
	assert.False(t, store.Finished()) // 61001 still unlocated
}

func TestAssignAreaMismatch(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c2")) // custodian from DG-02

	_, err := engine.Assign([]string{"51001"}, "")
	require.NoError(t, err)

	item, _ := store.Item("51001")
	assert.True(t, item.AreaMismatch)
	assert.Equal(t, "MARIA LOPEZ", item.Custodian)
}

func TestAssignConflict(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001"}, "")
	require.NoError(t, err)

	require.NoError(t, store.ActivateCustodian("c2"))
	result, err := engine.Assign([]string{"51001"}, "")
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "51001", result.Conflicts[0].Key)
	assert.Equal(t, "JUAN PEREZ", result.Conflicts[0].CurrentCustodian)

	// Conflict leaves the item untouched.
	item, _ := store.Item("51001")
	assert.Equal(t, "JUAN PEREZ", item.Custodian)
}

func TestAssignSameCustodianRestamps(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001"}, "OF-101")
	require.NoError(t, err)

	result, err := engine.Assign([]string{"51001"}, "OF-102")
	require.NoError(t, err)
	assert.Equal(t, []string{"51001"}, result.Assigned)
	assert.Empty(t, result.Conflicts)

	item, _ := store.Item("51001")
	assert.Equal(t, "OF-102", item.PreciseLocation)
}

func TestReassignConfirmation(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001"}, "")
	require.NoError(t, err)

	require.NoError(t, store.ActivateCustodian("c2"))

	err = engine.Reassign("51001", "", false)
	require.Error(t, err)
	assert.True(t, errors.IsConfirmationRequired(err))

	var confirmErr *errors.ConfirmationRequiredError
	require.ErrorAs(t, err, &confirmErr)
	assert.Equal(t, "JUAN PEREZ", confirmErr.CurrentCustodian)
	assert.Equal(t, "MARIA LOPEZ", confirmErr.NewCustodian)

	// Unconfirmed reassign changed nothing.
	item, _ := store.Item("51001")
	assert.Equal(t, "JUAN PEREZ", item.Custodian)

	require.NoError(t, engine.Reassign("51001", "", true))
	item, _ = store.Item("51001")
	assert.Equal(t, "MARIA LOPEZ", item.Custodian)
	assert.True(t, item.AreaMismatch)
}

func TestReassignSameCustodianNoConfirmation(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001"}, "OF-101")
	require.NoError(t, err)

	require.NoError(t, engine.Reassign("51001", "OF-103", false))
	item, _ := store.Item("51001")
	assert.Equal(t, "OF-103", item.PreciseLocation)
}

func TestUnassign(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001", "51002"}, "")
	require.NoError(t, err)
	require.True(t, store.IsAreaCompleted("DG-01"))

	require.NoError(t, engine.Unassign("51001"))

	item, _ := store.Item("51001")
	assert.Empty(t, item.Custodian)
	assert.False(t, item.Located)
	assert.Empty(t, item.PreciseLocation)
	assert.Nil(t, item.AssignedAt)
	assert.False(t, item.AreaMismatch)

	// Completion reversed by the unassignment.
	assert.False(t, store.IsAreaCompleted("DG-01"))

	assert.True(t, errors.IsValidationError(engine.Unassign("51001")))
	assert.True(t, errors.IsNotFound(engine.Unassign("99999")))
}

func TestRelabelOnlyWhileLocated(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))

	assert.True(t, errors.IsValidationError(engine.SetRelabel("51001", true)))

	_, err := engine.Assign([]string{"51001"}, "")
	require.NoError(t, err)
	require.NoError(t, engine.SetRelabel("51001", true))

	item, _ := store.Item("51001")
	assert.True(t, item.RelabelRequested)

	// Unassigning clears the flag.
	require.NoError(t, engine.Unassign("51001"))
	item, _ = store.Item("51001")
	assert.False(t, item.RelabelRequested)
}

func TestClosedAreaFrozen(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001", "51002"}, "")
	require.NoError(t, err)
	require.NoError(t, store.CloseArea("DG-01"))

	assert.ErrorIs(t, engine.Unassign("51001"), errors.ErrAreaClosed)
	assert.ErrorIs(t, engine.Reassign("51001", "", true), errors.ErrAreaClosed)

	result, err := engine.Assign([]string{"51001", "99999"}, "")
	require.NoError(t, err)
	assert.Empty(t, result.Assigned)
	assert.Equal(t, []string{"51001"}, result.Closed)
	assert.Equal(t, []string{"99999"}, result.Missing) // unknown, not closed

	// Completion status of a closed area is frozen.
	assert.True(t, store.IsAreaCompleted("DG-01"))
	engine.CheckAreaCompletion("DG-01")
	assert.True(t, store.IsAreaCompleted("DG-01"))
}

func TestGlobalCompletion(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001", "51002"}, "")
	require.NoError(t, err)
	assert.False(t, store.Finished())

	require.NoError(t, store.ActivateCustodian("c2"))
	_, err = engine.Assign([]string{"61001"}, "")
	require.NoError(t, err)
	assert.True(t, store.Finished())

	// Finished is sticky across later unassignments.
	require.NoError(t, engine.Unassign("61001"))
	assert.True(t, store.Finished())
	assert.True(t, engine.CheckGlobalCompletion())
}

func TestGlobalCompletionEmptyStore(t *testing.T) {
	store := inventory.NewStore()
	engine := NewEngine(store, WithLogger(logging.Nop()))
	assert.False(t, engine.CheckGlobalCompletion())
	assert.False(t, store.Finished())
}

func TestDeclareAdditional(t *testing.T) {
	engine, store := newTestEngine(t)

	_, err := engine.DeclareAdditional("VENTILADOR", "", "", "", false)
	assert.ErrorIs(t, err, errors.ErrActiveCustodianRequired)

	require.NoError(t, store.ActivateCustodian("c1"))

	_, err = engine.DeclareAdditional("", "", "", "", false)
	assert.True(t, errors.IsValidationError(err))

	additional, err := engine.DeclareAdditional("VENTILADOR", "ACME", "V-2", "SN-9", true)
	require.NoError(t, err)
	assert.NotEmpty(t, additional.ID)
	assert.Equal(t, "JUAN PEREZ", additional.Custodian)
	assert.Equal(t, "DG-01", additional.OriginArea)
	assert.True(t, additional.Personal)
	assert.Equal(t, 1, store.Additionals().Len())

	require.NoError(t, engine.LinkAdditional(additional.ID, "51001"))
	got, _ := store.Additionals().Get(additional.ID)
	assert.Equal(t, "51001", got.AssignedKey)

	assert.True(t, errors.IsNotFound(engine.LinkAdditional(additional.ID, "99999")))
	assert.True(t, errors.IsNotFound(engine.LinkAdditional("missing", "51001")))

	require.NoError(t, engine.RemoveAdditional(additional.ID))
	assert.True(t, errors.IsNotFound(engine.RemoveAdditional(additional.ID)))
}

func TestReadOnlyRejectsMutations(t *testing.T) {
	engine, store := newTestEngine(t)
	require.NoError(t, store.ActivateCustodian("c1"))
	_, err := engine.Assign([]string{"51001"}, "")
	require.NoError(t, err)

	store.SetReadOnly(true)

	_, err = engine.Assign([]string{"51002"}, "")
	assert.ErrorIs(t, err, errors.ErrReadOnly)
	assert.ErrorIs(t, engine.Unassign("51001"), errors.ErrReadOnly)
	assert.ErrorIs(t, engine.Reassign("51001", "", true), errors.ErrReadOnly)
	assert.ErrorIs(t, engine.SetRelabel("51001", true), errors.ErrReadOnly)
	_, err = engine.DeclareAdditional("X", "", "", "", false)
	assert.ErrorIs(t, err, errors.ErrReadOnly)
}
