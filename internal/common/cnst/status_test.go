package cnst

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want Role
	}{
		{"MasterAdmin", RoleMasterAdmin},
		{"master_admin", RoleMasterAdmin},
		{"admin", RoleAdmin},
		{" Student ", RoleStudent},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseRole("janitor")
	assert.Error(t, err)

	var r Role
	assert.Error(t, r.UnmarshalText([]byte("root")))
	assert.NoError(t, r.UnmarshalText([]byte("admin")))
	assert.Equal(t, RoleAdmin, r)
	assert.True(t, r.IsAdmin())
	assert.False(t, RoleStudent.IsAdmin())
}

func TestParseStatuses(t *testing.T) {
	a, err := ParseApplicationStatus("Approved")
	require.NoError(t, err)
	assert.Equal(t, ApplicationApproved, a)
	assert.True(t, a.IsTerminal())
	assert.False(t, ApplicationPending.IsTerminal())

	m, err := ParseMaintenanceStatus("InProgress")
	require.NoError(t, err)
	assert.Equal(t, MaintenanceInProgress, m)
	m, err = ParseMaintenanceStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, MaintenanceInProgress, m)
	assert.True(t, MaintenanceCancelled.IsTerminal())

	i, err := ParseInvoiceStatus("OVERDUE")
	require.NoError(t, err)
	assert.Equal(t, InvoiceOverdue, i)

	_, err = ParseInvoiceStatus("refunded")
	assert.Error(t, err)
	_, err = ParseLeaseState("terminated")
	assert.Error(t, err)
}

func TestPriorityRank(t *testing.T) {
	ps := []MaintenancePriority{PriorityLow, PriorityEmergency, PriorityMedium, PriorityHigh}
	sort.Slice(ps, func(i, j int) bool { return ps[i].Rank() > ps[j].Rank() })
	assert.Equal(t, []MaintenancePriority{PriorityEmergency, PriorityHigh, PriorityMedium, PriorityLow}, ps)

	_, err := ParseMaintenancePriority("urgent")
	assert.Error(t, err)
	assert.False(t, MaintenancePriority("urgent").IsValid())
}
