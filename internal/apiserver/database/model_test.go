package database

import (
	"testing"
	"time"

	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/stretchr/testify/assert"
)

func TestLeaseState(t *testing.T) {
	l := &Lease{StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31)}

	assert.Equal(t, cnst.LeaseUnsigned, l.State(date(2024, 3, 1)))
	assert.Equal(t, cnst.LeaseExpired, l.State(date(2025, 1, 1)))

	l.Signed = true
	assert.Equal(t, cnst.LeaseSigned, l.State(date(2023, 12, 31)))
	assert.Equal(t, cnst.LeaseActive, l.State(date(2024, 1, 1)))
	assert.Equal(t, cnst.LeaseActive, l.State(date(2024, 12, 31)))
	assert.Equal(t, cnst.LeaseExpired, l.State(date(2025, 1, 1)))

	assert.True(t, l.IsCurrent(date(2024, 12, 31)))
	assert.False(t, l.IsCurrent(date(2025, 1, 1)))
}

func TestInvoiceIsOverdue(t *testing.T) {
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	cases := []struct {
		status cnst.InvoiceStatus
		due    time.Time
		want   bool
	}{
		{cnst.InvoiceUnpaid, date(2024, 5, 9), true},
		{cnst.InvoiceUnpaid, date(2024, 5, 10), false},
		{cnst.InvoiceUnpaid, date(2024, 5, 11), false},
		{cnst.InvoicePaid, date(2020, 1, 1), false},
		{cnst.InvoicePaid, date(2030, 1, 1), false},
	}
	for _, tc := range cases {
		inv := &Invoice{Status: tc.status, DueDate: tc.due}
		assert.Equal(t, tc.want, inv.IsOverdue(now), "%s due %s", tc.status, tc.due)
	}

	inv := &Invoice{Status: cnst.InvoiceUnpaid, DueDate: date(2024, 5, 1)}
	assert.Equal(t, cnst.InvoiceOverdue, inv.EffectiveStatus(now))
	inv.Status = cnst.InvoicePaid
	assert.Equal(t, cnst.InvoicePaid, inv.EffectiveStatus(now))
}

func TestUserFullName(t *testing.T) {
	assert.Equal(t, "Thandi Nkosi", (&User{FirstName: "Thandi", LastName: "Nkosi"}).FullName())
	assert.Equal(t, "Thandi", (&User{FirstName: "Thandi"}).FullName())
	assert.Equal(t, "tn", (&User{Username: "tn"}).FullName())
}
