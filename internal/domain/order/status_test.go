package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeriveStatus(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    Status
	}{
		{"immediately after placement", 0, StatusConfirmed},
		{"just under one minute", time.Minute - time.Second, StatusConfirmed},
		{"exactly one minute", time.Minute, StatusPacked},
		{"two minutes", 2 * time.Minute, StatusPacked},
		{"just under three minutes", 3*time.Minute - time.Second, StatusPacked},
		{"exactly three minutes", 3 * time.Minute, StatusOutForDelivery},
		{"four minutes", 4 * time.Minute, StatusOutForDelivery},
		{"just under five minutes", 5*time.Minute - time.Second, StatusOutForDelivery},
		{"exactly five minutes", 5 * time.Minute, StatusDelivered},
		{"one hour", time.Hour, StatusDelivered},
		{"one week", 7 * 24 * time.Hour, StatusDelivered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveStatus(createdAt, createdAt.Add(tt.elapsed))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDeriveStatus_SubSecondBoundaries(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// A nanosecond before each threshold still belongs to the earlier state.
	assert.Equal(t, StatusConfirmed, DeriveStatus(createdAt, createdAt.Add(time.Minute-time.Nanosecond)))
	assert.Equal(t, StatusPacked, DeriveStatus(createdAt, createdAt.Add(3*time.Minute-time.Nanosecond)))
	assert.Equal(t, StatusOutForDelivery, DeriveStatus(createdAt, createdAt.Add(5*time.Minute-time.Nanosecond)))
}

func TestDeriveStatus_MonotonicOverTime(t *testing.T) {
	createdAt := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	rank := map[Status]int{
		StatusConfirmed:      0,
		StatusPacked:         1,
		StatusOutForDelivery: 2,
		StatusDelivered:      3,
	}

	prev := StatusConfirmed
	for elapsed := time.Duration(0); elapsed <= 6*time.Minute; elapsed += 5 * time.Second {
		got := DeriveStatus(createdAt, createdAt.Add(elapsed))
		assert.GreaterOrEqual(t, rank[got], rank[prev], "status regressed at %s", elapsed)
		prev = got
	}
}
