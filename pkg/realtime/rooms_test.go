package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomNames(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user room", UserRoom("u42"), "user:u42"},
		{"vendor room", VendorRoom("v7"), "vendor_dashboard:v7"},
		{"order room", OrderRoom("o123"), "order:o123"},
		{"admin room", AdminRoom, "admin_dashboard"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
