package models

import "testing"

func TestSubscriptionValidators(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		value string
		want  bool
	}{
		{"free tier", IsValidSubscriptionTier, "free", true},
		{"basic tier", IsValidSubscriptionTier, "basic", true},
		{"premium tier", IsValidSubscriptionTier, "premium", true},
		{"unknown tier", IsValidSubscriptionTier, "platinum", false},
		{"empty tier", IsValidSubscriptionTier, "", false},
		{"active status", IsValidSubscriptionStatus, "active", true},
		{"expired status", IsValidSubscriptionStatus, "expired", true},
		{"cancelled status", IsValidSubscriptionStatus, "cancelled", true},
		{"unknown status", IsValidSubscriptionStatus, "paused", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.value); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
