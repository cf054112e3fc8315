package property

import "testing"

func TestProject(t *testing.T) {
	cases := []struct {
		name    string
		stored  Status
		hasOpen bool
		want    Status
	}{
		{"open contract wins over stored available", StatusAvailable, true, StatusRented},
		{"open contract confirms stored rented", StatusRented, true, StatusRented},
		{"stale rented self-corrects", StatusRented, false, StatusAvailable},
		{"available stays available", StatusAvailable, false, StatusAvailable},
		{"maintenance is preserved when vacant", StatusMaintenance, false, StatusMaintenance},
		{"maintenance with open contract reads rented", StatusMaintenance, true, StatusRented},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Project(tc.stored, tc.hasOpen); got != tc.want {
				t.Fatalf("Project(%s, %v) = %s, want %s", tc.stored, tc.hasOpen, got, tc.want)
			}
		})
	}
}
