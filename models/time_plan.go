package models

// PurchasableHours is the fixed set of self-service time packages.
var PurchasableHours = []int{1, 2, 3, 5, 10, 50, 100}

// HoursToSeconds returns the package length in seconds, or false for a
// selection outside PurchasableHours.
func HoursToSeconds(hours int) (int64, bool) {
	for _, h := range PurchasableHours {
		if h == hours {
			return int64(hours) * 3600, true
		}
	}
	return 0, false
}
