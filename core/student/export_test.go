package student

import "time"

// SetNowFunc replaces the service clock until restore is called.
func SetNowFunc(f func() time.Time) (restore func()) {
	old := nowFunc
	nowFunc = f
	return func() { nowFunc = old }
}
