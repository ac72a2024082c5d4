package feature

import (
	"fmt"

	"github.com/distatus/battery"
)

// Battery summarizes charge state for the battery query.
type Battery struct{}

// Status returns one spoken sentence, or the no-battery sentence on
// systems without one. Only a probe failure is an error.
func (Battery) Status() (string, error) {
	bats, err := battery.GetAll()
	if err != nil {
		return "", fmt.Errorf("read battery state: %w", err)
	}
	if len(bats) == 0 {
		return "Battery information is not available on this system.", nil
	}

	bat := bats[0]
	percent := 0
	if bat.Full > 0 {
		percent = int(bat.Current/bat.Full*100 + 0.5)
	}

	status := "plugged in"
	if bat.State.Raw == battery.Discharging {
		status = "on battery"
	}

	timeLeft := ""
	if bat.State.Raw == battery.Discharging && bat.ChargeRate > 0 {
		hoursLeft := bat.Current / bat.ChargeRate
		hours := int(hoursLeft)
		minutes := int((hoursLeft - float64(hours)) * 60)
		timeLeft = fmt.Sprintf(" with %d hours and %d minutes remaining", hours, minutes)
	}

	return fmt.Sprintf("Battery is at %d percent and %s%s.", percent, status, timeLeft), nil
}
