package app

import (
	"fmt"

	"github.com/sweeney/dht-display/internal/dht"
)

// HumidityRow is the display row the humidity line is printed on.
const HumidityRow = 2

// FormatLines returns the temperature and humidity lines for r. Without a
// valid reading the values are shown as "--" in the selected unit.
func FormatLines(r dht.Reading, selected dht.Unit) (temp, hum string) {
	if !r.Valid {
		return fmt.Sprintf("Temp: -- %s", selected), "Hum: -- %"
	}
	return fmt.Sprintf("Temp: %.1f %s", r.Temperature, r.Unit),
		fmt.Sprintf("Hum: %.2f %%", r.Humidity)
}
