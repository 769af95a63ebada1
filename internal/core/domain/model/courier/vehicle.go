package courier

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Vehicle describes how a courier moves. It is roster metadata only: the
// assignment engine balances distance against waiting time, never vehicle
// speed.
type Vehicle int

const (
	// VehicleUnknown represents an invalid or undefined vehicle.
	VehicleUnknown Vehicle = iota
	// VehicleWalker is a courier on foot.
	VehicleWalker
	// VehicleBicycle is a courier on a bicycle.
	VehicleBicycle
	// VehicleMotorbike is a courier on a motorbike or scooter.
	VehicleMotorbike
	// VehicleCar is a courier in a car.
	VehicleCar
)

func getVehicleStrings() map[Vehicle]string {
	return map[Vehicle]string{
		VehicleUnknown:   "unknown",
		VehicleWalker:    "walker",
		VehicleBicycle:   "bicycle",
		VehicleMotorbike: "motorbike",
		VehicleCar:       "car",
	}
}

// VehicleFromString parses a stable vehicle name as used on the wire.
func VehicleFromString(s string) (Vehicle, error) {
	for vehicle, name := range getVehicleStrings() {
		if vehicle != VehicleUnknown && name == s {
			return vehicle, nil
		}
	}
	return VehicleUnknown, errs.NewValueIsInvalidErrorWithCause("vehicle",
		fmt.Errorf("%q is not a valid vehicle name", s))
}

// Validate checks if the Vehicle value is one of the defined vehicle types.
func (v Vehicle) Validate() error {
	if v != VehicleWalker && v != VehicleBicycle && v != VehicleMotorbike && v != VehicleCar {
		return errs.NewValueIsInvalidErrorWithCause("vehicle", fmt.Errorf("%d is not a valid vehicle", v))
	}
	return nil
}

// String returns the stable name of the vehicle, implementing fmt.Stringer.
func (v Vehicle) String() string {
	if str, ok := getVehicleStrings()[v]; ok {
		return str
	}
	return "unknown"
}
