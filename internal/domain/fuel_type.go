package domain

import "fmt"

// FuelType distinguishes the two product families the agency handles.
type FuelType string

const (
	FuelTypeGas    FuelType = "GAS"
	FuelTypeLiquid FuelType = "LIQUID"
)

// IsValid returns true if the fuel type is recognized.
func (f FuelType) IsValid() bool {
	return f == FuelTypeGas || f == FuelTypeLiquid
}

// String returns the string representation of the fuel type.
func (f FuelType) String() string {
	return string(f)
}

// ParseFuelType converts a string to a FuelType, returning an error if invalid.
func ParseFuelType(s string) (FuelType, error) {
	ft := FuelType(s)
	if !ft.IsValid() {
		return "", fmt.Errorf("invalid fuel type: %s", s)
	}
	return ft, nil
}
