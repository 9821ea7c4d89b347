package generic

import "fmt"

// =============================================================================
// OCCUPANCY - Guest composition of a stay
// =============================================================================

// Occupancy is the guest composition of a stay or search.
//
// When ChildAges is set it describes every non-adult guest and replaces the
// Children and Infants counts; pricing classifies each age with the property's
// age thresholds.
type Occupancy struct {
	Adults    int   `json:"adults" yaml:"adults"`
	Children  int   `json:"children" yaml:"children"`
	Infants   int   `json:"infants" yaml:"infants"`
	ChildAges []int `json:"child_ages,omitempty" yaml:"child_ages,omitempty"`
}

// Validate rejects occupancies without an adult or with negative counts.
func (o Occupancy) Validate() error {
	if o.Adults < 1 {
		return fmt.Errorf("%w: at least one adult required, got %d", ErrInvalidOccupancy, o.Adults)
	}
	if o.Children < 0 || o.Infants < 0 {
		return fmt.Errorf("%w: negative guest count", ErrInvalidOccupancy)
	}
	for _, age := range o.ChildAges {
		if age < 0 {
			return fmt.Errorf("%w: negative child age %d", ErrInvalidOccupancy, age)
		}
	}
	return nil
}

func (o Occupancy) String() string {
	return fmt.Sprintf("adults=%d children=%d infants=%d", o.Adults, o.Children, o.Infants)
}
