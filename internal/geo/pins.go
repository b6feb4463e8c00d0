package geo

// Located is anything that can be placed on a map.
type Located interface {
	Coordinate() Coordinate
}

// Pin is a map marker for a single item.
type Pin[T Located] struct {
	Item       T
	Coordinate Coordinate
}

// Pins returns a marker for every item whose coordinate is valid, in input
// order. Items with invalid coordinates are skipped.
func Pins[T Located](items []T) []Pin[T] {
	pins := make([]Pin[T], 0, len(items))
	for _, it := range items {
		c := it.Coordinate()
		if !IsValid(c) {
			continue
		}
		pins = append(pins, Pin[T]{Item: it, Coordinate: c})
	}
	return pins
}
