package models

// RectangleOperation selects which rectangle measure to compute
type RectangleOperation string

// RectangleOperation constants
const (
	OperationArea      RectangleOperation = "area"
	OperationPerimeter RectangleOperation = "perimeter"
)

// RectangleResult holds a computed measure. Exactly one of Area or Perimeter is set.
type RectangleResult struct {
	Length    float64
	Width     float64
	Area      *float64
	Perimeter *float64
}
