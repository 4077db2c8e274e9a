package services

import (
	"fmt"
	"math"

	"github.com/studentportal/webapp/internal/models"
)

// CalculateRectangle computes the requested measure of a rectangle.
// Both dimensions and the result must be finite, and the dimensions non-negative.
func CalculateRectangle(length, width float64, op models.RectangleOperation) (*models.RectangleResult, error) {
	if !validDimension(length) || !validDimension(width) {
		return nil, models.ErrInvalidDimensions
	}

	result := &models.RectangleResult{Length: length, Width: width}
	switch op {
	case models.OperationArea:
		area := length * width
		result.Area = &area
	case models.OperationPerimeter:
		perimeter := 2 * (length + width)
		result.Perimeter = &perimeter
	default:
		return nil, fmt.Errorf("unknown rectangle operation %q", op)
	}

	// finite sides can still overflow, e.g. 1e200 * 1e200
	if (result.Area != nil && math.IsInf(*result.Area, 0)) || (result.Perimeter != nil && math.IsInf(*result.Perimeter, 0)) {
		return nil, models.ErrInvalidDimensions
	}
	return result, nil
}

func validDimension(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}
