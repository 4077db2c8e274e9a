package services

import (
	"math"
	"testing"

	"github.com/studentportal/webapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateRectangle(t *testing.T) {
	tests := []struct {
		name              string
		length            float64
		width             float64
		op                models.RectangleOperation
		expectedArea      *float64
		expectedPerimeter *float64
		expectedError     error
		expectAnyErr      bool
	}{
		{
			name:         "area",
			length:       5,
			width:        3,
			op:           models.OperationArea,
			expectedArea: ptr(15.0),
		},
		{
			name:              "perimeter",
			length:            5,
			width:             3,
			op:                models.OperationPerimeter,
			expectedPerimeter: ptr(16.0),
		},
		{
			name:         "zero sides",
			length:       0,
			width:        7,
			op:           models.OperationArea,
			expectedArea: ptr(0.0),
		},
		{
			name:              "fractional sides",
			length:            2.5,
			width:             1.25,
			op:                models.OperationPerimeter,
			expectedPerimeter: ptr(7.5),
		},
		{
			name:          "negative length",
			length:        -1,
			width:         3,
			op:            models.OperationArea,
			expectedError: models.ErrInvalidDimensions,
		},
		{
			name:          "negative width",
			length:        1,
			width:         -0.5,
			op:            models.OperationPerimeter,
			expectedError: models.ErrInvalidDimensions,
		},
		{
			name:          "not a number",
			length:        math.NaN(),
			width:         1,
			op:            models.OperationArea,
			expectedError: models.ErrInvalidDimensions,
		},
		{
			name:          "infinite",
			length:        1,
			width:         math.Inf(1),
			op:            models.OperationArea,
			expectedError: models.ErrInvalidDimensions,
		},
		{
			name:          "area overflows",
			length:        1e200,
			width:         1e200,
			op:            models.OperationArea,
			expectedError: models.ErrInvalidDimensions,
		},
		{
			name:          "perimeter overflows",
			length:        math.MaxFloat64,
			width:         math.MaxFloat64,
			op:            models.OperationPerimeter,
			expectedError: models.ErrInvalidDimensions,
		},
		{
			name:         "large but representable area",
			length:       math.Ldexp(1, 500),
			width:        math.Ldexp(1, 500),
			op:           models.OperationArea,
			expectedArea: ptr(math.Ldexp(1, 1000)),
		},
		{
			name:         "no operation",
			length:       1,
			width:        1,
			expectAnyErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CalculateRectangle(tt.length, tt.width, tt.op)

			if tt.expectedError != nil || tt.expectAnyErr {
				if tt.expectedError != nil {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.Error(t, err)
				}
				assert.Nil(t, result)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.length, result.Length)
			assert.Equal(t, tt.width, result.Width)
			assert.Equal(t, tt.expectedArea, result.Area)
			assert.Equal(t, tt.expectedPerimeter, result.Perimeter)
		})
	}
}

func ptr[T any](v T) *T { return &v }
