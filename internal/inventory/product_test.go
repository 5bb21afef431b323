package inventory

import (
	"testing"

	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseProduct(t *testing.T) {
	testCases := []struct {
		name        string
		raw         RawProduct
		expected    ProductInput
		expectError error
	}{
		{
			name: "Success - numeric fields",
			raw:  RawProduct{ID: "1", Name: "Smartphone", Category: "Mobile", Quantity: " 10 ", Price: "29999"},
			expected: ProductInput{
				ID: 1, Name: "Smartphone", Category: "Mobile", Quantity: 10, Price: 29999, Kind: "Electronic",
			},
		},
		{
			name:        "Error - non-numeric id",
			raw:         RawProduct{ID: "one", Name: "Laptop", Quantity: "1", Price: "1"},
			expectError: inverrors.ErrInvalidInput,
		},
		{
			name:        "Error - non-numeric quantity",
			raw:         RawProduct{ID: "2", Name: "Laptop", Quantity: "many", Price: "1"},
			expectError: inverrors.ErrInvalidInput,
		},
		{
			name:        "Error - non-numeric price",
			raw:         RawProduct{ID: "2", Name: "Laptop", Quantity: "1", Price: "cheap"},
			expectError: inverrors.ErrInvalidInput,
		},
		{
			name:        "Error - NaN price",
			raw:         RawProduct{ID: "2", Name: "Laptop", Quantity: "1", Price: "NaN"},
			expectError: inverrors.ErrInvalidInput,
		},
		{
			name:        "Error - infinite price",
			raw:         RawProduct{ID: "2", Name: "Laptop", Quantity: "1", Price: "-Inf"},
			expectError: inverrors.ErrInvalidInput,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			in, err := ParseProduct(tc.raw)
			// then
			if tc.expectError != nil {
				assert.ErrorIs(t, err, tc.expectError)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, in)
		})
	}
}

func Test_ProductInput_ToProduct(t *testing.T) {
	t.Run("empty kind defaults to Electronic", func(t *testing.T) {
		p, err := ProductInput{ID: 3, Name: "Mouse", Quantity: 18, Price: 999}.ToProduct()
		require.NoError(t, err)
		assert.Equal(t, NewElectronic(3, "Mouse", "", 18, 999), p)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := ProductInput{ID: 3, Name: "Apple", Kind: "Grocery"}.ToProduct()
		assert.ErrorIs(t, err, inverrors.ErrInvalidInput)
	})
}
