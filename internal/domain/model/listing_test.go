//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_Validate(t *testing.T) {
	tests := []struct {
		name    string
		listing Listing
		wantErr bool
	}{
		{
			name:    "valid",
			listing: Listing{Name: " Pine View ", Location: "Old Manali", Price: 2500, Category: "Hotel"},
		},
		{name: "missing name", listing: Listing{Location: "Kasol"}, wantErr: true},
		{name: "missing location", listing: Listing{Name: "Trek"}, wantErr: true},
		{name: "negative price", listing: Listing{Name: "Cab", Location: "Kullu", Price: -1}, wantErr: true},
		{name: "bad category", listing: Listing{Name: "X", Location: "Y", Category: "spa"}, wantErr: true},
		{
			name:    "bad photo url",
			listing: Listing{Name: "X", Location: "Y", Photos: []string{"not a url"}},
			wantErr: true,
		},
		{
			name:    "good photo url",
			listing: Listing{Name: "X", Location: "Y", Photos: []string{"https://cdn.example.com/a.jpg"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.listing.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestListing_Normalize(t *testing.T) {
	l := Listing{Name: "  A ", Location: " B ", Category: " TREK "}
	l.Normalize()
	assert.Equal(t, "A", l.Name)
	assert.Equal(t, "B", l.Location)
	assert.Equal(t, ListingCategoryTrek, l.Category)
	assert.NotNil(t, l.Photos)
}
