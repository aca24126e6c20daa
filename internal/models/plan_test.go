package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryFromTypes(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  string
	}{
		{"hotel tag", []string{"point_of_interest", "hotel"}, CategoryLodging},
		{"lodging tag", []string{"lodging", "establishment"}, CategoryLodging},
		{"restaurant tag", []string{"restaurant", "food"}, CategoryRestaurant},
		{"cafe tag", []string{"cafe"}, CategoryRestaurant},
		{"tourist tags default", []string{"tourist_attraction", "museum"}, CategoryAttraction},
		{"empty defaults", nil, CategoryAttraction},
		{"first match wins", []string{"hostel", "restaurant"}, CategoryLodging},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryFromTypes(tt.types))
		})
	}
}
