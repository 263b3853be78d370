package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name     string
		observed []string
		declared []string
		want     []string
	}{
		{
			name:     "no declared order sorts lexically",
			observed: []string{"b", "c", "a"},
			declared: nil,
			want:     []string{"a", "b", "c"},
		},
		{
			name:     "declared labels come first in declared order",
			observed: []string{"a", "b", "c"},
			declared: []string{"c", "a"},
			want:     []string{"c", "a", "b"},
		},
		{
			name:     "declared labels absent from data are dropped",
			observed: []string{"a"},
			declared: []string{"ghost", "a", "phantom"},
			want:     []string{"a"},
		},
		{
			name:     "unlisted labels append sorted",
			observed: []string{"z", "m", "a", "k"},
			declared: []string{"m"},
			want:     []string{"m", "a", "k", "z"},
		},
		{
			name:     "empty observed set",
			observed: nil,
			declared: []string{"a"},
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOrder(tt.observed, tt.declared)
			assert.Equal(t, tt.want, got)

			again := ResolveOrder(got, tt.declared)
			assert.Equal(t, got, again, "resolution must be idempotent")
		})
	}
}

func TestResolveOrderStrict(t *testing.T) {
	tests := []struct {
		name     string
		observed []string
		declared []string
		want     []string
	}{
		{
			name:     "observed labels outside the declared order are discarded",
			observed: []string{"a", "b", "c"},
			declared: []string{"c", "a"},
			want:     []string{"c", "a"},
		},
		{
			name:     "no declared order behaves like ResolveOrder",
			observed: []string{"b", "a"},
			declared: nil,
			want:     []string{"a", "b"},
		},
		{
			name:     "declared labels absent from data are dropped",
			observed: []string{"b"},
			declared: []string{"ghost", "b"},
			want:     []string{"b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOrderStrict(tt.observed, tt.declared)
			assert.Equal(t, tt.want, got)
		})
	}
}
