package selection

import (
	"slices"
	"testing"
)

func TestScopeFromList(t *testing.T) {
	tests := []struct {
		name    string
		list    []string
		isAll   bool
		isNone  bool
		names   []string
	}{
		{name: "nil means all", list: nil, isAll: true},
		{name: "empty means none", list: []string{}, isNone: true},
		{name: "explicit names", list: []string{"a", "b"}, names: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ScopeFromList(tt.list)
			if s.IsAll() != tt.isAll {
				t.Errorf("IsAll = %v, want %v", s.IsAll(), tt.isAll)
			}
			if s.IsNone() != tt.isNone {
				t.Errorf("IsNone = %v, want %v", s.IsNone(), tt.isNone)
			}
			if !slices.Equal(s.Names(), tt.names) {
				t.Errorf("Names = %v, want %v", s.Names(), tt.names)
			}
		})
	}
}

func TestScopeNames_EmptyIsNone(t *testing.T) {
	if s := ScopeNames(); !s.IsNone() {
		t.Error("ScopeNames() with no names should be the none scope")
	}
}
