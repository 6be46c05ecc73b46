package schedule

import (
	"reflect"
	"testing"
)

func TestOrder_Vectors(t *testing.T) {
	tests := []struct {
		name  string
		focus int
		total int
		want  []int
	}{
		{"middle focus", 5, 10, []int{5, 6, 4, 7, 3, 8, 2, 9, 1, 10}},
		{"first page", 1, 5, []int{1, 2, 3, 4, 5}},
		{"last page", 10, 10, []int{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{"single page", 1, 1, []int{1}},
		{"near end", 4, 5, []int{4, 5, 3, 2, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Order(tt.focus, tt.total)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Order(%d, %d) = %v, want %v", tt.focus, tt.total, got, tt.want)
			}
		})
	}
}

func TestOrder_Permutation(t *testing.T) {
	for total := 1; total <= 25; total++ {
		for focus := 1; focus <= total; focus++ {
			got := Order(focus, total)
			if len(got) != total {
				t.Fatalf("Order(%d, %d): length %d, want %d", focus, total, len(got), total)
			}
			seen := make(map[int]bool, total)
			for _, p := range got {
				if p < 1 || p > total {
					t.Fatalf("Order(%d, %d): out-of-range page %d", focus, total, p)
				}
				if seen[p] {
					t.Fatalf("Order(%d, %d): duplicate page %d", focus, total, p)
				}
				seen[p] = true
			}
		}
	}
}

func TestOrder_ClampsFocus(t *testing.T) {
	if got := Order(0, 3); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("Order(0, 3) = %v, want [1 2 3]", got)
	}
	if got := Order(99, 3); !reflect.DeepEqual(got, []int{3, 2, 1}) {
		t.Errorf("Order(99, 3) = %v, want [3 2 1]", got)
	}
	if got := Order(1, 0); got != nil {
		t.Errorf("Order(1, 0) = %v, want nil", got)
	}
}
