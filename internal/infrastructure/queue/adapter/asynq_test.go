package adapter

import (
	"reflect"
	"testing"
)

func TestParseQueueWeights(t *testing.T) {
	cases := []struct {
		in   string
		want map[string]int
	}{
		{"critical=6,default=3,low=1", map[string]int{"critical": 6, "default": 3, "low": 1}},
		{"default", map[string]int{"default": 1}},
		{" default = 2 , sale ", map[string]int{"default": 2, "sale": 1}},
		{"default=notanumber", map[string]int{"default": 1}},
		{",,", map[string]int{}},
	}

	for _, tc := range cases {
		if got := parseQueueWeights(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("parseQueueWeights(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
