package deeplink

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		raw  string
		want Action
		ok   bool
	}{
		{"take_B-001", Action{Verb: Take, Arg: "B-001"}, true},
		{"view_B-017", Action{Verb: View, Arg: "B-017"}, true},
		{"filters", Action{Verb: Filters}, true},
		{"list_0", Action{Verb: List, Arg: "0", Offset: 0}, true},
		{"list_20", Action{Verb: List, Arg: "20", Offset: 20}, true},
		{"list_x", Action{}, false},
		{"list_-10", Action{}, false},
		{"list", Action{}, false},
		{"take_", Action{}, false},
		{"take", Action{}, false},
		{"filters_1", Action{}, false},
		{"delete_B-001", Action{}, false},
		{"", Action{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := Parse(tt.raw)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildersRoundTrip(t *testing.T) {
	a, ok := Parse(TakeParam("B-005"))
	assert.True(t, ok)
	assert.Equal(t, "B-005", a.Arg)

	a, ok = Parse(ListParam(30))
	assert.True(t, ok)
	assert.Equal(t, 30, a.Offset)

	assert.Equal(t, "https://t.me/beaton_admin_bot?start=take_B-005", URL("beaton_admin_bot", TakeParam("B-005")))
}
