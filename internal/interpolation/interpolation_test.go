package interpolation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVariables(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"none", "Plain text", nil},
		{"printf", "Gain %d gold and %s", []string{"%d", "%s"}},
		{"markup", "[[col:red]]{{tr:faction}}[[/col]] wins", []string{"[[col:red]]", "{{tr:faction}}", "[[/col]]"}},
		{"numbered", "{1} attacks {0}", []string{"{1}", "{0}"}},
		{"percent literal", "100%% sure, ${name}", []string{"%%", "${name}"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Variables(tt.text))
		})
	}
}

func TestDiff(t *testing.T) {
	t.Parallel()

	missing, extra := Diff("{0} gains %d gold", "%d золота отримує {0}")
	assert.Nil(t, missing)
	assert.Nil(t, extra)

	missing, extra = Diff("[[col:red]]%d[[/col]] men", "%d чоловіків %s")
	assert.Equal(t, []string{"[[/col]]", "[[col:red]]"}, missing)
	assert.Equal(t, []string{"%s"}, extra)

	missing, _ = Diff("%d and %d", "%d і")
	assert.Equal(t, []string{"%d"}, missing)
}
