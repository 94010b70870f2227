package download

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{`a<b>c:d"e/f\g|h?i*j.txt`, "a_b_c_d_e_f_g_h_i_j.txt"},
		{"name. . ", "name"},
		{"tab\there.txt", "tab_here.txt"},
		{"...", fallbackName},
		{"", fallbackName},
		{"résumé.pdf", "résumé.pdf"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}

func TestUniqueName(t *testing.T) {
	dir := t.TempDir()

	first := UniqueName(dir, "report.pdf")
	assert.Equal(t, "report.pdf", first)
	touch(t, dir, first)

	second := UniqueName(dir, "report.pdf")
	assert.Equal(t, "report (1).pdf", second)
	touch(t, dir, second)

	third := UniqueName(dir, "report.pdf")
	assert.Equal(t, "report (2).pdf", third)
}

func TestUniqueName_Variants(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "README")
	touch(t, dir, ".bashrc")
	touch(t, dir, "a_b.txt")

	assert.Equal(t, "README (1)", UniqueName(dir, "README"))
	assert.Equal(t, ".bashrc (1)", UniqueName(dir, ".bashrc"))
	assert.Equal(t, "a_b (1).txt", UniqueName(dir, "a/b.txt"), "collision is checked after sanitizing")
	assert.Equal(t, "fresh.txt", UniqueName(dir, "fresh.txt"))
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}
