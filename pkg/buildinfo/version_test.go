package buildinfo

import "testing"

func stamp(t *testing.T, version, commit, date string) {
	t.Helper()
	v, c, d := Version, Commit, Date
	Version, Commit, Date = version, commit, date
	t.Cleanup(func() { Version, Commit, Date = v, c, d })
}

func TestTemplate(t *testing.T) {
	tests := []struct {
		name                  string
		version, commit, date string
		want                  string
	}{
		{"unstamped", "dev", "", "", "{{.Name}} dev\n"},
		{"tag only", "v0.3.0", "", "", "{{.Name}} v0.3.0\n"},
		{"full", "v0.3.0", "0123456789abcdef0123", "2026-01-02", "{{.Name}} v0.3.0 (0123456789ab) built 2026-01-02\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp(t, tt.version, tt.commit, tt.date)
			if got := Template(); got != tt.want {
				t.Errorf("Template() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCacheScopeSeparatesBuilds(t *testing.T) {
	stamp(t, "v0.3.0", "aaaaaaaaaaaaaaaa", "")
	a := CacheScope()
	stamp(t, "v0.3.0", "bbbbbbbbbbbbbbbb", "")
	if b := CacheScope(); a == b {
		t.Errorf("CacheScope() = %q for both commits, want distinct", a)
	}
}
