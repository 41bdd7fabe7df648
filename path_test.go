package moros

import "testing"

func TestDirname(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/", "/"},
		{"/foo", "/"},
		{"/foo/bar", "/foo"},
		{"/foo/bar/baz", "/foo/bar"},
		{"noslash", "noslash"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := Dirname(c.in); got != c.want {
				t.Errorf("Dirname(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestFilename(t *testing.T) {
	cases := []struct{ in, want string }{
		{"/", ""},
		{"/foo", "foo"},
		{"/foo/bar", "bar"},
		{"noslash", "noslash"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := Filename(c.in); got != c.want {
				t.Errorf("Filename(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestRealpath(t *testing.T) {
	old := Cwd
	defer func() { Cwd = old }()
	Cwd = func() string { return "/home/user" }

	cases := []struct{ in, want string }{
		{"/abs/path", "/abs/path"},
		{"rel", "/home/user/rel"},
		{"a/b", "/home/user/a/b"},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			if got := Realpath(c.in); got != c.want {
				t.Errorf("Realpath(%q) = %q, want %q", c.in, got, c.want)
			}
		})
	}
}

func TestSplitPath(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"/", nil},
		{"/foo", []string{"foo"}},
		{"/foo/bar", []string{"foo", "bar"}},
		{"/foo//bar", []string{"foo", "bar"}},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got := splitPath(c.in)
			if len(got) != len(c.want) {
				t.Fatalf("splitPath(%q) = %v, want %v", c.in, got, c.want)
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("splitPath(%q)[%d] = %q, want %q", c.in, i, got[i], c.want[i])
				}
			}
		})
	}
}
