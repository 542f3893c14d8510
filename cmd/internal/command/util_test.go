package command

import (
	"runtime"
	"strings"
	"testing"
)

func TestScanLine(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("line endings differ")
	}
	cases := []struct {
		in, want string
	}{
		{in: "hunter22\nrest", want: "hunter22"},
		{in: "abc\bd\n", want: "abd"},
		{in: "no-newline", want: "no-newline"},
		{in: "crlf\r\n", want: "crlf"},
	}
	for _, tc := range cases {
		got, err := scanLine(strings.NewReader(tc.in))
		if err != nil {
			t.Fatalf("scanLine(%q): %v", tc.in, err)
		}
		if string(got) != tc.want {
			t.Fatalf("scanLine(%q)=%q want %q", tc.in, got, tc.want)
		}
	}
}

func TestFieldError(t *testing.T) {
	err := fieldError(map[string]string{
		"password": "must be between 8 and 100 characters",
		"email":    "must be a valid email address",
	})
	want := "email must be a valid email address\npassword must be between 8 and 100 characters"
	if err == nil || err.Error() != want {
		t.Fatalf("fieldError=%v", err)
	}
}

func TestRootCommandTree(t *testing.T) {
	root := RootCommand()
	for _, path := range [][]string{
		{"serve"},
		{"migrate", "up"},
		{"migrate", "down"},
		{"migrate", "status"},
		{"migrate", "version"},
		{"seed"},
		{"user", "create"},
	} {
		cmd, _, err := root.Find(path)
		if err != nil || cmd.Name() != path[len(path)-1] {
			t.Fatalf("missing command %v: %v", path, err)
		}
	}
}

func TestSeedRequiresDatabase(t *testing.T) {
	t.Setenv("FAKIE_DATABASE_URL", "")
	root := RootCommand()
	root.SetArgs([]string{"seed"})
	root.SetOut(&strings.Builder{})
	root.SetErr(&strings.Builder{})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "FAKIE_DATABASE_URL") {
		t.Fatalf("expected missing database error, got %v", err)
	}
}
