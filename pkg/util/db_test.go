package util

import "testing"

func TestDetectDriver(t *testing.T) {
	cases := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost:5432/formd", "postgres"},
		{"postgresql://u:p@localhost/formd", "postgres"},
		{"mysql://u:p@localhost/formd", "mysql"},
		{"u:p@tcp(localhost:3306)/formd?parseTime=true", "mysql"},
		{"u:p@unix(/tmp/mysql.sock)/formd", "mysql"},
		{"mongodb://localhost:27017", "mongo"},
		{"mongodb+srv://cluster0.example.net/formd", "mongo"},
	}
	for _, c := range cases {
		got, err := DetectDriver(c.dsn)
		if err != nil {
			t.Errorf("DetectDriver(%q): %v", c.dsn, err)
			continue
		}
		if got != c.want {
			t.Errorf("DetectDriver(%q) = %q, want %q", c.dsn, got, c.want)
		}
	}
}

func TestDetectDriverUnknown(t *testing.T) {
	for _, dsn := range []string{"sqlite://x.db", "plainstring", ""} {
		if _, err := DetectDriver(dsn); err == nil {
			t.Errorf("DetectDriver(%q) must fail", dsn)
		}
	}
}
