package validate

import "testing"

func TestIsCommandToken(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"/start", true},
		{"/addMe", true},
		{"/other123", true},
		{"/a", true},
		{"start", false},
		{"//start", false},
		{"/1abc", false},
		{"/", false},
		{"", false},
		{"/add Me", false},
		{"hello there", false},
	}
	for _, tc := range cases {
		if got := IsCommandToken(tc.in); got != tc.want {
			t.Errorf("IsCommandToken(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsEmail(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"test@example.com", true},
		{"first.last+tag@sub.domain.org", true},
		{"test@com", false},
		{"test@@x.com", false},
		{"plainstring", false},
		{"@example.com", false},
		{"test@example.c", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := IsEmail(tc.in); got != tc.want {
			t.Errorf("IsEmail(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestIsIntegerAndDecimal(t *testing.T) {
	cases := []struct {
		in      string
		integer bool
		decimal bool
	}{
		{"0", true, true},
		{"500", true, true},
		{"500.5", false, true},
		{"500.55", false, true},
		{"500.555", false, false},
		{"-5", false, false},
		{".5", false, false},
		{"5.", false, false},
		{"abc", false, false},
		{"", false, false},
	}
	for _, tc := range cases {
		if got := IsInteger(tc.in); got != tc.integer {
			t.Errorf("IsInteger(%q) = %v, want %v", tc.in, got, tc.integer)
		}
		if got := IsDecimal(tc.in); got != tc.decimal {
			t.Errorf("IsDecimal(%q) = %v, want %v", tc.in, got, tc.decimal)
		}
	}
}

func TestIsMonth(t *testing.T) {
	valid := []string{"01", "02", "09", "10", "11", "12"}
	for _, in := range valid {
		if !IsMonth(in) {
			t.Errorf("IsMonth(%q) = false, want true", in)
		}
	}
	invalid := []string{"0", "1", "13", "00", "1.2", "005", "jan", ""}
	for _, in := range invalid {
		if IsMonth(in) {
			t.Errorf("IsMonth(%q) = true, want false", in)
		}
	}
}
