package util

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     bool
	}{
		{"Passw0rd!", true},
		{"short1!", false},
		{"alllowercase1!", false},
		{"ALLUPPERCASE1!", false},
		{"NoDigitsHere!", false},
		{"NoSpecial123", false},
	}
	for _, tt := range tests {
		if got := ValidatePassword(tt.password); got != tt.want {
			t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, got, tt.want)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("jane.doe@example.com") {
		t.Error("expected valid email")
	}
	for _, bad := range []string{"", "jane", "jane@", "jane@example", "@example.com"} {
		if ValidateEmail(bad) {
			t.Errorf("ValidateEmail(%q) = true", bad)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-03-15")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	want := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if _, err := ParseDate("15/03/2024"); err == nil {
		t.Error("expected error for wrong layout")
	}
}

func TestParseOptionalDate(t *testing.T) {
	got, err := ParseOptionalDate("")
	if err != nil || got != nil {
		t.Fatalf("ParseOptionalDate(\"\") = %v, %v", got, err)
	}
	got, err = ParseOptionalDate("2024-01-31")
	if err != nil || got == nil || got.Day() != 31 {
		t.Fatalf("ParseOptionalDate = %v, %v", got, err)
	}
}

func TestQueryInt64(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?account_id=7&bad=x&neg=-1", nil)
	if v, err := QueryInt64(r, "account_id"); err != nil || v == nil || *v != 7 {
		t.Errorf("account_id = %v, %v", v, err)
	}
	if v, err := QueryInt64(r, "missing"); err != nil || v != nil {
		t.Errorf("missing = %v, %v", v, err)
	}
	if _, err := QueryInt64(r, "bad"); err == nil {
		t.Error("expected error for non-numeric")
	}
	if _, err := QueryInt64(r, "neg"); err == nil {
		t.Error("expected error for negative")
	}
}
