package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Username string `json:"username" validate:"required,username"`
	Password string `json:"password" validate:"required,strongpwd"`
	Born     string `json:"born" validate:"omitempty,date"`
	Sport    string `json:"sport" validate:"omitempty,oneof=gym soccer running others"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		wantErr string
	}{
		{name: "valid", in: sample{Username: "runner_01", Password: "Secret1", Born: "1990-02-28", Sport: "gym"}},
		{name: "short username", in: sample{Username: "abc", Password: "Secret1"}, wantErr: "username must be 5-20"},
		{name: "username symbols", in: sample{Username: "bad-name!", Password: "Secret1"}, wantErr: "username must be 5-20"},
		{name: "weak password", in: sample{Username: "runner_01", Password: "secret"}, wantErr: "password must be at least 6"},
		{name: "impossible date", in: sample{Username: "runner_01", Password: "Secret1", Born: "1990-02-30"}, wantErr: "born must be a date"},
		{name: "unknown sport", in: sample{Username: "runner_01", Password: "Secret1", Sport: "chess"}, wantErr: "sport must be one of"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q in %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestIsStrongPassword(t *testing.T) {
	for pw, want := range map[string]bool{
		"Abc123":   true,
		"Ab1":      false,
		"abcdef1":  false,
		"ABCDEFG":  false,
		"Passw0rd": true,
	} {
		if got := IsStrongPassword(pw); got != want {
			t.Errorf("IsStrongPassword(%q) = %v, want %v", pw, got, want)
		}
	}
}
