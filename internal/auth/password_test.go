// GeoPulse - Location Tracking and Ingestion Platform
// Copyright 2026 Paul Kiren (paulkiren)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/paulkiren/geopulse

package auth

import "testing"

func TestPasswordPolicyValidate(t *testing.T) {
	policy := DefaultPasswordPolicy()

	tests := []struct {
		name     string
		password string
		wantOK   bool
	}{
		{
			name:     "meets all requirements",
			password: "Str0ng!pass",
			wantOK:   true,
		},
		{
			name:     "exactly eight characters",
			password: "Aa1!bcde",
			wantOK:   true,
		},
		{
			name:     "too short",
			password: "Aa1!bcd",
			wantOK:   false,
		},
		{
			name:     "missing uppercase",
			password: "weak1!password",
			wantOK:   false,
		},
		{
			name:     "missing lowercase",
			password: "WEAK1!PASSWORD",
			wantOK:   false,
		},
		{
			name:     "missing digit",
			password: "Weak!password",
			wantOK:   false,
		},
		{
			name:     "missing special",
			password: "Weak1password",
			wantOK:   false,
		},
		{
			name:     "empty",
			password: "",
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			failures := policy.Validate(tt.password)
			if ok := len(failures) == 0; ok != tt.wantOK {
				t.Errorf("Validate(%q) failures = %v, want ok=%v", tt.password, failures, tt.wantOK)
			}
		})
	}
}

func TestPasswordPolicyValidateReportsAllFailures(t *testing.T) {
	policy := DefaultPasswordPolicy()

	failures := policy.Validate("abc")
	// Short, no uppercase, no digit, no special.
	if len(failures) != 4 {
		t.Errorf("Validate(\"abc\") reported %d failures, want 4: %v", len(failures), failures)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	// MinCost keeps the test fast; production uses cost 12.
	hash, err := HashPassword("Str0ng!pass", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "Str0ng!pass" {
		t.Fatal("HashPassword() returned plaintext")
	}

	if !CheckPassword(hash, "Str0ng!pass") {
		t.Error("CheckPassword() rejected the correct password")
	}
	if CheckPassword(hash, "Wr0ng!pass") {
		t.Error("CheckPassword() accepted a wrong password")
	}
	if CheckPassword("not-a-hash", "Str0ng!pass") {
		t.Error("CheckPassword() accepted an invalid hash")
	}
}
