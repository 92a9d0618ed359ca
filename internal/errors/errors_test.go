// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

package errors

import (
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/kraklabs/cie-core/internal/cieerrors"
)

func TestUserError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err:  &UserError{Message: "Cannot open database", Err: fmt.Errorf("file locked")},
			want: "Cannot open database: file locked",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Invalid input"},
			want: "Invalid input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("underlying error")
	err := &UserError{Message: "test", Err: underlying}
	if err.Unwrap() != underlying {
		t.Errorf("Unwrap() = %v, want %v", err.Unwrap(), underlying)
	}
	if (&UserError{Message: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should be nil when Err is unset")
	}
}

func TestExitCodes(t *testing.T) {
	if ExitSuccess != 0 {
		t.Errorf("ExitSuccess = %d, want 0", ExitSuccess)
	}
	if ExitFailure != 1 {
		t.Errorf("ExitFailure = %d, want 1", ExitFailure)
	}
	if ExitUsage != 2 {
		t.Errorf("ExitUsage = %d, want 2", ExitUsage)
	}
}

func TestNewUsageError(t *testing.T) {
	err := NewUsageError("bad arg", "cause", "fix")
	if err.ExitCode != ExitUsage {
		t.Errorf("ExitCode = %d, want %d", err.ExitCode, ExitUsage)
	}
	if err.Err != nil {
		t.Error("usage errors should not wrap an underlying error")
	}
}

func TestNewFailureError(t *testing.T) {
	underlying := fmt.Errorf("disk full")
	err := NewFailureError("write failed", "cause", "fix", underlying)
	if err.ExitCode != ExitFailure {
		t.Errorf("ExitCode = %d, want %d", err.ExitCode, ExitFailure)
	}
	if err.Err != underlying {
		t.Errorf("Err = %v, want %v", err.Err, underlying)
	}
}

func TestFromCieError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid argument maps to usage", cieerrors.New(cieerrors.InvalidArgument, "bad path", nil), ExitUsage},
		{"not found maps to failure", cieerrors.New(cieerrors.NotFound, "no such node", nil), ExitFailure},
		{"incompatible maps to failure", cieerrors.New(cieerrors.Incompatible, "model mismatch", nil), ExitFailure},
		{"corrupted maps to failure", cieerrors.New(cieerrors.Corrupted, "bad snapshot", nil), ExitFailure},
		{"internal maps to failure", cieerrors.New(cieerrors.Internal, "invariant violated", nil), ExitFailure},
		{"plain error maps to failure", fmt.Errorf("boom"), ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromCieError(tt.err)
			if tt.err == nil {
				if got != nil {
					t.Fatalf("FromCieError(nil) = %v, want nil", got)
				}
				return
			}
			if got.ExitCode != tt.wantCode {
				t.Errorf("ExitCode = %d, want %d", got.ExitCode, tt.wantCode)
			}
		})
	}
}

func TestFromCieError_PassesThroughUserError(t *testing.T) {
	original := NewUsageError("bad arg", "cause", "fix")
	got := FromCieError(original)
	if got != original {
		t.Errorf("FromCieError should return the same UserError unchanged, got %v", got)
	}
}

func TestUserError_Format(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want []string
	}{
		{
			name: "full error",
			err:  &UserError{Message: "Cannot open database", Cause: "The database file is locked", Fix: "Close other CIE instances"},
			want: []string{"Error: Cannot open database", "Cause: The database file is locked", "Fix:   Close other CIE instances"},
		},
		{
			name: "message only",
			err:  &UserError{Message: "Something failed"},
			want: []string{"Error: Something failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(true)
			for _, substr := range tt.want {
				if !strings.Contains(got, substr) {
					t.Errorf("Format() missing %q, got %s", substr, got)
				}
			}
		})
	}
}

func TestUserError_Format_NoColorEnv(t *testing.T) {
	old := os.Getenv("NO_COLOR")
	defer func() {
		if old != "" {
			os.Setenv("NO_COLOR", old)
		} else {
			os.Unsetenv("NO_COLOR")
		}
	}()
	os.Setenv("NO_COLOR", "1")

	out := (&UserError{Message: "x"}).Format(false)
	if strings.Contains(out, "\x1b[") {
		t.Error("Format() output contains ANSI codes despite NO_COLOR being set")
	}
}

func TestUserError_ToJSON(t *testing.T) {
	err := &UserError{Message: "Invalid configuration", Cause: "Missing required field", Fix: "Run: cie init", ExitCode: ExitUsage}
	got := err.ToJSON()
	if got.Error != err.Message || got.Cause != err.Cause || got.Fix != err.Fix || got.ExitCode != err.ExitCode {
		t.Errorf("ToJSON() = %+v, want fields to mirror %+v", got, err)
	}
}

func TestFatalError_NilDoesNothing(t *testing.T) {
	FatalError(nil, false)
}
