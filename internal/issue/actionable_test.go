// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *ActionableError
		want string
	}{
		{
			name: "operation only",
			err:  &ActionableError{Operation: "download jar"},
			want: "failed to download jar",
		},
		{
			name: "operation and resource",
			err:  &ActionableError{Operation: "load jars config", Resource: "./jars.toml"},
			want: "failed to load jars config: ./jars.toml",
		},
		{
			name: "operation, resource and cause",
			err: &ActionableError{
				Operation: "connect to rcon",
				Resource:  "localhost:25575",
				Cause:     errors.New("connection refused"),
			},
			want: "failed to connect to rcon: localhost:25575: connection refused",
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

func TestErrorContextBuilder(t *testing.T) {
	cause := errors.New("no such host")
	err := NewErrorContext().
		WithOperation("download jar").
		WithResource("https://example.org/paper.jar").
		WithSuggestion("Check your network connection").
		WithSuggestion("Verify the URL template in jars.toml").
		Wrap(cause).
		Build()

	if err == nil {
		t.Fatal("Build returned nil with an operation set")
	}
	if err.Operation != "download jar" {
		t.Errorf("Operation = %q", err.Operation)
	}
	if len(err.Suggestions) != 2 {
		t.Errorf("Suggestions = %v", err.Suggestions)
	}
	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
}

func TestErrorContextRequiresOperation(t *testing.T) {
	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("BuildError without operation = %v, want nil", err)
	}
}

func TestFormatSuggestions(t *testing.T) {
	err := NewErrorContext().
		WithOperation("restore backup").
		WithSuggestion("Run 'miner backup' first").
		Build()

	got := err.Format(false)
	if !strings.Contains(got, "• Run 'miner backup' first") {
		t.Errorf("Format missing suggestion bullet: %q", got)
	}
}

func TestFormatVerboseChain(t *testing.T) {
	inner := errors.New("permission denied")
	err := NewErrorContext().
		WithOperation("link plugin").
		Wrap(WrapWithOperation(inner, "create hard link")).
		Build()

	got := err.Format(true)
	if !strings.Contains(got, "Error chain:") {
		t.Errorf("verbose format missing chain: %q", got)
	}
	if !strings.Contains(got, "2. permission denied") {
		t.Errorf("verbose format missing inner cause: %q", got)
	}
}

func TestWrapWithOperationNil(t *testing.T) {
	if got := WrapWithOperation(nil, "anything"); got != nil {
		t.Errorf("WrapWithOperation(nil) = %v, want nil", got)
	}
}
