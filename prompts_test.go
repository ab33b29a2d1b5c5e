package main

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// makeRequest constructs a GetPromptRequest with the given arguments.
func makeRequest(name string, args map[string]string) *mcp.GetPromptRequest {
	return &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func TestLogInvestigationPrompt_NoArgs(t *testing.T) {
	handler := makePromptHandler(promptDefs[0])
	result, err := handler(context.Background(), makeRequest("log-investigation", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(result.Messages))
	}
	if result.Messages[0].Role != mcp.Role("user") {
		t.Errorf("expected user role, got %s", result.Messages[0].Role)
	}

	wfText := result.Messages[0].Content.(*mcp.TextContent).Text
	if !strings.Contains(wfText, "mine_log_patterns") {
		t.Error("workflow should reference mine_log_patterns")
	}
	// Placeholders should remain when no args provided
	if !strings.Contains(wfText, "$SERVICE_NAME") {
		t.Error("workflow should still contain $SERVICE_NAME placeholder when no args given")
	}
}

func TestLatencyInvestigationPrompt_Substitution(t *testing.T) {
	handler := makePromptHandler(promptDefs[1])
	args := map[string]string{
		"service_name":     "payment-svc",
		"lookback_minutes": "30",
	}
	result, err := handler(context.Background(), makeRequest("latency-investigation", args))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wfText := result.Messages[len(result.Messages)-1].Content.(*mcp.TextContent).Text

	if strings.Contains(wfText, "$SERVICE_NAME") {
		t.Error("$SERVICE_NAME should be replaced with 'payment-svc'")
	}
	if !strings.Contains(wfText, "payment-svc") {
		t.Error("workflow should contain substituted service name 'payment-svc'")
	}
	if strings.Contains(wfText, "$LOOKBACK_MINUTES") {
		t.Error("$LOOKBACK_MINUTES should be replaced")
	}
	if !strings.Contains(wfText, "30") {
		t.Error("workflow should contain substituted lookback")
	}
}

func TestPromptDescriptions(t *testing.T) {
	for _, def := range promptDefs {
		if def.prompt.Name == "" {
			t.Error("found prompt with empty name")
		}
		if def.prompt.Title == "" {
			t.Errorf("prompt %q has empty title", def.prompt.Name)
		}
		if def.prompt.Description == "" {
			t.Errorf("prompt %q has empty description", def.prompt.Name)
		}
	}
}

func TestSubstituteArgs(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		args     map[string]string
		argNames []string
		want     string
	}{
		{
			name:     "basic substitution",
			text:     "service=$SERVICE_NAME window=$LOOKBACK_MINUTES",
			args:     map[string]string{"service_name": "foo", "lookback_minutes": "15"},
			argNames: []string{"service_name", "lookback_minutes"},
			want:     "service=foo window=15",
		},
		{
			name:     "missing arg leaves placeholder",
			text:     "service=$SERVICE_NAME window=$LOOKBACK_MINUTES",
			args:     map[string]string{"service_name": "foo"},
			argNames: []string{"service_name", "lookback_minutes"},
			want:     "service=foo window=$LOOKBACK_MINUTES",
		},
		{
			name:     "empty arg leaves placeholder",
			text:     "service=$SERVICE_NAME",
			args:     map[string]string{"service_name": ""},
			argNames: []string{"service_name"},
			want:     "service=$SERVICE_NAME",
		},
		{
			name:     "nil args leaves all placeholders",
			text:     "service=$SERVICE_NAME",
			args:     nil,
			argNames: []string{"service_name"},
			want:     "service=$SERVICE_NAME",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := substituteArgs(tt.text, tt.args, tt.argNames)
			if got != tt.want {
				t.Errorf("substituteArgs() = %q, want %q", got, tt.want)
			}
		})
	}
}
