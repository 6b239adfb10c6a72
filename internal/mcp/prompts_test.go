package mcp

import (
	"context"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChooseAlgorithmPrompt(t *testing.T) {
	tests := []struct {
		divisible string
		want      string
	}{
		{"yes", `algorithm_type="fractional"`},
		{"no", `algorithm_type="dp_01"`},
	}
	for _, tt := range tests {
		t.Run(tt.divisible, func(t *testing.T) {
			result, err := testServer.handleChooseAlgorithmPrompt(context.Background(), mcplib.GetPromptRequest{
				Params: mcplib.GetPromptParams{
					Name:      "choose-algorithm",
					Arguments: map[string]string{"divisible": tt.divisible},
				},
			})
			require.NoError(t, err)
			require.Len(t, result.Messages, 1)
			assert.Equal(t, mcplib.RoleUser, result.Messages[0].Role)
			tc, ok := result.Messages[0].Content.(mcplib.TextContent)
			require.True(t, ok)
			assert.Contains(t, tc.Text, tt.want)
		})
	}
}

func TestChooseAlgorithmPromptRejectsUnknown(t *testing.T) {
	_, err := testServer.handleChooseAlgorithmPrompt(context.Background(), mcplib.GetPromptRequest{
		Params: mcplib.GetPromptParams{Arguments: map[string]string{"divisible": "maybe"}},
	})
	require.Error(t, err)
}
