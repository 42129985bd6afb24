package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

func buildSummaryPrompt(no int, markdown string) string {
	return fmt.Sprintf(`Summarize the following EIP/ERC no: %d into easy to understand & just in few lines.
Don't start with any other extra stuff, only output concise 4-6 lines. I need to directly display this output on a website.
Here's the markdown to summarize:
%s`, no, markdown)
}

func callSummaryLLM(ctx context.Context, client *http.Client, model, baseURL, apiKey string, no int, markdown string) (string, error) {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	endpoint := strings.TrimRight(baseURL, "/") + "/v1/chat/completions"
	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": buildSummaryPrompt(no, markdown)},
		},
	}
	buf, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(apiKey) != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("llm status %d: %s", resp.StatusCode, string(body))
	}
	var wrapper struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&wrapper); err != nil {
		return "", err
	}
	if len(wrapper.Choices) == 0 {
		return "", errors.New("empty llm response")
	}
	content := strings.TrimSpace(wrapper.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty llm content")
	}
	return content, nil
}
