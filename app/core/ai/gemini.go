package ai

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	config "github.com/zyzzzz-123/TECHIN510-project/app/configs"
)

// chatGemini calls the generateContent REST endpoint. Gemini has no system
// role; system entries are folded into model turns.
func (g *Gateway) chatGemini(ctx context.Context, cfg config.AIConfig, messages []Message) (string, error) {
	body, err := buildGeminiRequest(messages)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.geminiBaseURL, cfg.GeminiModel, cfg.GeminiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini api error: %d - %s", resp.StatusCode, string(respBody))
	}

	text := gjson.GetBytes(respBody, "candidates.0.content.parts.0.text")
	if !text.Exists() {
		return "", fmt.Errorf("unexpected gemini response format")
	}
	return text.String(), nil
}

func buildGeminiRequest(messages []Message) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	for i, m := range messages {
		role := "user"
		if m.Role != "user" {
			role = "model"
		}
		if body, err = sjson.SetBytes(body, fmt.Sprintf("contents.%d.role", i), role); err != nil {
			return nil, err
		}
		if body, err = sjson.SetBytes(body, fmt.Sprintf("contents.%d.parts.0.text", i), m.Content); err != nil {
			return nil, err
		}
	}
	if body, err = sjson.SetBytes(body, "generationConfig.temperature", 0.7); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "generationConfig.topK", 40); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "generationConfig.topP", 0.95); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "generationConfig.maxOutputTokens", 1024); err != nil {
		return nil, err
	}
	return body, nil
}
