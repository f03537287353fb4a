package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// GenAIClient calls the hosted generative-language API for free-text
// questions the canned rules cannot answer.
type GenAIClient struct {
	url  string
	key  string
	http *http.Client
}

func NewGenAIClient(url, key string) *GenAIClient {
	return &GenAIClient{
		url:  url,
		key:  key,
		http: &http.Client{Timeout: 20 * time.Second},
	}
}

type genaiRequest struct {
	Contents []genaiContent `json:"contents"`
}

type genaiContent struct {
	Parts []genaiPart `json:"parts"`
}

type genaiPart struct {
	Text string `json:"text"`
}

type genaiResponse struct {
	Candidates []struct {
		Content genaiContent `json:"content"`
	} `json:"candidates"`
}

func (c *GenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.url == "" || c.key == "" {
		return "", errors.New("chat api not configured")
	}

	payload, err := json.Marshal(genaiRequest{
		Contents: []genaiContent{{Parts: []genaiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"?key="+c.key, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.New("chat api returned " + res.Status)
	}

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	var out genaiResponse
	if err := json.Unmarshal(b, &out); err != nil {
		return "", err
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("chat api returned no candidates")
	}
	return out.Candidates[0].Content.Parts[0].Text, nil
}
