// Package ai implements the generative reply backend client. The backend
// speaks the chat-completions wire format, so any compatible endpoint works.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"reviewhub/config"
	"reviewhub/internal/domain/entity"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/infra/httpx"

	"github.com/pkg/errors"
)

const systemPrompt = "You are the owner of a small business replying to a customer review. " +
	"Write a short, courteous reply in the reviewer's language. " +
	"Thank the reviewer, address their specific points, and never promise discounts or refunds."

// replyGenerator implements service.ReplyGenerator.
type replyGenerator struct {
	endpoint string
	model    string
	apiKey   string
	client   *httpx.Client
}

// NewReplyGenerator is the constructor for the generative backend client.
func NewReplyGenerator(cfg *config.Config, logger *slog.Logger) (service.ReplyGenerator, error) {
	if cfg.Generation == nil || cfg.Generation.Endpoint == "" || cfg.Generation.Model == "" {
		return nil, errors.New("generation backend configuration must be provided")
	}

	var generativeProfile *config.FetchProfile
	if cfg.Fetch != nil {
		generativeProfile = cfg.Fetch.Generative
	}

	return &replyGenerator{
		endpoint: cfg.Generation.Endpoint,
		model:    cfg.Generation.Model,
		apiKey:   cfg.Generation.APIKey,
		client:   httpx.NewClient(httpx.FromConfig(generativeProfile), logger),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateReply asks the backend for a draft reply to the review.
func (g *replyGenerator) GenerateReply(ctx context.Context, review *entity.Review) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: reviewPrompt(review)},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal generation request")
	}

	resp, err := g.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(string(payload)))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		if g.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+g.apiKey)
		}

		return req, nil
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to call generation backend")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Errorf("generation backend returned %d", resp.StatusCode)
	}

	var dto chatResponse
	if err := json.Unmarshal(resp.Body, &dto); err != nil {
		return "", errors.Wrap(err, "failed to decode generation response")
	}
	if len(dto.Choices) == 0 {
		return "", errors.New("generation response contained no choices")
	}

	reply := strings.TrimSpace(dto.Choices[0].Message.Content)
	if reply == "" {
		return "", errors.New("generation response was empty")
	}

	return reply, nil
}

// reviewPrompt renders the review into the user message. Rating 0 means the
// platform sent no usable rating.
func reviewPrompt(review *entity.Review) string {
	var b strings.Builder
	if review.Rating > 0 {
		fmt.Fprintf(&b, "Rating: %d/5\n", review.Rating)
	}
	if review.ReviewerName != "" {
		fmt.Fprintf(&b, "Reviewer: %s\n", review.ReviewerName)
	}
	if review.Text != "" {
		fmt.Fprintf(&b, "Review:\n%s", review.Text)
	} else {
		b.WriteString("The reviewer left a rating without any text.")
	}

	return b.String()
}
