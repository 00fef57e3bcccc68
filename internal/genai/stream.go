package genai

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxEventSize bounds a single server-sent event line
const maxEventSize = 4 << 20

// TranscribeStream transcribes audio clips and calls onChunk with each piece of text
// as the service streams it back.
func (c *Client) TranscribeStream(ctx context.Context, audio []Blob, language string, onChunk func(string)) error {
	parts := []Part{TextPart(transcriptionPrompt(language, false))}
	for _, a := range audio {
		parts = append(parts, BlobPart(a.MimeType, a.Data))
	}
	return c.streamGenerateContent(ctx, c.cfg.TranscribeModel, generateContentRequest{
		Contents: []Content{{Parts: parts}},
	}, onChunk)
}

func (c *Client) streamGenerateContent(ctx context.Context, model string, req generateContentRequest, onChunk func(string)) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("alt", "sse").
		SetHeader("Accept", "text/event-stream").
		SetBody(req).
		SetDoNotParseResponse(true).
		Post(modelPath(model, "streamGenerateContent"))
	if err != nil {
		return fmt.Errorf("genai: %s stream failed: %w", model, err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() < 200 || res.StatusCode() > 299 {
		data, _ := io.ReadAll(body)
		apiErr := &APIError{StatusCode: res.StatusCode()}
		var eb apiErrorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Status = eb.Error.Status
			apiErr.Message = eb.Error.Message
		}
		return apiErr
	}

	return readEvents(body, func(event []byte) error {
		var chunk generateContentResponse
		if err := json.Unmarshal(event, &chunk); err != nil {
			return fmt.Errorf("genai: malformed stream event: %w", err)
		}
		if text := chunk.text(); text != "" {
			onChunk(text)
		}
		return nil
	})
}

// readEvents calls fn with the data payload of each server-sent event in r
func readEvents(r io.Reader, fn func([]byte) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	var data strings.Builder
	flush := func() error {
		if data.Len() == 0 {
			return nil
		}
		payload := data.String()
		data.Reset()
		if payload == "[DONE]" {
			return nil
		}
		return fn([]byte(payload))
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if err := flush(); err != nil {
				return err
			}
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("genai: reading stream: %w", err)
	}
	return flush()
}
