package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"advice-app/internal/logger"
)

// geminiPayload is the subset of a streamGenerateContent response the decoder
// extracts text from. Payloads missing this path yield no fragment.
type geminiPayload struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// sseDecoder incrementally decodes a text/event-stream response body into
// plain text fragments. Network chunk boundaries carry no meaning: an
// unterminated line is retained across Feed calls, and data lines belonging
// to one event accumulate until a blank line completes it.
//
// The decoder is owned exclusively by one stream and must not be shared.
type sseDecoder struct {
	// lineBuf holds the unterminated tail of the last chunk.
	lineBuf []byte
	// dataLines holds the data payload lines of the event being assembled.
	// They survive a failed parse so a payload split across events keeps
	// growing instead of being dropped.
	dataLines []string
	// rawBody captures every byte fed in, for the whole-body fallback.
	rawBody bytes.Buffer
	// emitted records whether any fragment ever reached onFragment via the
	// incremental path. The whole-body fallback only fires when it is
	// false, so already-delivered text can never be emitted twice.
	emitted bool

	onFragment func(text string) error
}

func newSSEDecoder(onFragment func(text string) error) *sseDecoder {
	return &sseDecoder{onFragment: onFragment}
}

// Feed consumes one network chunk. Complete lines are processed; the
// unterminated remainder is retained for the next call.
func (d *sseDecoder) Feed(chunk []byte) error {
	d.rawBody.Write(chunk)
	d.lineBuf = append(d.lineBuf, chunk...)

	for {
		idx := bytes.IndexByte(d.lineBuf, '\n')
		if idx < 0 {
			return nil
		}
		line := string(bytes.TrimSuffix(d.lineBuf[:idx], []byte("\r")))
		d.lineBuf = d.lineBuf[idx+1:]

		if err := d.processLine(line); err != nil {
			return err
		}
	}
}

func (d *sseDecoder) processLine(line string) error {
	if line == "" {
		// Blank line completes the event
		return d.flushEvent()
	}

	if payload, ok := strings.CutPrefix(line, "data:"); ok {
		payload = strings.TrimPrefix(payload, " ")
		if payload == "[DONE]" {
			return nil
		}
		d.dataLines = append(d.dataLines, payload)
	}
	// Other SSE fields (event:, id:, comments) are ignored
	return nil
}

// flushEvent joins the buffered data lines and attempts one JSON parse. A
// parse failure is treated as "more data needed", not as a fatal error: the
// buffer is kept and keeps growing until it parses or the stream ends.
func (d *sseDecoder) flushEvent() error {
	if len(d.dataLines) == 0 {
		return nil
	}

	payload := strings.Join(d.dataLines, "\n")
	texts, ok := parsePayload(payload)
	if !ok {
		logger.Log.WithField("buffer_length", len(payload)).Debug("Event payload incomplete, continuing to buffer")
		return nil
	}

	d.dataLines = nil
	return d.emit(texts)
}

// Finish flushes the retained line buffer as one last event attempt. If no
// fragment was ever emitted incrementally, the whole captured body is
// re-parsed to cover providers that answer with plain JSON instead of SSE
// framing. End of stream with nothing emitted and an unparsable body is the
// only decode failure that escalates.
func (d *sseDecoder) Finish() error {
	if len(d.lineBuf) > 0 {
		line := strings.TrimSuffix(string(d.lineBuf), "\r")
		d.lineBuf = nil
		if err := d.processLine(line); err != nil {
			return err
		}
	}
	if err := d.flushEvent(); err != nil {
		return err
	}

	if d.emitted {
		return nil
	}

	texts, ok := parseWholeBody(d.rawBody.String())
	if !ok {
		return fmt.Errorf("no fragments decoded and response body is not parsable")
	}
	return d.emit(texts)
}

func (d *sseDecoder) emit(texts []string) error {
	for _, text := range texts {
		if text == "" {
			continue
		}
		d.emitted = true
		if err := d.onFragment(text); err != nil {
			return err
		}
	}
	return nil
}

// parsePayload normalizes one event payload into a flat sequence of text
// deltas. Both a single object and an array of objects are accepted.
func parsePayload(payload string) ([]string, bool) {
	trimmed := strings.TrimSpace(payload)
	if trimmed == "" {
		return nil, true
	}

	if strings.HasPrefix(trimmed, "[") {
		var chunks []geminiPayload
		if err := json.Unmarshal([]byte(trimmed), &chunks); err != nil {
			return nil, false
		}
		var texts []string
		for _, chunk := range chunks {
			texts = append(texts, extractTexts(chunk)...)
		}
		return texts, true
	}

	var chunk geminiPayload
	if err := json.Unmarshal([]byte(trimmed), &chunk); err != nil {
		return nil, false
	}
	return extractTexts(chunk), true
}

// parseWholeBody covers the non-SSE fallback shapes: a raw JSON document, a
// JSON array, or comma-joined JSON objects spanning the whole body. SSE
// artifacts are stripped first so a conformant-but-unemitting stream still
// has a chance here.
func parseWholeBody(body string) ([]string, bool) {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if payload, ok := strings.CutPrefix(line, "data:"); ok {
			line = strings.TrimPrefix(payload, " ")
		}
		if line == "" || line == "[DONE]" {
			continue
		}
		lines = append(lines, line)
	}
	cleaned := strings.TrimSpace(strings.Join(lines, "\n"))
	if cleaned == "" {
		return nil, false
	}

	if texts, ok := parsePayload(cleaned); ok {
		return texts, true
	}

	// Comma-joined objects: wrap in brackets and retry as an array
	if texts, ok := parsePayload("[" + cleaned + "]"); ok {
		return texts, true
	}

	return nil, false
}

func extractTexts(chunk geminiPayload) []string {
	var texts []string
	for _, candidate := range chunk.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}
	return texts
}
