package llm

import (
	"strings"
	"testing"
)

// collect returns a decoder that appends every fragment to the given slice
func collect(fragments *[]string) *sseDecoder {
	return newSSEDecoder(func(text string) error {
		*fragments = append(*fragments, text)
		return nil
	})
}

func TestDecoder_SingleEvent(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"AB\"}]}}]}\n\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 1 || fragments[0] != "AB" {
		t.Errorf("Expected single fragment \"AB\", got %v", fragments)
	}
}

// Decoding must produce an identical fragment sequence regardless of how the
// byte stream is chopped into delivery chunks.
func TestDecoder_ChunkBoundaryIndependence(t *testing.T) {
	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"AB\"}]}}]}\n\n" +
		"data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"CD\"}]}}]}\n\n"

	decode := func(chunkSize int) []string {
		var fragments []string
		d := collect(&fragments)
		data := []byte(input)
		for start := 0; start < len(data); start += chunkSize {
			end := start + chunkSize
			if end > len(data) {
				end = len(data)
			}
			if err := d.Feed(data[start:end]); err != nil {
				t.Fatalf("Feed failed at chunk size %d: %v", chunkSize, err)
			}
		}
		if err := d.Finish(); err != nil {
			t.Fatalf("Finish failed at chunk size %d: %v", chunkSize, err)
		}
		return fragments
	}

	want := decode(len(input))
	if len(want) != 2 || want[0] != "AB" || want[1] != "CD" {
		t.Fatalf("Expected fragments [AB CD], got %v", want)
	}

	for chunkSize := 1; chunkSize < len(input); chunkSize++ {
		got := decode(chunkSize)
		if len(got) != len(want) {
			t.Fatalf("Chunk size %d: expected %d fragments, got %v", chunkSize, len(want), got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("Chunk size %d: fragment %d = %q, want %q", chunkSize, i, got[i], want[i])
			}
		}
	}
}

func TestDecoder_OrderPreserved(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	for _, text := range []string{"A", "B", "C"} {
		event := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"" + text + "\"}]}}]}\n\n"
		if err := d.Feed([]byte(event)); err != nil {
			t.Fatalf("Feed failed: %v", err)
		}
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if strings.Join(fragments, "") != "ABC" {
		t.Errorf("Expected fragments in order ABC, got %v", fragments)
	}
}

func TestDecoder_ArrayPayload(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: [{\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"one\"}]}}]}," +
		"{\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"two\"}]}}]}]\n\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 2 || fragments[0] != "one" || fragments[1] != "two" {
		t.Errorf("Expected fragments [one two], got %v", fragments)
	}
}

// A payload split across two blank-line boundaries must keep buffering: the
// first parse attempt fails on the incomplete JSON and the data buffer keeps
// growing until the payload is complete.
func TestDecoder_IncompleteEventKeepsBuffering(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	first := "data: {\"candidates\":[{\"content\":\n\n"
	second := "data: {\"parts\":[{\"text\":\"joined\"}]}}]}\n\n"

	if err := d.Feed([]byte(first)); err != nil {
		t.Fatalf("Feed failed on incomplete payload: %v", err)
	}
	if len(fragments) != 0 {
		t.Fatalf("Expected no fragments before payload completes, got %v", fragments)
	}

	if err := d.Feed([]byte(second)); err != nil {
		t.Fatalf("Feed failed on completing payload: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 1 || fragments[0] != "joined" {
		t.Errorf("Expected fragment \"joined\" after buffer completed, got %v", fragments)
	}
}

// When no SSE framing is used at all, the whole-body fallback extracts the
// text exactly once, at Finish.
func TestDecoder_WholeBodyFallback(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	body := "[{\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"hi\"}]}}]}]"
	if err := d.Feed([]byte(body)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(fragments) != 0 {
		t.Fatalf("Expected no fragments before Finish, got %v", fragments)
	}

	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}
	if len(fragments) != 1 || fragments[0] != "hi" {
		t.Errorf("Expected exactly one fragment \"hi\" at Finish, got %v", fragments)
	}
}

func TestDecoder_CommaJoinedFallback(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	body := "{\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"a\"}]}}]},\n" +
		"{\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"b\"}]}}]}"
	if err := d.Feed([]byte(body)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 2 || fragments[0] != "a" || fragments[1] != "b" {
		t.Errorf("Expected fragments [a b], got %v", fragments)
	}
}

func TestDecoder_DoneSentinelIgnored(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"x\"}]}}]}\n\n" +
		"data: [DONE]\n\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 1 || fragments[0] != "x" {
		t.Errorf("Expected [DONE] to be ignored, got %v", fragments)
	}
}

func TestDecoder_MissingTextPathYieldsNoFragment(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	// Control-only event, then a text event
	input := "data: {\"usageMetadata\":{\"totalTokenCount\":3}}\n\n" +
		"data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"y\"}]}}]}\n\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 1 || fragments[0] != "y" {
		t.Errorf("Expected only the text event to emit, got %v", fragments)
	}
}

// Events that parse but carry no text leave the stream with zero emitted
// fragments. The fallback re-parse then finds the same empty payloads, so
// nothing is emitted twice and nothing escalates.
func TestDecoder_ParsedButEmptyDoesNotEscalate(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: {\"usageMetadata\":{\"totalTokenCount\":3}}\n\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Expected no error for parsed-but-empty stream, got %v", err)
	}
	if len(fragments) != 0 {
		t.Errorf("Expected no fragments, got %v", fragments)
	}
}

func TestDecoder_UnparsableBodyEscalates(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	if err := d.Feed([]byte("<html>Internal Server Error</html>")); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err == nil {
		t.Error("Expected error for unparsable body with zero fragments")
	}
}

// A final event without a trailing newline must still be decoded when the
// stream ends.
func TestDecoder_UnterminatedLineFlushedAtFinish(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"tail\"}]}}]}"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if len(fragments) != 0 {
		t.Fatalf("Expected no fragments before Finish, got %v", fragments)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 1 || fragments[0] != "tail" {
		t.Errorf("Expected fragment \"tail\" at Finish, got %v", fragments)
	}
}

func TestDecoder_CRLFLines(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"crlf\"}]}}]}\r\n\r\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 1 || fragments[0] != "crlf" {
		t.Errorf("Expected fragment \"crlf\", got %v", fragments)
	}
}

func TestDecoder_MultiplePartsPerCandidate(t *testing.T) {
	var fragments []string
	d := collect(&fragments)

	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"p1\"},{\"text\":\"p2\"}]}}]}\n\n"
	if err := d.Feed([]byte(input)); err != nil {
		t.Fatalf("Feed failed: %v", err)
	}
	if err := d.Finish(); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	if len(fragments) != 2 || fragments[0] != "p1" || fragments[1] != "p2" {
		t.Errorf("Expected fragments [p1 p2], got %v", fragments)
	}
}

func TestDecoder_CallbackErrorAborts(t *testing.T) {
	calls := 0
	d := newSSEDecoder(func(text string) error {
		calls++
		return errAbort
	})

	input := "data: {\"candidates\":[{\"content\":{\"parts\":[{\"text\":\"x\"}]}}]}\n\n"
	err := d.Feed([]byte(input))
	if err != errAbort {
		t.Errorf("Expected callback error to propagate, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected exactly one callback call, got %d", calls)
	}
}

var errAbort = &TransportError{Body: "abort"}
