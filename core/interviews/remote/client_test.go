package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/voxhire/interview-core/core/interviews"
)

func TestStartDecodesOpeningAudioAndProgress(t *testing.T) {
	openingAudio := []byte{0x01, 0x00, 0x02, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interview/start" {
			t.Fatalf("expected start path, got %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("unexpected request decode error: %v", err)
		}
		if body["candidate_name"] != "Ada" || body["role"] != "Backend Engineer" || body["voice"] != "luna" {
			t.Fatalf("unexpected start request body: %v", body)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"session_id":           "session-1",
			"opening_message":      "Tell me about yourself",
			"opening_audio_base64": base64.StdEncoding.EncodeToString(openingAudio),
			"state": map[string]any{
				"question_count":       0,
				"main_questions_asked": 0,
				"satisfaction_level":   "gathering_info",
				"can_prompt_end":       false,
				"is_complete":          false,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Start(context.Background(), interviews.SetupConfig{
		CandidateName: "Ada",
		Role:          "Backend Engineer",
		Voice:         "luna",
	})
	if err != nil {
		t.Fatalf("unexpected start error: %v", err)
	}

	if result.SessionID != "session-1" {
		t.Fatalf("expected session id %q, got %q", "session-1", result.SessionID)
	}
	if result.OpeningMessage != "Tell me about yourself" {
		t.Fatalf("expected opening message, got %q", result.OpeningMessage)
	}
	if !bytes.Equal(result.OpeningAudio, openingAudio) {
		t.Fatalf("expected decoded opening audio %v, got %v", openingAudio, result.OpeningAudio)
	}
	if result.Progress.SatisfactionLevel != interviews.SatisfactionGatheringInfo {
		t.Fatalf("expected gathering_info satisfaction, got %q", result.Progress.SatisfactionLevel)
	}
}

func TestStartUnreachableServiceIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	client := NewClient(server.URL)
	_, err := client.Start(context.Background(), interviews.SetupConfig{})
	if err == nil {
		t.Fatalf("expected error for unreachable service")
	}

	var connErr *interviews.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T: %v", err, err)
	}
	if connErr.Op != "start" {
		t.Fatalf("expected op %q, got %q", "start", connErr.Op)
	}
}

func TestStartNonSuccessStatusIsConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Start(context.Background(), interviews.SetupConfig{})

	var connErr *interviews.ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T: %v", err, err)
	}
}

func TestRespondRoundTripsCaptureAndReply(t *testing.T) {
	capture := []byte("opaque recording blob")
	replyAudio := []byte{0x0A, 0x00, 0x0B, 0x00}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interview/session-1/respond" {
			t.Fatalf("expected respond path, got %q", r.URL.Path)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("unexpected request decode error: %v", err)
		}
		uploaded, err := base64.StdEncoding.DecodeString(body["audio"])
		if err != nil {
			t.Fatalf("expected base64 audio upload, got error: %v", err)
		}
		if !bytes.Equal(uploaded, capture) {
			t.Fatalf("expected uploaded capture %q, got %q", capture, uploaded)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"candidate_transcript": "I build backend services",
			"interviewer_response": "What was the hardest part?",
			"audio":                base64.StdEncoding.EncodeToString(replyAudio),
			"state": map[string]any{
				"question_count":       1,
				"main_questions_asked": 2,
				"satisfaction_level":   "almost_satisfied",
				"can_prompt_end":       true,
				"is_complete":          false,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.Respond(context.Background(), "session-1", capture)
	if err != nil {
		t.Fatalf("unexpected respond error: %v", err)
	}

	if result.CandidateTranscript != "I build backend services" {
		t.Fatalf("unexpected candidate transcript %q", result.CandidateTranscript)
	}
	if result.InterviewerResponse != "What was the hardest part?" {
		t.Fatalf("unexpected interviewer response %q", result.InterviewerResponse)
	}
	if !bytes.Equal(result.Audio, replyAudio) {
		t.Fatalf("expected decoded reply audio %v, got %v", replyAudio, result.Audio)
	}
	if !result.Progress.CanPromptEnd {
		t.Fatalf("expected can_prompt_end to carry over")
	}
	if result.Progress.MainQuestionsAsked != 2 {
		t.Fatalf("expected 2 main questions, got %d", result.Progress.MainQuestionsAsked)
	}
}

func TestRespondRejectionCarriesServiceDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Could not transcribe audio"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Respond(context.Background(), "session-1", []byte("blob"))
	if err == nil {
		t.Fatalf("expected error for rejected respond exchange")
	}

	var procErr *interviews.ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ProcessingError, got %T: %v", err, err)
	}
	if procErr.Detail != "Could not transcribe audio" {
		t.Fatalf("expected service detail, got %q", procErr.Detail)
	}
	if procErr.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", procErr.StatusCode)
	}
}

func TestRespondServerFailureWithoutDetailIsProcessingError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.Respond(context.Background(), "session-1", []byte("blob"))

	var procErr *interviews.ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("expected ProcessingError, got %T: %v", err, err)
	}
	if procErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", procErr.StatusCode)
	}
}

func TestEndReturnsTranscriptAndProgress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interview/session-1/end" {
			t.Fatalf("expected end path, got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"transcript": []map[string]string{
				{"role": "interviewer", "content": "Tell me about yourself"},
				{"role": "candidate", "content": "I build backend services"},
			},
			"state": map[string]any{
				"question_count":       1,
				"main_questions_asked": 1,
				"satisfaction_level":   "satisfied",
				"can_prompt_end":       true,
				"is_complete":          true,
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	result, err := client.End(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("unexpected end error: %v", err)
	}

	if len(result.Transcript) != 2 {
		t.Fatalf("expected 2 transcript entries, got %d", len(result.Transcript))
	}
	if result.Transcript[0].Role != interviews.RoleInterviewer {
		t.Fatalf("expected interviewer first, got %q", result.Transcript[0].Role)
	}
	if !result.Progress.IsComplete {
		t.Fatalf("expected completed progress snapshot")
	}
}

func TestAnalyzeDecodesScoringPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/interview/session-1/analyze" {
			t.Fatalf("expected analyze path, got %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"analysis": map[string]any{
				"overall_score":  82,
				"recommendation": "hire",
				"summary":        "Strong systems background.",
				"strengths":      []string{"clear communication"},
				"skills": map[string]int{
					"communication":   85,
					"technical":       80,
					"problem_solving": 78,
					"confidence":      81,
				},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	analysis, err := client.Analyze(context.Background(), "session-1")
	if err != nil {
		t.Fatalf("unexpected analyze error: %v", err)
	}

	if analysis.OverallScore != 82 {
		t.Fatalf("expected overall score 82, got %d", analysis.OverallScore)
	}
	if analysis.Recommendation != "hire" {
		t.Fatalf("expected recommendation %q, got %q", "hire", analysis.Recommendation)
	}
	if analysis.Skills.Communication != 85 {
		t.Fatalf("expected communication score 85, got %d", analysis.Skills.Communication)
	}
}

func TestVoicesAndHealth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
		case "/api/voices":
			json.NewEncoder(w).Encode(map[string][]string{"voices": {"asteria", "luna"}})
		default:
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("unexpected health error: %v", err)
	}

	voices, err := client.Voices(context.Background())
	if err != nil {
		t.Fatalf("unexpected voices error: %v", err)
	}
	if len(voices) != 2 || voices[1] != "luna" {
		t.Fatalf("unexpected voices %v", voices)
	}
}
