package aiproxy

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Request is the relay's input contract.
type Request struct {
	Message          string `json:"message"`
	Context          string `json:"context,omitempty"`
	PreferredService string `json:"preferredService,omitempty"`
}

// Response is the success shape.
type Response struct {
	Response  string    `json:"response"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}

// ErrorResponse is the failure shape: an error plus a canned fallback
// string the UI can render instead of a reply.
type ErrorResponse struct {
	Error    string `json:"error"`
	Fallback string `json:"fallback"`
}

const fallbackMessage = "AI assistance is temporarily unavailable. " +
	"Check the troubleshooting steps on the alert, or reach the owning team via its on-call channel."

// Relay fans a chat request out across providers with fallback. Claude
// is preferred unless the request asks for OpenAI or Claude is not
// configured.
type Relay struct {
	claude LLMClient
	openai LLMClient
	logger *slog.Logger
}

// NewRelay creates a relay over the two providers.
func NewRelay(claude, openai LLMClient, logger *slog.Logger) *Relay {
	return &Relay{
		claude: claude,
		openai: openai,
		logger: logger.With("component", "aiproxy"),
	}
}

// providerOrder computes the attempt order for a request.
func (rl *Relay) providerOrder(preferred string) []LLMClient {
	if preferred == "openai" {
		return []LLMClient{rl.openai, rl.claude}
	}
	return []LLMClient{rl.claude, rl.openai}
}

// Handler is the POST /api/ai-proxy endpoint.
func (rl *Relay) Handler(w http.ResponseWriter, r *http.Request) {
	setCORS(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{
			Error:    "method not allowed",
			Fallback: fallbackMessage,
		})
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:    "request must include a message",
			Fallback: fallbackMessage,
		})
		return
	}

	var lastErr error
	for _, client := range rl.providerOrder(req.PreferredService) {
		if client == nil || !client.Available() {
			continue
		}
		reply, err := client.Generate(r.Context(), req.Message, req.Context)
		if err != nil {
			lastErr = err
			rl.logger.Warn("Provider failed, trying next",
				"provider", client.Provider(), "error", err)
			continue
		}
		writeJSON(w, http.StatusOK, Response{
			Response:  reply,
			Service:   client.Provider(),
			Timestamp: time.Now().UTC(),
		})
		return
	}

	msg := "all AI services unavailable"
	if lastErr != nil {
		msg = lastErr.Error()
	}
	rl.logger.Error("All providers failed", "error", msg)
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:    msg,
		Fallback: fallbackMessage,
	})
}

func setCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
