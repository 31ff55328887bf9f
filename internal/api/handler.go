package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/gonkalabs/notetoken/internal/content"
)

// Handler implements all HTTP endpoints.
type Handler struct {
	tokenizer    *content.Tokenizer
	defaults     content.Options
	classify     bool // classify links unless the request says otherwise
	maxTextBytes int
	validate     *validator.Validate
}

// New creates a Handler. defaults apply to requests that omit options.
func New(tok *content.Tokenizer, defaults content.Options, classify bool, maxTextBytes int) *Handler {
	return &Handler{
		tokenizer:    tok,
		defaults:     defaults,
		classify:     classify,
		maxTextBytes: maxTextBytes,
		validate:     newValidator(),
	}
}

// Register mounts routes on the given mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.health)
	mux.HandleFunc("GET /v1/kinds", h.listKinds)
	mux.HandleFunc("POST /v1/tokenize", h.tokenize)
}

// ---------- endpoints ----------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) listKinds(w http.ResponseWriter, _ *http.Request) {
	type kindEntry struct {
		Name     string `json:"name"`
		Priority int    `json:"priority"`
	}
	var entries []kindEntry
	for _, k := range content.Kinds() {
		entries = append(entries, kindEntry{Name: k.String(), Priority: k.Priority()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"kinds": entries})
}

type tokenizeRequest struct {
	Text    string           `json:"text"`
	Tags    [][]string       `json:"tags" validate:"max=10000"`
	Kinds   []string         `json:"kinds" validate:"max=32,dive,kind"`
	Options *tokenizeOptions `json:"options"`
}

type tokenizeOptions struct {
	IncludeBareProtocolReferences *bool `json:"includeBareProtocolReferences"`
	RestrictTagsToAnnotations     *bool `json:"restrictTagsToAnnotations"`
	ClassifyLinks                 *bool `json:"classifyLinks"`
}

type tokenizeResponse struct {
	RequestID string         `json:"requestId"`
	Tokens    []content.Span `json:"tokens"`
}

func (h *Handler) tokenize(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)

	// Leave room for JSON escaping and the rest of the envelope.
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(h.maxTextBytes)*2+64<<10))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeErr(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeErr(w, http.StatusBadRequest, "failed to read body: "+err.Error())
		return
	}
	defer r.Body.Close()

	var req tokenizeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if len(req.Text) > h.maxTextBytes {
		writeErr(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("text exceeds %d bytes", h.maxTextBytes))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeErr(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	opts, classify := h.resolveOptions(req.Options)

	start := time.Now()
	var spans []content.Span
	if classify {
		spans = h.tokenizer.TokenizeWithClassification(r.Context(), req.Text, req.Tags, &opts)
	} else {
		spans = h.tokenizer.Tokenize(req.Text, req.Tags, &opts)
	}
	if len(req.Kinds) > 0 {
		spans = content.FilterByKinds(spans, parseKinds(req.Kinds)...)
	}
	if spans == nil {
		spans = []content.Span{}
	}

	slog.Info("tokenize",
		"requestId", requestID,
		"bytes", len(req.Text),
		"tokens", len(spans),
		"classify", classify,
		"elapsed", time.Since(start),
	)
	writeJSON(w, http.StatusOK, tokenizeResponse{RequestID: requestID, Tokens: spans})
}

// ---------- helpers ----------

func (h *Handler) resolveOptions(o *tokenizeOptions) (content.Options, bool) {
	opts, classify := h.defaults, h.classify
	if o == nil {
		return opts, classify
	}
	if o.IncludeBareProtocolReferences != nil {
		opts.IncludeBareProtocolReferences = *o.IncludeBareProtocolReferences
	}
	if o.RestrictTagsToAnnotations != nil {
		opts.RestrictTagsToAnnotations = *o.RestrictTagsToAnnotations
	}
	if o.ClassifyLinks != nil {
		classify = *o.ClassifyLinks
	}
	return opts, classify
}

// parseKinds converts already-validated kind names.
func parseKinds(names []string) []content.Kind {
	kinds := make([]content.Kind, 0, len(names))
	for _, n := range names {
		if k, err := content.ParseKind(n); err == nil {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

// newValidator reports field errors by their JSON names and knows the
// "kind" tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		_, err := content.ParseKind(fl.Field().String())
		return err == nil
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "tokenizeRequest.")
		switch fe.Tag() {
		case "kind":
			msgs = append(msgs, fmt.Sprintf("%s: unknown kind %q", field, fe.Value()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s: too many entries (max %s)", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
