package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"deckgen-backend/internal/config"
	"deckgen-backend/internal/models"
	"deckgen-backend/internal/outline"
	"deckgen-backend/internal/parser"
	"deckgen-backend/internal/pptx"
	"deckgen-backend/internal/services"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// docExts the optional source document may use. Template extensions come
// from config.
var docExts = map[string]bool{".txt": true, ".md": true, ".pdf": true, ".docx": true}

type DeckHandler struct {
	cfg        *config.Config
	planner    *services.PlannerService
	extractor  *services.FileExtractService
	parser     *parser.Parser
	parserOpts parser.Options
}

func NewDeckHandler(cfg *config.Config, planner *services.PlannerService, extractor *services.FileExtractService) *DeckHandler {
	opts := parser.DefaultOptions()
	opts.MaxBulletsPerSlide = cfg.MaxBulletsPerSlide
	return &DeckHandler{
		cfg:        cfg,
		planner:    planner,
		extractor:  extractor,
		parser:     parser.New(opts),
		parserOpts: opts,
	}
}

func (h *DeckHandler) limits() outline.Limits {
	return outline.Limits{
		MaxBulletsPerSlide: h.cfg.MaxBulletsPerSlide,
		MaxTitleChars:      h.cfg.MaxTitleChars,
		MaxBulletChars:     h.cfg.MaxBulletChars,
		MaxNotesChars:      h.cfg.MaxNotesChars,
		MaxTotalSlides:     h.cfg.MaxTotalSlides,
	}
}

func (h *DeckHandler) zipLimits() pptx.ZipLimits {
	return pptx.ZipLimits{
		MaxEntries:     h.cfg.MaxZipEntries,
		MaxMemberBytes: int64(h.cfg.MaxZipMemberMB) << 20,
		MaxTotalBytes:  int64(h.cfg.MaxZipTotalMB) << 20,
		MaxRatio:       float64(h.cfg.MaxZipRatio),
	}
}

// parseRequest reads the shared form fields of both endpoints, merging the
// text field with any uploaded source document. The returned error message
// is safe to show the client.
func (h *DeckHandler) parseRequest(r *http.Request) (models.OutlineRequest, error) {
	var req models.OutlineRequest

	text := strings.TrimSpace(r.FormValue("text"))
	doc, err := h.readUpload(r, "source", docExts)
	if err != nil {
		return req, err
	}
	if doc != nil {
		extracted, err := h.extractor.ExtractText(doc.filename, doc.data)
		if err != nil {
			return req, errExtraction
		}
		if text == "" {
			text = extracted
		} else {
			text = text + "\n\n" + extracted
		}
	}
	if text == "" {
		return req, errors.New("provide text or a source file")
	}

	count, err := formInt(r, "slide_count")
	if err != nil || count < 0 || count > h.cfg.MaxTotalSlides {
		return req, fmt.Errorf("slide_count must be between 1 and %d", h.cfg.MaxTotalSlides)
	}

	req.Text = clampRunes(text, h.cfg.MaxTextChars)
	req.Guidance = strings.TrimSpace(r.FormValue("guidance"))
	req.SlideCount = count
	req.IncludeNotes = formBool(r, "include_notes")
	req.Model = strings.TrimSpace(r.FormValue("model"))
	req.APIKey = strings.TrimSpace(r.FormValue("api_key"))
	req.BaseURL = strings.TrimSpace(r.FormValue("base_url"))
	return req, nil
}

// produceOutline builds the outline, preferring the model when the caller
// supplied a token and falling back to the heuristic parser on any model or
// schema failure. The fallback is silent toward the client.
func (h *DeckHandler) produceOutline(r *http.Request, req models.OutlineRequest) (*outline.Outline, string) {
	minSlides := h.parserOpts.MinSlides
	maxSlides := h.parserOpts.MaxSlides

	if req.APIKey != "" {
		raw, err := h.planner.PlanOutline(r.Context(), services.PlanRequest{
			Text:         req.Text,
			Guidance:     req.Guidance,
			NumSlides:    req.SlideCount,
			IncludeNotes: req.IncludeNotes,
			Model:        req.Model,
			APIKey:       req.APIKey,
			BaseURL:      req.BaseURL,
		})
		if err == nil {
			if o, verr := outline.Validate(raw, h.limits()); verr == nil {
				return outline.NormalizeCount(o, req.SlideCount, minSlides, maxSlides), "llm"
			}
		}
		// Details may echo the caller's token; log only the fact.
		log.Println("planner unavailable or returned invalid outline, using heuristic parser")
	}

	o := h.parser.Parse(req.Text, req.Guidance, req.IncludeNotes)
	return outline.NormalizeCount(o, req.SlideCount, minSlides, maxSlides), "parser"
}

// Outline previews the slide outline for a piece of text without touching a
// template.
//
// POST /api/v1/decks/outline
func (h *DeckHandler) Outline(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.cfg.MaxFileMB)<<20)
	if err := parseForm(r, int64(h.cfg.MaxFileMB)<<20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid or oversized form body", r))
		return
	}
	req, err := h.parseRequest(r)
	if err != nil {
		status, code := http.StatusBadRequest, "VALIDATION_ERROR"
		if errors.Is(err, errExtraction) {
			status, code = http.StatusUnprocessableEntity, "EXTRACTION_FAILED"
		}
		writeJSON(w, status, errorResp(code, err.Error(), r))
		return
	}

	o, source := h.produceOutline(r, req)
	writeJSON(w, http.StatusOK, models.OutlineResponse{Source: source, Outline: o})
}

// Generate renders a full deck onto an uploaded template.
//
// POST /api/v1/decks/generate (multipart/form-data)
func (h *DeckHandler) Generate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 2*int64(h.cfg.MaxFileMB)<<20)
	if err := parseForm(r, int64(h.cfg.MaxFileMB)<<20); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid or oversized form body", r))
		return
	}

	template, err := h.readUpload(r, "template", h.cfg.AllowedExts)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}
	if template == nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "A .pptx template upload is required", r))
		return
	}

	req, err := h.parseRequest(r)
	if err != nil {
		status, code := http.StatusBadRequest, "VALIDATION_ERROR"
		if errors.Is(err, errExtraction) {
			status, code = http.StatusUnprocessableEntity, "EXTRACTION_FAILED"
		}
		writeJSON(w, status, errorResp(code, err.Error(), r))
		return
	}

	o, source := h.produceOutline(r, req)

	deck, err := pptx.Assemble(template.data, o, h.zipLimits(), pptx.BuildOptions{
		Guidance:      req.Guidance,
		IncludeNotes:  req.IncludeNotes,
		ReuseImages:   formBool(r, "reuse_images"),
		MaxImages:     h.cfg.MaxTemplateImages,
		MaxImageBytes: int64(h.cfg.MaxTemplateImageMB) << 20,
	})
	if err != nil {
		if errors.Is(err, pptx.ErrUnsafeArchive) {
			writeJSON(w, http.StatusBadRequest, errorResp("INVALID_TEMPLATE", "Template rejected: not a safe PowerPoint file", r))
			return
		}
		log.Printf("deck assembly failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("ASSEMBLY_FAILED", "Could not build the presentation", r))
		return
	}

	filename := fmt.Sprintf("deckgen-%s.pptx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("X-Outline-Source", source)
	w.Header().Set("Content-Length", strconv.Itoa(len(deck)))
	w.WriteHeader(http.StatusOK)
	w.Write(deck)
}

var errExtraction = errors.New("could not extract text from the uploaded source file")

type upload struct {
	filename string
	data     []byte
}

// readUpload pulls one named file from the form, enforcing the extension
// allowlist and the per-file size cap. Returns nil when the field is absent
// or the body was not multipart.
func (h *DeckHandler) readUpload(r *http.Request, field string, allowed map[string]bool) (*upload, error) {
	if r.MultipartForm == nil {
		return nil, nil
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read %s upload", field)
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowed[ext] {
		return nil, fmt.Errorf("unsupported %s file type %q", field, ext)
	}
	limit := int64(h.cfg.MaxFileMB) << 20
	if header.Size > limit {
		return nil, fmt.Errorf("%s exceeds the %dMB limit", field, h.cfg.MaxFileMB)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return nil, fmt.Errorf("could not read %s upload", field)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%s exceeds the %dMB limit", field, h.cfg.MaxFileMB)
	}
	return &upload{filename: header.Filename, data: data}, nil
}

// parseForm accepts either multipart or urlencoded bodies.
func parseForm(r *http.Request, maxMemory int64) error {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		return r.ParseMultipartForm(maxMemory)
	}
	return r.ParseForm()
}

func formInt(r *http.Request, field string) (int, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

func formBool(r *http.Request, field string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(field))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func clampRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

var crlfRe = regexp.MustCompile(`[\r\n]`)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   crlfRe.ReplaceAllString(message, " "),
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}
