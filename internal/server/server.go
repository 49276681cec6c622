package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/iwvelando/mortgage-calculator/internal/form"
	"github.com/iwvelando/mortgage-calculator/internal/session"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
	"go.uber.org/zap"
)

//go:embed templates/*
var templateFiles embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFiles, "templates/index.html.tmpl"))

type handler struct {
	logger      *zap.Logger
	store       session.Store
	calculator  *mortgage.Calculator
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the calculator form and API.
func NewHandler(logger *zap.Logger, store session.Store, maxBodySize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = session.NewMemoryStore(0)
	}
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		store:       store,
		calculator:  mortgage.NewCalculator(logger),
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}

	mux := http.NewServeMux()

	// Server-rendered form
	mux.HandleFunc("/", h.handleIndex)
	mux.HandleFunc("/calculate", h.handleCalculateForm)
	mux.HandleFunc("/clear", h.handleClearForm)

	// Session form events for script-driven clients
	mux.HandleFunc("/api/form", h.handleFormState)
	mux.HandleFunc("/api/form/change", h.handleFormChange)
	mux.HandleFunc("/api/form/focus", h.handleFormFocus)
	mux.HandleFunc("/api/form/submit", h.handleFormSubmit)
	mux.HandleFunc("/api/form/reset", h.handleFormReset)

	// Stateless calculation
	mux.HandleFunc("/api/calculate", h.handleCalculate)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return loggingMiddleware(logger, mux)
}

type resultResponse struct {
	Type             string  `json:"type"`
	Principal        float64 `json:"principal"`
	TermYears        float64 `json:"termYears"`
	AnnualRate       float64 `json:"annualRate"`
	MonthlyRepayment string  `json:"monthlyRepayment"`
	TotalRepayment   string  `json:"totalRepayment"`
}

type formResponse struct {
	Phase  string            `json:"phase"`
	Values validation.Values `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
	Result *resultResponse   `json:"result,omitempty"`
}

type validationResponse struct {
	Errors map[string]string `json:"errors"`
}

type fieldEvent struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func newResultResponse(r *mortgage.Result) *resultResponse {
	if r == nil {
		return nil
	}
	return &resultResponse{
		Type:             string(r.Inputs.Type),
		Principal:        r.Inputs.Principal,
		TermYears:        r.Inputs.TermYears,
		AnnualRate:       r.Inputs.AnnualRate,
		MonthlyRepayment: r.MonthlyString(),
		TotalRepayment:   r.TotalString(),
	}
}

func newFormResponse(state form.State) formResponse {
	return formResponse{
		Phase:  state.Phase().String(),
		Values: state.Values,
		Errors: errorStrings(state.Errors),
		Result: newResultResponse(state.Result),
	}
}

func errorStrings(errs validation.FieldErrors) map[string]string {
	if len(errs) == 0 {
		return nil
	}
	out := make(map[string]string, len(errs))
	for field, msg := range errs {
		out[string(field)] = msg
	}
	return out
}

func (h *handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := h.sessionID(w, r)
	f, err := h.loadForm(r.Context(), id)
	if err != nil {
		h.internalError(w, err, "server.handleIndex")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, newPageView(f.Snapshot(), h.version)); err != nil {
		h.logger.Error("failed to render page",
			zap.String("op", "server.handleIndex"),
			zap.Error(err),
		)
	}
}

func (h *handler) handleCalculateForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseForm(); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, fmt.Sprintf("failed to parse form: %v", err), http.StatusBadRequest)
		return
	}

	id := h.sessionID(w, r)
	_, err := h.updateForm(r.Context(), id, func(f *form.Form) {
		current := f.Values()
		for _, field := range validation.Fields {
			if value := r.PostForm.Get(string(field)); value != current.Get(field) {
				f.Change(field, value)
			}
		}
		state := f.Submit()
		h.logger.Info("form calculated",
			zap.String("op", "server.handleCalculateForm"),
			zap.String("phase", state.Phase().String()),
			zap.Int("errors", len(state.Errors)),
		)
	})
	if err != nil {
		h.internalError(w, err, "server.handleCalculateForm")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleClearForm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := h.sessionID(w, r)
	if _, err := h.updateForm(r.Context(), id, (*form.Form).Reset); err != nil {
		h.internalError(w, err, "server.handleClearForm")
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *handler) handleFormState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := h.sessionID(w, r)
	f, err := h.loadForm(r.Context(), id)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), "server.handleFormState")
		return
	}
	h.writeJSON(w, http.StatusOK, newFormResponse(f.Snapshot()))
}

func (h *handler) handleFormChange(w http.ResponseWriter, r *http.Request) {
	h.handleFieldEvent(w, r, "server.handleFormChange", func(f *form.Form, field validation.Field, value string) {
		f.Change(field, value)
	})
}

func (h *handler) handleFormFocus(w http.ResponseWriter, r *http.Request) {
	h.handleFieldEvent(w, r, "server.handleFormFocus", func(f *form.Form, field validation.Field, _ string) {
		f.Focus(field)
	})
}

func (h *handler) handleFieldEvent(w http.ResponseWriter, r *http.Request, op string, apply func(*form.Form, validation.Field, string)) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var event fieldEvent
	if !h.decodeJSON(w, r, &event, op) {
		return
	}
	field, ok := validation.ParseField(event.Field)
	if !ok {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("unknown field %q", event.Field), op)
		return
	}

	id := h.sessionID(w, r)
	h.respondWithUpdatedForm(w, r, id, op, func(f *form.Form) {
		apply(f, field, event.Value)
	})
}

func (h *handler) handleFormSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := h.sessionID(w, r)
	h.respondWithUpdatedForm(w, r, id, "server.handleFormSubmit", func(f *form.Form) {
		f.Submit()
	})
}

func (h *handler) handleFormReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	id := h.sessionID(w, r)
	h.respondWithUpdatedForm(w, r, id, "server.handleFormReset", (*form.Form).Reset)
}

func (h *handler) respondWithUpdatedForm(w http.ResponseWriter, r *http.Request, id, op string, apply func(*form.Form)) {
	state, err := h.updateForm(r.Context(), id, apply)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, newFormResponse(state))
}

func (h *handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	const op = "server.handleCalculate"
	var values validation.Values
	if !h.decodeJSON(w, r, &values, op) {
		return
	}

	if errs := validation.ValidateRequired(values); len(errs) > 0 {
		h.writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: errorStrings(errs)})
		return
	}

	inputs, err := validation.ParseInputs(values)
	if err != nil {
		var inputErr *validation.InputError
		if errors.As(err, &inputErr) {
			h.writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: errorStrings(inputErr.Fields)})
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, err := h.calculator.Calculate(inputs)
	if err != nil {
		h.writeJSON(w, http.StatusUnprocessableEntity, validationResponse{Errors: map[string]string{
			string(validation.FieldAmount): validation.MessageOutOfRange,
		}})
		return
	}

	h.logger.Info("mortgage calculated",
		zap.String("op", op),
		zap.String("type", string(inputs.Type)),
		zap.String("monthly", result.MonthlyString()),
	)
	h.writeJSON(w, http.StatusOK, newResultResponse(&result))
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

// sessionID returns the caller's session id, issuing a new cookie when the
// request carries none or an invalid one.
func (h *handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(constants.SessionCookieName); err == nil && session.ValidID(cookie.Value) {
		return cookie.Value
	}

	id := session.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (h *handler) loadForm(ctx context.Context, id string) (*form.Form, error) {
	state, ok, err := h.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return form.New(h.logger, h.calculator), nil
	}
	return form.Restore(h.logger, h.calculator, state), nil
}

// updateForm applies an event to the stored form inside a single store
// update, so overlapping requests of one session all take effect.
func (h *handler) updateForm(ctx context.Context, id string, apply func(*form.Form)) (form.State, error) {
	var state form.State
	err := h.store.Update(ctx, id, func(current form.State) form.State {
		f := form.Restore(h.logger, h.calculator, current)
		apply(f)
		state = f.Snapshot()
		return state
	})
	return state, err
}

func (h *handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxBodySize), op)
			return false
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return false
	}
	return true
}

func (h *handler) internalError(w http.ResponseWriter, err error, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Error(err),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

type pageView struct {
	Values  validation.Values
	Errors  map[string]string
	Types   []typeOption
	Result  *resultView
	Version string
}

type typeOption struct {
	Value   string
	Label   string
	Checked bool
}

type resultView struct {
	Monthly string
	Total   string
}

func newPageView(state form.State, version string) pageView {
	view := pageView{
		Values:  state.Values,
		Errors:  errorStrings(state.Errors),
		Version: version,
	}
	for _, t := range mortgage.Types {
		view.Types = append(view.Types, typeOption{
			Value:   string(t),
			Label:   t.Label(),
			Checked: state.Values.Type == string(t),
		})
	}
	if state.Result != nil {
		view.Result = &resultView{
			Monthly: format.Currency(state.Result.Monthly),
			Total:   format.Currency(state.Result.Total()),
		}
	}
	return view
}
