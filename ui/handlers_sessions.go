package ui

import (
	"errors"
	"io"
	"mime"
	"net/http"

	"gosus/adapters/excel"
	"gosus/domain/sus"
	apperrors "gosus/internal/errors"
	"gosus/internal/ingestion"
	"gosus/internal/report"
	"gosus/internal/session"
)

// sessionResponse is the session state returned by every session endpoint
type sessionResponse struct {
	session.Info
	Studies    []report.StudyView `json:"studies"`
	Active     []int              `json:"active"`
	Dependence *sus.Dependence    `json:"dependence,omitempty"`
	Parametric *sus.Parametric    `json:"parametric,omitempty"`
	Test       *sus.TestKind      `json:"test,omitempty"`
	Notice     string             `json:"notice,omitempty"`
}

func newSessionResponse(info session.Info, calc *session.Calculator) sessionResponse {
	resp := sessionResponse{Info: info, Active: calc.ActiveIndices()}
	for i, s := range calc.Studies() {
		resp.Studies = append(resp.Studies, report.NewStudyView(i, s, calc.IsActive(i), false))
	}
	if d, ok := calc.Dependence().Get(); ok {
		resp.Dependence = &d
	}
	if p, ok := calc.Parametric().Get(); ok {
		resp.Parametric = &p
	}
	if kind, err := calc.Route(); err == nil {
		resp.Test = &kind
	} else {
		var unsupported *session.UnsupportedDesignError
		if errors.As(err, &unsupported) {
			resp.Notice = unsupported.Notice.Text()
		}
	}
	return resp
}

// readUpload returns the questionnaire content of a request: the "file" part
// of a multipart form, or the raw body otherwise.
func (a *App) readUpload(w http.ResponseWriter, r *http.Request) (string, error) {
	limit := a.config.Limits.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, 2*limit+64<<10)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return excel.NewStreamReader("upload.csv", r.Body, limit).ReadContent(r.Context())
	}

	mr, err := r.MultipartReader()
	if err != nil {
		return "", apperrors.InvalidInput("malformed multipart body")
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return "", apperrors.InvalidInput(`multipart body has no "file" part`)
		}
		if err != nil {
			return "", apperrors.InvalidInput("malformed multipart body")
		}
		if part.FormName() != "file" {
			part.Close()
			continue
		}
		defer part.Close()

		content, err := excel.NewStreamReader(part.FileName(), part, limit).ReadContent(r.Context())
		if err != nil {
			return "", apperrors.InvalidInput("unreadable upload: " + err.Error())
		}
		return content, nil
	}
}

func (a *App) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	content, err := a.readUpload(w, r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	calc, err := session.NewCalculator(content,
		session.WithTukeyK(a.config.Analysis.TukeyK),
		session.WithLogger(a.logger))
	if err != nil {
		a.writeError(w, err)
		return
	}

	id := a.store.Create(calc)
	info, err := a.store.Info(id)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/sessions/"+id.String())
	writeJSON(w, http.StatusCreated, newSessionResponse(info, calc))
}

// respondSession runs fn under the session lock and replies with the
// resulting session state
func (a *App) respondSession(w http.ResponseWriter, r *http.Request, fn func(*session.Calculator) error) {
	id, err := sessionIDParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var resp sessionResponse
	err = a.store.WithInfo(id, func(calc *session.Calculator, info session.Info) error {
		if err := fn(calc); err != nil {
			return err
		}
		resp = newSessionResponse(info, calc)
		return nil
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleGetSession(w http.ResponseWriter, r *http.Request) {
	a.respondSession(w, r, func(*session.Calculator) error { return nil })
}

func (a *App) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.store.Delete(id); err != nil {
		a.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) handleSetActive(w http.ResponseWriter, r *http.Request) {
	index, err := studyIndexParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	var body struct {
		Active *bool `json:"active"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeError(w, err)
		return
	}
	if body.Active == nil {
		a.writeError(w, apperrors.InvalidInput(`"active" is required`))
		return
	}
	a.respondSession(w, r, func(calc *session.Calculator) error {
		return calc.SetActive(index, *body.Active)
	})
}

func (a *App) handleToggleStudy(w http.ResponseWriter, r *http.Request) {
	index, err := studyIndexParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.respondSession(w, r, func(calc *session.Calculator) error {
		return calc.ToggleStudy(index)
	})
}

func (a *App) handleChooseDependence(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Dependence string `json:"dependence"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeError(w, err)
		return
	}
	d, err := sus.ParseDependence(body.Dependence)
	if err != nil {
		a.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	a.respondSession(w, r, func(calc *session.Calculator) error {
		return calc.ChooseDependence(d)
	})
}

func (a *App) handleChooseMethod(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method string `json:"method"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		a.writeError(w, err)
		return
	}
	p, err := sus.ParseParametric(body.Method)
	if err != nil {
		a.writeError(w, apperrors.InvalidInput(err.Error()))
		return
	}
	a.respondSession(w, r, func(calc *session.Calculator) error {
		return calc.ChooseMethod(p)
	})
}

func (a *App) handleValidate(w http.ResponseWriter, r *http.Request) {
	content, err := a.readUpload(w, r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	valid, message := ingestion.Validate(content)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"valid":   valid,
		"message": message,
	})
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": a.store.Len(),
	})
}
