package ui

import (
	"net/http"

	"gosus/domain/core"
	apperrors "gosus/internal/errors"
	"gosus/internal/narrative"
	"gosus/internal/report"
	"gosus/internal/session"
)

type analysisResponse struct {
	Test      *report.TestView `json:"test"`
	Narrative []string         `json:"narrative"`
}

func (a *App) handleRunAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var resp analysisResponse
	err = a.withAnalysisSlot(r.Context(), func() error {
		return a.store.With(id, func(calc *session.Calculator) error {
			result, err := calc.Run(r.Context(), a.engine)
			if err != nil {
				return err
			}
			n, err := narrative.Render(result)
			if err != nil {
				return err
			}
			resp = analysisResponse{Test: report.NewTestView(result), Narrative: n.Paragraphs}
			return nil
		})
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *App) handleAssumptions(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}

	var resp *report.AssumptionsView
	err = a.withAnalysisSlot(r.Context(), func() error {
		return a.store.With(id, func(calc *session.Calculator) error {
			checks, err := calc.CheckAssumptions(r.Context(), a.engine)
			if err != nil {
				return err
			}
			resp = report.NewAssumptionsView(checks)
			return nil
		})
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleReport renders the session as JSON, Markdown or HTML. The test and
// assumption sections are included only when they can be computed for the
// current selection and design.
func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := sessionIDParam(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "":
		format = "json"
	case "json", "md", "markdown", "html":
	default:
		a.writeError(w, apperrors.InvalidInput("format must be json, md or html"))
		return
	}

	var rep *report.Report
	err = a.withAnalysisSlot(r.Context(), func() error {
		return a.store.With(id, func(calc *session.Calculator) error {
			in := report.Input{
				Title:         r.URL.Query().Get("title"),
				Studies:       calc.Studies(),
				ActiveIndices: calc.ActiveIndices(),
				IncludeRaw:    r.URL.Query().Get("raw") == "true",
			}
			if design, ok := calc.Design(); ok {
				in.Design = &design
			}

			result, err := calc.Run(r.Context(), a.engine)
			switch {
			case err == nil:
				in.Result = result
			case core.IsDesignError(err) || core.IsUnsupportedDesign(err):
				a.logger.Debug("report for %s without test: %v", id, err)
			default:
				return err
			}

			if len(in.ActiveIndices) >= 2 {
				checks, err := calc.CheckAssumptions(r.Context(), a.engine)
				if err != nil {
					a.logger.Warn("report for %s without assumption checks: %v", id, err)
				} else {
					in.Assumptions = checks
				}
			}

			rep, err = report.Build(in)
			return err
		})
	})
	if err != nil {
		a.writeError(w, err)
		return
	}

	switch format {
	case "md", "markdown":
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.Write([]byte(report.Markdown(rep)))
	case "html":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(report.HTML(rep))
	default:
		writeJSON(w, http.StatusOK, rep)
	}
}
