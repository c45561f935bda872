package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ganit/pkg/agent"
	"github.com/secmon-lab/ganit/pkg/domain/interfaces"
	"github.com/secmon-lab/ganit/pkg/domain/model"
	"github.com/secmon-lab/ganit/pkg/usecase"
	"github.com/secmon-lab/ganit/pkg/utils/errutil"
)

type solveRequest struct {
	Problem  string `json:"problem"`
	Feedback string `json:"feedback"`
}

type clarifyRequest struct {
	Problem  string   `json:"problem"`
	Answers  []string `json:"answers"`
	Feedback string   `json:"feedback"`
}

type correctionRequest struct {
	OriginalQuestion       string `json:"original_question"`
	AIAnswer               string `json:"ai_answer"`
	HumanCorrectedQuestion string `json:"human_corrected_question"`
	HumanCorrectedAnswer   string `json:"human_corrected_answer"`
	Comment                string `json:"comment"`
	Approved               bool   `json:"approved"`
}

type recallRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type recallResponse struct {
	Memories []*model.RecalledMemory `json:"memories"`
	Bias     *model.SolverBias       `json:"bias"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "invalid request body"), http.StatusBadRequest)
		return false
	}
	return true
}

// solveErrorStatus maps use case errors to HTTP status codes
func solveErrorStatus(err error) int {
	switch {
	case errors.Is(err, usecase.ErrEmptyProblem):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrCorrectionNotApproved):
		return http.StatusUnprocessableEntity
	case errors.Is(err, interfaces.ErrRecordExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func solveHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req solveRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		run, err := uc.Pipeline.Solve(r.Context(), req.Problem, usecase.WithFeedback(req.Feedback))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, solveErrorStatus(err))
			return
		}
		writeJSON(w, r, http.StatusOK, run)
	}
}

func clarifyHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req clarifyRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		run, err := uc.Pipeline.Clarify(r.Context(), req.Problem, req.Answers, usecase.WithFeedback(req.Feedback))
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, solveErrorStatus(err))
			return
		}
		writeJSON(w, r, http.StatusOK, run)
	}
}

func correctionHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req correctionRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		created, err := uc.Review.SubmitCorrection(r.Context(), &model.Correction{
			OriginalQuestion:       req.OriginalQuestion,
			AIAnswer:               req.AIAnswer,
			HumanCorrectedQuestion: req.HumanCorrectedQuestion,
			HumanCorrectedAnswer:   req.HumanCorrectedAnswer,
			Comment:                req.Comment,
			Approved:               req.Approved,
		})
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, solveErrorStatus(err))
			return
		}
		writeJSON(w, r, http.StatusCreated, created)
	}
}

func recallHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req recallRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		memories, err := uc.Memory.Recall(r.Context(), req.Query, req.TopK)
		if err != nil {
			errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
			return
		}
		writeJSON(w, r, http.StatusOK, recallResponse{
			Memories: memories,
			Bias:     agent.ExtractBias(memories),
		})
	}
}
