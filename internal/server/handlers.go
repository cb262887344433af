// internal/server/handlers.go
package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Violet0725/NLtoSQL/internal/common/errors"
	"github.com/Violet0725/NLtoSQL/internal/common/metrics"
	"github.com/Violet0725/NLtoSQL/internal/common/validation"
	"github.com/Violet0725/NLtoSQL/internal/model"
	"github.com/Violet0725/NLtoSQL/internal/models"
	"github.com/Violet0725/NLtoSQL/internal/nl2sql/extract"
	"github.com/Violet0725/NLtoSQL/internal/nl2sql/rules"
)

// minSQLLength is the shortest candidate accepted for execution; anything
// below it is reported as underivable rather than sent to the database.
const minSQLLength = 5

// askRequestSchema validates the /ask body before any pipeline work runs.
var askRequestSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"question": map[string]interface{}{
			"type":      "string",
			"minLength": 1,
		},
	},
	"required":             []string{"question"},
	"additionalProperties": false,
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	requestID := uuid.New().String()
	w.Header().Set("X-Request-ID", requestID)
	log := s.logger.WithFields(map[string]interface{}{"requestId": requestID})

	var raw map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, apperrors.NewInvalidRequestError("body must be JSON"))
		return
	}
	if result := validation.Validate(raw, askRequestSchema); !result.Valid {
		s.writeError(w, apperrors.NewInvalidRequestError(strings.Join(result.ErrorStrings(), "; ")))
		return
	}

	var req models.AskRequest
	req.Question, _ = raw["question"].(string)

	if !s.model.Ready() {
		metrics.QuestionsFailed.WithLabelValues(string(apperrors.ErrCodeModelNotReady)).Inc()
		s.writeError(w, apperrors.NewModelNotReadyError())
		return
	}

	start := time.Now()
	ctx := r.Context()

	// 1) Try the rule table first.
	sqlText, ruleName, matched := rules.Match(req.Question)
	method := rules.MethodRuleBased

	if matched {
		log.Info("rule matched", map[string]interface{}{
			"question": req.Question,
			"rule":     ruleName,
			"sql":      sqlText,
		})
	} else {
		// 2) Fall back to model generation.
		method = rules.MethodModelGenerated

		schemaText, err := s.schema.Read(ctx)
		if err != nil {
			metrics.QuestionsFailed.WithLabelValues(string(apperrors.ErrCodeSchemaReadFailed)).Inc()
			s.writeError(w, apperrors.NewSchemaReadError(err))
			return
		}

		prompt := model.BuildPrompt(req.Question, schemaText)
		if tokens, err := s.model.Tokenize(ctx, prompt); err == nil {
			log.Debug("prompt tokenized", map[string]interface{}{
				"promptTokens": len(tokens),
			})
		}

		generated, err := s.model.Complete(ctx, prompt)
		if err != nil {
			stdErr := apperrors.NewGenerationError(err)
			metrics.QuestionsFailed.WithLabelValues(string(stdErr.Code)).Inc()
			log.Error("generation failed", map[string]interface{}{
				"question": req.Question,
				"error":    err.Error(),
			})
			s.writeError(w, stdErr)
			return
		}

		sqlText = extract.Extract(generated)
		log.Info("model generated sql", map[string]interface{}{
			"question":     req.Question,
			"extractedSql": sqlText,
		})
	}

	// 3) Reject candidates too short to be a statement.
	if len(sqlText) < minSQLLength {
		metrics.QuestionsFailed.WithLabelValues(string(apperrors.ErrCodeNoSQLDerived)).Inc()
		s.writeError(w, apperrors.NewNoSQLDerivedError("candidate SQL too short"))
		return
	}

	// 4) Execute and serialize rows.
	results, err := s.executor.Execute(ctx, sqlText)
	if err != nil {
		metrics.QuestionsFailed.WithLabelValues(string(apperrors.ErrCodeSQLExecutionFailed)).Inc()
		log.Error("sql execution failed", map[string]interface{}{
			"sql":   sqlText,
			"error": err.Error(),
		})
		s.writeError(w, apperrors.NewSQLExecutionError(err, sqlText))
		return
	}

	elapsed := time.Since(start)
	metrics.QuestionsProcessed.WithLabelValues(method).Inc()
	metrics.QuestionDuration.WithLabelValues(method).Observe(elapsed.Seconds())
	if s.obs != nil {
		s.obs.RecordQuestionProcessed(ctx, method)
		s.obs.RecordQuestionDuration(ctx, elapsed, method)
	}

	s.writeJSON(w, http.StatusOK, models.AskResponse{
		Question:     req.Question,
		GeneratedSQL: sqlText,
		Results:      results,
		Method:       method,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:      "ok",
		ModelLoaded: s.model.Ready(),
	})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	schemaText, err := s.schema.Read(r.Context())
	if err != nil {
		s.writeError(w, apperrors.NewSchemaReadError(err))
		return
	}
	s.writeJSON(w, http.StatusOK, models.SchemaResponse{Schema: schemaText})
}
