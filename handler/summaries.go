package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"ewintr.nl/ytsum/auth"
	"ewintr.nl/ytsum/model"
)

type JobManager interface {
	Submit(ctx context.Context, owner, url, language string, length int) (*model.SummaryJob, error)
	Job(ctx context.Context, id uuid.UUID, owner string) (*model.SummaryJob, error)
	Jobs(ctx context.Context, owner string) ([]*model.SummaryJob, error)
}

type SummariesAPI struct {
	manager       JobManager
	authenticator auth.Authenticator
	logger        *slog.Logger
}

func NewSummariesAPI(manager JobManager, authenticator auth.Authenticator, logger *slog.Logger) *SummariesAPI {
	return &SummariesAPI{
		manager:       manager,
		authenticator: authenticator,
		logger:        logger,
	}
}

func (s *SummariesAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	owner, ok := s.authenticator.Authenticate(r)
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", model.NewError(model.KindUnauthorized, "missing or unknown bearer token"))
		return
	}

	jobID, _ := ShiftPath(r.URL.Path)
	switch {
	case r.Method == http.MethodPost && jobID == "":
		s.Create(w, r, owner)
	case r.Method == http.MethodGet && jobID == "":
		s.List(w, r, owner)
	case r.Method == http.MethodGet:
		s.Get(w, r, owner, jobID)
	default:
		Error(w, http.StatusNotFound, "not found", fmt.Errorf("method %s with subpath %q was not registered in the summaries api", r.Method, jobID))
	}
}

func (s *SummariesAPI) Create(w http.ResponseWriter, r *http.Request, owner string) {
	request := struct {
		URL      string `json:"url"`
		Language string `json:"language"`
		Length   int    `json:"length"`
	}{
		Language: "en",
		Length:   300,
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Error(w, http.StatusBadRequest, "bad request", model.NewErrorf(model.KindValidationFailed, "could not decode body: %v", err))
		return
	}
	if request.URL == "" {
		Error(w, http.StatusBadRequest, "bad request", model.NewError(model.KindValidationFailed, "url is required"))
		return
	}

	job, err := s.manager.Submit(r.Context(), owner, request.URL, request.Language, request.Length)
	if err != nil {
		s.returnErr(w, "could not submit job", err)
		return
	}

	JSON(w, http.StatusAccepted, job)
}

func (s *SummariesAPI) List(w http.ResponseWriter, r *http.Request, owner string) {
	list, err := s.manager.Jobs(r.Context(), owner)
	if err != nil {
		s.returnErr(w, "could not list jobs", err)
		return
	}

	JSON(w, http.StatusOK, list)
}

func (s *SummariesAPI) Get(w http.ResponseWriter, r *http.Request, owner, jobID string) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		Error(w, http.StatusNotFound, "not found", model.NewErrorf(model.KindNotFound, "no job with id %s", jobID))
		return
	}

	job, err := s.manager.Job(r.Context(), id, owner)
	if err != nil {
		s.returnErr(w, "could not fetch job", err)
		return
	}

	JSON(w, http.StatusOK, job)
}

func (s *SummariesAPI) returnErr(w http.ResponseWriter, message string, err error) {
	s.logger.Error(message, slog.String("err", err.Error()))
	Error(w, errStatus(err), message, err)
}
