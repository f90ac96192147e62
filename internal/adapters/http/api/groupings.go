package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/radial/internal/adapters/export"
	service "github.com/okian/radial/internal/app"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
)

const (
	defaultListLimit = 20
	maxBodyBytes     = 32 << 20
	assignmentsPath  = "assignments.csv"
)

// groupingRequest is the body of POST /groupings.
type groupingRequest struct {
	Projects              []string           `json:"projects"`
	Participants          []participantVotes `json:"participants"`
	Attendance            []string           `json:"attendance,omitempty"`
	SecondRoundAttendance []string           `json:"second_round_attendance,omitempty"`
	HomogeneousGroups     *int               `json:"homogeneous_groups,omitempty"`
	HeterogeneousGroups   *int               `json:"heterogeneous_groups,omitempty"`
	Seed                  *int64             `json:"seed,omitempty"`
}

type participantVotes struct {
	ID    string       `json:"id"`
	Votes []model.Vote `json:"votes"`
}

func (g *groupingRequest) validate() error {
	switch {
	case len(g.Projects) == 0:
		return wrapKind("validate", ErrBadRequest, errors.New("missing projects"))
	case len(g.Participants) == 0:
		return wrapKind("validate", ErrBadRequest, errors.New("missing participants"))
	}
	return nil
}

func (g *groupingRequest) matrix() (*preference.Matrix, error) {
	rows := make([]model.Participant, len(g.Participants))
	for i, p := range g.Participants {
		rows[i] = model.Participant{ID: strings.TrimSpace(p.ID), Votes: p.Votes}
	}
	return preference.New(g.Projects, rows)
}

func (g *groupingRequest) params() service.Params {
	return service.Params{
		Attendance:            g.Attendance,
		SecondRoundAttendance: g.SecondRoundAttendance,
		HomogeneousGroups:     g.HomogeneousGroups,
		HeterogeneousGroups:   g.HeterogeneousGroups,
		Seed:                  g.Seed,
	}
}

// GroupingsHandler serves grouping runs.
type GroupingsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewGroupingsHandler creates a new groupings handler. maxLimit caps
// GET /groupings?limit=N.
func NewGroupingsHandler(deps Dependencies, maxLimit int) *GroupingsHandler {
	if maxLimit < 1 {
		maxLimit = defaultListLimit
	}
	return &GroupingsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGroupings handles POST /groupings and GET /groupings?limit=N.
func (h *GroupingsHandler) HandleGroupings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *GroupingsHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_grouping"

	var req groupingRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	m, err := req.matrix()
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}

	if async, _ := strconv.ParseBool(r.URL.Query().Get("async")); async {
		run, err := h.deps.Submit(r.Context(), m, req.params())
		if err != nil {
			status, code := statusFor(err)
			writeError(w, status, code, err)
			return
		}
		w.Header().Set("Location", "/groupings/"+run.ID)
		writeJSON(w, http.StatusAccepted, run)
		return
	}

	run, err := h.deps.Run(r.Context(), m, req.params())
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	w.Header().Set("Location", "/groupings/"+run.ID)
	writeJSON(w, http.StatusCreated, run)
}

func (h *GroupingsHandler) list(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_groupings"

	n := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, nil))
			return
		}
		n = v
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", wrapKind(op, ErrBadRequest, nil))
		return
	}
	runs, err := h.deps.Latest(r.Context(), n)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

// HandleGrouping handles GET /groupings/{id} and
// GET /groupings/{id}/assignments.csv.
func (h *GroupingsHandler) HandleGrouping(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_grouping"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/groupings/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" || (rest != "" && rest != assignmentsPath) {
		writeError(w, http.StatusBadRequest, "bad_request", wrapKind(op, ErrBadRequest, nil))
		return
	}

	run, err := h.deps.Get(r.Context(), id)
	if err != nil {
		status, code := statusFor(err)
		writeError(w, status, code, err)
		return
	}
	if rest == "" {
		writeJSON(w, http.StatusOK, run)
		return
	}

	if run.Result == nil {
		writeError(w, http.StatusConflict, "not_ready", wrapKind(op, ErrBadRequest, errors.New("run is "+run.Status)))
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+run.ID+`.csv"`)
	w.WriteHeader(http.StatusOK)
	_ = export.WriteAssignments(w, run.Result.Assignments)
}
