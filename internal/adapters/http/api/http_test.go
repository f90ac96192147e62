package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/radial/internal/adapters/http/api"
	"github.com/okian/radial/internal/adapters/mq/queue"
	"github.com/okian/radial/internal/adapters/repository"
	service "github.com/okian/radial/internal/app"
	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/domain/rounds"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDeps struct {
	runErr    error
	submitErr error
	runs      map[string]repository.Run
	lastRows  int
	lastParam service.Params
	limit     int
}

func newMockDeps() *mockDeps {
	return &mockDeps{runs: map[string]repository.Run{
		"done-1": {
			ID:     "done-1",
			Status: repository.StatusDone,
			Result: &rounds.Result{Assignments: []model.Assignment{
				{ParticipantID: "p1", HomogeneousLabel: "A", HeterogeneousLabel: "1"},
			}},
		},
		"pending-1": {ID: "pending-1", Status: repository.StatusPending},
	}}
}

func (m *mockDeps) Run(_ context.Context, mat *preference.Matrix, p service.Params) (repository.Run, error) {
	m.lastRows, m.lastParam = mat.Rows(), p
	if m.runErr != nil {
		return repository.Run{}, m.runErr
	}
	return repository.Run{ID: "new-run", Status: repository.StatusDone, Participants: mat.Rows()}, nil
}

func (m *mockDeps) Submit(_ context.Context, mat *preference.Matrix, p service.Params) (repository.Run, error) {
	m.lastRows, m.lastParam = mat.Rows(), p
	if m.submitErr != nil {
		return repository.Run{}, m.submitErr
	}
	return repository.Run{ID: "queued-run", Status: repository.StatusPending}, nil
}

func (m *mockDeps) Get(_ context.Context, id string) (repository.Run, error) {
	run, ok := m.runs[id]
	if !ok {
		return repository.Run{}, repository.ErrNotFound
	}
	return run, nil
}

func (m *mockDeps) Latest(_ context.Context, n int) ([]repository.Run, error) {
	m.limit = n
	return []repository.Run{m.runs["done-1"]}, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

const validBody = `{
  "projects": ["park", "pool"],
  "participants": [
    {"id": "p1", "votes": ["yes", "no"]},
    {"id": "p2", "votes": ["no", "abstain"]},
    {"id": "p3", "votes": ["approve", "reject"]}
  ],
  "homogeneous_groups": 2,
  "heterogeneous_groups": 1,
  "seed": 5
}`

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := newMockDeps()
		server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, 50)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("Then health endpoint should be accessible", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats endpoint should be accessible", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("Then stats should reject other methods", func() {
			w := serve(mux, http.MethodPost, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGroupings_Create(t *testing.T) {
	Convey("Given a groupings endpoint", t, func() {
		deps := newMockDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, 50).Register(context.Background(), mux)

		Convey("When posting a valid request", func() {
			w := serve(mux, http.MethodPost, "/groupings", validBody)

			Convey("Then the run should be created synchronously", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(w.Header().Get("Location"), ShouldEqual, "/groupings/new-run")
				So(w.Body.String(), ShouldContainSubstring, `"id":"new-run"`)
				So(deps.lastRows, ShouldEqual, 3)
				So(*deps.lastParam.HomogeneousGroups, ShouldEqual, 2)
				So(*deps.lastParam.Seed, ShouldEqual, int64(5))
			})
		})

		Convey("When group counts are omitted or zero", func() {
			omitted := strings.Replace(validBody, `"homogeneous_groups": 2,`, "", 1)
			w := serve(mux, http.MethodPost, "/groupings", omitted)
			So(w.Code, ShouldEqual, http.StatusCreated)
			So(deps.lastParam.HomogeneousGroups, ShouldBeNil)

			zero := strings.Replace(validBody, `"homogeneous_groups": 2,`, `"homogeneous_groups": 0,`, 1)
			w = serve(mux, http.MethodPost, "/groupings", zero)

			Convey("Then an explicit zero should reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusCreated)
				So(deps.lastParam.HomogeneousGroups, ShouldNotBeNil)
				So(*deps.lastParam.HomogeneousGroups, ShouldEqual, 0)
			})
		})

		Convey("When posting with async=true", func() {
			w := serve(mux, http.MethodPost, "/groupings?async=true", validBody)

			Convey("Then the run should be accepted for later", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(w.Header().Get("Location"), ShouldEqual, "/groupings/queued-run")
				So(w.Body.String(), ShouldContainSubstring, `"status":"pending"`)
			})
		})

		Convey("When the queue is full", func() {
			deps.submitErr = queue.ErrFull
			w := serve(mux, http.MethodPost, "/groupings?async=1", validBody)
			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When the service has not started its workers", func() {
			deps.submitErr = service.ErrNotStarted
			w := serve(mux, http.MethodPost, "/groupings?async=true", validBody)
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, http.MethodPost, "/groupings", "{")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a vote is not recognized", func() {
			body := strings.Replace(validBody, `"abstain"`, `"maybe"`, 1)
			w := serve(mux, http.MethodPost, "/groupings", body)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When projects are missing", func() {
			w := serve(mux, http.MethodPost, "/groupings", `{"participants":[{"id":"a","votes":[]}]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["message"], ShouldContainSubstring, "missing projects")
		})

		Convey("When a participant has too few votes", func() {
			w := serve(mux, http.MethodPost, "/groupings", `{"projects":["a","b"],"participants":[{"id":"x","votes":["yes"]}]}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "invalid_input")
		})

		Convey("When the grouping is infeasible", func() {
			deps.runErr = &grouperr.InfeasibleGroupingError{Requested: 9, MaxFeasible: 1, Attending: 3, MinSize: 2}
			w := serve(mux, http.MethodPost, "/groupings", validBody)

			Convey("Then the response should carry the feasible maximum", func() {
				So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
				body := decodeError(w)
				So(body["code"], ShouldEqual, "infeasible_grouping")
				So(body["max_feasible"], ShouldEqual, float64(1))
			})
		})

		Convey("When the votes are degenerate", func() {
			deps.runErr = &grouperr.DegenerateInputError{Participants: 3, Projects: 2}
			w := serve(mux, http.MethodPost, "/groupings", validBody)
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decodeError(w)["code"], ShouldEqual, "degenerate_input")
		})

		Convey("When an unexpected error occurs", func() {
			deps.runErr = errors.New("disk on fire")
			w := serve(mux, http.MethodPost, "/groupings", validBody)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When using an unsupported method", func() {
			w := serve(mux, http.MethodPut, "/groupings", validBody)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestGroupings_Read(t *testing.T) {
	Convey("Given stored runs", t, func() {
		deps := newMockDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, &mockStatsProvider{}, 50).Register(context.Background(), mux)

		Convey("When listing with a valid limit", func() {
			w := serve(mux, http.MethodGet, "/groupings?limit=5", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.limit, ShouldEqual, 5)
		})

		Convey("When listing without a limit", func() {
			w := serve(mux, http.MethodGet, "/groupings", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(deps.limit, ShouldEqual, 20)
		})

		Convey("When listing with a bad or excessive limit", func() {
			So(serve(mux, http.MethodGet, "/groupings?limit=0", "").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, http.MethodGet, "/groupings?limit=x", "").Code, ShouldEqual, http.StatusBadRequest)
			w := serve(mux, http.MethodGet, "/groupings?limit=51", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeError(w)["code"], ShouldEqual, "limit_exceeded")
		})

		Convey("When fetching a known run", func() {
			w := serve(mux, http.MethodGet, "/groupings/done-1", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"status":"done"`)
		})

		Convey("When fetching an unknown run", func() {
			w := serve(mux, http.MethodGet, "/groupings/nope", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When fetching assignments as CSV", func() {
			w := serve(mux, http.MethodGet, "/groupings/done-1/assignments.csv", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
			So(lines, ShouldHaveLength, 2)
			So(lines[0], ShouldEqual, "pid,angle,radius,pc1,pc2,sector,homogeneous,heterogeneous")
			So(lines[1], ShouldStartWith, "p1,")
		})

		Convey("When fetching assignments of a pending run", func() {
			w := serve(mux, http.MethodGet, "/groupings/pending-1/assignments.csv", "")
			So(w.Code, ShouldEqual, http.StatusConflict)
		})

		Convey("When the sub-path is unknown", func() {
			w := serve(mux, http.MethodGet, "/groupings/done-1/other", "")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When deleting a run", func() {
			w := serve(mux, http.MethodDelete, "/groupings/done-1", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}
