package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/attnrisk/internal/adapters/http/api"
	"github.com/okian/attnrisk/internal/adapters/repository"
	"github.com/okian/attnrisk/internal/domain/audience"
	"github.com/okian/attnrisk/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	jobs      map[string]model.Job
	submitErr error
	submitted []api.Upload
	bodies    []string
	keys      map[string]string
	maxBytes  int64
}

func newMockDeps() *mockDeps {
	return &mockDeps{jobs: map[string]model.Job{}, keys: map[string]string{}, maxBytes: 1 << 20}
}

func (m *mockDeps) Submit(_ context.Context, u api.Upload) (string, bool, error) {
	if m.submitErr != nil {
		return "", false, m.submitErr
	}
	if id, ok := m.keys[u.IdempotencyKey]; ok && u.IdempotencyKey != "" {
		return id, true, nil
	}
	body, _ := io.ReadAll(u.Body)
	m.submitted = append(m.submitted, u)
	m.bodies = append(m.bodies, string(body))
	id := fmt.Sprintf("job-%d", len(m.submitted))
	m.keys[u.IdempotencyKey] = id
	m.jobs[id] = model.Job{ID: id, Status: model.StatusQueued}
	return id, false, nil
}

func (m *mockDeps) Job(_ context.Context, id string) (model.Job, error) {
	j, ok := m.jobs[id]
	if !ok {
		return model.Job{}, repository.ErrNotFound
	}
	return j, nil
}

func (m *mockDeps) Evaluate(_ context.Context, r *model.Result, id string) audience.Fit {
	return audience.NewEvaluator().Evaluate(r, id)
}

func (m *mockDeps) Audiences() []audience.Profile { return audience.Profiles() }

func (m *mockDeps) MaxUploadBytes() int64 { return m.maxBytes }

type mockStats struct{}

func (mockStats) GetStats() map[string]interface{} {
	return map[string]interface{}{"started": true, "jobs": 3}
}

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, mockStats{}).Register(context.Background(), mux)
	return mux
}

func uploadRequest(field, filename, content, key string) *http.Request {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile(field, filename)
	_, _ = fw.Write([]byte(content))
	_ = mw.Close()
	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if key != "" {
		req.Header.Set("Idempotency-Key", key)
	}
	return req
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestUpload(t *testing.T) {
	Convey("Given the API server", t, func() {
		deps := newMockDeps()
		mux := newMux(deps)

		Convey("When a recording is uploaded", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest("file", "talk.mp3", "ID3-audio", ""))

			Convey("Then it is accepted with a job id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(decode(w)["job_id"], ShouldEqual, "job-1")
				So(deps.submitted[0].Filename, ShouldEqual, "talk.mp3")
				So(deps.bodies[0], ShouldEqual, "ID3-audio")
			})
		})

		Convey("When the same idempotency key is reused", func() {
			w1 := httptest.NewRecorder()
			mux.ServeHTTP(w1, uploadRequest("file", "a.mp3", "x", "k1"))
			w2 := httptest.NewRecorder()
			mux.ServeHTTP(w2, uploadRequest("file", "a.mp3", "x", "k1"))

			Convey("Then the original job is returned", func() {
				So(w2.Code, ShouldEqual, http.StatusAccepted)
				body := decode(w2)
				So(body["job_id"], ShouldEqual, decode(w1)["job_id"])
				So(body["duplicate"], ShouldEqual, true)
				So(deps.submitted, ShouldHaveLength, 1)
			})
		})

		Convey("When the file field is missing", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest("other", "a.mp3", "x", ""))

			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(w)["code"], ShouldEqual, "bad_request")
		})

		Convey("When the body is not multipart", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader("nope"))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the queue is full", func() {
			deps.submitErr = api.ErrBackpressure
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest("file", "a.mp3", "x", ""))

			So(w.Code, ShouldEqual, http.StatusTooManyRequests)
			So(w.Header().Get("Retry-After"), ShouldNotBeEmpty)
			So(decode(w)["code"], ShouldEqual, "backpressure")
		})

		Convey("When the upload exceeds the size cap", func() {
			deps.maxBytes = 16
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest("file", "a.mp3", strings.Repeat("x", 2<<20), ""))

			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When the upload is empty", func() {
			deps.submitErr = fmt.Errorf("save: %w", api.ErrEmptyUpload)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, uploadRequest("file", "a.mp3", "", ""))

			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the method is not POST", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/upload", http.NoBody))

			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestStatusAndResult(t *testing.T) {
	Convey("Given jobs in every state", t, func() {
		deps := newMockDeps()
		deps.jobs["q"] = model.Job{ID: "q", Status: model.StatusQueued}
		deps.jobs["p"] = model.Job{ID: "p", Status: model.StatusProcessing, Progress: 60}
		deps.jobs["f"] = model.Job{ID: "f", Status: model.StatusFailed, Error: "audio conversion failed: bad header"}
		deps.jobs["d"] = model.Job{ID: "d", Status: model.StatusDone, Progress: 100, Result: &model.Result{
			Duration:   60,
			Summary:    model.Summary{DropRisk: "72%", OverallSpeechRate: 150, FillerWordCount: 2, ReadingEase: 65},
			Transcript: "I led the migration. It shipped on time.",
		}}
		mux := newMux(deps)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		Convey("Status reports progress", func() {
			w := get("/api/status/p")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["status"], ShouldEqual, "processing")
			So(body["progress"], ShouldEqual, 60.0)
			_, hasErr := body["error"]
			So(hasErr, ShouldBeFalse)
		})

		Convey("Status of a failed job carries the error", func() {
			body := decode(get("/api/status/f"))
			So(body["status"], ShouldEqual, "failed")
			So(body["error"], ShouldEqual, "audio conversion failed: bad header")
		})

		Convey("Unknown jobs are 404", func() {
			So(get("/api/status/nope").Code, ShouldEqual, http.StatusNotFound)
			So(get("/api/result/nope").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Results of unfinished jobs are 409", func() {
			w := get("/api/result/q")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(decode(w)["error"], ShouldEqual, "analysis not complete")
			So(get("/api/result/p").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("Results of failed jobs carry the error", func() {
			w := get("/api/result/f")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["status"], ShouldEqual, "failed")
		})

		Convey("Finished jobs return the full result", func() {
			w := get("/api/result/d")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["summary"].(map[string]any)["drop_risk"], ShouldEqual, "72%")
		})

		Convey("An audience query returns the fit instead", func() {
			w := get("/api/result/d?audience=Interviews")
			So(w.Code, ShouldEqual, http.StatusOK)
			body := decode(w)
			So(body["audience"], ShouldEqual, "interviews")
			So(body["fit_score"], ShouldNotBeNil)
			So(body["structural_insights"], ShouldNotBeNil)
		})
	})
}

func TestCatalogAndOps(t *testing.T) {
	Convey("Given the API server", t, func() {
		mux := newMux(newMockDeps())

		Convey("Audiences lists every profile", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/audiences", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			var out []map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
			So(len(out), ShouldEqual, len(audience.Profiles()))
		})

		Convey("Stats come from the provider", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decode(w)["jobs"], ShouldEqual, 3.0)
		})

		Convey("Healthz serves Prometheus metrics", func() {
			// One request first so the HTTP counters have a sample.
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/stats", http.NoBody))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "attnrisk_http_requests_total")
		})
	})
}
