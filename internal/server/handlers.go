package server

import (
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/astrostats/astrowheel/pkg/buildinfo"
	"github.com/astrostats/astrowheel/pkg/chart"
	"github.com/astrostats/astrowheel/pkg/errors"
	"github.com/astrostats/astrowheel/pkg/pipeline"
	"github.com/astrostats/astrowheel/pkg/render"
)

// Response headers describing how a result was produced.
const (
	CacheHeader     = "X-Cache"
	ChartHashHeader = "X-Chart-Hash"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	s.serve(w, r, string(render.FormatJSON))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = pipeline.DefaultFormat
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	s.serve(w, r, format)
}

// serve runs the pipeline for one format and writes the artifact.
func (s *Server) serve(w http.ResponseWriter, r *http.Request, format string) {
	c, err := s.readChart(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), c, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	cacheState := "MISS"
	if res.CacheInfo.RenderHit {
		cacheState = "HIT"
	}
	w.Header().Set(CacheHeader, cacheState)
	w.Header().Set(ChartHashHeader, res.ChartHash)
	w.Header().Set("Content-Type", render.Format(format).ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// readChart decodes the request body as a chart document. The body is JSON
// unless the Content-Type names TOML.
func (s *Server) readChart(w http.ResponseWriter, r *http.Request) (*chart.Chart, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read request body")
	}

	format := chart.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "content type %q", ct)
		}
		switch mediaType {
		case "application/toml", "text/toml":
			format = chart.FormatTOML
		}
	}
	return pipeline.Parse(data, format)
}

// options merges query parameters over the configured defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.cfg.Defaults.Clone()
	q := r.URL.Query()

	floats := []struct {
		name string
		dst  *float64
	}{
		{"gap", &opts.Gap},
		{"min_distance", &opts.MinDistance},
		{"size", &opts.Size},
	}
	for _, f := range floats {
		if v := q.Get(f.name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", f.name, v)
			}
			*f.dst = n
		}
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"leaders", &opts.Leaders},
		{"detailed", &opts.Detailed},
		{"refresh", &opts.Refresh},
	}
	for _, b := range bools {
		if v := q.Get(b.name); v != "" {
			ok, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", b.name, v)
			}
			*b.dst = ok
		}
	}

	if q.Has("title") {
		opts.Title = q.Get("title")
	}
	return opts, nil
}
