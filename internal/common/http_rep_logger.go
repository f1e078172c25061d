package common

import (
	"net/http"
	"net/http/httputil"
	"time"

	"go.uber.org/zap"
)

// DumpTransport logs every outbound request and its response status at
// debug level. Bodies are not dumped since uploads carry file content.
type DumpTransport struct {
	Base   http.RoundTripper
	Logger *zap.SugaredLogger
}

func NewDumpTransport(base http.RoundTripper, logger *zap.SugaredLogger) *DumpTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &DumpTransport{Base: base, Logger: logger}
}

func (t *DumpTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if dump, err := httputil.DumpRequestOut(req, false); err != nil {
		t.Logger.Debugw("failed to dump upstream request", "url", req.URL.String(), "error", err)
	} else {
		t.Logger.Debugw("upstream request", "dump", string(dump))
	}

	start := time.Now()
	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		t.Logger.Debugw("upstream request failed", "url", req.URL.String(), "duration", time.Since(start).String(), "error", err)
		return nil, err
	}
	t.Logger.Debugw("upstream response",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)
	return resp, nil
}
