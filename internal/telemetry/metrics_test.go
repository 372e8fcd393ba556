package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moffa90/go-aiecdo/cdo"
	"github.com/moffa90/go-aiecdo/ioport"
	"github.com/moffa90/go-aiecdo/loader"
)

func TestHandlerServesLoaderMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := loader.NewMetrics(reg)

	b := cdo.NewBuilder()
	b.Write(0x10, 1)
	if err := loader.NewDirectEngine(ioport.NewRecorder(), loader.WithMetrics(m)).Load(b.Bytes()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	rr := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`aiecdo_loader_commands_total{opcode="write"} 1`,
		`aiecdo_loader_loads_total{engine="direct",result="ok"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}
