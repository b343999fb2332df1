package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tracks", "200"))
	RecordAPIRequest("GET", "/api/tracks", 200, 15*time.Millisecond)
	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/api/tracks", "200"))
	if after-before != 1 {
		t.Fatalf("request counter moved by %v", after-before)
	}
}

func TestRecordDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(AssessmentsTotal.WithLabelValues("Mild"))
	RecordAssessment("Mild")
	if got := testutil.ToFloat64(AssessmentsTotal.WithLabelValues("Mild")) - before; got != 1 {
		t.Fatalf("assessment counter moved by %v", got)
	}

	before = testutil.ToFloat64(StorageDeleteFailures)
	RecordStorageDeleteFailure()
	if got := testutil.ToFloat64(StorageDeleteFailures) - before; got != 1 {
		t.Fatalf("storage failure counter moved by %v", got)
	}

	before = testutil.ToFloat64(AuthFailures.WithLabelValues("login"))
	RecordAuthFailure("login")
	if got := testutil.ToFloat64(AuthFailures.WithLabelValues("login")) - before; got != 1 {
		t.Fatalf("auth failure counter moved by %v", got)
	}

	RecordPlaylist("per_subscale", 9)
	if testutil.ToFloat64(RecommendationsTotal.WithLabelValues("per_subscale")) < 1 {
		t.Fatalf("recommendation counter not recorded")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordAssessment("Normal")
	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	if rr.Code != 200 {
		t.Fatalf("status %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "sanctuary_assessments_total") {
		t.Fatalf("metrics output missing assessments counter")
	}
}
