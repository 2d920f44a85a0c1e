package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordModerationAddsBatchSize(t *testing.T) {
	before := testutil.ToFloat64(moderationDecisions.WithLabelValues("listing", "approved"))
	RecordModeration("listing", "approved", 3)
	RecordModeration("listing", "approved", 0)
	after := testutil.ToFloat64(moderationDecisions.WithLabelValues("listing", "approved"))
	if after-before != 3 {
		t.Fatalf("expected +3, got %v", after-before)
	}
}

func TestRecordNotificationSplitsResults(t *testing.T) {
	okBefore := testutil.ToFloat64(notifications.WithLabelValues("moderation", "ok"))
	errBefore := testutil.ToFloat64(notifications.WithLabelValues("moderation", "error"))

	RecordNotification("moderation", nil)
	RecordNotification("moderation", errors.New("smtp down"))

	if testutil.ToFloat64(notifications.WithLabelValues("moderation", "ok"))-okBefore != 1 {
		t.Fatalf("ok counter not incremented")
	}
	if testutil.ToFloat64(notifications.WithLabelValues("moderation", "error"))-errBefore != 1 {
		t.Fatalf("error counter not incremented")
	}
}

func TestHandlerExposesRegistry(t *testing.T) {
	HTTPStarted()
	HTTPFinished("GET", "/api/v1/jobs", 200, 12*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "classifieds_http_requests_total") {
		t.Fatalf("metrics body missing http counter")
	}
}
