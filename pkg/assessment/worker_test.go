package assessment

import (
	"context"
	"errors"
	"testing"

	"github.com/riskwatch/platform/pkg/common/kafka"
	"github.com/riskwatch/platform/pkg/common/models"
)

func TestRequestFromEvent(t *testing.T) {
	event := kafka.NewEvent(EventRequested, "scheduler", map[string]interface{}{
		"limit":    float64(20),
		"maxPages": float64(3),
		"submit":   true,
	})

	req, err := RequestFromEvent(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := Request{Limit: 20, MaxPages: 3, Submit: true, RequestedBy: "scheduler"}
	if req != want {
		t.Errorf("got %+v, want %+v", req, want)
	}
}

func TestRequestFromEventWrongType(t *testing.T) {
	if _, err := RequestFromEvent(kafka.NewEvent(EventCompleted, "x", nil)); err == nil {
		t.Fatal("expected error for non-request event")
	}
}

func TestHandleEventRunsAssessment(t *testing.T) {
	src := &fakeSource{result: &models.FetchResult{
		Records:      []models.PatientRecord{{"patient_id": "DEMO001", "blood_pressure": "120/80", "temperature": 98.6, "age": 45}},
		PagesFetched: 1,
		TotalPages:   1,
		Limit:        5,
	}}
	svc := NewService(src)

	if err := svc.HandleEvent(context.Background(), kafka.NewEvent(EventRequested, "test", map[string]interface{}{"limit": float64(7)})); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.limit != 7 {
		t.Errorf("expected limit 7, got %d", src.limit)
	}
}

func TestHandleEventFailuresArePermanent(t *testing.T) {
	svc := NewService(&fakeSource{fetchErr: errors.New("remote down")})

	err := svc.HandleEvent(context.Background(), kafka.NewEvent(EventRequested, "test", nil))
	if !kafka.IsPermanent(err) {
		t.Errorf("expected permanent error, got %v", err)
	}

	err = svc.HandleEvent(context.Background(), models.Event{Type: "bogus"})
	if !kafka.IsPermanent(err) {
		t.Errorf("expected permanent error for bad event, got %v", err)
	}
}

func TestHandleEventCancelledIsRedelivered(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(&fakeSource{fetchErr: context.Canceled})

	err := svc.HandleEvent(ctx, kafka.NewEvent(EventRequested, "test", nil))
	if err == nil || kafka.IsPermanent(err) {
		t.Errorf("expected retriable error, got %v", err)
	}
}
