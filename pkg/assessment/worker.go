package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/riskwatch/platform/pkg/common/kafka"
	"github.com/riskwatch/platform/pkg/common/logger"
	"github.com/riskwatch/platform/pkg/common/models"
)

// RequestFromEvent decodes the Request carried by an assessment.requested event.
func RequestFromEvent(event models.Event) (Request, error) {
	var req Request
	if event.Type != EventRequested {
		return req, fmt.Errorf("unexpected event type %q", event.Type)
	}
	raw, err := json.Marshal(event.Data)
	if err != nil {
		return req, err
	}
	if err := json.Unmarshal(raw, &req); err != nil {
		return req, fmt.Errorf("decoding assessment request: %w", err)
	}
	if req.RequestedBy == "" {
		req.RequestedBy = event.Source
	}
	return req, nil
}

// HandleEvent runs one requested assessment. Failed runs are already recorded
// and published, so only a cancelled context leaves the event for redelivery.
func (s *Service) HandleEvent(ctx context.Context, event models.Event) error {
	req, err := RequestFromEvent(event)
	if err != nil {
		return kafka.Permanent(err)
	}

	logger.Log.WithFields(map[string]interface{}{
		"event_id":  event.ID,
		"limit":     req.Limit,
		"max_pages": req.MaxPages,
		"submit":    req.Submit,
	}).Info("processing assessment request")

	if _, err := s.Run(ctx, req); err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return err
		}
		return kafka.Permanent(err)
	}
	return nil
}
