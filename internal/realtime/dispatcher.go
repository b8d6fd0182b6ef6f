package realtime

import (
	"strings"

	"go.uber.org/zap"

	"github.com/markpoint/backend/internal/domain"
)

// Dispatcher fans mark mutation events out to marks-channel sessions whose
// stored viewport contains the mark. It implements domain.MarkEventPublisher
// and is strictly fire-and-forget: the triggering write never waits on it
// and never sees its errors.
type Dispatcher struct {
	hub     *Hub
	baseURL string
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher. baseURL resolves relative photo
// references when the event carries no request context.
func NewDispatcher(hub *Hub, baseURL string, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		hub:     hub,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// PublishMarkEvent schedules the fan-out and returns immediately.
func (d *Dispatcher) PublishMarkEvent(event domain.MarkEvent) {
	go d.dispatch(event)
}

func (d *Dispatcher) dispatch(event domain.MarkEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("mark dispatch panicked", zap.Any("panic", r))
		}
	}()

	if event.Mark == nil {
		return
	}

	sessions := d.hub.Sessions(ChannelMarks)
	if len(sessions) == 0 {
		return
	}

	// Serialize once per event, not once per recipient.
	message, err := Marshal("marks_"+string(event.Action), d.resolvePhotos(event))
	if err != nil {
		d.logger.Error("failed to marshal mark event",
			zap.String("action", string(event.Action)),
			zap.Error(err),
		)
		return
	}

	delivered := 0
	for _, sessionID := range sessions {
		// Sessions that never sent a viewport don't get pushes.
		filter := d.hub.Filter(sessionID)
		if filter == nil {
			continue
		}

		// Cheap geohash stage first, exact distance only for survivors;
		// both live inside Contains.
		if !filter.Contains(event.Mark) {
			continue
		}

		// One dead or slow session must not stop the rest.
		if !d.hub.Send(ChannelMarks, sessionID, message) {
			d.logger.Warn("failed to deliver mark event",
				zap.String("session_id", sessionID.String()),
				zap.String("action", string(event.Action)),
			)
			continue
		}
		delivered++
	}

	d.logger.Debug("mark event dispatched",
		zap.String("action", string(event.Action)),
		zap.String("mark_id", event.Mark.ID.String()),
		zap.Int("candidates", len(sessions)),
		zap.Int("delivered", delivered),
	)
}

// resolvePhotos returns the mark with photo references resolved to public
// URLs, preferring the event's request base URL over the configured one.
// The mark is copied; the stored entity keeps raw references.
func (d *Dispatcher) resolvePhotos(event domain.MarkEvent) *domain.Mark {
	base := strings.TrimRight(event.BaseURL, "/")
	if base == "" {
		base = d.baseURL
	}
	if base == "" || len(event.Mark.Photos) == 0 {
		return event.Mark
	}

	mark := *event.Mark
	photos := make([]string, len(mark.Photos))
	for i, p := range mark.Photos {
		if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
			photos[i] = p
			continue
		}
		photos[i] = base + "/" + strings.TrimLeft(p, "/")
	}
	mark.Photos = photos
	return &mark
}
