package live

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/activity"
	"github.com/KboyVillahermosa/HikeWise/internal/tracking"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

var validate = validator.New()

// RegisterRoutes mounts the tracking session API. Write routes and the device
// feed sit behind authMiddleware; other users' sessions answer 404.
func RegisterRoutes(r fiber.Router, mgr *Manager, authMiddleware fiber.Handler) {
	r.Post("/sessions", authMiddleware, func(c *fiber.Ctx) error {
		var req StartRequest
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		ownerID, _ := c.Locals("user_id").(string)
		deviceID := req.DeviceID
		if deviceID == "" {
			deviceID = ownerID
		}
		in := StartInput{
			DeviceID: deviceID,
			Meta:     activity.Meta{OwnerID: ownerID, TrailID: req.TrailID, TrailName: req.TrailName},
		}
		if req.Initial != nil {
			sample := req.Initial.Sample(time.Now())
			in.Initial = &sample
		}

		id, metrics, err := mgr.Start(in)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(StartResponse{SessionID: id, Metrics: metrics})
	})

	r.Post("/sessions/:id/samples", authMiddleware, func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := authorize(c, mgr, id); err != nil {
			return err
		}
		var req SamplePayload
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		outcome, metrics, err := mgr.Ingest(id, req.Sample(time.Now()))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(IngestResponse{Outcome: outcome, Metrics: metrics})
	})

	r.Get("/sessions/:id/metrics", func(c *fiber.Ctx) error {
		metrics, err := mgr.Metrics(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(metrics)
	})

	r.Get("/sessions/:id/route", func(c *fiber.Ctx) error {
		points, err := mgr.Route(c.Params("id"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(RouteResponse{SessionID: c.Params("id"), Points: points})
	})

	r.Post("/sessions/:id/stop", authMiddleware, func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := authorize(c, mgr, id); err != nil {
			return err
		}
		rec, err := mgr.Stop(id)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(StopResponse{Activity: rec, Pending: true})
	})

	r.Post("/sessions/:id/save", authMiddleware, func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := authorize(c, mgr, id); err != nil {
			return err
		}
		rec, err := mgr.Save(c.Context(), id)
		if err != nil {
			return httpError(err)
		}
		return c.Status(fiber.StatusCreated).JSON(rec)
	})

	r.Post("/sessions/:id/discard", authMiddleware, func(c *fiber.Ctx) error {
		id := c.Params("id")
		if err := authorize(c, mgr, id); err != nil {
			return err
		}
		if err := mgr.Discard(id); err != nil {
			return httpError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/sessions/:id/feed", authMiddleware, func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		if err := authorize(c, mgr, c.Params("id")); err != nil {
			return err
		}
		return c.Next()
	}, websocket.New(func(c *websocket.Conn) {
		feed(c, mgr, c.Params("id"))
	}))
}

// feed reads samples from a device socket and answers each applied sample
// with the refreshed metrics.
func feed(c *websocket.Conn, mgr *Manager, id string) {
	samples := make(chan tracking.Sample, 16)
	done := make(chan struct{})

	go func() {
		defer close(done)
		err := mgr.Follow(context.Background(), id, samples, func(m tracking.Metrics) {
			if err := c.WriteJSON(m); err != nil {
				mgr.log.Debug("feed write failed", "session_id", id, "error", err)
			}
		})
		if err != nil {
			mgr.log.Warn("feed stopped", "session_id", id, "error", err)
		}
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}
		var p SamplePayload
		if err := json.Unmarshal(msg, &p); err != nil {
			mgr.log.Warn("feed message not decoded", "session_id", id, "error", err)
			continue
		}
		if err := validate.Struct(p); err != nil {
			mgr.log.Warn("feed sample invalid", "session_id", id, "error", err)
			continue
		}
		select {
		case samples <- p.Sample(time.Now()):
		case <-done:
			return
		}
	}
	close(samples)
	<-done
}

// authorize hides sessions owned by someone else behind a 404.
func authorize(c *fiber.Ctx, mgr *Manager, id string) error {
	userID, _ := c.Locals("user_id").(string)
	if err := mgr.Authorize(userID, id); err != nil {
		return httpError(err)
	}
	return nil
}

// ViewerGuard checks that the caller may watch a session's live metrics.
func ViewerGuard(mgr *Manager) func(c *fiber.Ctx, sessionID string) error {
	return func(c *fiber.Ctx, sessionID string) error {
		return authorize(c, mgr, sessionID)
	}
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrDeviceBusy),
		errors.Is(err, ErrNothingPending),
		errors.Is(err, ErrSaveInProgress),
		errors.Is(err, tracking.ErrNotTracking),
		errors.Is(err, tracking.ErrAlreadyStarted):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, tracking.ErrPositionUnavailable), errors.Is(err, tracking.ErrLowAccuracy):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, tracking.ErrInvalidSample):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, activity.ErrStore):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
