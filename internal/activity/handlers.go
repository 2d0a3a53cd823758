package activity

import (
	"bytes"
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the hike history API. Every route needs the caller's
// user_id; records owned by someone else answer 404.
func RegisterRoutes(r fiber.Router, store Store, authMiddleware fiber.Handler) {
	r.Get("/", authMiddleware, func(c *fiber.Ctx) error {
		ownerID, err := callerID(c)
		if err != nil {
			return err
		}
		records, err := store.List(c.Context(), ownerID)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		if records == nil {
			records = []Record{}
		}
		return c.JSON(records)
	})

	r.Get("/:id", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := ownedRecord(c, store)
		if err != nil {
			return err
		}
		return c.JSON(rec)
	})

	r.Delete("/:id", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := ownedRecord(c, store)
		if err != nil {
			return err
		}
		if err := store.Delete(c.Context(), rec.ID); err != nil {
			return storeHTTPError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/:id/gpx", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := ownedRecord(c, store)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := WriteGPX(&buf, rec); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/gpx+xml")
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+rec.ID+`.gpx"`)
		return c.Send(buf.Bytes())
	})

	r.Get("/:id/geojson", authMiddleware, func(c *fiber.Ctx) error {
		rec, err := ownedRecord(c, store)
		if err != nil {
			return err
		}
		payload, err := RouteFeature(rec).MarshalJSON()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(payload)
	})
}

func callerID(c *fiber.Ctx) (string, error) {
	ownerID, _ := c.Locals("user_id").(string)
	if ownerID == "" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "user_id missing")
	}
	return ownerID, nil
}

// ownedRecord loads the :id record and hides it unless the caller owns it.
func ownedRecord(c *fiber.Ctx, store Store) (Record, error) {
	ownerID, err := callerID(c)
	if err != nil {
		return Record{}, err
	}
	rec, err := loadOwned(c.Context(), store, c.Params("id"), ownerID)
	if err != nil {
		return Record{}, storeHTTPError(err)
	}
	return rec, nil
}

func loadOwned(ctx context.Context, store Store, id, ownerID string) (Record, error) {
	rec, err := store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	if rec.OwnerID != ownerID {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func storeHTTPError(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "activity not found")
	}
	return fiber.NewError(fiber.StatusBadGateway, err.Error())
}
