package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"meeting_sync/internal/domain"
)

func (s *Server) sync(c *fiber.Ctx) error {
	id, err := meetingID(c)
	if err != nil {
		return err
	}
	syncType, err := domain.ParseSyncType(c.Query("type"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if c.QueryBool("async") {
		if s.deps.Queue == nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "task queue not configured")
		}
		task := &domain.SyncTask{
			MeetingID:   id,
			SyncType:    syncType,
			RequestedAt: time.Now().UTC(),
			Origin:      "api",
		}
		if err := s.deps.Queue.EnqueueSync(c.UserContext(), task); err != nil {
			return err
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"queued":     true,
			"meeting_id": id,
			"sync_type":  syncType,
		})
	}

	result, err := s.deps.Syncer.SyncMeeting(c.UserContext(), id, syncType)
	if errors.Is(err, domain.ErrSyncInProgress) && result != nil {
		return c.Status(fiber.StatusConflict).JSON(result)
	}
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		s.logger.Error("sync finished with error", "meeting_id", id, "error", err)
	}
	return c.JSON(result)
}

func (s *Server) meetingHealth(c *fiber.Ctx) error {
	id, err := meetingID(c)
	if err != nil {
		return err
	}
	report, err := s.deps.Health.CheckMeeting(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(report)
}

func (s *Server) systemHealth(c *fiber.Ctx) error {
	sys, err := s.deps.Health.CheckSystem(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(sys)
}

func (s *Server) autoRecover(c *fiber.Ctx) error {
	id, err := meetingID(c)
	if err != nil {
		return err
	}
	report, err := s.deps.Recovery.AutoRecover(c.UserContext(), id)
	if err != nil && report == nil {
		return err
	}
	if err != nil {
		s.logger.Warn("recovery incomplete", "meeting_id", id, "error", err)
	}
	return c.JSON(report)
}

func (s *Server) deleteMeeting(c *fiber.Ctx) error {
	id, err := meetingID(c)
	if err != nil {
		return err
	}
	if err := s.deps.Syncer.DeleteMeeting(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
