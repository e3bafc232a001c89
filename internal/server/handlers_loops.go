package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/haninggrk/livekenceng-bot-gacor/internal/errors"
)

type startRequest struct {
	NicheID      int `json:"niche_id"`
	DelaySeconds int `json:"delay_seconds"`
}

type stopRequest struct {
	ClearProducts bool `json:"clear_products"`
}

type delayRequest struct {
	DelaySeconds int `json:"delay_seconds"`
}

type switchRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleStart(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return err
	}

	var req startRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	delay := s.config.DefaultDelay
	if req.DelaySeconds > 0 {
		delay = time.Duration(req.DelaySeconds) * time.Second
	}

	if err := s.app.StartLoop(c.Request().Context(), accountID, req.NicheID, delay); err != nil {
		return err
	}

	return writeJSON(c, 200, s.app.Status(accountID))
}

func (s *Server) handleStop(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return err
	}

	var req stopRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.StopLoop(c.Request().Context(), accountID, req.ClearProducts); err != nil {
		return err
	}

	return writeJSON(c, 200, s.app.Status(accountID))
}

func (s *Server) handleSetDelay(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return err
	}

	var req delayRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}
	if req.DelaySeconds < 1 {
		return apperrors.ValidationError("delay_seconds must be at least 1").WithField("delay_seconds", req.DelaySeconds)
	}

	s.app.SetDelay(accountID, time.Duration(req.DelaySeconds)*time.Second)
	return writeJSON(c, 200, s.app.Status(accountID))
}

func (s *Server) handleSwitch(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return err
	}

	var req switchRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid request body")
	}

	if err := s.app.SwitchTo(c.Request().Context(), accountID, req.Index); err != nil {
		return err
	}

	return writeJSON(c, 200, s.app.Status(accountID))
}

func (s *Server) handleStatus(c echo.Context) error {
	accountID, err := accountParam(c)
	if err != nil {
		return err
	}
	return writeJSON(c, 200, s.app.Status(accountID))
}

func (s *Server) handleStatusAll(c echo.Context) error {
	return writeJSON(c, 200, s.app.StatusAll())
}

func accountParam(c echo.Context) (int, error) {
	raw := c.Param("account")
	accountID, err := strconv.Atoi(raw)
	if err != nil || accountID <= 0 {
		return 0, apperrors.ValidationError("invalid account ID").WithField("account", raw)
	}
	return accountID, nil
}

func writeJSON(c echo.Context, status int, body any) error {
	if err := c.JSON(status, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
