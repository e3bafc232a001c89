package server

import (
	"github.com/labstack/echo/v4"

	apperrors "github.com/haninggrk/livekenceng-bot-gacor/internal/errors"
)

func (s *Server) handleListAccounts(c echo.Context) error {
	accounts, err := s.app.ListAccounts(c.Request().Context())
	if err != nil {
		return apperrors.FromGateway("failed to list accounts", err)
	}
	return writeJSON(c, 200, accounts)
}

func (s *Server) handleListNiches(c echo.Context) error {
	niches, err := s.app.ListNiches(c.Request().Context())
	if err != nil {
		return apperrors.FromGateway("failed to list niches", err)
	}
	return writeJSON(c, 200, niches)
}

func (s *Server) handleListProductSets(c echo.Context) error {
	sets, err := s.app.ListProductSets(c.Request().Context())
	if err != nil {
		return apperrors.FromGateway("failed to list product sets", err)
	}
	return writeJSON(c, 200, sets)
}

func (s *Server) handleRefreshCatalog(c echo.Context) error {
	if err := s.app.RefreshProductSets(c.Request().Context()); err != nil {
		return apperrors.FromGateway("catalog refresh failed", err)
	}
	return writeJSON(c, 200, map[string]string{"status": "ok"})
}
