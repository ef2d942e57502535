package service

import (
	"meterai/internal/stamp/models"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
)

// TestGetToken covers the status-dependent read gate.
func (s *ServiceSuite) TestGetToken() {
	s.Run("available tokens are readable by anyone", func() {
		s.reset()
		s.mint(1)

		t, err := s.service.GetToken(s.ctx, bob, 0)
		s.Require().NoError(err)
		s.Equal(models.StatusAvailable, t.Status)
	})

	s.Run("paid tokens are still readable by anyone", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		t, err := s.service.GetToken(s.ctx, bob, 0)
		s.Require().NoError(err)
		s.Equal(models.StatusPaid, t.Status)
	})

	s.Run("bound tokens are restricted to owner and grantees", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)
		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", "secret"))

		_, err := s.service.GetToken(s.ctx, bob, 0)
		s.requireCode(err, dErrors.CodeAccessDenied)

		t, err := s.service.GetToken(s.ctx, alice, 0)
		s.Require().NoError(err)
		s.Equal("doc-123", t.Document)
	})

	s.Run("unknown token is not found", func() {
		s.reset()
		_, err := s.service.GetToken(s.ctx, alice, 4)
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

// TestGetPassword covers the always-on password gate.
func (s *ServiceSuite) TestGetPassword() {
	s.Run("gated even before binding", func() {
		s.reset()
		s.mint(1)

		_, err := s.service.GetPassword(s.ctx, alice, 0)
		s.requireCode(err, dErrors.CodeAccessDenied)

		password, err := s.service.GetPassword(s.ctx, authority, 0)
		s.Require().NoError(err)
		s.Empty(password)
	})

	s.Run("owner reads the password after binding", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)
		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", "secret"))

		password, err := s.service.GetPassword(s.ctx, alice, 0)
		s.Require().NoError(err)
		s.Equal("secret", password)

		_, err = s.service.GetPassword(s.ctx, bob, 0)
		s.requireCode(err, dErrors.CodeAccessDenied)
	})
}

// TestStats covers supply and status counters.
func (s *ServiceSuite) TestStats() {
	s.Run("empty registry reports zeros", func() {
		s.reset()
		stats, err := s.service.Stats(s.ctx)
		s.Require().NoError(err)
		s.Equal(&models.Stats{}, stats)
	})

	s.Run("tracks the full lifecycle", func() {
		s.reset()
		s.mint(4)
		s.buyAs(alice, 0)
		s.buyAs(bob, 1)
		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", "secret"))

		stats, err := s.service.Stats(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(4), stats.TotalSupply)
		s.Equal(2, stats.Available)
		s.Equal(1, stats.Paid)
		s.Equal(1, stats.Bound)
	})

	s.Run("count by status rejects unknown statuses", func() {
		s.reset()
		_, err := s.service.CountByStatus(s.ctx, models.Status("melted"))
		s.requireCode(err, dErrors.CodeInvalidInput)
	})
}

// TestTokensOf covers owner listings through the whole flow.
func (s *ServiceSuite) TestTokensOf() {
	s.Run("listings follow purchases", func() {
		s.reset()
		s.mint(3)
		s.buyAs(alice, 1)
		s.buyAs(alice, 0)

		owned, err := s.service.TokensOf(s.ctx, alice)
		s.Require().NoError(err)
		s.Equal([]id.TokenID{1, 0}, owned)

		authorityOwned, err := s.service.TokensOf(s.ctx, authority)
		s.Require().NoError(err)
		s.Equal([]id.TokenID{2}, authorityOwned)
	})

	s.Run("unknown owner holds nothing", func() {
		s.reset()
		owned, err := s.service.TokensOf(s.ctx, carol)
		s.Require().NoError(err)
		s.Empty(owned)
	})
}

// TestFullLifecycle walks one token through mint, offer, purchase, bind,
// and access management in sequence.
func (s *ServiceSuite) TestFullLifecycle() {
	ids := s.mint(24)
	s.Require().Len(ids, 24)

	offer, err := s.service.GetAvailableToken(s.ctx)
	s.Require().NoError(err)
	s.Equal(id.TokenID(0), offer.TokenID)

	s.bank.Deposit(alice, offer.Price)
	receipt, err := s.service.Buy(s.ctx, alice, offer.TokenID, offer.Price)
	s.Require().NoError(err)
	s.Equal(offer.TokenID, receipt.TokenID)

	s.Require().NoError(s.service.Bind(s.ctx, alice, receipt.TokenID, "invoice-2024-001", "hunter2"))
	s.Require().NoError(s.service.GrantAccess(s.ctx, alice, receipt.TokenID, bob))

	password, err := s.service.GetPassword(s.ctx, bob, receipt.TokenID)
	s.Require().NoError(err)
	s.Equal("hunter2", password)

	s.Require().NoError(s.service.RevokeAccess(s.ctx, alice, receipt.TokenID, bob))
	_, err = s.service.GetPassword(s.ctx, bob, receipt.TokenID)
	s.requireCode(err, dErrors.CodeAccessDenied)

	stats, err := s.service.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(uint64(24), stats.TotalSupply)
	s.Equal(23, stats.Available)
	s.Equal(0, stats.Paid)
	s.Equal(1, stats.Bound)
}
