package service

import (
	"meterai/internal/stamp/models"
	dErrors "meterai/pkg/domain-errors"
)

// TestBind covers sealing a paid token to a document.
func (s *ServiceSuite) TestBind() {
	s.Run("owner binds a paid token", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", "secret"))

		t, err := s.service.GetToken(s.ctx, alice, 0)
		s.Require().NoError(err)
		s.Equal(models.StatusBound, t.Status)
		s.Equal("doc-123", t.Document)
	})

	s.Run("password is optional", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", ""))

		password, err := s.service.GetPassword(s.ctx, alice, 0)
		s.Require().NoError(err)
		s.Empty(password)
	})

	s.Run("requires a document reference", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		err := s.service.Bind(s.ctx, alice, 0, "", "secret")
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("only the owner may bind", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		err := s.service.Bind(s.ctx, bob, 0, "doc-123", "secret")
		s.requireCode(err, dErrors.CodeForbidden)
	})

	s.Run("cannot bind an available token", func() {
		s.reset()
		s.mint(1)

		err := s.service.Bind(s.ctx, authority, 0, "doc-123", "secret")
		s.requireCode(err, dErrors.CodeInvalidStatus)
	})

	s.Run("cannot bind twice", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)
		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", "secret"))

		err := s.service.Bind(s.ctx, alice, 0, "doc-456", "other")
		s.requireCode(err, dErrors.CodeInvalidStatus)

		t, err := s.service.GetToken(s.ctx, alice, 0)
		s.Require().NoError(err)
		s.Equal("doc-123", t.Document)
	})

	s.Run("unknown token is not found", func() {
		s.reset()
		err := s.service.Bind(s.ctx, alice, 9, "doc-123", "secret")
		s.requireCode(err, dErrors.CodeNotFound)
	})
}

// TestAccessControl covers the per-token read allow-list.
func (s *ServiceSuite) TestAccessControl() {
	// bound prepares a bound token owned by alice.
	bound := func() {
		s.mint(1)
		s.buyAs(alice, 0)
		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-123", "secret"))
	}

	s.Run("grant opens the bound view to the grantee", func() {
		s.reset()
		bound()
		_, err := s.service.GetToken(s.ctx, bob, 0)
		s.requireCode(err, dErrors.CodeAccessDenied)

		s.Require().NoError(s.service.GrantAccess(s.ctx, alice, 0, bob))

		t, err := s.service.GetToken(s.ctx, bob, 0)
		s.Require().NoError(err)
		s.Equal("doc-123", t.Document)

		password, err := s.service.GetPassword(s.ctx, bob, 0)
		s.Require().NoError(err)
		s.Equal("secret", password)
	})

	s.Run("revoke closes the view again", func() {
		s.reset()
		bound()
		s.Require().NoError(s.service.GrantAccess(s.ctx, alice, 0, bob))
		s.Require().NoError(s.service.RevokeAccess(s.ctx, alice, 0, bob))

		_, err := s.service.GetToken(s.ctx, bob, 0)
		s.requireCode(err, dErrors.CodeAccessDenied)
	})

	s.Run("grant and revoke are idempotent", func() {
		s.reset()
		bound()
		s.Require().NoError(s.service.GrantAccess(s.ctx, alice, 0, bob))
		s.Require().NoError(s.service.GrantAccess(s.ctx, alice, 0, bob))
		s.Require().NoError(s.service.RevokeAccess(s.ctx, alice, 0, bob))
		s.Require().NoError(s.service.RevokeAccess(s.ctx, alice, 0, bob))

		_, err := s.service.GetToken(s.ctx, bob, 0)
		s.requireCode(err, dErrors.CodeAccessDenied)
	})

	s.Run("only the owner may change the list", func() {
		s.reset()
		bound()
		err := s.service.GrantAccess(s.ctx, bob, 0, carol)
		s.requireCode(err, dErrors.CodeForbidden)

		err = s.service.RevokeAccess(s.ctx, bob, 0, carol)
		s.requireCode(err, dErrors.CodeForbidden)
	})

	s.Run("grants are scoped to one token", func() {
		s.reset()
		s.mint(2)
		s.buyAs(alice, 0)
		s.buyAs(alice, 1)
		s.Require().NoError(s.service.Bind(s.ctx, alice, 0, "doc-a", "pw-a"))
		s.Require().NoError(s.service.Bind(s.ctx, alice, 1, "doc-b", "pw-b"))

		s.Require().NoError(s.service.GrantAccess(s.ctx, alice, 0, bob))

		_, err := s.service.GetToken(s.ctx, bob, 0)
		s.Require().NoError(err)
		_, err = s.service.GetToken(s.ctx, bob, 1)
		s.requireCode(err, dErrors.CodeAccessDenied)
	})

	s.Run("requires a grantee", func() {
		s.reset()
		bound()
		err := s.service.GrantAccess(s.ctx, alice, 0, "")
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("unknown token is not found", func() {
		s.reset()
		err := s.service.GrantAccess(s.ctx, alice, 9, bob)
		s.requireCode(err, dErrors.CodeNotFound)
	})
}
