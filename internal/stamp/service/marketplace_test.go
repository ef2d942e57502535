package service

import (
	"context"
	"errors"

	"meterai/internal/audit"
	"meterai/internal/ledger"
	"meterai/internal/stamp/models"
	aclstore "meterai/internal/stamp/store/acl"
	tokenstore "meterai/internal/stamp/store/token"
	id "meterai/pkg/domain"
	dErrors "meterai/pkg/domain-errors"
)

// TestMint covers batch minting and its authority gate.
func (s *ServiceSuite) TestMint() {
	s.Run("assigns sequential ids across batches", func() {
		s.reset()
		first := s.mint(3)
		second := s.mint(2)

		s.Equal([]id.TokenID{0, 1, 2}, first)
		s.Equal([]id.TokenID{3, 4}, second)

		total, err := s.service.TotalSupply(s.ctx)
		s.Require().NoError(err)
		s.Equal(uint64(5), total)
	})

	s.Run("new tokens belong to the authority and are available", func() {
		s.reset()
		ids := s.mint(2)

		for _, tokenID := range ids {
			t, err := s.service.GetToken(s.ctx, alice, tokenID)
			s.Require().NoError(err)
			s.Equal(models.StatusAvailable, t.Status)
			s.Equal(authority, t.Owner)
			s.Equal(price, t.Price)
		}

		owned, err := s.service.TokensOf(s.ctx, authority)
		s.Require().NoError(err)
		s.Equal(ids, owned)

		// The ownership ledger must agree with the registry.
		for _, tokenID := range ids {
			holder, err := s.ownership.OwnerOf(s.ctx, tokenID)
			s.Require().NoError(err)
			s.Equal(authority, holder)
		}
		holdings, err := s.ownership.Holdings(s.ctx, authority)
		s.Require().NoError(err)
		s.Equal(len(ids), holdings)
	})

	s.Run("rejects non-authority callers", func() {
		s.reset()
		_, err := s.service.Mint(s.ctx, alice, 1, price)
		s.requireCode(err, dErrors.CodeUnauthorized)
	})

	s.Run("rejects a non-positive count", func() {
		s.reset()
		_, err := s.service.Mint(s.ctx, authority, 0, price)
		s.requireCode(err, dErrors.CodeValidation)
	})

	s.Run("records an audit event for the batch", func() {
		s.reset()
		ids := s.mint(2)

		events, err := s.audits.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 1)
		s.Equal(audit.ActionMinted, events[0].Action)
		s.Equal(authority, events[0].Actor)
		s.Equal(ids, events[0].TokenIDs)
		s.Equal(price, events[0].Amount)
	})
}

// TestBuy covers the primary sale: exact payment, ownership hand-off, and
// proceeds flowing to the minting authority.
func (s *ServiceSuite) TestBuy() {
	s.Run("sells an available token for its exact price", func() {
		s.reset()
		s.mint(2)
		s.bank.Deposit(alice, price)

		receipt, err := s.service.Buy(s.ctx, alice, 0, price)
		s.Require().NoError(err)
		s.Equal(id.TokenID(0), receipt.TokenID)
		s.Equal(price, receipt.Price)
		s.Equal(alice, receipt.Buyer)

		t, err := s.service.GetToken(s.ctx, bob, 0)
		s.Require().NoError(err)
		s.Equal(models.StatusPaid, t.Status)
		s.Equal(alice, t.Owner)

		// Ownership ledger and owner index hand over together.
		holder, err := s.ownership.OwnerOf(s.ctx, 0)
		s.Require().NoError(err)
		s.Equal(alice, holder)

		aliceHoldings, err := s.ownership.Holdings(s.ctx, alice)
		s.Require().NoError(err)
		s.Equal(1, aliceHoldings)

		authorityHoldings, err := s.ownership.Holdings(s.ctx, authority)
		s.Require().NoError(err)
		s.Equal(1, authorityHoldings)
	})

	s.Run("moves the payment to the authority", func() {
		s.reset()
		s.mint(1)
		s.bank.Deposit(alice, price+100)

		_, err := s.service.Buy(s.ctx, alice, 0, price)
		s.Require().NoError(err)

		aliceBalance, err := s.bank.BalanceOf(s.ctx, alice)
		s.Require().NoError(err)
		s.Equal(id.Amount(100), aliceBalance)

		authorityBalance, err := s.bank.BalanceOf(s.ctx, authority)
		s.Require().NoError(err)
		s.Equal(price, authorityBalance)
	})

	s.Run("any available id can be bought, not just the head", func() {
		s.reset()
		s.mint(3)
		s.buyAs(alice, 2)

		t, err := s.service.GetToken(s.ctx, bob, 2)
		s.Require().NoError(err)
		s.Equal(alice, t.Owner)

		offer, err := s.service.GetAvailableToken(s.ctx)
		s.Require().NoError(err)
		s.Equal(id.TokenID(0), offer.TokenID)
	})

	s.Run("rejects an unknown token id", func() {
		s.reset()
		s.mint(1)
		_, err := s.service.Buy(s.ctx, alice, 5, price)
		s.requireCode(err, dErrors.CodeNotFound)
	})

	s.Run("rejects a token that is no longer available", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		s.bank.Deposit(bob, price)
		_, err := s.service.Buy(s.ctx, bob, 0, price)
		s.requireCode(err, dErrors.CodeInvalidStatus)

		// The losing buyer keeps their money and the winner keeps the token.
		bobBalance, err := s.bank.BalanceOf(s.ctx, bob)
		s.Require().NoError(err)
		s.Equal(price, bobBalance)

		holder, err := s.ownership.OwnerOf(s.ctx, 0)
		s.Require().NoError(err)
		s.Equal(alice, holder)
	})

	s.Run("rejects underpayment and overpayment alike", func() {
		s.reset()
		s.mint(1)
		s.bank.Deposit(alice, price*2)

		_, err := s.service.Buy(s.ctx, alice, 0, price-1)
		s.requireCode(err, dErrors.CodeInvalidPayment)

		_, err = s.service.Buy(s.ctx, alice, 0, price+1)
		s.requireCode(err, dErrors.CodeInvalidPayment)

		// The failed attempts must leave the token untouched.
		t, err := s.service.GetToken(s.ctx, bob, 0)
		s.Require().NoError(err)
		s.Equal(models.StatusAvailable, t.Status)
		s.Equal(authority, t.Owner)
	})

	s.Run("rejects a buyer that cannot cover the price", func() {
		s.reset()
		s.mint(1)
		s.bank.Deposit(alice, price-1)

		_, err := s.service.Buy(s.ctx, alice, 0, price)
		s.requireCode(err, dErrors.CodeInvalidPayment)

		balance, err := s.bank.BalanceOf(s.ctx, alice)
		s.Require().NoError(err)
		s.Equal(price-1, balance)
	})

	s.Run("the authority remains the seller of record after resale state", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		events, err := s.audits.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(events, 2)
		s.Equal(audit.ActionBought, events[1].Action)
		s.Equal(alice, events[1].Actor)
		s.Equal(price, events[1].Amount)
	})
}

// TestAvailabilityPool covers the FIFO offer endpoint end to end.
func (s *ServiceSuite) TestAvailabilityPool() {
	s.Run("offers the oldest token with its price", func() {
		s.reset()
		s.mint(3)

		offer, err := s.service.GetAvailableToken(s.ctx)
		s.Require().NoError(err)
		s.Equal(id.TokenID(0), offer.TokenID)
		s.Equal(price, offer.Price)
	})

	s.Run("advances as tokens sell", func() {
		s.reset()
		s.mint(2)
		s.buyAs(alice, 0)

		offer, err := s.service.GetAvailableToken(s.ctx)
		s.Require().NoError(err)
		s.Equal(id.TokenID(1), offer.TokenID)
	})

	s.Run("reports exhaustion when nothing is for sale", func() {
		s.reset()
		_, err := s.service.GetAvailableToken(s.ctx)
		s.requireCode(err, dErrors.CodeExhausted)
	})

	s.Run("reports exhaustion after a sell-out", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)

		_, err := s.service.GetAvailableToken(s.ctx)
		s.requireCode(err, dErrors.CodeExhausted)
	})

	s.Run("restocks when the authority mints again", func() {
		s.reset()
		s.mint(1)
		s.buyAs(alice, 0)
		s.mint(1)

		offer, err := s.service.GetAvailableToken(s.ctx)
		s.Require().NoError(err)
		s.Equal(id.TokenID(1), offer.TokenID)
	})
}

// registryFaultStore aborts every Execute, modeling a registry write that
// fails after the service's own preconditions passed (a backend conflict or
// transient failure surfacing mid-transaction).
type registryFaultStore struct {
	TokenStore
	err error
}

func (f *registryFaultStore) Execute(_ context.Context, _ id.TokenID, _ func(t *models.Token) error, _ func(t *models.Token)) (*models.Token, error) {
	return nil, f.err
}

// TestBuyRegistryFault ensures an aborted registry write leaves the bank and
// the ownership ledger exactly as they were: the buyer is not charged, the
// authority is not credited, and the token does not change hands.
func (s *ServiceSuite) TestBuyRegistryFault() {
	store := &registryFaultStore{
		TokenStore: tokenstore.NewInMemory(),
		err:        errors.New("pq: could not serialize access due to concurrent update"),
	}
	ownership := ledger.NewInMemoryOwnership()
	bank := ledger.NewInMemoryBank()
	svc, err := New(store, aclstore.NewInMemory(), ownership, bank, authority)
	s.Require().NoError(err)

	_, err = svc.Mint(s.ctx, authority, 1, price)
	s.Require().NoError(err)
	bank.Deposit(alice, price)

	_, err = svc.Buy(s.ctx, alice, 0, price)
	s.requireCode(err, dErrors.CodeInternal)

	aliceBalance, err := bank.BalanceOf(s.ctx, alice)
	s.Require().NoError(err)
	s.Equal(price, aliceBalance)

	authorityBalance, err := bank.BalanceOf(s.ctx, authority)
	s.Require().NoError(err)
	s.Equal(id.Amount(0), authorityBalance)

	holder, err := ownership.OwnerOf(s.ctx, 0)
	s.Require().NoError(err)
	s.Equal(authority, holder)
}
