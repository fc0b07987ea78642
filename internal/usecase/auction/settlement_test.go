package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraplot/auction-service/internal/domain"
)

// endedAuction drives a bid through admission and close so settlement
// starts from a realistic ENDED state.
func endedAuction(t *testing.T, f *fixture, tokenAmount *decimal.Decimal) {
	t.Helper()
	auction := f.activeAuction(1000)
	auction.TokenAmount = tokenAmount
	require.NoError(t, f.auctions.UpdateAuction(auction))

	_, err := f.uc.PlaceBid(context.Background(), "auction-1", "buyer-1", decimal.NewFromInt(1500))
	require.NoError(t, err)
	require.NoError(t, f.uc.CloseAuction("auction-1"))
}

func TestSellerApprovalMovesStatusForward(t *testing.T) {
	f := newFixture()
	endedAuction(t, f, nil)

	require.NoError(t, f.uc.AcceptBidSeller("auction-1"))

	auction := mustGetAuction(t, f, "auction-1")
	assert.Equal(t, domain.StatusSellerApproved, auction.Status)
	assert.Equal(t, "buyer-1", auction.WinnerID)
}

func TestSellerApprovalRequiresWinner(t *testing.T) {
	f := newFixture()
	f.activeAuction(1000)
	require.NoError(t, f.uc.CloseAuction("auction-1"))

	err := f.uc.AcceptBidSeller("auction-1")
	assert.True(t, errors.Is(err, domain.ErrNoWinningBid))
}

func TestAdminApprovalGeneratesPurchaseOrder(t *testing.T) {
	f := newFixture()
	endedAuction(t, f, nil)
	require.NoError(t, f.uc.AcceptBidSeller("auction-1"))

	settlement, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(settlement.PurchaseOrder, "PO-"))
	assert.Equal(t, "buyer-1", settlement.WinnerID)
	assert.True(t, settlement.Amount.Equal(decimal.NewFromInt(1500)))
	assert.Nil(t, settlement.TokenPaymentDeadline)

	auction := mustGetAuction(t, f, "auction-1")
	assert.Equal(t, domain.StatusAdminApproved, auction.Status)
	require.NotNil(t, auction.AdminApprovedAt)
}

func TestAdminApprovalSkippingSellerIsAllowed(t *testing.T) {
	f := newFixture()
	endedAuction(t, f, nil)

	_, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAdminApproved, mustGetAuction(t, f, "auction-1").Status)
}

func TestAdminApprovalStartsTokenClock(t *testing.T) {
	f := newFixture()
	token := decimal.NewFromInt(150)
	endedAuction(t, f, &token)

	settlement, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)

	// Deadline is exactly adminApprovedAt plus the payment window.
	require.NotNil(t, settlement.TokenPaymentDeadline)
	assert.Equal(t, settlement.AdminApprovedAt.Add(48*time.Hour), *settlement.TokenPaymentDeadline)
}

func TestConfiguredTokenWindowSetsDeadline(t *testing.T) {
	f := newFixtureTimings(Timings{TokenWindow: 2 * time.Hour})
	token := decimal.NewFromInt(150)
	endedAuction(t, f, &token)

	settlement, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)

	require.NotNil(t, settlement.TokenPaymentDeadline)
	assert.Equal(t, settlement.AdminApprovedAt.Add(2*time.Hour), *settlement.TokenPaymentDeadline)
}

func TestMarkTokenReceivedIsIdempotent(t *testing.T) {
	f := newFixture()
	token := decimal.NewFromInt(150)
	endedAuction(t, f, &token)
	_, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)

	require.NoError(t, f.uc.MarkTokenReceived("auction-1"))
	revision := mustGetAuction(t, f, "auction-1").Revision

	// The payment webhook fires twice; the second call changes nothing and
	// sends no duplicate notification.
	require.NoError(t, f.uc.MarkTokenReceived("auction-1"))
	assert.Equal(t, revision, mustGetAuction(t, f, "auction-1").Revision)
	assert.Len(t, f.notifier.byEvent("token-received"), 1)
}

func TestMarkTokenReceivedBeforeAdminApproval(t *testing.T) {
	f := newFixture()
	endedAuction(t, f, nil)

	err := f.uc.MarkTokenReceived("auction-1")
	var conflictErr *domain.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestTokenDeadlineFlagsOverdueOnce(t *testing.T) {
	f := newFixture()
	token := decimal.NewFromInt(150)
	endedAuction(t, f, &token)
	_, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)

	// Within the window: nothing to flag.
	require.NoError(t, f.uc.CheckTokenDeadlines(context.Background()))
	assert.Empty(t, f.notifier.byEvent("token-overdue"))

	f.clock.Advance(49 * time.Hour)
	require.NoError(t, f.uc.CheckTokenDeadlines(context.Background()))
	require.Len(t, f.notifier.byEvent("token-overdue"), 1)

	auction := mustGetAuction(t, f, "auction-1")
	assert.True(t, auction.TokenOverdueNotified)
	// The sale itself is untouched: flagged, not cancelled.
	assert.Equal(t, domain.StatusAdminApproved, auction.Status)

	// Later scans stay quiet.
	f.clock.Advance(24 * time.Hour)
	require.NoError(t, f.uc.CheckTokenDeadlines(context.Background()))
	assert.Len(t, f.notifier.byEvent("token-overdue"), 1)
}

func TestTokenPaidBeforeDeadlineIsNeverFlagged(t *testing.T) {
	f := newFixture()
	token := decimal.NewFromInt(150)
	endedAuction(t, f, &token)
	_, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)
	require.NoError(t, f.uc.MarkTokenReceived("auction-1"))

	f.clock.Advance(72 * time.Hour)
	require.NoError(t, f.uc.CheckTokenDeadlines(context.Background()))
	assert.Empty(t, f.notifier.byEvent("token-overdue"))
}

func TestAuctionWithoutTokenHasNoDeadline(t *testing.T) {
	f := newFixture()
	endedAuction(t, f, nil)
	_, err := f.uc.AcceptBidAdmin("auction-1")
	require.NoError(t, err)

	assert.Nil(t, mustGetAuction(t, f, "auction-1").TokenPaymentDeadline)

	f.clock.Advance(100 * time.Hour)
	require.NoError(t, f.uc.CheckTokenDeadlines(context.Background()))
	assert.Empty(t, f.notifier.byEvent("token-overdue"))
}
