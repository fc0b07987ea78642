package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraplot/auction-service/internal/domain"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
)

func createInput(f *fixture) *auctiondto.CreateAuctionInput {
	return &auctiondto.CreateAuctionInput{
		MaterialID:    "material-1",
		SellerID:      "seller-1",
		Title:         "aluminium offcuts",
		StartingPrice: decimal.NewFromInt(500),
		EndTime:       f.clock.Now().Add(72 * time.Hour),
	}
}

func TestCreateAuctionDefaultsToDraft(t *testing.T) {
	f := newFixture()

	auction, err := f.uc.CreateAuction(createInput(f))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, auction.Status)
	assert.True(t, auction.CurrentBid.Equal(auction.StartingPrice))
	assert.Equal(t, int64(1), auction.Revision)
}

func TestCreateAuctionPublishNow(t *testing.T) {
	f := newFixture()
	input := createInput(f)
	input.PublishNow = true

	auction, err := f.uc.CreateAuction(input)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, auction.Status)
}

func TestCreateAuctionWithPublishDateIsScheduled(t *testing.T) {
	f := newFixture()
	publishAt := f.clock.Now().Add(12 * time.Hour)
	input := createInput(f)
	input.ScheduledPublishDate = &publishAt

	auction, err := f.uc.CreateAuction(input)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusScheduled, auction.Status)
	assert.Equal(t, publishAt, auction.StartTime)
}

func TestCreateAuctionValidation(t *testing.T) {
	f := newFixture()

	cases := []struct {
		name   string
		mutate func(*auctiondto.CreateAuctionInput)
	}{
		{"missing seller", func(in *auctiondto.CreateAuctionInput) { in.SellerID = "" }},
		{"zero starting price", func(in *auctiondto.CreateAuctionInput) { in.StartingPrice = decimal.Zero }},
		{"end time in the past", func(in *auctiondto.CreateAuctionInput) { in.EndTime = f.clock.Now().Add(-time.Hour) }},
		{"negative token amount", func(in *auctiondto.CreateAuctionInput) {
			negative := decimal.NewFromInt(-10)
			in.TokenAmount = &negative
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := createInput(f)
			tc.mutate(input)
			_, err := f.uc.CreateAuction(input)
			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestPublishDraftAuction(t *testing.T) {
	f := newFixture()
	auction, err := f.uc.CreateAuction(createInput(f))
	require.NoError(t, err)

	require.NoError(t, f.uc.PublishAuction(auction.ID))
	assert.Equal(t, domain.StatusActive, mustGetAuction(t, f, auction.ID).Status)
}

func TestPublishEndedAuctionIsStateConflict(t *testing.T) {
	f := newFixture()
	auction := f.activeAuction(1000)
	auction.Status = domain.StatusEnded
	require.NoError(t, f.auctions.UpdateAuction(auction))

	err := f.uc.PublishAuction("auction-1")
	var conflictErr *domain.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
}

func TestCancelTerminalAuctionIsStateConflict(t *testing.T) {
	f := newFixture()
	auction := f.activeAuction(1000)
	auction.Status = domain.StatusAdminApproved
	require.NoError(t, f.auctions.UpdateAuction(auction))

	err := f.uc.CancelAuction("auction-1")
	var conflictErr *domain.StateConflictError
	require.ErrorAs(t, err, &conflictErr)
	// A refused cancel leaves the leaderboard projection untouched.
	assert.Empty(t, f.leaderboard.dropped)
}

func TestCancelDropsLeaderboardProjection(t *testing.T) {
	f := newFixture()
	f.activeAuction(1000)

	_, err := f.uc.PlaceBid(context.Background(), "auction-1", "buyer-1", decimal.NewFromInt(1100))
	require.NoError(t, err)
	entries, err := f.leaderboard.TopBidders(context.Background(), "auction-1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.NoError(t, f.uc.CancelAuction("auction-1"))

	entries, err = f.leaderboard.TopBidders(context.Background(), "auction-1", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, []string{"auction-1"}, f.leaderboard.dropped)
}
